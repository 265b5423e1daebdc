package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"pcdconvert/pkg/pcd"
)

var infoCfg struct {
	json      bool
	precision float64
}

var infoCmd = &cobra.Command{
	Use:   "info <input.pcd>",
	Short: "Print the header and summary statistics of a point cloud",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		report, err := inspect(args[0], infoCfg.precision)
		if err != nil {
			return err
		}
		if infoCfg.json {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(report)
		}
		return report.writeTable(cmd.OutOrStdout())
	},
}

func init() {
	infoCmd.Flags().BoolVar(&infoCfg.json, "json", false, "print the report as JSON")
	infoCmd.Flags().Float64Var(&infoCfg.precision, "precision", 0.08, "grid cells per unit used for the XY area estimate")
}

type fieldReport struct {
	Name  string `json:"name"`
	Size  int    `json:"size"`
	Type  string `json:"type"`
	Count int    `json:"count"`
}

type infoReport struct {
	Path          string        `json:"path"`
	Version       string        `json:"version,omitempty"`
	Fields        []fieldReport `json:"fields"`
	Width         int           `json:"width"`
	Height        int           `json:"height"`
	Points        int           `json:"points"`
	Decoded       int           `json:"decoded"`
	Storage       string        `json:"storage"`
	PayloadOffset int64         `json:"payload_offset"`
	Viewpoint     []float64     `json:"viewpoint,omitempty"`
	Min           [3]float64    `json:"min"`
	Max           [3]float64    `json:"max"`
	XYArea        float64       `json:"xy_area"`
}

func inspect(input string, precision float64) (*infoReport, error) {
	if err := checkInput(input); err != nil {
		return nil, err
	}
	cloud, err := pcd.OpenFile(input)
	if err != nil {
		return nil, err
	}
	s := cloud.Schema
	coords := cloud.Coordinates()
	lo, hi := pcd.Bounds(coords)

	report := &infoReport{
		Path:          input,
		Version:       s.Version,
		Fields:        make([]fieldReport, len(s.Fields)),
		Width:         s.Width,
		Height:        s.Height,
		Points:        s.Points,
		Decoded:       cloud.PointCount(),
		Storage:       string(s.Storage),
		PayloadOffset: s.PayloadOffset,
		Viewpoint:     s.Viewpoint,
		Min:           [3]float64{lo.X, lo.Y, lo.Z},
		Max:           [3]float64{hi.X, hi.Y, hi.Z},
		XYArea:        pcd.XYArea(coords, precision),
	}
	for i, f := range s.Fields {
		report.Fields[i] = fieldReport{Name: f.Name, Size: f.Size, Type: string(f.Type), Count: f.Count}
	}
	return report, nil
}

func (r *infoReport) writeTable(w io.Writer) error {
	fields := table.NewWriter()
	fields.AppendHeader(table.Row{"#", "Field", "Size", "Type", "Count"})
	for i, f := range r.Fields {
		fields.AppendRow(table.Row{i, f.Name, f.Size, f.Type, f.Count})
	}

	summary := table.NewWriter()
	summary.AppendRows([]table.Row{
		{"path", r.Path},
		{"version", r.Version},
		{"storage", r.Storage},
		{"width x height", fmt.Sprintf("%d x %d", r.Width, r.Height)},
		{"points (declared)", r.Points},
		{"points (decoded)", r.Decoded},
		{"payload offset", r.PayloadOffset},
		{"viewpoint", formatFloats(r.Viewpoint)},
		{"min", formatFloats(r.Min[:])},
		{"max", formatFloats(r.Max[:])},
		{"xy area", fmt.Sprintf("%.2f", r.XYArea)},
	})

	_, err := fmt.Fprintf(w, "%s\n%s\n", summary.Render(), fields.Render())
	return err
}

func formatFloats(vs []float64) string {
	parts := make([]string, len(vs))
	for i, v := range vs {
		parts[i] = fmt.Sprintf("%g", v)
	}
	return strings.Join(parts, " ")
}
