package export

import (
	"encoding/json"
	"io"
	"os"

	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"pcdconvert/pkg/pcd"
)

const (
	jsonFormatVersion = "1.0"
	// DefaultSimpleSampleSize bounds simplified JSON output when the caller
	// gives no bound.
	DefaultSimpleSampleSize = 100000
)

type jsonDocument struct {
	Version string      `json:"version"`
	Points  int         `json:"points"`
	Fields  []string    `json:"fields"`
	Data    []jsonPoint `json:"data"`
}

type jsonPoint struct {
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Z         float64 `json:"z"`
	Intensity float64 `json:"intensity"`
}

type simpleJSONDocument struct {
	Points [][3]float64 `json:"points"`
}

// JSONExporter writes the full JSON document: version, point count, field
// names and one x/y/z/intensity object per point. Points with non-finite
// coordinates are skipped and a non-finite intensity is written as 0.
type JSONExporter struct{}

func (JSONExporter) Export(path string, cloud *pcd.PointCloud, opts Options) (Result, error) {
	axes := pcd.ResolveAxes(cloud.Schema)
	finite := finitePoints(cloud.Points, axes)
	points := Sample(finite, opts.SampleSize)

	doc := jsonDocument{
		Version: jsonFormatVersion,
		Points:  len(points),
		Fields:  cloud.Schema.FieldNames(),
		Data:    make([]jsonPoint, len(points)),
	}
	for i, p := range points {
		v := axes.Vector(p)
		doc.Data[i] = jsonPoint{X: v.X, Y: v.Y, Z: v.Z, Intensity: finiteOrZero(axes.IntensityOf(p))}
	}

	if err := writeJSON(path, doc, true); err != nil {
		return Result{}, err
	}
	return Result{Points: len(points), Total: len(cloud.Points), Skipped: len(cloud.Points) - len(finite)}, nil
}

// SimpleJSONExporter writes only [x, y, z] triples of the finite points. It
// samples down to DefaultSimpleSampleSize unless told otherwise.
type SimpleJSONExporter struct{}

func (SimpleJSONExporter) Export(path string, cloud *pcd.PointCloud, opts Options) (Result, error) {
	bound := opts.SampleSize
	if bound <= 0 {
		bound = DefaultSimpleSampleSize
	}
	axes := pcd.ResolveAxes(cloud.Schema)
	finite := finitePoints(cloud.Points, axes)
	points := Sample(finite, bound)

	doc := simpleJSONDocument{Points: make([][3]float64, len(points))}
	for i, p := range points {
		v := axes.Vector(p)
		doc.Points[i] = [3]float64{v.X, v.Y, v.Z}
	}

	if err := writeJSON(path, doc, false); err != nil {
		return Result{}, err
	}
	return Result{Points: len(points), Total: len(cloud.Points), Skipped: len(cloud.Points) - len(finite)}, nil
}

func writeJSON(path string, v interface{}, indent bool) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return errors.WithStack(err)
	}
	defer func() {
		err = multierr.Append(err, f.Close())
		if err != nil {
			err = multierr.Append(err, os.Remove(path))
		}
	}()
	return encodeJSON(f, v, indent)
}

func encodeJSON(w io.Writer, v interface{}, indent bool) error {
	enc := json.NewEncoder(w)
	if indent {
		enc.SetIndent("", "  ")
	}
	return errors.Wrap(enc.Encode(v), "encode json")
}
