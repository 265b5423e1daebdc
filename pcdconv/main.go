package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"pcdconvert/pkg/export"
	"pcdconvert/pkg/logging"
	"pcdconvert/pkg/pcd"
)

var cfg struct {
	format  string
	output  string
	sample  int
	verbose bool
}

var (
	logger = zap.NewNop().Sugar()
	level  = zap.NewAtomicLevel()
)

var cmd = &cobra.Command{
	Use:           "pcdconv <input.pcd>",
	Short:         "Convert PCD point clouds to JSON or LAS",
	Args:          cobra.ExactArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if cfg.verbose {
			level.SetLevel(zapcore.DebugLevel)
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := export.ParseFormat(cfg.format)
		if err != nil {
			return err
		}
		return convert(logger, args[0], cfg.output, format, cfg.sample)
	},
}

func init() {
	formats := make([]string, len(export.Formats))
	for i, f := range export.Formats {
		formats[i] = string(f)
	}
	cmd.PersistentFlags().BoolVarP(&cfg.verbose, "verbose", "v", false, "enable debug logging")
	cmd.Flags().StringVarP(&cfg.format, "format", "f", string(export.FormatJSON), "output format: "+strings.Join(formats, ", "))
	cmd.Flags().StringVarP(&cfg.output, "output", "o", "", "output file (default: input name with the format's extension)")
	cmd.Flags().IntVarP(&cfg.sample, "sample", "s", 0, "randomly sample at most this many points (json formats only)")

	cmd.AddCommand(infoCmd)
}

func main() {
	l, lvl, err := logging.NewLogger("pcdconv")
	if err != nil {
		fmt.Fprintf(os.Stderr, "create logger: %v\n", err)
		os.Exit(1)
	}
	logger, level = l, lvl
	defer logger.Sync() //nolint:errcheck

	if err := cmd.Execute(); err != nil {
		logger.Errorf("%+v", err)
		logger.Sync() //nolint:errcheck
		os.Exit(1)
	}
}

// checkInput reports a missing or unusable input path without opening it.
func checkInput(input string) error {
	st, err := os.Stat(input)
	if err != nil {
		return errors.Wrap(err, "input file")
	}
	if st.IsDir() {
		return errors.Errorf("input %s is a directory", input)
	}
	return nil
}

func convert(logger *zap.SugaredLogger, input, output string, format export.Format, sample int) error {
	if err := checkInput(input); err != nil {
		return err
	}
	exporter, err := export.New(format, export.DefaultCapabilities())
	if err != nil {
		return err
	}
	if output == "" {
		output = export.DefaultOutputPath(input, format)
	}
	if filepath.Clean(output) == filepath.Clean(input) {
		return errors.New("input file can not be the output file")
	}
	if sample > 0 && format == export.FormatLAS {
		logger.Warnw("sampling is not applied to las output", "sample", sample)
	}

	cloud, err := pcd.OpenFile(input)
	if err != nil {
		return err
	}
	logger.Debugw("decoded point cloud",
		"input", input,
		"storage", cloud.Schema.Storage,
		"fields", cloud.Schema.FieldNames(),
		"declared", cloud.Schema.Points,
		"decoded", cloud.PointCount())
	if cloud.PointCount() < cloud.Schema.Points {
		logger.Infow("payload held fewer points than declared",
			"declared", cloud.Schema.Points, "decoded", cloud.PointCount())
	}

	res, err := exporter.Export(output, cloud, export.Options{SampleSize: sample})
	if err != nil {
		return errors.Wrapf(err, "export %s", format)
	}
	if res.Skipped > 0 {
		logger.Infow("skipped points with non-finite coordinates", "skipped", res.Skipped, "of", res.Total)
	}
	if res.Sampled() {
		logger.Infow("sampled points", "points", res.Points, "of", res.Total-res.Skipped)
	}
	logger.Infow("converted", "input", input, "output", output, "format", format, "points", res.Points)
	return nil
}
