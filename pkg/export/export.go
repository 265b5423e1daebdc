// Package export writes decoded point clouds out as JSON documents or LAS
// files.
package export

import (
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"pcdconvert/pkg/pcd"
)

var (
	ErrUnknownFormat         = errors.New("unknown output format")
	ErrCapabilityUnavailable = errors.New("output format unavailable in this build")
	ErrEmptyCloud            = errors.New("point cloud has no points")
)

// Format selects an exporter.
type Format string

const (
	FormatJSON       Format = "json"
	FormatSimpleJSON Format = "simple-json"
	FormatLAS        Format = "las"
)

// Formats lists every supported format, default first.
var Formats = []Format{FormatJSON, FormatSimpleJSON, FormatLAS}

func ParseFormat(s string) (Format, error) {
	for _, f := range Formats {
		if string(f) == s {
			return f, nil
		}
	}
	return "", errors.Wrapf(ErrUnknownFormat, "%q", s)
}

// Extension is the file suffix used when no output path is given.
func (f Format) Extension() string {
	switch f {
	case FormatSimpleJSON:
		return ".simple.json"
	case FormatLAS:
		return ".las"
	default:
		return ".json"
	}
}

// DefaultOutputPath replaces the extension of input with the one for f.
func DefaultOutputPath(input string, f Format) string {
	return strings.TrimSuffix(input, filepath.Ext(input)) + f.Extension()
}

// Capabilities records which optional exporters are usable. It is handed to
// New rather than checked inside the exporters.
type Capabilities struct {
	LAS bool
}

func DefaultCapabilities() Capabilities {
	return Capabilities{LAS: true}
}

// Options tunes a single export.
type Options struct {
	// SampleSize bounds the number of exported points. Zero or less means
	// no bound, except where an exporter has its own default.
	SampleSize int
}

// Result reports what an export wrote.
type Result struct {
	// Points is the number of points written.
	Points int
	// Total is the number of points in the source cloud.
	Total int
	// Skipped counts points dropped for non-finite coordinates.
	Skipped int
}

// Sampled reports whether sampling left out any exportable point.
func (r Result) Sampled() bool {
	return r.Points < r.Total-r.Skipped
}

// Exporter writes a cloud to path. Exporters never modify the cloud, and a
// failed export leaves no file at path.
type Exporter interface {
	Export(path string, cloud *pcd.PointCloud, opts Options) (Result, error)
}

// New returns the exporter for f, or ErrCapabilityUnavailable when caps
// rules it out. Other formats are unaffected by a missing capability.
func New(f Format, caps Capabilities) (Exporter, error) {
	switch f {
	case FormatJSON:
		return JSONExporter{}, nil
	case FormatSimpleJSON:
		return SimpleJSONExporter{}, nil
	case FormatLAS:
		if !caps.LAS {
			return nil, errors.Wrapf(ErrCapabilityUnavailable, "%s", f)
		}
		return LASExporter{}, nil
	default:
		return nil, errors.Wrapf(ErrUnknownFormat, "%q", f)
	}
}
