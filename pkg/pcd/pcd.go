// Package pcd reads PCD (Point Cloud Data) files and KITTI velodyne scans
// into flat numeric point records.
package pcd

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
)

// Decode parses a PCD header from r and then decodes the payload that
// follows it. The header is fully resolved before any payload byte is read.
func Decode(r io.Reader) (*PointCloud, error) {
	br := bufio.NewReader(r)
	schema, err := ParseHeader(br)
	if err != nil {
		return nil, err
	}
	points, err := DecodePoints(br, schema)
	if err != nil {
		return nil, err
	}
	return &PointCloud{Schema: schema, Points: points}, nil
}

// Open decodes the PCD file at path. The file is held open across header
// parsing and decoding and closed on every path.
func Open(path string) (pc *PointCloud, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	defer func() {
		err = multierr.Append(err, f.Close())
	}()

	pc, err = Decode(f)
	if err != nil {
		return nil, errors.Wrapf(err, "decode %s", path)
	}
	return pc, nil
}

// OpenFile reads path according to its extension: ".bin" files are KITTI
// scans, anything else is PCD.
func OpenFile(path string) (*PointCloud, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".bin":
		return openBin(path)
	default:
		return Open(path)
	}
}

func openBin(path string) (pc *PointCloud, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	defer func() {
		err = multierr.Append(err, f.Close())
	}()

	pc, err = DecodeBin(f)
	if err != nil {
		return nil, errors.Wrapf(err, "decode %s", path)
	}
	return pc, nil
}
