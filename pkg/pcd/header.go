package pcd

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/samber/lo"
)

// StorageMode is the encoding of the payload that follows the header.
type StorageMode string

const (
	StorageASCII  StorageMode = "ascii"
	StorageBinary StorageMode = "binary"
)

// FieldType is the single character type tag of a field.
type FieldType string

const (
	FieldFloat FieldType = "F"
	FieldInt   FieldType = "I"
	FieldUint  FieldType = "U"
)

const (
	keyVersion   = "VERSION"
	keyFields    = "FIELDS"
	keySize      = "SIZE"
	keyType      = "TYPE"
	keyCount     = "COUNT"
	keyWidth     = "WIDTH"
	keyHeight    = "HEIGHT"
	keyViewpoint = "VIEWPOINT"
	keyPoints    = "POINTS"
	keyData      = "DATA"
)

// viewpointLen is translation xyz followed by quaternion wxyz.
const viewpointLen = 7

// FieldDescriptor describes one named group of scalars inside a point.
type FieldDescriptor struct {
	Name  string
	Size  int
	Type  FieldType
	Count int
}

// Footprint is the number of bytes the field occupies in a binary point.
func (f FieldDescriptor) Footprint() int {
	return f.Size * f.Count
}

// Schema is the resolved PCD header. Fields is fixed once the header is
// parsed and its order is the positional layout of every point.
type Schema struct {
	Version   string
	Fields    []FieldDescriptor
	Width     int
	Height    int
	Points    int
	Viewpoint []float64
	Storage   StorageMode
	// PayloadOffset is the byte offset of the first payload byte.
	PayloadOffset int64
}

func (s *Schema) FieldNames() []string {
	return lo.Map(s.Fields, func(f FieldDescriptor, _ int) string { return f.Name })
}

// FieldIndex returns the position of the named field, or -1.
func (s *Schema) FieldIndex(name string) int {
	return lo.IndexOf(s.FieldNames(), name)
}

// ScalarOffset returns the index in a PointRecord of the first scalar of
// field i.
func (s *Schema) ScalarOffset(i int) int {
	return lo.SumBy(s.Fields[:i], func(f FieldDescriptor) int { return f.Count })
}

// ScalarCount is the number of scalars in a well formed point.
func (s *Schema) ScalarCount() int {
	return lo.SumBy(s.Fields, func(f FieldDescriptor) int { return f.Count })
}

// PointSize is the number of bytes a binary point occupies.
func (s *Schema) PointSize() int {
	return pointSize(s.Fields)
}

func pointSize(fields []FieldDescriptor) int {
	return lo.SumBy(fields, FieldDescriptor.Footprint)
}

// fieldLists collects the parallel per-field header lines until the whole
// header has been seen.
type fieldLists struct {
	names  []string
	sizes  []int
	types  []string
	counts []int
	// hasCount is false when the header carries no COUNT line at all.
	hasCount bool
}

// descriptors zips the lists, stopping at the shortest one.
func (l *fieldLists) descriptors() []FieldDescriptor {
	counts := l.counts
	if !l.hasCount {
		counts = lo.Map(l.names, func(string, int) int { return 1 })
	}
	n := min(len(l.names), len(l.sizes), len(l.types), len(counts))
	fields := make([]FieldDescriptor, n)
	for i := range fields {
		fields[i] = FieldDescriptor{
			Name:  l.names[i],
			Size:  l.sizes[i],
			Type:  FieldType(l.types[i]),
			Count: counts[i],
		}
	}
	return fields
}

// ParseHeader consumes header lines from r up to and including the DATA
// line. On success r is positioned at the first payload byte.
func ParseHeader(r *bufio.Reader) (*Schema, error) {
	var (
		s      Schema
		lists  fieldLists
		offset int64
	)
	for {
		line, rerr := r.ReadString('\n')
		if rerr != nil && !errors.Is(rerr, io.EOF) {
			return nil, errors.Wrap(rerr, "read pcd header")
		}
		offset += int64(len(line))

		tokens := strings.Fields(line)
		if len(tokens) > 0 {
			if tokens[0] == keyData {
				s.Storage = StorageASCII
				if len(tokens) > 1 {
					s.Storage = StorageMode(tokens[1])
				}
				s.PayloadOffset = offset
				s.Fields = lists.descriptors()
				return &s, nil
			}
			if err := parseHeaderLine(tokens, &s, &lists); err != nil {
				return nil, err
			}
		}
		if rerr != nil {
			return nil, ErrMissingDataMarker
		}
	}
}

func parseHeaderLine(tokens []string, s *Schema, lists *fieldLists) error {
	var err error
	key, values := tokens[0], tokens[1:]
	switch key {
	case keyVersion:
		s.Version = strings.Join(values, " ")
	case keyFields:
		lists.names = values
	case keySize:
		lists.sizes, err = parsePositiveInts(key, values)
	case keyType:
		lists.types = values
	case keyCount:
		lists.counts, err = parsePositiveInts(key, values)
		lists.hasCount = true
	case keyWidth:
		s.Width, err = parseCount(key, values)
	case keyHeight:
		s.Height, err = parseCount(key, values)
	case keyPoints:
		s.Points, err = parseCount(key, values)
	case keyViewpoint:
		if len(values) != viewpointLen {
			return errors.Wrapf(ErrInvalidHeader, "%s has %d values, want %d", key, len(values), viewpointLen)
		}
		s.Viewpoint = make([]float64, len(values))
		for i, v := range values {
			if s.Viewpoint[i], err = strconv.ParseFloat(v, 64); err != nil {
				return errors.Wrapf(ErrInvalidHeader, "%s value %q", key, v)
			}
		}
	}
	return err
}

func parsePositiveInts(key string, values []string) ([]int, error) {
	ints := make([]int, len(values))
	for i, v := range values {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return nil, errors.Wrapf(ErrInvalidHeader, "%s value %q", key, v)
		}
		ints[i] = n
	}
	return ints, nil
}

func parseCount(key string, values []string) (int, error) {
	if len(values) == 0 {
		return 0, errors.Wrapf(ErrInvalidHeader, "%s has no value", key)
	}
	n, err := strconv.Atoi(values[0])
	if err != nil || n < 0 {
		return 0, errors.Wrapf(ErrInvalidHeader, "%s value %q", key, values[0])
	}
	return n, nil
}
