package pcd

import (
	"bufio"
	"encoding/binary"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// preallocLimit caps the capacity reserved up front from the declared point
// count, which comes straight from an untrusted header.
const preallocLimit = 1 << 20

// DecodePoints decodes the payload that follows the header described by s.
// It yields at most s.Points records; a payload that ends early yields fewer
// without error.
func DecodePoints(r *bufio.Reader, s *Schema) ([]PointRecord, error) {
	switch s.Storage {
	case StorageASCII:
		return decodeText(r, s)
	case StorageBinary:
		return decodeBinary(r, s.Fields, s.Points)
	default:
		return nil, errors.Wrapf(ErrUnsupportedStorage, "%q", s.Storage)
	}
}

// decodeText reads one point per line. A line that is not all numeric, or
// that has fewer scalars than there are fields, is dropped but still uses up
// one point of the budget. A blank line ends the payload.
func decodeText(r *bufio.Reader, s *Schema) ([]PointRecord, error) {
	points := make([]PointRecord, 0, min(s.Points, preallocLimit))
	minScalars := len(s.Fields)
	for i := 0; i < s.Points; i++ {
		line, err := r.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return nil, errors.Wrapf(err, "read point %d", i)
		}
		line = strings.TrimSpace(line)
		if line == "" {
			break
		}
		if p, ok := parseTextPoint(line); ok && len(p) >= minScalars {
			points = append(points, p)
		}
		if err != nil {
			break
		}
	}
	return points, nil
}

func parseTextPoint(line string) (PointRecord, bool) {
	tokens := strings.Fields(line)
	p := make(PointRecord, len(tokens))
	for i, tok := range tokens {
		v, err := strconv.ParseFloat(tok, 64)
		if err != nil {
			return nil, false
		}
		p[i] = v
	}
	return p, true
}

// decodeBinary reads fixed size little endian points. A negative limit reads
// until the input is exhausted. A trailing partial point is discarded.
func decodeBinary(r io.Reader, fields []FieldDescriptor, limit int) ([]PointRecord, error) {
	size := pointSize(fields)
	if size == 0 {
		return []PointRecord{}, nil
	}
	capacity := preallocLimit
	if limit >= 0 {
		capacity = min(limit, preallocLimit)
	}
	scalars := 0
	for _, f := range fields {
		scalars += f.Count
	}

	points := make([]PointRecord, 0, capacity)
	buf := make([]byte, size)
	for i := 0; limit < 0 || i < limit; i++ {
		if _, err := io.ReadFull(r, buf); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				break
			}
			return nil, errors.Wrapf(err, "read point %d", i)
		}
		points = append(points, decodeBinaryPoint(buf, fields, scalars))
	}
	return points, nil
}

func decodeBinaryPoint(buf []byte, fields []FieldDescriptor, scalars int) PointRecord {
	p := make(PointRecord, 0, scalars)
	offset := 0
	for _, f := range fields {
		for j := 0; j < f.Count; j++ {
			p = append(p, decodeScalar(buf[offset:offset+f.Size], f.Type))
			offset += f.Size
		}
	}
	return p
}

// decodeScalar decodes one little endian value. Unknown type tags and
// unsupported widths decode to 0.
func decodeScalar(b []byte, t FieldType) float64 {
	switch t {
	case FieldFloat:
		switch len(b) {
		case 4:
			return float64(math.Float32frombits(binary.LittleEndian.Uint32(b)))
		case 8:
			return math.Float64frombits(binary.LittleEndian.Uint64(b))
		}
	case FieldInt:
		switch len(b) {
		case 1:
			return float64(int8(b[0]))
		case 2:
			return float64(int16(binary.LittleEndian.Uint16(b)))
		case 4:
			return float64(int32(binary.LittleEndian.Uint32(b)))
		case 8:
			return float64(int64(binary.LittleEndian.Uint64(b)))
		}
	case FieldUint:
		switch len(b) {
		case 1:
			return float64(b[0])
		case 2:
			return float64(binary.LittleEndian.Uint16(b))
		case 4:
			return float64(binary.LittleEndian.Uint32(b))
		case 8:
			return float64(binary.LittleEndian.Uint64(b))
		}
	}
	return 0
}
