package pcd

import (
	"bufio"
	"io"
)

// binFields is the layout of a KITTI velodyne scan: packed float32
// x, y, z, reflectance with no header.
var binFields = []FieldDescriptor{
	{Name: "x", Size: 4, Type: FieldFloat, Count: 1},
	{Name: "y", Size: 4, Type: FieldFloat, Count: 1},
	{Name: "z", Size: 4, Type: FieldFloat, Count: 1},
	{Name: "intensity", Size: 4, Type: FieldFloat, Count: 1},
}

// DecodeBin reads a KITTI scan until r is exhausted. A trailing partial
// point is discarded.
func DecodeBin(r io.Reader) (*PointCloud, error) {
	fields := make([]FieldDescriptor, len(binFields))
	copy(fields, binFields)

	points, err := decodeBinary(bufio.NewReader(r), fields, -1)
	if err != nil {
		return nil, err
	}
	return &PointCloud{
		Schema: &Schema{
			Fields:  fields,
			Width:   len(points),
			Height:  1,
			Points:  len(points),
			Storage: StorageBinary,
		},
		Points: points,
	}, nil
}
