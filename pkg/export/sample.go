package export

import (
	"gonum.org/v1/gonum/stat/sampleuv"

	"pcdconvert/pkg/pcd"
)

// Sample returns a uniform random subset of exactly bound points drawn
// without replacement. When bound is not positive or is at least len(points)
// the input slice is returned unchanged.
func Sample(points []pcd.PointRecord, bound int) []pcd.PointRecord {
	if bound <= 0 || len(points) <= bound {
		return points
	}
	idx := make([]int, bound)
	sampleuv.WithoutReplacement(idx, len(points), nil)

	out := make([]pcd.PointRecord, bound)
	for i, j := range idx {
		out[i] = points[j]
	}
	return out
}
