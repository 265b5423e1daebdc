package export

import (
	"math"

	"github.com/samber/lo"

	"pcdconvert/pkg/pcd"
)

// finitePoints returns the points whose coordinates are all finite. The
// input slice is returned as is when nothing needs dropping.
func finitePoints(points []pcd.PointRecord, axes pcd.Axes) []pcd.PointRecord {
	if lo.EveryBy(points, axes.Finite) {
		return points
	}
	return lo.Filter(points, func(p pcd.PointRecord, _ int) bool {
		return axes.Finite(p)
	})
}

// finiteOrZero maps NaN and infinities to 0 so they encode as JSON numbers.
func finiteOrZero(f float64) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}
