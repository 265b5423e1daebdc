package pcd

import (
	"math"

	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/floats"
)

// Bounds returns the per axis minimum and maximum of vs. Both are zero when
// vs is empty.
func Bounds(vs []r3.Vector) (lo, hi r3.Vector) {
	if len(vs) == 0 {
		return
	}
	xs, ys, zs := Columns(vs)
	lo = r3.Vector{X: floats.Min(xs), Y: floats.Min(ys), Z: floats.Min(zs)}
	hi = r3.Vector{X: floats.Max(xs), Y: floats.Max(ys), Z: floats.Max(zs)}
	return
}

// Columns splits vs into one slice per axis.
func Columns(vs []r3.Vector) (xs, ys, zs []float64) {
	xs = make([]float64, len(vs))
	ys = make([]float64, len(vs))
	zs = make([]float64, len(vs))
	for i, v := range vs {
		xs[i], ys[i], zs[i] = v.X, v.Y, v.Z
	}
	return
}

// XYArea estimates the area covered by vs in the XY plane by counting
// occupied grid cells. precision is the number of cells per unit; larger
// values give a finer grid.
func XYArea(vs []r3.Vector, precision float64) float64 {
	if precision <= 0 {
		return 0
	}
	type cell struct{ x, y int64 }
	occupied := make(map[cell]struct{})
	for _, v := range vs {
		occupied[cell{
			x: int64(math.Floor(v.X * precision)),
			y: int64(math.Floor(v.Y * precision)),
		}] = struct{}{}
	}
	return float64(len(occupied)) / precision / precision
}
