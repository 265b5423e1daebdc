package pcd

import (
	"math"

	"github.com/golang/geo/r3"
)

const (
	defaultXIndex         = 0
	defaultYIndex         = 1
	defaultZIndex         = 2
	defaultIntensityIndex = 3
)

// ResolveAxis returns the PointRecord index of the first scalar of the field
// called name. When no field has that name it falls back to defaultIndex, so
// schemas without named coordinates are read positionally.
func ResolveAxis(s *Schema, name string, defaultIndex int) int {
	i := s.FieldIndex(name)
	if i < 0 {
		return defaultIndex
	}
	return s.ScalarOffset(i)
}

// Axes holds the resolved record indices of the coordinate and intensity
// scalars for one schema.
type Axes struct {
	X, Y, Z   int
	Intensity int
	// HasIntensity reports whether the schema names an intensity field, as
	// opposed to Intensity being the positional fallback.
	HasIntensity bool
}

func ResolveAxes(s *Schema) Axes {
	return Axes{
		X:            ResolveAxis(s, "x", defaultXIndex),
		Y:            ResolveAxis(s, "y", defaultYIndex),
		Z:            ResolveAxis(s, "z", defaultZIndex),
		Intensity:    ResolveAxis(s, "intensity", defaultIntensityIndex),
		HasIntensity: s.FieldIndex("intensity") >= 0,
	}
}

func (a Axes) Vector(p PointRecord) r3.Vector {
	return r3.Vector{X: p.At(a.X), Y: p.At(a.Y), Z: p.At(a.Z)}
}

func (a Axes) IntensityOf(p PointRecord) float64 {
	return p.At(a.Intensity)
}

// Coordinates extracts the xyz position of every point in the cloud.
func (p *PointCloud) Coordinates() []r3.Vector {
	axes := ResolveAxes(p.Schema)
	vs := make([]r3.Vector, len(p.Points))
	for i, pt := range p.Points {
		vs[i] = axes.Vector(pt)
	}
	return vs
}

// Finite reports whether the coordinates of p are neither NaN nor infinite.
// Organized clouds mark missing returns with nan coordinates.
func (a Axes) Finite(p PointRecord) bool {
	v := a.Vector(p)
	return isFinite(v.X) && isFinite(v.Y) && isFinite(v.Z)
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
