package pcd

// PointRecord is one decoded point: the scalars of every field flattened in
// field order, each field contributing Count values.
type PointRecord []float64

// At returns the i-th scalar of the record, or 0 when the record is too
// short to hold it.
func (p PointRecord) At(i int) float64 {
	if i < 0 || i >= len(p) {
		return 0
	}
	return p[i]
}

// PointCloud is every point decoded from one input, together with the schema
// that described it.
type PointCloud struct {
	Schema *Schema
	Points []PointRecord
}

func (p *PointCloud) AddPoint(pt PointRecord) {
	p.Points = append(p.Points, pt)
}

func (p *PointCloud) PointCount() int {
	return len(p.Points)
}
