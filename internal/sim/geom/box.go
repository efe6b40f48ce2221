package geom

// Vec3 is a point or extent in scene space. Axis order is x, y, z with z up.
type Vec3 [3]float64

// Box is an axis-aligned volume between two corners.
// Valid boxes keep Min[i] <= Max[i] on every axis.
type Box struct {
	Min Vec3
	Max Vec3
}

func (b Box) Width() float64  { return b.Max[0] - b.Min[0] }
func (b Box) Depth() float64  { return b.Max[1] - b.Min[1] }
func (b Box) Height() float64 { return b.Max[2] - b.Min[2] }

func (b Box) Center() Vec3 {
	return Vec3{
		(b.Min[0] + b.Max[0]) / 2,
		(b.Min[1] + b.Max[1]) / 2,
		(b.Min[2] + b.Max[2]) / 2,
	}
}

func (b Box) Extents() Vec3 {
	return Vec3{b.Max[0] - b.Min[0], b.Max[1] - b.Min[1], b.Max[2] - b.Min[2]}
}

// Valid reports whether Min <= Max holds on every axis.
func (b Box) Valid() bool {
	for i := 0; i < 3; i++ {
		if b.Min[i] > b.Max[i] {
			return false
		}
	}
	return true
}
