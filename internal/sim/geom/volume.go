package geom

import "math"

// Volume is a box solid placed in scene space. It starts axis-aligned and may
// be rotated about its own center, so its bounds are the AABB of its corners.
type Volume struct {
	corners [8]Vec3
}

// MakeVolume builds the solid for a box and applies rotations about the box
// center in the order x, y, z. Angles are in degrees. A box with Min > Max on
// some axis yields a degenerate volume; callers guard for that.
func MakeVolume(b Box, rotX, rotY, rotZ float64) Volume {
	var v Volume
	i := 0
	for _, x := range [2]float64{b.Min[0], b.Max[0]} {
		for _, y := range [2]float64{b.Min[1], b.Max[1]} {
			for _, z := range [2]float64{b.Min[2], b.Max[2]} {
				v.corners[i] = Vec3{x, y, z}
				i++
			}
		}
	}
	center := b.Center()
	for axis, deg := range [3]float64{rotX, rotY, rotZ} {
		if deg != 0 {
			v.rotate(axis, deg*math.Pi/180, center)
		}
	}
	return v
}

// Bounds returns the axis-aligned box enclosing the volume.
func (v Volume) Bounds() Box {
	b := Box{Min: v.corners[0], Max: v.corners[0]}
	for _, c := range v.corners[1:] {
		for i := 0; i < 3; i++ {
			b.Min[i] = math.Min(b.Min[i], c[i])
			b.Max[i] = math.Max(b.Max[i], c[i])
		}
	}
	return b
}

func (v *Volume) rotate(axis int, rad float64, center Vec3) {
	sin, cos := math.Sin(rad), math.Cos(rad)
	// Index the two axes orthogonal to the rotation axis.
	u, w := (axis+1)%3, (axis+2)%3
	for i, c := range v.corners {
		du, dw := c[u]-center[u], c[w]-center[w]
		c[u] = center[u] + du*cos - dw*sin
		c[w] = center[w] + du*sin + dw*cos
		v.corners[i] = c
	}
}
