// Package spatial answers directional relation queries between boxes using
// the axis-aligned bounds of their volumes. The predicate family is exact:
// left/right/below compare strict bounds, above allows a contact tolerance so
// stacked boxes still classify when they rest flush on each other.
package spatial

import (
	"blockstack.ai/internal/sim/geom"
	"blockstack.ai/internal/sim/scene"
)

// DefaultAboveTolerance is the contact slack for the above relation: a box
// counts as above when its bottom is no more than this far below the
// reference top.
const DefaultAboveTolerance = 0.1

// Left returns the boxes whose volume lies entirely left of ref on x while
// overlapping it on y and z, in scene order.
func Left(ref geom.Box, sc *scene.Scene) []scene.Entry {
	r := bounds(ref)
	return filter(sc, func(b geom.Box) bool {
		return b.Max[0] < r.Min[0] && overlaps(r, b, 1) && overlaps(r, b, 2)
	})
}

// Right is the mirror of Left on the x axis.
func Right(ref geom.Box, sc *scene.Scene) []scene.Entry {
	r := bounds(ref)
	return filter(sc, func(b geom.Box) bool {
		return b.Min[0] > r.Max[0] && overlaps(r, b, 1) && overlaps(r, b, 2)
	})
}

// Below returns the boxes entirely under ref on z with x/y footprint overlap.
func Below(ref geom.Box, sc *scene.Scene) []scene.Entry {
	r := bounds(ref)
	return filter(sc, func(b geom.Box) bool {
		return b.Max[2] < r.Min[2] && overlaps(r, b, 0) && overlaps(r, b, 1)
	})
}

// Above returns the boxes resting on or above ref: bottom z within tolerance
// of the reference top, x/y footprints overlapping.
func Above(ref geom.Box, sc *scene.Scene, tolerance float64) []scene.Entry {
	r := bounds(ref)
	return filter(sc, func(b geom.Box) bool {
		return b.Min[2]+tolerance >= r.Max[2] && overlaps(r, b, 0) && overlaps(r, b, 1)
	})
}

// bounds goes through the volume so rotated construction keeps working if a
// caller ever hands us a rotated placement.
func bounds(b geom.Box) geom.Box {
	return geom.MakeVolume(b, 0, 0, 0).Bounds()
}

// overlaps is the open-interval intersection test on one axis.
func overlaps(r, b geom.Box, axis int) bool {
	return b.Min[axis] < r.Max[axis] && b.Max[axis] > r.Min[axis]
}

func filter(sc *scene.Scene, pred func(geom.Box) bool) []scene.Entry {
	var out []scene.Entry
	for _, e := range sc.Entries() {
		if pred(bounds(e.Box)) {
			out = append(out, e)
		}
	}
	return out
}
