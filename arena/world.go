// Package arena provides a deterministic axis-aligned collision world for
// the movement simulation: an optional ground plane plus a set of boxes,
// queried by line traces and capsule sweeps. Determinism is the point; the
// same query always returns the same hit, so prediction and authority can
// share a level description and agree on every trace.
package arena

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/skybreak-gg/stride/game"
	"github.com/skybreak-gg/stride/movement"
)

// skin is how far a reported sweep hit is backed off along the surface
// normal, so follow-up sweeps start outside the surface.
const skin = 0.01

// Box is an axis-aligned block of world geometry.
type Box struct {
	Min, Max mgl32.Vec3
	// Climbable marks the box as a valid climb and hang target.
	Climbable bool
}

// World is a static level: a ground plane and boxes. It is safe for
// concurrent readers once built.
type World struct {
	// GroundZ is the height of the ground plane.
	GroundZ float32
	// HasGround disables the ground plane when false, for pit levels.
	HasGround bool

	boxes []Box
}

// NewWorld returns a world with a ground plane at z=0 and no boxes.
func NewWorld() *World {
	return &World{HasGround: true}
}

// AddBox adds a block to the level.
func (w *World) AddBox(b Box) {
	w.boxes = append(w.boxes, b)
}

// Boxes returns the level's blocks.
func (w *World) Boxes() []Box { return w.boxes }

// LineTrace casts a ray and reports the first surface hit.
func (w *World) LineTrace(start, end mgl32.Vec3, channel movement.Channel) (movement.Hit, bool) {
	delta := end.Sub(start)
	best := movement.Hit{Frac: 2}
	found := false

	if w.HasGround && start[2] >= w.GroundZ && end[2] < w.GroundZ {
		frac := (start[2] - w.GroundZ) / (start[2] - end[2])
		point := start.Add(delta.Mul(frac))
		best = movement.Hit{Pos: point, Point: point, Normal: game.Up, Frac: frac}
		found = true
	}

	for _, b := range w.boxes {
		frac, normal, ok := rayBox(start, delta, b.Min, b.Max)
		if !ok || frac >= best.Frac {
			continue
		}
		point := start.Add(delta.Mul(frac))
		best = movement.Hit{Pos: point, Point: point, Normal: normal, Frac: frac, Climbable: b.Climbable}
		found = true
	}
	return best, found
}

// SweepCapsule sweeps a capsule between two center positions. The capsule is
// approximated by its bounding extents, which keeps every query a ray versus
// an expanded box.
func (w *World) SweepCapsule(radius, halfHeight float32, start, end mgl32.Vec3, channel movement.Channel) (movement.Hit, bool) {
	delta := end.Sub(start)
	best := movement.Hit{Frac: 2}
	found := false

	if w.HasGround {
		bottom := start[2] - halfHeight
		endBottom := end[2] - halfHeight
		if bottom >= w.GroundZ && endBottom < w.GroundZ {
			frac := (bottom - w.GroundZ) / (bottom - endBottom)
			pos := start.Add(delta.Mul(frac))
			best = movement.Hit{
				Pos:    pos.Add(game.Up.Mul(skin)),
				Point:  mgl32.Vec3{pos[0], pos[1], w.GroundZ},
				Normal: game.Up,
				Frac:   frac,
			}
			found = true
		}
	}

	ext := mgl32.Vec3{radius, radius, halfHeight}
	for _, b := range w.boxes {
		min := b.Min.Sub(ext)
		max := b.Max.Add(ext)
		frac, normal, ok := rayBox(start, delta, min, max)
		if !ok || frac >= best.Frac {
			continue
		}
		pos := start.Add(delta.Mul(frac))
		reach := radius
		if normal[2] != 0 {
			reach = halfHeight
		}
		best = movement.Hit{
			Pos:       pos.Add(normal.Mul(skin)),
			Point:     pos.Sub(normal.Mul(reach)),
			Normal:    normal,
			Frac:      frac,
			Climbable: b.Climbable,
		}
		found = true
	}
	return best, found
}

// rayBox intersects a ray segment with a box using the slab method. A start
// inside the box reports a hit at fraction zero with an upward normal.
func rayBox(start, delta, min, max mgl32.Vec3) (float32, mgl32.Vec3, bool) {
	tmin, tmax := float32(0), float32(1)
	axis := -1
	sign := float32(-1)

	for i := 0; i < 3; i++ {
		d := delta[i]
		if math32.Abs(d) < 1e-8 {
			if start[i] < min[i] || start[i] > max[i] {
				return 0, mgl32.Vec3{}, false
			}
			continue
		}
		inv := 1 / d
		t1 := (min[i] - start[i]) * inv
		t2 := (max[i] - start[i]) * inv
		s := float32(-1)
		if t1 > t2 {
			t1, t2 = t2, t1
			s = 1
		}
		if t1 > tmin {
			tmin, axis, sign = t1, i, s
		}
		if t2 < tmax {
			tmax = t2
		}
		if tmin > tmax {
			return 0, mgl32.Vec3{}, false
		}
	}

	if axis == -1 {
		return 0, game.Up, true
	}
	var normal mgl32.Vec3
	normal[axis] = sign
	return tmin, normal, true
}
