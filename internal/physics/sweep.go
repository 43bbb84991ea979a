package physics

import (
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// sweepEpsilon is the surface gap at which a sweep is considered touching.
const sweepEpsilon = 1e-4

// sweepMaxIterations bounds conservative advancement when two surfaces
// approach at a grazing angle.
const sweepMaxIterations = 48

// separation returns a lower bound of the distance between two solids.
// Exact for every pair involving a sphere or capsule; for box vs box it is
// the best separation over the SAT axes, which under-estimates only near
// vertex-vertex features. Negative values mean overlap.
func separation(a, b solid) float32 {
	if a.kind == kindBox && b.kind == kindBox {
		return obbSeparation(a.obb, b.obb)
	}
	if a.kind == kindBox {
		return separation(b, a)
	}

	switch b.kind {
	case kindBox:
		center := a.center
		if a.kind == kindCapsule {
			center, _ = segmentOBBClosest(a.segA, a.segB, b.obb)
		}
		closest := ClosestPointOnOBB(b.obb, center)
		d := rl.Vector3Length(rl.Vector3Subtract(center, closest))
		if d < 1e-6 {
			// Center inside the box: definitely overlapping.
			return -a.radius
		}
		return d - a.radius
	case kindSphere:
		center := a.center
		if a.kind == kindCapsule {
			center = closestOnSegment(b.center, a.segA, a.segB)
		}
		return rl.Vector3Length(rl.Vector3Subtract(center, b.center)) - a.radius - b.radius
	default:
		var ca, cb rl.Vector3
		if a.kind == kindSphere {
			ca = a.center
			cb = closestOnSegment(a.center, b.segA, b.segB)
		} else {
			ca, cb = segmentSegmentClosest(a.segA, a.segB, b.segA, b.segB)
		}
		return rl.Vector3Length(rl.Vector3Subtract(ca, cb)) - a.radius - b.radius
	}
}

// obbSeparation returns the maximum separation over the 15 SAT axes.
func obbSeparation(a, b OBB) float32 {
	t := rl.Vector3Subtract(b.Center, a.Center)
	best := float32(math.Inf(-1))

	test := func(axis rl.Vector3) {
		length := rl.Vector3Length(axis)
		if length < 0.0001 {
			return
		}
		axis = rl.Vector3Scale(axis, 1/length)
		aProj := a.HalfSize.X*absf(rl.Vector3DotProduct(a.Axes[0], axis)) +
			a.HalfSize.Y*absf(rl.Vector3DotProduct(a.Axes[1], axis)) +
			a.HalfSize.Z*absf(rl.Vector3DotProduct(a.Axes[2], axis))
		bProj := b.HalfSize.X*absf(rl.Vector3DotProduct(b.Axes[0], axis)) +
			b.HalfSize.Y*absf(rl.Vector3DotProduct(b.Axes[1], axis)) +
			b.HalfSize.Z*absf(rl.Vector3DotProduct(b.Axes[2], axis))
		if sep := absf(rl.Vector3DotProduct(t, axis)) - aProj - bProj; sep > best {
			best = sep
		}
	}

	for i := 0; i < 3; i++ {
		test(a.Axes[i])
	}
	for i := 0; i < 3; i++ {
		test(b.Axes[i])
	}
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			test(rl.Vector3CrossProduct(a.Axes[i], b.Axes[j]))
		}
	}
	return best
}

// sweepAgainst advances collider c along direction until it touches target,
// up to maxDistance. Returns the travel distance and the contact normal and
// point. Conservative advancement: each iteration moves by the current
// separation lower bound, so surfaces can never be tunnelled through.
func sweepAgainst(c *Collider, direction rl.Vector3, maxDistance float32, target *Collider) (float32, rl.Vector3, rl.Vector3, bool) {
	tb := target.solidAt(rl.Vector3{})

	var travelled float32
	for iter := 0; iter < sweepMaxIterations; iter++ {
		sa := c.solidAt(rl.Vector3Scale(direction, travelled))
		gap := separation(sa, tb)

		if gap <= sweepEpsilon {
			if iter == 0 && gap < -sweepEpsilon {
				// Already interpenetrating at the start: report a
				// zero-distance contact.
				travelled = 0
			}
			normal, point := contactAt(c, direction, travelled, tb)
			return travelled, normal, point, true
		}

		travelled += gap
		if travelled > maxDistance {
			return 0, rl.Vector3{}, rl.Vector3{}, false
		}
	}
	return 0, rl.Vector3{}, rl.Vector3{}, false
}

// contactAt derives the surface normal and contact point once a sweep has
// stopped at the touching distance. The moving solid is nudged slightly
// past contact so the minimum-translation vector is well defined.
func contactAt(c *Collider, direction rl.Vector3, travelled float32, tb solid) (rl.Vector3, rl.Vector3) {
	probe := c.solidAt(rl.Vector3Scale(direction, travelled+4*sweepEpsilon))
	dir, _, ok := mtvSolids(probe, tb)
	if !ok || rl.Vector3Length(dir) < 1e-6 {
		// Grazing contact: fall back to the reversed cast direction.
		return rl.Vector3Scale(direction, -1), probe.center
	}

	normal := dir
	var point rl.Vector3
	switch tb.kind {
	case kindBox:
		point = ClosestPointOnOBB(tb.obb, probe.center)
	case kindSphere:
		point = rl.Vector3Add(tb.center, rl.Vector3Scale(normal, tb.radius))
	default:
		onSeg := closestOnSegment(probe.center, tb.segA, tb.segB)
		point = rl.Vector3Add(onSeg, rl.Vector3Scale(normal, tb.radius))
	}
	return normal, point
}
