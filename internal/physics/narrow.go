package physics

import (
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// closestOnSegment returns the point on segment [a,b] closest to p.
func closestOnSegment(p, a, b rl.Vector3) rl.Vector3 {
	ab := rl.Vector3Subtract(b, a)
	lenSq := rl.Vector3DotProduct(ab, ab)
	if lenSq < 1e-12 {
		return a
	}
	t := clampf(rl.Vector3DotProduct(rl.Vector3Subtract(p, a), ab)/lenSq, 0, 1)
	return rl.Vector3Add(a, rl.Vector3Scale(ab, t))
}

// segmentSegmentClosest returns the closest points between segments [p1,q1]
// and [p2,q2].
func segmentSegmentClosest(p1, q1, p2, q2 rl.Vector3) (rl.Vector3, rl.Vector3) {
	d1 := rl.Vector3Subtract(q1, p1)
	d2 := rl.Vector3Subtract(q2, p2)
	r := rl.Vector3Subtract(p1, p2)

	a := rl.Vector3DotProduct(d1, d1)
	e := rl.Vector3DotProduct(d2, d2)
	f := rl.Vector3DotProduct(d2, r)

	var s, t float32
	if a <= 1e-12 && e <= 1e-12 {
		return p1, p2
	}
	if a <= 1e-12 {
		t = clampf(f/e, 0, 1)
	} else {
		c := rl.Vector3DotProduct(d1, r)
		if e <= 1e-12 {
			s = clampf(-c/a, 0, 1)
		} else {
			b := rl.Vector3DotProduct(d1, d2)
			denom := a*e - b*b
			if denom > 1e-12 {
				s = clampf((b*f-c*e)/denom, 0, 1)
			}
			t = (b*s + f) / e
			if t < 0 {
				t = 0
				s = clampf(-c/a, 0, 1)
			} else if t > 1 {
				t = 1
				s = clampf((b-c)/a, 0, 1)
			}
		}
	}
	c1 := rl.Vector3Add(p1, rl.Vector3Scale(d1, s))
	c2 := rl.Vector3Add(p2, rl.Vector3Scale(d2, t))
	return c1, c2
}

// segmentOBBClosest finds the point on segment [a,b] closest to the OBB by
// alternating projections. Converges fast for the short segments capsules
// produce.
func segmentOBBClosest(a, b rl.Vector3, o OBB) (rl.Vector3, rl.Vector3) {
	onSeg := closestOnSegment(o.Center, a, b)
	var onBox rl.Vector3
	for i := 0; i < 4; i++ {
		onBox = ClosestPointOnOBB(o, onSeg)
		onSeg = closestOnSegment(onBox, a, b)
	}
	return onSeg, ClosestPointOnOBB(o, onSeg)
}

// sphereOf reduces a solid to the sphere nearest to a reference point. Boxes
// are not reducible and return ok=false.
func (s solid) sphereOf(ref rl.Vector3) (center rl.Vector3, radius float32, ok bool) {
	switch s.kind {
	case kindSphere:
		return s.center, s.radius, true
	case kindCapsule:
		return closestOnSegment(ref, s.segA, s.segB), s.radius, true
	}
	return rl.Vector3{}, 0, false
}

// overlapSolids reports whether two solids intersect.
func overlapSolids(a, b solid) bool {
	_, depth, ok := mtvSolids(a, b)
	return ok && depth >= 0
}

// mtvSolids computes the minimum translation that pushes a out of b.
// Returns the push direction (unit), the penetration depth, and whether the
// solids actually overlap.
func mtvSolids(a, b solid) (rl.Vector3, float32, bool) {
	// Box vs box keeps the SAT path.
	if a.kind == kindBox && b.kind == kindBox {
		mtv := a.obb.ResolveOBB(b.obb)
		depth := rl.Vector3Length(mtv)
		if depth <= 0 {
			return rl.Vector3{}, 0, false
		}
		return rl.Vector3Scale(mtv, 1/depth), depth, true
	}

	// Everything else reduces to sphere-vs-solid at the closest feature.
	if a.kind != kindBox {
		center, radius, _ := a.sphereOf(b.center)
		if b.kind == kindCapsule {
			ca, cb := segmentSegmentClosest(a.segA, a.segB, b.segA, b.segB)
			if a.kind == kindSphere {
				ca = a.center
				cb = closestOnSegment(a.center, b.segA, b.segB)
			}
			return sphereSphereMTV(ca, radius, cb, b.radius)
		}
		if b.kind == kindSphere {
			if a.kind == kindCapsule {
				center = closestOnSegment(b.center, a.segA, a.segB)
			}
			return sphereSphereMTV(center, radius, b.center, b.radius)
		}
		// b is a box
		if a.kind == kindCapsule {
			onSeg, _ := segmentOBBClosest(a.segA, a.segB, b.obb)
			center = onSeg
		}
		return sphereBoxMTV(center, radius, b.obb)
	}

	// a is a box, b is round: push b out of a and flip.
	dir, depth, ok := mtvSolids(b, a)
	return rl.Vector3Scale(dir, -1), depth, ok
}

func sphereSphereMTV(ca rl.Vector3, ra float32, cb rl.Vector3, rb float32) (rl.Vector3, float32, bool) {
	diff := rl.Vector3Subtract(ca, cb)
	dist := rl.Vector3Length(diff)
	if dist >= ra+rb {
		return rl.Vector3{}, 0, false
	}
	if dist < 1e-6 {
		// Centers coincide; push up by convention.
		return rl.Vector3{Y: 1}, ra + rb, true
	}
	return rl.Vector3Scale(diff, 1/dist), ra + rb - dist, true
}

func sphereBoxMTV(center rl.Vector3, radius float32, o OBB) (rl.Vector3, float32, bool) {
	closest := ClosestPointOnOBB(o, center)
	diff := rl.Vector3Subtract(center, closest)
	dist := rl.Vector3Length(diff)

	if dist > 1e-6 {
		if dist >= radius {
			return rl.Vector3{}, 0, false
		}
		return rl.Vector3Scale(diff, 1/dist), radius - dist, true
	}

	// Center is inside the box: push out through the nearest face.
	local := rl.Vector3Subtract(center, o.Center)
	half := [3]float32{o.HalfSize.X, o.HalfSize.Y, o.HalfSize.Z}
	best := float32(math.MaxFloat32)
	normal := o.Axes[1]
	for i := 0; i < 3; i++ {
		d := rl.Vector3DotProduct(local, o.Axes[i])
		if gap := half[i] - d; gap < best {
			best = gap
			normal = o.Axes[i]
		}
		if gap := half[i] + d; gap < best {
			best = gap
			normal = rl.Vector3Scale(o.Axes[i], -1)
		}
	}
	return normal, best + radius, true
}

// raySolid intersects a ray with a solid. Returns distance along the ray,
// surface point and normal.
func raySolid(origin, direction rl.Vector3, s solid, maxDistance float32) (float32, rl.Vector3, rl.Vector3, bool) {
	switch s.kind {
	case kindBox:
		return rayOBB(origin, direction, s.obb, maxDistance)
	case kindSphere:
		return raySphere(origin, direction, s.center, s.radius, maxDistance)
	default:
		return rayCapsule(origin, direction, s, maxDistance)
	}
}

// rayOBB transforms the ray to box-local space and runs the slab test.
func rayOBB(origin, direction rl.Vector3, o OBB, maxDistance float32) (float32, rl.Vector3, rl.Vector3, bool) {
	rel := rl.Vector3Subtract(origin, o.Center)
	var localOrigin, localDir [3]float32
	for i := 0; i < 3; i++ {
		localOrigin[i] = rl.Vector3DotProduct(rel, o.Axes[i])
		localDir[i] = rl.Vector3DotProduct(direction, o.Axes[i])
	}
	half := [3]float32{o.HalfSize.X, o.HalfSize.Y, o.HalfSize.Z}

	tmin := float32(math.Inf(-1))
	tmax := float32(math.Inf(1))
	axisIdx := -1
	axisSign := float32(1)

	for i := 0; i < 3; i++ {
		if absf(localDir[i]) < 1e-8 {
			if localOrigin[i] < -half[i] || localOrigin[i] > half[i] {
				return 0, rl.Vector3{}, rl.Vector3{}, false
			}
			continue
		}
		inv := 1 / localDir[i]
		t1 := (-half[i] - localOrigin[i]) * inv
		t2 := (half[i] - localOrigin[i]) * inv
		sign := float32(-1)
		if t1 > t2 {
			t1, t2 = t2, t1
			sign = 1
		}
		if t1 > tmin {
			tmin = t1
			axisIdx = i
			axisSign = sign
		}
		if t2 < tmax {
			tmax = t2
		}
		if tmin > tmax {
			return 0, rl.Vector3{}, rl.Vector3{}, false
		}
	}

	t := tmin
	if t < 0 {
		t = tmax
	}
	if t < 0 || t > maxDistance {
		return 0, rl.Vector3{}, rl.Vector3{}, false
	}

	point := rl.Vector3Add(origin, rl.Vector3Scale(direction, t))
	var normal rl.Vector3
	if axisIdx >= 0 {
		normal = rl.Vector3Scale(o.Axes[axisIdx], axisSign)
	} else {
		normal = o.surfaceNormal(point)
	}
	// Normal must face the ray origin side.
	if rl.Vector3DotProduct(normal, direction) > 0 {
		normal = rl.Vector3Scale(normal, -1)
	}
	return t, point, normal, true
}

func raySphere(origin, direction, center rl.Vector3, radius, maxDistance float32) (float32, rl.Vector3, rl.Vector3, bool) {
	oc := rl.Vector3Subtract(origin, center)
	b := 2 * rl.Vector3DotProduct(oc, direction)
	c := rl.Vector3DotProduct(oc, oc) - radius*radius

	discriminant := b*b - 4*c
	if discriminant < 0 {
		return 0, rl.Vector3{}, rl.Vector3{}, false
	}
	sq := float32(math.Sqrt(float64(discriminant)))
	t := (-b - sq) / 2
	if t < 0 {
		t = (-b + sq) / 2
	}
	if t < 0 || t > maxDistance {
		return 0, rl.Vector3{}, rl.Vector3{}, false
	}
	point := rl.Vector3Add(origin, rl.Vector3Scale(direction, t))
	normal := rl.Vector3Normalize(rl.Vector3Subtract(point, center))
	return t, point, normal, true
}

// rayCapsule tests the finite cylinder body and both cap spheres, keeping
// the nearest hit.
func rayCapsule(origin, direction rl.Vector3, s solid, maxDistance float32) (float32, rl.Vector3, rl.Vector3, bool) {
	best := maxDistance
	var bestPoint, bestNormal rl.Vector3
	found := false

	take := func(t float32, point, normal rl.Vector3, ok bool) {
		if ok && t <= best {
			best = t
			bestPoint = point
			bestNormal = normal
			found = true
		}
	}

	take(raySphere(origin, direction, s.segA, s.radius, best))
	take(raySphere(origin, direction, s.segB, s.radius, best))

	axis := rl.Vector3Subtract(s.segB, s.segA)
	axisLen := rl.Vector3Length(axis)
	if axisLen > 1e-6 {
		axis = rl.Vector3Scale(axis, 1/axisLen)
		oc := rl.Vector3Subtract(origin, s.segA)

		dPerp := rl.Vector3Subtract(direction, rl.Vector3Scale(axis, rl.Vector3DotProduct(direction, axis)))
		oPerp := rl.Vector3Subtract(oc, rl.Vector3Scale(axis, rl.Vector3DotProduct(oc, axis)))

		a := rl.Vector3DotProduct(dPerp, dPerp)
		if a > 1e-8 {
			b := 2 * rl.Vector3DotProduct(oPerp, dPerp)
			c := rl.Vector3DotProduct(oPerp, oPerp) - s.radius*s.radius
			disc := b*b - 4*a*c
			if disc >= 0 {
				sq := float32(math.Sqrt(float64(disc)))
				t := (-b - sq) / (2 * a)
				if t < 0 {
					t = (-b + sq) / (2 * a)
				}
				if t >= 0 && t <= best {
					point := rl.Vector3Add(origin, rl.Vector3Scale(direction, t))
					along := rl.Vector3DotProduct(rl.Vector3Subtract(point, s.segA), axis)
					if along >= 0 && along <= axisLen {
						onAxis := rl.Vector3Add(s.segA, rl.Vector3Scale(axis, along))
						normal := rl.Vector3Normalize(rl.Vector3Subtract(point, onAxis))
						take(t, point, normal, true)
					}
				}
			}
		}
	}

	return best, bestPoint, bestNormal, found
}

// bounds returns a world-space AABB containing the solid.
func (s solid) bounds() AABB {
	switch s.kind {
	case kindBox:
		r := s.obb.HalfSize.X*absf(s.obb.Axes[0].X) + s.obb.HalfSize.Y*absf(s.obb.Axes[1].X) + s.obb.HalfSize.Z*absf(s.obb.Axes[2].X)
		u := s.obb.HalfSize.X*absf(s.obb.Axes[0].Y) + s.obb.HalfSize.Y*absf(s.obb.Axes[1].Y) + s.obb.HalfSize.Z*absf(s.obb.Axes[2].Y)
		f := s.obb.HalfSize.X*absf(s.obb.Axes[0].Z) + s.obb.HalfSize.Y*absf(s.obb.Axes[1].Z) + s.obb.HalfSize.Z*absf(s.obb.Axes[2].Z)
		return NewAABBFromCenter(s.obb.Center, rl.Vector3{X: r * 2, Y: u * 2, Z: f * 2})
	case kindSphere:
		d := s.radius * 2
		return NewAABBFromCenter(s.center, rl.Vector3{X: d, Y: d, Z: d})
	default:
		min := rl.Vector3{
			X: minf(s.segA.X, s.segB.X) - s.radius,
			Y: minf(s.segA.Y, s.segB.Y) - s.radius,
			Z: minf(s.segA.Z, s.segB.Z) - s.radius,
		}
		max := rl.Vector3{
			X: maxf(s.segA.X, s.segB.X) + s.radius,
			Y: maxf(s.segA.Y, s.segB.Y) + s.radius,
			Z: maxf(s.segA.Z, s.segB.Z) + s.radius,
		}
		return AABB{Min: min, Max: max}
	}
}

func minf(a, b float32) float32 {
	if a < b {
		return a
	}
	return b
}
