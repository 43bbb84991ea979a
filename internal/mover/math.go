package mover

import (
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// velocityEpsilon is the tolerance for "non-zero" and "opposite sign"
// decisions. Exact float comparisons are never used for those.
const velocityEpsilon = 1e-4

func almostZero(f float32) bool {
	return absf(f) < velocityEpsilon
}

func almostZeroVec(v rl.Vector3) bool {
	return almostZero(v.X) && almostZero(v.Y) && almostZero(v.Z)
}

func absf(f float32) float32 {
	if f < 0 {
		return -f
	}
	return f
}

func clampf(v, min, max float32) float32 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

// flat returns the vector with its vertical component removed.
func flat(v rl.Vector3) rl.Vector3 {
	return rl.Vector3{X: v.X, Z: v.Z}
}

// projectOnPlane removes the component of v along the plane normal.
func projectOnPlane(v, normal rl.Vector3) rl.Vector3 {
	return rl.Vector3Subtract(v, rl.Vector3Scale(normal, rl.Vector3DotProduct(v, normal)))
}

// moveTowards shifts current toward target by at most maxDelta.
func moveTowards(current, target rl.Vector3, maxDelta float32) rl.Vector3 {
	diff := rl.Vector3Subtract(target, current)
	dist := rl.Vector3Length(diff)
	if dist <= maxDelta || dist < 1e-8 {
		return target
	}
	return rl.Vector3Add(current, rl.Vector3Scale(diff, maxDelta/dist))
}

// towardZero pulls a scalar toward zero by amount, never crossing it.
func towardZero(value, amount float32) float32 {
	if value > 0 {
		value -= amount
		if value < 0 {
			return 0
		}
		return value
	}
	value += amount
	if value > 0 {
		return 0
	}
	return value
}

// clampMagnitude limits the length of v to maxLength.
func clampMagnitude(v rl.Vector3, maxLength float32) rl.Vector3 {
	lenSq := rl.Vector3DotProduct(v, v)
	if lenSq <= maxLength*maxLength || lenSq < 1e-12 {
		return v
	}
	return rl.Vector3Scale(v, maxLength/float32(math.Sqrt(float64(lenSq))))
}

// angleBetweenDeg returns the unsigned angle between two vectors in degrees.
func angleBetweenDeg(a, b rl.Vector3) float32 {
	la := rl.Vector3Length(a)
	lb := rl.Vector3Length(b)
	if la < 1e-8 || lb < 1e-8 {
		return 0
	}
	cos := clampf(rl.Vector3DotProduct(a, b)/(la*lb), -1, 1)
	return float32(math.Acos(float64(cos))) * rl.Rad2deg
}
