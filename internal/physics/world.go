package physics

import (
	"log"
	"math"
	"sort"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// Spatial grid cell size - colliders are bucketed by the cells their bounds
// overlap.
const CellSize = 5.0

// CellKey for spatial hashing
type CellKey struct {
	X, Y, Z int
}

func posToCell(pos rl.Vector3) CellKey {
	return CellKey{
		X: int(math.Floor(float64(pos.X / CellSize))),
		Y: int(math.Floor(float64(pos.Y / CellSize))),
		Z: int(math.Floor(float64(pos.Z / CellSize))),
	}
}

// RaycastHit is one geometric contact reported by a query.
type RaycastHit struct {
	Collider *Collider
	Point    rl.Vector3
	Normal   rl.Vector3
	Distance float32
}

// World registers colliders and serves masked geometric queries against
// them. It performs no dynamics of its own; movers own their transforms and
// use the world purely as a query service.
type World struct {
	colliders []*Collider
	grid      map[CellKey][]*Collider
	dirty     bool

	lastAnomalyLog time.Time // rate-limits degenerate-normal logs
}

func NewWorld() *World {
	return &World{
		colliders: make([]*Collider, 0),
		grid:      make(map[CellKey][]*Collider),
	}
}

func (w *World) Add(c *Collider) {
	w.colliders = append(w.colliders, c)
	w.dirty = true
}

func (w *World) Remove(c *Collider) {
	for i, col := range w.colliders {
		if col == c {
			w.colliders = append(w.colliders[:i], w.colliders[i+1:]...)
			w.dirty = true
			return
		}
	}
}

// MarkDirty flags the spatial grid for a rebuild. Movers call this after
// changing their transform; the rebuild happens lazily on the next query.
func (w *World) MarkDirty() {
	w.dirty = true
}

func (w *World) ColliderCount() int {
	return len(w.colliders)
}

func (w *World) rebuildGrid() {
	for k := range w.grid {
		delete(w.grid, k)
	}
	for _, c := range w.colliders {
		if !c.Enabled {
			continue
		}
		bounds := c.solidAt(rl.Vector3{}).bounds()
		w.insertBounds(c, bounds)
	}
	w.dirty = false
}

func (w *World) insertBounds(c *Collider, bounds AABB) {
	min := posToCell(bounds.Min)
	max := posToCell(bounds.Max)
	for x := min.X; x <= max.X; x++ {
		for y := min.Y; y <= max.Y; y++ {
			for z := min.Z; z <= max.Z; z++ {
				key := CellKey{x, y, z}
				w.grid[key] = append(w.grid[key], c)
			}
		}
	}
}

// candidates gathers the unique enabled colliders whose cells overlap the
// query bounds.
func (w *World) candidates(bounds AABB, out []*Collider) []*Collider {
	if w.dirty {
		w.rebuildGrid()
	}
	seen := make(map[*Collider]bool)
	min := posToCell(bounds.Min)
	max := posToCell(bounds.Max)
	for x := min.X; x <= max.X; x++ {
		for y := min.Y; y <= max.Y; y++ {
			for z := min.Z; z <= max.Z; z++ {
				for _, c := range w.grid[CellKey{x, y, z}] {
					if !seen[c] {
						seen[c] = true
						out = append(out, c)
					}
				}
			}
		}
	}
	return out
}

func (w *World) accepts(c *Collider, mask uint32, policy TriggerPolicy, ignore []*Collider) bool {
	if !c.Enabled || c.Layer&mask == 0 {
		return false
	}
	if c.IsTrigger && policy == IgnoreTriggers {
		return false
	}
	for _, ig := range ignore {
		if ig == c {
			return false
		}
	}
	return true
}

// Raycast returns the closest hit along the ray, if any.
func (w *World) Raycast(origin, direction rl.Vector3, maxDistance float32, mask uint32, policy TriggerPolicy, ignore []*Collider) (RaycastHit, bool) {
	direction = rl.Vector3Normalize(direction)
	bounds := AABB{Min: origin, Max: origin}.Sweep(rl.Vector3Scale(direction, maxDistance)).Expand(0.1)

	var closest RaycastHit
	closest.Distance = maxDistance
	found := false

	for _, c := range w.candidates(bounds, nil) {
		if !w.accepts(c, mask, policy, ignore) {
			continue
		}
		t, point, normal, ok := raySolid(origin, direction, c.solidAt(rl.Vector3{}), closest.Distance)
		if ok && t <= closest.Distance {
			closest = RaycastHit{
				Collider: c,
				Point:    point,
				Normal:   w.sanitizeNormal(normal, direction),
				Distance: t,
			}
			found = true
		}
	}
	return closest, found
}

// CastShape sweeps the collider along direction and appends every contact
// within maxDistance to buf, sorted by ascending distance. The cast collider
// itself is always excluded.
func (w *World) CastShape(c *Collider, direction rl.Vector3, maxDistance float32, mask uint32, policy TriggerPolicy, ignore []*Collider, buf []RaycastHit) []RaycastHit {
	direction = rl.Vector3Normalize(direction)
	start := len(buf)

	bounds := c.solidAt(rl.Vector3{}).bounds().Sweep(rl.Vector3Scale(direction, maxDistance)).Expand(0.1)
	for _, other := range w.candidates(bounds, nil) {
		if other == c || !w.accepts(other, mask, policy, ignore) {
			continue
		}
		travelled, normal, point, ok := sweepAgainst(c, direction, maxDistance, other)
		if !ok {
			continue
		}
		buf = append(buf, RaycastHit{
			Collider: other,
			Point:    point,
			Normal:   w.sanitizeNormal(normal, direction),
			Distance: travelled,
		})
	}

	tail := buf[start:]
	sort.SliceStable(tail, func(i, j int) bool { return tail[i].Distance < tail[j].Distance })
	return buf
}

// Overlap appends every collider overlapping c to buf.
func (w *World) Overlap(c *Collider, mask uint32, policy TriggerPolicy, ignore []*Collider, buf []*Collider) []*Collider {
	sa := c.solidAt(rl.Vector3{})
	bounds := sa.bounds().Expand(0.01)

	for _, other := range w.candidates(bounds, nil) {
		if other == c || !w.accepts(other, mask, policy, ignore) {
			continue
		}
		if overlapSolids(sa, other.solidAt(rl.Vector3{})) {
			buf = append(buf, other)
		}
	}
	return buf
}

// Penetration computes the direction and depth needed to move a out of b.
func (w *World) Penetration(a, b *Collider) (rl.Vector3, float32, bool) {
	dir, depth, ok := mtvSolids(a.solidAt(rl.Vector3{}), b.solidAt(rl.Vector3{}))
	if !ok {
		return rl.Vector3{}, 0, false
	}
	return w.sanitizeNormal(dir, rl.Vector3Scale(dir, -1)), depth, true
}

// sanitizeNormal recovers from degenerate query results. A NaN normal must
// never reach transform state; substitute the reversed cast direction and
// log the anomaly.
func (w *World) sanitizeNormal(normal, castDirection rl.Vector3) rl.Vector3 {
	if isFinite(normal) {
		return normal
	}
	if time.Since(w.lastAnomalyLog) >= time.Second {
		w.lastAnomalyLog = time.Now()
		log.Printf("Physics: degenerate query normal %v, substituting safe default", normal)
	}
	safe := rl.Vector3Scale(castDirection, -1)
	if !isFinite(safe) || rl.Vector3Length(safe) < 1e-6 {
		safe = rl.Vector3{Y: 1}
	}
	return rl.Vector3Normalize(safe)
}

func isFinite(v rl.Vector3) bool {
	for _, f := range [3]float32{v.X, v.Y, v.Z} {
		f64 := float64(f)
		if math.IsNaN(f64) || math.IsInf(f64, 0) {
			return false
		}
	}
	return true
}
