package mover

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"physics3d/internal/physics"
)

// QueryCollider translates cast and overlap requests for a single owned
// primitive collider into world queries, handling contact-offset padding,
// self exclusion and the consistent-hit band.
type QueryCollider struct {
	Collider *physics.Collider
	world    *physics.World
	settings *Settings
}

func NewQueryCollider(world *physics.World, collider *physics.Collider, settings *Settings) QueryCollider {
	if settings == nil {
		settings = DefaultSettings()
	}
	return QueryCollider{Collider: collider, world: world, settings: settings}
}

// Raycast fires a single ray from the collider's surface point along the
// direction and returns the nearest hit.
func (q QueryCollider) Raycast(direction rl.Vector3, maxDistance float32, mask uint32, policy physics.TriggerPolicy, ignore []*physics.Collider) (physics.RaycastHit, bool) {
	origin := q.Collider.SurfacePoint(direction)
	ignore = append(ignore, q.Collider)
	return q.world.Raycast(origin, direction, maxDistance, mask, policy, ignore)
}

// CastAll shape-casts along direction. The requested distance is expanded by
// twice the contact offset for numeric safety; hits from the ignore set and
// the collider itself are removed; the rest are sorted by distance. The
// primary (closest) hit is returned with its distance reduced by one contact
// offset, kept within [0, maxDistance-offset] so a hit from the expansion
// band never reports more travel than was requested, along with the number
// of hits lying within the consistent band of the primary. With no hits left
// after filtering, the returned default hit travels the full requested
// distance minus one contact offset.
func (q QueryCollider) CastAll(direction rl.Vector3, maxDistance float32, mask uint32, policy physics.TriggerPolicy, ignore []*physics.Collider, buf []physics.RaycastHit) (int, physics.RaycastHit, []physics.RaycastHit) {
	offset := q.settings.ContactOffset
	castDistance := maxDistance + 2*offset

	start := len(buf)
	buf = q.world.CastShape(q.Collider, direction, castDistance, mask, policy, ignore, buf)
	hits := buf[start:]

	if len(hits) == 0 {
		free := maxDistance - offset
		if free < 0 {
			free = 0
		}
		return 0, physics.RaycastHit{Distance: free}, buf[:start]
	}

	// Count hits within the consistent band of the primary, on raw
	// distances, then shift every kept hit back by one contact offset.
	primaryRaw := hits[0].Distance
	consistent := 0
	for _, h := range hits {
		if h.Distance <= primaryRaw+q.settings.ConsistentHitRange {
			consistent++
		} else {
			break
		}
	}

	limit := maxDistance - offset
	if limit < 0 {
		limit = 0
	}
	for i := range hits {
		hits[i].Distance -= offset
		if hits[i].Distance < 0 {
			hits[i].Distance = 0
		} else if hits[i].Distance > limit {
			hits[i].Distance = limit
		}
	}

	return consistent, hits[0], buf
}

// Overlap returns all colliders overlapping this one, excluding the ignore
// set. A nil ignore set excludes nothing.
func (q QueryCollider) Overlap(mask uint32, policy physics.TriggerPolicy, ignore []*physics.Collider, buf []*physics.Collider) []*physics.Collider {
	return q.world.Overlap(q.Collider, mask, policy, ignore, buf)
}
