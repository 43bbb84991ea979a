package mover

// Settings bundles the numeric tuning shared by movers. A single instance is
// typically shared by every mover in a world.
type Settings struct {
	// ContactOffset is the gap kept between a mover and the surfaces it
	// rests against. Casts stop one offset short of contact.
	ContactOffset float32

	// ConsistentHitRange is the distance band past the closest cast hit
	// within which further hits count as simultaneous.
	ConsistentHitRange float32

	// MaxGroundAngle is the maximum angle, in degrees, between a surface
	// normal and up for the surface to qualify as ground.
	MaxGroundAngle float32

	// GroundDetectionDistance is the reach of the supplementary grounded
	// probes fired when no collision impact settled the question.
	GroundDetectionDistance float32

	ClimbHeight             float32 // max step height creatures climb
	ClimbValidationDistance float32 // forward probe at the top of a step
	SnapHeight              float32 // max drop creatures snap down onto

	GroundDeceleration float32 // flat force decay per second while grounded
	AirDeceleration    float32 // flat force decay per second while airborne

	// LandingForceMultiplier damps the horizontal force component when a
	// mover transitions into the grounded state.
	LandingForceMultiplier float32

	Gravity         float32 // acceleration along the gravity sense
	MaxGravitySpeed float32 // terminal fall speed

	// DynamicGravityDetectionDistance is how far an airborne mover with
	// dynamic gravity probes for a surface to keep its gravity sense stable.
	DynamicGravityDetectionDistance float32
}

// DefaultSettings returns the tuning used unless a mover is given its own.
func DefaultSettings() *Settings {
	return &Settings{
		ContactOffset:                   0.01,
		ConsistentHitRange:              0.001,
		MaxGroundAngle:                  30,
		GroundDetectionDistance:         0.1,
		ClimbHeight:                     0.25,
		ClimbValidationDistance:         0.1,
		SnapHeight:                      0.2,
		GroundDeceleration:              17,
		AirDeceleration:                 5,
		LandingForceMultiplier:          0.5,
		Gravity:                         20,
		MaxGravitySpeed:                 25,
		DynamicGravityDetectionDistance: 0.5,
	}
}
