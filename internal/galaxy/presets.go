package galaxy

import (
	"math"

	"galaxy-server/internal/body"
)

// Preset names accepted by the generator command.
const (
	PresetDisc      = "disc"
	PresetCollision = "collision"
	PresetThreeBody = "three-body"
)

// SatelliteSpeedFactor slows the satellite below circular speed so its
// orbit decays into the primary.
const SatelliteSpeedFactor = 0.9

// Satellite is a second disc placed on the primary's plane and moving in
// bulk with Velocity.
type Satellite struct {
	Params   Params   `json:"params"`
	Offset   body.Vec `json:"offset"`
	Velocity body.Vec `json:"velocity"`
}

// DefaultSatellite returns a companion with a quarter of primary's draws, a
// tenth of its mass and 0.3 of its radii. It sits on the primary's cutoff
// along the diagonal and orbits counter-clockwise.
func DefaultSatellite(primary Params) Satellite {
	d := primary.Cutoff / math.Sqrt2
	offset := body.Vec{X: d, Y: d}
	return Satellite{
		Params: Params{
			ScaleRadius: 0.3 * primary.ScaleRadius,
			TotalMass:   0.1 * primary.TotalMass,
			Count:       max(primary.Count/4, 1),
			Cutoff:      0.3 * primary.Cutoff,
		},
		Offset:   offset,
		Velocity: OrbitalVelocity(primary, offset, SatelliteSpeedFactor),
	}
}

// OrbitalVelocity is factor times the circular velocity of primary at
// offset, directed counter-clockwise. The origin has no orbit.
func OrbitalVelocity(primary Params, offset body.Vec, factor float64) body.Vec {
	r := math.Hypot(offset.X, offset.Y)
	if r == 0 {
		return body.Vec{}
	}
	v := factor * CircularSpeed(primary.ScaleRadius, r)
	return body.Vec{X: -v * offset.Y / r, Y: v * offset.X / r}
}

// GenerateCollision samples primary around the origin, then sat from the
// same source, shifted by sat.Offset with sat.Velocity added to every body.
// Satellite bodies are bounded by the disc that encloses the whole
// satellite.
func GenerateCollision[B any](src RandomSource, primary Params, sat Satellite, makeBody BodyFactory[B]) []B {
	bodies := GenerateWith(src, primary, makeBody)

	bound := math.Hypot(sat.Offset.X, sat.Offset.Y) + sat.Params.Cutoff
	shifted := func(mass, x, y, vx, vy, _ float64) B {
		return makeBody(mass, x+sat.Offset.X, y+sat.Offset.Y, vx+sat.Velocity.X, vy+sat.Velocity.Y, bound)
	}
	return append(bodies, GenerateWith(src, sat.Params, shifted)...)
}

// ThreeBodyBound encloses every body of ThreeBody, whose masses sum to
// ThreeBodyMass.
const (
	ThreeBodyBound = 5.0
	ThreeBodyMass  = 12.0
)

// ThreeBody returns the fixed masses 3, 4 and 5 at rest, a classic chaotic
// configuration for testing integrators.
func ThreeBody[B any](makeBody BodyFactory[B]) []B {
	return []B{
		makeBody(3, 1, 3, 0, 0, ThreeBodyBound),
		makeBody(4, -2, 1, 0, 0, ThreeBodyBound),
		makeBody(5, 1, -1, 0, 0, ThreeBodyBound),
	}
}
