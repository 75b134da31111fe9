package galaxy

import (
	"math"

	"galaxy-server/internal/body"

	"gonum.org/v1/gonum/spatial/r2"
)

// VelocityScale stands in for sqrt(G*Mgalaxy) in the model's unit system.
const VelocityScale = 4.738

// RandomSource yields uniform variates in [0, 1).
type RandomSource interface {
	Float64() float64
}

// BodyFactory builds the caller's body representation from one accepted
// sample. bound is the radial cutoff the sample was drawn under.
type BodyFactory[B any] func(mass, x, y, vx, vy, bound float64) B

// BodyInit is the initial state of one generated body.
type BodyInit struct {
	Mass     float64  `json:"mass"`
	Position body.Vec `json:"position"`
	Velocity body.Vec `json:"velocity"`
}

// NewBodyInit is the BodyFactory used by Generate.
func NewBodyInit(mass, x, y, vx, vy, _ float64) BodyInit {
	return BodyInit{
		Mass:     mass,
		Position: body.Vec{X: x, Y: y},
		Velocity: body.Vec{X: vx, Y: vy},
	}
}

// Radius returns the distance of the body from the galactic centre.
func (b BodyInit) Radius() float64 {
	return r2.Norm(r2.Vec(b.Position))
}

// Speed returns the magnitude of the body's velocity.
func (b BodyInit) Speed() float64 {
	return r2.Norm(r2.Vec(b.Velocity))
}

// Generate samples p.Count bodies from an exponential disc and returns the
// ones that fall inside p.Cutoff, in draw order.
//
// Preconditions (ScaleRadius, Count and Cutoff positive) are not checked;
// see Params.Validate.
func Generate(src RandomSource, p Params) []BodyInit {
	return GenerateWith(src, p, NewBodyInit)
}

// GenerateWith is Generate with a caller-supplied body factory. Every
// iteration consumes exactly two variates from src, whether or not the
// draw is accepted, so a seeded source replays identically.
func GenerateWith[B any](src RandomSource, p Params, makeBody BodyFactory[B]) []B {
	m := p.BodyMass()

	var bodies []B
	for i := 0; i < p.Count; i++ {
		r := -p.ScaleRadius * math.Log(1.0-src.Float64())
		w := src.Float64()
		if r >= p.Cutoff {
			continue
		}

		theta := 2.0 * math.Pi * w
		sin, cos := math.Sin(theta), math.Cos(theta)
		x := r * cos
		y := r * sin

		v := CircularSpeed(p.ScaleRadius, r)
		vx := -v * sin
		vy := v * cos

		bodies = append(bodies, makeBody(m, x, y, vx, vy, p.Cutoff))
	}
	return bodies
}

// CircularSpeed is the naive rotation-curve estimate v ~ sqrt(GM/r),
// damped towards the centre by exp(-r0/r).
func CircularSpeed(r0, r float64) float64 {
	return VelocityScale * math.Exp(-r0/r) / math.Sqrt(r)
}
