// Package body holds the simulator-side representation of a galaxy body.
package body

import (
	"gonum.org/v1/gonum/spatial/r2"
)

// Vec is a plane vector with lowercase JSON keys. It converts to and from
// r2.Vec.
type Vec struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Body is a point mass confined to a disc of radius Bound around the origin.
// It satisfies barneshut.Particle2.
type Body struct {
	mass     float64
	position r2.Vec
	velocity r2.Vec
	bound    float64
}

// New matches galaxy.BodyFactory so it can be handed to the generator.
func New(mass, x, y, vx, vy, bound float64) *Body {
	return &Body{
		mass:     mass,
		position: r2.Vec{X: x, Y: y},
		velocity: r2.Vec{X: vx, Y: vy},
		bound:    bound,
	}
}

func (b *Body) Mass() float64 { return b.mass }
func (b *Body) Coord2() r2.Vec { return b.position }
func (b *Body) Position() r2.Vec { return b.position }
func (b *Body) Velocity() r2.Vec { return b.velocity }
func (b *Body) Bound() float64 { return b.bound }
func (b *Body) Radius() float64 { return r2.Norm(b.position) }
func (b *Body) InDomain() bool { return b.Radius() < b.bound }

// KineticEnergy returns ½·m·|v|².
func (b *Body) KineticEnergy() float64 {
	return 0.5 * b.mass * r2.Dot(b.velocity, b.velocity)
}
