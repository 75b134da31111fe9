// Package diagnostics summarises a set of generated initial conditions.
package diagnostics

import (
	"math"

	"galaxy-server/internal/body"

	"gonum.org/v1/gonum/spatial/barneshut"
	"gonum.org/v1/gonum/spatial/r2"
)

// DefaultTheta is the Barnes-Hut opening angle used when none is given.
const DefaultTheta = 0.5

// Box is an axis-aligned rectangle.
type Box struct {
	Min body.Vec `json:"min"`
	Max body.Vec `json:"max"`
}

// Summary describes the initial state of a galaxy as a simulator would see
// it before the first step.
type Summary struct {
	Count         int      `json:"count"`
	TotalMass     float64  `json:"total_mass"`
	KineticEnergy float64  `json:"kinetic_energy"`
	CenterOfMass  body.Vec `json:"center_of_mass"`
	Bounds        Box      `json:"bounds"`

	// OutOfDomain counts bodies at or beyond their cutoff radius.
	OutOfDomain int `json:"out_of_domain"`

	// RegionOfInterest is a square of half-width ROI centred on the
	// centre of mass, sized 1.5 times the larger extent of Bounds.
	ROI              float64 `json:"roi"`
	RegionOfInterest Box     `json:"region_of_interest"`

	MaxAcceleration  float64 `json:"max_acceleration"`
	MeanAcceleration float64 `json:"mean_acceleration"`
}

// Compute returns the Summary of bodies with G = 1. theta <= 0 selects
// DefaultTheta.
func Compute(bodies []*body.Body, theta float64) (Summary, error) {
	var s Summary
	if len(bodies) == 0 {
		return s, nil
	}
	if theta <= 0 {
		theta = DefaultTheta
	}

	s.Count = len(bodies)
	lo := r2.Vec{X: math.Inf(1), Y: math.Inf(1)}
	hi := r2.Vec{X: math.Inf(-1), Y: math.Inf(-1)}

	var weighted r2.Vec
	for _, b := range bodies {
		p := b.Position()
		s.TotalMass += b.Mass()
		s.KineticEnergy += b.KineticEnergy()
		weighted = r2.Add(weighted, r2.Scale(b.Mass(), p))
		if !b.InDomain() {
			s.OutOfDomain++
		}

		lo.X, lo.Y = math.Min(lo.X, p.X), math.Min(lo.Y, p.Y)
		hi.X, hi.Y = math.Max(hi.X, p.X), math.Max(hi.Y, p.Y)
	}
	com := r2.Scale(1/s.TotalMass, weighted)
	s.CenterOfMass = body.Vec(com)
	s.Bounds = Box{Min: body.Vec(lo), Max: body.Vec(hi)}

	s.ROI = 1.5 * math.Max(hi.X-lo.X, hi.Y-lo.Y)
	half := r2.Vec{X: s.ROI, Y: s.ROI}
	s.RegionOfInterest = Box{
		Min: body.Vec(r2.Sub(com, half)),
		Max: body.Vec(r2.Add(com, half)),
	}

	accel, err := Accelerations(bodies, theta)
	if err != nil {
		return s, err
	}
	var sum float64
	for _, a := range accel {
		n := r2.Norm(a)
		sum += n
		s.MaxAcceleration = math.Max(s.MaxAcceleration, n)
	}
	s.MeanAcceleration = sum / float64(len(accel))

	return s, nil
}

// Accelerations returns the Barnes-Hut gravitational acceleration on each
// body, in input order.
func Accelerations(bodies []*body.Body, theta float64) ([]r2.Vec, error) {
	particles := make([]barneshut.Particle2, len(bodies))
	for i, b := range bodies {
		particles[i] = b
	}

	plane, err := barneshut.NewPlane(particles)
	if err != nil {
		return nil, err
	}

	accel := make([]r2.Vec, len(bodies))
	for i, b := range bodies {
		f := plane.ForceOn(b, theta, barneshut.Gravity2)
		accel[i] = r2.Scale(1/b.Mass(), f)
	}
	return accel, nil
}
