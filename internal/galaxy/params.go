package galaxy

import (
	"math"

	"galaxy-server/internal/shared/errors"
)

// Params describes the exponential disc a galaxy is sampled from.
type Params struct {
	ScaleRadius float64 `json:"r0"`
	TotalMass   float64 `json:"m0"`
	Count       int     `json:"n"`
	Cutoff      float64 `json:"l"`
}

// BodyMass is the mass given to every generated body. It does not depend
// on how many draws end up rejected.
func (p Params) BodyMass() float64 {
	return p.TotalMass / float64(p.Count)
}

// AcceptanceProbability is P(r < Cutoff) under the exponential radial law.
func (p Params) AcceptanceProbability() float64 {
	return 1 - math.Exp(-p.Cutoff/p.ScaleRadius)
}

// ExpectedCount is the mean number of bodies Generate returns.
func (p Params) ExpectedCount() float64 {
	return float64(p.Count) * p.AcceptanceProbability()
}

// Validate reports parameters for which generation is degenerate.
func (p Params) Validate() error {
	switch {
	case !finitePositive(p.ScaleRadius):
		return errors.Validationf("r0 must be a positive finite number, got %v", p.ScaleRadius)
	case !finitePositive(p.TotalMass):
		return errors.Validationf("m0 must be a positive finite number, got %v", p.TotalMass)
	case p.Count <= 0:
		return errors.Validationf("n must be positive, got %d", p.Count)
	case !finitePositive(p.Cutoff):
		return errors.Validationf("l must be a positive finite number, got %v", p.Cutoff)
	}
	return nil
}

func finitePositive(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}
