package galaxy

import (
	"time"

	"galaxy-server/internal/body"
	"galaxy-server/internal/diagnostics"
)

// Galaxy is a stored generation run. Regenerating with the same Params and
// Seed reproduces its bodies exactly.
type Galaxy struct {
	ID                    string    `json:"id,omitempty"`
	Name                  string    `json:"name"`
	Params                Params    `json:"params"`
	Seed                  uint64    `json:"seed"`
	BodyCount             int       `json:"body_count"`
	BodyMass              float64   `json:"body_mass"`
	AcceptanceProbability float64   `json:"acceptance_probability"`
	EmittedMassFraction   float64   `json:"emitted_mass_fraction"`
	CreatedAt             time.Time `json:"created_at"`
}

// setBodyCount records how many bodies survived the cutoff. Rejected draws
// keep their share of m0, so the emitted fraction falls below one.
func (g *Galaxy) setBodyCount(n int) {
	g.BodyCount = n
	g.EmittedMassFraction = float64(n) * g.BodyMass / g.Params.TotalMass
}

// GenerateRequest asks for a new galaxy. A nil Seed draws a fresh one.
type GenerateRequest struct {
	Name   string  `json:"name"`
	Params Params  `json:"params"`
	Seed   *uint64 `json:"seed,omitempty"`
}

// Result is a generation returned with its bodies. Bodies is never nil, so
// a run that accepts nothing encodes as an empty array.
type Result struct {
	Galaxy      Galaxy               `json:"galaxy"`
	Bodies      []BodyInit           `json:"bodies"`
	Diagnostics *diagnostics.Summary `json:"diagnostics,omitempty"`
	Cached      bool                 `json:"cached"`
}

// Created is a stored generation. Its bodies are served separately.
type Created struct {
	Galaxy      Galaxy               `json:"galaxy"`
	Diagnostics *diagnostics.Summary `json:"diagnostics,omitempty"`
	Cached      bool                 `json:"cached"`
}

// Records converts simulator bodies back into their initial-state records.
func Records(bodies []*body.Body) []BodyInit {
	records := make([]BodyInit, len(bodies))
	for i, b := range bodies {
		records[i] = BodyInit{Mass: b.Mass(), Position: body.Vec(b.Position()), Velocity: body.Vec(b.Velocity())}
	}
	return records
}

// Bodies builds simulator bodies bounded by cutoff from records.
func Bodies(records []BodyInit, cutoff float64) []*body.Body {
	bodies := make([]*body.Body, len(records))
	for i, r := range records {
		bodies[i] = body.New(r.Mass, r.Position.X, r.Position.Y, r.Velocity.X, r.Velocity.Y, cutoff)
	}
	return bodies
}
