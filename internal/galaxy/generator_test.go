package galaxy

import (
	"encoding/json"
	"math"
	"testing"
)

const tolerance = 1e-9

// sequenceSource replays fixed variates and counts how many were drawn.
type sequenceSource struct {
	values []float64
	drawn  int
}

func (s *sequenceSource) Float64() float64 {
	v := s.values[s.drawn%len(s.values)]
	s.drawn++
	return v
}

func TestGenerate_Invariants(t *testing.T) {
	p := Params{ScaleRadius: 2.0, TotalMass: 500.0, Count: 2000, Cutoff: 5.0}
	bodies := Generate(NewSeededSource(42), p)

	if len(bodies) > p.Count {
		t.Fatalf("Expected at most %d bodies, got %d", p.Count, len(bodies))
	}
	if len(bodies) == 0 {
		t.Fatal("Expected some accepted bodies")
	}

	wantMass := p.TotalMass / float64(p.Count)
	for i, b := range bodies {
		if math.Abs(b.Mass-wantMass) > tolerance {
			t.Errorf("body %d: expected mass %f, got %f", i, wantMass, b.Mass)
		}

		r := b.Radius()
		if r < 0 || r >= p.Cutoff {
			t.Errorf("body %d: radius %f outside [0, %f)", i, r, p.Cutoff)
		}

		wantSpeed := CircularSpeed(p.ScaleRadius, r)
		if math.Abs(b.Speed()-wantSpeed) > tolerance*math.Max(1, wantSpeed) {
			t.Errorf("body %d: expected speed %f, got %f", i, wantSpeed, b.Speed())
		}

		dot := b.Position.X*b.Velocity.X + b.Position.Y*b.Velocity.Y
		if math.Abs(dot) > tolerance*math.Max(1, r*b.Speed()) {
			t.Errorf("body %d: velocity not tangential, dot=%g", i, dot)
		}

		// counter-clockwise: z component of r x v is positive
		if cross := b.Position.X*b.Velocity.Y - b.Position.Y*b.Velocity.X; cross < 0 {
			t.Errorf("body %d: expected counter-clockwise rotation, cross=%g", i, cross)
		}
	}
}

func TestGenerate_Reproducible(t *testing.T) {
	p := Params{ScaleRadius: 1.0, TotalMass: 10.0, Count: 500, Cutoff: 3.0}

	first := Generate(NewSeededSource(7), p)
	second := Generate(NewSeededSource(7), p)

	if len(first) != len(second) {
		t.Fatalf("Expected identical lengths, got %d and %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("body %d differs: %+v vs %+v", i, first[i], second[i])
		}
	}

	other := Generate(NewSeededSource(8), p)
	if len(other) == len(first) && len(other) > 0 && other[0] == first[0] {
		t.Error("Expected different seeds to produce different galaxies")
	}
}

func TestGenerate_ConcreteScenario(t *testing.T) {
	p := Params{ScaleRadius: 1.0, TotalMass: 100.0, Count: 4, Cutoff: 1e6}
	bodies := Generate(NewSeededSource(1), p)

	if len(bodies) != 4 {
		t.Fatalf("Expected 4 bodies, got %d", len(bodies))
	}
	for i, b := range bodies {
		if b.Mass != 25.0 {
			t.Errorf("body %d: expected mass 25, got %f", i, b.Mass)
		}
		wantSpeed := CircularSpeed(p.ScaleRadius, b.Radius())
		if math.Abs(b.Speed()-wantSpeed) > tolerance*math.Max(1, wantSpeed) {
			t.Errorf("body %d: expected speed %f, got %f", i, wantSpeed, b.Speed())
		}
	}
}

func TestGenerate_ExactFormulas(t *testing.T) {
	// u=0.5 gives r = ln 2; w=0.25 gives theta = pi/2.
	src := &sequenceSource{values: []float64{0.5, 0.25}}
	p := Params{ScaleRadius: 1.0, TotalMass: 3.0, Count: 1, Cutoff: 10}

	bodies := Generate(src, p)
	if len(bodies) != 1 {
		t.Fatalf("Expected 1 body, got %d", len(bodies))
	}
	b := bodies[0]

	r := math.Ln2
	v := 4.738 * math.Exp(-1/r) / math.Sqrt(r)

	if math.Abs(b.Position.X) > tolerance || math.Abs(b.Position.Y-r) > tolerance {
		t.Errorf("Expected position (0, %f), got %v", r, b.Position)
	}
	if math.Abs(b.Velocity.X+v) > tolerance || math.Abs(b.Velocity.Y) > tolerance {
		t.Errorf("Expected velocity (%f, 0), got %v", -v, b.Velocity)
	}
	if b.Mass != 3.0 {
		t.Errorf("Expected mass 3, got %f", b.Mass)
	}
}

func TestGenerate_ConsumesTwoVariatesPerIteration(t *testing.T) {
	tests := []struct {
		name     string
		values   []float64
		cutoff   float64
		accepted int
	}{
		// -ln(1-0.99) ~ 4.6
		{"all rejected", []float64{0.99, 0.1}, 1.0, 0},
		{"all accepted", []float64{0.1, 0.1}, 1.0, 10},
		// alternating radius draws: 0.1 accepted, 0.99 rejected
		{"mixed", []float64{0.1, 0.3, 0.99, 0.3}, 1.0, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := &sequenceSource{values: tt.values}
			p := Params{ScaleRadius: 1.0, TotalMass: 1.0, Count: 10, Cutoff: tt.cutoff}

			bodies := Generate(src, p)
			if src.drawn != 2*p.Count {
				t.Errorf("Expected %d variates drawn, got %d", 2*p.Count, src.drawn)
			}
			if len(bodies) != tt.accepted {
				t.Errorf("Expected %d accepted bodies, got %d", tt.accepted, len(bodies))
			}
		})
	}
}

func TestGenerate_RejectionKeepsMass(t *testing.T) {
	src := &sequenceSource{values: []float64{0.1, 0.3, 0.99, 0.3}}
	p := Params{ScaleRadius: 1.0, TotalMass: 80.0, Count: 8, Cutoff: 1.0}

	bodies := Generate(src, p)
	if len(bodies) != 4 {
		t.Fatalf("Expected 4 bodies, got %d", len(bodies))
	}

	var total float64
	for _, b := range bodies {
		if b.Mass != 10.0 {
			t.Errorf("Expected mass 10, got %f", b.Mass)
		}
		total += b.Mass
	}
	if total != 40.0 {
		t.Errorf("Expected emitted mass 40, got %f", total)
	}
}

func TestGenerate_Boundaries(t *testing.T) {
	t.Run("zero count", func(t *testing.T) {
		src := &sequenceSource{values: []float64{0.5}}
		bodies := Generate(src, Params{ScaleRadius: 1, TotalMass: 1, Count: 0, Cutoff: 1})
		if len(bodies) != 0 {
			t.Errorf("Expected no bodies, got %d", len(bodies))
		}
		if src.drawn != 0 {
			t.Errorf("Expected no variates drawn, got %d", src.drawn)
		}
	})

	t.Run("huge cutoff", func(t *testing.T) {
		p := Params{ScaleRadius: 1, TotalMass: 1, Count: 1000, Cutoff: 1e9}
		if got := len(Generate(NewSeededSource(3), p)); got != p.Count {
			t.Errorf("Expected all %d bodies accepted, got %d", p.Count, got)
		}
	})

	t.Run("tiny cutoff", func(t *testing.T) {
		p := Params{ScaleRadius: 1, TotalMass: 1, Count: 1000, Cutoff: 1e-12}
		if got := len(Generate(NewSeededSource(3), p)); got != 0 {
			t.Errorf("Expected no bodies accepted, got %d", got)
		}
	})
}

func TestGenerate_AcceptanceRate(t *testing.T) {
	p := Params{ScaleRadius: 1.0, TotalMass: 1.0, Count: 20000, Cutoff: 1.0}
	got := float64(len(Generate(NewSeededSource(99), p)))

	// Binomial(20000, 1-e^-1): sd ~ 68, allow 6 sd.
	want := p.ExpectedCount()
	if math.Abs(got-want) > 400 {
		t.Errorf("Expected about %.0f accepted bodies, got %.0f", want, got)
	}
}

func TestGenerateWith_Factory(t *testing.T) {
	type call struct{ mass, x, y, vx, vy, bound float64 }

	p := Params{ScaleRadius: 1.0, TotalMass: 6.0, Count: 3, Cutoff: 50}
	calls := GenerateWith(NewSeededSource(11), p, func(mass, x, y, vx, vy, bound float64) call {
		return call{mass, x, y, vx, vy, bound}
	})
	plain := Generate(NewSeededSource(11), p)

	if len(calls) != len(plain) {
		t.Fatalf("Expected %d factory calls, got %d", len(plain), len(calls))
	}
	for i, c := range calls {
		if c.bound != p.Cutoff {
			t.Errorf("call %d: expected bound %f, got %f", i, p.Cutoff, c.bound)
		}
		if c.mass != plain[i].Mass || c.x != plain[i].Position.X || c.vy != plain[i].Velocity.Y {
			t.Errorf("call %d: factory saw %+v, record is %+v", i, c, plain[i])
		}
	}
}

func TestParams_Validate(t *testing.T) {
	tests := []struct {
		name    string
		params  Params
		wantErr bool
	}{
		{"valid", Params{ScaleRadius: 1, TotalMass: 1, Count: 1, Cutoff: 1}, false},
		{"zero r0", Params{ScaleRadius: 0, TotalMass: 1, Count: 1, Cutoff: 1}, true},
		{"negative m0", Params{ScaleRadius: 1, TotalMass: -1, Count: 1, Cutoff: 1}, true},
		{"zero n", Params{ScaleRadius: 1, TotalMass: 1, Count: 0, Cutoff: 1}, true},
		{"nan cutoff", Params{ScaleRadius: 1, TotalMass: 1, Count: 1, Cutoff: math.NaN()}, true},
		{"infinite r0", Params{ScaleRadius: math.Inf(1), TotalMass: 1, Count: 1, Cutoff: 1}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.params.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestParams_AcceptanceProbability(t *testing.T) {
	p := Params{ScaleRadius: 2, Cutoff: 2}
	want := 1 - math.Exp(-1)
	if got := p.AcceptanceProbability(); math.Abs(got-want) > tolerance {
		t.Errorf("Expected %f, got %f", want, got)
	}
}

func TestBodyInit_JSONKeys(t *testing.T) {
	b := NewBodyInit(2, 1.5, -3, 0.25, 4, 10)

	data, err := json.Marshal(b)
	if err != nil {
		t.Fatalf("Marshal returned error: %v", err)
	}
	want := `{"mass":2,"position":{"x":1.5,"y":-3},"velocity":{"x":0.25,"y":4}}`
	if string(data) != want {
		t.Errorf("Expected %s, got %s", want, data)
	}

	var decoded BodyInit
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal returned error: %v", err)
	}
	if decoded != b {
		t.Errorf("Expected %+v, got %+v", b, decoded)
	}
}
