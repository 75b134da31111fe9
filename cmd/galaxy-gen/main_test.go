package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"galaxy-server/internal/galaxy"
	"galaxy-server/internal/shared/config"
)

var testDefaults = config.GalaxyConfig{
	DefaultName:    "CLI Disc",
	ScaleRadius:    1,
	TotalMass:      100,
	BodyCount:      4,
	Cutoff:         1e6,
	BarnesHutTheta: 0.5,
}

func TestRun_JSON(t *testing.T) {
	var stdout, stderr bytes.Buffer
	if err := run([]string{"-seed", "1", "-stats"}, testDefaults, &stdout, &stderr); err != nil {
		t.Fatalf("run returned error: %v (stderr %s)", err, stderr.String())
	}

	var result galaxy.Result
	if err := json.Unmarshal(stdout.Bytes(), &result); err != nil {
		t.Fatalf("Invalid JSON output: %v", err)
	}
	if len(result.Bodies) != 4 {
		t.Fatalf("Expected 4 bodies, got %d", len(result.Bodies))
	}
	for i, b := range result.Bodies {
		if b.Mass != 25 {
			t.Errorf("Body %d: expected mass 25, got %v", i, b.Mass)
		}
	}
	if result.Diagnostics == nil || result.Diagnostics.Count != 4 {
		t.Errorf("Expected diagnostics for 4 bodies, got %+v", result.Diagnostics)
	}

	want := galaxy.Generate(galaxy.NewSeededSource(1), result.Galaxy.Params)
	for i := range want {
		if result.Bodies[i] != want[i] {
			t.Errorf("Body %d differs from seeded generation", i)
		}
	}
}

func TestRun_CSV(t *testing.T) {
	var stdout, stderr bytes.Buffer
	err := run([]string{"-format", "csv", "-n", "3", "-seed", "5"}, testDefaults, &stdout, &stderr)
	if err != nil {
		t.Fatalf("run returned error: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(stdout.String()), "\n")
	if len(lines) != 4 || lines[0] != "mass,x,y,vx,vy" {
		t.Errorf("Expected header plus 3 rows, got %q", stdout.String())
	}
}

func TestRun_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"bad format", []string{"-format", "xml"}},
		{"invalid params", []string{"-r0", "0"}},
		{"unknown flag", []string{"-bogus"}},
		{"unknown preset", []string{"-preset", "spiral"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			if err := run(tt.args, testDefaults, &stdout, &stderr); err == nil {
				t.Error("Expected error, got nil")
			}
		})
	}
}

func TestRun_CollisionPreset(t *testing.T) {
	defaults := testDefaults
	defaults.BodyCount = 40
	defaults.Cutoff = 4

	var stdout, stderr bytes.Buffer
	if err := run([]string{"-preset", "collision", "-seed", "8", "-stats"}, defaults, &stdout, &stderr); err != nil {
		t.Fatalf("run returned error: %v (stderr %s)", err, stderr.String())
	}

	var result galaxy.Result
	if err := json.Unmarshal(stdout.Bytes(), &result); err != nil {
		t.Fatalf("Invalid JSON output: %v", err)
	}

	p := result.Galaxy.Params
	want := galaxy.GenerateCollision(galaxy.NewSeededSource(8), p, galaxy.DefaultSatellite(p), galaxy.NewBodyInit)
	if len(result.Bodies) != len(want) {
		t.Fatalf("Expected %d bodies, got %d", len(want), len(result.Bodies))
	}
	for i := range want {
		if result.Bodies[i] != want[i] {
			t.Errorf("Body %d differs from seeded collision", i)
		}
	}
	if result.Diagnostics == nil || result.Diagnostics.OutOfDomain != 0 {
		t.Errorf("Expected every body inside its bound, got %+v", result.Diagnostics)
	}
	if result.Galaxy.EmittedMassFraction <= 0 || result.Galaxy.EmittedMassFraction > 1 {
		t.Errorf("Unexpected emitted mass fraction %f", result.Galaxy.EmittedMassFraction)
	}
}

func TestRun_ThreeBodyPreset(t *testing.T) {
	var stdout, stderr bytes.Buffer
	if err := run([]string{"-preset", "three-body", "-format", "csv"}, testDefaults, &stdout, &stderr); err != nil {
		t.Fatalf("run returned error: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(stdout.String()), "\n")
	if len(lines) != 4 || lines[1] != "3,1,3,0,0" {
		t.Errorf("Expected three fixed bodies, got %q", stdout.String())
	}
}
