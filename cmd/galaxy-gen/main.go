// Command galaxy-gen samples an exponential-disc galaxy and writes its
// bodies to stdout as JSON or CSV.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"galaxy-server/internal/body"
	"galaxy-server/internal/diagnostics"
	"galaxy-server/internal/galaxy"
	"galaxy-server/internal/shared/config"
	"galaxy-server/internal/shared/logger"
)

func main() {
	if err := config.InitForCLI(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize configuration: %v\n", err)
		os.Exit(1)
	}
	logger.InitWithWriter(os.Stderr)

	if err := run(os.Args[1:], config.GlobalConfig.Galaxy, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "galaxy-gen: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, defaults config.GalaxyConfig, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("galaxy-gen", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var p galaxy.Params
	fs.Float64Var(&p.ScaleRadius, "r0", defaults.ScaleRadius, "scale radius of the disc")
	fs.Float64Var(&p.TotalMass, "m0", defaults.TotalMass, "total mass shared by the requested bodies")
	fs.IntVar(&p.Count, "n", defaults.BodyCount, "number of draws")
	fs.Float64Var(&p.Cutoff, "l", defaults.Cutoff, "cutoff radius; draws at or beyond it are dropped")
	seed := fs.Uint64("seed", 0, "random seed (drawn from crypto/rand when omitted)")
	format := fs.String("format", "json", "output format: json or csv")
	stats := fs.Bool("stats", false, "compute diagnostics (included in json, written to stderr for csv)")
	theta := fs.Float64("theta", defaults.BarnesHutTheta, "Barnes-Hut opening angle for -stats")
	preset := fs.String("preset", galaxy.PresetDisc, "initial conditions: disc, collision or three-body")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if *format != "json" && *format != "csv" {
		return fmt.Errorf("unsupported format %q", *format)
	}
	if err := p.Validate(); err != nil {
		return err
	}

	requestedMass := p.TotalMass
	var generate func(galaxy.RandomSource) []*body.Body
	switch *preset {
	case galaxy.PresetDisc:
		generate = func(src galaxy.RandomSource) []*body.Body {
			return galaxy.GenerateWith(src, p, body.New)
		}
	case galaxy.PresetCollision:
		sat := galaxy.DefaultSatellite(p)
		requestedMass += sat.Params.TotalMass
		generate = func(src galaxy.RandomSource) []*body.Body {
			return galaxy.GenerateCollision(src, p, sat, body.New)
		}
	case galaxy.PresetThreeBody:
		requestedMass = galaxy.ThreeBodyMass
		generate = func(galaxy.RandomSource) []*body.Body {
			return galaxy.ThreeBody(body.New)
		}
	default:
		return fmt.Errorf("unsupported preset %q", *preset)
	}

	seedSet := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "seed" {
			seedSet = true
		}
	})
	if !seedSet {
		s, err := galaxy.NewSeed()
		if err != nil {
			return err
		}
		*seed = s
	}

	log := slog.With("component", "galaxy_gen", "preset", *preset, "n", p.Count, "seed", *seed)
	start := time.Now()
	bodies := generate(galaxy.NewSeededSource(*seed))
	var emittedMass float64
	for _, b := range bodies {
		emittedMass += b.Mass()
	}
	log.Info("Galaxy generated",
		"body_count", len(bodies),
		"expected_count", p.ExpectedCount(),
		"duration", time.Since(start),
	)

	result := galaxy.Result{
		Galaxy: galaxy.Galaxy{
			Name:                  name(defaults.DefaultName, *preset),
			Params:                p,
			Seed:                  *seed,
			BodyCount:             len(bodies),
			BodyMass:              p.BodyMass(),
			AcceptanceProbability: p.AcceptanceProbability(),
			EmittedMassFraction:   emittedMass / requestedMass,
			CreatedAt:             start.UTC(),
		},
		Bodies: galaxy.Records(bodies),
	}

	if *stats {
		summary, err := diagnostics.Compute(bodies, *theta)
		if err != nil {
			return fmt.Errorf("failed to compute diagnostics: %w", err)
		}
		result.Diagnostics = &summary
	}

	if *format == "csv" {
		if err := galaxy.WriteCSV(stdout, result.Bodies); err != nil {
			return err
		}
		if result.Diagnostics != nil {
			return writeJSON(stderr, result.Diagnostics)
		}
		return nil
	}
	return writeJSON(stdout, result)
}

func name(base, preset string) string {
	if preset == galaxy.PresetDisc {
		return base
	}
	return base + " (" + preset + ")"
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
