package galaxy

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
)

var csvHeader = []string{"mass", "x", "y", "vx", "vy"}

// WriteCSV writes one row per body under a mass,x,y,vx,vy header.
func WriteCSV(w io.Writer, bodies []BodyInit) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}

	f := func(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }
	for i, b := range bodies {
		row := []string{f(b.Mass), f(b.Position.X), f(b.Position.Y), f(b.Velocity.X), f(b.Velocity.Y)}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write body %d: %w", i, err)
		}
	}

	cw.Flush()
	return cw.Error()
}
