package galaxy

import (
	"bytes"
	"testing"

	"galaxy-server/internal/body"
)

func TestWriteCSV(t *testing.T) {
	bodies := []BodyInit{
		{Mass: 25, Position: body.Vec{X: 1.5, Y: -2}, Velocity: body.Vec{X: 0.25, Y: 3}},
		{Mass: 25, Position: body.Vec{X: 0, Y: 1e-9}, Velocity: body.Vec{X: -1, Y: 0}},
	}

	var buf bytes.Buffer
	if err := WriteCSV(&buf, bodies); err != nil {
		t.Fatalf("WriteCSV returned error: %v", err)
	}

	want := "mass,x,y,vx,vy\n25,1.5,-2,0.25,3\n25,0,1e-09,-1,0\n"
	if buf.String() != want {
		t.Errorf("Expected\n%s\ngot\n%s", want, buf.String())
	}
}

func TestWriteCSV_Empty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, nil); err != nil {
		t.Fatalf("WriteCSV returned error: %v", err)
	}
	if buf.String() != "mass,x,y,vx,vy\n" {
		t.Errorf("Expected header only, got %q", buf.String())
	}
}
