package canny

import (
	"errors"
	"math"
	"math/rand"
	"testing"
)

func TestNewEdge(t *testing.T) {
	e := NewEdge(3, 4)

	wantMag := 5 / math.Sqrt2
	if math.Abs(e.Magnitude()-wantMag) > 1e-12 {
		t.Errorf("Magnitude: got %v, want %v", e.Magnitude(), wantMag)
	}

	dir := e.DirNorm()
	if math.Abs(dir.X-0.6) > 1e-12 || math.Abs(dir.Y-0.8) > 1e-12 {
		t.Errorf("DirNorm: got %+v, want {0.6 0.8}", dir)
	}

	scaled := e.Dir()
	if math.Abs(scaled.X-3/math.Sqrt2) > 1e-12 || math.Abs(scaled.Y-4/math.Sqrt2) > 1e-12 {
		t.Errorf("Dir: got %+v, want {%v %v}", scaled, 3/math.Sqrt2, 4/math.Sqrt2)
	}

	if math.Abs(e.Angle()-math.Atan2(0.8, 0.6)) > 1e-12 {
		t.Errorf("Angle: got %v, want %v", e.Angle(), math.Atan2(0.8, 0.6))
	}

	got, ok := e.Direction()
	if !ok || got != dir {
		t.Errorf("Direction: got (%+v, %v), want (%+v, true)", got, ok, dir)
	}
}

func TestNewEdge_Negative(t *testing.T) {
	e := NewEdge(0, -2)
	if math.Abs(e.Magnitude()-math.Sqrt2) > 1e-12 {
		t.Errorf("Magnitude: got %v, want √2", e.Magnitude())
	}
	if d := e.DirNorm(); d.X != 0 || d.Y != -1 {
		t.Errorf("DirNorm: got %+v, want {0 -1}", d)
	}
	if math.Abs(e.Angle()+math.Pi/2) > 1e-12 {
		t.Errorf("Angle: got %v, want -π/2", e.Angle())
	}
}

func TestZeroEdge(t *testing.T) {
	for name, e := range map[string]Edge{
		"ZeroEdge":      ZeroEdge(),
		"NewEdge(0,0)":  NewEdge(0, 0),
		"zero value":    {},
		"negative zero": NewEdge(math.Copysign(0, -1), 0),
	} {
		t.Run(name, func(t *testing.T) {
			if !e.IsZero() {
				t.Error("IsZero: got false")
			}
			if e.Magnitude() != 0 {
				t.Errorf("Magnitude: got %v, want 0", e.Magnitude())
			}
			if d := e.DirNorm(); d != (Vec2{}) {
				t.Errorf("DirNorm: got %+v, want (0,0)", d)
			}
			if _, ok := e.Direction(); ok {
				t.Error("Direction reported a valid direction for the zero edge")
			}
			if e.Angle() != 0 {
				t.Errorf("Angle: got %v, want 0", e.Angle())
			}
		})
	}
}

func TestNewEdge_Properties(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 2000; i++ {
		gx := rng.NormFloat64() * math.Pow(10, float64(rng.Intn(8)-4))
		gy := rng.NormFloat64() * math.Pow(10, float64(rng.Intn(8)-4))
		if i%10 == 0 {
			gx = 0
		}
		if i%15 == 0 {
			gy = 0
		}

		e := NewEdge(gx, gy)
		if e.Magnitude() < 0 {
			t.Fatalf("NewEdge(%v, %v): negative magnitude %v", gx, gy, e.Magnitude())
		}
		if (e.Magnitude() == 0) != (gx == 0 && gy == 0) {
			t.Fatalf("NewEdge(%v, %v): magnitude %v", gx, gy, e.Magnitude())
		}
		if e.Magnitude() > 0 {
			if n := e.DirNorm().Norm(); math.Abs(n-1) > 1e-12 {
				t.Fatalf("NewEdge(%v, %v): |DirNorm| = %v", gx, gy, n)
			}
			d := e.Dir()
			if math.Abs(d.X-gx/math.Sqrt2) > 1e-9*math.Abs(gx)+1e-300 ||
				math.Abs(d.Y-gy/math.Sqrt2) > 1e-9*math.Abs(gy)+1e-300 {
				t.Fatalf("NewEdge(%v, %v): Dir = %+v", gx, gy, d)
			}
		}
	}
}

func TestBuildEdges(t *testing.T) {
	rx := mustRaster(t, 2, 2, []float64{3, 0, 0, -1})
	ry := mustRaster(t, 2, 2, []float64{4, 0, 2, -1})

	edges, err := BuildEdges(rx, ry)
	if err != nil {
		t.Fatalf("BuildEdges failed: %v", err)
	}
	if !edges.HasShape(2, 2) {
		t.Fatalf("shape: got %dx%d, want 2x2", edges.Width(), edges.Height())
	}

	wants := []float64{5 / math.Sqrt2, 0, math.Sqrt2, 1}
	for i, want := range wants {
		if got := edges.AtIndex(i).Magnitude(); math.Abs(got-want) > 1e-12 {
			t.Errorf("edge %d magnitude: got %v, want %v", i, got, want)
		}
	}
	if !edges.AtIndex(1).IsZero() {
		t.Error("edge 1 should be the zero edge")
	}
	if NonZero(edges) != 3 {
		t.Errorf("NonZero: got %d, want 3", NonZero(edges))
	}

	mags := Magnitudes(edges)
	if mags.AtIndex(2) != edges.AtIndex(2).Magnitude() {
		t.Errorf("Magnitudes: got %v, want %v", mags.AtIndex(2), edges.AtIndex(2).Magnitude())
	}
}

func TestBuildEdges_DimensionMismatch(t *testing.T) {
	rx := filled(t, 3, 2, 1)
	ry := filled(t, 2, 3, 1)

	_, err := BuildEdges(rx, ry)
	if !errors.Is(err, ErrDimensionMismatch) {
		t.Fatalf("got %v, want ErrDimensionMismatch", err)
	}
	var se *StageError
	if !errors.As(err, &se) || se.Stage != StageEdges {
		t.Errorf("error %v not attributed to stage %q", err, StageEdges)
	}

	if _, err := BuildEdges(nil, ry); !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("nil rx: got %v, want ErrDimensionMismatch", err)
	}
}
