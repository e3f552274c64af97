package canny

import (
	"math"

	"github.com/ironsheep/edge-tools-mcp/internal/raster"
)

// invSqrt2 scales both gradient components before the magnitude is taken.
const invSqrt2 = 1 / math.Sqrt2

// Vec2 is a 2-D vector. X follows the row axis of the Gx response and Y the
// column axis of the Gy response.
type Vec2 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Norm returns the Euclidean length of v.
func (v Vec2) Norm() float64 { return math.Hypot(v.X, v.Y) }

// Edge is the gradient at one pixel: a magnitude and a unit direction.
//
// An Edge is either directed (magnitude > 0, unit direction) or the zero
// edge (magnitude 0, direction (0,0)). The zero value of Edge is the zero
// edge. Direction-dependent code should go through Direction, which
// reports whether a valid direction exists.
type Edge struct {
	dir       Vec2
	magnitude float64
}

// NewEdge builds the edge for the gradient responses (gx, gy).
func NewEdge(gx, gy float64) Edge {
	scaled := Vec2{X: gx * invSqrt2, Y: gy * invSqrt2}
	magnitude := scaled.Norm()
	if magnitude == 0 {
		return Edge{}
	}
	return Edge{
		dir:       Vec2{X: scaled.X / magnitude, Y: scaled.Y / magnitude},
		magnitude: magnitude,
	}
}

// ZeroEdge returns the edge with magnitude 0 and direction (0,0).
func ZeroEdge() Edge { return Edge{} }

// IsZero reports whether e is the zero edge.
func (e Edge) IsZero() bool { return e.magnitude == 0 }

// Magnitude returns the edge strength.
func (e Edge) Magnitude() float64 { return e.magnitude }

// Direction returns the unit direction and true for a directed edge, or
// (0,0) and false for the zero edge.
func (e Edge) Direction() (Vec2, bool) {
	if e.IsZero() {
		return Vec2{}, false
	}
	return e.dir, true
}

// Angle returns atan2(y, x) of the direction, 0 for the zero edge.
func (e Edge) Angle() float64 { return math.Atan2(e.dir.Y, e.dir.X) }

// Dir returns the direction scaled by the magnitude, i.e. the scaled
// gradient pair the edge was built from.
func (e Edge) Dir() Vec2 {
	return Vec2{X: e.dir.X * e.magnitude, Y: e.dir.Y * e.magnitude}
}

// DirNorm returns the unit direction, (0,0) for the zero edge.
func (e Edge) DirNorm() Vec2 { return e.dir }

// BuildEdges combines the horizontal and vertical gradient responses into a
// raster of edges. rx and ry must have identical dimensions.
func BuildEdges(rx, ry *raster.Raster[float64]) (*raster.Raster[Edge], error) {
	if rx == nil || ry == nil {
		return nil, shapeError(StageEdges, "nil gradient response")
	}
	if !rx.HasShape(ry.Width(), ry.Height()) {
		return nil, shapeError(StageEdges, "gradient responses are %dx%d and %dx%d",
			rx.Width(), rx.Height(), ry.Width(), ry.Height())
	}

	xs, ys := rx.Data(), ry.Data()
	out := make([]Edge, len(xs))
	forEach(len(xs), func(i int) {
		out[i] = NewEdge(xs[i], ys[i])
	})

	edges, err := raster.New(rx.Width(), rx.Height(), out)
	if err != nil {
		return nil, wrapStage(StageEdges, err)
	}
	return edges, nil
}

// NonZero counts the edges with a magnitude above zero.
func NonZero(edges *raster.Raster[Edge]) int {
	return raster.Count(edges, func(e Edge) bool { return !e.IsZero() })
}

// Magnitudes returns the magnitude of every edge as a float raster.
func Magnitudes(edges *raster.Raster[Edge]) *raster.Raster[float64] {
	return raster.Map(edges, Edge.Magnitude)
}
