package canny

import (
	"math"

	"github.com/ironsheep/edge-tools-mcp/internal/raster"
)

// quantizeThreshold is the component size below which a direction
// component does not move the sampling point along its axis.
const quantizeThreshold = 0.25

// Suppress performs non-maximum suppression on a width×height edge raster.
//
// For each directed edge the gradient is quantised to an axis-aligned step
// (sign of each component, or 0 where |component| <= 0.25) and the edges at
// step·d for every d in [-distanceRange, distanceRange) are compared with
// it. If any of them has a strictly greater magnitude the edge is replaced
// by the zero edge, otherwise it is kept unchanged. Neighbours whose
// flattened index falls outside the raster are skipped.
//
// By default the quantised vector is Edge.Dir (magnitude-scaled), so weak
// gradients whose scaled components stay within ±0.25 are never compared;
// WithUnitDirection quantises Edge.DirNorm instead.
//
// The input raster is only read. Every output magnitude is either 0 or the
// input magnitude at the same pixel.
func Suppress(width, height int, edges *raster.Raster[Edge], distanceRange int, opts ...Option) (*raster.Raster[Edge], error) {
	if edges == nil {
		return nil, shapeError(StageSuppress, "nil edge raster")
	}
	if !edges.HasShape(width, height) {
		return nil, shapeError(StageSuppress, "edge raster is %dx%d, expected %dx%d",
			edges.Width(), edges.Height(), width, height)
	}
	if distanceRange < 1 {
		return nil, paramError(StageSuppress, "distance_range", distanceRange, "must be at least 1")
	}

	o := collectOptions(opts)
	out := make([]Edge, edges.Len())

	forEach(edges.Len(), func(i int) {
		e := edges.AtIndex(i)
		if e.IsZero() || isLocalMax(edges, i, distanceRange, o) {
			out[i] = e
			return
		}
		out[i] = ZeroEdge()
	})

	suppressed, err := raster.New(width, height, out)
	if err != nil {
		return nil, wrapStage(StageSuppress, err)
	}
	return suppressed, nil
}

// isLocalMax reports whether no sampled neighbour of the edge at index is
// strictly stronger. d = 0 compares the edge with itself.
func isLocalMax(edges *raster.Raster[Edge], index, distanceRange int, o options) bool {
	e := edges.AtIndex(index)
	row := index / edges.Width()
	col := index - row*edges.Width()

	dir := e.Dir()
	if o.unitDirection {
		dir = e.DirNorm()
	}
	stepRow := quantize(dir.X)
	stepCol := quantize(dir.Y)

	for d := -distanceRange; d < distanceRange; d++ {
		near, ok := neighbour(edges, row+stepRow*d, col+stepCol*d, o)
		if ok && edges.AtIndex(near).magnitude > e.magnitude {
			return false
		}
	}
	return true
}

func quantize(component float64) int {
	switch {
	case !(math.Abs(component) > quantizeThreshold):
		return 0
	case component < 0:
		return -1
	default:
		return 1
	}
}
