package canny

import (
	"fmt"
	"math"

	"github.com/ironsheep/edge-tools-mcp/internal/raster"
)

// Class is the hysteresis classification of a pixel.
type Class uint8

const (
	Null Class = iota
	Weak
	Strong
)

func (c Class) String() string {
	switch c {
	case Null:
		return "null"
	case Weak:
		return "weak"
	case Strong:
		return "strong"
	default:
		return fmt.Sprintf("Class(%d)", uint8(c))
	}
}

// Threshold classifies every edge by magnitude m: m < weak is Null,
// m > strong is Strong, anything else is Weak.
//
// Returns an ErrInvalidParameter error when a threshold is NaN or
// weak > strong.
func Threshold(edges *raster.Raster[Edge], weak, strong float64) (*raster.Raster[Class], error) {
	if edges == nil {
		return nil, shapeError(StageThreshold, "nil edge raster")
	}
	if math.IsNaN(weak) {
		return nil, paramError(StageThreshold, "weak", weak, "must be a number")
	}
	if math.IsNaN(strong) {
		return nil, paramError(StageThreshold, "strong", strong, "must be a number")
	}
	if weak > strong {
		return nil, paramError(StageThreshold, "weak", weak, fmt.Sprintf("must not exceed strong=%v", strong))
	}

	in := edges.Data()
	out := make([]Class, len(in))
	forEach(len(in), func(i int) {
		m := in[i].magnitude
		switch {
		case m < weak:
			out[i] = Null
		case m > strong:
			out[i] = Strong
		default:
			out[i] = Weak
		}
	})

	classes, err := raster.New(edges.Width(), edges.Height(), out)
	if err != nil {
		return nil, wrapStage(StageThreshold, err)
	}
	return classes, nil
}

// Promote resolves the Weak pixels of a Threshold snapshot.
//
// A Weak pixel at (row, col) becomes Strong when any pixel at
// (row+dr, col+dc), with dr and dc each in [-radius, radius), is Strong in
// the snapshot, and Null otherwise. The window is half-open, so offsets of
// +radius are never sampled. Strong and Null pixels are copied unchanged.
//
// Only the snapshot is read: a chain of Weak pixels is not followed past the
// window, and radius 0 promotes nothing. WithPropagation instead keeps
// promoting through newly Strong pixels until nothing changes.
func Promote(snapshot *raster.Raster[Class], radius int, opts ...Option) (*raster.Raster[Class], error) {
	if snapshot == nil {
		return nil, shapeError(StagePromote, "nil classification raster")
	}
	if radius < 0 {
		return nil, paramError(StagePromote, "radius", radius, "must not be negative")
	}

	o := collectOptions(opts)

	var out []Class
	if o.propagate {
		out = propagate(snapshot, radius, o)
	} else {
		out = make([]Class, snapshot.Len())
		forEach(snapshot.Len(), func(i int) {
			switch c := snapshot.AtIndex(i); c {
			case Weak:
				if hasStrongNeighbour(snapshot, i, radius, o) {
					out[i] = Strong
				} else {
					out[i] = Null
				}
			default:
				out[i] = c
			}
		})
	}

	classes, err := raster.New(snapshot.Width(), snapshot.Height(), out)
	if err != nil {
		return nil, wrapStage(StagePromote, err)
	}
	return classes, nil
}

// Classify runs Threshold followed by Promote on a width×height edge raster.
func Classify(width, height int, edges *raster.Raster[Edge], weak, strong float64, radius int, opts ...Option) (*raster.Raster[Class], error) {
	if edges == nil {
		return nil, shapeError(StageThreshold, "nil edge raster")
	}
	if !edges.HasShape(width, height) {
		return nil, shapeError(StageThreshold, "edge raster is %dx%d, expected %dx%d",
			edges.Width(), edges.Height(), width, height)
	}
	if radius < 0 {
		return nil, paramError(StagePromote, "radius", radius, "must not be negative")
	}

	snapshot, err := Threshold(edges, weak, strong)
	if err != nil {
		return nil, err
	}
	return Promote(snapshot, radius, opts...)
}

func hasStrongNeighbour(snapshot *raster.Raster[Class], index, radius int, o options) bool {
	row := index / snapshot.Width()
	col := index - row*snapshot.Width()

	for dr := -radius; dr < radius; dr++ {
		for dc := -radius; dc < radius; dc++ {
			n, ok := neighbour(snapshot, row+dr, col+dc, o)
			if ok && snapshot.AtIndex(n) == Strong {
				return true
			}
		}
	}
	return false
}

// propagate promotes Weak pixels breadth-first from every Strong pixel. A
// Weak pixel p is reached from a Strong pixel q when q lies in p's window,
// i.e. p = q - (dr, dc) for dr, dc in [-radius, radius).
func propagate(snapshot *raster.Raster[Class], radius int, o options) []Class {
	out := make([]Class, snapshot.Len())
	copy(out, snapshot.Data())
	width := snapshot.Width()

	queue := make([]int, 0, len(out))
	for i, c := range out {
		if c == Strong {
			queue = append(queue, i)
		}
	}

	for len(queue) > 0 {
		q := queue[0]
		queue = queue[1:]
		qRow := q / width
		qCol := q - qRow*width

		for dr := -radius; dr < radius; dr++ {
			for dc := -radius; dc < radius; dc++ {
				p, ok := neighbour(snapshot, qRow-dr, qCol-dc, o)
				if !ok || out[p] != Weak {
					continue
				}
				out[p] = Strong
				queue = append(queue, p)
			}
		}
	}

	for i, c := range out {
		if c == Weak {
			out[i] = Null
		}
	}
	return out
}

// CountClasses returns the number of Strong, Weak and Null pixels.
func CountClasses(classes *raster.Raster[Class]) (strong, weak, null int) {
	for _, c := range classes.Data() {
		switch c {
		case Strong:
			strong++
		case Weak:
			weak++
		default:
			null++
		}
	}
	return strong, weak, null
}
