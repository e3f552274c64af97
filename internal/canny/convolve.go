package canny

import (
	"errors"
	"fmt"
	"strings"

	"github.com/anthonynsimon/bild/parallel"

	"github.com/ironsheep/edge-tools-mcp/internal/raster"
)

// Convolver correlates a kernel against a raster.
//
// Implementations return a raster of the same shape as src where each
// sample is the weighted sum of the kernel over the neighbourhood centred
// on it, the kernel being anchored at (height/2, width/2):
//
//	out[r,c] = Σ K[i,j] · src[r+i-kh/2, c+j-kw/2]
//
// How samples outside src are read is up to the implementation and must be
// documented by it.
type Convolver interface {
	Convolve(src, kernel *raster.Raster[float64]) (*raster.Raster[float64], error)
}

// Border selects how a Correlator samples outside the source raster.
type Border int

const (
	// BorderZero reads every out-of-bounds sample as 0.
	BorderZero Border = iota

	// BorderReplicate reads the nearest in-bounds sample.
	BorderReplicate
)

func (b Border) String() string {
	switch b {
	case BorderZero:
		return "zero"
	case BorderReplicate:
		return "replicate"
	default:
		return fmt.Sprintf("Border(%d)", int(b))
	}
}

// ParseBorder parses "zero" or "replicate" (case-insensitive). The empty
// string selects BorderZero.
func ParseBorder(s string) (Border, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "zero":
		return BorderZero, nil
	case "replicate", "clamp":
		return BorderReplicate, nil
	default:
		return BorderZero, &ParamError{Name: "border", Value: s, Reason: `must be "zero" or "replicate"`}
	}
}

// Correlator is the pure-Go Convolver. Output rows are computed in
// parallel.
type Correlator struct {
	Border Border
}

// Convolve implements Convolver.
func (cr Correlator) Convolve(src, kernel *raster.Raster[float64]) (*raster.Raster[float64], error) {
	if src == nil || kernel == nil {
		return nil, errors.New("convolve: nil raster or kernel")
	}

	width, height := src.Width(), src.Height()
	kw, kh := kernel.Width(), kernel.Height()
	anchorCol, anchorRow := kw/2, kh/2

	in := src.Data()
	k := kernel.Data()
	out := make([]float64, width*height)

	parallel.Line(height, func(start, end int) {
		for row := start; row < end; row++ {
			for col := 0; col < width; col++ {
				var sum float64
				for i := 0; i < kh; i++ {
					r := row + i - anchorRow
					for j := 0; j < kw; j++ {
						sum += k[i*kw+j] * cr.sample(in, width, height, r, col+j-anchorCol)
					}
				}
				out[row*width+col] = sum
			}
		}
	})

	return raster.New(width, height, out)
}

func (cr Correlator) sample(data []float64, width, height, row, col int) float64 {
	if row < 0 || row >= height || col < 0 || col >= width {
		if cr.Border == BorderZero {
			return 0
		}
		row = clamp(row, 0, height-1)
		col = clamp(col, 0, width-1)
	}
	return data[row*width+col]
}

// clamp constrains an integer value to the range [lo, hi].
func clamp(val, lo, hi int) int {
	if val < lo {
		return lo
	}
	if val > hi {
		return hi
	}
	return val
}
