//go:build opencv

package canny

import (
	"errors"
	"image"

	"gocv.io/x/gocv"

	"github.com/ironsheep/edge-tools-mcp/internal/raster"
)

// OpenCVConvolver runs the Convolver contract through OpenCV's Filter2D.
// Filter2D computes a correlation with the anchor at the kernel centre, so
// results match Correlator with the same Border. Only built with the
// "opencv" build tag.
type OpenCVConvolver struct {
	Border Border
}

// Convolve implements Convolver.
func (oc OpenCVConvolver) Convolve(src, kernel *raster.Raster[float64]) (*raster.Raster[float64], error) {
	if src == nil || kernel == nil {
		return nil, errors.New("convolve: nil raster or kernel")
	}

	srcMat := toMat(src)
	defer srcMat.Close()
	kernelMat := toMat(kernel)
	defer kernelMat.Close()

	dst := gocv.NewMat()
	defer dst.Close()

	border := gocv.BorderConstant
	if oc.Border == BorderReplicate {
		border = gocv.BorderReplicate
	}
	gocv.Filter2D(srcMat, &dst, gocv.MatTypeCV64F, kernelMat, image.Pt(-1, -1), 0, border)
	if dst.Empty() {
		return nil, errors.New("convolve: opencv filter2D produced an empty result")
	}

	width, height := src.Width(), src.Height()
	out := make([]float64, width*height)
	for row := 0; row < height; row++ {
		for col := 0; col < width; col++ {
			out[row*width+col] = dst.GetDoubleAt(row, col)
		}
	}
	return raster.New(width, height, out)
}

func toMat(r *raster.Raster[float64]) gocv.Mat {
	m := gocv.NewMatWithSize(r.Height(), r.Width(), gocv.MatTypeCV64F)
	for row := 0; row < r.Height(); row++ {
		for col := 0; col < r.Width(); col++ {
			m.SetDoubleAt(row, col, r.At(row, col))
		}
	}
	return m
}

func newOpenCVConvolver(border Border) (Convolver, error) {
	return OpenCVConvolver{Border: border}, nil
}
