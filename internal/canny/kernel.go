package canny

import (
	"fmt"
	"math"

	"github.com/ironsheep/edge-tools-mcp/internal/raster"
)

// MaxKernelSize is the largest accepted kernel side. Larger kernels would
// allocate size² coefficients per kernel and size² multiply-adds per pixel.
const MaxKernelSize = 512

// SynthesizeKernels returns the size×size derivative-of-Gaussian kernels
// (Gx, Gy) for the given sigma.
//
// For cell (r, c) with u = r - size/2 and v = c - size/2 (integer division):
//
//	g       = (1/sigma) * exp(-(u²+v²) / (2·sigma²))
//	Gx[r,c] = -(u / sigma²) * g
//	Gy[r,c] = -(v / sigma²) * g
//
// Gx differentiates along rows, Gy along columns. For odd sizes Gx is
// antisymmetric across the centre row and Gy across the centre column.
//
// Returns an ErrInvalidParameter error when size is outside
// [1, MaxKernelSize] or sigma is not a finite positive number.
func SynthesizeKernels(size int, sigma float64) (gx, gy *raster.Raster[float64], err error) {
	if size < 1 {
		return nil, nil, paramError(StageKernel, "size", size, "must be at least 1")
	}
	if size > MaxKernelSize {
		return nil, nil, paramError(StageKernel, "size", size, fmt.Sprintf("must not exceed %d", MaxKernelSize))
	}
	if !(sigma > 0) || math.IsInf(sigma, 1) {
		return nil, nil, paramError(StageKernel, "sigma", sigma, "must be a finite number > 0")
	}

	half := float64(size / 2)
	sigmaSq := sigma * sigma
	expCoefficient := -0.5 / sigmaSq
	coefficient := 1.0 / sigma

	n := size * size
	xData := make([]float64, n)
	yData := make([]float64, n)
	for i := range n {
		u := float64(i/size) - half
		v := float64(i%size) - half

		g := coefficient * math.Exp((u*u+v*v)*expCoefficient)
		xData[i] = -(u / sigmaSq) * g
		yData[i] = -(v / sigmaSq) * g
	}

	if gx, err = raster.New(size, size, xData); err != nil {
		return nil, nil, wrapStage(StageKernel, err)
	}
	if gy, err = raster.New(size, size, yData); err != nil {
		return nil, nil, wrapStage(StageKernel, err)
	}
	return gx, gy, nil
}
