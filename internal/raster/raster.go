// Package raster provides a dense, row-major 2-D grid of samples.
//
// A Raster is the unit of data passed between the stages of the edge
// pipeline: gradient kernels, convolution responses, edge vectors and
// edge classifications are all rasters of different element types.
//
// # Indexing
//
// Samples are addressed either by (row, col) or by the flattened index
// row*width + col. Row 0 is the top row, column 0 the leftmost column.
//
// # Ownership
//
// A Raster never shares its backing slice with another Raster created by
// this package. Data exposes the backing slice for fast read access; callers
// that received a raster from another stage must treat it as read-only.
package raster

import (
	"errors"
	"fmt"
)

var (
	// ErrBadShape is returned when a width or height is not positive.
	ErrBadShape = errors.New("raster: invalid shape")

	// ErrDimensionMismatch is returned when the data length does not equal
	// width*height, or when two rasters that must agree in shape do not.
	ErrDimensionMismatch = errors.New("raster: dimension mismatch")
)

// Raster is a width×height grid of samples stored row-major.
type Raster[T any] struct {
	width  int
	height int
	data   []T
}

// New wraps data as a width×height raster. The slice is taken over by the
// raster and must not be modified by the caller afterwards.
//
// Returns ErrBadShape for non-positive sides and ErrDimensionMismatch when
// len(data) != width*height.
func New[T any](width, height int, data []T) (*Raster[T], error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrBadShape, width, height)
	}
	if len(data) != width*height {
		return nil, fmt.Errorf("%w: %d samples for %dx%d raster (want %d)",
			ErrDimensionMismatch, len(data), width, height, width*height)
	}
	return &Raster[T]{width: width, height: height, data: data}, nil
}

// Make allocates a zero-valued width×height raster.
func Make[T any](width, height int) (*Raster[T], error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrBadShape, width, height)
	}
	return &Raster[T]{width: width, height: height, data: make([]T, width*height)}, nil
}

// Width returns the number of columns.
func (r *Raster[T]) Width() int { return r.width }

// Height returns the number of rows.
func (r *Raster[T]) Height() int { return r.height }

// Len returns width*height.
func (r *Raster[T]) Len() int { return len(r.data) }

// Index returns the flattened index of (row, col). It performs no bounds check.
func (r *Raster[T]) Index(row, col int) int { return row*r.width + col }

// At returns the sample at (row, col). It panics on out-of-range coordinates,
// like a slice index.
func (r *Raster[T]) At(row, col int) T { return r.data[row*r.width+col] }

// AtIndex returns the sample at flattened index i.
func (r *Raster[T]) AtIndex(i int) T { return r.data[i] }

// Contains reports whether (row, col) lies inside the grid.
func (r *Raster[T]) Contains(row, col int) bool {
	return row >= 0 && row < r.height && col >= 0 && col < r.width
}

// Data returns the backing slice. It must be treated as read-only unless the
// caller allocated the raster itself.
func (r *Raster[T]) Data() []T { return r.data }

// HasShape reports whether r is width×height.
func (r *Raster[T]) HasShape(width, height int) bool {
	return r.width == width && r.height == height
}

// Clone returns a deep copy of r.
func (r *Raster[T]) Clone() *Raster[T] {
	data := make([]T, len(r.data))
	copy(data, r.data)
	return &Raster[T]{width: r.width, height: r.height, data: data}
}

// Map returns a new raster holding fn applied to every sample of src.
func Map[T, U any](src *Raster[T], fn func(T) U) *Raster[U] {
	out := make([]U, len(src.data))
	for i, v := range src.data {
		out[i] = fn(v)
	}
	return &Raster[U]{width: src.width, height: src.height, data: out}
}

// Count returns how many samples satisfy pred.
func Count[T any](src *Raster[T], pred func(T) bool) int {
	n := 0
	for _, v := range src.data {
		if pred(v) {
			n++
		}
	}
	return n
}
