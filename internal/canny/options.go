package canny

import "github.com/ironsheep/edge-tools-mcp/internal/raster"

// Option adjusts the neighbour lookups of Suppress, Promote and Classify.
//
// Example:
//
//	out, err := canny.Suppress(w, h, edges, 2, canny.WithStrictBounds())
type Option func(*options)

type options struct {
	strictBounds  bool
	unitDirection bool
	propagate     bool
}

func collectOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return o
}

// WithStrictBounds checks neighbour rows and columns separately, so an
// offset never wraps onto an adjacent row.
func WithStrictBounds() Option {
	return func(o *options) { o.strictBounds = true }
}

// WithUnitDirection makes Suppress quantise the unit direction instead of
// the magnitude-scaled gradient.
func WithUnitDirection() Option {
	return func(o *options) { o.unitDirection = true }
}

// WithPropagation makes Promote repeat until no Weak pixel can reach a
// Strong one, so promotions chain through connected Weak pixels.
func WithPropagation() Option {
	return func(o *options) { o.propagate = true }
}

// neighbour returns the flattened index of (row, col) in grid and whether
// it may be sampled. By default only the flattened index is range checked,
// so a column past either side lands on the adjacent row; with strict
// bounds (row, col) itself must lie inside the grid.
func neighbour[T any](grid *raster.Raster[T], row, col int, o options) (int, bool) {
	if o.strictBounds && !grid.Contains(row, col) {
		return 0, false
	}
	i := grid.Index(row, col)
	return i, i >= 0 && i < grid.Len()
}
