package canny

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/charmbracelet/log"

	"github.com/ironsheep/edge-tools-mcp/internal/raster"
)

// Params configures a Detector.
type Params struct {
	// KernelSize is the side of the square gradient kernels.
	KernelSize int `toml:"kernel_size" json:"kernel_size"`

	// Sigma is the standard deviation of the Gaussian.
	Sigma float64 `toml:"sigma" json:"sigma"`

	// DistanceRange is the half-width of the non-maximum suppression probe.
	DistanceRange int `toml:"distance_range" json:"distance_range"`

	// Weak and Strong are the hysteresis magnitude thresholds.
	Weak   float64 `toml:"weak" json:"weak"`
	Strong float64 `toml:"strong" json:"strong"`

	// Radius is the hysteresis promotion window radius.
	Radius int `toml:"radius" json:"radius"`

	// StrictBounds, UnitDirection and Propagate enable WithStrictBounds,
	// WithUnitDirection and WithPropagation respectively.
	StrictBounds  bool `toml:"strict_bounds" json:"strict_bounds"`
	UnitDirection bool `toml:"unit_direction" json:"unit_direction"`
	Propagate     bool `toml:"propagate" json:"propagate"`
}

// DefaultParams returns the reference parameters: a 10×10 kernel with
// sigma 2, suppression over 25 pixels, thresholds 0.05/0.1 and radius 2.
func DefaultParams() Params {
	return Params{
		KernelSize:    10,
		Sigma:         2.0,
		DistanceRange: 25,
		Weak:          0.05,
		Strong:        0.1,
		Radius:        2,
	}
}

// Validate checks every parameter eagerly and reports the first violation
// attributed to the stage that would reject it.
func (p Params) Validate() error {
	switch {
	case p.KernelSize < 1:
		return paramError(StageKernel, "kernel_size", p.KernelSize, "must be at least 1")
	case p.KernelSize > MaxKernelSize:
		return paramError(StageKernel, "kernel_size", p.KernelSize, fmt.Sprintf("must not exceed %d", MaxKernelSize))
	case !(p.Sigma > 0) || math.IsInf(p.Sigma, 1):
		return paramError(StageKernel, "sigma", p.Sigma, "must be a finite number > 0")
	case p.DistanceRange < 1:
		return paramError(StageSuppress, "distance_range", p.DistanceRange, "must be at least 1")
	case math.IsNaN(p.Weak):
		return paramError(StageThreshold, "weak", p.Weak, "must be a number")
	case math.IsNaN(p.Strong):
		return paramError(StageThreshold, "strong", p.Strong, "must be a number")
	case p.Weak > p.Strong:
		return paramError(StageThreshold, "weak", p.Weak, "must not exceed strong")
	case p.Radius < 0:
		return paramError(StagePromote, "radius", p.Radius, "must not be negative")
	}
	return nil
}

func (p Params) suppressOptions() []Option {
	var opts []Option
	if p.StrictBounds {
		opts = append(opts, WithStrictBounds())
	}
	if p.UnitDirection {
		opts = append(opts, WithUnitDirection())
	}
	return opts
}

func (p Params) promoteOptions() []Option {
	var opts []Option
	if p.StrictBounds {
		opts = append(opts, WithStrictBounds())
	}
	if p.Propagate {
		opts = append(opts, WithPropagation())
	}
	return opts
}

// Timings records how long each stage took.
type Timings struct {
	Kernel    time.Duration `json:"kernel"`
	Convolve  time.Duration `json:"convolve"`
	Edges     time.Duration `json:"edges"`
	Suppress  time.Duration `json:"suppress"`
	Threshold time.Duration `json:"threshold"`
	Promote   time.Duration `json:"promote"`
}

// Stats summarises a detection run.
type Stats struct {
	Width  int `json:"width"`
	Height int `json:"height"`

	// EdgePixels counts non-zero magnitudes after BuildEdges, and
	// SuppressedPixels those left after Suppress.
	EdgePixels       int `json:"edge_pixels"`
	SuppressedPixels int `json:"suppressed_pixels"`

	// SnapshotStrong and SnapshotWeak count the Threshold snapshot.
	SnapshotStrong int `json:"snapshot_strong"`
	SnapshotWeak   int `json:"snapshot_weak"`

	// Strong, Weak and Null count the final classification.
	Strong int `json:"strong"`
	Weak   int `json:"weak"`
	Null   int `json:"null"`

	Timings Timings `json:"timings"`
}

// Result holds the output of every stage of a detection run.
type Result struct {
	KernelX    *raster.Raster[float64]
	KernelY    *raster.Raster[float64]
	GradientX  *raster.Raster[float64]
	GradientY  *raster.Raster[float64]
	Edges      *raster.Raster[Edge]
	Suppressed *raster.Raster[Edge]
	Thresholds *raster.Raster[Class]
	Classes    *raster.Raster[Class]
	Stats      Stats
}

// Detector runs the full edge pipeline with fixed parameters. It holds no
// per-run state and may be shared between goroutines.
type Detector struct {
	params Params
	conv   Convolver
	logger *log.Logger
}

// NewDetector validates params and returns a Detector. A nil conv selects a
// zero-padding Correlator; a nil logger selects log.Default().
func NewDetector(params Params, conv Convolver, logger *log.Logger) (*Detector, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if conv == nil {
		conv = Correlator{Border: BorderZero}
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Detector{params: params, conv: conv, logger: logger}, nil
}

// Params returns the detector's parameters.
func (d *Detector) Params() Params { return d.params }

// Detect runs kernel synthesis, both convolutions, edge building,
// non-maximum suppression and hysteresis on img, a single-channel raster
// normalised to [0, 1]. The first failing stage aborts the run and its
// error is returned as a *StageError.
func (d *Detector) Detect(img *raster.Raster[float64]) (*Result, error) {
	return d.DetectContext(context.Background(), img)
}

// DetectContext is Detect with cancellation. ctx is checked before every
// stage; a stage that has started runs to completion. Cancellation is
// returned as a *StageError naming the stage that did not run, wrapping
// ctx.Err().
func (d *Detector) DetectContext(ctx context.Context, img *raster.Raster[float64]) (*Result, error) {
	if img == nil {
		return nil, shapeError(StageConvolve, "nil image")
	}
	p := d.params
	res := &Result{}
	res.Stats.Width, res.Stats.Height = img.Width(), img.Height()
	timings := &res.Stats.Timings

	if err := interrupted(ctx, StageKernel); err != nil {
		return nil, err
	}
	start := time.Now()
	gx, gy, err := SynthesizeKernels(p.KernelSize, p.Sigma)
	if err != nil {
		return nil, err
	}
	res.KernelX, res.KernelY = gx, gy
	timings.Kernel = time.Since(start)

	if err := interrupted(ctx, StageConvolve); err != nil {
		return nil, err
	}
	start = time.Now()
	if res.GradientX, err = d.conv.Convolve(img, gx); err != nil {
		return nil, wrapStage(StageConvolve, err)
	}
	if err := interrupted(ctx, StageConvolve); err != nil {
		return nil, err
	}
	if res.GradientY, err = d.conv.Convolve(img, gy); err != nil {
		return nil, wrapStage(StageConvolve, err)
	}
	if !res.GradientX.HasShape(img.Width(), img.Height()) || !res.GradientY.HasShape(img.Width(), img.Height()) {
		return nil, shapeError(StageConvolve, "convolver changed the raster shape")
	}
	timings.Convolve = time.Since(start)
	d.logger.Debug("convolved", "kernel_size", p.KernelSize, "sigma", p.Sigma, "duration", timings.Convolve)

	if err := interrupted(ctx, StageEdges); err != nil {
		return nil, err
	}
	start = time.Now()
	if res.Edges, err = BuildEdges(res.GradientX, res.GradientY); err != nil {
		return nil, err
	}
	timings.Edges = time.Since(start)
	res.Stats.EdgePixels = NonZero(res.Edges)
	d.logger.Debug("built edges", "nonzero", res.Stats.EdgePixels, "duration", timings.Edges)

	if err := interrupted(ctx, StageSuppress); err != nil {
		return nil, err
	}
	start = time.Now()
	width, height := img.Width(), img.Height()
	if res.Suppressed, err = Suppress(width, height, res.Edges, p.DistanceRange, p.suppressOptions()...); err != nil {
		return nil, err
	}
	timings.Suppress = time.Since(start)
	res.Stats.SuppressedPixels = NonZero(res.Suppressed)
	d.logger.Debug("suppressed non-maxima", "nonzero", res.Stats.SuppressedPixels,
		"distance_range", p.DistanceRange, "duration", timings.Suppress)

	if err := interrupted(ctx, StageThreshold); err != nil {
		return nil, err
	}
	start = time.Now()
	if res.Thresholds, err = Threshold(res.Suppressed, p.Weak, p.Strong); err != nil {
		return nil, err
	}
	timings.Threshold = time.Since(start)
	res.Stats.SnapshotStrong, res.Stats.SnapshotWeak, _ = CountClasses(res.Thresholds)

	if err := interrupted(ctx, StagePromote); err != nil {
		return nil, err
	}
	start = time.Now()
	if res.Classes, err = Promote(res.Thresholds, p.Radius, p.promoteOptions()...); err != nil {
		return nil, err
	}
	timings.Promote = time.Since(start)
	res.Stats.Strong, res.Stats.Weak, res.Stats.Null = CountClasses(res.Classes)
	d.logger.Debug("classified edges", "strong", res.Stats.Strong, "promoted",
		res.Stats.Strong-res.Stats.SnapshotStrong, "duration", timings.Threshold+timings.Promote)

	return res, nil
}

// interrupted returns ctx's error attributed to stage, or nil.
func interrupted(ctx context.Context, stage string) error {
	if err := ctx.Err(); err != nil {
		return &StageError{Stage: stage, Err: err}
	}
	return nil
}
