package canny

import (
	"errors"
	"fmt"

	"github.com/ironsheep/edge-tools-mcp/internal/raster"
)

// Stage names used in errors, logs and statistics.
const (
	StageKernel    = "kernel"
	StageConvolve  = "convolve"
	StageEdges     = "edges"
	StageSuppress  = "suppress"
	StageThreshold = "threshold"
	StagePromote   = "promote"
)

var (
	// ErrInvalidParameter is matched by every parameter validation failure.
	ErrInvalidParameter = errors.New("canny: invalid parameter")

	// ErrDimensionMismatch is raster.ErrDimensionMismatch, re-exported so
	// callers of this package need not import raster to test for it.
	ErrDimensionMismatch = raster.ErrDimensionMismatch
)

// ParamError describes a rejected parameter value.
type ParamError struct {
	Name   string
	Value  any
	Reason string
}

func (e *ParamError) Error() string {
	return fmt.Sprintf("invalid parameter %s=%v: %s", e.Name, e.Value, e.Reason)
}

func (e *ParamError) Unwrap() error { return ErrInvalidParameter }

// StageError attributes a failure to the pipeline stage that raised it.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("canny: %s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

func paramError(stage, name string, value any, reason string) error {
	return &StageError{Stage: stage, Err: &ParamError{Name: name, Value: value, Reason: reason}}
}

func shapeError(stage string, format string, args ...any) error {
	return &StageError{Stage: stage, Err: fmt.Errorf("%w: "+format, append([]any{ErrDimensionMismatch}, args...)...)}
}

// wrapStage attaches stage to err unless err already carries a stage.
func wrapStage(stage string, err error) error {
	var se *StageError
	if errors.As(err, &se) {
		return err
	}
	return &StageError{Stage: stage, Err: err}
}
