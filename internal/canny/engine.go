package canny

import "strings"

// Convolution engines accepted by NewConvolver.
const (
	EngineGo     = "go"
	EngineOpenCV = "opencv"
)

// NewConvolver returns the Convolver for engine. "go" (or "") selects
// Correlator; "opencv" selects OpenCVConvolver and fails unless the binary
// was built with the opencv tag.
func NewConvolver(engine string, border Border) (Convolver, error) {
	switch strings.ToLower(strings.TrimSpace(engine)) {
	case "", EngineGo:
		return Correlator{Border: border}, nil
	case EngineOpenCV:
		return newOpenCVConvolver(border)
	default:
		return nil, &ParamError{Name: "engine", Value: engine, Reason: `must be "go" or "opencv"`}
	}
}
