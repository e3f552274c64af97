//go:build !opencv

package canny

import "fmt"

func newOpenCVConvolver(Border) (Convolver, error) {
	return nil, fmt.Errorf("%w: engine %q requires building with -tags opencv", ErrInvalidParameter, EngineOpenCV)
}
