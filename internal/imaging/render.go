package imaging

import (
	"fmt"
	"image"
	"math"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/ironsheep/edge-tools-mcp/internal/canny"
	"github.com/ironsheep/edge-tools-mcp/internal/raster"
)

// Render targets accepted by RenderStage.
const (
	StageGradientX  = "gradient_x"
	StageGradientY  = "gradient_y"
	StageMagnitude  = "magnitude"
	StageSuppressed = "suppressed"
	StageThresholds = "thresholds"
	StageEdges      = "edges"
	StageDirection  = "direction"
)

// Stages lists every render target in pipeline order.
var Stages = []string{
	StageGradientX,
	StageGradientY,
	StageMagnitude,
	StageSuppressed,
	StageThresholds,
	StageEdges,
	StageDirection,
}

// Gray levels used by RenderClasses.
const (
	StrongLevel uint8 = 255
	WeakLevel   uint8 = 32
	NullLevel   uint8 = 0
)

// RenderStage renders one intermediate or final product of a detection run.
//
// Gradients render through FromUnit, so only their positive part is
// visible. "magnitude" and "suppressed" render edge magnitudes the same
// way. "thresholds" shows the snapshot before promotion and "edges" the
// final classification, both via RenderClasses.
func RenderStage(res *canny.Result, stage string) (image.Image, error) {
	switch stage {
	case StageGradientX:
		return FromUnit(res.GradientX), nil
	case StageGradientY:
		return FromUnit(res.GradientY), nil
	case StageMagnitude:
		return RenderMagnitude(res.Edges), nil
	case StageSuppressed:
		return RenderMagnitude(res.Suppressed), nil
	case StageThresholds:
		return RenderClasses(res.Thresholds), nil
	case StageEdges, "":
		return RenderClasses(res.Classes), nil
	case StageDirection:
		return RenderDirection(res.Suppressed), nil
	default:
		return nil, fmt.Errorf("unknown stage %q (valid: %v)", stage, Stages)
	}
}

// RenderMagnitude renders edge magnitudes as an 8-bit grayscale image.
func RenderMagnitude(edges *raster.Raster[canny.Edge]) *image.Gray {
	return FromUnit(canny.Magnitudes(edges))
}

// RenderClasses renders Strong pixels white, Weak pixels dark gray and
// everything else black.
func RenderClasses(classes *raster.Raster[canny.Class]) *image.Gray {
	out := image.NewGray(image.Rect(0, 0, classes.Width(), classes.Height()))
	for i, c := range classes.Data() {
		switch c {
		case canny.Strong:
			out.Pix[i] = StrongLevel
		case canny.Weak:
			out.Pix[i] = WeakLevel
		default:
			out.Pix[i] = NullLevel
		}
	}
	return out
}

// RenderDirection colour-codes edge orientation.
//
// Hue follows the gradient angle (0° along +row, counter-clockwise towards
// +column), saturation is full and value is the magnitude relative to the
// strongest edge in the raster. Zero edges are black.
func RenderDirection(edges *raster.Raster[canny.Edge]) *image.NRGBA {
	out := image.NewNRGBA(image.Rect(0, 0, edges.Width(), edges.Height()))

	var peak float64
	for _, e := range edges.Data() {
		peak = math.Max(peak, e.Magnitude())
	}

	for i, e := range edges.Data() {
		px := out.Pix[i*4 : i*4+4]
		px[3] = 255
		if _, ok := e.Direction(); !ok || peak == 0 {
			continue
		}
		hue := math.Mod(e.Angle()*180/math.Pi+360, 360)
		c := colorful.Hsv(hue, 1, e.Magnitude()/peak).Clamped()
		px[0], px[1], px[2] = c.RGB255()
	}
	return out
}
