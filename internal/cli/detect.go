package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/ironsheep/edge-tools-mcp/internal/canny"
	"github.com/ironsheep/edge-tools-mcp/internal/config"
	"github.com/ironsheep/edge-tools-mcp/internal/imaging"
)

// detectOpts holds the command-line flags for the detect command.
type detectOpts struct {
	in       string          // input image path
	out      string          // output image path; format follows the extension
	stage    string          // pipeline product written to out
	region   string          // optional "x1,y1,x2,y2" sub-rectangle
	asJSON   bool            // print stats as JSON instead of text
	pipeline config.Pipeline // flag values; only changed flags override the config
}

// pipelineFlags maps flag names to the setter copying that flag's value
// from src into dst.
var pipelineFlags = map[string]func(dst *config.Pipeline, src config.Pipeline){
	"kernel-size":    func(d *config.Pipeline, s config.Pipeline) { d.KernelSize = s.KernelSize },
	"sigma":          func(d *config.Pipeline, s config.Pipeline) { d.Sigma = s.Sigma },
	"distance-range": func(d *config.Pipeline, s config.Pipeline) { d.DistanceRange = s.DistanceRange },
	"weak":           func(d *config.Pipeline, s config.Pipeline) { d.Weak = s.Weak },
	"strong":         func(d *config.Pipeline, s config.Pipeline) { d.Strong = s.Strong },
	"radius":         func(d *config.Pipeline, s config.Pipeline) { d.Radius = s.Radius },
	"border":         func(d *config.Pipeline, s config.Pipeline) { d.Border = s.Border },
	"engine":         func(d *config.Pipeline, s config.Pipeline) { d.Engine = s.Engine },
	"strict-bounds":  func(d *config.Pipeline, s config.Pipeline) { d.StrictBounds = s.StrictBounds },
	"unit-direction": func(d *config.Pipeline, s config.Pipeline) { d.UnitDirection = s.UnitDirection },
	"propagate":      func(d *config.Pipeline, s config.Pipeline) { d.Propagate = s.Propagate },
}

// overridePipeline returns base with every changed pipeline flag applied.
func overridePipeline(base, flags config.Pipeline, changed func(name string) bool) config.Pipeline {
	for name, set := range pipelineFlags {
		if changed(name) {
			set(&base, flags)
		}
	}
	return base
}

func (c *CLI) detectCommand() *cobra.Command {
	opts := detectOpts{
		stage:    imaging.StageEdges,
		pipeline: config.Default().Pipeline,
	}

	cmd := &cobra.Command{
		Use:   "detect",
		Short: "Run the edge pipeline on an image file",
		Long: `Run the edge pipeline on an image file, print pixel counts and optionally
write one pipeline stage as an image.

Pipeline flags override the configuration file; unset flags keep it.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p := overridePipeline(c.Config.Pipeline, opts.pipeline, cmd.Flags().Changed)
			return c.runDetect(cmd.Context(), opts, p)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.in, "in", "i", "", "input image (png, jpeg, gif, bmp, tiff, webp)")
	f.StringVarP(&opts.out, "out", "o", "", "output image path")
	f.StringVar(&opts.stage, "stage", opts.stage, fmt.Sprintf("stage to write: %v", imaging.Stages))
	f.StringVar(&opts.region, "region", "", "restrict detection to x1,y1,x2,y2 (x2,y2 exclusive)")
	f.BoolVar(&opts.asJSON, "json", false, "print stats as JSON")

	p := &opts.pipeline
	f.IntVar(&p.KernelSize, "kernel-size", p.KernelSize, "kernel side length")
	f.Float64Var(&p.Sigma, "sigma", p.Sigma, "Gaussian standard deviation")
	f.IntVar(&p.DistanceRange, "distance-range", p.DistanceRange, "non-maximum suppression half-width")
	f.Float64Var(&p.Weak, "weak", p.Weak, "weak edge threshold")
	f.Float64Var(&p.Strong, "strong", p.Strong, "strong edge threshold")
	f.IntVar(&p.Radius, "radius", p.Radius, "hysteresis promotion radius")
	f.StringVar(&p.Border, "border", p.Border, `convolution border: "zero" or "replicate"`)
	f.StringVar(&p.Engine, "engine", p.Engine, `convolution engine: "go" or "opencv"`)
	f.BoolVar(&p.StrictBounds, "strict-bounds", false, "do not wrap neighbour lookups across rows")
	f.BoolVar(&p.UnitDirection, "unit-direction", false, "quantise the unit gradient direction")
	f.BoolVar(&p.Propagate, "propagate", false, "follow chains of weak edges")

	_ = cmd.MarkFlagRequired("in")
	return cmd
}

func (c *CLI) runDetect(ctx context.Context, opts detectOpts, p config.Pipeline) error {
	if err := p.Validate(); err != nil {
		return err
	}
	conv, err := p.Convolver()
	if err != nil {
		return err
	}

	img, err := imaging.NewImageCache().Load(opts.in)
	if err != nil {
		return err
	}
	if opts.region != "" {
		var r imaging.Region
		if _, err := fmt.Sscanf(opts.region, "%d,%d,%d,%d", &r.X1, &r.Y1, &r.X2, &r.Y2); err != nil {
			return fmt.Errorf("invalid --region %q: want x1,y1,x2,y2", opts.region)
		}
		if img, err = imaging.CropRegion(img, r); err != nil {
			return err
		}
	}
	intensity, err := imaging.ToRaster(img)
	if err != nil {
		return err
	}

	det, err := canny.NewDetector(p.Params, conv, c.Logger)
	if err != nil {
		return err
	}
	prog := newProgress(c.Logger)
	res, err := det.DetectContext(ctx, intensity)
	if err != nil {
		return err
	}
	prog.done("detected edges", "path", opts.in, "strong", res.Stats.Strong)

	if opts.out != "" {
		rendered, err := imaging.RenderStage(res, opts.stage)
		if err != nil {
			return err
		}
		if err := imaging.Save(rendered, opts.out); err != nil {
			return err
		}
		c.Logger.Info("wrote stage", "stage", opts.stage, "path", opts.out)
	}

	if opts.asJSON {
		enc := json.NewEncoder(c.out)
		enc.SetIndent("", "  ")
		return enc.Encode(res.Stats)
	}
	return printStats(c.out, res.Stats)
}

func printStats(w io.Writer, s canny.Stats) error {
	_, err := fmt.Fprintf(w, `size            %dx%d
edge pixels     %d
after nms       %d
snapshot        strong=%d weak=%d
classified      strong=%d weak=%d null=%d
`,
		s.Width, s.Height,
		s.EdgePixels,
		s.SuppressedPixels,
		s.SnapshotStrong, s.SnapshotWeak,
		s.Strong, s.Weak, s.Null)
	return err
}
