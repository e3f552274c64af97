package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/ironsheep/edge-tools-mcp/internal/canny"
	"github.com/ironsheep/edge-tools-mcp/internal/raster"
)

func (c *CLI) kernelCommand() *cobra.Command {
	var (
		size   int
		sigma  float64
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "kernel",
		Short: "Print the derivative-of-Gaussian gradient kernels",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("size") {
				size = c.Config.Pipeline.KernelSize
			}
			if !cmd.Flags().Changed("sigma") {
				sigma = c.Config.Pipeline.Sigma
			}

			gx, gy, err := canny.SynthesizeKernels(size, sigma)
			if err != nil {
				return err
			}

			if asJSON {
				return json.NewEncoder(c.out).Encode(map[string]interface{}{
					"size":  size,
					"sigma": sigma,
					"gx":    gx.Data(),
					"gy":    gy.Data(),
				})
			}
			fmt.Fprintf(c.out, "gx (size %d, sigma %g)\n", size, sigma)
			printKernel(c.out, gx)
			fmt.Fprintf(c.out, "gy (size %d, sigma %g)\n", size, sigma)
			printKernel(c.out, gy)
			return nil
		},
	}

	defaults := canny.DefaultParams()
	cmd.Flags().IntVar(&size, "size", defaults.KernelSize, "kernel side length (default from config)")
	cmd.Flags().Float64Var(&sigma, "sigma", defaults.Sigma, "Gaussian standard deviation (default from config)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print row-major coefficients as JSON")
	return cmd
}

func printKernel(w io.Writer, k *raster.Raster[float64]) {
	for row := 0; row < k.Height(); row++ {
		for col := 0; col < k.Width(); col++ {
			fmt.Fprintf(w, " %10.6f", k.At(row, col))
		}
		fmt.Fprintln(w)
	}
}
