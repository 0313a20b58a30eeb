package main

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/eringen/inkpress"
)

func optimizeCmd() *cobra.Command {
	var (
		out      string
		maxWidth int
	)

	cmd := &cobra.Command{
		Use:   "optimize [image-dir]",
		Short: "Downscale and re-encode images for the web",
		Long: `Optimize walks the image directory, downscales anything wider than
--max-width, and re-encodes everything as JPEG into the output
directory. Outputs that are already newer than their source are
skipped, so the command is safe to run repeatedly.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src := "images"
			if len(args) > 0 {
				src = args[0]
			}
			return runOptimize(src, out, maxWidth)
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "public/images", "output directory")
	cmd.Flags().IntVar(&maxWidth, "max-width", inkpress.DefaultMaxImageWidth, "maximum image width in pixels")
	return cmd
}

func runOptimize(src, dst string, maxWidth int) error {
	report, err := inkpress.OptimizeDir(src, dst, maxWidth)
	if err != nil {
		return err
	}

	done, skipped := 0, 0
	for _, r := range report {
		if r.Skipped {
			skipped++
			continue
		}
		done++
		logger.Info("optimized", "file", r.Output,
			"size", r.Size, "dimensions", formatDims(r.Width, r.Height))
	}
	logger.Info("optimize complete", "written", done, "skipped", skipped)
	return nil
}

func formatDims(w, h int) string {
	return strconv.Itoa(w) + "x" + strconv.Itoa(h)
}
