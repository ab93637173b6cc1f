package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ji-annnn/PixelFruit/internal/engine"
)

var histogramIn string

var histogramCmd = &cobra.Command{
	Use:   "histogram",
	Short: "Print channel and luminance statistics for an image",
	RunE:  runHistogram,
}

func init() {
	histogramCmd.Flags().StringVarP(&histogramIn, "in", "i", "", "Input image path")
	_ = histogramCmd.MarkFlagRequired("in")
}

func runHistogram(cmd *cobra.Command, args []string) error {
	buf, err := loadBuffer(histogramIn)
	if err != nil {
		return err
	}

	eng := engine.New(engineConfig())
	defer eng.Close()

	data, err := eng.Histogram(buf)
	if err != nil {
		return err
	}

	fmt.Printf("%s: %dx%d, %d pixels\n", histogramIn, buf.Width, buf.Height, buf.Width*buf.Height)
	printChannel("red", data.R)
	printChannel("green", data.G)
	printChannel("blue", data.B)
	printChannel("luminance", data.Luminance)
	return nil
}

func printChannel(name string, counts [256]uint32) {
	var total, weighted uint64
	minV, maxV := -1, 0
	for v, n := range counts {
		if n == 0 {
			continue
		}
		if minV < 0 {
			minV = v
		}
		maxV = v
		total += uint64(n)
		weighted += uint64(n) * uint64(v)
	}
	if total == 0 {
		fmt.Printf("  %-9s empty\n", name)
		return
	}
	fmt.Printf("  %-9s min=%d max=%d mean=%.1f\n", name, minV, maxV, float64(weighted)/float64(total))
}
