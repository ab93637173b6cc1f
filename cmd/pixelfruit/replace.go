package main

import (
	"fmt"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/ji-annnn/PixelFruit/internal/engine"
	"github.com/ji-annnn/PixelFruit/internal/replace"
)

var (
	replaceIn        string
	replaceOut       string
	replaceFrom      string
	replaceTo        string
	replaceTolerance float64
	replaceMix       float64
)

var replaceCmd = &cobra.Command{
	Use:   "replace",
	Short: "Replace a color range with a target color range",
	Long: `Replace finds pixels within tolerance of the source color segment and
maps them onto the target segment. Ranges are "#RRGGBB,#RRGGBB" pairs;
a single "#RRGGBB" selects around one color.`,
	RunE: runReplace,
}

func init() {
	f := replaceCmd.Flags()
	f.StringVarP(&replaceIn, "in", "i", "", "Input image path")
	f.StringVarP(&replaceOut, "out", "o", "", "Output image path")
	f.StringVar(&replaceFrom, "from", "", `Source color range, e.g. "#FF0000,#FF8080"`)
	f.StringVar(&replaceTo, "to", "", `Target color range, e.g. "#0000FF,#8080FF"`)
	f.Float64Var(&replaceTolerance, "tolerance", 20, "Match tolerance in pixel-distance units")
	f.Float64Var(&replaceMix, "mix", 1.0, "Blend ratio: 0 = no change, 1 = full replacement")
	_ = replaceCmd.MarkFlagRequired("in")
	_ = replaceCmd.MarkFlagRequired("out")
	_ = replaceCmd.MarkFlagRequired("from")
	_ = replaceCmd.MarkFlagRequired("to")
}

func runReplace(cmd *cobra.Command, args []string) error {
	buf, err := loadBuffer(replaceIn)
	if err != nil {
		return err
	}

	srcStart, srcEnd, err := parseRange(replaceFrom)
	if err != nil {
		return fmt.Errorf("--from: %w", err)
	}
	dstStart, dstEnd, err := parseRange(replaceTo)
	if err != nil {
		return fmt.Errorf("--to: %w", err)
	}

	eng := engine.New(engineConfig())
	defer eng.Close()

	matches, err := eng.FindInRange(buf, srcStart, srcEnd, replaceTolerance)
	if err != nil {
		return err
	}
	changed, err := eng.ApplyReplace(buf, matches, replace.Params{
		Start:       srcStart,
		End:         srcEnd,
		Tolerance:   replaceTolerance,
		TargetStart: dstStart,
		TargetEnd:   dstEnd,
		Mix:         replaceMix,
	})
	if err != nil {
		return err
	}

	log.Info().Int("matchedColors", len(matches)).Int("changed", changed).
		Msg("replacement applied")
	return saveBuffer(replaceOut, buf)
}

// parseRange parses "#RRGGBB,#RRGGBB" (or a single "#RRGGBB", which
// degenerates to a radius match around one color).
func parseRange(spec string) (replace.RGB, replace.RGB, error) {
	parts := strings.SplitN(spec, ",", 2)
	start, err := parseHexColor(parts[0])
	if err != nil {
		return replace.RGB{}, replace.RGB{}, err
	}
	end := start
	if len(parts) == 2 {
		if end, err = parseHexColor(parts[1]); err != nil {
			return replace.RGB{}, replace.RGB{}, err
		}
	}
	return start, end, nil
}

func parseHexColor(s string) (replace.RGB, error) {
	c, err := colorful.Hex(strings.TrimSpace(s))
	if err != nil {
		return replace.RGB{}, err
	}
	r, g, b := c.RGB255()
	return replace.RGB{R: r, G: g, B: b}, nil
}
