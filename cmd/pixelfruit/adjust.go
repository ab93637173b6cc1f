package main

import (
	"encoding/json"
	"path/filepath"
	"strings"

	"github.com/anthonynsimon/bild/imgio"
	"github.com/disintegration/imaging"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/ji-annnn/PixelFruit/internal/engine"
	"github.com/ji-annnn/PixelFruit/internal/pixel"
)

var (
	adjustIn  string
	adjustOut string

	brightnessFlag  float64
	contrastFlag    float64
	saturationFlag  float64
	temperatureFlag float64
	tintFlag        float64
	exposureFlag    float64
	shadowsFlag     float64
	highlightsFlag  float64
	whitesFlag      float64

	sharpenFlag       float64
	denoiseFlag       float64
	denoiseAlgoFlag   string
	denoiseDetailFlag float64
	skinFlag          float64
	skinSmoothFlag    float64

	progressiveFlag bool
)

var adjustCmd = &cobra.Command{
	Use:   "adjust",
	Short: "Apply grading and detail operations to an image",
	RunE:  runAdjust,
}

func init() {
	f := adjustCmd.Flags()
	f.StringVarP(&adjustIn, "in", "i", "", "Input image path")
	f.StringVarP(&adjustOut, "out", "o", "", "Output image path")
	_ = adjustCmd.MarkFlagRequired("in")
	_ = adjustCmd.MarkFlagRequired("out")

	f.Float64Var(&brightnessFlag, "brightness", 1.0, "Brightness multiplier (1.0 = unchanged)")
	f.Float64Var(&contrastFlag, "contrast", 0, "Contrast [-255,255]")
	f.Float64Var(&saturationFlag, "saturation", 1.0, "Saturation multiplier (1.0 = unchanged)")
	f.Float64Var(&temperatureFlag, "temperature", 0, "Temperature push (warm > 0)")
	f.Float64Var(&tintFlag, "tint", 0, "Tint push (green > 0)")
	f.Float64Var(&exposureFlag, "exposure", 0, "Exposure in stops")
	f.Float64Var(&shadowsFlag, "shadows", 0, "Shadow zone strength [-100,100]")
	f.Float64Var(&highlightsFlag, "highlights", 0, "Highlight zone strength [-100,100]")
	f.Float64Var(&whitesFlag, "whites", 0, "White zone scale [0,200], 0 = off")

	f.Float64Var(&sharpenFlag, "sharpen", 0, "Unsharp mask amount [0,100]")
	f.Float64Var(&denoiseFlag, "denoise", 0, "Denoise strength [0,100]")
	f.StringVar(&denoiseAlgoFlag, "denoise-algorithm", "mean", "Denoise algorithm: mean, median, gaussian")
	f.Float64Var(&denoiseDetailFlag, "denoise-detail", 50, "Detail preservation [0,100] (mean algorithm only)")
	f.Float64Var(&skinFlag, "brighten-skin", 0, "Skin brightening strength [0,100]")
	f.Float64Var(&skinSmoothFlag, "skin-smoothness", 0, "Skin mask smoothing [0,100]")

	f.BoolVar(&progressiveFlag, "progressive", false, "Render progressive previews (logged, not saved)")
}

func runAdjust(cmd *cobra.Command, args []string) error {
	buf, err := loadBuffer(adjustIn)
	if err != nil {
		return err
	}

	ops := buildOperations()

	eng := engine.New(engineConfig())
	defer eng.Close()

	opts := engine.ProcessOptions{Progressive: progressiveFlag}
	if progressiveFlag {
		opts.OnProgress = func(pct float64, preview *pixel.Buffer) {
			log.Info().Float64("pct", pct).Msg("preview ready")
		}
	}

	result, err := eng.Process(buf, ops, opts)
	if err != nil {
		return err
	}
	out, err := result.Wait()
	if err != nil {
		return err
	}

	if err := saveBuffer(adjustOut, out); err != nil {
		return err
	}
	log.Info().Str("out", adjustOut).Int("ops", len(ops)).Msg("adjusted image written")
	return nil
}

// buildOperations translates the CLI flags into the engine's ordered
// operation list: grade first, then detail passes.
func buildOperations() []engine.Operation {
	var ops []engine.Operation

	grade := map[string]interface{}{
		"brightness":  brightnessFlag,
		"contrast":    contrastFlag,
		"saturation":  saturationFlag,
		"temperature": temperatureFlag,
		"tint":        tintFlag,
		"exposure":    exposureFlag,
		"shadows":     shadowsFlag,
		"highlights":  highlightsFlag,
		"whites":      whitesFlag,
	}
	ops = append(ops, operation(engine.OpGrade, grade))

	if denoiseFlag > 0 {
		ops = append(ops, operation(engine.OpDenoise, map[string]interface{}{
			"strength":           denoiseFlag,
			"algorithm":          denoiseAlgoFlag,
			"detailPreservation": denoiseDetailFlag,
		}))
	}
	if sharpenFlag > 0 {
		ops = append(ops, operation(engine.OpSharpen, map[string]interface{}{
			"amount": sharpenFlag,
		}))
	}
	if skinFlag > 0 {
		ops = append(ops, operation(engine.OpBrightenSkin, map[string]interface{}{
			"strength":   skinFlag,
			"smoothness": skinSmoothFlag,
		}))
	}
	return ops
}

func operation(kind string, params map[string]interface{}) engine.Operation {
	raw, _ := json.Marshal(params)
	return engine.Operation{Type: kind, Params: raw}
}

func engineConfig() engine.Config {
	cfg := engine.DefaultConfig()
	cfg.Logger = log.Logger
	return cfg
}

func loadBuffer(path string) (*pixel.Buffer, error) {
	img, err := imaging.Open(path)
	if err != nil {
		return nil, err
	}
	return pixel.FromImage(img), nil
}

func saveBuffer(path string, buf *pixel.Buffer) error {
	var encoder imgio.Encoder
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		encoder = imgio.JPEGEncoder(95)
	default:
		encoder = imgio.PNGEncoder()
	}
	return imgio.Save(path, buf.Image(), encoder)
}
