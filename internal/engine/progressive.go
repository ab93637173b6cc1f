package engine

import (
	"image"
	"runtime"

	"github.com/disintegration/imaging"
	"github.com/nfnt/resize"

	"github.com/ji-annnn/PixelFruit/internal/pixel"
)

// renderProgressive materializes one logical request as a ladder of
// sub-tasks at increasing resolution. Quality eases in quadratically:
//
//	scale = initial + (1-initial) * progress²
//
// Each sub-task's result is upscaled back to full resolution and handed
// to the progress callback immediately; the final sub-task runs at full
// resolution and its result is the canonical one.
func (e *Engine) renderProgressive(t *task) (*pixel.Buffer, error) {
	steps := e.cfg.ProgressiveSteps
	initial := e.cfg.InitialScale
	full := t.buf

	var final *pixel.Buffer
	for i := 0; i < steps; i++ {
		if t.cancelled.Load() {
			return nil, ErrCancelled
		}

		progress := float64(i) / float64(steps-1)
		scale := initial + (1-initial)*progress*progress

		var out *pixel.Buffer
		if scale >= 1 {
			out = runPipeline(full, t.stages)
			final = out
		} else {
			sw := int(float64(full.Width) * scale)
			sh := int(float64(full.Height) * scale)
			if sw < 1 {
				sw = 1
			}
			if sh < 1 {
				sh = 1
			}
			small := downscale(full, sw, sh)
			out = upscale(runPipeline(small, t.stages), full.Width, full.Height)
		}

		pct := 100 * float64(i+1) / float64(steps)
		e.log.Debug().Str("task", t.result.ID.String()).Float64("scale", scale).
			Float64("pct", pct).Msg("progressive step")
		if t.opts.OnProgress != nil {
			t.opts.OnProgress(pct, out)
		}

		// Cooperative yield between steps keeps the host responsive.
		runtime.Gosched()
	}

	if final == nil {
		final = runPipeline(full, t.stages)
	}
	return final, nil
}

// downscale produces the low-resolution working buffer for a preview
// step. Nearest neighbor: previews trade quality for latency.
func downscale(buf *pixel.Buffer, w, h int) *pixel.Buffer {
	small := resize.Resize(uint(w), uint(h), buf.Image(), resize.NearestNeighbor)
	return pixel.FromImage(small)
}

// upscale brings a preview back to display resolution. Lanczos hides
// most of the nearest-neighbor blockiness.
func upscale(buf *pixel.Buffer, w, h int) *pixel.Buffer {
	var img image.Image = buf.Image()
	img = imaging.Resize(img, w, h, imaging.Lanczos)
	return pixel.FromImage(img)
}
