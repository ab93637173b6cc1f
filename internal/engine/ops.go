package engine

import (
	"encoding/json"

	"github.com/pkg/errors"

	"github.com/ji-annnn/PixelFruit/internal/detail"
	"github.com/ji-annnn/PixelFruit/internal/grading"
	"github.com/ji-annnn/PixelFruit/internal/pixel"
)

// Operation names accepted by the pipeline.
const (
	OpGrade        = "grade"
	OpSharpen      = "sharpen"
	OpDenoise      = "denoise"
	OpBrightenSkin = "brighten_skin"
)

// Operation is one named step of an adjustment request. Params is the
// operation's parameter object; omitted fields take the operation's
// identity/default values.
type Operation struct {
	Type   string          `json:"type"`
	Params json.RawMessage `json:"params,omitempty"`
}

// stage is a compiled operation ready to run against a buffer.
type stage func(*pixel.Buffer) *pixel.Buffer

type sharpenParams struct {
	Amount float64 `json:"amount"`
	Draft  bool    `json:"draft"`
}

type denoiseParams struct {
	Strength           float64 `json:"strength"`
	Algorithm          string  `json:"algorithm"`
	DetailPreservation float64 `json:"detailPreservation"`
}

type skinParams struct {
	Strength   float64 `json:"strength"`
	Smoothness float64 `json:"smoothness"`
}

// compileOperation validates one operation and returns its stage.
// All parameter problems are reported before anything is enqueued.
func compileOperation(op Operation) (stage, error) {
	switch op.Type {
	case OpGrade:
		settings := grading.DefaultSettings()
		if err := decodeParams(op, &settings); err != nil {
			return nil, err
		}
		return func(buf *pixel.Buffer) *pixel.Buffer {
			return grading.Grade(buf, settings)
		}, nil

	case OpSharpen:
		var p sharpenParams
		if err := decodeParams(op, &p); err != nil {
			return nil, err
		}
		hint := detail.QualityFull
		if p.Draft {
			hint = detail.QualityDraft
		}
		return func(buf *pixel.Buffer) *pixel.Buffer {
			return detail.Sharpen(buf, p.Amount, hint)
		}, nil

	case OpDenoise:
		p := denoiseParams{DetailPreservation: 50}
		if err := decodeParams(op, &p); err != nil {
			return nil, err
		}
		algo, err := detail.ParseAlgorithm(p.Algorithm)
		if err != nil {
			return nil, errors.Wrap(ErrUnknownOperation, err.Error())
		}
		return func(buf *pixel.Buffer) *pixel.Buffer {
			return detail.Denoise(buf, p.Strength, algo, p.DetailPreservation)
		}, nil

	case OpBrightenSkin:
		var p skinParams
		if err := decodeParams(op, &p); err != nil {
			return nil, err
		}
		return func(buf *pixel.Buffer) *pixel.Buffer {
			return detail.BrightenSkin(buf, p.Strength, p.Smoothness)
		}, nil

	default:
		return nil, errors.Wrapf(ErrUnknownOperation, "%q", op.Type)
	}
}

// compilePipeline compiles every operation, preserving order.
func compilePipeline(ops []Operation) ([]stage, error) {
	stages := make([]stage, 0, len(ops))
	for _, op := range ops {
		st, err := compileOperation(op)
		if err != nil {
			return nil, err
		}
		stages = append(stages, st)
	}
	return stages, nil
}

func decodeParams(op Operation, into interface{}) error {
	if len(op.Params) == 0 {
		return nil
	}
	if err := json.Unmarshal(op.Params, into); err != nil {
		return errors.Wrapf(ErrUnknownOperation, "%s params: %v", op.Type, err)
	}
	return nil
}

// serializeOps renders the operation list for use in cache keys. The
// encoding is stable for a given list.
func serializeOps(ops []Operation) string {
	raw, err := json.Marshal(ops)
	if err != nil {
		return ""
	}
	return string(raw)
}
