// Package grading implements the per-pixel color grading chain: white
// balance, brightness, contrast, saturation, temperature/tint, exposure,
// and the shadow/highlight/white zone remaps.
//
// The stage order is fixed. Later stages operate on already-transformed
// channel values, so the same settings always reproduce the same pixel.
package grading

// Zone thresholds for the tone remap stages.
const (
	shadowThreshold    = 64.0
	highlightThreshold = 192.0
	whiteThreshold     = 220.0
)

// Settings is a read-only snapshot of every grading parameter for one
// pass. Construct with DefaultSettings and override the fields you need;
// the defaults are all identity values.
type Settings struct {
	// WhiteBalance holds four camera multipliers (R, G, B, G2) as
	// produced by the RAW decoder. The fourth element is the duplicate
	// green multiplier and is unused for a 3-channel buffer. Nil
	// disables the stage.
	WhiteBalance []float64 `json:"whiteBalance,omitempty"`

	// Brightness is a plain channel multiplier. Identity 1.0.
	Brightness float64 `json:"brightness"`

	// Contrast in [-255,255]. Identity 0.
	Contrast float64 `json:"contrast"`

	// Saturation multiplier. Identity 1.0; 0 produces grayscale.
	Saturation float64 `json:"saturation"`

	// Temperature pushes red up and blue down (or the inverse when
	// negative). Blue receives half the push. Identity 0.
	Temperature float64 `json:"temperature"`

	// Tint pushes green against red with the same half-magnitude
	// asymmetry. Identity 0.
	Tint float64 `json:"tint"`

	// Exposure in stops; channels scale by 2^Exposure. Identity 0.
	Exposure float64 `json:"exposure"`

	// Shadows pulls channel values below the shadow threshold toward it
	// by Shadows/100 of the gap. Identity 0.
	Shadows float64 `json:"shadows"`

	// Highlights pushes channel values above the highlight threshold
	// away from it by Highlights/100 of the gap. Identity 0.
	Highlights float64 `json:"highlights"`

	// Whites scales bright pixels (mean brightness above the white
	// threshold) by Whites/100. Both 0 (stage off) and 100 are
	// identity.
	Whites float64 `json:"whites"`
}

// DefaultSettings returns identity settings: grading with them leaves
// every pixel untouched.
func DefaultSettings() Settings {
	return Settings{
		Brightness: 1.0,
		Saturation: 1.0,
	}
}

// IsIdentity reports whether every stage is at its identity value. The
// scheduler uses this to skip the pixel loop entirely on no-op requests.
func (s Settings) IsIdentity() bool {
	if s.WhiteBalance != nil {
		for i := 0; i < 3 && i < len(s.WhiteBalance); i++ {
			if s.WhiteBalance[i] != 1.0 {
				return false
			}
		}
	}
	return s.Brightness == 1.0 &&
		s.Contrast == 0 &&
		s.Saturation == 1.0 &&
		s.Temperature == 0 &&
		s.Tint == 0 &&
		s.Exposure == 0 &&
		s.Shadows == 0 &&
		s.Highlights == 0 &&
		(s.Whites == 0 || s.Whites == 100)
}
