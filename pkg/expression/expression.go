// Package expression derives smile, engagement and mood signals from facial
// geometry ratios.
package expression

import (
	"math"

	"github.com/speakcoach/go-speakcoach/pkg/landmarks"
)

// Mood is a coarse facial-expression bucket.
type Mood string

const (
	MoodEnthusiastic Mood = "enthusiastic"
	MoodFriendly     Mood = "friendly"
	MoodEngaged      Mood = "engaged"
	MoodNeutral      Mood = "neutral"
	MoodFocused      Mood = "focused"
)

// Preset holds the expression constants. Two calibrations of the same
// heuristics shipped historically; both are kept as named presets until
// product settles on one.
type Preset struct {
	Name string

	SmileBaseline float64 // mouth ratio at which the smile score starts
	SmileScale    float64

	BrowSensitivity float64

	// Confidence weights over {smile, brow engagement, eye openness}
	SmileWeight    float64
	BrowWeight     float64
	OpennessWeight float64

	// Mood decision thresholds, evaluated in table order
	EnthusiasticSmile float64
	EnthusiasticBrow  float64
	FriendlySmile     float64
	EngagedBrow       float64
	NeutralSmile      float64
	NeutralBrow       float64
}

// ClassicPreset matches the most recent shipped constants. Default.
func ClassicPreset() Preset {
	return Preset{
		Name:          "classic",
		SmileBaseline: 1.5,
		SmileScale:    2,

		BrowSensitivity: 10,

		SmileWeight:    0.4,
		BrowWeight:     0.3,
		OpennessWeight: 0.3,

		EnthusiasticSmile: 0.7,
		EnthusiasticBrow:  0.5,
		FriendlySmile:     0.5,
		EngagedBrow:       0.6,
		NeutralSmile:      0.2,
		NeutralBrow:       0.2,
	}
}

// RevisedPreset is the alternate calibration found in a later script variant.
func RevisedPreset() Preset {
	p := ClassicPreset()
	p.Name = "revised"
	p.SmileBaseline = 1.3
	p.SmileScale = 1.5
	p.BrowSensitivity = 8
	p.SmileWeight = 0.3
	p.BrowWeight = 0.4
	p.OpennessWeight = 0.3
	return p
}

// PresetByName resolves a preset name, defaulting to classic.
func PresetByName(name string) Preset {
	if name == "revised" {
		return RevisedPreset()
	}
	return ClassicPreset()
}

// Analysis is the per-frame expression output.
type Analysis struct {
	Smile       float64 `json:"smile"`      // [0,1]
	Engagement  float64 `json:"engagement"` // [0,1], eyebrow-driven
	EyeOpenness float64 `json:"eyeOpenness"`
	Confidence  float64 `json:"confidence"` // [0,1] weighted blend
	Mood        Mood    `json:"mood"`
	Naturalness float64 `json:"naturalness"` // [0,1], distance from a frozen face
}

// Analyzer scores expressions under one preset.
type Analyzer struct {
	preset Preset
}

// NewAnalyzer creates an analyzer with the given preset.
func NewAnalyzer(preset Preset) *Analyzer {
	return &Analyzer{preset: preset}
}

// Analyze derives the expression signals for one frame. Missing mouth or brow
// landmarks degrade the corresponding scores to 0 rather than failing.
func (a *Analyzer) Analyze(s landmarks.Set) Analysis {
	smile := a.smile(s)
	brow := a.brow(s)
	openness := landmarks.EyeOpenness(s)

	confidence := smile*a.preset.SmileWeight +
		brow*a.preset.BrowWeight +
		openness*a.preset.OpennessWeight

	return Analysis{
		Smile:       smile,
		Engagement:  brow,
		EyeOpenness: openness,
		Confidence:  clamp01(confidence),
		Mood:        a.mood(smile, brow),
		Naturalness: clamp01((smile + brow) / 2),
	}
}

func (a *Analyzer) smile(s landmarks.Set) float64 {
	ratio, ok := landmarks.MouthRatio(s)
	if !ok {
		return 0
	}
	return clamp01((ratio - a.preset.SmileBaseline) * a.preset.SmileScale)
}

func (a *Analyzer) brow(s landmarks.Set) float64 {
	dist, ok := landmarks.BrowEyeDistance(s)
	if !ok {
		return 0
	}
	return clamp01(dist * a.preset.BrowSensitivity)
}

// mood walks the fixed decision table in order; first match wins.
func (a *Analyzer) mood(smile, brow float64) Mood {
	p := a.preset
	switch {
	case smile > p.EnthusiasticSmile && brow > p.EnthusiasticBrow:
		return MoodEnthusiastic
	case smile > p.FriendlySmile:
		return MoodFriendly
	case brow > p.EngagedBrow:
		return MoodEngaged
	case smile < p.NeutralSmile && brow < p.NeutralBrow:
		return MoodNeutral
	}
	return MoodFocused
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(0, math.Min(1, v))
}
