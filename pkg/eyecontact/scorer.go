// Package eyecontact scores a single frame's eye contact from gaze zone,
// head position and pupil alignment.
package eyecontact

import (
	"math"

	"github.com/speakcoach/go-speakcoach/pkg/calibration"
	"github.com/speakcoach/go-speakcoach/pkg/gaze"
	"github.com/speakcoach/go-speakcoach/pkg/landmarks"
)

// Config holds the scoring weights and penalties.
type Config struct {
	// Component weights, summing to 1
	GazeWeight      float64
	HeadWeight      float64
	AlignmentWeight float64

	// Gaze component
	CenterScore      float64 // zone is exactly "center"
	NearCenterScore  float64 // zone contains "center"
	ConfidentScore   float64 // off-center but confident
	ConfidenceCutoff float64
	GazeFloor        float64

	// Head component
	OffCenterPenalty float64
	TiltLimit        float64 // degrees
	TiltPenalty      float64
	RotationLimit    float64
	RotationScale    float64

	// Alignment component
	DisparityScale float64

	// Calibration band miss multiplier. The penalty keys off the left band
	// only; the asymmetry is inherited behavior the scores are tuned around.
	CalibrationPenalty float64

	// GoodThreshold marks a frame as good eye contact (strictly above).
	GoodThreshold float64
}

// DefaultConfig returns the production scoring parameters.
func DefaultConfig() Config {
	return Config{
		GazeWeight:      0.5,
		HeadWeight:      0.3,
		AlignmentWeight: 0.2,

		CenterScore:      100,
		NearCenterScore:  80,
		ConfidentScore:   60,
		ConfidenceCutoff: 0.7,
		GazeFloor:        20,

		OffCenterPenalty: 40,
		TiltLimit:        10,
		TiltPenalty:      20,
		RotationLimit:    0.1,
		RotationScale:    100,

		DisparityScale: 500,

		CalibrationPenalty: 0.8,
		GoodThreshold:      70,
	}
}

// Score is the per-frame scoring breakdown.
type Score struct {
	Total     float64 `json:"total"` // [0,100]
	Gaze      float64 `json:"gaze"`
	Head      float64 `json:"head"`
	Alignment float64 `json:"alignment"`
	Good      bool    `json:"good"`
}

// Scorer computes eye-contact scores for classified frames.
type Scorer struct {
	cfg Config
}

// NewScorer creates a scorer with the given configuration.
func NewScorer(cfg Config) *Scorer {
	return &Scorer{cfg: cfg}
}

// Score combines the gaze sample with head pose and pupil alignment from the
// frame's landmarks, applying the calibration band penalty. The total is
// always clamped to [0,100] regardless of input.
func (sc *Scorer) Score(s landmarks.Set, sample gaze.Sample, th calibration.Thresholds) Score {
	gazeScore := sc.gazeScore(sample)
	headScore := sc.headScore(landmarks.Head(s))
	alignScore := sc.alignmentScore(landmarks.PupilAlignment(s))

	total := gazeScore*sc.cfg.GazeWeight +
		headScore*sc.cfg.HeadWeight +
		alignScore*sc.cfg.AlignmentWeight

	if sample.Horizontal < th.LeftMin || sample.Horizontal > th.LeftMax {
		total *= sc.cfg.CalibrationPenalty
	}

	total = clamp(total, 0, 100)
	return Score{
		Total:     total,
		Gaze:      gazeScore,
		Head:      headScore,
		Alignment: alignScore,
		Good:      total > sc.cfg.GoodThreshold,
	}
}

func (sc *Scorer) gazeScore(sample gaze.Sample) float64 {
	switch {
	case sample.Zone == gaze.ZoneCenter:
		return sc.cfg.CenterScore
	case sample.Zone.Contains(string(gaze.ZoneCenter)):
		return sc.cfg.NearCenterScore
	case sample.Confidence > sc.cfg.ConfidenceCutoff:
		return sc.cfg.ConfidentScore
	}
	return math.Max(sc.cfg.GazeFloor, sample.Confidence*100)
}

func (sc *Scorer) headScore(pose landmarks.HeadPose) float64 {
	score := 100.0
	if !pose.Centered {
		score -= sc.cfg.OffCenterPenalty
	}
	if math.Abs(pose.Tilt) > sc.cfg.TiltLimit {
		score -= sc.cfg.TiltPenalty
	}
	if math.Abs(pose.Rotation) > sc.cfg.RotationLimit {
		// Can push the score negative before the floor clamp.
		score -= math.Abs(pose.Rotation) * sc.cfg.RotationScale
	}
	return math.Max(0, score)
}

func (sc *Scorer) alignmentScore(a landmarks.Alignment) float64 {
	if a.Aligned {
		return 100
	}
	return math.Max(0, 100-a.Disparity*sc.cfg.DisparityScale)
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return math.Max(lo, math.Min(hi, v))
}
