package eyecontact

import (
	"math"
	"testing"

	"github.com/speakcoach/go-speakcoach/pkg/calibration"
	"github.com/speakcoach/go-speakcoach/pkg/gaze"
	"github.com/speakcoach/go-speakcoach/pkg/landmarks"
)

// idealSet builds a frame with a centered head and aligned pupils.
func idealSet() landmarks.Set {
	s := make(landmarks.Set, 480)
	s[landmarks.LeftEyeOuter] = landmarks.Point{X: 0.45, Y: 0.48}
	s[landmarks.RightEyeOuter] = landmarks.Point{X: 0.55, Y: 0.48}
	s[landmarks.NoseTip] = landmarks.Point{X: 0.50, Y: 0.55}
	s[landmarks.LeftPupil] = landmarks.Point{X: 0.48}
	s[landmarks.RightPupil] = landmarks.Point{X: 0.58}
	s[landmarks.LeftEyeInner] = landmarks.Point{X: 0.42}
	s[landmarks.RightEyeInner] = landmarks.Point{X: 0.62}
	return s
}

func centeredSample() gaze.Sample {
	return gaze.Sample{Zone: gaze.ZoneCenter, Confidence: 1.0, Horizontal: 0.45, Vertical: 0.5}
}

func TestScore_IdealFrameIsPerfect(t *testing.T) {
	sc := NewScorer(DefaultConfig())
	score := sc.Score(idealSet(), centeredSample(), calibration.DefaultThresholds())

	if score.Total != 100 {
		t.Errorf("Expected total 100 for ideal frame, got %v", score.Total)
	}
	if !score.Good {
		t.Error("Expected ideal frame to count as good eye contact")
	}
}

func TestGazeScore_Tiers(t *testing.T) {
	sc := NewScorer(DefaultConfig())

	tests := []struct {
		name   string
		sample gaze.Sample
		want   float64
	}{
		{"exact center", gaze.Sample{Zone: gaze.ZoneCenter, Confidence: 1.0}, 100},
		{"compound center", gaze.Sample{Zone: "center-up", Confidence: 0.9}, 80},
		{"confident off-center", gaze.Sample{Zone: gaze.ZoneLeft, Confidence: 0.8}, 60},
		{"unconfident off-center", gaze.Sample{Zone: gaze.ZoneRight, Confidence: 0.5}, 50},
		{"floor", gaze.Sample{Zone: gaze.ZoneRight, Confidence: 0.1}, 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := sc.gazeScore(tt.sample); got != tt.want {
				t.Errorf("gazeScore = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestHeadScore_PenaltiesStack(t *testing.T) {
	sc := NewScorer(DefaultConfig())

	centered := landmarks.HeadPose{Centered: true}
	if got := sc.headScore(centered); got != 100 {
		t.Errorf("Expected 100 for centered head, got %v", got)
	}

	offCenter := landmarks.HeadPose{Centered: false}
	if got := sc.headScore(offCenter); got != 60 {
		t.Errorf("Expected 60 for off-center head, got %v", got)
	}

	tilted := landmarks.HeadPose{Centered: false, Tilt: 15}
	if got := sc.headScore(tilted); got != 40 {
		t.Errorf("Expected 40 for off-center tilted head, got %v", got)
	}

	// Heavy rotation can drive the raw score negative; it must floor at 0.
	rotated := landmarks.HeadPose{Centered: false, Tilt: 15, Rotation: 0.5}
	if got := sc.headScore(rotated); got != 0 {
		t.Errorf("Expected floor at 0 for heavy rotation, got %v", got)
	}
}

func TestAlignmentScore(t *testing.T) {
	sc := NewScorer(DefaultConfig())

	if got := sc.alignmentScore(landmarks.Alignment{Aligned: true}); got != 100 {
		t.Errorf("Expected 100 for aligned pupils, got %v", got)
	}
	if got := sc.alignmentScore(landmarks.Alignment{Disparity: 0.1}); got != 50 {
		t.Errorf("Expected 50 for disparity 0.1, got %v", got)
	}
	if got := sc.alignmentScore(landmarks.Alignment{Disparity: 1}); got != 0 {
		t.Errorf("Expected 0 for full disparity, got %v", got)
	}
}

func TestScore_CalibrationBandPenalty(t *testing.T) {
	sc := NewScorer(DefaultConfig())
	th := calibration.Thresholds{LeftMin: 0.34, LeftMax: 0.46, RightMin: 0.34, RightMax: 0.46}

	inBand := centeredSample()
	inBand.Horizontal = 0.40
	withBand := sc.Score(idealSet(), inBand, th)

	outOfBand := centeredSample()
	outOfBand.Horizontal = 0.60
	penalized := sc.Score(idealSet(), outOfBand, th)

	if math.Abs(penalized.Total-withBand.Total*0.8) > 1e-9 {
		t.Errorf("Expected out-of-band score %v, got %v", withBand.Total*0.8, penalized.Total)
	}
}

func TestScore_AlwaysInRange(t *testing.T) {
	sc := NewScorer(DefaultConfig())

	// Empty landmark set plus a hostile sample must still land in [0,100].
	hostile := gaze.Sample{Zone: gaze.ZoneDownLeft, Confidence: 0.1, Horizontal: 2.5}
	score := sc.Score(nil, hostile, calibration.DefaultThresholds())
	if score.Total < 0 || score.Total > 100 {
		t.Errorf("Score %v outside [0,100]", score.Total)
	}
	if math.IsNaN(score.Total) {
		t.Error("Score must never be NaN")
	}
}

func TestScore_GoodThresholdIsStrict(t *testing.T) {
	sc := NewScorer(DefaultConfig())

	// Off-center head on an otherwise ideal frame: 0.5*100 + 0.3*60 + 0.2*100 = 88.
	s := idealSet()
	s[landmarks.LeftEyeOuter] = landmarks.Point{X: 0.75, Y: 0.48}
	s[landmarks.RightEyeOuter] = landmarks.Point{X: 0.85, Y: 0.48}
	s[landmarks.LeftPupil] = landmarks.Point{X: 0.78}
	s[landmarks.RightPupil] = landmarks.Point{X: 0.88}

	score := sc.Score(s, centeredSample(), calibration.DefaultThresholds())
	if score.Total > 70 != score.Good {
		t.Errorf("Good flag %v disagrees with total %v against threshold 70", score.Good, score.Total)
	}
}
