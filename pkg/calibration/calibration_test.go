package calibration

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/speakcoach/go-speakcoach/pkg/landmarks"
	"github.com/speakcoach/go-speakcoach/pkg/storage"
)

// calibrationSet builds a landmark set with a measurable left eye so both the
// offset sampling and the center-gaze ratios produce real values.
func calibrationSet() landmarks.Set {
	s := make(landmarks.Set, 480)
	s[landmarks.LeftEyeInner] = landmarks.Point{X: 0.40, Y: 0.50}
	s[landmarks.LeftEyeOuter] = landmarks.Point{X: 0.50, Y: 0.50}
	s[landmarks.LeftPupil] = landmarks.Point{X: 0.44, Y: 0.50}
	s[landmarks.RightEyeInner] = landmarks.Point{X: 0.60, Y: 0.50}
	s[landmarks.RightEyeOuter] = landmarks.Point{X: 0.70, Y: 0.50}
	s[landmarks.RightPupil] = landmarks.Point{X: 0.64, Y: 0.50}
	s[landmarks.NoseTip] = landmarks.Point{X: 0.55, Y: 0.60}
	return s
}

func runFullSequence(t *testing.T, m *Manager) {
	t.Helper()
	m.Begin()
	frames := DefaultConfig().SamplesPerDirection * len(Sequence)
	done := false
	for i := 0; i < frames; i++ {
		done = m.AddFrame(calibrationSet())
	}
	if !done {
		t.Fatal("Expected sequence to complete after full sample count")
	}
}

func TestFullSequenceProducesAllDirections(t *testing.T) {
	m := NewManager(DefaultConfig(), &storage.MemStore{})
	runFullSequence(t, m)

	if !m.IsCalibrated() {
		t.Fatal("Expected calibrated after full sequence")
	}
	p := m.Profile()
	if len(p.Offsets) != len(Sequence) {
		t.Fatalf("Expected %d direction offsets, got %d", len(Sequence), len(p.Offsets))
	}
	for _, dir := range Sequence {
		if _, ok := p.Offsets[dir]; !ok {
			t.Errorf("Missing offset for direction %q", dir)
		}
	}
}

func TestThresholdsDerivedFromCenterSamples(t *testing.T) {
	m := NewManager(DefaultConfig(), nil)
	runFullSequence(t, m)

	// Left eye: pupil 0.44 between 0.40 and 0.50 -> horizontal 0.4.
	th := m.Thresholds()
	if math.Abs(th.LeftMin-0.4*0.85) > 1e-9 {
		t.Errorf("Expected LeftMin 0.34, got %v", th.LeftMin)
	}
	if math.Abs(th.LeftMax-0.4*1.15) > 1e-9 {
		t.Errorf("Expected LeftMax 0.46, got %v", th.LeftMax)
	}
	if th.HeadOffset != DefaultConfig().HeadOffset {
		t.Errorf("Expected head offset %v, got %v", DefaultConfig().HeadOffset, th.HeadOffset)
	}
}

func TestCancelDiscardsPartialSamples(t *testing.T) {
	m := NewManager(DefaultConfig(), &storage.MemStore{})
	m.Begin()

	// Two full directions, then abort.
	for i := 0; i < 2*DefaultConfig().SamplesPerDirection; i++ {
		m.AddFrame(calibrationSet())
	}
	if dir, _ := m.CurrentDirection(); dir != Center {
		t.Fatalf("Expected to be sampling center after two directions, got %q", dir)
	}
	m.Cancel()

	if m.IsCalibrated() {
		t.Error("Expected not calibrated after cancel")
	}
	if m.IsCalibrating() {
		t.Error("Expected calibration inactive after cancel")
	}
	if m.AddFrame(calibrationSet()) {
		t.Error("Expected AddFrame to be a no-op after cancel")
	}
}

func TestUncalibratedFallsBackToDefaults(t *testing.T) {
	m := NewManager(DefaultConfig(), nil)
	if m.Thresholds() != DefaultThresholds() {
		t.Errorf("Expected default thresholds, got %+v", m.Thresholds())
	}
}

func TestProfileRoundTrip(t *testing.T) {
	store := &storage.MemStore{}
	m := NewManager(DefaultConfig(), store)
	runFullSequence(t, m)

	loaded := NewManager(DefaultConfig(), store)
	loaded.Load()
	if !loaded.IsCalibrated() {
		t.Fatal("Expected profile to load from store")
	}

	// Threshold floats must round-trip exactly.
	if loaded.Thresholds() != m.Thresholds() {
		t.Errorf("Thresholds changed across round-trip: %+v vs %+v", loaded.Thresholds(), m.Thresholds())
	}
	if len(loaded.Profile().Offsets) != len(m.Profile().Offsets) {
		t.Error("Offsets lost across round-trip")
	}
}

func TestLoadToleratesCorruptData(t *testing.T) {
	store := &storage.MemStore{}
	if err := store.Save([]byte("{not json")); err != nil {
		t.Fatal(err)
	}

	m := NewManager(DefaultConfig(), store)
	m.Load()
	if m.IsCalibrated() {
		t.Error("Expected corrupt data to leave manager uncalibrated")
	}
	if m.Thresholds() != DefaultThresholds() {
		t.Error("Expected default thresholds after corrupt load")
	}
}

func TestMissingLandmarksSkipSample(t *testing.T) {
	m := NewManager(DefaultConfig(), nil)
	m.Begin()

	if m.AddFrame(nil) {
		t.Error("Expected empty frame to complete nothing")
	}
	if dir, ok := m.CurrentDirection(); !ok || dir != Sequence[0] {
		t.Errorf("Expected to remain on first direction, got %q", dir)
	}
}

// The persisted form must stay a flat JSON object keyed by direction so the
// front end can read it directly.
func TestProfileSerializationShape(t *testing.T) {
	m := NewManager(DefaultConfig(), nil)
	runFullSequence(t, m)

	data, err := json.Marshal(m.Profile())
	if err != nil {
		t.Fatal(err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatal(err)
	}
	if _, ok := decoded["offsets"]; !ok {
		t.Error("Expected offsets key in persisted profile")
	}
	if _, ok := decoded["thresholds"]; !ok {
		t.Error("Expected thresholds key in persisted profile")
	}
}
