// Package calibration records per-user gaze baselines and derives the
// thresholds the eye-contact scorer applies.
//
// A calibration run walks five fixed directions. For each direction the
// manager collects a fixed number of eye-offset samples (eye-region mean
// minus nose-bridge mean) from incoming frames, then averages them into the
// profile. Center-direction frames additionally feed the per-eye gaze ratios
// the threshold band is derived from. Cancelling discards everything
// collected so far and leaves the previously active profile untouched.
package calibration

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/speakcoach/go-speakcoach/internal/log"
	"github.com/speakcoach/go-speakcoach/pkg/landmarks"
	"github.com/speakcoach/go-speakcoach/pkg/storage"
)

// Direction is one of the five fixed calibration targets.
type Direction string

const (
	Left   Direction = "left"
	Right  Direction = "right"
	Center Direction = "center"
	Up     Direction = "up"
	Down   Direction = "down"
)

// Sequence is the order directions are calibrated in.
var Sequence = []Direction{Left, Right, Center, Up, Down}

// Offset is an averaged eye-minus-nose displacement for one direction.
type Offset struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Thresholds are the calibrated gaze bands consumed by the scorer.
type Thresholds struct {
	LeftMin    float64 `json:"leftMin"`
	LeftMax    float64 `json:"leftMax"`
	RightMin   float64 `json:"rightMin"`
	RightMax   float64 `json:"rightMax"`
	HeadOffset float64 `json:"headOffset"`
}

// DefaultThresholds returns the fixed bands used when no calibration exists.
func DefaultThresholds() Thresholds {
	return Thresholds{
		LeftMin:    0.25,
		LeftMax:    0.55,
		RightMin:   0.25,
		RightMax:   0.55,
		HeadOffset: 0.2,
	}
}

// Profile is the persisted per-user calibration result.
type Profile struct {
	Offsets    map[Direction]Offset `json:"offsets"`
	Thresholds Thresholds           `json:"thresholds"`
	CreatedAt  time.Time            `json:"createdAt"`
}

// Config holds the calibration tunables.
type Config struct {
	SamplesPerDirection int
	BandLow             float64 // lower threshold band multiplier
	BandHigh            float64 // upper threshold band multiplier
	HeadOffset          float64 // head offset written into calibrated thresholds
}

// DefaultConfig returns the production calibration parameters.
func DefaultConfig() Config {
	return Config{
		SamplesPerDirection: 15,
		BandLow:             0.85,
		BandHigh:            1.15,
		HeadOffset:          0.15,
	}
}

// gazePair keeps the per-eye horizontal ratios of one center-direction frame.
type gazePair struct {
	left, right float64
}

// Manager runs calibration sequences and owns the active profile.
type Manager struct {
	cfg   Config
	store storage.Store

	profile *Profile

	calibrating bool
	step        int
	samples     map[Direction][]Offset
	centerGaze  []gazePair
}

// NewManager creates a manager persisting through the given store.
// A nil store disables persistence.
func NewManager(cfg Config, store storage.Store) *Manager {
	return &Manager{cfg: cfg, store: store}
}

// IsCalibrated reports whether a complete profile is active.
func (m *Manager) IsCalibrated() bool {
	return m.profile != nil
}

// IsCalibrating reports whether a sequence is in progress.
func (m *Manager) IsCalibrating() bool {
	return m.calibrating
}

// Profile returns the active profile, or nil when uncalibrated.
func (m *Manager) Profile() *Profile {
	return m.profile
}

// Thresholds returns the calibrated bands, falling back to the defaults.
func (m *Manager) Thresholds() Thresholds {
	if m.profile == nil {
		return DefaultThresholds()
	}
	return m.profile.Thresholds
}

// Begin starts a new calibration sequence, discarding any in-progress one.
func (m *Manager) Begin() {
	m.calibrating = true
	m.step = 0
	m.samples = make(map[Direction][]Offset, len(Sequence))
	m.centerGaze = nil
}

// CurrentDirection returns the direction being sampled.
// Returns ("", false) when no sequence is active.
func (m *Manager) CurrentDirection() (Direction, bool) {
	if !m.calibrating || m.step >= len(Sequence) {
		return "", false
	}
	return Sequence[m.step], true
}

// AddFrame feeds one landmark set into the active step. Frames without the
// required regions are skipped. When the final step fills up, the profile is
// computed, persisted and activated; AddFrame reports whether the whole
// sequence completed on this frame.
func (m *Manager) AddFrame(s landmarks.Set) bool {
	dir, ok := m.CurrentDirection()
	if !ok {
		return false
	}

	eye, okE := s.MeanOf(landmarks.LeftEyeRing...)
	nose, okN := s.MeanOf(landmarks.NoseBridge...)
	if !okE || !okN {
		return false
	}

	m.samples[dir] = append(m.samples[dir], Offset{X: eye.X - nose.X, Y: eye.Y - nose.Y})
	if dir == Center {
		m.centerGaze = append(m.centerGaze, gazePair{
			left:  landmarks.EyeGaze(s, landmarks.LeftEye).Horizontal,
			right: landmarks.EyeGaze(s, landmarks.RightEye).Horizontal,
		})
	}

	if len(m.samples[dir]) >= m.cfg.SamplesPerDirection {
		m.step++
		if m.step >= len(Sequence) {
			m.finish()
			return true
		}
	}
	return false
}

// Cancel aborts the sequence and discards partial samples.
// The previously active profile, if any, stays in effect.
func (m *Manager) Cancel() {
	m.calibrating = false
	m.step = 0
	m.samples = nil
	m.centerGaze = nil
}

func (m *Manager) finish() {
	offsets := make(map[Direction]Offset, len(Sequence))
	for dir, samples := range m.samples {
		var sum Offset
		for _, s := range samples {
			sum.X += s.X
			sum.Y += s.Y
		}
		n := float64(len(samples))
		offsets[dir] = Offset{X: sum.X / n, Y: sum.Y / n}
	}

	m.profile = &Profile{
		Offsets:    offsets,
		Thresholds: m.deriveThresholds(),
		CreatedAt:  time.Now(),
	}
	m.calibrating = false
	m.samples = nil
	m.centerGaze = nil

	if err := m.save(); err != nil {
		log.Warn("calibration profile not persisted", "error", err)
	}
}

// deriveThresholds builds the gaze band from the center-direction samples.
// With no usable center samples the defaults are kept.
func (m *Manager) deriveThresholds() Thresholds {
	if len(m.centerGaze) == 0 {
		return DefaultThresholds()
	}

	var leftSum, rightSum float64
	for _, g := range m.centerGaze {
		leftSum += g.left
		rightSum += g.right
	}
	n := float64(len(m.centerGaze))
	avgLeft := leftSum / n
	avgRight := rightSum / n

	return Thresholds{
		LeftMin:    avgLeft * m.cfg.BandLow,
		LeftMax:    avgLeft * m.cfg.BandHigh,
		RightMin:   avgRight * m.cfg.BandLow,
		RightMax:   avgRight * m.cfg.BandHigh,
		HeadOffset: m.cfg.HeadOffset,
	}
}

func (m *Manager) save() error {
	if m.store == nil || m.profile == nil {
		return nil
	}
	data, err := json.Marshal(m.profile)
	if err != nil {
		return fmt.Errorf("encode profile: %w", err)
	}
	return m.store.Save(data)
}

// Load restores a persisted profile. Absent or corrupt data leaves the
// manager uncalibrated without error.
func (m *Manager) Load() {
	if m.store == nil {
		return
	}
	data, err := m.store.Load()
	if err != nil {
		log.Warn("calibration profile not loaded", "error", err)
		return
	}
	if len(data) == 0 {
		return
	}

	var p Profile
	if err := json.Unmarshal(data, &p); err != nil {
		log.Warn("calibration profile corrupt, using defaults", "error", err)
		return
	}
	m.profile = &p
}
