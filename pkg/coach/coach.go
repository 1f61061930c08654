// Package coach owns the live analysis pipeline: it routes incoming frames
// and utterances through the analyzers and into the active session.
package coach

import (
	"fmt"
	"sync"
	"time"

	"github.com/speakcoach/go-speakcoach/internal/log"
	"github.com/speakcoach/go-speakcoach/pkg/calibration"
	"github.com/speakcoach/go-speakcoach/pkg/expression"
	"github.com/speakcoach/go-speakcoach/pkg/eyecontact"
	"github.com/speakcoach/go-speakcoach/pkg/gaze"
	"github.com/speakcoach/go-speakcoach/pkg/landmarks"
	"github.com/speakcoach/go-speakcoach/pkg/session"
	"github.com/speakcoach/go-speakcoach/pkg/speech"
)

// Config holds the controller tunables.
type Config struct {
	MinTestDuration time.Duration
	MaxTestDuration time.Duration

	LowVariation  float64 // below: gaze too static
	HighVariation float64 // above: gaze too erratic
	SmilePrompt   float64 // below: prompt a smile

	SlowWPM float64
	FastWPM float64

	LowHesitationPct  float64
	HighHesitationPct float64

	GoodCenterShare float64
	FairCenterShare float64
}

// DefaultConfig returns the production controller parameters.
func DefaultConfig() Config {
	return Config{
		MinTestDuration: 30 * time.Second,
		MaxTestDuration: 25 * time.Minute,

		LowVariation:  0.3,
		HighVariation: 0.8,
		SmilePrompt:   0.2,

		SlowWPM: 80,
		FastWPM: 140,

		LowHesitationPct:  5,
		HighHesitationPct: 15,

		GoodCenterShare: 0.6,
		FairCenterShare: 0.4,
	}
}

// Notifier receives tone cues. Calls are fire-and-forget: the controller
// never waits on them and ignores their outcome.
type Notifier interface {
	// Countdown signals the run-up to a starting test.
	Countdown(seconds int)

	// TestOver signals that a test just finalized.
	TestOver()
}

// NopNotifier discards all cues.
type NopNotifier struct{}

func (NopNotifier) Countdown(int) {}
func (NopNotifier) TestOver()     {}

// Deps are the controller's collaborators. Clock and Notifier may be nil;
// they default to time.Now and a no-op notifier.
type Deps struct {
	Classifier  *gaze.Classifier
	Scorer      *eyecontact.Scorer
	Expression  *expression.Analyzer
	Detector    *speech.Detector
	Calibration *calibration.Manager
	Sessions    *session.Aggregator

	Notifier Notifier
	Clock    func() time.Time
}

// FrameResult is the per-frame output bundle for live consumers.
type FrameResult struct {
	EyeContact eyecontact.Score    `json:"eyeContact"`
	Gaze       gaze.Analysis       `json:"gaze"`
	Expression expression.Analysis `json:"expression"`
	Feedback   Feedback            `json:"feedback"`
	Remaining  time.Duration       `json:"remaining"`
}

// Status is the coarse service state for the status endpoint.
type Status struct {
	State        string  `json:"state"`
	Calibrating  bool    `json:"calibrating"`
	Calibrated   bool    `json:"calibrated"`
	OverallScore float64 `json:"overallScore"`
	RemainingSec int     `json:"remainingSec"`
}

// Controller serializes all signal ingestion behind one mutex. Frames and
// utterances arrive from independent websocket connections.
type Controller struct {
	cfg Config

	mu          sync.Mutex
	classifier  *gaze.Classifier
	scorer      *eyecontact.Scorer
	expr        *expression.Analyzer
	detector    *speech.Detector
	calibration *calibration.Manager
	sessions    *session.Aggregator

	notifier Notifier
	clock    func() time.Time

	testEnd time.Time
}

// NewController wires the analyzers into a controller.
func NewController(cfg Config, deps Deps) *Controller {
	if deps.Clock == nil {
		deps.Clock = time.Now
	}
	if deps.Notifier == nil {
		deps.Notifier = NopNotifier{}
	}
	return &Controller{
		cfg:         cfg,
		classifier:  deps.Classifier,
		scorer:      deps.Scorer,
		expr:        deps.Expression,
		detector:    deps.Detector,
		calibration: deps.Calibration,
		sessions:    deps.Sessions,
		notifier:    deps.Notifier,
		clock:       deps.Clock,
	}
}

// SetNotifier replaces the notifier. Meant for wiring, before signals flow;
// a nil notifier resets to the no-op.
func (c *Controller) SetNotifier(n Notifier) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if n == nil {
		n = NopNotifier{}
	}
	c.notifier = n
}

// StartTest opens a new test of the given planned duration. The duration
// must lie within the configured bounds.
func (c *Controller) StartTest(duration time.Duration) (*session.Session, error) {
	if duration < c.cfg.MinTestDuration || duration > c.cfg.MaxTestDuration {
		return nil, fmt.Errorf("test duration %v outside [%v, %v]",
			duration, c.cfg.MinTestDuration, c.cfg.MaxTestDuration)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.clock()

	// A restart finalizes the running test first, while the detector still
	// holds its speech accumulators.
	c.stopLocked(now)

	c.classifier.Reset()
	c.detector.Start(now)
	s := c.sessions.Start(duration, now)
	c.testEnd = now.Add(duration)

	go c.notifier.Countdown(3)
	log.Info("test started", "id", s.ID, "duration", duration)
	return s, nil
}

// StopTest finalizes the active test and returns the finalized session, or
// nil when none is active.
func (c *Controller) StopTest() *session.Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stopLocked(c.clock())
}

func (c *Controller) stopLocked(now time.Time) *session.Session {
	s := c.sessions.End(c.detector.Stats(), now)
	if s == nil {
		return nil
	}
	go c.notifier.TestOver()
	log.Info("test finalized", "id", s.ID, "score", s.FinalScore)
	return s
}

// OnFrame ingests one landmark frame. A nil set means no face was detected
// and is skipped. During calibration the frame feeds the calibration manager
// instead of the analyzers. The planned test duration is enforced here: a
// frame arriving past the deadline finalizes the test instead of counting.
func (c *Controller) OnFrame(s landmarks.Set) (FrameResult, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.clock()

	if c.calibration.IsCalibrating() {
		if s != nil {
			c.calibration.AddFrame(s)
		}
		return FrameResult{}, false
	}

	if c.sessions.State() != session.Active {
		return FrameResult{}, false
	}
	if !now.Before(c.testEnd) {
		c.stopLocked(now)
		return FrameResult{}, false
	}
	if s == nil {
		return FrameResult{}, false
	}

	analysis := c.classifier.Analyze(s, now)
	score := c.scorer.Score(s, analysis.Sample, c.calibration.Thresholds())
	face := c.expr.Analyze(s)

	c.sessions.AddFrame(session.FrameRecord{
		Timestamp:     now,
		EyeContact:    score.Total,
		GazeZone:      analysis.Sample.Zone,
		GazeVariation: analysis.Variation,
		Emotion:       face.Mood,
		Confidence:    face.Confidence,
		Naturalness:   face.Naturalness,
	})

	return FrameResult{
		EyeContact: score,
		Gaze:       analysis,
		Expression: face,
		Feedback:   c.liveFeedback(score.Total, analysis, face),
		Remaining:  c.testEnd.Sub(now),
	}, true
}

// OnUtterance ingests one recognized segment. Interim segments are scanned
// but never counted; finalized segments update the detector and the session,
// returning any live filler events that survived the cooldown.
func (c *Controller) OnUtterance(text string, isFinal bool) []speech.Event {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.sessions.State() != session.Active {
		return nil
	}
	if !isFinal {
		c.detector.InterimHint(text)
		return nil
	}

	events := c.detector.ProcessFinal(text, c.clock())
	c.sessions.AddFillerEvents(events)
	return events
}

// Status reports the coarse service state.
func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()

	st := Status{
		State:        c.sessions.State().String(),
		Calibrating:  c.calibration.IsCalibrating(),
		Calibrated:   c.calibration.IsCalibrated(),
		OverallScore: c.sessions.OverallScore(),
	}
	if c.sessions.State() == session.Active {
		if remaining := c.testEnd.Sub(c.clock()); remaining > 0 {
			st.RemainingSec = int(remaining.Seconds())
		}
	}
	return st
}

// History returns the most recent limit finalized sessions.
func (c *Controller) History(limit int) ([]session.Session, error) {
	return c.sessions.History(limit)
}

// Calibration exposes the calibration manager for the web layer.
func (c *Controller) Calibration() *calibration.Manager {
	return c.calibration
}
