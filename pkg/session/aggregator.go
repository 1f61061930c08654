package session

import (
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/speakcoach/go-speakcoach/internal/log"
	"github.com/speakcoach/go-speakcoach/pkg/expression"
	"github.com/speakcoach/go-speakcoach/pkg/gaze"
	"github.com/speakcoach/go-speakcoach/pkg/speech"
)

// Improvement suggestion messages, selected by fixed rule thresholds.
const (
	ImproveEyeContact  = "Hold eye contact with the camera more often."
	ImproveMoveGaze    = "Move your gaze more often instead of fixing one spot."
	ImproveBalanceGaze = "Balance your gaze toward the right side as well."
	ImproveFillers     = "Cut down on filler words; try a silent pause instead."
)

// Config holds the aggregation thresholds.
type Config struct {
	FrameCap int // active-session frame buffer bound, oldest truncated

	GoodThreshold   float64 // strictly above counts as good eye contact
	LowContactScore float64 // strictly below counts as a weak frame

	// Improvement rules
	LowContactRatio float64
	StaticLimit     time.Duration
	LeftBiasLimit   float64
	FillerLimit     int

	ConsistencySpread float64 // stddev that zeroes consistency
}

// DefaultConfig returns the production aggregation parameters.
func DefaultConfig() Config {
	return Config{
		FrameCap: 1000,

		GoodThreshold:   70,
		LowContactScore: 50,

		LowContactRatio: 0.3,
		StaticLimit:     10 * time.Second,
		LeftBiasLimit:   0.6,
		FillerLimit:     5,

		ConsistencySpread: 50,
	}
}

// Aggregator routes frame and filler signals into the single active session
// and finalizes it into the persisted history.
type Aggregator struct {
	cfg     Config
	history HistoryStore

	state   State
	current *Session

	goodFrames  int
	totalFrames int
}

// NewAggregator creates an aggregator persisting through the given history
// store. A nil store keeps history in memory only for the process lifetime.
func NewAggregator(cfg Config, history HistoryStore) *Aggregator {
	return &Aggregator{cfg: cfg, history: history}
}

// State returns the lifecycle position.
func (a *Aggregator) State() State {
	return a.state
}

// Current returns the active session, or nil.
func (a *Aggregator) Current() *Session {
	if a.state != Active {
		return nil
	}
	return a.current
}

// Start opens a new session. Starting while one is active finalizes the
// previous session first so its accumulators are never orphaned.
func (a *Aggregator) Start(planned time.Duration, now time.Time) *Session {
	if a.state == Active {
		log.Warn("session started while active, finalizing previous", "id", a.current.ID)
		a.End(speech.Stats{}, now)
	}

	a.current = &Session{
		ID:        uuid.NewString(),
		StartTime: now,
		Duration:  planned,
	}
	a.state = Active
	a.goodFrames = 0
	a.totalFrames = 0
	return a.current
}

// AddFrame appends one frame record. No-op unless a session is active.
func (a *Aggregator) AddFrame(rec FrameRecord) {
	if a.state != Active {
		return
	}

	a.totalFrames++
	if rec.EyeContact > a.cfg.GoodThreshold {
		a.goodFrames++
	}

	a.current.Frames = append(a.current.Frames, rec)
	if len(a.current.Frames) > a.cfg.FrameCap {
		a.current.Frames = a.current.Frames[len(a.current.Frames)-a.cfg.FrameCap:]
	}
}

// AddFillerEvents appends live filler events. No-op unless a session is active.
func (a *Aggregator) AddFillerEvents(events []speech.Event) {
	if a.state != Active || len(events) == 0 {
		return
	}
	a.current.FillerEvents = append(a.current.FillerEvents, events...)
}

// OverallScore is the running share of good frames, in [0,100].
func (a *Aggregator) OverallScore() float64 {
	if a.totalFrames == 0 {
		return 0
	}
	return float64(a.goodFrames) / float64(a.totalFrames) * 100
}

// End finalizes the active session: computes the summary, stamps the final
// score, appends to history and returns the finalized session. Ending an
// empty session yields a zero-valued summary, never an error. Returns nil
// when no session is active.
func (a *Aggregator) End(stats speech.Stats, now time.Time) *Session {
	if a.state != Active {
		return nil
	}

	s := a.current
	s.EndTime = now
	s.Speech = stats
	s.FinalScore = a.OverallScore()
	s.Summary = a.summarize(s)

	a.state = Finalized
	a.current = nil

	if a.history != nil {
		if err := a.history.Append(*s); err != nil {
			log.Warn("session history not persisted", "id", s.ID, "error", err)
		}
	}
	return s
}

// History returns the most recent limit sessions, newest last.
func (a *Aggregator) History(limit int) ([]Session, error) {
	if a.history == nil {
		return nil, nil
	}
	return a.history.Recent(limit)
}

func (a *Aggregator) summarize(s *Session) *Summary {
	summary := &Summary{
		ZoneShares:   map[string]float64{},
		OverallScore: s.FinalScore,
		Improvements: []string{},
	}

	elapsed := s.EndTime.Sub(s.StartTime)
	if minutes := elapsed.Minutes(); minutes > 0 {
		summary.WordsPerMinute = int(math.Round(float64(s.Speech.TotalWords) / minutes))
	}
	if s.Speech.TotalWords > 0 {
		summary.FillerRatio = float64(s.Speech.FillerCount) / float64(s.Speech.TotalWords)
	}

	if len(s.Frames) == 0 {
		if s.Speech.FillerCount > a.cfg.FillerLimit {
			summary.Improvements = append(summary.Improvements, ImproveFillers)
		}
		return summary
	}

	var sum float64
	streak, best := 0, 0
	lowContact := 0
	for _, f := range s.Frames {
		sum += f.EyeContact
		if f.EyeContact > a.cfg.GoodThreshold {
			streak++
			if streak > best {
				best = streak
			}
		} else {
			streak = 0
		}
		if f.EyeContact < a.cfg.LowContactScore {
			lowContact++
		}
	}
	n := float64(len(s.Frames))
	summary.AvgEyeContact = sum / n
	summary.BestStreak = best

	if len(s.Frames) >= 2 {
		var variance float64
		for _, f := range s.Frames {
			d := f.EyeContact - summary.AvgEyeContact
			variance += d * d
		}
		stdDev := math.Sqrt(variance / n)
		summary.Consistency = math.Max(0, 1-stdDev/a.cfg.ConsistencySpread)
	}

	summary.DominantGazeZone = gaze.Zone(dominantKey(s.Frames, func(f FrameRecord) string { return string(f.GazeZone) }))
	summary.DominantEmotion = dominantMood(s.Frames)

	patterns := analyzeGazePatterns(s.Frames)
	summary.ZoneShares = patterns.shares
	summary.StaticTime = patterns.staticTime

	if float64(lowContact)/n > a.cfg.LowContactRatio {
		summary.Improvements = append(summary.Improvements, ImproveEyeContact)
	}
	if patterns.staticTime > a.cfg.StaticLimit {
		summary.Improvements = append(summary.Improvements, ImproveMoveGaze)
	}
	if patterns.shares["left"] > a.cfg.LeftBiasLimit {
		summary.Improvements = append(summary.Improvements, ImproveBalanceGaze)
	}
	if s.Speech.FillerCount > a.cfg.FillerLimit {
		summary.Improvements = append(summary.Improvements, ImproveFillers)
	}
	return summary
}

type gazePatterns struct {
	shares     map[string]float64
	staticTime time.Duration
}

// analyzeGazePatterns computes substring-based zone shares and the total time
// spent without changing zones.
func analyzeGazePatterns(frames []FrameRecord) gazePatterns {
	p := gazePatterns{shares: make(map[string]float64, 5)}

	counts := map[string]int{}
	var lastZone gaze.Zone
	for i, f := range frames {
		for _, part := range []string{"left", "right", "center", "up", "down"} {
			if f.GazeZone.Contains(part) {
				counts[part]++
			}
		}
		if i > 0 && f.GazeZone == lastZone {
			p.staticTime += f.Timestamp.Sub(frames[i-1].Timestamp)
		}
		lastZone = f.GazeZone
	}

	n := float64(len(frames))
	for part, c := range counts {
		p.shares[part] = float64(c) / n
	}
	return p
}

// dominantKey returns the most frequent key; ties keep the first-encountered
// key, which is implementation-defined behavior, not a stability guarantee.
func dominantKey(frames []FrameRecord, key func(FrameRecord) string) string {
	counts := map[string]int{}
	var order []string
	for _, f := range frames {
		k := key(f)
		if _, seen := counts[k]; !seen {
			order = append(order, k)
		}
		counts[k]++
	}

	bestKey, bestCount := "", -1
	for _, k := range order {
		if counts[k] > bestCount {
			bestKey, bestCount = k, counts[k]
		}
	}
	return bestKey
}

func dominantMood(frames []FrameRecord) expression.Mood {
	return expression.Mood(dominantKey(frames, func(f FrameRecord) string { return string(f.Emotion) }))
}
