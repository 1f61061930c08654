// Package speech counts filler words and hesitations in recognized
// transcript segments.
//
// Only finalized segments are authoritative: they update the counters.
// Interim segments may be scanned for early hints but never count. Live
// feedback events are throttled by a per-word cooldown; the cooldown affects
// emission only, never the counters.
package speech

import (
	"regexp"
	"strings"
	"time"
)

// Config holds the detector tunables.
type Config struct {
	Lexicon        []string
	MaxFragmentLen int           // tokens at most this long count as hesitation fragments
	Cooldown       time.Duration // live-event throttle per word
}

// DefaultConfig returns the production detector parameters.
// The cooldown default is 2000ms (the shipped code value; a stale comment in
// the source claimed 3000ms).
func DefaultConfig() Config {
	return Config{
		Lexicon:        DefaultLexicon(),
		MaxFragmentLen: 2,
		Cooldown:       2 * time.Second,
	}
}

// Stats are the authoritative accumulators. Filler and hesitation counts are
// independent: a token may increment both.
type Stats struct {
	TotalWords      int `json:"totalWords"`
	FillerCount     int `json:"fillerCount"`
	HesitationCount int `json:"hesitationCount"`
}

// Event is a live filler detection that survived the cooldown.
type Event struct {
	Word       string        `json:"word"`
	Elapsed    time.Duration `json:"elapsed"`
	Timestamp  time.Time     `json:"timestamp"`
	Confidence float64       `json:"confidence"`
}

// Segment is one finalized transcript fragment, kept for the session report.
type Segment struct {
	Time        time.Time `json:"time"`
	Text        string    `json:"text"`
	Hesitations int       `json:"hesitations"` // cumulative up to this segment
}

var interjectionRe = regexp.MustCompile(`\b(um|ah|eh|uhm)\b`)

// Detector accumulates speech statistics over one session.
type Detector struct {
	cfg     Config
	singles map[string]struct{}
	phrases []*regexp.Regexp
	names   []string // phrase text, parallel to phrases

	stats      Stats
	transcript []Segment
	cumulative int

	started  bool
	start    time.Time
	lastEmit map[string]time.Time
}

// NewDetector creates a detector with the given configuration.
func NewDetector(cfg Config) *Detector {
	d := &Detector{
		cfg:      cfg,
		singles:  make(map[string]struct{}),
		lastEmit: make(map[string]time.Time),
	}
	for _, entry := range cfg.Lexicon {
		if strings.Contains(entry, " ") {
			d.phrases = append(d.phrases, regexp.MustCompile(`\b`+regexp.QuoteMeta(entry)+`\b`))
			d.names = append(d.names, entry)
		} else {
			d.singles[entry] = struct{}{}
		}
	}
	return d
}

// Start marks the beginning of a session and resets all accumulators.
func (d *Detector) Start(now time.Time) {
	d.stats = Stats{}
	d.transcript = nil
	d.cumulative = 0
	d.lastEmit = make(map[string]time.Time)
	d.start = now
	d.started = true
}

// Stats returns the authoritative counters.
func (d *Detector) Stats() Stats {
	return d.stats
}

// Transcript returns the finalized segments recorded so far.
func (d *Detector) Transcript() []Segment {
	return d.transcript
}

// Normalize lowercases a segment and collapses runs of repeated ASCII
// letters, which the recognizer produces on stutters ("sooo" -> "so").
// Normalizing already-normalized text is a no-op.
func Normalize(text string) string {
	lower := strings.ToLower(strings.TrimSpace(text))

	var b strings.Builder
	b.Grow(len(lower))
	var prev rune = -1
	for _, r := range lower {
		if r >= 'a' && r <= 'z' && r == prev {
			continue
		}
		b.WriteRune(r)
		prev = r
	}
	return b.String()
}

// ProcessFinal ingests one finalized segment: updates the counters, records
// the transcript entry, and returns the live events that survived the
// cooldown. Empty segments contribute nothing.
func (d *Detector) ProcessFinal(text string, now time.Time) []Event {
	normalized := Normalize(text)
	if normalized == "" {
		return nil
	}

	var hits []string
	segmentHesitations := 0

	for _, token := range strings.Fields(normalized) {
		d.stats.TotalWords++

		if _, ok := d.singles[token]; ok {
			d.stats.FillerCount++
			d.stats.HesitationCount++
			segmentHesitations++
			hits = append(hits, token)
		} else if len([]rune(token)) <= d.cfg.MaxFragmentLen && !strings.ContainsAny(token, "0123456789") {
			// Fragments already counted as fillers are not double-counted here.
			d.stats.HesitationCount++
			segmentHesitations++
		}

		// Interjection patterns overlap with the lexicon on purpose; the
		// hesitation counter is independent of the filler counter.
		if n := len(interjectionRe.FindAllString(token, -1)); n > 0 {
			d.stats.HesitationCount += n
			segmentHesitations += n
		}
	}

	for i, re := range d.phrases {
		n := len(re.FindAllString(normalized, -1))
		if n > 0 {
			d.stats.FillerCount += n
			d.stats.HesitationCount += n
			segmentHesitations += n
			hits = append(hits, d.names[i])
		}
	}

	d.cumulative += segmentHesitations
	d.transcript = append(d.transcript, Segment{Time: now, Text: text, Hesitations: d.cumulative})

	return d.emit(hits, now)
}

// InterimHint scans a non-final segment and reports how many filler hits it
// would contain. It never touches the counters.
func (d *Detector) InterimHint(text string) int {
	normalized := Normalize(text)
	hints := 0
	for _, token := range strings.Fields(normalized) {
		if _, ok := d.singles[token]; ok {
			hints++
		}
	}
	for _, re := range d.phrases {
		hints += len(re.FindAllString(normalized, -1))
	}
	return hints
}

// emit applies the per-word cooldown to the live-feedback stream.
func (d *Detector) emit(hits []string, now time.Time) []Event {
	var events []Event
	for _, word := range hits {
		if last, ok := d.lastEmit[word]; ok && now.Sub(last) < d.cfg.Cooldown {
			continue
		}
		d.lastEmit[word] = now

		var elapsed time.Duration
		if d.started {
			elapsed = now.Sub(d.start)
		}
		events = append(events, Event{
			Word:       word,
			Elapsed:    elapsed,
			Timestamp:  now,
			Confidence: 1.0,
		})
	}
	return events
}
