// Package gaze classifies normalized gaze ratios into discrete zones and
// tracks a bounded history of them for rhythm analytics.
package gaze

import (
	"math"
	"strings"
	"time"

	"github.com/speakcoach/go-speakcoach/pkg/landmarks"
)

// Zone is a discrete gaze bucket. Compound zones join the horizontal and
// vertical components ("center-up", "left-down"). Extreme vertical ratios
// map to ZoneUpLeft/ZoneDownLeft regardless of the horizontal component;
// downstream checks rely on substring matching, so this stays as-is.
type Zone string

const (
	ZoneCenter   Zone = "center"
	ZoneLeft     Zone = "left"
	ZoneRight    Zone = "right"
	ZoneUpLeft   Zone = "up-left"
	ZoneDownLeft Zone = "down-left"
)

// Contains reports whether the zone includes the given component.
func (z Zone) Contains(part string) bool {
	return strings.Contains(string(z), part)
}

// Sample is one classified gaze observation.
type Sample struct {
	Zone       Zone      `json:"zone"`
	Confidence float64   `json:"confidence"`
	Horizontal float64   `json:"horizontal"`
	Vertical   float64   `json:"vertical"`
	Timestamp  time.Time `json:"timestamp"`
}

// Recommendation is one of the four fixed gaze-rhythm messages.
type Recommendation string

const (
	RecommendTooStatic  Recommendation = "Gaze too static. Try looking around the room."
	RecommendTooErratic Recommendation = "Gaze changes too often. Try holding each spot for 3-5 seconds."
	RecommendLongDwell  Recommendation = "Gaze stuck in one zone too long. Move your focus."
	RecommendGoodRhythm Recommendation = "Good gaze rhythm. Keep going!"
)

// Analysis is the per-frame output consumed by the session aggregator.
type Analysis struct {
	Sample         Sample
	Variation      float64
	Dwell          time.Duration
	Recommendation Recommendation
}

// Classifier maps gaze ratios to zones and keeps the rolling history.
type Classifier struct {
	cfg     Config
	history []Sample
}

// NewClassifier creates a classifier with the given configuration.
func NewClassifier(cfg Config) *Classifier {
	return &Classifier{
		cfg:     cfg,
		history: make([]Sample, 0, cfg.HistorySize),
	}
}

// Classify maps a pair of normalized ratios to a zone and confidence.
// Confidence is highest near frame center, floored at 0.1.
func (c *Classifier) Classify(horizontal, vertical float64) (Zone, float64) {
	zone := ZoneCenter
	switch {
	case horizontal < c.cfg.LeftMax:
		zone = ZoneLeft
	case horizontal > c.cfg.RightMin:
		zone = ZoneRight
	}

	switch {
	case vertical < c.cfg.UpMax:
		if vertical < c.cfg.ExtremeUp {
			zone = ZoneUpLeft
		} else {
			zone += "-up"
		}
	case vertical > c.cfg.DownMin:
		if vertical > c.cfg.ExtremeDown {
			zone = ZoneDownLeft
		} else {
			zone += "-down"
		}
	}

	confidence := math.Max(0.1, 1-math.Abs(horizontal-0.5))
	return zone, confidence
}

// Observe classifies the averaged gaze of a landmark set and records it.
func (c *Classifier) Observe(s landmarks.Set, now time.Time) Sample {
	g := landmarks.AverageGaze(s)
	zone, confidence := c.Classify(g.Horizontal, g.Vertical)

	sample := Sample{
		Zone:       zone,
		Confidence: confidence,
		Horizontal: g.Horizontal,
		Vertical:   g.Vertical,
		Timestamp:  now,
	}
	c.push(sample)
	return sample
}

// Analyze observes a frame and returns the full per-frame analysis.
func (c *Classifier) Analyze(s landmarks.Set, now time.Time) Analysis {
	sample := c.Observe(s, now)
	variation := c.Variation()
	dwell := c.Dwell()
	return Analysis{
		Sample:         sample,
		Variation:      variation,
		Dwell:          dwell,
		Recommendation: c.recommend(variation, dwell),
	}
}

func (c *Classifier) push(s Sample) {
	c.history = append(c.history, s)
	if len(c.history) > c.cfg.HistorySize {
		c.history = c.history[1:]
	}
}

// History returns the rolling sample buffer, oldest first.
func (c *Classifier) History() []Sample {
	return c.history
}

// Reset clears the rolling history.
func (c *Classifier) Reset() {
	c.history = c.history[:0]
}

// Variation scores how varied recent gaze has been, in [0,1].
// Returns exactly 0 until MinSamples samples have been observed.
func (c *Classifier) Variation() float64 {
	if len(c.history) < c.cfg.MinSamples {
		return 0
	}

	window := c.history
	if len(window) > c.cfg.VariationWindow {
		window = window[len(window)-c.cfg.VariationWindow:]
	}

	distinct := make(map[Zone]struct{}, c.cfg.ZoneCount)
	changes := 0
	for i, s := range window {
		distinct[s.Zone] = struct{}{}
		if i > 0 && s.Zone != window[i-1].Zone {
			changes++
		}
	}

	zoneShare := float64(len(distinct)) / float64(c.cfg.ZoneCount)

	optimal := len(window) / c.cfg.OptimalChangeSpan
	if optimal < 1 {
		optimal = 1
	}
	changeShare := math.Min(1.0, float64(changes)/float64(optimal))

	return math.Min(1.0, zoneShare*c.cfg.ZoneWeight+changeShare*c.cfg.ChangeWeight)
}

// Dwell returns how long the gaze has stayed in the current zone, summing
// inter-sample deltas backward until the zone changes.
func (c *Classifier) Dwell() time.Duration {
	if len(c.history) < 2 {
		return 0
	}

	current := c.history[len(c.history)-1].Zone
	var dwell time.Duration
	for i := len(c.history) - 1; i >= 0; i-- {
		if c.history[i].Zone != current {
			break
		}
		if i > 0 {
			// The delta spanning the zone transition counts toward the dwell.
			dwell += c.history[i].Timestamp.Sub(c.history[i-1].Timestamp)
		}
	}
	return dwell
}

func (c *Classifier) recommend(variation float64, dwell time.Duration) Recommendation {
	switch {
	case variation < c.cfg.StaticBelow:
		return RecommendTooStatic
	case variation > c.cfg.ErraticAbove:
		return RecommendTooErratic
	case dwell > c.cfg.DwellLimit:
		return RecommendLongDwell
	}
	return RecommendGoodRhythm
}
