package gaze

import "time"

// Config holds the tunable parameters for zone classification and
// rolling-history analytics.
type Config struct {
	// Zone bounds on the horizontal axis (symmetric around 0.5)
	LeftMax  float64 // horizontal below this is "left"
	RightMin float64 // horizontal above this is "right"

	// Zone bounds on the vertical axis
	UpMax   float64 // vertical below this appends "-up"
	DownMin float64 // vertical above this appends "-down"

	// Extreme vertical bounds that collapse into the up-left/down-left zones
	ExtremeUp   float64
	ExtremeDown float64

	// History
	HistorySize     int // rolling buffer capacity, FIFO eviction
	VariationWindow int // samples considered for variation
	MinSamples      int // below this, variation is 0

	// Variation scoring
	ZoneCount         int     // distinct zones normalizer
	ZoneWeight        float64 // weight of distinct-zone share
	ChangeWeight      float64 // weight of change-rate share
	OptimalChangeSpan int     // one change per this many samples is "optimal"

	// Recommendation thresholds
	StaticBelow  float64
	ErraticAbove float64
	DwellLimit   time.Duration
}

// DefaultConfig returns the production thresholds.
func DefaultConfig() Config {
	return Config{
		LeftMax:  0.35,
		RightMin: 0.65,
		UpMax:    0.4,
		DownMin:  0.6,

		ExtremeUp:   0.2,
		ExtremeDown: 0.8,

		HistorySize:     100,
		VariationWindow: 20,
		MinSamples:      10,

		ZoneCount:         5,
		ZoneWeight:        0.7,
		ChangeWeight:      0.3,
		OptimalChangeSpan: 15,

		StaticBelow:  0.3,
		ErraticAbove: 0.8,
		DwellLimit:   10 * time.Second,
	}
}
