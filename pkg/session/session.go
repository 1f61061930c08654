// Package session accumulates per-frame and per-utterance signals over one
// practice run and persists the finalized history.
package session

import (
	"time"

	"github.com/speakcoach/go-speakcoach/pkg/expression"
	"github.com/speakcoach/go-speakcoach/pkg/gaze"
	"github.com/speakcoach/go-speakcoach/pkg/speech"
)

// State is the aggregator lifecycle position.
type State int

const (
	Idle State = iota
	Active
	Finalized
)

func (s State) String() string {
	switch s {
	case Active:
		return "active"
	case Finalized:
		return "finalized"
	}
	return "idle"
}

// FrameRecord is the per-frame signal bundle routed into the active session.
type FrameRecord struct {
	Timestamp     time.Time       `json:"timestamp"`
	EyeContact    float64         `json:"eyeContact"` // [0,100]
	GazeZone      gaze.Zone       `json:"gazeZone"`
	GazeVariation float64         `json:"gazeVariation"`
	Emotion       expression.Mood `json:"emotion"`
	Confidence    float64         `json:"confidence"`
	Naturalness   float64         `json:"naturalness"`
}

// Session is one bounded practice run.
type Session struct {
	ID           string          `json:"id"`
	StartTime    time.Time       `json:"startTime"`
	EndTime      time.Time       `json:"endTime"`
	Duration     time.Duration   `json:"duration"` // planned length
	Frames       []FrameRecord   `json:"frames"`
	FillerEvents []speech.Event  `json:"fillerEvents"`
	Speech       speech.Stats    `json:"speech"`
	FinalScore   float64         `json:"finalScore"`
	Summary      *Summary        `json:"summary,omitempty"`
}

// Summary is computed once at session end.
type Summary struct {
	AvgEyeContact    float64            `json:"avgEyeContact"`
	BestStreak       int                `json:"bestStreak"`
	Consistency      float64            `json:"consistency"`
	DominantGazeZone gaze.Zone          `json:"dominantGazeZone"`
	DominantEmotion  expression.Mood    `json:"dominantEmotion"`
	ZoneShares       map[string]float64 `json:"zoneShares"`
	StaticTime       time.Duration      `json:"staticTime"`
	WordsPerMinute   int                `json:"wordsPerMinute"`
	FillerRatio      float64            `json:"fillerRatio"`
	OverallScore     float64            `json:"overallScore"` // good frames / total * 100
	Improvements     []string           `json:"improvements"`
}
