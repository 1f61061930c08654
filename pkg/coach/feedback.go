package coach

import (
	"fmt"

	"github.com/speakcoach/go-speakcoach/pkg/expression"
	"github.com/speakcoach/go-speakcoach/pkg/gaze"
	"github.com/speakcoach/go-speakcoach/pkg/session"
	"github.com/speakcoach/go-speakcoach/pkg/speech"
)

// Level classifies a feedback message for the UI.
type Level string

const (
	LevelWarning Level = "warning"
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
)

// Feedback is one coaching message. During a test only the highest-priority
// candidate is shown; the report lists one message per category.
type Feedback struct {
	Level    Level  `json:"level"`
	Message  string `json:"message"`
	Priority int    `json:"priority"`
}

// liveFeedback picks the single message to show for this frame. Candidates
// are ranked by priority; ties keep the earlier rule, so eye contact wins
// over expression prompts.
func (c *Controller) liveFeedback(score float64, g gaze.Analysis, e expression.Analysis) Feedback {
	var candidates []Feedback

	switch {
	case score < 30:
		candidates = append(candidates, Feedback{
			Level: LevelWarning, Priority: 3,
			Message: "Too little eye contact. Look straight into the camera.",
		})
	case score < 50:
		candidates = append(candidates, Feedback{
			Level: LevelInfo, Priority: 2,
			Message: "Eye contact could be better. Focus on the camera center.",
		})
	case score > 80:
		candidates = append(candidates, Feedback{
			Level: LevelSuccess, Priority: 1,
			Message: "Excellent eye contact!",
		})
	}

	switch {
	case g.Variation < c.cfg.LowVariation:
		candidates = append(candidates, Feedback{
			Level: LevelWarning, Priority: 2,
			Message: "Gaze too static. Look around the room.",
		})
	case g.Variation > c.cfg.HighVariation:
		candidates = append(candidates, Feedback{
			Level: LevelInfo, Priority: 2,
			Message: "Gaze changes too often. Try slowing down.",
		})
	}

	if e.Smile < c.cfg.SmilePrompt {
		candidates = append(candidates, Feedback{
			Level: LevelInfo, Priority: 1,
			Message: "Try smiling, it adds energy to your delivery.",
		})
	}

	if len(candidates) == 0 {
		return Feedback{Level: LevelSuccess, Message: "Everything looks good. Keep going!"}
	}

	best := candidates[0]
	for _, cand := range candidates[1:] {
		if cand.Priority > best.Priority {
			best = cand
		}
	}
	return best
}

// ReportFeedback builds the post-test coaching messages from a finalized
// session: speaking tempo, hesitation ratio and center-gaze share, one
// message each.
func (c *Controller) ReportFeedback(s *session.Session) []Feedback {
	if s == nil || s.Summary == nil {
		return nil
	}
	return reportFeedback(c.cfg, s.Summary, s.Speech)
}

func reportFeedback(cfg Config, sum *session.Summary, stats speech.Stats) []Feedback {
	var out []Feedback

	wpm := float64(sum.WordsPerMinute)
	switch {
	case wpm < cfg.SlowWPM:
		out = append(out, Feedback{
			Level: LevelInfo,
			Message: fmt.Sprintf("Tempo: %d WPM. You speak slowly; try a more fluent pace.",
				sum.WordsPerMinute),
		})
	case wpm <= cfg.FastWPM:
		out = append(out, Feedback{
			Level: LevelSuccess,
			Message: fmt.Sprintf("Tempo: %d WPM. Great pace, you come across confident.",
				sum.WordsPerMinute),
		})
	default:
		out = append(out, Feedback{
			Level: LevelInfo,
			Message: fmt.Sprintf("Tempo: %d WPM. You speak fast; try deliberate pauses.",
				sum.WordsPerMinute),
		})
	}

	totalWords := stats.TotalWords
	if totalWords == 0 {
		totalWords = 1
	}
	hesPct := float64(stats.HesitationCount) / float64(totalWords) * 100
	switch {
	case hesPct < cfg.LowHesitationPct:
		out = append(out, Feedback{
			Level: LevelSuccess,
			Message: fmt.Sprintf("Hesitations: %d (%.1f%%). Very fluent speech, keep the natural pauses.",
				stats.HesitationCount, hesPct),
		})
	case hesPct <= cfg.HighHesitationPct:
		out = append(out, Feedback{
			Level: LevelInfo,
			Message: fmt.Sprintf("Hesitations: %d (%.1f%%). A few hesitations; try pauses instead of fillers.",
				stats.HesitationCount, hesPct),
		})
	default:
		out = append(out, Feedback{
			Level: LevelWarning,
			Message: fmt.Sprintf("Hesitations: %d (%.1f%%). Frequent filler words; plan sentences and pause deliberately.",
				stats.HesitationCount, hesPct),
		})
	}

	centerPct := sum.ZoneShares["center"] * 100
	switch {
	case sum.ZoneShares["center"] >= cfg.GoodCenterShare:
		out = append(out, Feedback{
			Level: LevelSuccess,
			Message: fmt.Sprintf("Eye contact: %.0f%% of the time. Excellent, you hold the camera's gaze.",
				centerPct),
		})
	case sum.ZoneShares["center"] >= cfg.FairCenterShare:
		out = append(out, Feedback{
			Level: LevelInfo,
			Message: fmt.Sprintf("Eye contact: %.0f%% of the time. You look away at times; practice deliberate eye contact.",
				centerPct),
		})
	default:
		out = append(out, Feedback{
			Level: LevelWarning,
			Message: fmt.Sprintf("Eye contact: %.0f%% of the time. You look away often; short stretches of steady gaze read as confidence.",
				centerPct),
		})
	}

	return out
}
