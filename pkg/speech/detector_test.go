package speech

import (
	"testing"
	"time"

	"pgregory.net/rapid"
)

func newStarted(t *testing.T) (*Detector, time.Time) {
	t.Helper()
	d := NewDetector(DefaultConfig())
	start := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	d.Start(start)
	return d, start
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Sooo basically", "so basicaly"},
		{"EHMMM", "ehm"},
		{"  hello  world  ", "helo  world"},
		{"žltý kôň", "žltý kôň"}, // non-ASCII letters are left alone
		{"aa11bb", "a11b"},
	}
	for _, tt := range tests {
		if got := Normalize(tt.in); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		text := rapid.String().Draw(t, "text")
		once := Normalize(text)
		if twice := Normalize(once); twice != once {
			t.Fatalf("Normalize not idempotent: %q -> %q -> %q", text, once, twice)
		}
	})
}

func TestProcessFinal_ScenarioCounts(t *testing.T) {
	d, start := newStarted(t)

	// "no" is not in the lexicon; it counts as a short-fragment hesitation.
	// "vlastne" and "ako" are lexicon fillers, each also a hesitation.
	d.ProcessFinal("no vlastne ako", start.Add(5*time.Second))

	s := d.Stats()
	if s.TotalWords != 3 {
		t.Errorf("TotalWords = %d, want 3", s.TotalWords)
	}
	if s.FillerCount != 2 {
		t.Errorf("FillerCount = %d, want 2", s.FillerCount)
	}
	if s.HesitationCount != 3 {
		t.Errorf("HesitationCount = %d, want 3", s.HesitationCount)
	}
}

func TestProcessFinal_Phrases(t *testing.T) {
	d, start := newStarted(t)

	d.ProcessFinal("it was you know sort of fine", start)

	s := d.Stats()
	if s.TotalWords != 7 {
		t.Errorf("TotalWords = %d, want 7", s.TotalWords)
	}
	// "you know" and "sort of" each hit once; no single-token fillers.
	if s.FillerCount != 2 {
		t.Errorf("FillerCount = %d, want 2", s.FillerCount)
	}
}

func TestProcessFinal_InterjectionOverlapsFiller(t *testing.T) {
	d, start := newStarted(t)

	d.ProcessFinal("eh", start)

	s := d.Stats()
	if s.FillerCount != 1 {
		t.Errorf("FillerCount = %d, want 1", s.FillerCount)
	}
	// Lexicon hit (+1) and interjection pattern (+1); the short-fragment rule
	// does not double-count a token already counted as a filler.
	if s.HesitationCount != 2 {
		t.Errorf("HesitationCount = %d, want 2", s.HesitationCount)
	}
}

func TestProcessFinal_StutterCollapsesBeforeMatching(t *testing.T) {
	d, start := newStarted(t)

	// Recognizer stutter artifact: "ehhhm" collapses to "ehm", a lexicon hit.
	d.ProcessFinal("ehhhm", start)

	if d.Stats().FillerCount != 1 {
		t.Errorf("FillerCount = %d, want 1", d.Stats().FillerCount)
	}
}

func TestProcessFinal_NumericFragmentIsNotHesitation(t *testing.T) {
	d, start := newStarted(t)

	d.ProcessFinal("42", start)

	if d.Stats().HesitationCount != 0 {
		t.Errorf("HesitationCount = %d, want 0 for numeric token", d.Stats().HesitationCount)
	}
}

func TestCooldown_ThrottlesEventsNotCounters(t *testing.T) {
	d, start := newStarted(t)

	first := d.ProcessFinal("vlastne", start)
	second := d.ProcessFinal("vlastne", start.Add(500*time.Millisecond))
	third := d.ProcessFinal("vlastne", start.Add(3*time.Second))

	if len(first) != 1 {
		t.Fatalf("Expected 1 event on first detection, got %d", len(first))
	}
	if len(second) != 0 {
		t.Errorf("Expected cooldown to suppress second event, got %d", len(second))
	}
	if len(third) != 1 {
		t.Errorf("Expected event after cooldown expiry, got %d", len(third))
	}

	// Counters are unaffected by the cooldown.
	if d.Stats().FillerCount != 3 {
		t.Errorf("FillerCount = %d, want 3", d.Stats().FillerCount)
	}
}

func TestInterimHint_DoesNotCount(t *testing.T) {
	d, _ := newStarted(t)

	if hints := d.InterimHint("vlastne you know"); hints != 2 {
		t.Errorf("Expected 2 hints, got %d", hints)
	}
	if s := d.Stats(); s != (Stats{}) {
		t.Errorf("Interim text must not touch counters, got %+v", s)
	}
}

func TestTranscript_CumulativeHesitations(t *testing.T) {
	d, start := newStarted(t)

	d.ProcessFinal("vlastne dobre", start.Add(time.Second))
	d.ProcessFinal("takže ideme", start.Add(2*time.Second))

	tr := d.Transcript()
	if len(tr) != 2 {
		t.Fatalf("Expected 2 transcript segments, got %d", len(tr))
	}
	if tr[0].Hesitations != 1 || tr[1].Hesitations != 2 {
		t.Errorf("Expected cumulative hesitations 1,2; got %d,%d", tr[0].Hesitations, tr[1].Hesitations)
	}
	if !tr[1].Time.After(tr[0].Time) {
		t.Error("Transcript timestamps must be ordered")
	}
}

func TestStart_ResetsAccumulators(t *testing.T) {
	d, start := newStarted(t)
	d.ProcessFinal("vlastne proste ako", start)

	d.Start(start.Add(time.Minute))
	if s := d.Stats(); s != (Stats{}) {
		t.Errorf("Expected zeroed stats after Start, got %+v", s)
	}
	if len(d.Transcript()) != 0 {
		t.Error("Expected empty transcript after Start")
	}
}

func TestEvent_ElapsedFromSessionStart(t *testing.T) {
	d, start := newStarted(t)

	events := d.ProcessFinal("proste", start.Add(42*time.Second))
	if len(events) != 1 {
		t.Fatal("Expected one event")
	}
	if events[0].Word != "proste" {
		t.Errorf("Event word = %q", events[0].Word)
	}
	if events[0].Elapsed != 42*time.Second {
		t.Errorf("Elapsed = %v, want 42s", events[0].Elapsed)
	}
}
