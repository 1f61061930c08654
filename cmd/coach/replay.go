package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"

	"github.com/speakcoach/go-speakcoach/pkg/landmarks"
)

var (
	replayServer   string
	replayStartSec int
	replayDelayMs  int
)

// replayLine is one recorded event. Frames carry landmarks, utterances carry
// text; an explicit delay overrides the default pacing.
type replayLine struct {
	Type      string        `json:"type"` // "frame" or "utterance"
	Landmarks landmarks.Set `json:"landmarks,omitempty"`
	Text      string        `json:"text,omitempty"`
	IsFinal   bool          `json:"isFinal,omitempty"`
	DelayMs   int           `json:"delayMs,omitempty"`
}

var replayCmd = &cobra.Command{
	Use:   "replay <file.jsonl>",
	Short: "Stream a recorded frame/utterance log into a running server",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()

		if replayStartSec > 0 {
			if err := startSession(replayServer, replayStartSec); err != nil {
				return err
			}
		}

		frames, _, err := websocket.DefaultDialer.Dial("ws://"+replayServer+"/ws/frames", nil)
		if err != nil {
			return fmt.Errorf("dial frames: %w", err)
		}
		defer frames.Close()

		transcript, _, err := websocket.DefaultDialer.Dial("ws://"+replayServer+"/ws/transcript", nil)
		if err != nil {
			return fmt.Errorf("dial transcript: %w", err)
		}
		defer transcript.Close()

		sent := 0
		scanner := bufio.NewScanner(f)
		scanner.Buffer(make([]byte, 0, 1024*1024), 1024*1024)
		for scanner.Scan() {
			line := bytes.TrimSpace(scanner.Bytes())
			if len(line) == 0 {
				continue
			}

			var ev replayLine
			if err := json.Unmarshal(line, &ev); err != nil {
				return fmt.Errorf("line %d: %w", sent+1, err)
			}

			switch ev.Type {
			case "frame":
				msg := map[string]any{"landmarks": ev.Landmarks}
				if err := frames.WriteJSON(msg); err != nil {
					return fmt.Errorf("send frame: %w", err)
				}
			case "utterance":
				msg := map[string]any{"text": ev.Text, "isFinal": ev.IsFinal}
				if err := transcript.WriteJSON(msg); err != nil {
					return fmt.Errorf("send utterance: %w", err)
				}
			default:
				return fmt.Errorf("line %d: unknown event type %q", sent+1, ev.Type)
			}
			sent++

			delay := replayDelayMs
			if ev.DelayMs > 0 {
				delay = ev.DelayMs
			}
			if delay > 0 {
				time.Sleep(time.Duration(delay) * time.Millisecond)
			}
		}
		if err := scanner.Err(); err != nil {
			return err
		}

		fmt.Printf("Replayed %d events.\n", sent)
		return nil
	},
}

// startSession opens a test over the REST API before streaming.
func startSession(server string, durationSec int) error {
	body, _ := json.Marshal(map[string]any{"durationSec": durationSec})
	resp, err := http.Post("http://"+server+"/api/session/start",
		"application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("start session: status %d", resp.StatusCode)
	}
	return nil
}

func init() {
	replayCmd.Flags().StringVar(&replayServer, "server", "localhost:8090", "coach server address")
	replayCmd.Flags().IntVar(&replayStartSec, "start", 0, "start a test of this many seconds before streaming")
	replayCmd.Flags().IntVar(&replayDelayMs, "delay", 33, "default delay between events in milliseconds")
	rootCmd.AddCommand(replayCmd)
}
