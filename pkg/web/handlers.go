package web

import (
	"encoding/json"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"github.com/speakcoach/go-speakcoach/internal/log"
	"github.com/speakcoach/go-speakcoach/pkg/hub"
	"github.com/speakcoach/go-speakcoach/pkg/landmarks"
	"github.com/speakcoach/go-speakcoach/pkg/session"
)

// frameMessage is one ingest message on /ws/frames. A null or empty landmark
// list means no face was detected in the frame.
type frameMessage struct {
	Landmarks landmarks.Set `json:"landmarks"`
}

// transcriptMessage is one ingest message on /ws/transcript.
type transcriptMessage struct {
	Text    string `json:"text"`
	IsFinal bool   `json:"isFinal"`
}

type startRequest struct {
	DurationSec int `json:"durationSec"`
}

// handleStatus reports the coarse service state.
func (s *Server) handleStatus(c *fiber.Ctx) error {
	st := s.ctrl.Status()
	return c.JSON(fiber.Map{
		"state":        st.State,
		"calibrating":  st.Calibrating,
		"calibrated":   st.Calibrated,
		"overallScore": st.OverallScore,
		"remainingSec": st.RemainingSec,
		"listeners":    s.feedbackHub.ClientCount(),
	})
}

// handleSessionStart opens a new test.
func (s *Server) handleSessionStart(c *fiber.Ctx) error {
	var req startRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
	}

	sess, err := s.ctrl.StartTest(time.Duration(req.DurationSec) * time.Second)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{
		"id":        sess.ID,
		"startTime": sess.StartTime,
		"duration":  sess.Duration.Seconds(),
	})
}

// handleSessionStop finalizes the active test and returns the report.
func (s *Server) handleSessionStop(c *fiber.Ctx) error {
	sess := s.ctrl.StopTest()
	if sess == nil {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "no active session"})
	}
	return c.JSON(fiber.Map{
		"session":  sess,
		"feedback": s.ctrl.ReportFeedback(sess),
	})
}

// handleSessionHistory returns the most recent finalized sessions.
func (s *Server) handleSessionHistory(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 10)
	sessions, err := s.ctrl.History(limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	if sessions == nil {
		sessions = []session.Session{}
	}
	return c.JSON(sessions)
}

// handleCalibrationStart begins the five-direction sequence.
func (s *Server) handleCalibrationStart(c *fiber.Ctx) error {
	m := s.ctrl.Calibration()
	m.Begin()
	dir, _ := m.CurrentDirection()
	return c.JSON(fiber.Map{"direction": dir})
}

// handleCalibrationSample feeds one landmark frame into the active step.
// Frames also arrive here through /ws/frames; this endpoint exists for
// clients that sample calibration frames explicitly.
func (s *Server) handleCalibrationSample(c *fiber.Ctx) error {
	m := s.ctrl.Calibration()
	if !m.IsCalibrating() {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "not calibrating"})
	}

	var req frameMessage
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
	}

	done := m.AddFrame(req.Landmarks)
	dir, active := m.CurrentDirection()
	return c.JSON(fiber.Map{
		"direction": dir,
		"active":    active,
		"done":      done,
	})
}

// handleCalibrationFinish reports the completed profile.
func (s *Server) handleCalibrationFinish(c *fiber.Ctx) error {
	m := s.ctrl.Calibration()
	if m.IsCalibrating() {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "calibration still in progress"})
	}
	return c.JSON(fiber.Map{
		"calibrated": m.IsCalibrated(),
		"thresholds": m.Thresholds(),
		"profile":    m.Profile(),
	})
}

// handleCalibrationCancel discards the in-progress sequence.
func (s *Server) handleCalibrationCancel(c *fiber.Ctx) error {
	s.ctrl.Calibration().Cancel()
	return c.JSON(fiber.Map{"calibrated": s.ctrl.Calibration().IsCalibrated()})
}

// handleFramesWS ingests landmark frames. Each analyzed frame is broadcast
// to the feedback hub.
func (s *Server) handleFramesWS(c *websocket.Conn) {
	defer c.Close()
	for {
		_, data, err := c.ReadMessage()
		if err != nil {
			return
		}

		var msg frameMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			log.Debug("bad frame message", "error", err)
			continue
		}

		set := msg.Landmarks
		if len(set) == 0 {
			set = nil
		}
		if res, ok := s.ctrl.OnFrame(set); ok {
			s.feedbackHub.BroadcastJSON(fiber.Map{"type": "frame", "result": res})
		}
	}
}

// handleTranscriptWS ingests recognized speech segments. Live filler events
// are broadcast to the feedback hub.
func (s *Server) handleTranscriptWS(c *websocket.Conn) {
	defer c.Close()
	for {
		_, data, err := c.ReadMessage()
		if err != nil {
			return
		}

		var msg transcriptMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			log.Debug("bad transcript message", "error", err)
			continue
		}

		if events := s.ctrl.OnUtterance(msg.Text, msg.IsFinal); len(events) > 0 {
			s.feedbackHub.BroadcastJSON(fiber.Map{"type": "fillers", "events": events})
		}
	}
}

// handleFeedbackWS subscribes a client to the feedback broadcast.
func (s *Server) handleFeedbackWS(c *websocket.Conn) {
	hub.NewClient(s.feedbackHub, c).Run()
}
