// Package web exposes the coach over HTTP and websockets: landmark and
// transcript ingest, a feedback broadcast hub and a small REST API.
package web

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/websocket/v2"

	"github.com/speakcoach/go-speakcoach/internal/log"
	"github.com/speakcoach/go-speakcoach/pkg/coach"
	"github.com/speakcoach/go-speakcoach/pkg/hub"
)

// Server serves the coach API.
type Server struct {
	app  *fiber.App
	port string

	ctrl *coach.Controller

	feedbackHub *hub.Hub
}

// NewServer wires the routes around the controller.
func NewServer(port string, ctrl *coach.Controller) *Server {
	s := &Server{
		port:        port,
		ctrl:        ctrl,
		feedbackHub: hub.New("feedback"),
	}

	app := fiber.New(fiber.Config{
		AppName:               "SpeakCoach",
		DisableStartupMessage: true,
	})

	// CORS for local development
	app.Use(cors.New())

	app.Static("/", "./web")

	api := app.Group("/api")
	api.Get("/status", s.handleStatus)
	api.Post("/session/start", s.handleSessionStart)
	api.Post("/session/stop", s.handleSessionStop)
	api.Get("/session/history", s.handleSessionHistory)
	api.Post("/calibration/start", s.handleCalibrationStart)
	api.Post("/calibration/sample", s.handleCalibrationSample)
	api.Post("/calibration/finish", s.handleCalibrationFinish)
	api.Post("/calibration/cancel", s.handleCalibrationCancel)

	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	app.Get("/ws/frames", websocket.New(s.handleFramesWS))
	app.Get("/ws/transcript", websocket.New(s.handleTranscriptWS))
	app.Get("/ws/feedback", websocket.New(s.handleFeedbackWS))

	s.app = app
	return s
}

// Notifier returns a coach.Notifier that forwards tone cues to the feedback
// hub.
func (s *Server) Notifier() coach.Notifier {
	return hubNotifier{hub: s.feedbackHub}
}

// Start runs the hubs and listens. It blocks until shutdown.
func (s *Server) Start() error {
	go s.feedbackHub.Run()

	log.Info("web server listening", "port", s.port)
	return s.app.Listen(":" + s.port)
}

// StartAsync runs the server in a goroutine.
func (s *Server) StartAsync() {
	go func() {
		if err := s.Start(); err != nil {
			log.Error("web server", "error", err)
		}
	}()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

// App exposes the fiber app for tests.
func (s *Server) App() *fiber.App {
	return s.app
}

// cue is a tone event delivered on the feedback socket.
type cue struct {
	Type    string `json:"type"`
	Seconds int    `json:"seconds,omitempty"`
}

type hubNotifier struct {
	hub *hub.Hub
}

var _ coach.Notifier = hubNotifier{}

func (n hubNotifier) Countdown(seconds int) {
	n.hub.BroadcastJSON(cue{Type: "countdown", Seconds: seconds})
}

func (n hubNotifier) TestOver() {
	n.hub.BroadcastJSON(cue{Type: "test-over"})
}
