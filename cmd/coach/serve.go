package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/speakcoach/go-speakcoach/internal/config"
	"github.com/speakcoach/go-speakcoach/internal/log"
	"github.com/speakcoach/go-speakcoach/pkg/calibration"
	"github.com/speakcoach/go-speakcoach/pkg/coach"
	"github.com/speakcoach/go-speakcoach/pkg/expression"
	"github.com/speakcoach/go-speakcoach/pkg/eyecontact"
	"github.com/speakcoach/go-speakcoach/pkg/gaze"
	"github.com/speakcoach/go-speakcoach/pkg/session"
	"github.com/speakcoach/go-speakcoach/pkg/speech"
	"github.com/speakcoach/go-speakcoach/pkg/storage"
	"github.com/speakcoach/go-speakcoach/pkg/web"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the coach service",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		log.Init(cfg.LogLevel)

		history, err := openHistory(cfg)
		if err != nil {
			return err
		}
		defer history.Close()

		calib := calibration.NewManager(calibration.DefaultConfig(),
			storage.NewFileStore(cfg.CalibrationPath))
		calib.Load()

		coachCfg := coach.DefaultConfig()
		coachCfg.MinTestDuration = cfg.MinTestDuration
		coachCfg.MaxTestDuration = cfg.MaxTestDuration

		ctrl := coach.NewController(coachCfg, coach.Deps{
			Classifier:  gaze.NewClassifier(gaze.DefaultConfig()),
			Scorer:      eyecontact.NewScorer(eyecontact.DefaultConfig()),
			Expression:  expression.NewAnalyzer(expression.PresetByName(cfg.ExpressionPreset)),
			Detector:    speech.NewDetector(speech.DefaultConfig()),
			Calibration: calib,
			Sessions:    session.NewAggregator(session.DefaultConfig(), history),
		})

		srv := web.NewServer(cfg.Port, ctrl)
		ctrl.SetNotifier(srv.Notifier())
		srv.StartAsync()

		stop := make(chan os.Signal, 1)
		signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
		<-stop

		log.Info("shutting down")
		if s := ctrl.StopTest(); s != nil {
			log.Info("finalized in-flight session", "id", s.ID)
		}
		return srv.Shutdown()
	},
}

// openHistory selects the session store from configuration.
func openHistory(cfg *config.Config) (session.HistoryStore, error) {
	switch cfg.StorageBackend {
	case "sqlite":
		return session.NewSQLiteHistory(cfg.HistoryPath)
	case "json", "":
		return session.NewJSONHistory(storage.NewFileStore(cfg.HistoryPath)), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
