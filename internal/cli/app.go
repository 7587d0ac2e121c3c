package cli

import (
	"fmt"

	"github.com/actionsum/meetnotes/internal/config"
	"github.com/actionsum/meetnotes/internal/database"
	"github.com/actionsum/meetnotes/internal/dispatch"
	"github.com/actionsum/meetnotes/internal/matcher"
	"github.com/actionsum/meetnotes/internal/monitor"
	"github.com/actionsum/meetnotes/pkg/detector"
	"github.com/actionsum/meetnotes/pkg/window"

	"go.uber.org/zap"
)

// app holds everything a monitor run needs
type app struct {
	cfg      *config.Configuration
	logger   *zap.SugaredLogger
	detector window.Detector
	db       *database.DB
	repo     *database.Repository
	monitor  *monitor.Service
}

func newApp(cfg *config.Configuration, logger *zap.SugaredLogger) (*app, error) {
	a := &app{cfg: cfg, logger: logger}

	m, err := matcher.New(cfg.Monitor.MatchMode, cfg.MeetingApps)
	if err != nil {
		return nil, err
	}

	d, err := dispatch.NewFromConfig(cfg, logger)
	if err != nil {
		return nil, err
	}

	a.detector, err = detector.New(cfg.Detector.Backend, cfg.Detector.StaticApp)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize window detector: %w", err)
	}

	var recorder monitor.Recorder
	if cfg.Database.Enabled {
		a.db, a.repo, err = openStore(cfg)
		if err != nil {
			a.Close()
			return nil, err
		}

		// Sessions left open by a crash end where they began
		if n, err := a.repo.EndOpenSessions(); err != nil {
			logger.Warnf("Failed to close stale sessions: %v", err)
		} else if n > 0 {
			logger.Infof("Closed %d stale meeting session(s)", n)
		}
		recorder = a.repo
	}

	a.monitor, err = monitor.NewService(cfg, a.detector, m, d, recorder, logger)
	if err != nil {
		a.Close()
		return nil, err
	}

	return a, nil
}

func (a *app) Close() {
	if a.monitor != nil {
		a.monitor.Close()
	}
	if a.detector != nil {
		if err := a.detector.Close(); err != nil {
			a.logger.Warnf("Failed to close detector: %v", err)
		}
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Warnf("Failed to close database: %v", err)
		}
	}
}

// openStore connects to the history database and migrates it
func openStore(cfg *config.Configuration) (*database.DB, *database.Repository, error) {
	if !cfg.Database.Enabled {
		return nil, nil, fmt.Errorf("history is disabled (database.enabled is false)")
	}

	db, err := database.Connect(cfg.Database.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := db.Initialize(); err != nil {
		_ = db.Close()
		return nil, nil, err
	}

	return db, database.NewRepository(db), nil
}
