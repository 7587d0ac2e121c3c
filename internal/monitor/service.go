// Package monitor runs the polling loop that watches the foreground
// application and dispatches a notification when a meeting app has focus.
package monitor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/actionsum/meetnotes/internal/config"
	"github.com/actionsum/meetnotes/internal/dispatch"
	"github.com/actionsum/meetnotes/internal/models"
	"github.com/actionsum/meetnotes/pkg/window"

	"github.com/dgraph-io/ristretto/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Loop states
const (
	StateIdle      = "idle"
	StateNotifying = "notifying"
)

// Dispatch modes
const (
	DispatchEveryTick    = "every-tick"
	DispatchSessionStart = "session-start"
)

// Dispatch failure policies
const (
	FailureContinue = "continue"
	FailureAbort    = "abort"
)

// Matcher reports whether an application name is a meeting app
type Matcher interface {
	Match(app string) (string, bool)
}

// Dispatcher notifies the user and opens the note-taking app
type Dispatcher interface {
	Dispatch(ctx context.Context, app string) (*dispatch.Result, error)
}

// Recorder stores dispatch history. *database.Repository satisfies it.
type Recorder interface {
	CreateDispatch(event *models.DispatchEvent) error
	StartSession(session *models.MeetingSession) error
	EndSession(sessionID string, endedAt time.Time, dispatches int) error
	CreateErrorLog(errorLog *models.ErrorLog) error
}

// SessionInfo describes the meeting session in progress
type SessionInfo struct {
	ID         string    `json:"id"`
	AppName    string    `json:"app_name"`
	StartedAt  time.Time `json:"started_at"`
	Dispatches int       `json:"dispatches"`
}

// Status is a point-in-time snapshot of the loop
type Status struct {
	State        string       `json:"state"`
	Running      bool         `json:"running"`
	StartedAt    time.Time    `json:"started_at,omitempty"`
	Ticks        int64        `json:"ticks"`
	Dispatches   int64        `json:"dispatches"`
	Failures     int64        `json:"failures"`
	LastApp      string       `json:"last_app,omitempty"`
	LastDispatch time.Time    `json:"last_dispatch,omitempty"`
	LastError    string       `json:"last_error,omitempty"`
	Session      *SessionInfo `json:"session,omitempty"`
}

type Service struct {
	config     config.MonitorConfig
	detector   window.Detector
	matcher    Matcher
	dispatcher Dispatcher
	recorder   Recorder
	logger     *zap.SugaredLogger
	cooldown   *ristretto.Cache[string, time.Time]
	now        func() time.Time

	stopChan chan struct{}
	stopOnce sync.Once

	mu      sync.RWMutex
	status  Status
	session *SessionInfo
}

// NewService creates the monitor. recorder may be nil when history is disabled.
func NewService(cfg *config.Configuration, detector window.Detector, matcher Matcher, dispatcher Dispatcher, recorder Recorder, logger *zap.SugaredLogger) (*Service, error) {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	s := &Service{
		config:     cfg.Monitor,
		detector:   detector,
		matcher:    matcher,
		dispatcher: dispatcher,
		recorder:   recorder,
		logger:     logger,
		now:        time.Now,
		stopChan:   make(chan struct{}),
		status:     Status{State: StateIdle},
	}

	if cfg.Monitor.Cooldown > 0 {
		cache, err := ristretto.NewCache(&ristretto.Config[string, time.Time]{
			NumCounters:        1000,
			MaxCost:            100,
			BufferItems:        64,
			IgnoreInternalCost: true,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create cooldown cache: %w", err)
		}
		s.cooldown = cache
	}

	return s, nil
}

// Start ticks immediately and then once per poll interval until ctx is
// cancelled, Stop is called, or a dispatch fails under the abort policy.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.status.Running {
		s.mu.Unlock()
		return fmt.Errorf("monitor is already running")
	}
	s.status.Running = true
	s.status.StartedAt = s.now()
	s.mu.Unlock()

	defer func() {
		s.endSession(s.now())
		s.mu.Lock()
		s.status.Running = false
		s.status.State = StateIdle
		s.mu.Unlock()
	}()

	s.logger.Infof("Starting monitor with %v poll interval", s.config.PollInterval)

	ticker := time.NewTicker(s.config.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Monitor stopped by context")
			return ctx.Err()
		case <-s.stopChan:
			s.logger.Info("Monitor stopped")
			return nil
		default:
		}

		if _, err := s.Tick(ctx); err != nil {
			if ctx.Err() != nil {
				continue
			}
			if s.config.OnDispatchFailure == FailureAbort {
				s.logger.Errorf("Dispatch failed, stopping monitor: %v", err)
				return err
			}
			s.logger.Warnf("Dispatch failed: %v", err)
		}

		select {
		case <-ctx.Done():
			s.logger.Info("Monitor stopped by context")
			return ctx.Err()
		case <-s.stopChan:
			s.logger.Info("Monitor stopped")
			return nil
		case <-ticker.C:
		}
	}
}

// Stop ends the loop at its next boundary. It is safe to call more than once.
func (s *Service) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopChan)
	})
}

// Close releases the cooldown cache
func (s *Service) Close() {
	if s.cooldown != nil {
		s.cooldown.Close()
	}
}

func (s *Service) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status.Running
}

// Status returns a snapshot of the loop state
func (s *Service) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()

	status := s.status
	if s.session != nil {
		session := *s.session
		status.Session = &session
	}
	return status
}

// Tick runs a single iteration: detect the foreground app, match it and
// dispatch when it is a meeting app. It reports whether a dispatch succeeded.
// A non-nil error is either ctx's error or a *dispatch.DispatchError.
func (s *Service) Tick(ctx context.Context) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	now := s.now()
	s.mu.Lock()
	s.status.Ticks++
	s.mu.Unlock()

	if s.config.SkipWhenLocked {
		if idle, err := s.detector.GetIdleInfo(); err == nil && idle != nil && idle.IsLocked {
			s.logger.Debug("Skipping tick: screen locked")
			s.endSession(now)
			return false, nil
		}
	}

	app, ok := window.ForegroundApp(s.detector)
	if !ok {
		s.logger.Debug("No foreground application detected")
		s.endSession(now)
		return false, nil
	}

	s.mu.Lock()
	s.status.LastApp = app
	s.mu.Unlock()

	entry, ok := s.matcher.Match(app)
	if !ok {
		s.endSession(now)
		return false, nil
	}

	sessionID, started := s.ensureSession(app, now)

	if s.config.DispatchMode == DispatchSessionStart && !started {
		return false, nil
	}
	if s.inCooldown(entry) {
		s.logger.Debugf("Skipping %s: within cooldown", app)
		return false, nil
	}

	s.setState(StateNotifying)
	result, err := s.dispatcher.Dispatch(ctx, app)
	s.setState(StateIdle)

	event := &models.DispatchEvent{
		CorrelationID: uuid.NewString(),
		SessionID:     sessionID,
		Timestamp:     now,
		AppName:       app,
		MatchedEntry:  entry,
		Success:       err == nil,
		DisplayServer: s.detector.GetDisplayServer(),
	}
	if result != nil {
		event.DeepLink = result.URI
		event.Attempts = result.NotifyAttempts + result.OpenAttempts
		event.DurationMs = result.Duration.Milliseconds()
	}

	if err != nil {
		var dispatchErr *dispatch.DispatchError
		if errors.As(err, &dispatchErr) {
			event.Stage = dispatchErr.Stage
		}
		event.ErrorMsg = err.Error()
		s.record(event)
		s.recordError("dispatch", app, err)

		s.mu.Lock()
		s.status.Failures++
		s.status.LastError = err.Error()
		s.mu.Unlock()

		return false, err
	}

	s.record(event)
	s.logger.Infof("Dispatched for %s (%s)", app, event.DeepLink)

	if s.cooldown != nil {
		s.cooldown.SetWithTTL(entry, now, 1, s.config.Cooldown)
		s.cooldown.Wait()
	}

	s.mu.Lock()
	s.status.Dispatches++
	s.status.LastDispatch = now
	if s.session != nil {
		s.session.Dispatches++
	}
	s.mu.Unlock()

	return true, nil
}

func (s *Service) setState(state string) {
	s.mu.Lock()
	s.status.State = state
	s.mu.Unlock()
}

func (s *Service) inCooldown(entry string) bool {
	if s.cooldown == nil {
		return false
	}
	_, found := s.cooldown.Get(entry)
	return found
}

// ensureSession keeps the session for app open, replacing a session held by
// another app. It reports whether a new session was started.
func (s *Service) ensureSession(app string, now time.Time) (string, bool) {
	s.mu.RLock()
	current := s.session
	s.mu.RUnlock()

	if current != nil && current.AppName == app {
		return current.ID, false
	}
	if current != nil {
		s.endSession(now)
	}

	session := &SessionInfo{
		ID:        uuid.NewString(),
		AppName:   app,
		StartedAt: now,
	}

	s.mu.Lock()
	s.session = session
	s.mu.Unlock()

	s.logger.Infof("Meeting session started: %s", app)

	if s.recorder != nil {
		err := s.recorder.StartSession(&models.MeetingSession{
			SessionID: session.ID,
			AppName:   app,
			StartedAt: now,
		})
		if err != nil {
			s.logger.Warnf("Failed to record session start: %v", err)
		}
	}

	return session.ID, true
}

func (s *Service) endSession(now time.Time) {
	s.mu.Lock()
	session := s.session
	s.session = nil
	s.mu.Unlock()

	if session == nil {
		return
	}

	s.logger.Infof("Meeting session ended: %s (%v)", session.AppName, now.Sub(session.StartedAt).Round(time.Second))

	if s.recorder != nil {
		if err := s.recorder.EndSession(session.ID, now, session.Dispatches); err != nil {
			s.logger.Warnf("Failed to record session end: %v", err)
		}
	}
}

func (s *Service) record(event *models.DispatchEvent) {
	if s.recorder == nil {
		return
	}
	if err := s.recorder.CreateDispatch(event); err != nil {
		s.logger.Warnf("Failed to record dispatch: %v", err)
	}
}

func (s *Service) recordError(source, app string, err error) {
	if s.recorder == nil {
		return
	}

	errorLog := &models.ErrorLog{
		Timestamp: s.now(),
		Source:    source,
		AppName:   app,
		ErrorMsg:  err.Error(),
	}
	if dbErr := s.recorder.CreateErrorLog(errorLog); dbErr != nil {
		s.logger.Warnf("Failed to store error in database: %v (original error: %v)", dbErr, err)
	}
}
