package hybrid

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/actionsum/meetnotes/pkg/window"
	"go.uber.org/zap"
)

// Detector chains detectors in priority order. The first one that names a
// focused application wins.
type Detector struct {
	detectors []window.Detector
	logger    *zap.SugaredLogger

	mu         sync.Mutex
	lastServer string
}

// NewDetector keeps the available detectors among the given ones, in order
func NewDetector(logger *zap.SugaredLogger, detectors ...window.Detector) (*Detector, error) {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	d := &Detector{logger: logger}
	for _, det := range detectors {
		if det == nil {
			continue
		}
		if !det.IsAvailable() {
			logger.Debugw("Detector unavailable", "display_server", det.GetDisplayServer())
			_ = det.Close()
			continue
		}
		d.detectors = append(d.detectors, det)
	}

	if len(d.detectors) == 0 {
		return nil, errors.New("no window detector available on this system")
	}
	return d, nil
}

// IsAvailable reports true; NewDetector refuses an empty chain
func (d *Detector) IsAvailable() bool {
	return len(d.detectors) > 0
}

// GetDisplayServer returns the display server of the detector that last
// answered, or of the first one in the chain
func (d *Detector) GetDisplayServer() string {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.lastServer != "" {
		return d.lastServer
	}
	return d.detectors[0].GetDisplayServer()
}

// GetFocusedWindow asks each detector in turn
func (d *Detector) GetFocusedWindow() (*window.WindowInfo, error) {
	var errs []string

	for _, det := range d.detectors {
		info, err := det.GetFocusedWindow()
		if err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", det.GetDisplayServer(), err))
			continue
		}
		if info == nil || strings.TrimSpace(info.AppName) == "" {
			errs = append(errs, fmt.Sprintf("%s: no application name", det.GetDisplayServer()))
			continue
		}

		d.mu.Lock()
		d.lastServer = det.GetDisplayServer()
		d.mu.Unlock()
		return info, nil
	}

	d.logger.Debugw("All detectors failed", "errors", errs)
	return nil, fmt.Errorf("all detection methods failed: %s", strings.Join(errs, "; "))
}

// GetIdleInfo merges the answers of every detector. The session counts as
// locked when any of them sees a lock.
func (d *Detector) GetIdleInfo() (*window.IdleInfo, error) {
	var (
		merged  window.IdleInfo
		answers int
		lastErr error
	)

	for _, det := range d.detectors {
		info, err := det.GetIdleInfo()
		if err != nil || info == nil {
			lastErr = err
			continue
		}
		answers++
		merged.IsLocked = merged.IsLocked || info.IsLocked
		merged.IsIdle = merged.IsIdle || info.IsIdle
		if info.IdleTime > merged.IdleTime {
			merged.IdleTime = info.IdleTime
		}
	}

	if answers == 0 {
		if lastErr == nil {
			lastErr = errors.New("no idle information available")
		}
		return nil, lastErr
	}
	return &merged, nil
}

// Close closes every detector in the chain
func (d *Detector) Close() error {
	var errs []error
	for _, det := range d.detectors {
		if err := det.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
