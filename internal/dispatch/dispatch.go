// Package dispatch fires the desktop notification and opens the note-taking
// application when a meeting app gains focus.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.uber.org/zap"
)

//go:generate mockgen -source=dispatch.go -destination=mocks/dispatch_mock.go -package=mocks

// Notifier shows a desktop notification
type Notifier interface {
	Notify(ctx context.Context, title, message string) error
}

// Opener opens a URI with the handler registered for its scheme
type Opener interface {
	Open(ctx context.Context, uri string) error
}

// Dispatch stages
const (
	StageNotify = "notify"
	StageOpen   = "open"
)

// DispatchError reports an external call that still failed after every attempt
type DispatchError struct {
	Stage    string
	Attempts int
	Err      error
}

func (e *DispatchError) Error() string {
	return fmt.Sprintf("%s failed after %d attempt(s): %v", e.Stage, e.Attempts, e.Err)
}

func (e *DispatchError) Unwrap() error {
	return e.Err
}

// Result describes one completed dispatch
type Result struct {
	App            string
	URI            string
	NotifyAttempts int
	OpenAttempts   int
	Duration       time.Duration
}

// Options holds the notification content and the retry policy
type Options struct {
	Title         string
	Message       string
	Link          DeepLink
	MaxAttempts   int
	RetryInterval time.Duration
	Timeout       time.Duration
}

// Dispatcher notifies and then opens the deep link
type Dispatcher struct {
	notifier Notifier
	opener   Opener
	opts     Options
	logger   *zap.SugaredLogger
	now      func() time.Time
}

// New creates a dispatcher over the given backends
func New(notifier Notifier, opener Opener, opts Options, logger *zap.SugaredLogger) *Dispatcher {
	if opts.MaxAttempts < 1 {
		opts.MaxAttempts = 1
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	return &Dispatcher{
		notifier: notifier,
		opener:   opener,
		opts:     opts,
		logger:   logger,
		now:      time.Now,
	}
}

// Dispatch shows the notification and then opens the deep link for app.
// When the notification cannot be shown the link is not opened.
func (d *Dispatcher) Dispatch(ctx context.Context, app string) (*Result, error) {
	start := d.now()
	result := &Result{App: app}

	uri, err := d.opts.Link.Build(start, app)
	if err != nil {
		return result, &DispatchError{Stage: StageOpen, Err: err}
	}
	result.URI = uri

	result.NotifyAttempts, err = d.retry(ctx, StageNotify, func(callCtx context.Context) error {
		return d.notifier.Notify(callCtx, d.opts.Title, d.opts.Message)
	})
	if err != nil {
		return result, &DispatchError{Stage: StageNotify, Attempts: result.NotifyAttempts, Err: err}
	}

	result.OpenAttempts, err = d.retry(ctx, StageOpen, func(callCtx context.Context) error {
		return d.opener.Open(callCtx, uri)
	})
	if err != nil {
		return result, &DispatchError{Stage: StageOpen, Attempts: result.OpenAttempts, Err: err}
	}

	result.Duration = d.now().Sub(start)
	return result, nil
}

// retry runs call with exponential backoff, bounded by MaxAttempts. Each
// attempt gets its own timeout.
func (d *Dispatcher) retry(ctx context.Context, stage string, call func(context.Context) error) (int, error) {
	attempts := 0

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = d.opts.RetryInterval
	if b.InitialInterval <= 0 {
		b.InitialInterval = time.Millisecond
	}

	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		attempts++

		callCtx := ctx
		if d.opts.Timeout > 0 {
			var cancel context.CancelFunc
			callCtx, cancel = context.WithTimeout(ctx, d.opts.Timeout)
			defer cancel()
		}

		err := call(callCtx)
		if err != nil && ctx.Err() != nil {
			return struct{}{}, backoff.Permanent(err)
		}
		return struct{}{}, err
	},
		backoff.WithBackOff(b),
		backoff.WithMaxTries(uint(d.opts.MaxAttempts)),
		backoff.WithNotify(func(err error, next time.Duration) {
			d.logger.Warnf("%s attempt %d failed, retrying in %v: %v", stage, attempts, next, err)
		}),
	)

	var permanent *backoff.PermanentError
	if errors.As(err, &permanent) {
		err = permanent.Unwrap()
	}

	return attempts, err
}
