// Package daemon implements the watch loop and the detached-process bootstrap.
package daemon

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/acceptd/acceptd/internal/domain"
	"github.com/acceptd/acceptd/internal/policy"
	"github.com/acceptd/acceptd/internal/usecase"
)

// WatcherConfig holds watch loop configuration.
type WatcherConfig struct {
	WindowClass  string        // top-level window class of the target app
	ProcessName  string        // optional: skip cycles while this process is absent
	SearchDepth  int           // subtree search bound
	PollInterval time.Duration // sleep between cycles
	SettleDelay  time.Duration // wait between an accepted dialog and the confirm search
}

// DefaultWatcherConfig returns the documented defaults.
func DefaultWatcherConfig() WatcherConfig {
	return WatcherConfig{
		WindowClass:  policy.DefaultWindowClass,
		SearchDepth:  policy.DefaultSearchDepth,
		PollInterval: policy.DefaultPollInterval,
		SettleDelay:  policy.DefaultSettleDelay,
	}
}

// CycleResult reports what a single watch cycle did.
type CycleResult struct {
	WindowsScanned int    // target-class windows searched this cycle
	Window         string // title of the window that was handled, if any
	Accept         *domain.InvocationResult
	Confirm        *domain.InvocationResult
}

// Handled reports whether any control was activated this cycle.
func (r CycleResult) Handled() bool {
	return (r.Accept != nil && r.Accept.Succeeded()) ||
		(r.Confirm != nil && r.Confirm.Succeeded())
}

// Watcher is the auto-accept daemon. It repeatedly scans the target
// application's top-level windows for accept/confirm buttons and
// activates them through the invocation cascade.
//
// One cycle fully completes (or fails) before the next begins; discovered
// handles are local to their cycle and never cached. The only way out of
// the loop is context cancellation.
type Watcher struct {
	config  WatcherConfig
	au      domain.Automation
	rules   policy.RuleSet
	cascade *usecase.Cascade
	pm      domain.ProcessManager // may be nil: process gate disabled
	logger  *zap.Logger
}

// NewWatcher creates a watcher. pm may be nil to disable the process gate.
func NewWatcher(
	config WatcherConfig,
	au domain.Automation,
	rules policy.RuleSet,
	cascade *usecase.Cascade,
	pm domain.ProcessManager,
	logger *zap.Logger,
) *Watcher {
	return &Watcher{
		config:  config,
		au:      au,
		rules:   rules,
		cascade: cascade,
		pm:      pm,
		logger:  logger,
	}
}

// Run starts the watch loop. Blocks until ctx is canceled, which is
// observed between cycles and inside every delay; an in-flight activation
// is allowed to finish so no half-performed click is abandoned.
func (w *Watcher) Run(ctx context.Context) error {
	w.logger.Info("watcher started",
		zap.String("accept", w.rules.Accept.String()),
		zap.String("confirm", w.rules.Confirm.String()),
		zap.String("window_class", w.config.WindowClass),
		zap.Duration("poll_interval", w.config.PollInterval))

	for {
		if ctx.Err() != nil {
			w.logger.Info("watcher stopping")
			return ctx.Err()
		}

		// Any backend fault is contained at the cycle boundary: log it
		// and keep watching. Availability beats surfacing errors here.
		if _, err := w.RunCycle(ctx); err != nil {
			w.logger.Error("watch cycle failed", zap.Error(err))
		}

		select {
		case <-ctx.Done():
			w.logger.Info("watcher stopping")
			return ctx.Err()
		case <-time.After(w.config.PollInterval):
		}
	}
}

// RunCycle performs exactly one watch cycle: enumerate windows, filter by
// class, search the first matching window for an Accept button, run the
// cascade, then sequence the Confirm stage. Exposed for the scan command
// and tests.
func (w *Watcher) RunCycle(ctx context.Context) (CycleResult, error) {
	result := CycleResult{}

	if !w.targetProcessRunning() {
		w.logger.Debug("target process not running, skipping cycle",
			zap.String("process", w.config.ProcessName))
		return result, nil
	}

	windows, err := w.au.TopLevelWindows()
	if err != nil {
		return result, fmt.Errorf("enumerate windows: %w", err)
	}

	for _, win := range windows {
		// Sole membership test for "this is our target application".
		if win.Class() != w.config.WindowClass {
			continue
		}
		result.WindowsScanned++

		handled, accept, confirm, err := w.scanWindow(ctx, win)
		if handled {
			// First handled window wins the cycle; remaining windows
			// wait for later cycles. An activation is recorded even
			// when a later step of the same scan failed.
			result.Window = win.Title()
			result.Accept = accept
			result.Confirm = confirm
			return result, err
		}
		if err != nil {
			return result, err
		}
		if ctx.Err() != nil {
			return result, nil
		}
	}

	return result, nil
}

// scanWindow runs the two-stage interaction against one window:
// Accept then Confirm, or Confirm alone when no Accept button exists.
func (w *Watcher) scanWindow(ctx context.Context, win domain.Window) (handled bool, accept, confirm *domain.InvocationResult, err error) {
	acceptCtl, err := w.findMatch(win, w.rules.Accept)
	if err != nil {
		return false, nil, nil, err
	}

	if acceptCtl != nil {
		res := w.cascade.Activate(ctx, acceptCtl, w.rules.Accept.Label)
		if res.Succeeded() {
			// A confirmation dialog may replace the accepted one; give
			// it a moment to appear, then search the same window again.
			// A cancellation observed here abandons the pending Confirm
			// stage: the accept already finished, nothing else may start.
			if !sleepCtx(ctx, w.config.SettleDelay) {
				return true, &res, nil, nil
			}

			confirmCtl, ferr := w.findMatch(win, w.rules.Confirm)
			if ferr != nil {
				// The accept already happened; report it and let the
				// cycle error surface for logging.
				return true, &res, nil, ferr
			}
			if confirmCtl == nil {
				// Many dialogs only ever have one button.
				return true, &res, nil, nil
			}
			cres := w.cascade.Activate(ctx, confirmCtl, w.rules.Confirm.Label)
			return true, &res, &cres, nil
		}
	}

	// No Accept button, or it could not be activated: some dialogs
	// present only a confirmation step.
	confirmCtl, err := w.findMatch(win, w.rules.Confirm)
	if err != nil {
		return false, nil, nil, err
	}
	if confirmCtl != nil {
		res := w.cascade.Activate(ctx, confirmCtl, w.rules.Confirm.Label)
		if res.Succeeded() {
			return true, nil, &res, nil
		}
	}

	return false, nil, nil, nil
}

// findMatch searches the window subtree for the first button whose name
// satisfies the rule. Candidate names are re-checked locally: a backend
// may return unfiltered candidates.
func (w *Watcher) findMatch(win domain.Window, rule policy.Rule) (domain.Control, error) {
	controls, err := w.au.FindControls(win, domain.ControlButton, rule.Pattern(), w.config.SearchDepth)
	if err != nil {
		return nil, fmt.Errorf("search %s controls: %w", rule.Label, err)
	}
	for _, c := range controls {
		if rule.Matches(c.Name()) {
			return c, nil
		}
	}
	return nil, nil
}

// targetProcessRunning applies the optional process gate: when a target
// process name is configured and no such process exists, the whole tree
// walk can be skipped cheaply.
func (w *Watcher) targetProcessRunning() bool {
	if w.config.ProcessName == "" || w.pm == nil {
		return true
	}
	pids, err := w.pm.FindByName(w.config.ProcessName)
	if err != nil {
		// Gate is an optimization only; fail open.
		return true
	}
	return len(pids) > 0
}

// sleepCtx sleeps for d unless the context is canceled first.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
