// Package usecase contains application business logic.
package usecase

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/acceptd/acceptd/internal/domain"
)

// Activator is one activation mechanism behind a single capability
// interface. The cascade iterates an ordered list of these and returns
// on the first success, so new strategies can be added without touching
// the watch loop.
type Activator interface {
	// Strategy names the mechanism for logging and results.
	Strategy() domain.Strategy

	// Attempt tries to activate the control. Returns
	// domain.ErrStrategyUnsupported when the control lacks this channel,
	// any other error on a backend fault.
	Attempt(c domain.Control) error
}

type invokeActivator struct {
	au domain.Automation
}

func (a invokeActivator) Strategy() domain.Strategy { return domain.StrategyInvoke }
func (a invokeActivator) Attempt(c domain.Control) error {
	return a.au.InvokeDefaultAction(c)
}

type legacyActivator struct {
	au domain.Automation
}

func (a legacyActivator) Strategy() domain.Strategy { return domain.StrategyLegacyAction }
func (a legacyActivator) Attempt(c domain.Control) error {
	return a.au.InvokeLegacyDefaultAction(c)
}

type clickActivator struct {
	au domain.Automation
}

func (a clickActivator) Strategy() domain.Strategy { return domain.StrategyPhysicalClick }
func (a clickActivator) Attempt(c domain.Control) error {
	return a.au.PhysicalClick(c)
}

// CascadeConfig holds cascade timing configuration.
type CascadeConfig struct {
	// PreClickDelay is waited between discovery and the first strategy,
	// so a dialog that is still animating in is not acted on. The
	// control is re-verified after the wait.
	PreClickDelay time.Duration

	// SettleDelay is waited after a successful activation before
	// returning, giving the target application time to react.
	SettleDelay time.Duration
}

// Cascade activates a single control using the least invasive strategy
// that works: programmatic invoke, then legacy default action, then a
// physical pointer click.
type Cascade struct {
	au         domain.Automation
	activators []Activator
	config     CascadeConfig
	logger     *zap.Logger
}

// NewCascade creates a cascade with the standard strategy order.
func NewCascade(au domain.Automation, config CascadeConfig, logger *zap.Logger) *Cascade {
	return NewCascadeWithActivators(au, config, logger,
		invokeActivator{au: au},
		legacyActivator{au: au},
		clickActivator{au: au},
	)
}

// NewCascadeWithActivators creates a cascade with a custom strategy list
// (for testing and for backends with a reduced strategy set).
func NewCascadeWithActivators(au domain.Automation, config CascadeConfig, logger *zap.Logger, activators ...Activator) *Cascade {
	return &Cascade{
		au:         au,
		activators: activators,
		config:     config,
		logger:     logger,
	}
}

// Activate runs the strategy cascade against one discovered control.
// label is the rule label ("Accept", "Confirm") for logging.
//
// The control is re-verified immediately before acting: once on entry,
// and again after the pre-click delay if one is configured. A handle
// that was valid at discovery time is never trusted across a time gap.
func (c *Cascade) Activate(ctx context.Context, control domain.Control, label string) domain.InvocationResult {
	result := domain.InvocationResult{Control: control.Name()}

	// Nothing new starts after cancellation; only an activation already
	// past this point is allowed to finish.
	if ctx.Err() != nil {
		result.Outcome = domain.OutcomeNotFound
		return result
	}

	if !c.au.Exists(control) {
		result.Outcome = domain.OutcomeNotFound
		return result
	}

	c.logger.Info("found button",
		zap.String("label", label),
		zap.String("name", result.Control))

	enabled, err := c.au.IsEnabled(control)
	if err != nil {
		// Can't verify state; treat like a ghost rather than click blind.
		c.logger.Warn("enabled check failed",
			zap.String("label", label),
			zap.Error(err))
		result.Outcome = domain.OutcomeNotFound
		return result
	}
	if !enabled {
		c.logger.Info("button disabled, skipping",
			zap.String("label", label),
			zap.String("name", result.Control))
		result.Outcome = domain.OutcomeDisabled
		return result
	}

	if c.config.PreClickDelay > 0 {
		if !sleepCtx(ctx, c.config.PreClickDelay) {
			result.Outcome = domain.OutcomeNotFound
			return result
		}
		// The dialog may have closed or changed during the wait.
		if !c.au.Exists(control) {
			c.logger.Info("button vanished during pre-click delay",
				zap.String("label", label),
				zap.String("name", result.Control))
			result.Outcome = domain.OutcomeNotFound
			return result
		}
		enabled, err = c.au.IsEnabled(control)
		if err != nil || !enabled {
			result.Outcome = domain.OutcomeDisabled
			return result
		}
	}

	for _, activator := range c.activators {
		if err := activator.Attempt(control); err != nil {
			if errors.Is(err, domain.ErrStrategyUnsupported) {
				c.logger.Debug("strategy unsupported",
					zap.String("label", label),
					zap.String("strategy", string(activator.Strategy())))
			} else {
				c.logger.Warn("strategy failed",
					zap.String("label", label),
					zap.String("strategy", string(activator.Strategy())),
					zap.Error(err))
			}
			continue
		}

		c.logger.Info("button activated",
			zap.String("label", label),
			zap.String("name", result.Control),
			zap.String("strategy", string(activator.Strategy())))

		sleepCtx(ctx, c.config.SettleDelay)

		result.Outcome = domain.OutcomeSucceeded
		result.Strategy = activator.Strategy()
		return result
	}

	c.logger.Warn("all strategies failed",
		zap.String("label", label),
		zap.String("name", result.Control))
	result.Outcome = domain.OutcomeAllFailed
	return result
}

// sleepCtx sleeps for d unless the context is canceled first.
// Returns false if the sleep was interrupted.
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
