// Package domain contains core business entities and interfaces.
// This is the innermost layer in Clean Architecture - no external dependencies.
package domain

// ControlType tags a UI element kind in the accessibility tree.
type ControlType string

const (
	ControlButton ControlType = "button"
	ControlText   ControlType = "text"
)

// Window is an opaque handle to a top-level window, owned by the
// accessibility backend. Handles are only valid within the poll cycle
// that enumerated them; windows may close or reopen between cycles.
type Window interface {
	// Title returns the window display name.
	Title() string

	// Class returns the window class tag, used to filter to the
	// target application (e.g. "Chrome_WidgetWin_1").
	Class() string
}

// Control is an opaque handle to a UI element inside a window subtree.
// A handle can go stale ("ghost") between discovery and use, so callers
// must re-verify it through Automation.Exists before acting on it.
type Control interface {
	// Name returns the control display name.
	Name() string

	// Type returns the control type tag.
	Type() ControlType
}

// Strategy identifies one of the activation mechanisms, in decreasing
// order of preference.
type Strategy string

const (
	// StrategyInvoke is the modern programmatic invocation. It does not
	// move the pointer or change focus.
	StrategyInvoke Strategy = "invoke"

	// StrategyLegacyAction is the legacy accessibility default action,
	// for controls that do not support StrategyInvoke.
	StrategyLegacyAction Strategy = "legacy-action"

	// StrategyPhysicalClick moves the pointer to the control and
	// performs a press/release. Last resort.
	StrategyPhysicalClick Strategy = "physical-click"
)

// Outcome classifies the result of an activation attempt.
type Outcome int

const (
	// OutcomeSucceeded means one of the strategies activated the control.
	OutcomeSucceeded Outcome = iota

	// OutcomeNotFound means the control disappeared before any strategy
	// was attempted. Normal "nothing to do" result.
	OutcomeNotFound

	// OutcomeDisabled means the control reported itself disabled; no
	// strategy was attempted.
	OutcomeDisabled

	// OutcomeAllFailed means every strategy was attempted and failed.
	OutcomeAllFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSucceeded:
		return "succeeded"
	case OutcomeNotFound:
		return "not-found"
	case OutcomeDisabled:
		return "disabled"
	case OutcomeAllFailed:
		return "all-strategies-failed"
	default:
		return "unknown"
	}
}

// InvocationResult captures what happened when activating a single control.
// Consumed immediately by the watch loop; never persisted.
type InvocationResult struct {
	Outcome  Outcome
	Strategy Strategy // set only when Outcome is OutcomeSucceeded
	Control  string   // display name of the control, for logging
}

// Succeeded reports whether any strategy activated the control.
func (r InvocationResult) Succeeded() bool {
	return r.Outcome == OutcomeSucceeded
}
