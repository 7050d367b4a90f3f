package domain

import (
	"errors"
	"regexp"
)

// ErrStrategyUnsupported is returned by an invocation primitive when the
// control does not implement that activation channel. The caller falls
// through to the next strategy; any other error is a backend fault.
var ErrStrategyUnsupported = errors.New("activation strategy not supported by control")

// Automation is the accessibility backend capability contract.
// Implementation: platform accessibility API (e.g. Windows UI Automation)
// or the pixel-template substitute in internal/infra/pixel.
type Automation interface {
	// TopLevelWindows enumerates all top-level windows with their
	// display name and class tag.
	TopLevelWindows() ([]Window, error)

	// FindControls searches the window subtree for controls of the given
	// type whose name matches namePattern, descending at most maxDepth
	// levels. A nil namePattern matches every control of the type.
	// Backends that cannot filter by name server-side may return
	// unfiltered candidates; callers re-check names themselves.
	FindControls(w Window, typ ControlType, namePattern *regexp.Regexp, maxDepth int) ([]Control, error)

	// Exists reports whether the control still backs a live UI element.
	// Must be cheap; it is called immediately before every action.
	Exists(c Control) bool

	// IsEnabled reports whether the control accepts activation.
	IsEnabled(c Control) (bool, error)

	// InvokeDefaultAction activates the control programmatically without
	// moving the pointer or changing focus.
	// Fails with ErrStrategyUnsupported or a backend error.
	InvokeDefaultAction(c Control) error

	// InvokeLegacyDefaultAction activates the control through the legacy
	// accessibility channel. Same non-intrusive guarantee.
	// Fails with ErrStrategyUnsupported or a backend error.
	InvokeLegacyDefaultAction(c Control) error

	// PhysicalClick moves the system pointer to the control's clickable
	// point and performs a press/release.
	PhysicalClick(c Control) error
}

// ProcessManager handles OS process lookups.
// Implementation: uses gopsutil for cross-platform support.
type ProcessManager interface {
	// FindByName returns PIDs of processes whose executable name equals
	// name, ignoring case and a trailing extension.
	FindByName(name string) ([]int, error)

	// IsRunning checks if a PID exists and is running.
	IsRunning(pid int) bool

	// GetCurrentPID returns the current process PID.
	GetCurrentPID() int
}
