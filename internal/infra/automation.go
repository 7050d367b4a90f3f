// Package infra implements infrastructure concerns (automation backends,
// process lookups).
package infra

import (
	"fmt"
	"runtime"

	"github.com/acceptd/acceptd/internal/domain"
)

// ErrUnsupported is returned when no accessibility backend has been
// registered for the current platform.
var ErrUnsupported = fmt.Errorf("no accessibility backend is registered for %s/%s", runtime.GOOS, runtime.GOARCH)

// NewAutomationFunc is set by platform-specific backend packages via
// init(). The accessibility layer (e.g. Windows UI Automation) lives
// behind this hook so the core never links platform API bindings
// directly.
var NewAutomationFunc func() (domain.Automation, error)

// NewAutomation returns the registered accessibility backend.
func NewAutomation() (domain.Automation, error) {
	if NewAutomationFunc == nil {
		return nil, ErrUnsupported
	}
	return NewAutomationFunc()
}
