// Package fixtures provides a scriptable in-memory automation backend for
// integration tests: a window tree that can be mutated mid-test the way a
// real application mutates its dialogs.
package fixtures

import (
	"regexp"
	"sync"

	"github.com/acceptd/acceptd/internal/domain"
)

// FakeWindow is a scriptable top-level window holding buttons.
type FakeWindow struct {
	WindowTitle string
	WindowClass string
	Buttons     []*FakeButton
}

func (w *FakeWindow) Title() string { return w.WindowTitle }
func (w *FakeWindow) Class() string { return w.WindowClass }

// FakeButton is a scriptable control. OnActivate fires on any successful
// strategy, letting a test mutate the tree the way a real dialog would
// (e.g. remove itself and add a confirm button).
type FakeButton struct {
	ButtonName string
	Disabled   bool
	Gone       bool // ghost: discovered but no longer exists

	// Per-strategy support. Zero value: only Invoke works.
	SupportsInvoke bool
	SupportsLegacy bool
	SupportsClick  bool

	OnActivate func(strategy domain.Strategy)
}

func (b *FakeButton) Name() string             { return b.ButtonName }
func (b *FakeButton) Type() domain.ControlType { return domain.ControlButton }

// NewButton returns an enabled button supporting programmatic invocation.
func NewButton(name string) *FakeButton {
	return &FakeButton{ButtonName: name, SupportsInvoke: true}
}

// FakeAutomation implements domain.Automation over scriptable windows.
type FakeAutomation struct {
	mu sync.Mutex

	Windows []*FakeWindow

	// EnumerateErrs is consumed one entry per TopLevelWindows call; nil
	// entries succeed. After the slice is exhausted, calls succeed.
	EnumerateErrs []error

	EnumerateCalls int
	FindCalls      int
	Activations    []string // "name/strategy" in order
}

// NewFakeAutomation builds a backend over the given windows.
func NewFakeAutomation(windows ...*FakeWindow) *FakeAutomation {
	return &FakeAutomation{Windows: windows}
}

func (f *FakeAutomation) TopLevelWindows() ([]domain.Window, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.EnumerateCalls
	f.EnumerateCalls++
	if i < len(f.EnumerateErrs) && f.EnumerateErrs[i] != nil {
		return nil, f.EnumerateErrs[i]
	}
	out := make([]domain.Window, len(f.Windows))
	for j, w := range f.Windows {
		out[j] = w
	}
	return out, nil
}

func (f *FakeAutomation) FindControls(w domain.Window, typ domain.ControlType, namePattern *regexp.Regexp, maxDepth int) ([]domain.Control, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.FindCalls++

	win, ok := w.(*FakeWindow)
	if !ok || typ != domain.ControlButton {
		return nil, nil
	}

	var out []domain.Control
	for _, b := range win.Buttons {
		if b.Gone {
			continue
		}
		if namePattern != nil && !namePattern.MatchString(b.ButtonName) {
			continue
		}
		out = append(out, b)
	}
	return out, nil
}

func (f *FakeAutomation) Exists(c domain.Control) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := c.(*FakeButton)
	return ok && !b.Gone
}

func (f *FakeAutomation) IsEnabled(c domain.Control) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := c.(*FakeButton)
	return ok && !b.Disabled, nil
}

func (f *FakeAutomation) InvokeDefaultAction(c domain.Control) error {
	return f.activate(c, domain.StrategyInvoke)
}

func (f *FakeAutomation) InvokeLegacyDefaultAction(c domain.Control) error {
	return f.activate(c, domain.StrategyLegacyAction)
}

func (f *FakeAutomation) PhysicalClick(c domain.Control) error {
	return f.activate(c, domain.StrategyPhysicalClick)
}

func (f *FakeAutomation) activate(c domain.Control, strategy domain.Strategy) error {
	f.mu.Lock()
	b, ok := c.(*FakeButton)
	if !ok {
		f.mu.Unlock()
		return domain.ErrStrategyUnsupported
	}

	supported := false
	switch strategy {
	case domain.StrategyInvoke:
		supported = b.SupportsInvoke
	case domain.StrategyLegacyAction:
		supported = b.SupportsLegacy
	case domain.StrategyPhysicalClick:
		supported = b.SupportsClick
	}
	if !supported {
		f.mu.Unlock()
		return domain.ErrStrategyUnsupported
	}

	f.Activations = append(f.Activations, b.ButtonName+"/"+string(strategy))
	callback := b.OnActivate
	f.mu.Unlock()

	// Outside the lock: callbacks mutate the tree through the fake's
	// own exported methods.
	if callback != nil {
		callback(strategy)
	}
	return nil
}

// ActivationLog returns a copy of the recorded activations.
func (f *FakeAutomation) ActivationLog() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.Activations...)
}

// Enumerations returns the number of TopLevelWindows calls so far.
func (f *FakeAutomation) Enumerations() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.EnumerateCalls
}

// Ensure FakeAutomation implements domain.Automation.
var _ domain.Automation = (*FakeAutomation)(nil)
