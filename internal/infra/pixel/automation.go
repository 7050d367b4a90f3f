package pixel

import (
	"regexp"

	"github.com/acceptd/acceptd/internal/domain"
)

// screenWindow is the single synthetic window the pixel backend exposes:
// the whole screen, tagged with whatever class the watch loop filters on.
type screenWindow struct {
	class string
}

func (w screenWindow) Title() string { return "screen" }
func (w screenWindow) Class() string { return w.class }

// pixelControl is a template match posing as a control handle.
type pixelControl struct {
	match Match
}

func (c pixelControl) Name() string             { return c.match.Template }
func (c pixelControl) Type() domain.ControlType { return domain.ControlButton }

// Backend adapts the detector to the Automation contract so the watch
// loop can drive it unchanged. Programmatic strategies are unsupported:
// pixels offer nothing but a physical click, and the invocation cascade
// degrades to it on its own.
type Backend struct {
	detector    *Detector
	windowClass string
}

// NewBackend wraps a detector. windowClass must equal the watcher's
// configured class filter or every cycle will skip the screen window.
func NewBackend(detector *Detector, windowClass string) *Backend {
	return &Backend{detector: detector, windowClass: windowClass}
}

func (b *Backend) TopLevelWindows() ([]domain.Window, error) {
	return []domain.Window{screenWindow{class: b.windowClass}}, nil
}

func (b *Backend) FindControls(w domain.Window, typ domain.ControlType, namePattern *regexp.Regexp, maxDepth int) ([]domain.Control, error) {
	if typ != domain.ControlButton {
		return nil, nil
	}
	if b.detector.CoolingDown() {
		return nil, nil
	}
	match, err := b.detector.Find(namePattern)
	if err != nil {
		return nil, err
	}
	if match == nil {
		return nil, nil
	}
	return []domain.Control{pixelControl{match: *match}}, nil
}

// Exists re-verifies the match against a fresh capture: the pixel
// equivalent of a ghost-handle check.
func (b *Backend) Exists(c domain.Control) bool {
	pc, ok := c.(pixelControl)
	if !ok {
		return false
	}
	return b.detector.Verify(&pc.match)
}

// IsEnabled always reports true; pixels cannot expose enabled state.
func (b *Backend) IsEnabled(c domain.Control) (bool, error) {
	return true, nil
}

func (b *Backend) InvokeDefaultAction(c domain.Control) error {
	return domain.ErrStrategyUnsupported
}

func (b *Backend) InvokeLegacyDefaultAction(c domain.Control) error {
	return domain.ErrStrategyUnsupported
}

func (b *Backend) PhysicalClick(c domain.Control) error {
	pc, ok := c.(pixelControl)
	if !ok {
		return domain.ErrStrategyUnsupported
	}
	return b.detector.Click(&pc.match)
}

// Ensure Backend implements domain.Automation.
var _ domain.Automation = (*Backend)(nil)
