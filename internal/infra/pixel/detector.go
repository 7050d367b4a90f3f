package pixel

import (
	"fmt"
	"image"
	"regexp"
	"time"

	"go.uber.org/zap"
)

// Capturer grabs the current screen contents.
// Implementation: platform screen-capture API; tests use canned images.
type Capturer interface {
	Capture() (image.Image, error)
}

// Pointer drives the system pointer.
type Pointer interface {
	MoveTo(x, y int) error
	Click(x, y int) error
}

// Template is a named button image to hunt for.
type Template struct {
	Name  string
	Image image.Image
}

// Config holds detector tuning.
type Config struct {
	// Confidence is the minimum score for a hit. High by default to
	// avoid misclicks on similarly colored UI elements.
	Confidence float64

	// Scale downsamples both screen and template before the search
	// (0 < Scale <= 1). 1 disables scaling.
	Scale float64

	// Cooldown suppresses detection after a click while the dialog
	// vanishes, so the same frame is not clicked twice.
	Cooldown time.Duration

	// ParkOffset is how far (in pixels, downward) the pointer is moved
	// away after a click so it does not hover over fresh UI.
	ParkOffset int
}

// DefaultConfig mirrors the tuning the detector shipped with.
func DefaultConfig() Config {
	return Config{
		Confidence: 0.9,
		Scale:      1.0,
		Cooldown:   2 * time.Second,
		ParkOffset: 100,
	}
}

// Detector finds configured button templates on screen and clicks them.
type Detector struct {
	capturer  Capturer
	pointer   Pointer
	templates []Template
	config    Config
	logger    *zap.Logger

	lastClick time.Time
}

// NewDetector creates a detector over the given capture/pointer backends.
func NewDetector(capturer Capturer, pointer Pointer, templates []Template, config Config, logger *zap.Logger) *Detector {
	if config.Confidence <= 0 {
		config.Confidence = DefaultConfig().Confidence
	}
	if config.Scale <= 0 || config.Scale > 1 {
		config.Scale = 1.0
	}
	return &Detector{
		capturer:  capturer,
		pointer:   pointer,
		templates: templates,
		config:    config,
		logger:    logger,
	}
}

// CoolingDown reports whether a recent click still suppresses detection.
func (d *Detector) CoolingDown() bool {
	return d.config.Cooldown > 0 && time.Since(d.lastClick) < d.config.Cooldown
}

// Find captures the screen once and returns the best template hit at or
// above the confidence threshold. filter limits which templates are
// considered (nil: all). Returns nil when nothing matches.
func (d *Detector) Find(filter *regexp.Regexp) (*Match, error) {
	raw, err := d.capturer.Capture()
	if err != nil {
		return nil, fmt.Errorf("capture screen: %w", err)
	}
	screen := scaleRGBA(toRGBA(raw), d.config.Scale)

	var best *Match
	for _, tmpl := range d.templates {
		if filter != nil && !filter.MatchString(tmpl.Name) {
			continue
		}
		scaled := scaleRGBA(toRGBA(tmpl.Image), d.config.Scale)
		at, score := locate(screen, scaled)
		if score < d.config.Confidence {
			continue
		}
		if best != nil && score <= best.Score {
			continue
		}
		best = &Match{
			Template: tmpl.Name,
			Bounds:   d.unscale(at, tmpl.Image.Bounds()),
			Score:    score,
		}
	}

	if best != nil {
		d.logger.Info("template matched",
			zap.String("template", best.Template),
			zap.Float64("score", best.Score),
			zap.Int("x", best.Center().X),
			zap.Int("y", best.Center().Y))
	}
	return best, nil
}

// Verify re-captures the screen and re-scores the match region. A match
// that no longer holds is a ghost and must not be clicked.
func (d *Detector) Verify(m *Match) bool {
	var tmplImg image.Image
	for _, t := range d.templates {
		if t.Name == m.Template {
			tmplImg = t.Image
			break
		}
	}
	if tmplImg == nil {
		return false
	}

	raw, err := d.capturer.Capture()
	if err != nil {
		return false
	}
	screen := toRGBA(raw)
	tmpl := toRGBA(tmplImg)

	origin := m.Bounds.Min.Sub(screen.Bounds().Min)
	if origin.X < 0 || origin.Y < 0 ||
		origin.X+tmpl.Bounds().Dx() > screen.Bounds().Dx() ||
		origin.Y+tmpl.Bounds().Dy() > screen.Bounds().Dy() {
		return false
	}
	return scoreAt(screen, tmpl, origin.X, origin.Y) >= d.config.Confidence
}

// Click verifies the match one more time, clicks its center, and parks
// the pointer away from the dialog area.
func (d *Detector) Click(m *Match) error {
	if !d.Verify(m) {
		d.logger.Info("skipping click, match disappeared",
			zap.String("template", m.Template))
		return fmt.Errorf("match %s no longer on screen", m.Template)
	}

	center := m.Center()
	if err := d.pointer.Click(center.X, center.Y); err != nil {
		return fmt.Errorf("click %s at (%d,%d): %w", m.Template, center.X, center.Y, err)
	}
	d.lastClick = time.Now()

	d.logger.Info("clicked template",
		zap.String("template", m.Template),
		zap.Int("x", center.X),
		zap.Int("y", center.Y))

	if d.config.ParkOffset > 0 {
		// Best effort; a failed park does not undo the click.
		_ = d.pointer.MoveTo(center.X, center.Y+d.config.ParkOffset)
	}
	return nil
}

// unscale converts a scaled-search offset back to screen coordinates.
func (d *Detector) unscale(at image.Point, tmplBounds image.Rectangle) image.Rectangle {
	if d.config.Scale >= 1 {
		return image.Rect(at.X, at.Y, at.X+tmplBounds.Dx(), at.Y+tmplBounds.Dy())
	}
	x := int(float64(at.X) / d.config.Scale)
	y := int(float64(at.Y) / d.config.Scale)
	return image.Rect(x, y, x+tmplBounds.Dx(), y+tmplBounds.Dy())
}
