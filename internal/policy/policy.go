// Package policy defines the name-match rules that decide which dialog
// buttons the watcher is allowed to activate.
package policy

import (
	"fmt"
	"regexp"
	"time"
)

// Defaults mirror the documented process surface: watch for Accept-style
// buttons, then Confirm-style buttons, inside the target app's windows.
const (
	DefaultAcceptPattern  = "Accept.*"
	DefaultConfirmPattern = "Confirm.*"

	// DefaultWindowClass is the top-level window class of the target
	// application (Electron/Chromium shell windows).
	DefaultWindowClass = "Chrome_WidgetWin_1"

	// DefaultSearchDepth bounds the subtree walk. The accept/confirm
	// buttons live in a shallow region; deep trees are expensive.
	DefaultSearchDepth = 15
)

const (
	// DefaultPollInterval is the sleep between watch cycles.
	DefaultPollInterval = 500 * time.Millisecond

	// DefaultSettleDelay is the pause after an activation, giving the
	// target application time to process it before the next query.
	DefaultSettleDelay = 500 * time.Millisecond

	// DefaultPreClickDelay is the wait between finding a control and
	// acting on it. Zero: act immediately.
	DefaultPreClickDelay = 0 * time.Millisecond
)

// Rule is a compiled control-name pattern with a human label.
// Immutable; built once at startup.
type Rule struct {
	Label   string
	pattern *regexp.Regexp
}

// NewRule compiles expr into a Rule labeled label.
func NewRule(label, expr string) (Rule, error) {
	re, err := regexp.Compile(expr)
	if err != nil {
		return Rule{}, fmt.Errorf("compile %s pattern %q: %w", label, expr, err)
	}
	return Rule{Label: label, pattern: re}, nil
}

// Matches reports whether a control name satisfies the rule.
// Case-sensitive full regular-expression semantics; a pattern anchors
// only if it says so. Safe on empty or garbage names.
func (r Rule) Matches(name string) bool {
	if r.pattern == nil {
		return false
	}
	return r.pattern.MatchString(name)
}

// Pattern returns the compiled expression, for backends that can filter
// by name server-side.
func (r Rule) Pattern() *regexp.Regexp {
	return r.pattern
}

func (r Rule) String() string {
	if r.pattern == nil {
		return r.Label + ":<none>"
	}
	return r.Label + ":" + r.pattern.String()
}

// RuleSet bundles the two-stage accept/confirm rules.
type RuleSet struct {
	Accept  Rule
	Confirm Rule
}

// NewRuleSet compiles both patterns.
func NewRuleSet(acceptExpr, confirmExpr string) (RuleSet, error) {
	accept, err := NewRule("Accept", acceptExpr)
	if err != nil {
		return RuleSet{}, err
	}
	confirm, err := NewRule("Confirm", confirmExpr)
	if err != nil {
		return RuleSet{}, err
	}
	return RuleSet{Accept: accept, Confirm: confirm}, nil
}

// DefaultRuleSet returns the Accept.*/Confirm.* rules.
func DefaultRuleSet() RuleSet {
	rs, err := NewRuleSet(DefaultAcceptPattern, DefaultConfirmPattern)
	if err != nil {
		// Default patterns are compile-time constants; this cannot happen.
		panic(err)
	}
	return rs
}
