package usecase

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/acceptd/acceptd/internal/domain"
)

// fakeControl implements domain.Control for testing
type fakeControl struct {
	name string
	typ  domain.ControlType
}

func (c fakeControl) Name() string             { return c.name }
func (c fakeControl) Type() domain.ControlType { return c.typ }

// mockAutomation implements domain.Automation with scriptable behavior
// and per-primitive call counters
type mockAutomation struct {
	existsResults []bool // consumed in order; last value repeats
	existsCalls   int
	enabled       bool
	enabledErr    error
	enabledCalls  int

	invokeErr error
	legacyErr error
	clickErr  error

	invokeCalls int
	legacyCalls int
	clickCalls  int
}

func (m *mockAutomation) TopLevelWindows() ([]domain.Window, error) { return nil, nil }

func (m *mockAutomation) FindControls(w domain.Window, typ domain.ControlType, pattern *regexp.Regexp, maxDepth int) ([]domain.Control, error) {
	return nil, nil
}

func (m *mockAutomation) Exists(c domain.Control) bool {
	i := m.existsCalls
	m.existsCalls++
	if len(m.existsResults) == 0 {
		return true
	}
	if i >= len(m.existsResults) {
		i = len(m.existsResults) - 1
	}
	return m.existsResults[i]
}

func (m *mockAutomation) IsEnabled(c domain.Control) (bool, error) {
	m.enabledCalls++
	return m.enabled, m.enabledErr
}

func (m *mockAutomation) InvokeDefaultAction(c domain.Control) error {
	m.invokeCalls++
	return m.invokeErr
}

func (m *mockAutomation) InvokeLegacyDefaultAction(c domain.Control) error {
	m.legacyCalls++
	return m.legacyErr
}

func (m *mockAutomation) PhysicalClick(c domain.Control) error {
	m.clickCalls++
	return m.clickErr
}

func newTestCascade(au domain.Automation, config CascadeConfig) *Cascade {
	return NewCascade(au, config, zap.NewNop())
}

var testButton = fakeControl{name: "Accept All", typ: domain.ControlButton}

// TestCascade_FirstStrategyWins verifies strategies 2 and 3 are never
// attempted when invoke succeeds
func TestCascade_FirstStrategyWins(t *testing.T) {
	au := &mockAutomation{enabled: true}
	cascade := newTestCascade(au, CascadeConfig{})

	result := cascade.Activate(context.Background(), testButton, "Accept")

	require.True(t, result.Succeeded())
	assert.Equal(t, domain.StrategyInvoke, result.Strategy)
	assert.Equal(t, 1, au.invokeCalls)
	assert.Equal(t, 0, au.legacyCalls)
	assert.Equal(t, 0, au.clickCalls)
}

// TestCascade_FallsBackToLegacy verifies the second channel is used when
// invoke is unsupported
func TestCascade_FallsBackToLegacy(t *testing.T) {
	au := &mockAutomation{
		enabled:   true,
		invokeErr: domain.ErrStrategyUnsupported,
	}
	cascade := newTestCascade(au, CascadeConfig{})

	result := cascade.Activate(context.Background(), testButton, "Accept")

	require.True(t, result.Succeeded())
	assert.Equal(t, domain.StrategyLegacyAction, result.Strategy)
	assert.Equal(t, 1, au.invokeCalls)
	assert.Equal(t, 1, au.legacyCalls)
	assert.Equal(t, 0, au.clickCalls)
}

// TestCascade_PhysicalClickLastResort verifies exactly one click when both
// programmatic channels are unsupported
func TestCascade_PhysicalClickLastResort(t *testing.T) {
	au := &mockAutomation{
		enabled:   true,
		invokeErr: domain.ErrStrategyUnsupported,
		legacyErr: domain.ErrStrategyUnsupported,
	}
	cascade := newTestCascade(au, CascadeConfig{})

	result := cascade.Activate(context.Background(), testButton, "Accept")

	require.True(t, result.Succeeded())
	assert.Equal(t, domain.StrategyPhysicalClick, result.Strategy)
	assert.Equal(t, 1, au.clickCalls)
}

// TestCascade_BackendFaultDoesNotAbort verifies a strategy-level fault is
// contained and the next strategy is tried
func TestCascade_BackendFaultDoesNotAbort(t *testing.T) {
	au := &mockAutomation{
		enabled:   true,
		invokeErr: errors.New("COM call failed"),
	}
	cascade := newTestCascade(au, CascadeConfig{})

	result := cascade.Activate(context.Background(), testButton, "Accept")

	require.True(t, result.Succeeded())
	assert.Equal(t, domain.StrategyLegacyAction, result.Strategy)
}

// TestCascade_AllStrategiesFailed verifies the terminal outcome when every
// channel errors
func TestCascade_AllStrategiesFailed(t *testing.T) {
	au := &mockAutomation{
		enabled:   true,
		invokeErr: errors.New("boom"),
		legacyErr: domain.ErrStrategyUnsupported,
		clickErr:  errors.New("pointer blocked"),
	}
	cascade := newTestCascade(au, CascadeConfig{})

	result := cascade.Activate(context.Background(), testButton, "Accept")

	assert.Equal(t, domain.OutcomeAllFailed, result.Outcome)
	assert.Equal(t, 1, au.invokeCalls)
	assert.Equal(t, 1, au.legacyCalls)
	assert.Equal(t, 1, au.clickCalls)
}

// TestCascade_DisabledShortCircuits verifies a disabled control reaches no
// strategy at all
func TestCascade_DisabledShortCircuits(t *testing.T) {
	au := &mockAutomation{enabled: false}
	cascade := newTestCascade(au, CascadeConfig{})

	result := cascade.Activate(context.Background(), testButton, "Accept")

	assert.Equal(t, domain.OutcomeDisabled, result.Outcome)
	assert.Equal(t, 0, au.invokeCalls)
	assert.Equal(t, 0, au.legacyCalls)
	assert.Equal(t, 0, au.clickCalls)
}

// TestCascade_GhostControl verifies a control that vanished between
// discovery and activation is not acted on
func TestCascade_GhostControl(t *testing.T) {
	au := &mockAutomation{existsResults: []bool{false}, enabled: true}
	cascade := newTestCascade(au, CascadeConfig{})

	result := cascade.Activate(context.Background(), testButton, "Accept")

	assert.Equal(t, domain.OutcomeNotFound, result.Outcome)
	assert.Equal(t, 0, au.enabledCalls)
	assert.Equal(t, 0, au.invokeCalls)
	assert.Equal(t, 0, au.clickCalls)
}

// TestCascade_RevalidatesAfterPreClickDelay verifies the control is checked
// again after the configured wait, and a vanished control is not clicked
func TestCascade_RevalidatesAfterPreClickDelay(t *testing.T) {
	au := &mockAutomation{
		existsResults: []bool{true, false}, // alive at entry, gone after delay
		enabled:       true,
	}
	cascade := newTestCascade(au, CascadeConfig{PreClickDelay: time.Millisecond})

	result := cascade.Activate(context.Background(), testButton, "Accept")

	assert.Equal(t, domain.OutcomeNotFound, result.Outcome)
	assert.Equal(t, 2, au.existsCalls)
	assert.Equal(t, 0, au.invokeCalls)
	assert.Equal(t, 0, au.clickCalls)
}

// TestCascade_PreClickDelayThenActivate verifies the happy path through the
// delay performs a fresh enabled check before acting
func TestCascade_PreClickDelayThenActivate(t *testing.T) {
	au := &mockAutomation{enabled: true}
	cascade := newTestCascade(au, CascadeConfig{PreClickDelay: time.Millisecond})

	result := cascade.Activate(context.Background(), testButton, "Accept")

	require.True(t, result.Succeeded())
	assert.Equal(t, 2, au.existsCalls)
	assert.Equal(t, 2, au.enabledCalls)
}

// TestCascade_CanceledDuringDelay verifies cancellation aborts before any
// strategy is attempted
func TestCascade_CanceledDuringDelay(t *testing.T) {
	au := &mockAutomation{enabled: true}
	cascade := newTestCascade(au, CascadeConfig{PreClickDelay: time.Second})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result := cascade.Activate(ctx, testButton, "Accept")

	assert.Equal(t, domain.OutcomeNotFound, result.Outcome)
	assert.Equal(t, 0, au.invokeCalls)
	assert.Equal(t, 0, au.legacyCalls)
	assert.Equal(t, 0, au.clickCalls)
}

// TestCascade_CanceledBeforeStart verifies an already-canceled context never
// touches the backend, even with zero configured delays
func TestCascade_CanceledBeforeStart(t *testing.T) {
	au := &mockAutomation{enabled: true}
	cascade := newTestCascade(au, CascadeConfig{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result := cascade.Activate(ctx, testButton, "Confirm")

	assert.Equal(t, domain.OutcomeNotFound, result.Outcome)
	assert.Equal(t, 0, au.existsCalls)
	assert.Equal(t, 0, au.enabledCalls)
	assert.Equal(t, 0, au.invokeCalls)
	assert.Equal(t, 0, au.legacyCalls)
	assert.Equal(t, 0, au.clickCalls)
}

// TestCascade_EnabledCheckError verifies an unverifiable control is treated
// as gone rather than clicked blind
func TestCascade_EnabledCheckError(t *testing.T) {
	au := &mockAutomation{enabledErr: errors.New("element stale")}
	cascade := newTestCascade(au, CascadeConfig{})

	result := cascade.Activate(context.Background(), testButton, "Accept")

	assert.Equal(t, domain.OutcomeNotFound, result.Outcome)
	assert.Equal(t, 0, au.invokeCalls)
}

// TestCascade_ResultCarriesControlName verifies the result names the
// control for logging
func TestCascade_ResultCarriesControlName(t *testing.T) {
	au := &mockAutomation{enabled: true}
	cascade := newTestCascade(au, CascadeConfig{})

	result := cascade.Activate(context.Background(), testButton, "Accept")

	assert.Equal(t, "Accept All", result.Control)
}

// TestSleepCtx verifies the interruptible sleep helper
func TestSleepCtx(t *testing.T) {
	assert.True(t, sleepCtx(context.Background(), 0))
	assert.True(t, sleepCtx(context.Background(), time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.False(t, sleepCtx(ctx, time.Hour))
	assert.False(t, sleepCtx(ctx, 0))
}
