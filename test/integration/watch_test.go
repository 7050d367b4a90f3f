//go:build integration

package integration

import (
	"context"
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/acceptd/acceptd/internal/daemon"
	"github.com/acceptd/acceptd/internal/domain"
	"github.com/acceptd/acceptd/internal/policy"
	"github.com/acceptd/acceptd/internal/usecase"
	"github.com/acceptd/acceptd/test/fixtures"
)

func newWatcher(au domain.Automation) *daemon.Watcher {
	logger := zap.NewNop()
	config := daemon.DefaultWatcherConfig()
	config.PollInterval = time.Millisecond
	config.SettleDelay = 0
	cascade := usecase.NewCascade(au, usecase.CascadeConfig{}, logger)
	return daemon.NewWatcher(config, au, policy.DefaultRuleSet(), cascade, nil, logger)
}

var _ = Describe("Watch loop", func() {
	var (
		win *fixtures.FakeWindow
		au  *fixtures.FakeAutomation
	)

	BeforeEach(func() {
		win = &fixtures.FakeWindow{
			WindowTitle: "Antigravity - workspace",
			WindowClass: policy.DefaultWindowClass,
		}
		au = fixtures.NewFakeAutomation(win)
	})

	Describe("a two-stage dialog", func() {
		It("accepts and then confirms within one cycle", func() {
			accept := fixtures.NewButton("Accept All")
			accept.OnActivate = func(domain.Strategy) {
				// The accept dismisses itself and raises a confirmation.
				accept.Gone = true
				win.Buttons = append(win.Buttons, fixtures.NewButton("Confirm Changes"))
			}
			win.Buttons = []*fixtures.FakeButton{accept}

			result, err := newWatcher(au).RunCycle(context.Background())
			Expect(err).NotTo(HaveOccurred())

			Expect(result.Handled()).To(BeTrue())
			Expect(result.Accept).NotTo(BeNil())
			Expect(result.Confirm).NotTo(BeNil())
			Expect(au.ActivationLog()).To(Equal([]string{
				"Accept All/invoke",
				"Confirm Changes/invoke",
			}))
		})
	})

	Describe("a single-button dialog", func() {
		It("accepts without requiring a confirmation", func() {
			win.Buttons = []*fixtures.FakeButton{fixtures.NewButton("Accept")}

			result, err := newWatcher(au).RunCycle(context.Background())
			Expect(err).NotTo(HaveOccurred())

			Expect(result.Handled()).To(BeTrue())
			Expect(result.Confirm).To(BeNil())
			Expect(au.ActivationLog()).To(Equal([]string{"Accept/invoke"}))
		})

		It("falls back to confirm-only dialogs", func() {
			win.Buttons = []*fixtures.FakeButton{fixtures.NewButton("Confirm Changes")}

			result, err := newWatcher(au).RunCycle(context.Background())
			Expect(err).NotTo(HaveOccurred())

			Expect(result.Accept).To(BeNil())
			Expect(result.Confirm).NotTo(BeNil())
			Expect(au.ActivationLog()).To(Equal([]string{"Confirm Changes/invoke"}))
		})
	})

	Describe("strategy degradation", func() {
		It("reaches the physical click when programmatic channels are unsupported", func() {
			stubborn := &fixtures.FakeButton{
				ButtonName:    "Accept",
				SupportsClick: true,
			}
			win.Buttons = []*fixtures.FakeButton{stubborn}

			result, err := newWatcher(au).RunCycle(context.Background())
			Expect(err).NotTo(HaveOccurred())

			Expect(result.Handled()).To(BeTrue())
			Expect(result.Accept.Strategy).To(Equal(domain.StrategyPhysicalClick))
			Expect(au.ActivationLog()).To(Equal([]string{"Accept/physical-click"}))
		})
	})

	Describe("hostile conditions", func() {
		It("never touches a disabled button", func() {
			disabled := fixtures.NewButton("Accept All")
			disabled.Disabled = true
			win.Buttons = []*fixtures.FakeButton{disabled}

			result, err := newWatcher(au).RunCycle(context.Background())
			Expect(err).NotTo(HaveOccurred())

			Expect(result.Handled()).To(BeFalse())
			Expect(au.ActivationLog()).To(BeEmpty())
		})

		It("ignores windows of other applications", func() {
			other := &fixtures.FakeWindow{
				WindowTitle: "Notepad",
				WindowClass: "Notepad",
				Buttons:     []*fixtures.FakeButton{fixtures.NewButton("Accept")},
			}
			au = fixtures.NewFakeAutomation(other)

			result, err := newWatcher(au).RunCycle(context.Background())
			Expect(err).NotTo(HaveOccurred())

			Expect(result.WindowsScanned).To(BeZero())
			Expect(au.ActivationLog()).To(BeEmpty())
		})

		It("keeps watching after an enumeration failure", func() {
			au.EnumerateErrs = []error{errors.New("backend hiccup")}

			ctx, cancel := context.WithCancel(context.Background())
			done := make(chan error, 1)
			go func() { done <- newWatcher(au).Run(ctx) }()

			Eventually(au.Enumerations).Should(BeNumerically(">=", 2))

			cancel()
			Eventually(done).Should(Receive(MatchError(context.Canceled)))
		})

		It("stops promptly on cancellation and goes quiet", func() {
			ctx, cancel := context.WithCancel(context.Background())
			done := make(chan error, 1)
			go func() { done <- newWatcher(au).Run(ctx) }()

			Eventually(au.Enumerations).Should(BeNumerically(">=", 1))
			cancel()
			Eventually(done).Should(Receive(MatchError(context.Canceled)))

			after := au.Enumerations()
			Consistently(au.Enumerations, 50*time.Millisecond).Should(Equal(after))
		})
	})
})
