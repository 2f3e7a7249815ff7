package safety

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shetautnetjer/alienfan/internal/actuators"
	"github.com/shetautnetjer/alienfan/internal/backend"
	"github.com/shetautnetjer/alienfan/internal/configuration"
	"github.com/shetautnetjer/alienfan/internal/ui"
)

// Monitor wraps every duty write with range validation, post-write
// verification and demotion bookkeeping. It is also responsible for the
// shutdown restore sequence.
type Monitor struct {
	opTimeout         time.Duration
	settleDelay       time.Duration
	verifyTolerance   int
	maxVerifyFailures int
	maxTimeoutStreak  int
}

func NewMonitor(config configuration.EngineConfig) *Monitor {
	return &Monitor{
		opTimeout:         config.OpTimeout,
		settleDelay:       config.SettleDelay,
		verifyTolerance:   config.VerifyTolerance,
		maxVerifyFailures: config.MaxVerifyFailures,
		maxTimeoutStreak:  config.MaxTimeoutStreak,
	}
}

// Apply validates, writes and verifies a single duty value. Errors are
// local to the actuator: the caller continues with the remaining
// actuators regardless of the outcome here.
func (m *Monitor) Apply(ctx context.Context, actuator *actuators.FanActuator, duty int) error {
	if duty < actuator.MinDuty() || duty > actuator.MaxDuty() {
		return fmt.Errorf("%s: duty %d outside safe range [%d, %d]: %w",
			actuator.ID, duty, actuator.MinDuty(), actuator.MaxDuty(), backend.ErrOutOfRange)
	}

	if actuator.Capability() != actuators.CapabilityReadWrite {
		return fmt.Errorf("%s: not writable: %w", actuator.ID, backend.ErrUnavailable)
	}

	// a verified write of the same value needs no rewrite; this also
	// keeps repeated identical demands from double-counting a mismatch
	if duty == actuator.LastDuty() && !actuator.LastVerified().IsZero() {
		return nil
	}

	writeCtx, cancelWrite := context.WithTimeout(ctx, m.opTimeout)
	defer cancelWrite()

	// take manual control before the duty write; with the enable attribute
	// in automatic mode the firmware reverts the value immediately
	if err := actuator.EnsureManualControl(writeCtx); err != nil {
		return m.recordWriteError(actuator, err)
	}

	if err := actuator.SetDuty(writeCtx, duty); err != nil {
		return m.recordWriteError(actuator, err)
	}

	if !m.settle(ctx) {
		return ctx.Err()
	}

	readCtx, cancelRead := context.WithTimeout(ctx, m.opTimeout)
	defer cancelRead()

	readBack, err := actuator.GetDuty(readCtx)
	if err != nil {
		return m.recordWriteError(actuator, err)
	}
	actuator.ResetTimeoutStreak()

	if abs(readBack-duty) > m.verifyTolerance {
		failures := actuator.CountVerifyFailure()
		ui.Warning("Verification failed for %s: wrote %d, read back %d (failure %d/%d)",
			actuator.ID, duty, readBack, failures, m.maxVerifyFailures)

		if failures >= m.maxVerifyFailures {
			// firmware keeps overriding our writes, stop fighting it
			ui.Warning("Demoting %s to read-only for the remainder of the run", actuator.ID)
			actuator.SetCapability(actuators.CapabilityReadOnly)
		}
		return fmt.Errorf("%s: wrote %d, read back %d: %w", actuator.ID, duty, readBack, backend.ErrVerificationMismatch)
	}

	actuator.MarkVerified(duty)
	return nil
}

// recordWriteError translates backend errors into capability changes:
// permission or availability problems exclude the actuator, a run of
// consecutive timeouts escalates to unavailable, a single timeout is
// transient and retried next tick.
func (m *Monitor) recordWriteError(actuator *actuators.FanActuator, err error) error {
	classified := backend.Classify(err)
	switch {
	case errors.Is(classified, backend.ErrPermissionDenied),
		errors.Is(classified, backend.ErrUnavailable):
		ui.Error("Actuator %s unusable (%v), excluding from control", actuator.ID, classified)
		actuator.SetCapability(actuators.CapabilityUnavailable)
	case errors.Is(classified, backend.ErrTimeout):
		streak := actuator.CountTimeout()
		if streak >= m.maxTimeoutStreak {
			ui.Error("Actuator %s timed out %d times in a row, excluding from control", actuator.ID, streak)
			actuator.SetCapability(actuators.CapabilityUnavailable)
		}
	}
	return err
}

// settle waits the configured settle delay, honoring cancellation.
// Returns false when the context was canceled.
func (m *Monitor) settle(ctx context.Context) bool {
	if m.settleDelay <= 0 {
		return true
	}
	timer := time.NewTimer(m.settleDelay)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	}
}

// RestoreAll performs one best-effort restore write to every actuator
// that was ever under read-write control during the run, regardless of
// its current demotion status. Failures are reported but not retried;
// shutdown must not hang here.
func (m *Monitor) RestoreAll(ctx context.Context, actuatorList []*actuators.FanActuator) error {
	var lastErr error
	for _, actuator := range actuatorList {
		if !actuator.EverWritable() {
			continue
		}

		restoreCtx, cancel := context.WithTimeout(ctx, m.opTimeout)
		err := actuator.Restore(restoreCtx)
		cancel()
		if err != nil {
			ui.Error("Failed to restore %s to firmware control: %v", actuator.ID, err)
			lastErr = err
			continue
		}
		ui.Info("Restored %s to firmware control", actuator.ID)
	}
	return lastErr
}

func abs(value int) int {
	if value < 0 {
		return -value
	}
	return value
}
