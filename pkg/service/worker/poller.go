package worker

import (
	"context"
	"errors"
	"time"

	"github.com/secmon-lab/queuewatch/pkg/domain/interfaces"
	"github.com/secmon-lab/queuewatch/pkg/domain/model"
	"github.com/secmon-lab/queuewatch/pkg/domain/types"
	"github.com/secmon-lab/queuewatch/pkg/usecase"
	"github.com/secmon-lab/queuewatch/pkg/utils/logging"
)

// PollUseCase is the slice of the use-case layer the worker drives.
type PollUseCase interface {
	RunPollCycle(ctx context.Context, mode types.Mode) (*model.PollResult, error)
	ActiveMode(ctx context.Context) (types.Mode, error)
}

// Poller runs the poll cycle on a fixed interval, the service-side
// equivalent of the periodic alarm.
//
// Architecture assumptions:
// - Single server instance (no distributed locking)
// - A slow cycle may still be in flight when the next tick fires; the
//   idempotent dedup mark tolerates the overlap
type Poller struct {
	uc       PollUseCase
	notifier interfaces.Notifier
	interval time.Duration
	stopCh   chan struct{}
	doneCh   chan struct{}
}

// NewPoller creates a poll worker. notifier may be nil.
func NewPoller(uc PollUseCase, notifier interfaces.Notifier, interval time.Duration) *Poller {
	return &Poller{
		uc:       uc,
		notifier: notifier,
		interval: interval,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start begins the polling loop in a background goroutine. The first
// cycle runs immediately and does not block startup.
func (p *Poller) Start(ctx context.Context) error {
	logging.From(ctx).Info("poll worker starting", "interval", p.interval.String())

	go p.run(ctx)

	return nil
}

// Stop signals the worker to stop and waits for completion
func (p *Poller) Stop() {
	logging.Default().Info("poll worker stopping")
	close(p.stopCh)
	<-p.doneCh
	logging.Default().Info("poll worker stopped")
}

func (p *Poller) run(ctx context.Context) {
	defer close(p.doneCh)

	p.cycle(ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			p.cycle(ctx)

		case <-p.stopCh:
			logging.From(ctx).Info("poll worker received stop signal")
			return

		case <-ctx.Done():
			logging.From(ctx).Info("poll worker context cancelled")
			return
		}
	}
}

// cycle runs one poll pass. Failures are logged and the loop continues;
// the next tick retries naturally.
func (p *Poller) cycle(ctx context.Context) {
	logger := logging.From(ctx)

	mode, err := p.uc.ActiveMode(ctx)
	if err != nil {
		logger.Error("failed to read active mode (will retry next interval)", "error", err.Error())
		return
	}

	result, err := p.uc.RunPollCycle(ctx, mode)
	if err != nil {
		if errors.Is(err, usecase.ErrStaleCycle) {
			logger.Info("stale poll cycle discarded", "mode", mode)
			return
		}
		logger.Error("poll cycle failed (will retry next interval)",
			"mode", mode,
			"error", err.Error(),
		)
		return
	}

	if p.notifier == nil {
		return
	}

	if result.Foreground {
		if err := p.notifier.NotifyAttention(ctx, result); err != nil {
			logger.Error("failed to send attention signal", "error", err.Error())
		}
	} else {
		if err := p.notifier.NotifyAllClear(ctx, mode); err != nil {
			logger.Error("failed to send all-clear signal", "error", err.Error())
		}
	}
}
