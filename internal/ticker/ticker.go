// Package ticker drives the turn countdown: it periodically sweeps LIVE
// sessions and invokes the engine's timer tick for each. The tick
// operation itself is idempotent, so an external scheduler hitting the
// HTTP tick endpoint alongside this driver is harmless.
package ticker

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/courtlab/gavel/internal/courtroom"
	"github.com/courtlab/gavel/internal/model"
)

// Engine is the subset of the session engine the driver needs.
type Engine interface {
	ListSessions(ctx context.Context, filter model.SessionFilter) ([]*model.Session, error)
	Tick(ctx context.Context, sessionID string) (*courtroom.TickResult, error)
}

// Driver runs periodic timer sweeps over all live sessions.
type Driver struct {
	engine   Engine
	interval time.Duration
	logger   *slog.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewDriver creates a driver that ticks live sessions at the given
// interval.
func NewDriver(engine Engine, interval time.Duration, logger *slog.Logger) *Driver {
	return &Driver{
		engine:   engine,
		interval: interval,
		logger:   logger,
	}
}

// Start begins periodic sweeps. It sweeps once immediately, then on
// each tick.
func (d *Driver) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	d.cancel = cancel

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		d.run(ctx)
	}()
}

// Stop cancels the driver and waits for the current sweep to finish.
func (d *Driver) Stop() {
	if d.cancel != nil {
		d.cancel()
	}
	d.wg.Wait()
}

func (d *Driver) run(ctx context.Context) {
	d.SweepOnce(ctx)

	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			d.SweepOnce(ctx)
		}
	}
}

// SweepOnce ticks every live session once. Failures on one session do
// not stop the sweep.
func (d *Driver) SweepOnce(ctx context.Context) {
	sessions, err := d.engine.ListSessions(ctx, model.SessionFilter{
		Status: []model.SessionStatus{model.SessionLive},
	})
	if err != nil {
		d.logger.Error("tick sweep: listing live sessions failed", "err", err)
		return
	}

	for _, session := range sessions {
		result, err := d.engine.Tick(ctx, session.ID)
		if err != nil {
			d.logger.Error("tick failed", "session_id", session.ID, "err", err)
			continue
		}
		if result.Expired {
			d.logger.Info("turn expired",
				"session_id", session.ID, "turn_id", result.TurnID)
		}
	}
}
