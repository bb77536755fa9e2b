// Package worker runs background maintenance jobs as deliveries.
package worker

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"booklib/config"
	"booklib/internal/delivery"
	"booklib/internal/domain/lifecycle"
	"booklib/internal/errors"
	"booklib/internal/usecase"
	"booklib/internal/util"

	"go.uber.org/fx"
)

// SweeperParams holds dependencies for the ledger sweeper
type SweeperParams struct {
	fx.In

	Lc       fx.Lifecycle
	Cfg      *config.Config
	Logger   *slog.Logger
	Sessions usecase.SessionUsecase
}

// ledgerSweeper periodically moves ledger entries past their expiry to EXPIRED.
type ledgerSweeper struct {
	sessions usecase.SessionUsecase
	interval time.Duration
	logger   *slog.Logger

	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
}

// NewLedgerSweeper creates the sweeper delivery
func NewLedgerSweeper(params SweeperParams) (delivery.Delivery, error) {
	if params.Cfg.Auth == nil || params.Cfg.Auth.LedgerSweepInterval <= 0 {
		return nil, errors.New("auth.ledgerSweepInterval must be positive")
	}

	s := newLedgerSweeper(params.Sessions, params.Cfg.Auth.LedgerSweepInterval, params.Logger)
	params.Lc.Append(fx.Hook{
		OnStop: s.shutdown,
	})

	return s, nil
}

func newLedgerSweeper(sessions usecase.SessionUsecase, interval time.Duration, logger *slog.Logger) *ledgerSweeper {
	return &ledgerSweeper{
		sessions: sessions,
		interval: interval,
		logger:   logger.With(slog.String("worker", "ledger_sweeper")),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Serve sweeps once per interval until ctx is canceled or the app stops
func (s *ledgerSweeper) Serve(ctx context.Context) error {
	defer close(s.done)

	s.logger.Info("Starting ledger sweeper", slog.String("interval", util.FormatDuration(s.interval)))
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-s.stop:
			return nil
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *ledgerSweeper) sweep(ctx context.Context) {
	sweepCtx, cancel := context.WithTimeout(ctx, lifecycle.DefaultTimeout)
	defer cancel()

	expired, err := s.sessions.ExpireStaleTokens(sweepCtx)
	if err != nil {
		s.logger.Error("Ledger sweep failed", slog.Any("error", err))

		return
	}
	if expired > 0 {
		s.logger.Info("Ledger sweep expired tokens", slog.Int64("expired", expired))
	}
}

// shutdown stops the loop and waits for an in-flight sweep to finish
func (s *ledgerSweeper) shutdown(ctx context.Context) error {
	s.stopOnce.Do(func() { close(s.stop) })

	s.logger.Info("Shutting down ledger sweeper")

	select {
	case <-s.done:
		return nil
	case <-ctx.Done():
		return errors.WithStack(ctx.Err())
	}
}
