package sched

import (
	"context"
	"time"

	"ngo-donation-platform/internal/domain/ports/repository"
	"ngo-donation-platform/internal/infra/metrics"

	"github.com/rs/zerolog"
)

// PendingSweeper periodically counts donations stuck in PENDING longer than
// staleAfter and exports the backlog. A hosted-checkout gateway offers no
// pull-style verify API, so the sweeper observes rather than finalizes; the
// notify webhook remains the authority.
type PendingSweeper struct {
	donations  repository.DonationRepository
	interval   time.Duration // how often to scan
	staleAfter time.Duration // how old a pending donation must be to count
	log        *zerolog.Logger
}

func NewPendingSweeper(donations repository.DonationRepository, interval, staleAfter time.Duration, logger *zerolog.Logger) *PendingSweeper {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	if staleAfter <= 0 {
		staleAfter = 30 * time.Minute
	}
	return &PendingSweeper{donations: donations, interval: interval, staleAfter: staleAfter, log: logger}
}

func (w *PendingSweeper) Run(ctx context.Context) error {
	t := time.NewTicker(w.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			w.tick(ctx)
		}
	}
}

func (w *PendingSweeper) tick(ctx context.Context) {
	cutoff := time.Now().Add(-w.staleAfter)
	n, err := w.donations.CountPendingOlderThan(ctx, repository.NoTX, cutoff)
	if err != nil {
		w.log.Error().Err(err).Msg("pending-sweeper: count failed")
		return
	}
	metrics.SetPendingBacklog(n)
	if n > 0 {
		w.log.Warn().Int("count", n).Dur("stale_after", w.staleAfter).Msg("pending-sweeper: stale pending donations")
	}
}
