package usecase

import (
	"context"

	"ngo-donation-platform/internal/domain/model"
	"ngo-donation-platform/internal/domain/ports/repository"
	"ngo-donation-platform/internal/infra/logging"

	"github.com/rs/zerolog"
)

// Compile-time check
var _ StatsUseCase = (*statsUC)(nil)

// StatsUseCase backs the admin dashboard header figures.
type StatsUseCase interface {
	// Totals returns the number of USER-role registrations and the sum of
	// SUCCESS donation amounts.
	Totals(ctx context.Context) (totalUsers int, totalDonations float64, err error)
}

type statsUC struct {
	users     repository.UserRepository
	donations repository.DonationRepository
	log       *zerolog.Logger
}

func NewStatsUseCase(users repository.UserRepository, donations repository.DonationRepository, logger *zerolog.Logger) *statsUC {
	return &statsUC{users: users, donations: donations, log: logger}
}

func (u *statsUC) Totals(ctx context.Context) (int, float64, error) {
	log := logging.With(ctx, u.log)
	defer logging.TraceDuration(log, "StatsUC.Totals")()

	totalUsers, err := u.users.CountByRole(ctx, repository.NoTX, model.RoleUser)
	if err != nil {
		return 0, 0, err
	}
	totalDonations, err := u.donations.SumAmountByStatus(ctx, repository.NoTX, model.DonationStatusSuccess)
	if err != nil {
		return 0, 0, err
	}
	return totalUsers, totalDonations, nil
}
