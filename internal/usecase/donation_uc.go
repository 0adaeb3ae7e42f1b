package usecase

import (
	"context"
	"errors"
	"strings"

	"ngo-donation-platform/internal/domain"
	"ngo-donation-platform/internal/domain/model"
	"ngo-donation-platform/internal/domain/ports/repository"
	"ngo-donation-platform/internal/infra/adapters/payment"
	"ngo-donation-platform/internal/infra/logging"
	"ngo-donation-platform/internal/infra/metrics"

	"github.com/rs/zerolog"
)

// Compile-time check
var _ DonationUseCase = (*donationUC)(nil)

type DonationUseCase interface {
	// Initiate creates a PENDING donation for the owner and returns it along
	// with the signed hosted-checkout payload for the gateway redirect.
	Initiate(ctx context.Context, ownerID string, amount float64) (*model.Donation, payment.CheckoutRequest, error)
	// ListMine returns the owner's donations, newest first.
	ListMine(ctx context.Context, ownerID string) ([]*model.Donation, error)
	// ListAll returns every donation with donor details (admin view).
	ListAll(ctx context.Context) ([]*model.DonationWithDonor, error)
}

type donationUC struct {
	donations repository.DonationRepository
	users     repository.UserRepository
	signer    *payment.Signer
	checkout  payment.CheckoutConfig
	gateway   string
	log       *zerolog.Logger
}

func NewDonationUseCase(
	donations repository.DonationRepository,
	users repository.UserRepository,
	signer *payment.Signer,
	checkout payment.CheckoutConfig,
	gatewayMode string,
	logger *zerolog.Logger,
) *donationUC {
	gateway := model.GatewayMock
	if strings.EqualFold(gatewayMode, "payhere") {
		gateway = model.GatewayPayHere
	}
	return &donationUC{
		donations: donations,
		users:     users,
		signer:    signer,
		checkout:  checkout,
		gateway:   gateway,
		log:       logger,
	}
}

func (u *donationUC) Initiate(ctx context.Context, ownerID string, amount float64) (*model.Donation, payment.CheckoutRequest, error) {
	log := logging.With(ctx, u.log)
	defer logging.TraceDuration(log, "DonationUC.Initiate")()

	if amount <= 0 {
		return nil, payment.CheckoutRequest{}, domain.ErrInvalidArgument
	}
	owner, err := u.users.FindByID(ctx, repository.NoTX, ownerID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrUserNotFound) {
			return nil, payment.CheckoutRequest{}, domain.ErrUserNotFound
		}
		return nil, payment.CheckoutRequest{}, err
	}

	d, err := model.NewDonation(ownerID, amount, u.gateway)
	if err != nil {
		return nil, payment.CheckoutRequest{}, err
	}
	if err := u.donations.Save(ctx, repository.NoTX, d); err != nil {
		return nil, payment.CheckoutRequest{}, err
	}

	req := payment.BuildCheckoutRequest(u.checkout, u.signer, d, owner)
	metrics.IncDonation(string(model.DonationStatusPending))
	log.Info().
		Str("donation_id", d.ID).
		Str("user_id", ownerID).
		Float64("amount", amount).
		Str("gateway", d.Gateway).
		Msg("donation initiated")
	return d, req, nil
}

func (u *donationUC) ListMine(ctx context.Context, ownerID string) ([]*model.Donation, error) {
	log := logging.With(ctx, u.log)
	defer logging.TraceDuration(log, "DonationUC.ListMine")()
	return u.donations.ListByOwner(ctx, repository.NoTX, ownerID)
}

func (u *donationUC) ListAll(ctx context.Context) ([]*model.DonationWithDonor, error) {
	log := logging.With(ctx, u.log)
	defer logging.TraceDuration(log, "DonationUC.ListAll")()
	return u.donations.ListAllWithDonor(ctx, repository.NoTX)
}
