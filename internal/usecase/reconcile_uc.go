package usecase

import (
	"context"
	"errors"
	"time"

	"ngo-donation-platform/internal/domain"
	"ngo-donation-platform/internal/domain/model"
	"ngo-donation-platform/internal/domain/ports/repository"
	"ngo-donation-platform/internal/infra/adapters/payment"
	"ngo-donation-platform/internal/infra/logging"
	"ngo-donation-platform/internal/infra/metrics"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"
)

// Compile-time check
var _ ReconcileUseCase = (*reconcileUC)(nil)

// NotifyChannel identifies which of the gateway's callback channels delivered
// a notification. All three feed the same state machine.
type NotifyChannel string

const (
	ChannelNotify   NotifyChannel = "notify"   // server-to-server webhook (authoritative)
	ChannelCallback NotifyChannel = "callback" // synchronous status update / mock gateway
	ChannelCancel   NotifyChannel = "cancel"   // browser cancel redirect
)

// Notification is a channel-agnostic gateway status report keyed by order id
// (= donation id).
type Notification struct {
	OrderID    string
	StatusCode string
	PaymentID  string
	Signature  string
	Amount     float64
	HasAmount  bool
	Channel    NotifyChannel
}

// DonationLocker serializes concurrent notifications for one donation
// best-effort; the version CAS below is the actual correctness guard.
type DonationLocker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (token string, err error)
	Unlock(ctx context.Context, key, token string) error
}

// ReconcileUseCase is the single authority for moving a donation's status in
// response to an inbound notification, regardless of channel.
type ReconcileUseCase interface {
	Apply(ctx context.Context, n Notification) (*model.Donation, error)
	// Cancel handles the browser cancel redirect: a forced FAILED transition
	// with no status code or signature.
	Cancel(ctx context.Context, orderID string) (*model.Donation, error)
}

type reconcileUC struct {
	donations repository.DonationRepository
	signer    *payment.Signer
	currency  string
	locker    DonationLocker // optional
	log       *zerolog.Logger
}

const (
	lockTTL     = 5 * time.Second
	casAttempts = 3
)

func NewReconcileUseCase(donations repository.DonationRepository, signer *payment.Signer, currency string, locker DonationLocker, logger *zerolog.Logger) *reconcileUC {
	return &reconcileUC{donations: donations, signer: signer, currency: currency, locker: locker, log: logger}
}

// StatusForCode maps a gateway status code to a target donation status.
// "2" is a completed payment, "-1" (cancelled) and "-2" (failed) are
// failures; anything else leaves the donation pending.
func StatusForCode(code string) model.DonationStatus {
	switch code {
	case "2":
		return model.DonationStatusSuccess
	case "-1", "-2":
		return model.DonationStatusFailed
	default:
		return model.DonationStatusPending
	}
}

func (u *reconcileUC) Apply(ctx context.Context, n Notification) (*model.Donation, error) {
	log := logging.With(ctx, u.log)
	defer logging.TraceDuration(log, "ReconcileUC.Apply")()

	if n.OrderID == "" {
		return nil, domain.ErrInvalidArgument
	}
	if n.StatusCode == "" && n.Channel != ChannelCancel {
		return nil, domain.ErrInvalidArgument
	}

	target := StatusForCode(n.StatusCode)
	if n.Channel == ChannelCancel {
		target = model.DonationStatusFailed
	}

	if u.locker != nil {
		key := "donation:lock:" + n.OrderID
		if token, err := u.locker.TryLock(ctx, key, lockTTL); err == nil {
			defer func() { _ = u.locker.Unlock(ctx, key, token) }()
		} else {
			// Lock contention is expected under gateway retries; the CAS loop
			// still keeps the update safe.
			log.Debug().Str("donation_id", n.OrderID).Msg("donation lock busy, relying on CAS")
		}
	}

	verified := false
	for attempt := 0; attempt < casAttempts; attempt++ {
		d, err := u.donations.FindByID(ctx, repository.NoTX, n.OrderID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrDonationNotFound) {
				return nil, domain.ErrDonationNotFound
			}
			return nil, err
		}

		if !verified {
			if err := u.checkSignature(log, n, d); err != nil {
				return nil, err
			}
			verified = true
		}

		if target.Rank() < d.Status.Rank() {
			metrics.IncRegressionBlocked()
			log.Warn().
				Str("donation_id", d.ID).
				Str("channel", string(n.Channel)).
				Str("current", string(d.Status)).
				Str("refused", string(target)).
				Msg("status regression refused")
			return d, nil
		}

		if target == d.Status && d.TransactionID != "" {
			// Duplicate delivery; keep the first recorded transaction id.
			log.Info().
				Str("donation_id", d.ID).
				Str("channel", string(n.Channel)).
				Str("status", string(d.Status)).
				Msg("duplicate notification, no change")
			return d, nil
		}

		txn := n.PaymentID
		if txn == "" {
			txn = fallbackTransactionID()
		}

		advanced := target != d.Status
		ok, err := u.donations.UpdateStatusCAS(ctx, repository.NoTX, d.ID, d.Version, target, txn)
		if err != nil {
			return nil, err
		}
		if !ok {
			// Lost the race; re-read and re-evaluate against the new state.
			continue
		}

		d.Status = target
		d.TransactionID = txn
		d.Version++
		d.UpdatedAt = time.Now()
		if advanced {
			metrics.IncDonation(string(target))
			if target == model.DonationStatusSuccess {
				metrics.AddDonationRevenue(u.currency, d.Amount)
			}
		}
		log.Info().
			Str("donation_id", d.ID).
			Str("channel", string(n.Channel)).
			Str("status", string(d.Status)).
			Str("transaction_id", d.TransactionID).
			Msg("donation reconciled")
		return d, nil
	}

	return nil, domain.ErrStaleStatus
}

func (u *reconcileUC) Cancel(ctx context.Context, orderID string) (*model.Donation, error) {
	defer logging.TraceDuration(logging.With(ctx, u.log), "ReconcileUC.Cancel")()
	return u.Apply(ctx, Notification{OrderID: orderID, Channel: ChannelCancel})
}

// checkSignature applies the configured verification policy. Channels that
// carry no signature pass through untouched; the notify channel is the only
// one the gateway signs.
func (u *reconcileUC) checkSignature(log *zerolog.Logger, n Notification, d *model.Donation) error {
	if n.Signature == "" {
		return nil
	}

	mode := u.signer.EffectiveMode()
	if mode == payment.VerifySkip {
		if !u.signer.Enabled() {
			log.Warn().
				Str("donation_id", d.ID).
				Msg("merchant secret not configured, skipping signature verification")
		}
		metrics.IncSignatureCheck("skipped")
		return nil
	}

	amount := d.Amount
	if n.HasAmount {
		amount = n.Amount
	}
	if u.signer.Verify(d.ID, amount, u.currency, n.StatusCode, n.Signature) {
		metrics.IncSignatureCheck("ok")
		return nil
	}

	metrics.IncSignatureCheck("mismatch")
	if mode == payment.VerifyEnforce {
		log.Error().
			Str("donation_id", d.ID).
			Str("channel", string(n.Channel)).
			Msg("signature mismatch, notification rejected")
		return domain.ErrSignatureMismatch
	}
	log.Warn().
		Str("donation_id", d.ID).
		Str("channel", string(n.Channel)).
		Msg("signature mismatch, proceeding (verify_mode=warn)")
	return nil
}

func fallbackTransactionID() string {
	return "TXN_" + ulid.Make().String()
}
