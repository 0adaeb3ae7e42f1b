package repository

import (
	"context"
	"time"

	"ngo-donation-platform/internal/domain/model"
)

// DonationRepository is the keyed record store for donations. Status writes go
// through UpdateStatusCAS so concurrent notifications for the same donation
// cannot silently overwrite each other.
type DonationRepository interface {
	Save(ctx context.Context, tx Tx, d *model.Donation) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.Donation, error)
	// ListByOwner returns the owner's donations, newest first.
	ListByOwner(ctx context.Context, tx Tx, ownerID string) ([]*model.Donation, error)
	// ListAllWithDonor returns every donation joined with the donor's public
	// fields, newest first (admin dashboard).
	ListAllWithDonor(ctx context.Context, tx Tx) ([]*model.DonationWithDonor, error)
	// UpdateStatusCAS applies status and transaction id only if the stored
	// version still matches, bumping the version on success. Returns false
	// (and no error) when another writer got there first.
	UpdateStatusCAS(ctx context.Context, tx Tx, id string, version int64, status model.DonationStatus, transactionID string) (bool, error)
	SumAmountByStatus(ctx context.Context, tx Tx, status model.DonationStatus) (float64, error)
	CountPendingOlderThan(ctx context.Context, tx Tx, cutoff time.Time) (int, error)
}
