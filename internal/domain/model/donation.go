package model

import (
	"time"

	"ngo-donation-platform/internal/domain"

	"github.com/google/uuid"
)

type DonationStatus string

const (
	DonationStatusPending DonationStatus = "PENDING" // created, payer redirected to gateway
	DonationStatusSuccess DonationStatus = "SUCCESS" // gateway reported a completed payment
	DonationStatusFailed  DonationStatus = "FAILED"  // gateway reported failure, or payer cancelled
)

// Gateway identifiers recorded on the donation.
const (
	GatewayMock    = "MOCK"
	GatewayPayHere = "PAYHERE"
)

// Valid reports whether s is one of the three known statuses.
func (s DonationStatus) Valid() bool {
	switch s {
	case DonationStatusPending, DonationStatusSuccess, DonationStatusFailed:
		return true
	}
	return false
}

// Rank orders statuses for the reconciliation comparator. A notification may
// only move a donation to an equal or higher rank, so a terminal status is
// never clobbered by a stale PENDING and SUCCESS is never clobbered by a late
// cancel or duplicate failure.
func (s DonationStatus) Rank() int {
	switch s {
	case DonationStatusSuccess:
		return 2
	case DonationStatusFailed:
		return 1
	default:
		return 0
	}
}

// Donation is the domain entity for a single donation attempt. The ID doubles
// as the gateway order_id, correlating the return, cancel and notify channels.
type Donation struct {
	ID            string
	OwnerID       string
	Amount        float64
	Status        DonationStatus
	Gateway       string
	TransactionID string
	Version       int64
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func NewDonation(ownerID string, amount float64, gateway string) (*Donation, error) {
	if ownerID == "" {
		return nil, domain.ErrInvalidArgument
	}
	if amount <= 0 {
		return nil, domain.ErrInvalidArgument
	}
	if gateway == "" {
		gateway = GatewayMock
	}
	now := time.Now()
	return &Donation{
		ID:        uuid.NewString(),
		OwnerID:   ownerID,
		Amount:    amount,
		Status:    DonationStatusPending,
		Gateway:   gateway,
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// DonationWithDonor joins the donation with the owning user's public fields
// for the admin listing.
type DonationWithDonor struct {
	Donation
	DonorName  string
	DonorEmail string
}
