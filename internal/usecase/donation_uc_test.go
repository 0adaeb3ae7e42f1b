//go:build !integration

package usecase_test

import (
	"context"
	"errors"
	"testing"

	"ngo-donation-platform/internal/domain"
	"ngo-donation-platform/internal/domain/model"
	"ngo-donation-platform/internal/domain/ports/repository"
	"ngo-donation-platform/internal/infra/adapters/payment"
	"ngo-donation-platform/internal/usecase"
)

func newDonationUC(donations *MockDonationRepo, users *MockUserRepo, mode string) usecase.DonationUseCase {
	signer := payment.NewSigner("1211149", "topsecret", payment.VerifyEnforce)
	cfg := payment.CheckoutConfig{
		MerchantID:  "1211149",
		CheckoutURL: "https://sandbox.payhere.lk/pay/checkout",
		Currency:    "LKR",
		ReturnURL:   "https://api.example.org/api/payment/return",
		CancelURL:   "https://api.example.org/api/payment/cancel",
		NotifyURL:   "https://api.example.org/api/payment/notify",
	}
	return usecase.NewDonationUseCase(donations, users, signer, cfg, mode, newTestLogger())
}

func seedUser(t *testing.T, users *MockUserRepo) *model.User {
	t.Helper()
	u, err := model.NewUser("Amara Silva", "amara@example.org", "hash", model.RoleUser)
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}
	if err := users.Save(context.Background(), repository.NoTX, u); err != nil {
		t.Fatalf("seed user save: %v", err)
	}
	return u
}

func TestDonationUseCase_Initiate(t *testing.T) {
	ctx := context.Background()

	t.Run("should create a pending donation with a signed checkout payload", func(t *testing.T) {
		// --- Arrange ---
		donations := NewMockDonationRepo()
		users := NewMockUserRepo()
		owner := seedUser(t, users)
		uc := newDonationUC(donations, users, "payhere")

		// --- Act ---
		d, req, err := uc.Initiate(ctx, owner.ID, 1500)

		// --- Assert ---
		if err != nil {
			t.Fatalf("expected no error, got: %v", err)
		}
		if d.Status != model.DonationStatusPending {
			t.Errorf("status = %q, want PENDING", d.Status)
		}
		if d.Gateway != model.GatewayPayHere {
			t.Errorf("gateway = %q, want PAYHERE", d.Gateway)
		}
		if d.Version != 1 {
			t.Errorf("version = %d, want 1", d.Version)
		}
		if req.Fields["order_id"] != d.ID {
			t.Errorf("checkout order_id = %q, want donation id %q", req.Fields["order_id"], d.ID)
		}
		if req.Fields["amount"] != "1500.00" {
			t.Errorf("checkout amount = %q, want 1500.00", req.Fields["amount"])
		}
		if req.Checksum() == "" {
			t.Error("expected a checksum in the payload")
		}
		if stored := donations.get(d.ID); stored == nil {
			t.Fatal("donation was not persisted")
		}
	})

	t.Run("should record the mock gateway outside payhere mode", func(t *testing.T) {
		donations := NewMockDonationRepo()
		users := NewMockUserRepo()
		owner := seedUser(t, users)
		uc := newDonationUC(donations, users, "mock")

		d, _, err := uc.Initiate(ctx, owner.ID, 100)
		if err != nil {
			t.Fatalf("expected no error, got: %v", err)
		}
		if d.Gateway != model.GatewayMock {
			t.Errorf("gateway = %q, want MOCK", d.Gateway)
		}
	})

	t.Run("should reject non-positive amounts", func(t *testing.T) {
		donations := NewMockDonationRepo()
		users := NewMockUserRepo()
		owner := seedUser(t, users)
		uc := newDonationUC(donations, users, "payhere")

		for _, amount := range []float64{0, -5} {
			if _, _, err := uc.Initiate(ctx, owner.ID, amount); !errors.Is(err, domain.ErrInvalidArgument) {
				t.Errorf("amount %v: expected ErrInvalidArgument, got %v", amount, err)
			}
		}
	})

	t.Run("should reject an unknown owner", func(t *testing.T) {
		uc := newDonationUC(NewMockDonationRepo(), NewMockUserRepo(), "payhere")

		_, _, err := uc.Initiate(ctx, "ghost", 100)
		if !errors.Is(err, domain.ErrUserNotFound) {
			t.Errorf("expected ErrUserNotFound, got %v", err)
		}
	})
}

func TestDonationUseCase_ListMine(t *testing.T) {
	ctx := context.Background()

	// --- Arrange ---
	donations := NewMockDonationRepo()
	users := NewMockUserRepo()
	owner := seedUser(t, users)
	other := seedUser2(t, users)
	uc := newDonationUC(donations, users, "payhere")
	if _, _, err := uc.Initiate(ctx, owner.ID, 100); err != nil {
		t.Fatalf("initiate: %v", err)
	}
	if _, _, err := uc.Initiate(ctx, owner.ID, 200); err != nil {
		t.Fatalf("initiate: %v", err)
	}
	if _, _, err := uc.Initiate(ctx, other.ID, 300); err != nil {
		t.Fatalf("initiate: %v", err)
	}

	// --- Act ---
	mine, err := uc.ListMine(ctx, owner.ID)

	// --- Assert ---
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if len(mine) != 2 {
		t.Fatalf("expected 2 donations, got %d", len(mine))
	}
	for _, d := range mine {
		if d.OwnerID != owner.ID {
			t.Errorf("listed a foreign donation owned by %q", d.OwnerID)
		}
	}
}

func seedUser2(t *testing.T, users *MockUserRepo) *model.User {
	t.Helper()
	u, err := model.NewUser("Ben Perera", "ben@example.org", "hash", model.RoleUser)
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}
	if err := users.Save(context.Background(), repository.NoTX, u); err != nil {
		t.Fatalf("seed user save: %v", err)
	}
	return u
}
