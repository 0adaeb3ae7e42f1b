package repository

import (
	"context"

	"ngo-donation-platform/internal/domain/model"
)

type UserRepository interface {
	// Save inserts a new user. A duplicate email yields domain.ErrEmailTaken.
	Save(ctx context.Context, tx Tx, u *model.User) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.User, error)
	FindByEmail(ctx context.Context, tx Tx, email string) (*model.User, error)
	ListByRole(ctx context.Context, tx Tx, role model.Role) ([]*model.User, error)
	CountByRole(ctx context.Context, tx Tx, role model.Role) (int, error)
}
