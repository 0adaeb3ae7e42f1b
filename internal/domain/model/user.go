package model

import (
	"strings"
	"time"

	"ngo-donation-platform/internal/domain"

	"github.com/google/uuid"
)

type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

func (r Role) Valid() bool { return r == RoleUser || r == RoleAdmin }

// User is a registered donor or administrator.
type User struct {
	ID             string
	Name           string
	Email          string
	PasswordHash   string
	Role           Role
	Phone          string
	Address        string
	AdditionalInfo string
	CreatedAt      time.Time
}

func NewUser(name, email, passwordHash string, role Role) (*User, error) {
	if name == "" || email == "" || passwordHash == "" {
		return nil, domain.ErrInvalidArgument
	}
	if role == "" {
		role = RoleUser
	}
	if !role.Valid() {
		return nil, domain.ErrInvalidArgument
	}
	return &User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        strings.ToLower(strings.TrimSpace(email)),
		PasswordHash: passwordHash,
		Role:         role,
		CreatedAt:    time.Now(),
	}, nil
}

// SplitName breaks the display name into the first/last tokens the payment
// gateway expects. Names that cannot be split fall back to a placeholder so
// checkout never fails on an incomplete profile.
func (u *User) SplitName() (first, last string) {
	fields := strings.Fields(u.Name)
	switch len(fields) {
	case 0:
		return "Donor", "Donor"
	case 1:
		return fields[0], fields[0]
	default:
		return fields[0], strings.Join(fields[1:], " ")
	}
}
