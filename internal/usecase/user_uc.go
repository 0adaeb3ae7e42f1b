package usecase

import (
	"context"
	"errors"
	"strings"

	"ngo-donation-platform/internal/domain"
	"ngo-donation-platform/internal/domain/model"
	"ngo-donation-platform/internal/domain/ports/repository"
	"ngo-donation-platform/internal/infra/logging"
	"ngo-donation-platform/internal/infra/metrics"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

// Compile-time check
var _ UserUseCase = (*userUC)(nil)

type RegisterInput struct {
	Name           string
	Email          string
	Password       string
	Role           model.Role
	Phone          string
	Address        string
	AdditionalInfo string
}

type UserUseCase interface {
	Register(ctx context.Context, in RegisterInput) (*model.User, error)
	// Login checks credentials and returns the user; the web layer mints the
	// token.
	Login(ctx context.Context, email, password string) (*model.User, error)
	GetByID(ctx context.Context, id string) (*model.User, error)
	// ListRegistrations returns all USER-role registrations (admin view).
	ListRegistrations(ctx context.Context) ([]*model.User, error)
}

type userUC struct {
	users repository.UserRepository
	tm    repository.TransactionManager
	log   *zerolog.Logger
}

func NewUserUseCase(users repository.UserRepository, tm repository.TransactionManager, logger *zerolog.Logger) *userUC {
	return &userUC{users: users, tm: tm, log: logger}
}

const bcryptCost = 10

func (u *userUC) Register(ctx context.Context, in RegisterInput) (*model.User, error) {
	log := logging.With(ctx, u.log)
	defer logging.TraceDuration(log, "UserUC.Register")()

	if in.Name == "" || in.Email == "" || in.Password == "" {
		return nil, domain.ErrInvalidArgument
	}

	email := strings.ToLower(strings.TrimSpace(in.Email))
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcryptCost)
	if err != nil {
		return nil, err
	}

	usr, err := model.NewUser(in.Name, email, string(hash), in.Role)
	if err != nil {
		return nil, err
	}
	usr.Phone = in.Phone
	usr.Address = in.Address
	usr.AdditionalInfo = in.AdditionalInfo

	// Duplicate check and insert run in one transaction; the unique index on
	// email still guards the races the pre-check misses.
	err = u.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		if existing, err := u.users.FindByEmail(ctx, tx, email); err == nil && existing != nil {
			return domain.ErrEmailTaken
		} else if err != nil && !errors.Is(err, domain.ErrNotFound) && !errors.Is(err, domain.ErrUserNotFound) {
			return err
		}
		return u.users.Save(ctx, tx, usr)
	})
	if err != nil {
		return nil, err
	}
	metrics.IncRegistration()
	log.Info().Str("user_id", usr.ID).Str("role", string(usr.Role)).Msg("user registered")
	return usr, nil
}

func (u *userUC) Login(ctx context.Context, email, password string) (*model.User, error) {
	log := logging.With(ctx, u.log)
	defer logging.TraceDuration(log, "UserUC.Login")()

	usr, err := u.users.FindByEmail(ctx, repository.NoTX, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrUserNotFound) {
			metrics.IncLogin("failed")
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(usr.PasswordHash), []byte(password)); err != nil {
		metrics.IncLogin("failed")
		return nil, domain.ErrInvalidCredentials
	}
	metrics.IncLogin("ok")
	return usr, nil
}

func (u *userUC) GetByID(ctx context.Context, id string) (*model.User, error) {
	log := logging.With(ctx, u.log)
	defer logging.TraceDuration(log, "UserUC.GetByID")()
	usr, err := u.users.FindByID(ctx, repository.NoTX, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return usr, nil
}

func (u *userUC) ListRegistrations(ctx context.Context) ([]*model.User, error) {
	log := logging.With(ctx, u.log)
	defer logging.TraceDuration(log, "UserUC.ListRegistrations")()
	return u.users.ListByRole(ctx, repository.NoTX, model.RoleUser)
}
