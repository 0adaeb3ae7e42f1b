//go:build !integration

package usecase_test

import (
	"context"
	"io"
	"sync"
	"time"

	"ngo-donation-platform/internal/domain"
	"ngo-donation-platform/internal/domain/model"
	"ngo-donation-platform/internal/domain/ports/repository"
	"ngo-donation-platform/internal/usecase"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"
)

// newTestLogger creates a silent zerolog.Logger so test output stays readable.
func newTestLogger() *zerolog.Logger {
	logger := zerolog.New(io.Discard)
	return &logger
}

// ---- Mock DonationRepository ----

// MockDonationRepo is an in-memory DonationRepository with a real CAS, so the
// reconciliation tests exercise the same version semantics as the SQL store.
type MockDonationRepo struct {
	mu   sync.Mutex
	byID map[string]*model.Donation

	SaveFunc            func(ctx context.Context, tx repository.Tx, d *model.Donation) error
	FindByIDFunc        func(ctx context.Context, tx repository.Tx, id string) (*model.Donation, error)
	UpdateStatusCASFunc func(ctx context.Context, tx repository.Tx, id string, version int64, status model.DonationStatus, transactionID string) (bool, error)

	CASCalls int // number of UpdateStatusCAS invocations
}

var _ repository.DonationRepository = (*MockDonationRepo)(nil)

func NewMockDonationRepo() *MockDonationRepo {
	return &MockDonationRepo{byID: map[string]*model.Donation{}}
}

func (r *MockDonationRepo) Save(ctx context.Context, tx repository.Tx, d *model.Donation) error {
	if r.SaveFunc != nil {
		return r.SaveFunc(ctx, tx, d)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *d
	if cp.ID == "" {
		cp.ID = uuid.NewString()
	}
	r.byID[cp.ID] = &cp
	return nil
}

func (r *MockDonationRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Donation, error) {
	if r.FindByIDFunc != nil {
		return r.FindByIDFunc(ctx, tx, id)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if d, ok := r.byID[id]; ok {
		cp := *d
		return &cp, nil
	}
	return nil, domain.ErrDonationNotFound
}

func (r *MockDonationRepo) ListByOwner(ctx context.Context, tx repository.Tx, ownerID string) ([]*model.Donation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.Donation
	for _, d := range r.byID {
		if d.OwnerID == ownerID {
			cp := *d
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *MockDonationRepo) ListAllWithDonor(ctx context.Context, tx repository.Tx) ([]*model.DonationWithDonor, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.DonationWithDonor
	for _, d := range r.byID {
		out = append(out, &model.DonationWithDonor{Donation: *d})
	}
	return out, nil
}

func (r *MockDonationRepo) UpdateStatusCAS(ctx context.Context, tx repository.Tx, id string, version int64, status model.DonationStatus, transactionID string) (bool, error) {
	r.mu.Lock()
	r.CASCalls++
	r.mu.Unlock()
	if r.UpdateStatusCASFunc != nil {
		return r.UpdateStatusCASFunc(ctx, tx, id, version, status, transactionID)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.byID[id]
	if !ok {
		return false, nil
	}
	if d.Version != version {
		return false, nil
	}
	d.Status = status
	d.TransactionID = transactionID
	d.Version++
	d.UpdatedAt = time.Now()
	return true, nil
}

func (r *MockDonationRepo) SumAmountByStatus(ctx context.Context, tx repository.Tx, status model.DonationStatus) (float64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var sum float64
	for _, d := range r.byID {
		if d.Status == status {
			sum += d.Amount
		}
	}
	return sum, nil
}

func (r *MockDonationRepo) CountPendingOlderThan(ctx context.Context, tx repository.Tx, cutoff time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cnt := 0
	for _, d := range r.byID {
		if d.Status == model.DonationStatusPending && d.CreatedAt.Before(cutoff) {
			cnt++
		}
	}
	return cnt, nil
}

// get returns the stored donation without copy, for assertions only.
func (r *MockDonationRepo) get(id string) *model.Donation {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.byID[id]
}

// ---- Mock UserRepository ----

type MockUserRepo struct {
	mu      sync.Mutex
	byID    map[string]*model.User
	byEmail map[string]*model.User

	SaveFunc        func(ctx context.Context, tx repository.Tx, u *model.User) error
	FindByIDFunc    func(ctx context.Context, tx repository.Tx, id string) (*model.User, error)
	FindByEmailFunc func(ctx context.Context, tx repository.Tx, email string) (*model.User, error)
}

var _ repository.UserRepository = (*MockUserRepo)(nil)

func NewMockUserRepo() *MockUserRepo {
	return &MockUserRepo{byID: map[string]*model.User{}, byEmail: map[string]*model.User{}}
}

func (r *MockUserRepo) Save(ctx context.Context, tx repository.Tx, u *model.User) error {
	if r.SaveFunc != nil {
		return r.SaveFunc(ctx, tx, u)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, dup := r.byEmail[u.Email]; dup {
		return domain.ErrEmailTaken
	}
	cp := *u
	if cp.ID == "" {
		cp.ID = uuid.NewString()
	}
	r.byID[cp.ID] = &cp
	r.byEmail[cp.Email] = &cp
	return nil
}

func (r *MockUserRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.User, error) {
	if r.FindByIDFunc != nil {
		return r.FindByIDFunc(ctx, tx, id)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.byID[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, domain.ErrUserNotFound
}

func (r *MockUserRepo) FindByEmail(ctx context.Context, tx repository.Tx, email string) (*model.User, error) {
	if r.FindByEmailFunc != nil {
		return r.FindByEmailFunc(ctx, tx, email)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.byEmail[email]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, domain.ErrUserNotFound
}

func (r *MockUserRepo) ListByRole(ctx context.Context, tx repository.Tx, role model.Role) ([]*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.User
	for _, u := range r.byID {
		if u.Role == role {
			cp := *u
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *MockUserRepo) CountByRole(ctx context.Context, tx repository.Tx, role model.Role) (int, error) {
	users, _ := r.ListByRole(ctx, tx, role)
	return len(users), nil
}

// ---- Mock TransactionManager ----

// MockTxManager runs the callback without a real transaction; the repos treat
// the NoTX handle as the non-transactional path.
type MockTxManager struct {
	mu    sync.Mutex
	Calls int

	WithTxFunc func(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error
}

var _ repository.TransactionManager = (*MockTxManager)(nil)

func NewMockTxManager() *MockTxManager {
	return &MockTxManager{}
}

func (m *MockTxManager) WithTx(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error {
	m.mu.Lock()
	m.Calls++
	m.mu.Unlock()
	if m.WithTxFunc != nil {
		return m.WithTxFunc(ctx, txOpt, fn)
	}
	return fn(ctx, repository.NoTX)
}

// ---- Mock DonationLocker ----

type MockLocker struct {
	mu     sync.Mutex
	held   map[string]string
	Busy    bool // force TryLock to fail
	Locks   int
	Unlocks int
}

var _ usecase.DonationLocker = (*MockLocker)(nil)

func NewMockLocker() *MockLocker {
	return &MockLocker{held: map[string]string{}}
}

func (l *MockLocker) TryLock(ctx context.Context, key string, ttl time.Duration) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.Busy {
		return "", domain.ErrLockBusy
	}
	if _, taken := l.held[key]; taken {
		return "", domain.ErrLockBusy
	}
	token := uuid.NewString()
	l.held[key] = token
	l.Locks++
	return token, nil
}

func (l *MockLocker) Unlock(ctx context.Context, key, token string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held[key] == token {
		delete(l.held, key)
		l.Unlocks++
		return nil
	}
	return domain.ErrLockBusy
}
