package integration

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"zenfi-wallet/internal/core/domain"
	"zenfi-wallet/internal/core/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// --- In-Memory Profile Repo ---

type inMemoryProfileRepo struct {
	mu       sync.RWMutex
	profiles map[uuid.UUID]*domain.Profile
}

func newInMemoryProfileRepo() *inMemoryProfileRepo {
	return &inMemoryProfileRepo{profiles: make(map[uuid.UUID]*domain.Profile)}
}

func (r *inMemoryProfileRepo) Create(ctx context.Context, p *domain.Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.profiles {
		if existing.Email == p.Email {
			return fmt.Errorf("email already exists")
		}
	}
	cp := *p
	r.profiles[p.ID] = &cp
	return nil
}

func (r *inMemoryProfileRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.profiles[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (r *inMemoryProfileRepo) GetByEmail(ctx context.Context, email string) (*domain.Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, p := range r.profiles {
		if p.Email == email {
			cp := *p
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *inMemoryProfileRepo) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.Profile, error) {
	return r.GetByID(ctx, id)
}

func (r *inMemoryProfileRepo) UpdateBalance(ctx context.Context, tx pgx.Tx, id uuid.UUID, balance int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.profiles[id]
	if !ok {
		return fmt.Errorf("profile not found")
	}
	p.Balance = balance
	p.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *inMemoryProfileRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.ProfileStatus, banReason *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.profiles[id]
	if !ok {
		return fmt.Errorf("profile not found")
	}
	p.Status = status
	p.BanReason = banReason
	p.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *inMemoryProfileRepo) List(ctx context.Context, search string) ([]domain.Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []domain.Profile
	for _, p := range r.profiles {
		if search != "" && !strings.Contains(p.Email, search) {
			continue
		}
		result = append(result, *p)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

func (r *inMemoryProfileRepo) Counts(ctx context.Context) (*ports.ProfileCounts, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	counts := &ports.ProfileCounts{}
	for _, p := range r.profiles {
		counts.Total++
		if p.Status == domain.ProfileStatusBanned {
			counts.Banned++
		}
	}
	return counts, nil
}

// --- In-Memory Payment Repo ---

type inMemoryPaymentRepo struct {
	mu       sync.RWMutex
	payments map[uuid.UUID]*domain.Payment
}

func newInMemoryPaymentRepo() *inMemoryPaymentRepo {
	return &inMemoryPaymentRepo{payments: make(map[uuid.UUID]*domain.Payment)}
}

func (r *inMemoryPaymentRepo) Create(ctx context.Context, p *domain.Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *p
	r.payments[p.ID] = &cp
	return nil
}

func (r *inMemoryPaymentRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Payment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.payments[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (r *inMemoryPaymentRepo) GetLatestByProfile(ctx context.Context, profileID uuid.UUID) (*domain.Payment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var latest *domain.Payment
	for _, p := range r.payments {
		if p.ProfileID != profileID {
			continue
		}
		if latest == nil || p.CreatedAt.After(latest.CreatedAt) {
			latest = p
		}
	}
	if latest == nil {
		return nil, nil
	}
	cp := *latest
	return &cp, nil
}

func (r *inMemoryPaymentRepo) HasPending(ctx context.Context, profileID uuid.UUID) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, p := range r.payments {
		if p.ProfileID == profileID && p.Status == domain.PaymentStatusPending {
			return true, nil
		}
	}
	return false, nil
}

func (r *inMemoryPaymentRepo) ListByProfile(ctx context.Context, profileID uuid.UUID) ([]domain.Payment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []domain.Payment
	for _, p := range r.payments {
		if p.ProfileID == profileID {
			result = append(result, *p)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

func (r *inMemoryPaymentRepo) List(ctx context.Context, params ports.PaymentListParams) ([]domain.Payment, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []domain.Payment
	for _, p := range r.payments {
		if params.Status != nil && p.Status != *params.Status {
			continue
		}
		result = append(result, *p)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	total := int64(len(result))

	start := (params.Page - 1) * params.PageSize
	if start >= len(result) {
		return []domain.Payment{}, total, nil
	}
	end := start + params.PageSize
	if end > len(result) {
		end = len(result)
	}
	return result[start:end], total, nil
}

func (r *inMemoryPaymentRepo) UpdateReview(ctx context.Context, tx pgx.Tx, id uuid.UUID, status domain.PaymentStatus, reason *string, reviewedBy uuid.UUID, reviewedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.payments[id]
	if !ok {
		return fmt.Errorf("payment not found")
	}
	p.Status = status
	p.RejectionReason = reason
	p.ReviewedBy = &reviewedBy
	p.ReviewedAt = &reviewedAt
	p.UpdatedAt = reviewedAt
	return nil
}

func (r *inMemoryPaymentRepo) MarkAcknowledged(ctx context.Context, id uuid.UUID, profileID uuid.UUID, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.payments[id]
	if !ok || p.ProfileID != profileID {
		return fmt.Errorf("payment not found")
	}
	p.AcknowledgedAt = &at
	p.UpdatedAt = at
	return nil
}

func (r *inMemoryPaymentRepo) CountsByStatus(ctx context.Context) (*ports.PaymentCounts, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	counts := &ports.PaymentCounts{}
	for _, p := range r.payments {
		switch p.Status {
		case domain.PaymentStatusPending:
			counts.Pending++
		case domain.PaymentStatusApproved:
			counts.Approved++
		case domain.PaymentStatusRejected:
			counts.Rejected++
		}
	}
	return counts, nil
}

// --- In-Memory Claim Repo ---

type inMemoryClaimRepo struct {
	mu     sync.RWMutex
	claims map[uuid.UUID]*domain.Claim
}

func newInMemoryClaimRepo() *inMemoryClaimRepo {
	return &inMemoryClaimRepo{claims: make(map[uuid.UUID]*domain.Claim)}
}

func (r *inMemoryClaimRepo) Create(ctx context.Context, tx pgx.Tx, c *domain.Claim) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.claims {
		if existing.ProfileID == c.ProfileID && existing.IdempotencyKey == c.IdempotencyKey {
			return fmt.Errorf("duplicate idempotency key")
		}
	}
	cp := *c
	r.claims[c.ID] = &cp
	return nil
}

func (r *inMemoryClaimRepo) GetByIdempotencyKey(ctx context.Context, profileID uuid.UUID, key string) (*domain.Claim, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, c := range r.claims {
		if c.ProfileID == profileID && c.IdempotencyKey == key {
			cp := *c
			return &cp, nil
		}
	}
	return nil, nil
}

// --- In-Memory Withdrawal Repo ---

type inMemoryWithdrawalRepo struct {
	mu          sync.RWMutex
	withdrawals map[uuid.UUID]*domain.Withdrawal
}

func newInMemoryWithdrawalRepo() *inMemoryWithdrawalRepo {
	return &inMemoryWithdrawalRepo{withdrawals: make(map[uuid.UUID]*domain.Withdrawal)}
}

func (r *inMemoryWithdrawalRepo) Create(ctx context.Context, tx pgx.Tx, w *domain.Withdrawal) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *w
	r.withdrawals[w.ID] = &cp
	return nil
}

func (r *inMemoryWithdrawalRepo) ListByProfile(ctx context.Context, profileID uuid.UUID) ([]domain.Withdrawal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []domain.Withdrawal
	for _, w := range r.withdrawals {
		if w.ProfileID == profileID {
			result = append(result, *w)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

// --- In-Memory Notification Repo ---

type inMemoryNotificationRepo struct {
	mu            sync.RWMutex
	notifications map[uuid.UUID]*domain.Notification
	readBy        map[uuid.UUID]map[uuid.UUID]bool // notification -> profiles that read it
}

func newInMemoryNotificationRepo() *inMemoryNotificationRepo {
	return &inMemoryNotificationRepo{
		notifications: make(map[uuid.UUID]*domain.Notification),
		readBy:        make(map[uuid.UUID]map[uuid.UUID]bool),
	}
}

func (r *inMemoryNotificationRepo) Create(ctx context.Context, n *domain.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *n
	r.notifications[n.ID] = &cp
	return nil
}

func (r *inMemoryNotificationRepo) ListForProfile(ctx context.Context, profileID uuid.UUID) ([]domain.Notification, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []domain.Notification
	for _, n := range r.notifications {
		if !n.IsBroadcast && (n.ProfileID == nil || *n.ProfileID != profileID) {
			continue
		}
		cp := *n
		cp.IsRead = r.readBy[n.ID][profileID]
		result = append(result, cp)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

func (r *inMemoryNotificationRepo) MarkRead(ctx context.Context, id uuid.UUID, profileID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	n, ok := r.notifications[id]
	if !ok {
		return fmt.Errorf("notification not found")
	}
	if !n.IsBroadcast && (n.ProfileID == nil || *n.ProfileID != profileID) {
		return fmt.Errorf("notification not found")
	}
	if r.readBy[id] == nil {
		r.readBy[id] = make(map[uuid.UUID]bool)
	}
	r.readBy[id][profileID] = true
	return nil
}

// --- In-Memory Message Repo ---

type inMemoryMessageRepo struct {
	mu       sync.RWMutex
	messages map[uuid.UUID]*domain.Message
}

func newInMemoryMessageRepo() *inMemoryMessageRepo {
	return &inMemoryMessageRepo{messages: make(map[uuid.UUID]*domain.Message)}
}

func (r *inMemoryMessageRepo) Create(ctx context.Context, m *domain.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *m
	r.messages[m.ID] = &cp
	return nil
}

func (r *inMemoryMessageRepo) ListVisible(ctx context.Context, profileID uuid.UUID) ([]domain.Message, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []domain.Message
	for _, m := range r.messages {
		if m.ProfileID != nil && *m.ProfileID != profileID {
			continue
		}
		result = append(result, *m)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

// --- In-Memory Transactor (no-op tx) ---

type inMemoryTransactor struct{}

func newInMemoryTransactor() *inMemoryTransactor {
	return &inMemoryTransactor{}
}

func (t *inMemoryTransactor) Begin(ctx context.Context) (pgx.Tx, error) {
	return &noopTx{}, nil
}

// noopTx is a no-op pgx.Tx implementation for in-memory testing.
type noopTx struct{}

func (t *noopTx) Begin(ctx context.Context) (pgx.Tx, error) { return t, nil }
func (t *noopTx) Commit(ctx context.Context) error          { return nil }
func (t *noopTx) Rollback(ctx context.Context) error        { return nil }
func (t *noopTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, nil
}
func (t *noopTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults { return nil }
func (t *noopTx) LargeObjects() pgx.LargeObjects                               { return pgx.LargeObjects{} }
func (t *noopTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	return nil, nil
}
func (t *noopTx) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	return pgconn.NewCommandTag(""), nil
}
func (t *noopTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, nil
}
func (t *noopTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return nil
}
func (t *noopTx) Conn() *pgx.Conn { return nil }
