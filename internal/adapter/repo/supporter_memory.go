package repo

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"supporterboard/internal/domain"
)

// ChangePublisher receives the change events a store broadcasts after each mutation.
type ChangePublisher interface {
	Publish(evt domain.ChangeEvent)
}

// SupporterRepositoryMemory is an in-process supporter table intended for
// development and tests. It broadcasts its own change events the way the
// Postgres trigger does.
type SupporterRepositoryMemory struct {
	mu        sync.RWMutex
	records   map[string]domain.Supporter
	publisher ChangePublisher
	now       func() time.Time
}

// NewSupporterRepositoryMemory creates an empty table. publisher may be nil.
func NewSupporterRepositoryMemory(publisher ChangePublisher) *SupporterRepositoryMemory {
	return &SupporterRepositoryMemory{
		records:   map[string]domain.Supporter{},
		publisher: publisher,
		now:       time.Now,
	}
}

func (r *SupporterRepositoryMemory) List(ctx context.Context) ([]domain.Supporter, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	items := make([]domain.Supporter, 0, len(r.records))
	for _, s := range r.records {
		items = append(items, cloneSupporter(s))
	}
	r.mu.RUnlock()

	// created_at gives ties a stable order, matching the SQL query.
	sortByCreated(items)
	domain.SortByAmountDesc(items)
	return items, nil
}

func (r *SupporterRepositoryMemory) Insert(ctx context.Context, in domain.SupporterInput) (*domain.Supporter, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}
	s := domain.Supporter{
		ID:        uuid.NewString(),
		Name:      in.Name,
		Amount:    domain.RoundAmount(in.Amount),
		Message:   cloneMessage(in.Message),
		CreatedAt: r.now().UTC(),
	}
	r.mu.Lock()
	r.records[s.ID] = s
	r.mu.Unlock()

	r.publish(domain.ChangeInsert, s.ID)
	out := cloneSupporter(s)
	return &out, nil
}

func (r *SupporterRepositoryMemory) Update(ctx context.Context, id string, in domain.SupporterInput) (*domain.Supporter, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	s, ok := r.records[id]
	if !ok {
		r.mu.Unlock()
		return nil, domain.ErrNotFound
	}
	s.Name = in.Name
	s.Amount = domain.RoundAmount(in.Amount)
	s.Message = cloneMessage(in.Message)
	r.records[id] = s
	r.mu.Unlock()

	r.publish(domain.ChangeUpdate, id)
	out := cloneSupporter(s)
	return &out, nil
}

func (r *SupporterRepositoryMemory) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	if _, ok := r.records[id]; !ok {
		r.mu.Unlock()
		return domain.ErrNotFound
	}
	delete(r.records, id)
	r.mu.Unlock()

	r.publish(domain.ChangeDelete, id)
	return nil
}

// Totals returns the supporter count and the sum of all amounts.
func (r *SupporterRepositoryMemory) Totals(ctx context.Context) (int, float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, 0, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	var sum float64
	for _, s := range r.records {
		sum += s.Amount
	}
	return len(r.records), domain.RoundAmount(sum), nil
}

func (r *SupporterRepositoryMemory) publish(kind domain.ChangeKind, id string) {
	if r.publisher == nil {
		return
	}
	r.publisher.Publish(domain.ChangeEvent{Kind: kind, Table: "supporters", ID: id})
}

func sortByCreated(items []domain.Supporter) {
	sort.Slice(items, func(i, j int) bool {
		if !items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].CreatedAt.Before(items[j].CreatedAt)
		}
		return items[i].ID < items[j].ID
	})
}

func cloneSupporter(s domain.Supporter) domain.Supporter {
	s.Message = cloneMessage(s.Message)
	return s
}

func cloneMessage(msg *string) *string {
	if msg == nil {
		return nil
	}
	v := *msg
	return &v
}

var _ domain.SupporterRepository = (*SupporterRepositoryMemory)(nil)
