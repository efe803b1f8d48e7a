package repo

import (
	"context"
	"errors"
	"sync"
	"testing"

	"supporterboard/internal/domain"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []domain.ChangeEvent
}

func (p *recordingPublisher) Publish(evt domain.ChangeEvent) {
	p.mu.Lock()
	p.events = append(p.events, evt)
	p.mu.Unlock()
}

func (p *recordingPublisher) kinds() []domain.ChangeKind {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]domain.ChangeKind, 0, len(p.events))
	for _, evt := range p.events {
		out = append(out, evt.Kind)
	}
	return out
}

func TestMemoryInsertThenList(t *testing.T) {
	ctx := context.Background()
	pub := &recordingPublisher{}
	repo := NewSupporterRepositoryMemory(pub)

	created, err := repo.Insert(ctx, domain.NewSupporterInput("Layla", 25, "go go"))
	if err != nil {
		t.Fatalf("Insert() unexpected error: %v", err)
	}
	if created.ID == "" {
		t.Fatalf("Insert() should generate an id")
	}

	items, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List() unexpected error: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("List() returned %d rows, want 1", len(items))
	}
	got := items[0]
	if got.ID != created.ID || got.Name != "Layla" || got.Amount != 25 || got.MessageText() != "go go" {
		t.Fatalf("List()[0] = %+v, want inserted row %+v", got, created)
	}
	if kinds := pub.kinds(); len(kinds) != 1 || kinds[0] != domain.ChangeInsert {
		t.Fatalf("published %v, want [INSERT]", kinds)
	}
}

func TestMemoryListSortedByAmountDesc(t *testing.T) {
	ctx := context.Background()
	repo := NewSupporterRepositoryMemory(nil)
	for _, amount := range []float64{10, 50, 30, 30} {
		if _, err := repo.Insert(ctx, domain.NewSupporterInput("s", amount, "")); err != nil {
			t.Fatalf("Insert(%v) unexpected error: %v", amount, err)
		}
	}

	items, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List() unexpected error: %v", err)
	}
	want := []float64{50, 30, 30, 10}
	if len(items) != len(want) {
		t.Fatalf("List() returned %d rows, want %d", len(items), len(want))
	}
	for i, amount := range want {
		if items[i].Amount != amount {
			t.Fatalf("items[%d].Amount = %v, want %v", i, items[i].Amount, amount)
		}
	}
}

func TestMemoryUpdate(t *testing.T) {
	ctx := context.Background()
	pub := &recordingPublisher{}
	repo := NewSupporterRepositoryMemory(pub)
	created, err := repo.Insert(ctx, domain.NewSupporterInput("Old", 1, "hi"))
	if err != nil {
		t.Fatalf("Insert() unexpected error: %v", err)
	}

	updated, err := repo.Update(ctx, created.ID, domain.NewSupporterInput("New", 99.5, ""))
	if err != nil {
		t.Fatalf("Update() unexpected error: %v", err)
	}
	if updated.ID != created.ID {
		t.Fatalf("Update() changed id from %q to %q", created.ID, updated.ID)
	}

	items, _ := repo.List(ctx)
	if len(items) != 1 || items[0].Name != "New" || items[0].Amount != 99.5 || items[0].Message != nil {
		t.Fatalf("List() after update = %+v", items)
	}

	if _, err := repo.Update(ctx, "missing", domain.NewSupporterInput("X", 1, "")); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("Update(missing) error = %v, want ErrNotFound", err)
	}
	items, _ = repo.List(ctx)
	if len(items) != 1 || items[0].Name != "New" {
		t.Fatalf("failed update mutated rows: %+v", items)
	}
	if kinds := pub.kinds(); len(kinds) != 2 {
		t.Fatalf("published %v, want INSERT and UPDATE only", kinds)
	}
}

func TestMemoryDeleteTwice(t *testing.T) {
	ctx := context.Background()
	pub := &recordingPublisher{}
	repo := NewSupporterRepositoryMemory(pub)
	keep, _ := repo.Insert(ctx, domain.NewSupporterInput("Keep", 5, ""))
	drop, _ := repo.Insert(ctx, domain.NewSupporterInput("Drop", 7, ""))

	if err := repo.Delete(ctx, drop.ID); err != nil {
		t.Fatalf("Delete() unexpected error: %v", err)
	}
	if err := repo.Delete(ctx, drop.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("second Delete() error = %v, want ErrNotFound", err)
	}

	items, _ := repo.List(ctx)
	if len(items) != 1 || items[0].ID != keep.ID {
		t.Fatalf("List() after delete = %+v", items)
	}
	if kinds := pub.kinds(); len(kinds) != 3 || kinds[2] != domain.ChangeDelete {
		t.Fatalf("published %v, want two inserts and one delete", kinds)
	}
}

func TestMemoryRejectsInvalidInput(t *testing.T) {
	ctx := context.Background()
	pub := &recordingPublisher{}
	repo := NewSupporterRepositoryMemory(pub)

	if _, err := repo.Insert(ctx, domain.SupporterInput{Name: "", Amount: 1}); !errors.Is(err, domain.ErrNameRequired) {
		t.Fatalf("Insert(empty name) error = %v", err)
	}
	if _, err := repo.Insert(ctx, domain.SupporterInput{Name: "a", Amount: -1}); !errors.Is(err, domain.ErrInvalidAmount) {
		t.Fatalf("Insert(negative) error = %v", err)
	}
	if len(pub.kinds()) != 0 {
		t.Fatalf("invalid input must not broadcast")
	}
}

func TestMemoryListReturnsCopies(t *testing.T) {
	ctx := context.Background()
	repo := NewSupporterRepositoryMemory(nil)
	_, _ = repo.Insert(ctx, domain.NewSupporterInput("A", 1, "original"))

	items, _ := repo.List(ctx)
	*items[0].Message = "changed"
	items[0].Name = "changed"

	again, _ := repo.List(ctx)
	if again[0].Name != "A" || again[0].MessageText() != "original" {
		t.Fatalf("List() leaked internal state: %+v", again[0])
	}
}

func TestMemoryTotals(t *testing.T) {
	ctx := context.Background()
	repo := NewSupporterRepositoryMemory(nil)
	for _, amt := range []float64{10.1, 20.2, 0} {
		if _, err := repo.Insert(ctx, domain.NewSupporterInput("x", amt, "")); err != nil {
			t.Fatal(err)
		}
	}
	count, sum, err := repo.Totals(ctx)
	if err != nil || count != 3 || sum != 30.3 {
		t.Fatalf("Totals() = %d, %v, %v; want 3, 30.3", count, sum, err)
	}
}
