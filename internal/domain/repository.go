package domain

import "context"

// SupporterRepository is the client for the external supporter table. Successful
// mutations are broadcast by the store itself; implementations never re-fetch.
type SupporterRepository interface {
	List(ctx context.Context) ([]Supporter, error)
	Insert(ctx context.Context, in SupporterInput) (*Supporter, error)
	Update(ctx context.Context, id string, in SupporterInput) (*Supporter, error)
	Delete(ctx context.Context, id string) error
}

// ChangeKind names the row operation carried by a change event.
type ChangeKind string

const (
	ChangeInsert ChangeKind = "INSERT"
	ChangeUpdate ChangeKind = "UPDATE"
	ChangeDelete ChangeKind = "DELETE"
	// ChangeResync is emitted when events may have been missed, e.g. after a reconnect.
	ChangeResync ChangeKind = "RESYNC"
)

// ChangeEvent is a row-level notification from the supporters table. Subscribers
// treat every event the same way and never rely on its payload.
type ChangeEvent struct {
	Kind  ChangeKind
	Table string
	ID    string
}
