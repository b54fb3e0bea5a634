// Package journal records every cover injection so a run can be audited
// after the fact.
package journal

import (
	"context"
	"time"
)

// Entry is one successful injection.
type Entry struct {
	Path       string
	Format     string
	Cover      string
	InjectedAt time.Time
}

// Store persists injection entries.
type Store interface {
	// Record stores e. A zero InjectedAt is replaced with the current time.
	Record(ctx context.Context, e Entry) error

	// Entries returns the recorded entries for path, oldest first.
	Entries(ctx context.Context, path string) ([]Entry, error)

	// Count returns the number of recorded entries.
	Count(ctx context.Context) (int, error)

	Close() error
}

// Nop is a Store that records nothing. It is used when no journal is
// configured.
type Nop struct{}

var _ Store = Nop{}

func (Nop) Record(context.Context, Entry) error { return nil }

func (Nop) Entries(context.Context, string) ([]Entry, error) { return nil, nil }

func (Nop) Count(context.Context) (int, error) { return 0, nil }

func (Nop) Close() error { return nil }
