package domain

import (
	"context"
	"errors"
)

// Counter stores the last issued sequence per taxonomy scope. Mutated only
// through an atomic increment-and-read.
type Counter struct {
	ScopeKey     string `gorm:"primaryKey;size:32"`
	NextSequence int64  `gorm:"not null;default:0"`
}

// TableName sets the database table name.
func (Counter) TableName() string { return "serial_counters" }

var (
	// ErrContention is returned after bounded retries against the counter
	// row are exhausted. Callers may retry the whole operation.
	ErrContention = errors.New("serial_contention")
)

type Allocator interface {
	// Allocate issues the next serial for the scope, formatted
	// "{SCOPE}-{sequence:06d}". A serial handed out is never reissued,
	// even when the caller's enclosing transaction later fails.
	Allocate(ctx context.Context, scopeKey string) (string, error)
}
