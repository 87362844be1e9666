// Package store provides the persistence port for the co-author roster.
//
// The roster occupies a single key-value slot. Every mutation writes the
// whole list, so a read never observes a partially updated roster.
package store

import (
	"context"

	"github.com/freema/coauthor/internal/roster"
)

// Store loads and saves the full roster. Save replaces the slot's value
// atomically from the caller's perspective; Load of an empty slot returns an
// empty list, not an error.
type Store interface {
	Load(ctx context.Context) ([]roster.Entry, error)
	Save(ctx context.Context, entries []roster.Entry) error
}
