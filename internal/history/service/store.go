package service

import (
	"context"
	"errors"
	"time"

	model "github.com/babelcloud/gbox/packages/relay/pkg/chat"
)

// ErrStoreUnavailable is returned once a store has been closed.
var ErrStoreUnavailable = errors.New("history store is unavailable")

// Store is an append-only log of chat exchanges.
type Store interface {
	// Append records entry. Missing ID, Username and CreatedAt are filled in.
	Append(ctx context.Context, entry model.Entry) error
	// ListByUsername returns the user's entries, newest first.
	ListByUsername(ctx context.Context, username string) ([]model.Entry, error)
	// Prune deletes entries created before olderThan and reports how many went.
	Prune(ctx context.Context, olderThan time.Time) (int64, error)
	Close()
}
