// Package session owns the anonymous session token that scopes a client's
// comparison jobs and history.
//
// The token is created once, on first need, and persisted in a durable Store
// before it is handed out. It is never regenerated while the store retains it;
// when the store cannot be read or written, GetOrCreate fails instead of
// minting a throwaway token, since a token per call would split one user's
// jobs across many sessions.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/kozaktomas/face-compare/internal/constants"
)

// Identity hands out the session token held in a Store.
type Identity struct {
	store    Store
	key      string
	newToken func() string
	mu       sync.Mutex
}

// NewIdentity creates an Identity backed by store.
func NewIdentity(store Store) *Identity {
	return &Identity{
		store:    store,
		key:      constants.SessionKey,
		newToken: uuid.NewString,
	}
}

// GetOrCreate returns the stored token, creating and persisting one first if
// the store holds none. Repeated calls return the identical token.
func (i *Identity) GetOrCreate(ctx context.Context) (string, error) {
	i.mu.Lock()
	defer i.mu.Unlock()

	token, ok, err := i.store.Get(ctx, i.key)
	if err != nil {
		return "", fmt.Errorf("%w: read %s: %w", ErrStorageUnavailable, i.key, err)
	}
	if ok && token != "" {
		return token, nil
	}

	// Another process may win the race; SetIfAbsent returns its token.
	token, err = i.store.SetIfAbsent(ctx, i.key, i.newToken())
	if err != nil {
		return "", fmt.Errorf("%w: write %s: %w", ErrStorageUnavailable, i.key, err)
	}
	if token == "" {
		return "", fmt.Errorf("%w: %s is empty after write", ErrStorageUnavailable, i.key)
	}
	return token, nil
}

// Current returns the stored token without creating one.
func (i *Identity) Current(ctx context.Context) (string, bool, error) {
	token, ok, err := i.store.Get(ctx, i.key)
	if err != nil {
		return "", false, fmt.Errorf("%w: read %s: %w", ErrStorageUnavailable, i.key, err)
	}
	return token, ok && token != "", nil
}

// IsUnavailable reports whether err came from an unusable store.
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrStorageUnavailable)
}
