// Package store abstracts the shared realtime key-value tree every client
// reconciles against. Values live in a slash-pathed tree with last-write-wins
// semantics; subscriptions observe a subtree and fire on every change.
package store

import (
	"context"
	"encoding/json"
	"errors"
)

// SubscriptionFunc receives the marshaled subtree after each change. A nil
// value means the subtree is absent.
type SubscriptionFunc func(value json.RawMessage)

// Subscription cancels delivery when no longer needed. Cancel is idempotent.
type Subscription interface {
	Cancel()
}

// ErrClosed is returned by operations on a closed store handle.
var ErrClosed = errors.New("store: closed")

// Store is the shared-store surface the world client depends on. Every call
// may complete asynchronously on the backing transport; Get is the only
// operation whose result the caller awaits.
type Store interface {
	// Get decodes the subtree at path into out. The boolean reports
	// whether the subtree exists; out is untouched when it does not.
	Get(ctx context.Context, path string, out any) (bool, error)

	// Set replaces the subtree at path.
	Set(ctx context.Context, path string, value any) error

	// Update merges fields into the node at path. Field keys may be
	// slash-joined relative paths (for example "deliveredTo/abc").
	Update(ctx context.Context, path string, fields map[string]any) error

	// Remove deletes the subtree at path. Removing an absent path is a
	// no-op, not an error.
	Remove(ctx context.Context, path string) error

	// Subscribe registers fn for the subtree at path. fn fires once
	// immediately with the current value and then after every change
	// touching the subtree.
	Subscribe(path string, fn SubscriptionFunc) (Subscription, error)

	// OnDisconnect schedules a Remove of path to run when this handle's
	// connection drops or the handle closes.
	OnDisconnect(path string) error

	// Close releases the handle and runs its disconnect hooks.
	Close() error
}
