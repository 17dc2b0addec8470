// Package store defines the shopping-list persistence interface and its
// backends.
package store

import (
	"context"
	"errors"
)

var (
	// ErrCorrupt is returned by Load when persisted state cannot be decoded.
	ErrCorrupt = errors.New("corrupt shopping list")

	// ErrUnknownBackend is returned by New for an unsupported backend name.
	ErrUnknownBackend = errors.New("unknown store backend")
)

// Item is one shopping-list entry. Field names on disk match the item and
// description keys written by earlier versions of the list.
type Item struct {
	Name        string `json:"item" yaml:"item"`
	Description string `json:"description" yaml:"description"`
}

// Store is the interface that all backing stores must implement. A store
// holds one ordered list and always reads or writes it as a whole.
type Store interface {
	// Load returns the persisted list in order. A store with no prior
	// state returns an empty list and no error.
	Load(ctx context.Context) ([]Item, error)

	// Save replaces the persisted list with items.
	Save(ctx context.Context, items []Item) error

	// Close releases the underlying handle.
	Close() error
}

func cloneItems(items []Item) []Item {
	out := make([]Item, len(items))
	copy(out, items)
	return out
}
