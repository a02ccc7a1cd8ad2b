// Package kv defines the string key/value store the transaction list and
// the theme are persisted into.
package kv

import (
	"context"
	"errors"
)

// Keys of the persisted state.
const (
	KeyTransactions = "transactions"
	KeyTheme        = "theme"
)

// ErrNotFound is returned by Get when the key holds no value.
var ErrNotFound = errors.New("kv: key not found")

type (
	// Store is an opaque get/set string store. Set always overwrites.
	Store interface {
		Get(ctx context.Context, key string) (string, error)
		Set(ctx context.Context, key, value string) error
	}

	// Pinger is implemented by stores backed by an external service.
	Pinger interface {
		Ping(ctx context.Context) error
	}
)
