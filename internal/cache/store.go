// Package cache persists the last raw rates payload so that cooperating
// processes can share one refresh.
package cache

import (
	"context"
	"errors"
)

// ErrInvalidCache is returned when the cache target cannot be written.
var ErrInvalidCache = errors.New("invalid cache")

// Store reads and writes the raw rates payload exactly as received.
// Read reports false when nothing was ever written or the payload cannot be read.
type Store interface {
	Read(ctx context.Context) ([]byte, bool)
	Write(ctx context.Context, payload []byte) error
}

// Pinger is implemented by stores backed by a remote server.
type Pinger interface {
	Ping(ctx context.Context) error
}

// None is a Store that never holds a payload; it disables caching.
type None struct{}

// Read always reports an absent payload.
func (None) Read(context.Context) ([]byte, bool) { return nil, false }

// Write discards the payload.
func (None) Write(context.Context, []byte) error { return nil }

var _ Store = None{}
