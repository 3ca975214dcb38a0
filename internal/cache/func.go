package cache

import (
	"context"
	"fmt"
)

var _ Store = (*FuncStore)(nil)

// FuncStore delegates persistence to a pair of callbacks.
type FuncStore struct {
	ReadFunc  func(ctx context.Context) ([]byte, bool)
	WriteFunc func(ctx context.Context, payload []byte) error
}

// NewFuncStore creates a FuncStore from a read and a write callback.
func NewFuncStore(read func(ctx context.Context) ([]byte, bool), write func(ctx context.Context, payload []byte) error) *FuncStore {
	return &FuncStore{ReadFunc: read, WriteFunc: write}
}

// Read calls the read callback; a nil callback reads as absent.
func (s *FuncStore) Read(ctx context.Context) ([]byte, bool) {
	if s.ReadFunc == nil {
		return nil, false
	}
	return s.ReadFunc(ctx)
}

// Write calls the write callback and wraps its failure in ErrInvalidCache.
func (s *FuncStore) Write(ctx context.Context, payload []byte) error {
	if s.WriteFunc == nil {
		return nil
	}
	if err := s.WriteFunc(ctx, payload); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidCache, err)
	}
	return nil
}
