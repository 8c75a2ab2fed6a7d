package cache

import (
	"context"
	"sync"
)

var _ Backend = (*MemoryBackend)(nil)

// MemoryBackend keeps the slot in process memory. Used in tests and in
// development mode, where losing the cache on restart is acceptable.
type MemoryBackend struct {
	mutex sync.Mutex
	data  []byte
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{}
}

func (b *MemoryBackend) Load(_ context.Context) ([]byte, error) {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	if b.data == nil {
		return nil, nil
	}
	return append([]byte(nil), b.data...), nil
}

func (b *MemoryBackend) Update(_ context.Context, fn func(cur []byte) ([]byte, error)) error {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	var cur []byte
	if b.data != nil {
		cur = append([]byte(nil), b.data...)
	}
	next, err := fn(cur)
	if err != nil {
		return err
	}
	b.data = next
	return nil
}

// Set overwrites the slot with raw content, bypassing any checks.
// Test helper to simulate a corrupt or foreign slot.
func (b *MemoryBackend) Set(data []byte) {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	b.data = data
}

func (b *MemoryBackend) Close() error {
	return nil
}
