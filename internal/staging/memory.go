package staging

import (
	"sync"

	"github.com/mesh-intelligence/docket/pkg/types"
)

// MemoryBuffer is an in-process types.StagingBuffer. It does not survive a
// restart; scrape --dry-run and tests use it.
type MemoryBuffer struct {
	mu    sync.Mutex
	batch []types.Case
}

var _ types.StagingBuffer = (*MemoryBuffer)(nil)

// NewMemoryBuffer returns an empty buffer.
func NewMemoryBuffer() *MemoryBuffer {
	return &MemoryBuffer{}
}

// Append adds c to the end of the batch.
func (b *MemoryBuffer) Append(c types.Case) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.batch = append(b.batch, c)
	return nil
}

// ReadAll returns a copy of the staged batch.
func (b *MemoryBuffer) ReadAll() ([]types.Case, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]types.Case, len(b.batch))
	copy(out, b.batch)
	return out, nil
}

// Clear drops every staged case.
func (b *MemoryBuffer) Clear() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.batch = nil
	return nil
}

// Len returns the number of staged cases.
func (b *MemoryBuffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.batch)
}
