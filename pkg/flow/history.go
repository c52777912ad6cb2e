package flow

import (
	"sync"

	"github.com/kodisha/flowd/pkg/models"
)

// DefaultHistoryCapacity bounds the in-memory execution history. Unbounded
// growth here is a resource leak, so eviction is a correctness requirement.
const DefaultHistoryCapacity = 1000

// History is a fixed-capacity ring buffer of execution records. Once full,
// each append evicts the oldest record.
type History struct {
	mu      sync.Mutex
	records []*models.ExecutionRecord
	next    int
	full    bool
}

func NewHistory(capacity int) *History {
	if capacity <= 0 {
		capacity = DefaultHistoryCapacity
	}

	return &History{records: make([]*models.ExecutionRecord, capacity)}
}

// Append stores a record, evicting the oldest when at capacity. Appends are
// atomic per flow completion; two flows never interleave partial results.
func (h *History) Append(record *models.ExecutionRecord) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.records[h.next] = record
	h.next = (h.next + 1) % len(h.records)

	if h.next == 0 {
		h.full = true
	}
}

// Recent returns up to limit records, newest first. A non-positive limit
// returns everything retained.
func (h *History) Recent(limit int) []*models.ExecutionRecord {
	h.mu.Lock()
	defer h.mu.Unlock()

	size := h.next
	if h.full {
		size = len(h.records)
	}

	if limit <= 0 || limit > size {
		limit = size
	}

	out := make([]*models.ExecutionRecord, 0, limit)

	for i := 1; i <= limit; i++ {
		idx := (h.next - i + len(h.records)) % len(h.records)
		out = append(out, h.records[idx])
	}

	return out
}

// Len reports how many records are currently retained.
func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.full {
		return len(h.records)
	}

	return h.next
}
