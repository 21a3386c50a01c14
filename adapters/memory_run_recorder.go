package adapters

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"

	"github.com/shelenderrkumar/healthcare-translation/domain/entities"
	"github.com/shelenderrkumar/healthcare-translation/domain/repositories"
)

const defaultRunRecordCapacity = 500

// MemoryRunRecorder keeps the most recent run records in a fixed size ring.
// Used when no MongoDB is configured.
type MemoryRunRecorder struct {
	mu      sync.RWMutex
	records []*entities.RunRecord
	next    int
	full    bool
}

var _ repositories.RunRecorder = (*MemoryRunRecorder)(nil)

// NewMemoryRunRecorder creates a recorder holding up to capacity records
func NewMemoryRunRecorder(capacity int) *MemoryRunRecorder {
	if capacity <= 0 {
		capacity = defaultRunRecordCapacity
	}
	return &MemoryRunRecorder{
		records: make([]*entities.RunRecord, capacity),
	}
}

// Record implements repositories.RunRecorder
func (m *MemoryRunRecorder) Record(ctx context.Context, record *entities.RunRecord) error {
	if record == nil {
		return errors.New("run record cannot be nil")
	}
	if record.ID == "" {
		record.ID = uuid.New().String()
	}
	if err := record.Validate(); err != nil {
		return err
	}

	stored := *record
	stored.StageDurationsMs = make(map[entities.Stage]int64, len(record.StageDurationsMs))
	for k, v := range record.StageDurationsMs {
		stored.StageDurationsMs[k] = v
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.records[m.next] = &stored
	m.next = (m.next + 1) % len(m.records)
	if m.next == 0 {
		m.full = true
	}
	return nil
}

// Recent implements repositories.RunRecorder
func (m *MemoryRunRecorder) Recent(ctx context.Context, limit int) ([]*entities.RunRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	size := m.next
	if m.full {
		size = len(m.records)
	}
	if limit <= 0 || limit > size {
		limit = size
	}

	out := make([]*entities.RunRecord, 0, limit)
	for i := 0; i < limit; i++ {
		idx := (m.next - 1 - i + len(m.records)) % len(m.records)
		record := *m.records[idx]
		out = append(out, &record)
	}
	return out, nil
}
