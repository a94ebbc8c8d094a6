package runs

import (
	"context"
	"sort"
	"sync"

	"github.com/KirkDiggler/rpg-action/internal/errors"
)

// InMemoryRepository implements Repository using in-memory storage. It is
// used when no redis address is configured.
type InMemoryRepository struct {
	mu      sync.RWMutex
	history int
	store   map[string]*Record
}

// NewInMemory creates a new in-memory repository keeping at most history
// records (100 when zero)
func NewInMemory(history int) *InMemoryRepository {
	if history <= 0 {
		history = defaultHistory
	}
	return &InMemoryRepository{
		history: history,
		store:   make(map[string]*Record),
	}
}

var _ Repository = (*InMemoryRepository)(nil)

// Save stores a record
func (r *InMemoryRepository) Save(_ context.Context, input *SaveInput) (*SaveOutput, error) {
	if err := validateSave(input); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	stored := *input.Record
	r.store[stored.ID] = &stored

	if excess := len(r.store) - r.history; excess > 0 {
		for _, old := range r.sortedLocked()[r.history:] {
			delete(r.store, old.ID)
		}
	}

	return &SaveOutput{Record: input.Record}, nil
}

// Get retrieves a record by id
func (r *InMemoryRepository) Get(_ context.Context, input *GetInput) (*GetOutput, error) {
	if input == nil || input.ID == "" {
		return nil, errors.InvalidArgument("run ID is required")
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	record, ok := r.store[input.ID]
	if !ok {
		return nil, errors.NotFoundf("run %s not found", input.ID)
	}

	// Return a copy to prevent external modification
	out := *record
	return &GetOutput{Record: &out}, nil
}

// ListRecent returns records newest first
func (r *InMemoryRepository) ListRecent(_ context.Context, input *ListRecentInput) (*ListRecentOutput, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sorted := r.sortedLocked()
	if input != nil && input.Limit > 0 && input.Limit < len(sorted) {
		sorted = sorted[:input.Limit]
	}

	records := make([]*Record, len(sorted))
	for i, rec := range sorted {
		out := *rec
		records[i] = &out
	}
	return &ListRecentOutput{Records: records}, nil
}

// sortedLocked orders by finish time descending, id breaking ties
func (r *InMemoryRepository) sortedLocked() []*Record {
	all := make([]*Record, 0, len(r.store))
	for _, rec := range r.store {
		all = append(all, rec)
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].FinishedAt.Equal(all[j].FinishedAt) {
			return all[i].ID > all[j].ID
		}
		return all[i].FinishedAt.After(all[j].FinishedAt)
	})
	return all
}
