package storage

import (
	"sync"

	"github.com/pdxmph/tasks/internal/tasks"
)

// MemoryBackend keeps tasks in process memory. Nothing survives the process;
// it is used for dry runs and tests.
type MemoryBackend struct {
	mu    sync.Mutex
	tasks []tasks.Task

	// FailSave, when set, is returned from every Save wrapped in a StorageError
	FailSave error
	saves    int
}

// NewMemoryBackend creates a memory backend seeded with a copy of initial
func NewMemoryBackend(initial ...tasks.Task) *MemoryBackend {
	return &MemoryBackend{tasks: cloneAll(initial)}
}

// Name returns the backend identifier
func (m *MemoryBackend) Name() string {
	return "memory"
}

// Load returns a copy of the stored tasks
func (m *MemoryBackend) Load() ([]tasks.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return cloneAll(m.tasks), nil
}

// Save stores a copy of list
func (m *MemoryBackend) Save(list []tasks.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailSave != nil {
		return &tasks.StorageError{Op: "save", Err: m.FailSave}
	}
	m.tasks = cloneAll(list)
	m.saves++
	return nil
}

// Saves returns how many successful saves have happened
func (m *MemoryBackend) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}

// Close is a no-op
func (m *MemoryBackend) Close() error {
	return nil
}

func init() {
	Register("memory", func(string) (Backend, error) { return NewMemoryBackend(), nil })
}
