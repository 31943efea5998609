// Package storage provides the backends that persist the task list.
// Every backend stores the whole collection as one unit and is selected by name
// through the registry.
package storage

import "github.com/pdxmph/tasks/internal/tasks"

// Backend is a tasks.Storage that can be identified and released
type Backend interface {
	tasks.Storage

	// Name returns the backend identifier (e.g., "json", "sqlite")
	Name() string

	// Close releases any resources held by the backend
	Close() error
}

// Factory creates a backend that stores its data at path
type Factory func(path string) (Backend, error)

// Compile-time checks that every backend satisfies Backend
var (
	_ Backend = (*JSONBackend)(nil)
	_ Backend = (*SQLiteBackend)(nil)
	_ Backend = (*MemoryBackend)(nil)
)

// cloneAll deep-copies a task collection
func cloneAll(in []tasks.Task) []tasks.Task {
	out := make([]tasks.Task, len(in))
	for i, t := range in {
		out[i] = t.Clone()
	}
	return out
}
