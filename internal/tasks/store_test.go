package tasks_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/pdxmph/tasks/internal/storage"
	"github.com/pdxmph/tasks/internal/tasks"
	"github.com/stretchr/testify/require"
	"gotest.tools/v3/assert"
)

// stepClock returns a clock that advances one minute per call
func stepClock() func() time.Time {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	return func() time.Time {
		now = now.Add(time.Minute)
		return now
	}
}

func newTestStore(t *testing.T, backend tasks.Storage) *tasks.Store {
	t.Helper()
	s, err := tasks.NewStore(backend, tasks.WithClock(stepClock()))
	require.NoError(t, err)
	return s
}

// stubStorage lets tests control Load and Save failures directly
type stubStorage struct {
	loaded  []tasks.Task
	loadErr error
	saveErr error
}

func (s *stubStorage) Load() ([]tasks.Task, error) { return s.loaded, s.loadErr }
func (s *stubStorage) Save([]tasks.Task) error     { return s.saveErr }

func TestStore_Scenario(t *testing.T) {
	s := newTestStore(t, storage.NewMemoryBackend())

	milk, err := s.Add("Buy milk", "")
	require.NoError(t, err)
	assert.Equal(t, milk.ID, 1)
	assert.Equal(t, milk.Text, "Buy milk")
	assert.Equal(t, milk.Completed, false)
	assert.Equal(t, milk.Priority, tasks.PriorityMedium)
	assert.Assert(t, milk.CompletedAt == nil)

	done, err := s.Complete(1)
	require.NoError(t, err)
	assert.Equal(t, done.Completed, true)
	assert.Assert(t, done.CompletedAt != nil)

	house, err := s.Add("Clean house", tasks.PriorityMedium)
	require.NoError(t, err)
	assert.Equal(t, house.ID, 2)

	assert.DeepEqual(t, s.Stats(), tasks.Stats{Total: 2, Completed: 1, Pending: 1})

	removed, err := s.Delete(1)
	require.NoError(t, err)
	assert.Equal(t, removed.ID, 1)

	_, ok := s.Task(1)
	assert.Assert(t, !ok)
	assert.DeepEqual(t, s.Stats(), tasks.Stats{Total: 1, Completed: 0, Pending: 1})
}

func TestStore_IDsIncreaseAcrossRestarts(t *testing.T) {
	backend := storage.NewMemoryBackend()
	s := newTestStore(t, backend)

	for i := 1; i <= 5; i++ {
		task, err := s.Add(fmt.Sprintf("task %d", i), tasks.PriorityLow)
		require.NoError(t, err)
		assert.Equal(t, task.ID, i)
	}

	restarted := newTestStore(t, backend)
	task, err := restarted.Add("after restart", "")
	require.NoError(t, err)
	assert.Equal(t, task.ID, 6)
}

func TestStore_NextIDRecomputedFromMaxOnLoad(t *testing.T) {
	backend := storage.NewMemoryBackend(
		tasks.Task{ID: 4, Text: "four", Priority: tasks.PriorityLow},
		tasks.Task{ID: 9, Text: "nine", Priority: tasks.PriorityHigh},
		tasks.Task{ID: 2, Text: "two", Priority: tasks.PriorityMedium},
	)
	s := newTestStore(t, backend)

	task, err := s.Add("ten", "")
	require.NoError(t, err)
	assert.Equal(t, task.ID, 10)

	// Deleting the highest ID frees it only after a reload
	_, err = s.Delete(10)
	require.NoError(t, err)
	task, err = s.Add("eleven", "")
	require.NoError(t, err)
	assert.Equal(t, task.ID, 11)

	_, err = s.Delete(11)
	require.NoError(t, err)
	restarted := newTestStore(t, backend)
	task, err = restarted.Add("ten again", "")
	require.NoError(t, err)
	assert.Equal(t, task.ID, 10)
}

func TestStore_AddTrimsAndKeepsPriority(t *testing.T) {
	s := newTestStore(t, storage.NewMemoryBackend())

	task, err := s.Add("   Water plants \n", tasks.PriorityHigh)
	require.NoError(t, err)
	assert.Equal(t, task.Text, "Water plants")
	assert.Equal(t, task.Priority, tasks.PriorityHigh)
	assert.Equal(t, task.CreatedAt, time.Date(2026, 3, 1, 9, 1, 0, 0, time.UTC))
}

func TestStore_CompleteThenUncompleteRestoresTask(t *testing.T) {
	s := newTestStore(t, storage.NewMemoryBackend())

	before, err := s.Add("Write report", tasks.PriorityHigh)
	require.NoError(t, err)

	_, err = s.Complete(before.ID)
	require.NoError(t, err)
	after, err := s.Uncomplete(before.ID)
	require.NoError(t, err)

	assert.DeepEqual(t, after, before)
	assert.Assert(t, after.CompletedAt == nil)
}

func TestStore_ValidationFailures(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name        string
		setup       func(t *testing.T, s *tasks.Store)
		op          func(s *tasks.Store) (tasks.Task, error)
		errContains string
		notFound    bool
	}{
		{
			name:        "add empty text",
			op:          func(s *tasks.Store) (tasks.Task, error) { return s.Add("", "") },
			errContains: "non-empty",
		},
		{
			name:        "add whitespace text",
			op:          func(s *tasks.Store) (tasks.Task, error) { return s.Add(" \t ", "") },
			errContains: "non-empty",
		},
		{
			name:        "add text too long",
			op:          func(s *tasks.Store) (tasks.Task, error) { return s.Add(strings.Repeat("a", 256), "") },
			errContains: "255",
		},
		{
			name:        "add unknown priority",
			op:          func(s *tasks.Store) (tasks.Task, error) { return s.Add("ok", tasks.Priority("urgent")) },
			errContains: "Priority must be one of",
		},
		{
			name:        "complete zero id",
			op:          func(s *tasks.Store) (tasks.Task, error) { return s.Complete(0) },
			errContains: "positive integer",
		},
		{
			name:        "complete negative id",
			op:          func(s *tasks.Store) (tasks.Task, error) { return s.Complete(-3) },
			errContains: "positive integer",
		},
		{
			name:        "complete missing task",
			op:          func(s *tasks.Store) (tasks.Task, error) { return s.Complete(42) },
			errContains: "Task with ID 42 not found",
			notFound:    true,
		},
		{
			name: "complete twice",
			setup: func(t *testing.T, s *tasks.Store) {
				_, err := s.Add("once", "")
				require.NoError(t, err)
				_, err = s.Complete(1)
				require.NoError(t, err)
			},
			op:          func(s *tasks.Store) (tasks.Task, error) { return s.Complete(1) },
			errContains: "Task 1 is already completed",
		},
		{
			name: "uncomplete pending task",
			setup: func(t *testing.T, s *tasks.Store) {
				_, err := s.Add("pending", "")
				require.NoError(t, err)
			},
			op:          func(s *tasks.Store) (tasks.Task, error) { return s.Uncomplete(1) },
			errContains: "Task 1 is not completed",
		},
		{
			name:        "uncomplete missing task",
			op:          func(s *tasks.Store) (tasks.Task, error) { return s.Uncomplete(7) },
			errContains: "not found",
			notFound:    true,
		},
		{
			name:        "delete missing task",
			op:          func(s *tasks.Store) (tasks.Task, error) { return s.Delete(1) },
			errContains: "not found",
			notFound:    true,
		},
		{
			name:        "edit missing task",
			op:          func(s *tasks.Store) (tasks.Task, error) { return s.Edit(3, "new text") },
			errContains: "not found",
			notFound:    true,
		},
		{
			name:        "edit invalid id checked before text",
			op:          func(s *tasks.Store) (tasks.Task, error) { return s.Edit(0, "") },
			errContains: "positive integer",
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			backend := storage.NewMemoryBackend()
			s := newTestStore(t, backend)
			if tc.setup != nil {
				tc.setup(t, s)
			}
			savesBefore := backend.Saves()

			_, err := tc.op(s)
			require.Error(t, err)
			require.ErrorContains(t, err, tc.errContains)
			assert.Assert(t, tasks.IsValidation(err), "expected validation error, got %T", err)
			assert.Equal(t, errors.Is(err, tasks.ErrNotFound), tc.notFound)
			assert.Equal(t, backend.Saves(), savesBefore, "failed operation must not persist")
		})
	}
}

func TestStore_EditRejectsEmptyTextAndKeepsOriginal(t *testing.T) {
	backend := storage.NewMemoryBackend()
	s := newTestStore(t, backend)
	_, err := s.Add("Buy milk", "")
	require.NoError(t, err)
	_, err = s.Add("Clean house", "")
	require.NoError(t, err)

	_, err = s.Edit(2, "")
	require.Error(t, err)
	assert.Assert(t, tasks.IsValidation(err))

	task, ok := s.Task(2)
	require.True(t, ok)
	assert.Equal(t, task.Text, "Clean house")

	stored, err := backend.Load()
	require.NoError(t, err)
	assert.Equal(t, stored[1].Text, "Clean house")
}

func TestStore_EditTrimsText(t *testing.T) {
	s := newTestStore(t, storage.NewMemoryBackend())
	_, err := s.Add("Buy groceries", "")
	require.NoError(t, err)

	task, err := s.Edit(1, "  Buy organic groceries ")
	require.NoError(t, err)
	assert.Equal(t, task.Text, "Buy organic groceries")
}

func TestStore_DeletedIDIsNotFoundEverywhere(t *testing.T) {
	s := newTestStore(t, storage.NewMemoryBackend())
	_, err := s.Add("short lived", "")
	require.NoError(t, err)
	_, err = s.Delete(1)
	require.NoError(t, err)

	ops := map[string]func() (tasks.Task, error){
		"complete":   func() (tasks.Task, error) { return s.Complete(1) },
		"uncomplete": func() (tasks.Task, error) { return s.Uncomplete(1) },
		"delete":     func() (tasks.Task, error) { return s.Delete(1) },
		"edit":       func() (tasks.Task, error) { return s.Edit(1, "again") },
	}
	for name, op := range ops {
		_, err := op()
		require.Error(t, err, name)
		assert.Assert(t, errors.Is(err, tasks.ErrNotFound), "%s: %v", name, err)
	}
}

func TestStore_FiltersAndStatsAgree(t *testing.T) {
	s := newTestStore(t, storage.NewMemoryBackend())
	for _, text := range []string{"a", "b", "c", "d", "e"} {
		_, err := s.Add(text, "")
		require.NoError(t, err)
	}
	for _, id := range []int{2, 4} {
		_, err := s.Complete(id)
		require.NoError(t, err)
	}

	all := s.Tasks(tasks.FilterAll)
	completed := s.Tasks(tasks.FilterCompleted)
	pending := s.Tasks(tasks.FilterPending)
	stats := s.Stats()

	assert.Equal(t, len(all), stats.Total)
	assert.Equal(t, len(completed)+len(pending), stats.Total)
	assert.Equal(t, len(completed), stats.Completed)
	assert.Equal(t, stats.Pending, 3)
	assert.Equal(t, stats.CompletionRate(), 40)

	var ids []int
	for _, task := range pending {
		ids = append(ids, task.ID)
	}
	assert.DeepEqual(t, ids, []int{1, 3, 5})
}

func TestStore_ReturnsDefensiveCopies(t *testing.T) {
	s := newTestStore(t, storage.NewMemoryBackend())
	_, err := s.Add("original", "")
	require.NoError(t, err)
	done, err := s.Complete(1)
	require.NoError(t, err)

	list := s.Tasks(tasks.FilterAll)
	list[0].Text = "mutated"
	*done.CompletedAt = time.Time{}

	task, ok := s.Task(1)
	require.True(t, ok)
	assert.Equal(t, task.Text, "original")
	assert.Assert(t, !task.CompletedAt.IsZero())
}

func TestStore_FailedSaveLeavesStateUnchanged(t *testing.T) {
	backend := storage.NewMemoryBackend()
	s := newTestStore(t, backend)
	_, err := s.Add("keep me", "")
	require.NoError(t, err)

	backend.FailSave = errors.New("disk full")

	testCases := []struct {
		name string
		op   func() (tasks.Task, error)
	}{
		{name: "add", op: func() (tasks.Task, error) { return s.Add("lost", "") }},
		{name: "complete", op: func() (tasks.Task, error) { return s.Complete(1) }},
		{name: "edit", op: func() (tasks.Task, error) { return s.Edit(1, "changed") }},
		{name: "delete", op: func() (tasks.Task, error) { return s.Delete(1) }},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := tc.op()
			require.Error(t, err)
			assert.Assert(t, tasks.IsStorage(err), "expected storage error, got %v", err)
			require.ErrorContains(t, err, "disk full")

			list := s.Tasks(tasks.FilterAll)
			require.Len(t, list, 1)
			assert.Equal(t, list[0].Text, "keep me")
			assert.Equal(t, list[0].Completed, false)
		})
	}

	backend.FailSave = nil
	task, err := s.Add("next", "")
	require.NoError(t, err)
	assert.Equal(t, task.ID, 2, "failed add must not consume an ID")
}

func TestNewStore_LoadFailures(t *testing.T) {
	t.Parallel()

	storageErr := &tasks.StorageError{Op: "load", Path: "tasks.json", Err: errors.New("permission denied")}

	testCases := []struct {
		name        string
		backend     *stubStorage
		isStorage   bool
		errContains string
	}{
		{
			name:        "storage error propagates unchanged",
			backend:     &stubStorage{loadErr: storageErr},
			isStorage:   true,
			errContains: "permission denied",
		},
		{
			name:        "other load error is wrapped",
			backend:     &stubStorage{loadErr: errors.New("boom")},
			errContains: "initializing task store: boom",
		},
		{
			name: "duplicate ids",
			backend: &stubStorage{loaded: []tasks.Task{
				{ID: 1, Text: "a", Priority: tasks.PriorityLow},
				{ID: 1, Text: "b", Priority: tasks.PriorityLow},
			}},
			errContains: "duplicate task ID 1",
		},
		{
			name:        "non-positive id",
			backend:     &stubStorage{loaded: []tasks.Task{{ID: 0, Text: "a"}}},
			errContains: "invalid ID 0",
		},
		{
			name:        "unknown priority",
			backend:     &stubStorage{loaded: []tasks.Task{{ID: 1, Text: "a", Priority: "urgent"}}},
			errContains: `unknown priority "urgent"`,
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := tasks.NewStore(tc.backend)
			require.Error(t, err)
			require.ErrorContains(t, err, tc.errContains)
			assert.Equal(t, tasks.IsStorage(err), tc.isStorage)
			if tc.isStorage {
				assert.Equal(t, err, error(storageErr))
			}
		})
	}
}

func TestNewStore_MissingPriorityDefaultsToMedium(t *testing.T) {
	s := newTestStore(t, &stubStorage{loaded: []tasks.Task{{ID: 3, Text: "legacy"}}})

	task, ok := s.Task(3)
	require.True(t, ok)
	assert.Equal(t, task.Priority, tasks.PriorityMedium)
}
