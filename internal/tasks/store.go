package tasks

import (
	"fmt"
	"log/slog"
	"time"
)

// Storage persists the whole task collection as a single unit.
// Load returns an empty collection when nothing has been saved yet.
// Both methods report I/O and decoding problems as *StorageError.
type Storage interface {
	Load() ([]Task, error)
	Save(tasks []Task) error
}

// Store owns the in-memory task list and keeps it in sync with a Storage.
// It is not safe for concurrent use.
type Store struct {
	storage Storage
	tasks   []Task
	nextID  int
	now     func() time.Time
	logger  *slog.Logger
}

// Option configures a Store
type Option func(*Store)

// WithClock sets the time source used for CreatedAt and CompletedAt
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// WithLogger sets the logger used for persistence events
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// NewStore loads the existing tasks from storage and prepares the next ID.
// Storage failures are returned unchanged; anything else is wrapped.
func NewStore(storage Storage, opts ...Option) (*Store, error) {
	s := &Store{
		storage: storage,
		nextID:  1,
		now:     time.Now,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}

	loaded, err := storage.Load()
	if err != nil {
		if IsStorage(err) {
			return nil, err
		}
		return nil, fmt.Errorf("initializing task store: %w", err)
	}
	if err := normalize(loaded); err != nil {
		return nil, fmt.Errorf("initializing task store: %w", err)
	}

	s.tasks = loaded
	for _, t := range loaded {
		if t.ID >= s.nextID {
			s.nextID = t.ID + 1
		}
	}
	s.logger.Debug("tasks loaded", slog.Int("count", len(loaded)), slog.Int("next_id", s.nextID))
	return s, nil
}

// normalize checks loaded tasks for identity problems and fills in a missing priority
func normalize(loaded []Task) error {
	seen := make(map[int]bool, len(loaded))
	for i := range loaded {
		t := &loaded[i]
		if t.ID <= 0 {
			return fmt.Errorf("task at position %d has invalid ID %d", i, t.ID)
		}
		if seen[t.ID] {
			return fmt.Errorf("duplicate task ID %d", t.ID)
		}
		seen[t.ID] = true

		if t.Priority == "" {
			t.Priority = PriorityMedium
		}
		if !t.Priority.Valid() {
			return fmt.Errorf("task %d has unknown priority %q", t.ID, t.Priority)
		}
	}
	return nil
}

// Add creates a task with the next available ID. An empty priority means medium.
func (s *Store) Add(text string, priority Priority) (Task, error) {
	text, err := ValidateText(text)
	if err != nil {
		return Task{}, err
	}
	if priority == "" {
		priority = PriorityMedium
	}
	if !priority.Valid() {
		return Task{}, newValidationError("Priority must be one of: low, medium, high.")
	}

	task := Task{
		ID:        s.nextID,
		Text:      text,
		Priority:  priority,
		CreatedAt: s.now().Round(0),
	}
	next := append(s.snapshot(), task)
	if err := s.commit("add", task.ID, next); err != nil {
		return Task{}, err
	}
	s.nextID++
	return task.Clone(), nil
}

// Tasks returns copies of the tasks matching filter, in insertion order
func (s *Store) Tasks(filter Filter) []Task {
	out := make([]Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		if filter.Match(t) {
			out = append(out, t.Clone())
		}
	}
	return out
}

// Task looks up a task by ID
func (s *Store) Task(id int) (Task, bool) {
	i := s.index(id)
	if i < 0 {
		return Task{}, false
	}
	return s.tasks[i].Clone(), true
}

// Complete marks a pending task as completed
func (s *Store) Complete(id int) (Task, error) {
	next, i, err := s.stage(id)
	if err != nil {
		return Task{}, err
	}
	if next[i].Completed {
		return Task{}, newValidationError("Task %d is already completed", id)
	}

	at := s.now().Round(0)
	next[i].Completed = true
	next[i].CompletedAt = &at
	if err := s.commit("complete", id, next); err != nil {
		return Task{}, err
	}
	return next[i].Clone(), nil
}

// Uncomplete returns a completed task to pending
func (s *Store) Uncomplete(id int) (Task, error) {
	next, i, err := s.stage(id)
	if err != nil {
		return Task{}, err
	}
	if !next[i].Completed {
		return Task{}, newValidationError("Task %d is not completed", id)
	}

	next[i].Completed = false
	next[i].CompletedAt = nil
	if err := s.commit("uncomplete", id, next); err != nil {
		return Task{}, err
	}
	return next[i].Clone(), nil
}

// Delete removes a task and returns it
func (s *Store) Delete(id int) (Task, error) {
	if err := ValidateID(id); err != nil {
		return Task{}, err
	}
	i := s.index(id)
	if i < 0 {
		return Task{}, newNotFoundError(id)
	}

	removed := s.tasks[i].Clone()
	next := make([]Task, 0, len(s.tasks)-1)
	for _, t := range s.tasks {
		if t.ID != id {
			next = append(next, t.Clone())
		}
	}
	if err := s.commit("delete", id, next); err != nil {
		return Task{}, err
	}
	return removed, nil
}

// Edit replaces the text of a task
func (s *Store) Edit(id int, text string) (Task, error) {
	if err := ValidateID(id); err != nil {
		return Task{}, err
	}
	text, err := ValidateText(text)
	if err != nil {
		return Task{}, err
	}
	next, i, err := s.stage(id)
	if err != nil {
		return Task{}, err
	}

	next[i].Text = text
	if err := s.commit("edit", id, next); err != nil {
		return Task{}, err
	}
	return next[i].Clone(), nil
}

// Stats counts total, completed and pending tasks
func (s *Store) Stats() Stats {
	st := Stats{Total: len(s.tasks)}
	for _, t := range s.tasks {
		if t.Completed {
			st.Completed++
		}
	}
	st.Pending = st.Total - st.Completed
	return st
}

func (s *Store) index(id int) int {
	for i, t := range s.tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}

// snapshot copies the current collection so a mutation can be staged on it
func (s *Store) snapshot() []Task {
	next := make([]Task, len(s.tasks), len(s.tasks)+1)
	for i, t := range s.tasks {
		next[i] = t.Clone()
	}
	return next
}

// stage validates id and returns a snapshot together with the task's position in it
func (s *Store) stage(id int) ([]Task, int, error) {
	if err := ValidateID(id); err != nil {
		return nil, -1, err
	}
	i := s.index(id)
	if i < 0 {
		return nil, -1, newNotFoundError(id)
	}
	return s.snapshot(), i, nil
}

// commit saves next and only then makes it the current collection,
// so a failed save leaves the store untouched
func (s *Store) commit(op string, id int, next []Task) error {
	if err := s.storage.Save(next); err != nil {
		s.logger.Debug("save failed", slog.String("op", op), slog.Int("id", id), slog.Any("err", err))
		return err
	}
	s.tasks = next
	s.logger.Debug("tasks saved", slog.String("op", op), slog.Int("id", id), slog.Int("count", len(next)))
	return nil
}
