// Package tasks holds the session's task list in memory and writes every
// change through to storage before applying it to the cache.
package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"github.com/tgienger/todo/internal/models"
	"github.com/tgienger/todo/internal/query"
	"github.com/tgienger/todo/internal/storage"
)

// maxIDAttempts bounds regeneration when a new ID collides with a cached one
const maxIDAttempts = 3

// Persister is the whole-collection storage the store writes through to
type Persister interface {
	Load(ctx context.Context) ([]models.Task, error)
	Add(ctx context.Context, task models.Task) error
	Update(ctx context.Context, id string, patch models.TaskPatch) error
	Delete(ctx context.Context, id string) error
	Clear(ctx context.Context) error
}

var _ Persister = (*storage.Tasks)(nil)

// Store is the write-through cache of the task list.
//
// Mutations run one at a time: each waits for the previous one to finish,
// so the load-modify-save cycles underneath never interleave.
type Store struct {
	persist Persister
	now     func() time.Time
	newID   func() string
	logger  *slog.Logger

	writer *semaphore.Weighted

	mu     sync.RWMutex
	tasks  []models.Task
	params query.Params

	subMu  sync.Mutex
	subs   map[int]func(Event)
	nextID int
}

// Option configures a Store
type Option func(*Store)

// WithClock overrides the time source
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDGenerator overrides how task IDs are made
func WithIDGenerator(gen func() string) Option {
	return func(s *Store) { s.newID = gen }
}

// WithLogger sets the logger
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// WithParams sets the initial view parameters
func WithParams(p query.Params) Option {
	return func(s *Store) { s.params = p }
}

// NewID returns a time-ordered unique task ID
func NewID() string {
	return "task_" + uuid.Must(uuid.NewV7()).String()
}

// New creates an empty store. Call Load to fill it from storage.
func New(persist Persister, opts ...Option) *Store {
	s := &Store{
		persist: persist,
		now:     time.Now,
		newID:   NewID,
		logger:  slog.Default(),
		writer:  semaphore.NewWeighted(1),
		tasks:   []models.Task{},
		params:  query.DefaultParams(),
		subs:    make(map[int]func(Event)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) lock(ctx context.Context) error {
	return s.writer.Acquire(ctx, 1)
}

func (s *Store) unlock() {
	s.writer.Release(1)
}

// Load replaces the cache with the stored list. A storage failure is logged
// and leaves the cache as it was; only a canceled context is returned.
func (s *Store) Load(ctx context.Context) error {
	if err := s.lock(ctx); err != nil {
		return err
	}
	defer s.unlock()

	loaded, err := s.persist.Load(ctx)
	if err != nil {
		s.logger.Warn("Failed to load tasks, keeping cached list", "error", err)
		return nil
	}

	s.mu.Lock()
	s.tasks = loaded
	s.mu.Unlock()

	s.publish(Event{Kind: EventLoaded})
	return nil
}

// Add creates a task from in, saves it and appends it to the cache
func (s *Store) Add(ctx context.Context, in models.TaskInput) (models.Task, error) {
	if err := s.lock(ctx); err != nil {
		return models.Task{}, err
	}
	defer s.unlock()

	in, err := in.Normalize()
	if err != nil {
		return models.Task{}, fmt.Errorf("add task: %w", err)
	}
	id, err := s.uniqueID()
	if err != nil {
		return models.Task{}, err
	}
	now := s.now()
	task := models.Task{
		ID:          id,
		Title:       in.Title,
		Description: in.Description,
		Notes:       in.Notes,
		Category:    in.Category,
		Priority:    in.Priority,
		DueDate:     in.DueDate,
		Completed:   in.Completed,
		CreatedAt:   now,
	}
	if task.Completed {
		task.CompletedAt = &now
	}
	task = task.Clone()

	if err := s.persist.Add(ctx, task); err != nil {
		return models.Task{}, fmt.Errorf("add task: %w", err)
	}

	s.mu.Lock()
	s.tasks = append(s.tasks, task)
	s.mu.Unlock()

	s.logger.Debug("Task added", "id", task.ID)
	s.publish(Event{Kind: EventAdded, ID: task.ID})
	return task.Clone(), nil
}

func (s *Store) uniqueID() (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for range maxIDAttempts {
		id := s.newID()
		if models.IndexOf(s.tasks, id) == -1 {
			return id, nil
		}
	}
	return "", fmt.Errorf("add task: %w", ErrIDCollision)
}

// Update saves patch for the task with the given ID, then merges it into the
// cache. Unknown IDs are ignored.
func (s *Store) Update(ctx context.Context, id string, patch models.TaskPatch) error {
	if err := s.lock(ctx); err != nil {
		return err
	}
	defer s.unlock()
	return s.update(ctx, id, patch)
}

func (s *Store) update(ctx context.Context, id string, patch models.TaskPatch) error {
	if err := patch.Validate(); err != nil {
		return fmt.Errorf("update task %s: %w", id, err)
	}
	if patch.Stamp().IsZero() {
		patch = patch.At(s.now())
	}
	if err := s.persist.Update(ctx, id, patch); err != nil {
		return fmt.Errorf("update task %s: %w", id, err)
	}

	s.mu.Lock()
	i := models.IndexOf(s.tasks, id)
	if i != -1 {
		s.tasks[i] = patch.Apply(s.tasks[i])
	}
	s.mu.Unlock()

	if i != -1 {
		s.publish(Event{Kind: EventUpdated, ID: id})
	}
	return nil
}

// Delete removes the task with the given ID from storage and the cache
func (s *Store) Delete(ctx context.Context, id string) error {
	if err := s.lock(ctx); err != nil {
		return err
	}
	defer s.unlock()

	if err := s.persist.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete task %s: %w", id, err)
	}

	s.mu.Lock()
	before := len(s.tasks)
	s.tasks = slices.DeleteFunc(s.tasks, func(t models.Task) bool { return t.ID == id })
	removed := len(s.tasks) != before
	s.mu.Unlock()

	if removed {
		s.publish(Event{Kind: EventDeleted, ID: id})
	}
	return nil
}

// ToggleComplete flips the completed state of a cached task, stamping
// CompletedAt when it becomes complete and clearing it when reopened.
// Unknown IDs are ignored.
func (s *Store) ToggleComplete(ctx context.Context, id string) error {
	if err := s.lock(ctx); err != nil {
		return err
	}
	defer s.unlock()

	task, ok := s.Get(id)
	if !ok {
		return nil
	}
	completed := !task.Completed
	return s.update(ctx, id, models.TaskPatch{Completed: &completed})
}

// ClearAll deletes every task
func (s *Store) ClearAll(ctx context.Context) error {
	if err := s.lock(ctx); err != nil {
		return err
	}
	defer s.unlock()

	if err := s.persist.Clear(ctx); err != nil {
		return fmt.Errorf("clear tasks: %w", err)
	}

	s.mu.Lock()
	s.tasks = []models.Task{}
	s.mu.Unlock()

	s.publish(Event{Kind: EventCleared})
	return nil
}

// Tasks returns a copy of the cached list in stored order
func (s *Store) Tasks() []models.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return models.CloneAll(s.tasks)
}

// Get returns a copy of the cached task with the given ID
func (s *Store) Get(id string) (models.Task, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := models.IndexOf(s.tasks, id)
	if i == -1 {
		return models.Task{}, false
	}
	return s.tasks[i].Clone(), true
}

// Params returns the current view parameters
func (s *Store) Params() query.Params {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.params
}

// SetParams changes how View filters, searches and sorts
func (s *Store) SetParams(p query.Params) {
	s.mu.Lock()
	s.params = p
	s.mu.Unlock()
	s.publish(Event{Kind: EventParamsChanged})
}

// View returns the cached list filtered, searched and sorted by the current params
func (s *Store) View() []models.Task {
	s.mu.RLock()
	tasks, p := models.CloneAll(s.tasks), s.params
	s.mu.RUnlock()
	return query.Apply(tasks, p, s.now())
}

// Stats counts the cached tasks by status
func (s *Store) Stats() query.Stats {
	return query.Summarize(s.Tasks(), s.now())
}
