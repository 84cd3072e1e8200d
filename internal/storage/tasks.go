package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/tgienger/todo/internal/kv"
	"github.com/tgienger/todo/internal/models"
)

// Tasks stores the whole task collection under TasksKey
type Tasks struct {
	kv     kv.Store
	logger *slog.Logger
}

// NewTasks creates a task blob store on top of s
func NewTasks(s kv.Store, opts ...Option) *Tasks {
	o := newOptions(opts)
	return &Tasks{kv: s, logger: o.logger}
}

// Load reads the collection. A missing blob is an empty collection.
// On a read or decode failure it returns an empty collection and the error.
func (s *Tasks) Load(ctx context.Context) ([]models.Task, error) {
	data, err := s.kv.Get(ctx, TasksKey)
	if errors.Is(err, kv.ErrNotFound) {
		return []models.Task{}, nil
	}
	if err != nil {
		return []models.Task{}, fmt.Errorf("load tasks: %w", err)
	}
	var tasks []models.Task
	if err := json.Unmarshal([]byte(data), &tasks); err != nil {
		return []models.Task{}, fmt.Errorf("load tasks: %w: %v", ErrCorrupt, err)
	}
	if tasks == nil {
		tasks = []models.Task{}
	}
	return tasks, nil
}

// LoadOrEmpty reads the collection, treating any failure as no data
func (s *Tasks) LoadOrEmpty(ctx context.Context) []models.Task {
	tasks, err := s.Load(ctx)
	if err != nil {
		s.logger.Warn("Failed to load tasks, using empty list", "error", err)
	}
	return tasks
}

// Save overwrites the stored collection
func (s *Tasks) Save(ctx context.Context, tasks []models.Task) error {
	if tasks == nil {
		tasks = []models.Task{}
	}
	data, err := json.Marshal(tasks)
	if err != nil {
		return fmt.Errorf("encode tasks: %w", err)
	}
	if err := s.kv.Set(ctx, TasksKey, string(data)); err != nil {
		return fmt.Errorf("save tasks: %w", err)
	}
	return nil
}

// loadForWrite reads the collection a mutation starts from. A corrupt blob
// is replaced; any other read failure aborts the write.
func (s *Tasks) loadForWrite(ctx context.Context) ([]models.Task, error) {
	tasks, err := s.Load(ctx)
	if errors.Is(err, ErrCorrupt) {
		s.logger.Warn("Stored tasks are corrupt, replacing them", "error", err)
		return []models.Task{}, nil
	}
	return tasks, err
}

// Add appends a task to the stored collection
func (s *Tasks) Add(ctx context.Context, task models.Task) error {
	tasks, err := s.loadForWrite(ctx)
	if err != nil {
		return err
	}
	tasks = append(tasks, task)
	return s.Save(ctx, tasks)
}

// Update merges patch into the stored task with the given ID.
// It does nothing if no such task exists.
func (s *Tasks) Update(ctx context.Context, id string, patch models.TaskPatch) error {
	tasks, err := s.loadForWrite(ctx)
	if err != nil {
		return err
	}
	i := models.IndexOf(tasks, id)
	if i == -1 {
		return nil
	}
	tasks[i] = patch.Apply(tasks[i])
	return s.Save(ctx, tasks)
}

// Delete removes the task with the given ID
func (s *Tasks) Delete(ctx context.Context, id string) error {
	tasks, err := s.loadForWrite(ctx)
	if err != nil {
		return err
	}
	tasks = slices.DeleteFunc(tasks, func(t models.Task) bool { return t.ID == id })
	return s.Save(ctx, tasks)
}

// Clear removes the stored collection entirely
func (s *Tasks) Clear(ctx context.Context) error {
	if err := s.kv.Delete(ctx, TasksKey); err != nil {
		return fmt.Errorf("clear tasks: %w", err)
	}
	return nil
}
