package models

import (
	"slices"
	"time"
)

// MaxNotesLength is the longest notes text the task form accepts
const MaxNotesLength = 2000

// Task represents a single task
type Task struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Notes       string     `json:"notes,omitempty"`
	Category    Category   `json:"category"`
	Priority    Priority   `json:"priority"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
	Completed   bool       `json:"completed"`
	CreatedAt   time.Time  `json:"createdAt"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}

// Clone returns a copy that shares no pointers with t
func (t Task) Clone() Task {
	if t.DueDate != nil {
		due := *t.DueDate
		t.DueDate = &due
	}
	if t.CompletedAt != nil {
		at := *t.CompletedAt
		t.CompletedAt = &at
	}
	return t
}

// HasDueDate reports whether the task has a deadline
func (t Task) HasDueDate() bool {
	return t.DueDate != nil
}

// Profile holds the user's contact details
type Profile struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// TaskInput carries the fields a caller supplies when creating a task.
// ID, CreatedAt and CompletedAt are assigned by the task store.
type TaskInput struct {
	Title       string
	Description string
	Notes       string
	Category    Category
	Priority    Priority
	DueDate     *time.Time
	Completed   bool
}

// Normalize fills an empty category or priority with the default and
// rejects values outside the allowed sets.
func (in TaskInput) Normalize() (TaskInput, error) {
	var err error
	if in.Category == "" {
		in.Category = DefaultCategory
	} else if in.Category, err = ParseCategory(string(in.Category)); err != nil {
		return in, err
	}
	if in.Priority == "" {
		in.Priority = DefaultPriority
	} else if in.Priority, err = ParsePriority(string(in.Priority)); err != nil {
		return in, err
	}
	return in, nil
}

// TaskPatch is a partial update. A nil field is left untouched.
//
// CompletedAt cannot be patched directly: it follows Completed, so a patch
// that sets Completed also stamps or clears CompletedAt.
type TaskPatch struct {
	Title        *string
	Description  *string
	Notes        *string
	Category     *Category
	Priority     *Priority
	DueDate      *time.Time
	ClearDueDate bool
	Completed    *bool

	at time.Time
}

// At fixes the time used to stamp CompletedAt, so every copy of the task
// that receives this patch ends up with the same timestamp.
func (p TaskPatch) At(now time.Time) TaskPatch {
	p.at = now
	return p
}

// Stamp returns the time the patch was fixed at, or the zero time
func (p TaskPatch) Stamp() time.Time {
	return p.at
}

// IsEmpty reports whether the patch changes nothing
func (p TaskPatch) IsEmpty() bool {
	return p.Title == nil && p.Description == nil && p.Notes == nil &&
		p.Category == nil && p.Priority == nil && p.DueDate == nil &&
		!p.ClearDueDate && p.Completed == nil
}

// Validate rejects a patch that sets an unknown category or priority.
// Unlike TaskInput there is no default: an empty value is an error.
func (p TaskPatch) Validate() error {
	if p.Category != nil {
		if _, err := ParseCategory(string(*p.Category)); err != nil {
			return err
		}
	}
	if p.Priority != nil {
		if _, err := ParsePriority(string(*p.Priority)); err != nil {
			return err
		}
	}
	return nil
}

// Apply merges the patch into t and returns the result. t is not modified.
func (p TaskPatch) Apply(t Task) Task {
	t = t.Clone()
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Notes != nil {
		t.Notes = *p.Notes
	}
	if p.Category != nil {
		t.Category = *p.Category
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.ClearDueDate {
		t.DueDate = nil
	}
	if p.DueDate != nil {
		due := *p.DueDate
		t.DueDate = &due
	}
	if p.Completed != nil {
		switch {
		case *p.Completed && (!t.Completed || t.CompletedAt == nil):
			at := p.at
			if at.IsZero() {
				at = time.Now()
			}
			t.CompletedAt = &at
		case !*p.Completed:
			t.CompletedAt = nil
		}
		t.Completed = *p.Completed
	}
	return t
}

// IndexOf returns the position of the task with the given ID, or -1
func IndexOf(tasks []Task, id string) int {
	return slices.IndexFunc(tasks, func(t Task) bool { return t.ID == id })
}

// CloneAll copies a task slice deeply
func CloneAll(tasks []Task) []Task {
	out := make([]Task, len(tasks))
	for i, t := range tasks {
		out[i] = t.Clone()
	}
	return out
}
