// Package query derives the visible task list: filter by status, then search
// by text and facets, then sort. Every function returns a new slice and
// leaves its input untouched.
package query

import (
	"slices"
	"strings"
	"time"

	"github.com/tgienger/todo/internal/models"
)

// Filter keeps the tasks matching a status filter, judged as of now
func Filter(tasks []models.Task, f models.Filter) []models.Task {
	return FilterAt(tasks, f, time.Now())
}

// FilterAt is Filter with an explicit current time
func FilterAt(tasks []models.Task, f models.Filter, now time.Time) []models.Task {
	switch f {
	case models.FilterPending:
		return keep(tasks, func(t models.Task) bool { return !t.Completed })
	case models.FilterCompleted:
		return keep(tasks, func(t models.Task) bool { return t.Completed })
	case models.FilterOverdue:
		return keep(tasks, func(t models.Task) bool { return IsOverdue(t, now) })
	default:
		return slices.Clone(tasks)
	}
}

// IsOverdue reports whether an open task's due day is before today.
// Days are compared in now's location; a task due today is never overdue.
func IsOverdue(t models.Task, now time.Time) bool {
	if t.Completed || t.DueDate == nil {
		return false
	}
	return startOfDay(t.DueDate.In(now.Location())).Before(startOfDay(now))
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// SearchQuery holds the free-text query and the optional facets.
// A nil facet matches everything.
type SearchQuery struct {
	Text     string
	Category *models.Category
	Priority *models.Priority
}

// IsZero reports whether the query matches every task
func (q SearchQuery) IsZero() bool {
	return strings.TrimSpace(q.Text) == "" && q.Category == nil && q.Priority == nil
}

// Matches reports whether a task passes both the text and the facet test
func (q SearchQuery) Matches(t models.Task) bool {
	text := strings.ToLower(strings.TrimSpace(q.Text))
	if text != "" &&
		!strings.Contains(strings.ToLower(t.Title), text) &&
		!strings.Contains(strings.ToLower(t.Description), text) &&
		!strings.Contains(strings.ToLower(t.Notes), text) {
		return false
	}
	if q.Category != nil && t.Category != *q.Category {
		return false
	}
	if q.Priority != nil && t.Priority != *q.Priority {
		return false
	}
	return true
}

// Search keeps the tasks matching q
func Search(tasks []models.Task, q SearchQuery) []models.Task {
	if q.IsZero() {
		return slices.Clone(tasks)
	}
	return keep(tasks, q.Matches)
}

// Sort orders tasks by s. The sort is stable, so ties keep their input order.
func Sort(tasks []models.Task, s models.Sort) []models.Task {
	sorted := slices.Clone(tasks)
	switch s {
	case models.SortPriority:
		slices.SortStableFunc(sorted, func(a, b models.Task) int {
			return b.Priority.Rank() - a.Priority.Rank()
		})
	case models.SortDueDate:
		slices.SortStableFunc(sorted, compareDue)
	default:
		slices.SortStableFunc(sorted, func(a, b models.Task) int {
			return b.CreatedAt.Compare(a.CreatedAt)
		})
	}
	return sorted
}

// compareDue orders by due date ascending with undated tasks last
func compareDue(a, b models.Task) int {
	switch {
	case a.DueDate == nil && b.DueDate == nil:
		return 0
	case a.DueDate == nil:
		return 1
	case b.DueDate == nil:
		return -1
	}
	return a.DueDate.Compare(*b.DueDate)
}

// Params is everything that shapes the visible list
type Params struct {
	Filter models.Filter
	Sort   models.Sort
	Search SearchQuery
}

// DefaultParams shows every task, newest first
func DefaultParams() Params {
	return Params{Filter: models.FilterAll, Sort: models.SortCreatedDate}
}

// Apply runs filter, search and sort in that order
func Apply(tasks []models.Task, p Params, now time.Time) []models.Task {
	filtered := FilterAt(tasks, p.Filter, now)
	searched := Search(filtered, p.Search)
	return Sort(searched, p.Sort)
}

func keep(tasks []models.Task, pred func(models.Task) bool) []models.Task {
	out := make([]models.Task, 0, len(tasks))
	for _, t := range tasks {
		if pred(t) {
			out = append(out, t)
		}
	}
	return out
}
