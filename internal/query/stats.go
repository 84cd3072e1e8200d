package query

import (
	"time"

	"github.com/tgienger/todo/internal/models"
)

// Stats counts tasks by status
type Stats struct {
	Total     int
	Pending   int
	Completed int
	Overdue   int
}

// Summarize counts tasks by status as of now
func Summarize(tasks []models.Task, now time.Time) Stats {
	s := Stats{Total: len(tasks)}
	for _, t := range tasks {
		if t.Completed {
			s.Completed++
			continue
		}
		s.Pending++
		if IsOverdue(t, now) {
			s.Overdue++
		}
	}
	return s
}

// CompletionRate is the share of completed tasks, 0 for an empty list
func (s Stats) CompletionRate() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Completed) / float64(s.Total)
}
