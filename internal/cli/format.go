package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/tgienger/todo/internal/models"
	"github.com/tgienger/todo/internal/query"
)

// now is swapped in tests
var now = time.Now

const dateLayout = "2006-01-02"

// parseDue reads a due date flag. "none" or "" clears the date (nil, nil).
func parseDue(s string, ref time.Time) (*time.Time, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	midnight := func(t time.Time) *time.Time {
		d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, ref.Location())
		return &d
	}
	switch {
	case s == "" || s == "none":
		return nil, nil
	case s == "today":
		return midnight(ref), nil
	case s == "tomorrow":
		return midnight(ref.AddDate(0, 0, 1)), nil
	case strings.HasPrefix(s, "+") && strings.HasSuffix(s, "d"):
		n, err := strconv.Atoi(s[1 : len(s)-1])
		if err != nil || n < 0 {
			return nil, fmt.Errorf("invalid due date %q", s)
		}
		return midnight(ref.AddDate(0, 0, n)), nil
	}
	if t, err := time.ParseInLocation(dateLayout, s, ref.Location()); err == nil {
		return &t, nil
	}
	if t, err := time.Parse(time.RFC3339, strings.ToUpper(s)); err == nil {
		return &t, nil
	}
	return nil, fmt.Errorf("invalid due date %q: use YYYY-MM-DD, today, tomorrow or +Nd", s)
}

// shortID is the tail of an ID, unique enough to type
func shortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[len(id)-8:]
}

// markMatches wraps the matched parts of text in brackets
func markMatches(text, search string) string {
	var b strings.Builder
	for _, seg := range query.Highlight(text, search) {
		if seg.Match {
			b.WriteString("[" + seg.Text + "]")
		} else {
			b.WriteString(seg.Text)
		}
	}
	return b.String()
}

// formatTask renders one line of `list` output
func formatTask(t models.Task, search string, ref time.Time) string {
	check := "[ ]"
	if t.Completed {
		check = "[x]"
	}
	line := fmt.Sprintf("%s %s  %-6s %-8s %s", shortID(t.ID), check, t.Priority, t.Category, markMatches(t.Title, search))
	if t.DueDate != nil {
		line += "  due " + t.DueDate.Format(dateLayout)
		if query.IsOverdue(t, ref) {
			line += " (overdue)"
		}
	}
	return line
}
