package models

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidCategory  = errors.New("invalid category")
	ErrInvalidPriority  = errors.New("invalid priority")
	ErrInvalidFilter    = errors.New("invalid filter")
	ErrInvalidSort      = errors.New("invalid sort")
	ErrInvalidThemeMode = errors.New("invalid theme mode")
)

// Category groups tasks by area of life
type Category string

const (
	CategoryWork     Category = "Work"
	CategoryPersonal Category = "Personal"
	CategoryStudy    Category = "Study"
)

// Categories lists every category in display order
var Categories = []Category{CategoryWork, CategoryPersonal, CategoryStudy}

// DefaultCategory is used when a new task names no category
const DefaultCategory = CategoryPersonal

// Priority is how urgent a task is
type Priority string

const (
	PriorityLow    Priority = "Low"
	PriorityMedium Priority = "Medium"
	PriorityHigh   Priority = "High"
)

// Priorities lists every priority from lowest to highest
var Priorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh}

// DefaultPriority is used when a new task names no priority
const DefaultPriority = PriorityMedium

// Rank orders priorities: High=3, Medium=2, Low=1
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	}
	return 0
}

// Filter is the coarse status filter applied before search
type Filter string

const (
	FilterAll       Filter = "All"
	FilterPending   Filter = "Pending"
	FilterCompleted Filter = "Completed"
	FilterOverdue   Filter = "Overdue"
)

var Filters = []Filter{FilterAll, FilterPending, FilterCompleted, FilterOverdue}

// Sort selects the ordering of the task list
type Sort string

const (
	SortCreatedDate Sort = "Created Date"
	SortPriority    Sort = "Priority"
	SortDueDate     Sort = "Due Date"
)

var Sorts = []Sort{SortCreatedDate, SortPriority, SortDueDate}

// ThemeMode is the saved appearance preference
type ThemeMode string

const (
	ThemeLight  ThemeMode = "light"
	ThemeDark   ThemeMode = "dark"
	ThemeSystem ThemeMode = "system"
)

var ThemeModes = []ThemeMode{ThemeLight, ThemeDark, ThemeSystem}

// parse matches s case-insensitively against the allowed values, ignoring
// spaces, dashes and underscores so "due-date" and "Due Date" both work.
func parse[T ~string](s string, values []T, invalid error) (T, error) {
	key := normalize(s)
	for _, v := range values {
		if normalize(string(v)) == key {
			return v, nil
		}
	}
	var zero T
	return zero, fmt.Errorf("%w: %q", invalid, s)
}

func normalize(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '-', '_':
			return -1
		}
		return r
	}, strings.ToLower(strings.TrimSpace(s)))
}

func ParseCategory(s string) (Category, error) { return parse(s, Categories, ErrInvalidCategory) }
func ParsePriority(s string) (Priority, error) { return parse(s, Priorities, ErrInvalidPriority) }
func ParseFilter(s string) (Filter, error)     { return parse(s, Filters, ErrInvalidFilter) }
func ParseSort(s string) (Sort, error)         { return parse(s, Sorts, ErrInvalidSort) }
func ParseThemeMode(s string) (ThemeMode, error) {
	return parse(s, ThemeModes, ErrInvalidThemeMode)
}

// MarshalText rejects any value UnmarshalText would not accept
func (c Category) MarshalText() ([]byte, error) {
	v, err := ParseCategory(string(c))
	if err != nil {
		return nil, err
	}
	return []byte(v), nil
}

func (c *Category) UnmarshalText(b []byte) error {
	v, err := ParseCategory(string(b))
	if err != nil {
		return err
	}
	*c = v
	return nil
}

func (p Priority) MarshalText() ([]byte, error) {
	v, err := ParsePriority(string(p))
	if err != nil {
		return nil, err
	}
	return []byte(v), nil
}

func (p *Priority) UnmarshalText(b []byte) error {
	v, err := ParsePriority(string(b))
	if err != nil {
		return err
	}
	*p = v
	return nil
}

func (f *Filter) UnmarshalText(b []byte) error {
	v, err := ParseFilter(string(b))
	if err != nil {
		return err
	}
	*f = v
	return nil
}

func (s *Sort) UnmarshalText(b []byte) error {
	v, err := ParseSort(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

func (m *ThemeMode) UnmarshalText(b []byte) error {
	v, err := ParseThemeMode(string(b))
	if err != nil {
		return err
	}
	*m = v
	return nil
}

// Next returns the filter after f, wrapping around
func (f Filter) Next() Filter { return next(Filters, f) }

// Next returns the sort after s, wrapping around
func (s Sort) Next() Sort { return next(Sorts, s) }

func next[T comparable](values []T, cur T) T {
	for i, v := range values {
		if v == cur {
			return values[(i+1)%len(values)]
		}
	}
	return values[0]
}
