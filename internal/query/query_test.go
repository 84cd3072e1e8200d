package query

import (
	"strings"
	"testing"
	"time"

	"github.com/matryer/is"
	"github.com/tgienger/todo/internal/models"
)

var now = time.Date(2024, 5, 15, 14, 30, 0, 0, time.UTC)

func ptr[T any](v T) *T { return &v }

func day(offset int) *time.Time {
	d := now.AddDate(0, 0, offset)
	return &d
}

func ids(tasks []models.Task) []string {
	out := make([]string, len(tasks))
	for i, t := range tasks {
		out[i] = t.ID
	}
	return out
}

func fixture() []models.Task {
	return []models.Task{
		{ID: "a", Title: "Write report", Category: models.CategoryWork, Priority: models.PriorityHigh,
			DueDate: day(-1), CreatedAt: now.Add(-5 * time.Hour)},
		{ID: "b", Title: "Buy milk", Notes: "Oat, not dairy", Category: models.CategoryPersonal, Priority: models.PriorityLow,
			CreatedAt: now.Add(-4 * time.Hour)},
		{ID: "c", Title: "Exam prep", Description: "chapter 4 REPORT", Category: models.CategoryStudy, Priority: models.PriorityMedium,
			DueDate: day(3), CreatedAt: now.Add(-3 * time.Hour)},
		{ID: "d", Title: "Ship release", Category: models.CategoryWork, Priority: models.PriorityHigh,
			DueDate: day(-2), Completed: true, CompletedAt: day(-1), CreatedAt: now.Add(-2 * time.Hour)},
		{ID: "e", Title: "Plan sprint", Category: models.CategoryWork, Priority: models.PriorityLow,
			DueDate: day(0), CreatedAt: now.Add(-1 * time.Hour)},
	}
}

func TestFilter(t *testing.T) {
	tests := []struct {
		filter models.Filter
		want   []string
	}{
		{models.FilterAll, []string{"a", "b", "c", "d", "e"}},
		{models.FilterPending, []string{"a", "b", "c", "e"}},
		{models.FilterCompleted, []string{"d"}},
		{models.FilterOverdue, []string{"a"}},
	}
	for _, tt := range tests {
		t.Run(string(tt.filter), func(t *testing.T) {
			is := is.New(t)
			is.Equal(ids(FilterAt(fixture(), tt.filter, now)), tt.want)
		})
	}
}

func TestFilter_AllIsIdentity(t *testing.T) {
	is := is.New(t)
	in := fixture()
	is.Equal(FilterAt(in, models.FilterAll, now), in)
}

func TestFilter_OverdueNeverCompletedOrUndated(t *testing.T) {
	is := is.New(t)
	for _, task := range FilterAt(fixture(), models.FilterOverdue, now) {
		is.True(!task.Completed)
		is.True(task.DueDate != nil)
	}
}

func TestIsOverdue(t *testing.T) {
	t.Run("yesterday is overdue until completed", func(t *testing.T) {
		is := is.New(t)
		task := models.Task{DueDate: day(-1)}
		is.True(IsOverdue(task, now))
		task.Completed = true
		is.True(!IsOverdue(task, now))
	})

	t.Run("earlier today is not overdue", func(t *testing.T) {
		is := is.New(t)
		due := time.Date(2024, 5, 15, 0, 0, 1, 0, time.UTC)
		is.True(!IsOverdue(models.Task{DueDate: &due}, now))
	})

	t.Run("late yesterday is overdue just after midnight", func(t *testing.T) {
		is := is.New(t)
		due := time.Date(2024, 5, 14, 23, 59, 0, 0, time.UTC)
		midnight := time.Date(2024, 5, 15, 0, 0, 1, 0, time.UTC)
		is.True(IsOverdue(models.Task{DueDate: &due}, midnight))
	})

	t.Run("no due date is never overdue", func(t *testing.T) {
		is := is.New(t)
		is.True(!IsOverdue(models.Task{}, now))
	})
}

func TestFilter_UsesWallClock(t *testing.T) {
	is := is.New(t)
	yesterday := time.Now().AddDate(0, 0, -1)
	task := models.Task{ID: "x", DueDate: &yesterday}
	is.Equal(ids(Filter([]models.Task{task}, models.FilterOverdue)), []string{"x"})
	task.Completed = true
	is.Equal(len(Filter([]models.Task{task}, models.FilterOverdue)), 0)
}

func TestSearch(t *testing.T) {
	tests := []struct {
		name  string
		query SearchQuery
		want  []string
	}{
		{"empty query is identity", SearchQuery{}, []string{"a", "b", "c", "d", "e"}},
		{"blank text is identity", SearchQuery{Text: "   "}, []string{"a", "b", "c", "d", "e"}},
		{"title match is case-insensitive", SearchQuery{Text: "MILK"}, []string{"b"}},
		{"matches description and title", SearchQuery{Text: " report "}, []string{"a", "c"}},
		{"matches notes", SearchQuery{Text: "dairy"}, []string{"b"}},
		{"category facet", SearchQuery{Category: ptr(models.CategoryWork)}, []string{"a", "d", "e"}},
		{"priority facet", SearchQuery{Priority: ptr(models.PriorityLow)}, []string{"b", "e"}},
		{"facets compose", SearchQuery{Category: ptr(models.CategoryWork), Priority: ptr(models.PriorityHigh)}, []string{"a", "d"}},
		{"text and facet compose", SearchQuery{Text: "report", Category: ptr(models.CategoryStudy)}, []string{"c"}},
		{"no match", SearchQuery{Text: "zebra"}, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			is := is.New(t)
			is.Equal(ids(Search(fixture(), tt.query)), tt.want)
		})
	}
}

func TestSearch_EmptyReturnsInputUnchanged(t *testing.T) {
	is := is.New(t)
	in := fixture()
	is.Equal(Search(in, SearchQuery{}), in)
}

func TestSort(t *testing.T) {
	tests := []struct {
		sort models.Sort
		want []string
	}{
		{models.SortCreatedDate, []string{"e", "d", "c", "b", "a"}},
		{models.SortPriority, []string{"a", "d", "c", "b", "e"}},
		{models.SortDueDate, []string{"d", "a", "e", "c", "b"}},
	}
	for _, tt := range tests {
		t.Run(string(tt.sort), func(t *testing.T) {
			is := is.New(t)
			is.Equal(ids(Sort(fixture(), tt.sort)), tt.want)
		})
	}
}

func TestSort_Idempotent(t *testing.T) {
	for _, s := range models.Sorts {
		t.Run(string(s), func(t *testing.T) {
			is := is.New(t)
			once := Sort(fixture(), s)
			is.Equal(Sort(once, s), once)
		})
	}
}

func TestSort_PriorityIsStable(t *testing.T) {
	is := is.New(t)
	in := []models.Task{
		{ID: "low1", Priority: models.PriorityLow},
		{ID: "high1", Priority: models.PriorityHigh},
		{ID: "low2", Priority: models.PriorityLow},
		{ID: "high2", Priority: models.PriorityHigh},
		{ID: "low3", Priority: models.PriorityLow},
	}
	is.Equal(ids(Sort(in, models.SortPriority)), []string{"high1", "high2", "low1", "low2", "low3"})
}

func TestSort_UndatedLast(t *testing.T) {
	is := is.New(t)
	in := []models.Task{{ID: "none1"}, {ID: "late", DueDate: day(10)}, {ID: "none2"}, {ID: "soon", DueDate: day(1)}}
	got := Sort(in, models.SortDueDate)
	is.Equal(ids(got), []string{"soon", "late", "none1", "none2"})
	seenUndated := false
	for _, task := range got {
		if task.DueDate == nil {
			seenUndated = true
			continue
		}
		is.True(!seenUndated) // dated task after an undated one
	}
}

func TestSort_DoesNotModifyInput(t *testing.T) {
	is := is.New(t)
	in := fixture()
	Sort(in, models.SortPriority)
	is.Equal(ids(in), []string{"a", "b", "c", "d", "e"})
}

func TestApply_Order(t *testing.T) {
	is := is.New(t)
	p := Params{
		Filter: models.FilterPending,
		Sort:   models.SortDueDate,
		Search: SearchQuery{Category: ptr(models.CategoryWork)},
	}
	// d is Work but completed, so the status filter removes it before search
	is.Equal(ids(Apply(fixture(), p, now)), []string{"a", "e"})
	is.Equal(ids(Apply(fixture(), DefaultParams(), now)), []string{"e", "d", "c", "b", "a"})
}

func TestHighlight(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		query string
		want  []Segment
	}{
		{"blank query", "Buy milk", " ", []Segment{{Text: "Buy milk"}}},
		{"no match", "Buy milk", "tea", []Segment{{Text: "Buy milk"}}},
		{"middle", "Buy milk now", "MILK", []Segment{{Text: "Buy "}, {Text: "milk", Match: true}, {Text: " now"}}},
		{"whole text", "milk", "milk", []Segment{{Text: "milk", Match: true}}},
		{"repeated", "aXaXa", "a", []Segment{
			{Text: "a", Match: true}, {Text: "X"}, {Text: "a", Match: true}, {Text: "X"}, {Text: "a", Match: true},
		}},
		{"non-overlapping", "aaa", "aa", []Segment{{Text: "aa", Match: true}, {Text: "a"}}},
		{"unicode", "Crème brûlée", "BRÛL", []Segment{{Text: "Crème "}, {Text: "brûl", Match: true}, {Text: "ée"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			is := is.New(t)
			got := Highlight(tt.text, tt.query)
			is.Equal(got, tt.want)

			var b strings.Builder
			for _, s := range got {
				b.WriteString(s.Text)
			}
			is.Equal(b.String(), tt.text) // segments cover the text exactly
		})
	}
}

func TestSummarize(t *testing.T) {
	is := is.New(t)
	s := Summarize(fixture(), now)
	is.Equal(s, Stats{Total: 5, Pending: 4, Completed: 1, Overdue: 1})
	is.Equal(s.CompletionRate(), 0.2)
	is.Equal(Summarize(nil, now).CompletionRate(), 0.0)
}
