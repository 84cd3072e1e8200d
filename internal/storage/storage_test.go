package storage

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/matryer/is"
	"github.com/tgienger/todo/internal/kv"
	"github.com/tgienger/todo/internal/models"
)

var errBroken = errors.New("disk on fire")

// brokenKV fails the operations named in its fields
type brokenKV struct {
	kv.Store
	failGet bool
	failSet bool
}

func (b *brokenKV) Get(ctx context.Context, key string) (string, error) {
	if b.failGet {
		return "", errBroken
	}
	return b.Store.Get(ctx, key)
}

func (b *brokenKV) Set(ctx context.Context, key, value string) error {
	if b.failSet {
		return errBroken
	}
	return b.Store.Set(ctx, key, value)
}

func quiet() Option {
	return WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func ptr[T any](v T) *T { return &v }

func sampleTasks() []models.Task {
	due := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	done := time.Date(2024, 5, 2, 8, 0, 0, 0, time.UTC)
	return []models.Task{
		{
			ID: "task_1", Title: "Write report", Description: "quarterly",
			Category: models.CategoryWork, Priority: models.PriorityHigh,
			DueDate: &due, CreatedAt: time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
		},
		{
			ID: "task_2", Title: "Buy milk", Notes: "semi-skimmed",
			Category: models.CategoryPersonal, Priority: models.PriorityLow,
			Completed: true, CompletedAt: &done,
			CreatedAt: time.Date(2024, 5, 1, 11, 0, 0, 0, time.UTC),
		},
	}
}

func TestTasks_SaveLoadRoundTrip(t *testing.T) {
	is := is.New(t)
	ctx := context.Background()
	s := NewTasks(kv.NewMemory(), quiet())

	want := sampleTasks()
	is.NoErr(s.Save(ctx, want))
	got, err := s.Load(ctx)
	is.NoErr(err)
	is.Equal(got, want)
}

func TestTasks_LoadMissingIsEmpty(t *testing.T) {
	is := is.New(t)
	got, err := NewTasks(kv.NewMemory(), quiet()).Load(context.Background())
	is.NoErr(err)
	is.Equal(len(got), 0)
	is.True(got != nil)
}

func TestTasks_LoadCorrupt(t *testing.T) {
	is := is.New(t)
	ctx := context.Background()
	mem := kv.NewMemory()
	is.NoErr(mem.Set(ctx, TasksKey, "{not json"))
	s := NewTasks(mem, quiet())

	got, err := s.Load(ctx)
	is.True(errors.Is(err, ErrCorrupt))
	is.Equal(len(got), 0)
	is.Equal(len(s.LoadOrEmpty(ctx)), 0)
}

func TestTasks_LoadReadFailure(t *testing.T) {
	is := is.New(t)
	s := NewTasks(&brokenKV{Store: kv.NewMemory(), failGet: true}, quiet())
	_, err := s.Load(context.Background())
	is.True(errors.Is(err, errBroken))
	is.Equal(len(s.LoadOrEmpty(context.Background())), 0)
}

func TestTasks_SaveFailurePropagates(t *testing.T) {
	is := is.New(t)
	s := NewTasks(&brokenKV{Store: kv.NewMemory(), failSet: true}, quiet())
	err := s.Add(context.Background(), sampleTasks()[0])
	is.True(errors.Is(err, errBroken))
}

func TestTasks_ReadFailureAbortsMutation(t *testing.T) {
	is := is.New(t)
	ctx := context.Background()
	mem := kv.NewMemory()
	s := NewTasks(mem, quiet())
	is.NoErr(s.Save(ctx, sampleTasks()))

	flaky := NewTasks(&brokenKV{Store: mem, failGet: true}, quiet())
	is.True(errors.Is(flaky.Add(ctx, sampleTasks()[0]), errBroken))
	is.True(errors.Is(flaky.Update(ctx, "task_1", models.TaskPatch{Title: ptr("x")}), errBroken))
	is.True(errors.Is(flaky.Delete(ctx, "task_1"), errBroken))

	got, err := s.Load(ctx)
	is.NoErr(err)
	is.Equal(got, sampleTasks()) // untouched
}

func TestTasks_SaveRejectsInvalidEnums(t *testing.T) {
	is := is.New(t)
	ctx := context.Background()
	s := NewTasks(kv.NewMemory(), quiet())
	is.NoErr(s.Save(ctx, sampleTasks()))

	err := s.Add(ctx, models.Task{ID: "bad", Title: "no category"})
	is.True(errors.Is(err, models.ErrInvalidCategory))
	err = s.Add(ctx, models.Task{ID: "bad", Title: "no priority", Category: models.CategoryWork})
	is.True(errors.Is(err, models.ErrInvalidPriority))

	got, err := s.Load(ctx)
	is.NoErr(err)
	is.Equal(got, sampleTasks())
}

func TestTasks_ReadModifyWrite(t *testing.T) {
	ctx := context.Background()
	s := NewTasks(kv.NewMemory(), quiet())
	for _, task := range sampleTasks() {
		if err := s.Add(ctx, task); err != nil {
			t.Fatalf("add: %v", err)
		}
	}

	t.Run("update merges fields", func(t *testing.T) {
		is := is.New(t)
		is.NoErr(s.Update(ctx, "task_1", models.TaskPatch{Title: ptr("Write annual report")}))
		got, err := s.Load(ctx)
		is.NoErr(err)
		is.Equal(got[0].Title, "Write annual report")
		is.Equal(got[0].Description, "quarterly")
	})

	t.Run("update of unknown id is a no-op", func(t *testing.T) {
		is := is.New(t)
		before, _ := s.Load(ctx)
		is.NoErr(s.Update(ctx, "nope", models.TaskPatch{Title: ptr("x")}))
		after, _ := s.Load(ctx)
		is.Equal(after, before)
	})

	t.Run("delete removes only the match", func(t *testing.T) {
		is := is.New(t)
		is.NoErr(s.Delete(ctx, "task_2"))
		got, _ := s.Load(ctx)
		is.Equal(len(got), 1)
		is.Equal(got[0].ID, "task_1")
	})

	t.Run("clear empties the collection", func(t *testing.T) {
		is := is.New(t)
		is.NoErr(s.Clear(ctx))
		got, err := s.Load(ctx)
		is.NoErr(err)
		is.Equal(len(got), 0)
	})
}

func TestTasks_MutationOverwritesCorruptBlob(t *testing.T) {
	is := is.New(t)
	ctx := context.Background()
	mem := kv.NewMemory()
	is.NoErr(mem.Set(ctx, TasksKey, "garbage"))
	s := NewTasks(mem, quiet())

	is.NoErr(s.Add(ctx, models.Task{ID: "fresh", Title: "start over", Category: models.CategoryStudy, Priority: models.PriorityLow}))
	got, err := s.Load(ctx)
	is.NoErr(err)
	is.Equal(len(got), 1)
	is.Equal(got[0].ID, "fresh")
}

func TestProfiles(t *testing.T) {
	is := is.New(t)
	ctx := context.Background()
	mem := kv.NewMemory()
	s := NewProfiles(mem, quiet())

	p, err := s.Load(ctx)
	is.NoErr(err)
	is.Equal(p, nil)

	want := models.Profile{Name: "Ada", Email: "ada@example.com", Phone: "555"}
	is.NoErr(s.Save(ctx, want))
	is.NoErr(s.Save(ctx, models.Profile{Name: "Grace"}))
	p, err = s.Load(ctx)
	is.NoErr(err)
	is.Equal(*p, models.Profile{Name: "Grace"}) // replaced, not merged

	is.NoErr(mem.Set(ctx, ProfileKey, "[]"))
	_, err = s.Load(ctx)
	is.True(errors.Is(err, ErrCorrupt))
	is.Equal(s.LoadOrNil(ctx), nil)

	is.NoErr(s.Clear(ctx))
	p, err = s.Load(ctx)
	is.NoErr(err)
	is.Equal(p, nil)
}

func TestPreferences(t *testing.T) {
	is := is.New(t)
	ctx := context.Background()
	mem := kv.NewMemory()
	p := NewPreferences(mem, quiet())

	is.Equal(p.Theme(ctx), models.ThemeSystem)
	is.NoErr(p.SetTheme(ctx, models.ThemeDark))
	is.Equal(p.Theme(ctx), models.ThemeDark)

	is.True(p.SetTheme(ctx, "sepia") != nil)
	is.NoErr(mem.Set(ctx, ThemeKey, "sepia"))
	is.Equal(p.Theme(ctx), models.ThemeSystem)

	is.True(!p.OnboardingCompleted(ctx))
	is.NoErr(p.CompleteOnboarding(ctx))
	is.True(p.OnboardingCompleted(ctx))
	v, _ := mem.Get(ctx, OnboardingKey)
	is.Equal(v, "true")

	is.NoErr(p.Reset(ctx))
	is.True(!p.OnboardingCompleted(ctx))
	is.Equal(p.Theme(ctx), models.ThemeSystem)
}
