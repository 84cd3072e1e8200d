package db

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/matryer/is"
	"github.com/tgienger/todo/internal/kv"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	d, err := New(filepath.Join(t.TempDir(), "nested", "todo.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { d.Close() })
	return d
}

func TestDB_GetSetDelete(t *testing.T) {
	is := is.New(t)
	ctx := context.Background()
	d := openTestDB(t)

	_, err := d.Get(ctx, "@todo_app:tasks")
	is.True(errors.Is(err, kv.ErrNotFound))

	is.NoErr(d.Set(ctx, "@todo_app:tasks", "[]"))
	is.NoErr(d.Set(ctx, "@todo_app:tasks", `[{"id":"a"}]`))
	v, err := d.Get(ctx, "@todo_app:tasks")
	is.NoErr(err)
	is.Equal(v, `[{"id":"a"}]`)

	is.NoErr(d.Delete(ctx, "@todo_app:tasks"))
	_, err = d.Get(ctx, "@todo_app:tasks")
	is.True(errors.Is(err, kv.ErrNotFound))
}

func TestDB_PersistsAcrossReopen(t *testing.T) {
	is := is.New(t)
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "todo.db")

	d, err := New(path)
	is.NoErr(err)
	is.NoErr(d.Set(ctx, "@todo_app:theme_mode", "dark"))
	is.NoErr(d.Close())

	d, err = New(path)
	is.NoErr(err)
	defer d.Close()
	v, err := d.Get(ctx, "@todo_app:theme_mode")
	is.NoErr(err)
	is.Equal(v, "dark")
}

func TestDB_InMemory(t *testing.T) {
	is := is.New(t)
	d, err := New(":memory:")
	is.NoErr(err)
	defer d.Close()
	is.NoErr(d.Set(context.Background(), "k", "v"))
	v, err := d.Get(context.Background(), "k")
	is.NoErr(err)
	is.Equal(v, "v")
}
