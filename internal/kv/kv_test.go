package kv

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/matryer/is"
)

// testStore runs the behaviour every backend must share
func testStore(t *testing.T, s Store) {
	ctx := context.Background()

	t.Run("missing key", func(t *testing.T) {
		is := is.New(t)
		_, err := s.Get(ctx, "missing")
		is.True(errors.Is(err, ErrNotFound))
	})

	t.Run("set then get", func(t *testing.T) {
		is := is.New(t)
		is.NoErr(s.Set(ctx, "greeting", "hello"))
		v, err := s.Get(ctx, "greeting")
		is.NoErr(err)
		is.Equal(v, "hello")
	})

	t.Run("set overwrites", func(t *testing.T) {
		is := is.New(t)
		is.NoErr(s.Set(ctx, "greeting", "hello"))
		is.NoErr(s.Set(ctx, "greeting", "bye"))
		v, err := s.Get(ctx, "greeting")
		is.NoErr(err)
		is.Equal(v, "bye")
	})

	t.Run("delete", func(t *testing.T) {
		is := is.New(t)
		is.NoErr(s.Set(ctx, "gone", "x"))
		is.NoErr(s.Delete(ctx, "gone"))
		_, err := s.Get(ctx, "gone")
		is.True(errors.Is(err, ErrNotFound))
		// deleting twice is fine
		is.NoErr(s.Delete(ctx, "gone"))
	})
}

func TestMemory(t *testing.T) {
	testStore(t, NewMemory())
}

func TestMemory_CanceledContext(t *testing.T) {
	is := is.New(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	is.True(errors.Is(NewMemory().Set(ctx, "k", "v"), context.Canceled))
}

func TestRedis(t *testing.T) {
	addr := os.Getenv("TODO_TEST_REDIS")
	if addr == "" {
		t.Skip("TODO_TEST_REDIS not set")
	}
	is := is.New(t)
	r, err := DialRedis(context.Background(), RedisConfig{Addr: addr, Prefix: "todo_test:"})
	is.NoErr(err)
	defer r.Close()
	testStore(t, r)
}
