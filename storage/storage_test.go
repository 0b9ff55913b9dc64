package storage

import (
	"context"
	"path/filepath"
	"strconv"
	"sync"
	"testing"

	"github.com/mbolis/ankietio/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stores(t *testing.T) map[string]Store {
	t.Helper()
	db, err := database.Open(filepath.Join(t.TempDir(), "kv.sqlite"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return map[string]Store{
		"memory": NewMemory(),
		"sqlite": NewSQLite(db),
	}
}

func TestStore(t *testing.T) {
	ctx := context.Background()
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			_, ok, err := s.Get(ctx, KeyTheme)
			require.NoError(t, err)
			assert.False(t, ok)

			require.NoError(t, s.Set(ctx, KeyTheme, "dark"))
			require.NoError(t, s.Set(ctx, KeyAccessToken, "t1"))
			require.NoError(t, s.Set(ctx, KeyTheme, "light"))

			v, ok, err := s.Get(ctx, KeyTheme)
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, "light", v)

			keys, err := s.Keys(ctx)
			require.NoError(t, err)
			assert.Equal(t, []string{KeyAccessToken, KeyTheme}, keys)

			require.NoError(t, s.Remove(ctx, KeyTheme))
			_, ok, _ = s.Get(ctx, KeyTheme)
			assert.False(t, ok)

			require.NoError(t, s.Clear(ctx))
			keys, err = s.Keys(ctx)
			require.NoError(t, err)
			assert.Empty(t, keys)
		})
	}
}

func TestUpdateIsAtomic(t *testing.T) {
	ctx := context.Background()
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			var wg sync.WaitGroup
			for i := 0; i < 20; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					err := s.Update(ctx, "counter", func(old string, ok bool) (string, bool, error) {
						n := 0
						if ok {
							n, _ = strconv.Atoi(old)
						}
						return strconv.Itoa(n + 1), true, nil
					})
					assert.NoError(t, err)
				}()
			}
			wg.Wait()

			v, _, err := s.Get(ctx, "counter")
			require.NoError(t, err)
			assert.Equal(t, "20", v)

			err = s.Update(ctx, "counter", func(string, bool) (string, bool, error) {
				return "", false, nil
			})
			require.NoError(t, err)
			_, ok, _ := s.Get(ctx, "counter")
			assert.False(t, ok)
		})
	}
}

func TestJSON(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()

	type record struct {
		IDs []string `json:"ids"`
	}
	require.NoError(t, SetJSON(ctx, s, "rec", record{IDs: []string{"a", "b"}}))

	var got record
	ok, err := GetJSON(ctx, s, "rec", &got)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []string{"a", "b"}, got.IDs)

	require.NoError(t, s.Set(ctx, "broken", "{not json"))
	ok, err = GetJSON(ctx, s, "broken", &got)
	assert.Error(t, err)
	assert.False(t, ok)
}
