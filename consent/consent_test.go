package consent

import (
	"context"
	"testing"
	"time"

	"github.com/mbolis/ankietio/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveAlwaysKeepsNecessary(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemory()
	s := New(ctx, kv)
	s.Now = func() time.Time { return time.Date(2026, 10, 19, 8, 30, 0, 0, time.UTC) }

	assert.False(t, s.Has())
	assert.False(t, s.CanUseFunctional())

	require.NoError(t, s.Save(ctx, Choice{Functional: true}))
	p := s.Get()
	require.NotNil(t, p)
	assert.True(t, p.Necessary)
	assert.True(t, p.Functional)
	assert.False(t, p.Fingerprinting)
	assert.Equal(t, "2026-10-19T08:30:00.000Z", p.Timestamp)
	assert.Equal(t, PolicyVersion, p.Version)

	// a fresh store sees the persisted record
	reloaded := New(ctx, kv)
	assert.Equal(t, p, reloaded.Get())
}

func TestRevokingFingerprintingDeletesVisitorID(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemory()
	s := New(ctx, kv)

	require.NoError(t, s.AcceptAll(ctx))
	require.NoError(t, kv.Set(ctx, storage.KeyVisitorID, "abc123"))

	// keeping fingerprinting keeps the id
	require.NoError(t, s.Save(ctx, Choice{Functional: false, Fingerprinting: true}))
	_, ok, _ := kv.Get(ctx, storage.KeyVisitorID)
	assert.True(t, ok)

	require.NoError(t, s.AcceptNecessaryOnly(ctx))
	_, ok, _ = kv.Get(ctx, storage.KeyVisitorID)
	assert.False(t, ok)
	assert.False(t, s.CanUseFingerprinting())
}

func TestCorruptRecordMeansNoDecision(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemory()
	require.NoError(t, kv.Set(ctx, storage.KeyConsent, "{oops"))

	s := New(ctx, kv)
	assert.False(t, s.Has())
}

func TestClearAndWatch(t *testing.T) {
	ctx := context.Background()
	s := New(ctx, storage.NewMemory())
	defer s.Close()
	ch, cancel := s.Watch()
	defer cancel()

	require.NoError(t, s.AcceptAll(ctx))
	assert.True(t, (<-ch).Fingerprinting)

	require.NoError(t, s.Clear(ctx))
	assert.Nil(t, <-ch)
	assert.False(t, s.Has())
}
