package fingerprint

import (
	"context"
	"errors"
	"testing"

	"github.com/mbolis/ankietio/consent"
	"github.com/mbolis/ankietio/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingProvider struct {
	calls int
	err   error
}

func (p *countingProvider) Compute(context.Context) (Result, error) {
	p.calls++
	if p.err != nil {
		return Result{}, p.err
	}
	c := map[string]string{"os": "linux"}
	return Result{VisitorID: VisitorID(c), Components: c}, nil
}

func setup(t *testing.T) (context.Context, storage.Store, *consent.Store, *countingProvider, *Adapter) {
	ctx := context.Background()
	kv := storage.NewMemory()
	cs := consent.New(ctx, kv)
	p := &countingProvider{}
	loads := 0
	a := New(cs, kv, func() (Provider, error) {
		loads++
		require.Equal(t, 1, loads, "provider loaded more than once")
		return p, nil
	})
	return ctx, kv, cs, p, a
}

func TestNoConsentNoComputation(t *testing.T) {
	ctx, _, _, p, a := setup(t)

	_, ok := a.VisitorID(ctx)
	assert.False(t, ok)
	assert.Nil(t, a.Ptr(ctx))
	_, ok = a.Components(ctx)
	assert.False(t, ok)
	assert.Zero(t, p.calls)
}

func TestVisitorIDIsCached(t *testing.T) {
	ctx, kv, cs, p, a := setup(t)
	require.NoError(t, cs.AcceptAll(ctx))

	id, ok := a.VisitorID(ctx)
	require.True(t, ok)
	assert.Len(t, id, 32)

	again, ok := a.VisitorID(ctx)
	require.True(t, ok)
	assert.Equal(t, id, again)
	assert.Equal(t, 1, p.calls)

	cached, _, _ := kv.Get(ctx, storage.KeyVisitorID)
	assert.Equal(t, id, cached)
}

func TestRevocationClearsAndDisables(t *testing.T) {
	ctx, kv, cs, _, a := setup(t)
	require.NoError(t, cs.AcceptAll(ctx))
	_, ok := a.VisitorID(ctx)
	require.True(t, ok)

	require.NoError(t, cs.Save(ctx, consent.Choice{Functional: true}))

	_, cached, _ := kv.Get(ctx, storage.KeyVisitorID)
	assert.False(t, cached)
	_, ok = a.VisitorID(ctx)
	assert.False(t, ok)
}

func TestFailureIsSwallowed(t *testing.T) {
	ctx, _, cs, p, a := setup(t)
	require.NoError(t, cs.AcceptAll(ctx))
	p.err = errors.New("no entropy")

	_, ok := a.VisitorID(ctx)
	assert.False(t, ok)
}

func TestHostProvider(t *testing.T) {
	h := &Host{ReadFile: func(string) ([]byte, error) { return []byte("abc\n"), nil }}
	res, err := h.Compute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "abc", res.Components["machine"])
	assert.Equal(t, VisitorID(res.Components), res.VisitorID)

	again, _ := h.Compute(context.Background())
	assert.Equal(t, res.VisitorID, again.VisitorID)
}
