// Package fingerprint provides the consent gated device identifier sent
// along with submissions as a duplicate hint.
package fingerprint

import (
	"context"
	"sync"
	"time"

	"github.com/mbolis/ankietio/log"
	"github.com/mbolis/ankietio/storage"
)

// Provider computes a device fingerprint.
type Provider interface {
	Compute(ctx context.Context) (Result, error)
}

type Result struct {
	VisitorID  string            `json:"visitorId"`
	Components map[string]string `json:"components"`
	Timestamp  string            `json:"timestamp,omitempty"`
}

type Consent interface {
	CanUseFingerprinting() bool
}

// Adapter hands out the visitor id only with fingerprinting consent, and
// caches it locally. Every failure reads as "no fingerprint".
type Adapter struct {
	consent Consent
	kv      storage.Store
	load    func() (Provider, error)

	once     sync.Once
	provider Provider
	loadErr  error
}

// New builds an adapter. load is called at most once, on first use.
func New(consent Consent, kv storage.Store, load func() (Provider, error)) *Adapter {
	return &Adapter{consent: consent, kv: kv, load: load}
}

func (a *Adapter) init() (Provider, error) {
	a.once.Do(func() {
		a.provider, a.loadErr = a.load()
	})
	return a.provider, a.loadErr
}

// VisitorID returns the cached or freshly computed identifier.
func (a *Adapter) VisitorID(ctx context.Context) (string, bool) {
	if !a.consent.CanUseFingerprinting() {
		return "", false
	}

	id, ok, err := a.kv.Get(ctx, storage.KeyVisitorID)
	if err != nil {
		log.Debugf("fingerprint.cache.get: %s", err)
	}
	if ok && id != "" {
		return id, true
	}

	res, err := a.compute(ctx)
	if err != nil {
		log.Debugf("fingerprint.compute: %s", err)
		return "", false
	}
	err = a.kv.Set(ctx, storage.KeyVisitorID, res.VisitorID)
	if err != nil {
		log.Debugf("fingerprint.cache.set: %s", err)
	}
	return res.VisitorID, true
}

// Ptr is VisitorID shaped for optional request fields.
func (a *Adapter) Ptr(ctx context.Context) *string {
	id, ok := a.VisitorID(ctx)
	if !ok {
		return nil
	}
	return &id
}

// Components reports what the fingerprint is made of, for the privacy pages.
func (a *Adapter) Components(ctx context.Context) (Result, bool) {
	if !a.consent.CanUseFingerprinting() {
		return Result{}, false
	}
	res, err := a.compute(ctx)
	if err != nil {
		log.Debugf("fingerprint.components: %s", err)
		return Result{}, false
	}
	res.Timestamp = time.Now().UTC().Format("2006-01-02T15:04:05.000Z")
	return res, true
}

// ClearCache drops the cached identifier.
func (a *Adapter) ClearCache(ctx context.Context) {
	err := a.kv.Remove(ctx, storage.KeyVisitorID)
	if err != nil {
		log.Debugf("fingerprint.cache.remove: %s", err)
	}
}

func (a *Adapter) compute(ctx context.Context) (Result, error) {
	p, err := a.init()
	if err != nil {
		return Result{}, err
	}
	return p.Compute(ctx)
}
