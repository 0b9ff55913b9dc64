package draft

import (
	"bytes"
	"context"
	"time"

	"github.com/goccy/go-json"
)

// Debounce emits a value once no newer one arrived for wait. A pending
// value is flushed when in is closed and dropped when ctx ends.
func Debounce[T any](ctx context.Context, in <-chan T, wait time.Duration) <-chan T {
	out := make(chan T)
	go func() {
		defer close(out)

		var (
			pending T
			has     bool
			timer   *time.Timer
			fire    <-chan time.Time
		)
		defer func() {
			if timer != nil {
				timer.Stop()
			}
		}()
		emit := func() bool {
			select {
			case out <- pending:
				has = false
				return true
			case <-ctx.Done():
				return false
			}
		}

		for {
			select {
			case <-ctx.Done():
				return
			case v, ok := <-in:
				if !ok {
					if has {
						emit()
					}
					return
				}
				pending, has = v, true
				if timer == nil {
					timer = time.NewTimer(wait)
				} else {
					if !timer.Stop() {
						select {
						case <-timer.C:
						default:
						}
					}
					timer.Reset(wait)
				}
				fire = timer.C
			case <-fire:
				fire = nil
				if has && !emit() {
					return
				}
			}
		}
	}()
	return out
}

// Distinct drops values whose JSON encoding equals the previous one.
func Distinct[T any](ctx context.Context, in <-chan T) <-chan T {
	out := make(chan T)
	go func() {
		defer close(out)
		var last []byte
		for {
			select {
			case <-ctx.Done():
				return
			case v, ok := <-in:
				if !ok {
					return
				}
				enc, err := json.Marshal(v)
				if err == nil && last != nil && bytes.Equal(enc, last) {
					continue
				}
				last = enc
				select {
				case out <- v:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out
}
