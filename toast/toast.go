// Package toast is the queue of short lived messages shown to the user.
package toast

import (
	"sync"
	"time"

	"github.com/mbolis/ankietio/event"
	"go.uber.org/atomic"
)

type Kind string

const (
	Success Kind = "success"
	Error   Kind = "error"
	Info    Kind = "info"
	Warning Kind = "warning"
)

const DefaultDuration = 3 * time.Second

type Toast struct {
	ID       int64
	Message  string
	Kind     Kind
	Duration time.Duration
}

// Notifier keeps the visible toasts; each one is removed when its
// duration elapses.
type Notifier struct {
	ids  *atomic.Int64
	feed event.Feed[Toast]

	mu     sync.Mutex
	toasts []Toast
	timers map[int64]*time.Timer
	closed bool
}

func New() *Notifier {
	return &Notifier{
		ids:    atomic.NewInt64(0),
		timers: map[int64]*time.Timer{},
	}
}

// Show queues a message; a zero duration means DefaultDuration.
func (n *Notifier) Show(msg string, kind Kind, d time.Duration) int64 {
	if d <= 0 {
		d = DefaultDuration
	}
	t := Toast{ID: n.ids.Inc() - 1, Message: msg, Kind: kind, Duration: d}

	n.mu.Lock()
	if n.closed {
		n.mu.Unlock()
		return t.ID
	}
	n.toasts = append(n.toasts, t)
	n.timers[t.ID] = time.AfterFunc(d, func() { n.Remove(t.ID) })
	n.mu.Unlock()

	n.feed.Send(t)
	return t.ID
}

func (n *Notifier) Success(msg string) int64 { return n.Show(msg, Success, 0) }
func (n *Notifier) Error(msg string) int64   { return n.Show(msg, Error, 0) }
func (n *Notifier) Info(msg string) int64    { return n.Show(msg, Info, 0) }
func (n *Notifier) Warning(msg string) int64 { return n.Show(msg, Warning, 0) }

func (n *Notifier) Remove(id int64) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if timer, ok := n.timers[id]; ok {
		timer.Stop()
		delete(n.timers, id)
	}
	for i, t := range n.toasts {
		if t.ID == id {
			n.toasts = append(n.toasts[:i:i], n.toasts[i+1:]...)
			return
		}
	}
}

// List returns the toasts currently visible, oldest first.
func (n *Notifier) List() []Toast {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]Toast(nil), n.toasts...)
}

// Watch subscribes to newly shown toasts.
func (n *Notifier) Watch() (<-chan Toast, func()) {
	return n.feed.Subscribe(16)
}

// Close stops pending timers and ends subscriptions.
func (n *Notifier) Close() {
	n.mu.Lock()
	n.closed = true
	for id, timer := range n.timers {
		timer.Stop()
		delete(n.timers, id)
	}
	n.toasts = nil
	n.mu.Unlock()
	n.feed.Close()
}
