package share

import (
	"context"
	"time"

	"github.com/mbolis/ankietio/log"
	"github.com/mbolis/ankietio/model"
	"golang.org/x/time/rate"
)

const DefaultPollInterval = 10 * time.Second

// Poll lists the links right away and then once per interval, until ctx
// ends. Failed refreshes are skipped silently.
func (l *Links) Poll(ctx context.Context, interval time.Duration) <-chan []model.ShareLink {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	limiter := rate.NewLimiter(rate.Every(interval), 1)

	out := make(chan []model.ShareLink, 1)
	go func() {
		defer close(out)
		for {
			if err := limiter.Wait(ctx); err != nil {
				return
			}
			links, err := l.List(ctx)
			if err != nil {
				log.Debugf("share.poll: %s", err)
				continue
			}
			select {
			case out <- links:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}
