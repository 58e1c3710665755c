package app

import (
	"context"

	"github.com/charmbracelet/log"

	"github.com/five82/todoboard/internal/query"
)

// reloader refetches a read if it backs the current view.
type reloader interface {
	Reload(ctx context.Context, key query.Key) (bool, error)
}

// StartRevalidator launches a goroutine that refetches every invalidated
// query backing the current view, so a failed write is rolled back to server
// state without user action. It returns a channel closed when the goroutine
// exits, which happens when ctx is cancelled.
func StartRevalidator(ctx context.Context, invalidated <-chan query.Key, r reloader, logger *log.Logger) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			select {
			case <-ctx.Done():
				return
			case key := <-invalidated:
				revalidate(ctx, r, key, logger)
			}
		}
	}()
	return done
}

func revalidate(ctx context.Context, r reloader, key query.Key, logger *log.Logger) {
	reloaded, err := r.Reload(ctx, key)
	switch {
	case err != nil:
		logger.Error("revalidate failed", "query", key, "err", err)
	case reloaded:
		logger.Debug("revalidated", "query", key)
	default:
		logger.Debug("stale query left for next mount", "query", key)
	}
}
