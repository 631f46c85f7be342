package store

import (
	"context"
	"time"

	"gitea.jw6.us/james/vcardedit/internal/metrics"
)

func observeStore(ctx context.Context, operation string) func() {
	start := time.Now()
	return func() {
		metrics.ObserveStoreLatency(ctx, operation, start)
	}
}
