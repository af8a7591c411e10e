package main

import (
	"context"
	"time"

	"github.com/edukits/curriculum-builder-go/internal/config"
	"github.com/edukits/curriculum-builder-go/internal/logger"
	"github.com/edukits/curriculum-builder-go/internal/store"
)

// runStoreCleanup periodically removes expired records from the store.
// The first pass runs after a short delay to let the server stabilize.
func runStoreCleanup(ctx context.Context, st store.Store, log *logger.Logger) {
	select {
	case <-ctx.Done():
		return
	case <-time.After(config.StoreCleanupInitialDelay):
		performStoreCleanup(ctx, st, log)
	}

	ticker := time.NewTicker(config.StoreCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			performStoreCleanup(ctx, st, log)
		}
	}
}

func performStoreCleanup(ctx context.Context, st store.Store, log *logger.Logger) {
	start := time.Now()

	removed, err := st.Cleanup(ctx)
	if err != nil {
		log.WithError(err).Error("Failed to clean up expired records")
		return
	}

	log.WithFields(map[string]any{
		"removed":  removed,
		"duration": time.Since(start).String(),
	}).Info("Record store cleanup complete")
}
