package application

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

type CatalogRefresher interface {
	Reload(ctx context.Context) (CatalogInfo, error)
}

// CatalogReloader periodically rebuilds the catalog snapshot.
type CatalogReloader struct {
	service  CatalogRefresher
	interval time.Duration
	stopChan chan struct{}
	stopOnce sync.Once
	done     chan struct{}
}

func NewCatalogReloader(service CatalogRefresher, interval time.Duration) *CatalogReloader {
	return &CatalogReloader{
		service:  service,
		interval: interval,
		stopChan: make(chan struct{}),
		done:     make(chan struct{}),
	}
}

func (u *CatalogReloader) Start(ctx context.Context) {
	defer close(u.done)

	ticker := time.NewTicker(u.interval)
	defer ticker.Stop()

	slog.Info("Catalog reloader started", "interval", u.interval)

	for {
		select {
		case <-ticker.C:
			if info, err := u.service.Reload(ctx); err != nil {
				slog.Error("Error reloading catalog", "error", err)
			} else {
				slog.Info("Catalog reloaded successfully", "version", info.Version, "records", info.Records)
			}
		case <-u.stopChan:
			slog.Info("Catalog reloader stopped")
			return
		case <-ctx.Done():
			slog.Info("Catalog reloader stopped due to context cancellation")
			return
		}
	}
}

// Stop ends the loop; calling it more than once is safe.
func (u *CatalogReloader) Stop() {
	u.stopOnce.Do(func() {
		close(u.stopChan)
	})
}

// Done is closed once Start has returned.
func (u *CatalogReloader) Done() <-chan struct{} {
	return u.done
}
