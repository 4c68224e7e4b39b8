package workers

import (
	"context"
	"log"
	"time"

	"github.com/cargowatch/api/services"
)

// RegionStatsWorker keeps the per-region incident counters and the cached
// dashboard aggregates fresh. Counts are recomputed in one batch UPDATE so
// incident writes never pay for counter maintenance.
type RegionStatsWorker struct {
	Regions   *services.RegionService
	Incidents *services.IncidentService
	Interval  time.Duration
}

func NewRegionStatsWorker(regions *services.RegionService, incidents *services.IncidentService, interval time.Duration) *RegionStatsWorker {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &RegionStatsWorker{
		Regions:   regions,
		Incidents: incidents,
		Interval:  interval,
	}
}

// Start runs the refresh loop until ctx is cancelled. One refresh runs
// immediately so a freshly started worker does not wait a full interval.
func (w *RegionStatsWorker) Start(ctx context.Context) {
	log.Printf("Region stats worker started, refreshing every %s", w.Interval)

	w.refresh(ctx)

	ticker := time.NewTicker(w.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Region stats worker stopped")
			return
		case <-ticker.C:
			w.refresh(ctx)
		}
	}
}

func (w *RegionStatsWorker) refresh(ctx context.Context) {
	updated, err := w.Regions.RecomputeIncidentCounts(ctx)
	if err != nil {
		log.Printf("Region stats worker: failed to recompute incident counts: %v", err)
		return
	}
	if updated > 0 {
		log.Printf("Region stats worker: updated incident counts for %d regions", updated)
	}

	w.Incidents.InvalidateStatsCache(ctx)
}
