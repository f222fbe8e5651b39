package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/canaryscope/canaryscope/ent"
	"github.com/canaryscope/canaryscope/ent/hearing"
)

// orphanState tracks orphan detection metrics (thread-safe).
type orphanState struct {
	mu               sync.Mutex
	lastOrphanScan   time.Time
	orphansRecovered int
}

// runOrphanDetection periodically scans for hearings stuck in a transitional
// status past OrphanThreshold and reverts them to their retry status so a
// worker reselects them on its next poll. All processes run this
// independently; reverting an already-reverted hearing is a no-op (idempotent).
func (p *WorkerPool) runOrphanDetection(ctx context.Context) {
	ticker := time.NewTicker(p.config.OrphanDetectionInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-p.stopCh:
			return
		case <-ticker.C:
			if err := p.detectAndRecoverOrphans(ctx); err != nil {
				slog.Error("pipeline orphan detection failed", "error", err)
			}
		}
	}
}

// detectAndRecoverOrphans finds transitional-status hearings whose
// updated_at is older than OrphanThreshold and reverts them to an actionable
// status (§4.8: orphan recovery mirrors the teacher's heartbeat-based scan,
// adapted to Hearing's coarser per-stage transitions since there is no
// per-hearing heartbeat column).
func (p *WorkerPool) detectAndRecoverOrphans(ctx context.Context) error {
	threshold := time.Now().Add(-p.config.OrphanThreshold)

	orphans, err := p.client.Hearing.Query().
		Where(
			hearing.StatusIn(transitionalStatuses...),
			hearing.UpdatedAtLT(threshold),
			hearing.DeletedAtIsNil(),
		).
		All(ctx)
	if err != nil {
		return fmt.Errorf("querying orphaned hearings: %w", err)
	}

	if len(orphans) == 0 {
		p.orphans.mu.Lock()
		p.orphans.lastOrphanScan = time.Now()
		p.orphans.mu.Unlock()
		return nil
	}

	slog.Warn("detected orphaned hearings", "count", len(orphans))

	recovered, failed := 0, 0
	for _, h := range orphans {
		if err := p.recoverOrphanedHearing(ctx, h); err != nil {
			slog.Error("failed to recover orphaned hearing", "hearing_id", h.ID, "error", err)
			failed++
			continue
		}
		recovered++
	}

	p.orphans.mu.Lock()
	p.orphans.lastOrphanScan = time.Now()
	p.orphans.orphansRecovered += recovered
	p.orphans.mu.Unlock()

	if failed > 0 {
		slog.Warn("orphan recovery completed with failures", "total_orphans", len(orphans), "recovered", recovered, "failed", failed)
	}
	return nil
}

func (p *WorkerPool) recoverOrphanedHearing(ctx context.Context, h *ent.Hearing) error {
	target, ok := retryStatus[h.Status]
	if !ok {
		target = hearing.StatusDiscovered
	}

	log := slog.With("hearing_id", h.ID, "stuck_status", h.Status, "revert_to", target)

	if err := p.client.Hearing.UpdateOneID(h.ID).SetStatus(target).Exec(ctx); err != nil {
		if ent.IsNotFound(err) {
			return nil
		}
		return fmt.Errorf("reverting orphaned hearing: %w", err)
	}

	log.Warn("orphaned hearing reverted for retry")
	return nil
}
