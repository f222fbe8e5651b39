// Package stages composes the per-domain services (pkg/docket,
// pkg/entitylink, pkg/media+pkg/transcribe, pkg/analyze) into the
// pipeline.StageRunner contract the orchestrator dispatches against.
package stages

import (
	"context"
	"fmt"

	"github.com/canaryscope/canaryscope/ent"
	"github.com/canaryscope/canaryscope/pkg/docket"
	"github.com/canaryscope/canaryscope/pkg/entitylink"
	"github.com/canaryscope/canaryscope/pkg/models"
)

// ExtractRunner implements pipeline.StageRunner for the analyzed->extracted
// transition, running docket extraction (C7) and entity linking (C10)
// against the same transcript/analysis pass and committing both in a single
// transaction alongside the status transition (§5).
type ExtractRunner struct {
	dockets  *docket.Service
	entities *entitylink.Service
}

// NewExtractRunner creates a new ExtractRunner.
func NewExtractRunner(dockets *docket.Service, entities *entitylink.Service) *ExtractRunner {
	return &ExtractRunner{dockets: dockets, entities: entities}
}

// Run implements pipeline.StageRunner.
func (r *ExtractRunner) Run(ctx context.Context, h *ent.Hearing) models.StageResult {
	candidates, err := r.dockets.ExtractCandidates(ctx, h)
	if err != nil {
		return models.Fail(fmt.Errorf("docket extraction: %w", err), true)
	}

	links, err := r.entities.Link(ctx, h.ID)
	if err != nil {
		return models.Fail(fmt.Errorf("entity linking: %w", err), true)
	}

	write := func(ctx context.Context, tx *ent.Tx) error {
		if err := r.dockets.Persist(ctx, tx, h, candidates); err != nil {
			return err
		}
		return r.entities.Persist(ctx, tx, h.ID, links)
	}

	accepted := 0
	for _, c := range candidates {
		if c.Status != models.DocketRejected {
			accepted++
		}
	}

	return models.OkWithWrite(0, map[string]interface{}{
		"docket_candidates_found": len(candidates),
		"dockets_linked":          accepted,
		"utilities_linked":        len(links.Utilities),
		"topics_linked":           len(links.Topics),
	}, write)
}
