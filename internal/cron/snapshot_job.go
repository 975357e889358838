package cron

import (
	"context"
	"fmt"

	"github.com/angelmondragon/partnerz-backend/internal/snapshot"
	"github.com/angelmondragon/partnerz-backend/pkg/logger"
)

// SnapshotSource produces the state to persist.
type SnapshotSource interface {
	Snapshot(ctx context.Context) (snapshot.State, error)
}

// SnapshotJobName identifies the directory snapshot job in the registry.
const SnapshotJobName = "directory-snapshot"

type SnapshotJobParams struct {
	Logger *logger.Logger
	Source SnapshotSource
	Store  snapshot.Store
}

// NewSnapshotJob returns a job that saves the directory and its ledger to Store on every run.
func NewSnapshotJob(params SnapshotJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Source == nil {
		return nil, fmt.Errorf("snapshot source required")
	}
	if params.Store == nil {
		return nil, fmt.Errorf("snapshot store required")
	}
	return &snapshotJob{logg: params.Logger, source: params.Source, store: params.Store}, nil
}

type snapshotJob struct {
	logg   *logger.Logger
	source SnapshotSource
	store  snapshot.Store
}

func (j *snapshotJob) Name() string { return SnapshotJobName }

func (j *snapshotJob) Run(ctx context.Context) error {
	state, err := j.source.Snapshot(ctx)
	if err != nil {
		return fmt.Errorf("directory snapshot: %w", err)
	}
	if err := j.store.Save(ctx, state); err != nil {
		return fmt.Errorf("directory snapshot: %w", err)
	}
	j.logg.Info(j.logg.WithFields(ctx, map[string]any{
		"members":       len(state.Members),
		"ledger_events": len(state.Ledger),
		"taken_at":      state.TakenAt,
	}), "directory snapshot saved")
	return nil
}
