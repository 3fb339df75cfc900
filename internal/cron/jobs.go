package cron

import (
	"context"
	"fmt"

	"github.com/Arcano33sa/suitea33-sub002/internal/dashboard"
	"github.com/Arcano33sa/suitea33-sub002/internal/store"
	"github.com/Arcano33sa/suitea33-sub002/pkg/db/models"
	"github.com/Arcano33sa/suitea33-sub002/pkg/logger"
	"go.uber.org/multierr"
)

const (
	JobSnapshotRevalidate = "snapshot-revalidate"
	JobFocusSync          = "focus-sync"
)

type snapshotWarmer interface {
	GetActiveEvents(ctx context.Context) store.Result[[]models.Event]
	BuildSnapshots(ctx context.Context, events []models.Event) ([]dashboard.Snapshot, error)
}

type focusSyncer interface {
	SyncFocus(ctx context.Context) store.Result[int]
}

// RevalidateJobParams configure the snapshot warm-up job.
type RevalidateJobParams struct {
	Logger    *logger.Logger
	Dashboard snapshotWarmer
}

// NewRevalidateJob builds the job that keeps the snapshots of the active set
// warm, so card reads between ticks are cache hits.
func NewRevalidateJob(params RevalidateJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Dashboard == nil {
		return nil, fmt.Errorf("dashboard required")
	}
	return &revalidateJob{logg: params.Logger, dashboard: params.Dashboard}, nil
}

type revalidateJob struct {
	logg      *logger.Logger
	dashboard snapshotWarmer
}

func (j *revalidateJob) Name() string { return JobSnapshotRevalidate }

func (j *revalidateJob) Run(ctx context.Context) error {
	active := j.dashboard.GetActiveEvents(ctx)
	if !active.Known() {
		return fmt.Errorf("active events %s: %s", active.Status, active.Reason)
	}
	snapshots, err := j.dashboard.BuildSnapshots(ctx, active.Value)
	if err != nil {
		return fmt.Errorf("build snapshots: %w", err)
	}
	var faults error
	for _, snap := range snapshots {
		if snap.Fault != "" {
			faults = multierr.Append(faults, fmt.Errorf("event %d: %s", snap.EventID, snap.Fault))
		}
	}
	j.logg.Info(j.logg.WithFields(ctx, map[string]any{
		"events": len(snapshots),
		"faults": len(multierr.Errors(faults)),
	}), "snapshots revalidated")
	return faults
}

// NewFocusSyncJob builds the job that picks up focus changes made by the POS
// itself.
func NewFocusSyncJob(logg *logger.Logger, dashboard focusSyncer) (Job, error) {
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if dashboard == nil {
		return nil, fmt.Errorf("dashboard required")
	}
	return &focusSyncJob{logg: logg, dashboard: dashboard}, nil
}

type focusSyncJob struct {
	logg      *logger.Logger
	dashboard focusSyncer
}

func (j *focusSyncJob) Name() string { return JobFocusSync }

func (j *focusSyncJob) Run(ctx context.Context) error {
	res := j.dashboard.SyncFocus(ctx)
	switch res.Status {
	case store.StatusOK:
		j.logg.Debug(j.logg.WithEventID(ctx, res.Value), "focus pointer synced")
		return nil
	case store.StatusEmpty:
		return nil
	default:
		return fmt.Errorf("focus pointer %s: %s", res.Status, res.Reason)
	}
}
