package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/odyssey-erp/ceo-dashboard/internal/finance"
	"github.com/odyssey-erp/ceo-dashboard/internal/finance/archive"
	jobmetrics "github.com/odyssey-erp/ceo-dashboard/internal/jobs"
)

var defaultJobMetrics = jobmetrics.NewMetrics(nil)

// Refresher drops the cached feed and loads a fresh copy.
type Refresher interface {
	Refresh(ctx context.Context) (finance.Feed, error)
}

// SnapshotStore persists yearly snapshots.
type SnapshotStore interface {
	Save(ctx context.Context, snapshots []archive.Snapshot) error
}

// FeedRefreshJob rewarms the feed cache and archives the yearly totals.
type FeedRefreshJob struct {
	Service Refresher
	Store   SnapshotStore
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
	clock   func() time.Time
}

// NewFeedRefreshJob wires dependencies for the refresh handler. store may be nil when no
// archive database is configured.
func NewFeedRefreshJob(service Refresher, store SnapshotStore, logger *slog.Logger, metrics *jobmetrics.Metrics) *FeedRefreshJob {
	return &FeedRefreshJob{
		Service: service,
		Store:   store,
		Logger:  logger,
		Metrics: metrics,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Handle processes TaskFeedRefresh tasks.
func (j *FeedRefreshJob) Handle(ctx context.Context, t *asynq.Task) (err error) {
	if j == nil || j.Service == nil {
		return errors.New("feed refresh: handler not configured")
	}
	var payload FeedRefreshPayload
	if len(t.Payload()) > 0 {
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return fmt.Errorf("feed refresh: decode payload: %v: %w", err, asynq.SkipRetry)
		}
	}
	if payload.Reason == "" {
		payload.Reason = "scheduled"
	}

	tracker := j.metrics().Track(TaskFeedRefresh)
	defer func() {
		err = tracker.End(err)
	}()

	logger := j.logger().With(slog.String("reason", payload.Reason))
	logger.Info("starting feed refresh")
	started := j.now()

	feed, err := j.Service.Refresh(ctx)
	if err != nil {
		logger.Error("refresh feed", slog.Any("error", err))
		return err
	}
	yearWise, err := finance.ComputeYearWiseTotals(feed.Finance)
	if err != nil {
		logger.Error("aggregate feed", slog.Any("error", err))
		return err
	}
	j.metrics().SetFeedYears(len(yearWise.Years))

	archived := 0
	if j.Store != nil {
		snapshots, err := archive.Snapshots(yearWise, finance.CountUniqueZones(feed.Branches), len(feed.Branches), started)
		if err != nil {
			logger.Error("build snapshots", slog.Any("error", err))
			return err
		}
		if err := j.Store.Save(ctx, snapshots); err != nil {
			logger.Error("archive snapshots", slog.Any("error", err))
			return err
		}
		archived = len(snapshots)
		j.metrics().AddArchived(archived)
	}

	logger.Info("completed feed refresh",
		slog.Int("branches", len(feed.Branches)),
		slog.Int("years", len(yearWise.Years)),
		slog.Int("archived", archived),
		slog.Duration("duration", j.now().Sub(started)))
	return nil
}

func (j *FeedRefreshJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskFeedRefresh))
	}
	return slog.Default().With(slog.String("job", TaskFeedRefresh))
}

func (j *FeedRefreshJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}

func (j *FeedRefreshJob) now() time.Time {
	if j.clock != nil {
		return j.clock()
	}
	return time.Now().UTC()
}
