// Package scheduler runs the periodic jobs of the relay.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/rocketscienceinc/warfront-relay/internal/entity"
)

const publishTimeout = 5 * time.Second

type statsSource interface {
	Stats(ctx context.Context) (*entity.Stats, error)
}

type statsSink interface {
	Save(ctx context.Context, stats *entity.Stats, ttl time.Duration) error
}

// StatsPublisher copies the coordinator snapshot into the sink every interval. Entries live
// for two intervals, so they vanish shortly after the relay stops.
type StatsPublisher struct {
	logger    *slog.Logger
	source    statsSource
	sink      statsSink
	interval  time.Duration
	scheduler gocron.Scheduler
}

func NewStatsPublisher(logger *slog.Logger, source statsSource, sink statsSink, interval time.Duration) (*StatsPublisher, error) {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}

	return &StatsPublisher{
		logger:    logger.With("component", "stats-publisher"),
		source:    source,
		sink:      sink,
		interval:  interval,
		scheduler: scheduler,
	}, nil
}

// Start - schedules the publish job, first run immediately.
func (that *StatsPublisher) Start(ctx context.Context) error {
	_, err := that.scheduler.NewJob(
		gocron.DurationJob(that.interval),
		gocron.NewTask(func() {
			if err := that.Publish(ctx); err != nil {
				that.logger.Warn("failed to publish stats", "error", err)
			}
		}),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	)
	if err != nil {
		return fmt.Errorf("failed to schedule stats job: %w", err)
	}

	that.scheduler.Start()
	that.logger.Info("stats publisher started", "interval", that.interval)

	return nil
}

// Publish - copies one snapshot.
func (that *StatsPublisher) Publish(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	stats, err := that.source.Stats(ctx)
	if err != nil {
		return fmt.Errorf("failed to get stats: %w", err)
	}

	if err = that.sink.Save(ctx, stats, 2*that.interval); err != nil {
		return fmt.Errorf("failed to save stats: %w", err)
	}

	return nil
}

func (that *StatsPublisher) Shutdown() error {
	if err := that.scheduler.Shutdown(); err != nil {
		return fmt.Errorf("failed to shutdown scheduler: %w", err)
	}

	return nil
}
