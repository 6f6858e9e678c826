package scheduler

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/i474232898/weatherflow-forecast/internal/weather"
)

// Poller runs one polling cycle for a station.
type Poller interface {
	Poll(ctx context.Context, stationID int) (weather.StationReading, error)
}

// Scheduler periodically polls the configured stations.
type Scheduler struct {
	scheduler *gocron.Scheduler
	poller    Poller
	stations  []int
	interval  time.Duration
	logger    logrus.FieldLogger
}

// New creates a new Scheduler.
func New(stations []int, interval time.Duration, poller Poller, logger logrus.FieldLogger) *Scheduler {
	s := gocron.NewScheduler(time.UTC)
	s.SingletonModeAll()
	if interval <= 0 {
		interval = time.Minute
	}
	return &Scheduler{
		scheduler: s,
		poller:    poller,
		stations:  stations,
		interval:  interval,
		logger:    logger,
	}
}

// Start schedules the polling job and starts the underlying scheduler. The
// first cycle runs immediately. Cycles stop when ctx is cancelled.
func (s *Scheduler) Start(ctx context.Context) error {
	if len(s.stations) == 0 {
		s.logger.Warn("scheduler: no stations configured; nothing to schedule")
		return nil
	}

	_, err := s.scheduler.Every(s.interval).Do(func() {
		if ctx.Err() != nil {
			return
		}
		s.RunOnce(ctx)
	})
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	return nil
}

// RunOnce polls every station concurrently and waits for all of them.
// Failures are logged; a cycle never aborts because one station failed.
func (s *Scheduler) RunOnce(ctx context.Context) {
	log := s.logger.WithField("cycle", uuid.NewString())
	log.Debug("scheduler: polling cycle started")

	ctx, cancel := context.WithTimeout(ctx, s.interval)
	defer cancel()

	var wg sync.WaitGroup
	for _, id := range s.stations {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()

			reading, err := s.poller.Poll(ctx, id)
			entry := log.WithField("station_id", id)
			switch {
			case errors.Is(err, weather.ErrStationNotFound):
				entry.WithError(err).Error("scheduler: station not found")
			case err != nil:
				entry.WithError(err).Warn("scheduler: poll failed")
			case !reading.DataAvailable:
				entry.Info("scheduler: station offline")
			}
		}(id)
	}
	wg.Wait()

	log.Debug("scheduler: polling cycle completed")
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
