package services

import (
	"context"
	"errors"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/seatrace/backend/internal/logger"
)

// Scheduler drives the periodic reconciliation and resolution batches. Each
// job runs immediately on start and then on its ticker; the services' own
// single-flight guards make an overlapping tick a skip, not a queue.
type Scheduler struct {
	delayService      *DelayService
	resolutionService *ResolutionService
	interval          time.Duration
	stopChan          <-chan struct{}
	wg                sync.WaitGroup
}

func NewScheduler(delayService *DelayService, resolutionService *ResolutionService, stopChan <-chan struct{}) *Scheduler {
	interval := time.Hour
	if raw := os.Getenv("RECONCILE_INTERVAL_MINUTES"); raw != "" {
		if minutes, err := strconv.Atoi(raw); err == nil && minutes > 0 {
			interval = time.Duration(minutes) * time.Minute
		}
	}
	return &Scheduler{
		delayService:      delayService,
		resolutionService: resolutionService,
		interval:          interval,
		stopChan:          stopChan,
	}
}

// Start launches both job loops.
func (s *Scheduler) Start() {
	logger.Info("Starting reconciliation scheduler", map[string]interface{}{
		"interval": s.interval.String(),
	})

	s.wg.Add(2)
	go s.loop("reconciliation", func(ctx context.Context) error {
		return s.delayService.RunReconciliation(ctx)
	})
	go s.loop("resolution", func(ctx context.Context) error {
		return s.resolutionService.ResolveIncidents(ctx)
	})
}

// Wait blocks until both loops have observed the stop signal and exited.
func (s *Scheduler) Wait() {
	s.wg.Wait()
}

func (s *Scheduler) loop(name string, run func(context.Context) error) {
	defer s.wg.Done()

	s.runOnce(name, run)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.runOnce(name, run)
		case <-s.stopChan:
			logger.Info("Scheduler loop stopping", map[string]interface{}{"job": name})
			return
		}
	}
}

func (s *Scheduler) runOnce(name string, run func(context.Context) error) {
	if err := run(context.Background()); err != nil && !errors.Is(err, ErrRunInFlight) {
		// The run aborts; the next tick retries from scratch. All writes are
		// idempotent upserts, so a partial run leaves no corrupt state.
		logger.Error("Scheduled run failed", map[string]interface{}{
			"job":   name,
			"error": err.Error(),
		})
	}
}
