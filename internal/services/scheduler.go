package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// RoundScheduler plays the next round of every active season on a cron
// schedule
type RoundScheduler struct {
	seasons   *SeasonService
	cron      *cron.Cron
	schedule  string
	timeout   time.Duration
	logger    *logrus.Logger
	mu        sync.Mutex
	isRunning bool
}

func NewRoundScheduler(seasons *SeasonService, schedule string, logger *logrus.Logger) *RoundScheduler {
	return &RoundScheduler{
		seasons:  seasons,
		cron:     cron.New(),
		schedule: schedule,
		timeout:  time.Minute,
		logger:   logger,
	}
}

// Start registers the job and starts the cron runner
func (s *RoundScheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("round scheduler is already running")
	}
	if _, err := s.cron.AddFunc(s.schedule, s.advance); err != nil {
		return fmt.Errorf("failed to schedule round advance: %w", err)
	}

	s.cron.Start()
	s.isRunning = true
	s.logger.WithField("schedule", s.schedule).Info("Round scheduler started")
	return nil
}

// Stop waits for a running job to finish
func (s *RoundScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}
	ctx := s.cron.Stop()
	<-ctx.Done()

	s.isRunning = false
	s.logger.Info("Round scheduler stopped")
}

// NextRun reports when the job fires next
func (s *RoundScheduler) NextRun() time.Time {
	entries := s.cron.Entries()
	if len(entries) == 0 {
		return time.Time{}
	}
	return entries[0].Next
}

func (s *RoundScheduler) advance() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	advanced, err := s.seasons.AdvanceAll(ctx)
	if err != nil {
		s.logger.WithError(err).Error("Scheduled round advance failed")
	}
	if advanced > 0 {
		s.logger.WithField("seasons", advanced).Info("Scheduled round advance complete")
	}
}
