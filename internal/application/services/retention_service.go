package services

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/todoflow/core/internal/infrastructure/config"
	"github.com/todoflow/core/internal/infrastructure/logger"
)

// RetentionService runs the todo retention sweep on a cron schedule.
type RetentionService struct {
	todos  *TodoService
	cfg    config.RetentionConfig
	cron   *cron.Cron
	logger *logger.Logger
}

// NewRetentionService creates a new retention service
func NewRetentionService(todos *TodoService, cfg config.RetentionConfig, logger *logger.Logger) *RetentionService {
	return &RetentionService{
		todos:  todos,
		cfg:    cfg,
		cron:   cron.New(),
		logger: logger,
	}
}

// Start registers the sweep job and starts the scheduler. It is a no-op
// when retention is disabled in config.
func (s *RetentionService) Start() error {
	if !s.cfg.Enabled {
		s.logger.Info("Retention sweep disabled")
		return nil
	}

	_, err := s.cron.AddFunc(s.cfg.Schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()

		if _, err := s.Sweep(ctx); err != nil {
			s.logger.Errorw("Retention sweep failed", "error", err)
		}
	})
	if err != nil {
		return err
	}

	s.cron.Start()
	s.logger.Infow("Retention sweep scheduled",
		"schedule", s.cfg.Schedule,
		"window", s.cfg.Window.String(),
	)

	return nil
}

// Stop stops the scheduler and waits for a running sweep to finish.
func (s *RetentionService) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

// Sweep deletes todos older than the configured window and returns the
// number of records removed.
func (s *RetentionService) Sweep(ctx context.Context) (int64, error) {
	return s.todos.DeleteOld(ctx, s.cfg.Window)
}
