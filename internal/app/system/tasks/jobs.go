// internal/app/system/tasks/jobs.go
package tasks

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Job is a named unit of scheduled work. Schedule is a standard five-field
// cron expression (or a descriptor such as "@weekly").
type Job struct {
	Name     string
	Schedule string
	Timeout  time.Duration
	Run      func(ctx context.Context) error
}

// WeeklyRunner is implemented by the weekly assignment service.
type WeeklyRunner interface {
	RunAll(ctx context.Context) (int, error)
}

// WeeklyAssignmentJob issues a question to every active member of every
// active newsletter.
func WeeklyAssignmentJob(runner WeeklyRunner, logger *zap.Logger, schedule string) Job {
	return Job{
		Name:     "weekly-question-assignment",
		Schedule: schedule,
		Timeout:  10 * time.Minute,
		Run: func(ctx context.Context) error {
			n, err := runner.RunAll(ctx)
			if err != nil {
				return err
			}
			logger.Info("weekly assignment finished", zap.Int("newsletters", n))
			return nil
		},
	}
}
