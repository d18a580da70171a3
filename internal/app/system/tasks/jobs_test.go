package tasks

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"
)

type fakeRunner struct {
	n   int
	err error
}

func (f fakeRunner) RunAll(context.Context) (int, error) { return f.n, f.err }

func TestWeeklyAssignmentJob(t *testing.T) {
	job := WeeklyAssignmentJob(fakeRunner{n: 3}, zap.NewNop(), "@weekly")
	if job.Schedule != "@weekly" || job.Name == "" {
		t.Fatalf("unexpected job: %+v", job)
	}
	if err := job.Run(context.Background()); err != nil {
		t.Errorf("Run: %v", err)
	}

	boom := errors.New("boom")
	job = WeeklyAssignmentJob(fakeRunner{err: boom}, zap.NewNop(), "@weekly")
	if err := job.Run(context.Background()); !errors.Is(err, boom) {
		t.Errorf("Run error = %v, want %v", err, boom)
	}
}
