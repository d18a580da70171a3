package workers

import (
	"context"
	"testing"
	"time"

	"github.com/dalemusser/newsletterhub/internal/app/system/tasks"
	"go.uber.org/zap"
)

func TestValidateSchedule(t *testing.T) {
	for _, ok := range []string{"0 9 * * MON", "@weekly", "*/5 * * * *"} {
		if err := ValidateSchedule(ok); err != nil {
			t.Errorf("ValidateSchedule(%q) = %v", ok, err)
		}
	}
	for _, bad := range []string{"", "every monday", "61 * * * *"} {
		if err := ValidateSchedule(bad); err == nil {
			t.Errorf("ValidateSchedule(%q) = nil, want error", bad)
		}
	}
}

func TestScheduler_AddRejectsBadSchedule(t *testing.T) {
	s := NewScheduler(zap.NewNop())
	err := s.Add(tasks.Job{Name: "bad", Schedule: "nope", Run: func(context.Context) error { return nil }})
	if err == nil {
		t.Fatal("expected error for bad schedule")
	}
}

func TestScheduler_RunsJob(t *testing.T) {
	s := NewScheduler(zap.NewNop())
	ran := make(chan struct{}, 1)
	job := tasks.Job{
		Name:     "tick",
		Schedule: "@every 1s",
		Run: func(context.Context) error {
			select {
			case ran <- struct{}{}:
			default:
			}
			return nil
		},
	}
	if err := s.Add(job); err != nil {
		t.Fatalf("Add: %v", err)
	}
	s.Start()
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		s.Stop(ctx)
	}()

	select {
	case <-ran:
	case <-time.After(3 * time.Second):
		t.Fatal("job did not run")
	}
}
