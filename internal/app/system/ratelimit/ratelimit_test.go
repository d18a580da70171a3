package ratelimit

import (
	"testing"
	"time"
)

func TestLimiter_PerKeyBudget(t *testing.T) {
	l := New(2, time.Hour)

	if !l.Allow("a") || !l.Allow("a") {
		t.Fatal("first two events for a should be allowed")
	}
	if l.Allow("a") {
		t.Error("third event for a should be limited")
	}
	if !l.Allow("b") {
		t.Error("b has its own budget")
	}
}

func TestLimiter_Refills(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	l := New(1, time.Minute)
	l.now = func() time.Time { return now }

	if !l.Allow("k") {
		t.Fatal("first event should be allowed")
	}
	if l.Allow("k") {
		t.Fatal("second event should be limited")
	}
	now = now.Add(time.Minute)
	if !l.Allow("k") {
		t.Error("event after one period should be allowed")
	}
}

func TestLimiter_DisabledWhenZero(t *testing.T) {
	l := New(0, time.Minute)
	for i := 0; i < 100; i++ {
		if !l.Allow("k") {
			t.Fatal("zero limit should disable limiting")
		}
	}
}
