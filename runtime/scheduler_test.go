package runtime

import (
	"testing"
	"time"
)

func TestParseScheduleCron(t *testing.T) {
	sched, err := parseSchedule("0 3 * * *")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	next := sched.Next(base)
	if next.Hour() != 3 || next.Day() != 2 {
		t.Errorf("expected next run at 03:00 the next day, got %v", next)
	}
}

func TestParseScheduleDuration(t *testing.T) {
	sched, err := parseSchedule("24h")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	base := time.Now()
	next := sched.Next(base)
	if d := next.Sub(base); d < 23*time.Hour || d > 25*time.Hour {
		t.Errorf("expected roughly 24h delay, got %v", d)
	}
}

func TestParseScheduleInvalid(t *testing.T) {
	if _, err := parseSchedule("not a schedule"); err == nil {
		t.Error("expected error for invalid schedule")
	}
}
