package scheduler

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shaiso/mgdt/internal/domain"
)

func TestCalculateNextDue_Cron(t *testing.T) {
	sched := &domain.Schedule{
		CronExpr: "0 3 * * *", // каждый день в 3:00
		Timezone: "UTC",
	}

	from := time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)
	next, err := CalculateNextDue(sched, from)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expected := time.Date(2026, 1, 16, 3, 0, 0, 0, time.UTC)
	if !next.Equal(expected) {
		t.Errorf("expected %v, got %v", expected, next)
	}
}

func TestCalculateNextDue_CronBeforeDue(t *testing.T) {
	sched := &domain.Schedule{
		CronExpr: "0 3 * * *",
		Timezone: "UTC",
	}

	// До 3:00 того же дня
	from := time.Date(2026, 1, 15, 1, 30, 0, 0, time.UTC)
	next, err := CalculateNextDue(sched, from)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expected := time.Date(2026, 1, 15, 3, 0, 0, 0, time.UTC)
	if !next.Equal(expected) {
		t.Errorf("expected %v, got %v", expected, next)
	}
}

func TestCalculateNextDue_Timezone(t *testing.T) {
	sched := &domain.Schedule{
		CronExpr: "0 3 * * *",
		Timezone: "Europe/Moscow", // UTC+3
	}

	from := time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)
	next, err := CalculateNextDue(sched, from)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// 3:00 по Москве = 0:00 UTC; результат хранится в UTC
	expected := time.Date(2026, 1, 16, 0, 0, 0, 0, time.UTC)
	if !next.Equal(expected) {
		t.Errorf("expected %v, got %v", expected, next)
	}
	if next.Location() != time.UTC {
		t.Error("next due should be returned in UTC")
	}
}

func TestCalculateNextDue_InvalidTimezoneFallsBackToUTC(t *testing.T) {
	sched := &domain.Schedule{
		CronExpr: "0 3 * * *",
		Timezone: "Not/AZone",
	}

	from := time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)
	next, err := CalculateNextDue(sched, from)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expected := time.Date(2026, 1, 16, 3, 0, 0, 0, time.UTC)
	if !next.Equal(expected) {
		t.Errorf("expected UTC fallback %v, got %v", expected, next)
	}
}

func TestCalculateNextDue_Interval(t *testing.T) {
	sched := &domain.Schedule{
		IntervalSec: 3600,
		Timezone:    "UTC",
	}

	from := time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)
	next, err := CalculateNextDue(sched, from)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expected := from.Add(time.Hour)
	if !next.Equal(expected) {
		t.Errorf("expected %v, got %v", expected, next)
	}
}

func TestCalculateNextDue_CronWinsOverInterval(t *testing.T) {
	sched := &domain.Schedule{
		CronExpr:    "0 3 * * *",
		IntervalSec: 60,
		Timezone:    "UTC",
	}

	from := time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)
	next, err := CalculateNextDue(sched, from)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Интервал игнорируется при заданном cron
	if next.Sub(from) == time.Minute {
		t.Error("cron_expr should take precedence over interval_sec")
	}
}

func TestCalculateNextDue_Empty(t *testing.T) {
	sched := &domain.Schedule{Timezone: "UTC"}

	if _, err := CalculateNextDue(sched, time.Now()); err == nil {
		t.Error("expected error for schedule with neither cron nor interval")
	}
}

func TestValidateCronExpr(t *testing.T) {
	valid := []string{"0 3 * * *", "*/5 * * * *", "0 0 1 * *"}
	for _, expr := range valid {
		if err := ValidateCronExpr(expr); err != nil {
			t.Errorf("expression %q should be valid: %v", expr, err)
		}
	}

	invalid := []string{"", "not a cron", "99 * * * *", "* * *"}
	for _, expr := range invalid {
		if err := ValidateCronExpr(expr); err == nil {
			t.Errorf("expression %q should be invalid", expr)
		}
	}
}

func TestSchedule_IsDue(t *testing.T) {
	now := time.Now()
	past := now.Add(-time.Minute)
	future := now.Add(time.Minute)

	sched := &domain.Schedule{ID: uuid.New(), Enabled: true, NextDueAt: &past}
	if !sched.IsDue(now) {
		t.Error("schedule with past next_due_at should be due")
	}

	sched.NextDueAt = &future
	if sched.IsDue(now) {
		t.Error("schedule with future next_due_at should not be due")
	}

	sched.NextDueAt = &past
	sched.Enabled = false
	if sched.IsDue(now) {
		t.Error("disabled schedule should never be due")
	}

	sched.Enabled = true
	sched.NextDueAt = nil
	if sched.IsDue(now) {
		t.Error("schedule without next_due_at should not be due")
	}
}
