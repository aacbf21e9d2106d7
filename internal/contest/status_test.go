package contest

import (
	"testing"
	"time"

	"contesthub/internal/testutil"
	pkgerrors "contesthub/pkg/errors"
)

var base = time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)

func TestClassifyBoundaries(t *testing.T) {
	start := base
	end := base.Add(2 * time.Hour)

	tests := []struct {
		name string
		now  time.Time
		want Status
	}{
		{"before start", start.Add(-time.Nanosecond), StatusUpcoming},
		{"at start", start, StatusRunning},
		{"inside", start.Add(time.Hour), StatusRunning},
		{"at end", end, StatusRunning},
		{"just after end", end.Add(time.Nanosecond), StatusPrevious},
		{"long after", end.Add(24 * time.Hour), StatusPrevious},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.now, start, end); got != tt.want {
				t.Errorf("Classify() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestClassifyPartitionIsExclusiveAndExhaustive(t *testing.T) {
	start := base
	end := base.Add(90 * time.Minute)
	for offset := -3 * time.Hour; offset <= 3*time.Hour; offset += 7 * time.Minute {
		now := start.Add(offset)
		got := Classify(now, start, end)

		upcoming := now.Before(start)
		running := !now.Before(start) && !now.After(end)
		previous := now.After(end)

		matches := 0
		for _, p := range []bool{upcoming, running, previous} {
			if p {
				matches++
			}
		}
		if matches != 1 {
			t.Fatalf("predicates not a partition at %s", now)
		}
		switch {
		case upcoming && got != StatusUpcoming,
			running && got != StatusRunning,
			previous && got != StatusPrevious:
			t.Fatalf("Classify(%s) = %s", now, got)
		}
	}
}

func TestClassifyMalformedContestNeverPanics(t *testing.T) {
	start := base
	end := base.Add(-time.Hour)
	got := Classify(base.Add(-30*time.Minute), start, end)
	testutil.AssertEqual(t, got, StatusUpcoming)
}

func TestLength(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{0, "00:00"},
		{90 * time.Minute, "01:30"},
		{2*time.Hour + 59*time.Second, "02:00"},
		{23*time.Hour + 59*time.Minute, "23:59"},
		{26 * time.Hour, "1d 02:00"},
		{-time.Hour, "-01:00"},
		{-(49*time.Hour + 5*time.Minute), "-2d 01:05"},
	}
	for _, tt := range tests {
		if got := Length(base, base.Add(tt.d)); got != tt.want {
			t.Errorf("Length(%s) = %q, want %q", tt.d, got, tt.want)
		}
	}
}

func TestCountdown(t *testing.T) {
	tests := []struct {
		untilStart time.Duration
		want       string
	}{
		{time.Hour, "01:00:00"},
		{90*time.Minute + 5*time.Second, "01:30:05"},
		{500 * time.Millisecond, "00:00:01"},
		{50 * time.Hour, "2d 02:00:00"},
		{0, "00:00:00"},
		{-time.Minute, "00:00:00"},
	}
	for _, tt := range tests {
		now := base.Add(-tt.untilStart)
		if got := Countdown(base, now); got != tt.want {
			t.Errorf("Countdown(%s before start) = %q, want %q", tt.untilStart, got, tt.want)
		}
	}
}

func TestCountdownIsRecomputed(t *testing.T) {
	clock := testutil.NewClock(base.Add(-time.Hour))
	first := Countdown(base, clock.Now())
	clock.Advance(time.Minute)
	second := Countdown(base, clock.Now())
	testutil.AssertEqual(t, first, "01:00:00")
	testutil.AssertEqual(t, second, "00:59:00")
}

func TestParseStatus(t *testing.T) {
	for _, s := range Statuses {
		got, err := ParseStatus(" " + string(s) + " ")
		testutil.MustNoError(t, err)
		testutil.AssertEqual(t, got, s)
	}
	got, err := ParseStatus("Running")
	testutil.MustNoError(t, err)
	testutil.AssertEqual(t, got, StatusRunning)

	_, err = ParseStatus("archived")
	if !pkgerrors.Is(err, pkgerrors.UnknownContestTab) {
		t.Fatalf("expected UnknownContestTab, got %v", err)
	}
}
