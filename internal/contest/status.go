package contest

import (
	"fmt"
	"strings"
	"time"

	pkgerrors "contesthub/pkg/errors"
)

// Status is the time-derived lifecycle state of a contest. It is never stored.
type Status string

const (
	StatusUpcoming Status = "upcoming"
	StatusRunning  Status = "running"
	StatusPrevious Status = "previous"
)

// Statuses lists the tabs in display order.
var Statuses = []Status{StatusUpcoming, StatusRunning, StatusPrevious}

// ParseStatus maps a tab name to a Status.
func ParseStatus(s string) (Status, error) {
	switch Status(strings.ToLower(strings.TrimSpace(s))) {
	case StatusUpcoming:
		return StatusUpcoming, nil
	case StatusRunning:
		return StatusRunning, nil
	case StatusPrevious:
		return StatusPrevious, nil
	}
	return "", pkgerrors.Newf(pkgerrors.UnknownContestTab, "unknown contest tab %q", s).WithDetail("tab", s)
}

// Classify partitions the instant line around [start, end]; both bounds count as running.
func Classify(now, start, end time.Time) Status {
	switch {
	case now.Before(start):
		return StatusUpcoming
	case now.After(end):
		return StatusPrevious
	default:
		return StatusRunning
	}
}

// Length renders end-start as "HH:MM", or "Nd HH:MM" from one day up.
// A negative length keeps its sign instead of failing.
func Length(start, end time.Time) string {
	d := end.Sub(start)
	sign := ""
	if d < 0 {
		sign = "-"
		d = -d
	}
	minutes := int64(d / time.Minute)
	days := minutes / (24 * 60)
	hours := (minutes / 60) % 24
	mins := minutes % 60
	if days > 0 {
		return fmt.Sprintf("%s%dd %02d:%02d", sign, days, hours, mins)
	}
	return fmt.Sprintf("%s%02d:%02d", sign, hours, mins)
}

// Countdown renders the time left until start as "HH:MM:SS", or "Nd HH:MM:SS".
// Partial seconds round up so an upcoming contest never shows zero.
// Once now >= start the result is "00:00:00".
func Countdown(start, now time.Time) string {
	rem := start.Sub(now)
	if rem <= 0 {
		return "00:00:00"
	}
	secs := int64((rem + time.Second - 1) / time.Second)
	days := secs / 86400
	hours := (secs / 3600) % 24
	mins := (secs / 60) % 60
	s := secs % 60
	if days > 0 {
		return fmt.Sprintf("%dd %02d:%02d:%02d", days, hours, mins, s)
	}
	return fmt.Sprintf("%02d:%02d:%02d", hours, mins, s)
}

// FormatBegin renders a begin time in the viewer's local zone.
func FormatBegin(t time.Time) string {
	return t.Local().Format("2006-01-02 15:04")
}
