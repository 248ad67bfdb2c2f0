package ui

import (
	"fmt"
	"time"
)

// Divide performs integer division safely, returning 0 if divisor is 0
func Divide(a, b int) int {
	if b == 0 {
		return 0
	}
	return a / b
}

// ProgressPercent returns count as a percentage of goal, capped at 100
func ProgressPercent(count, goal int) int {
	pct := Divide(count*100, goal)
	if pct > 100 {
		return 100
	}
	if pct < 0 {
		return 0
	}
	return pct
}

// HTMXInterval formats d for an hx-trigger "every" clause (e.g., "5000ms")
func HTMXInterval(d time.Duration) string {
	if d <= 0 {
		d = 5 * time.Second
	}
	return fmt.Sprintf("%dms", d.Milliseconds())
}

// IntervalLabel formats d for people (e.g., "5s", "2m")
func IntervalLabel(d time.Duration) string {
	if d <= 0 {
		d = 5 * time.Second
	}
	switch {
	case d%time.Minute == 0:
		return fmt.Sprintf("%dm", int(d/time.Minute))
	case d%time.Second == 0:
		return fmt.Sprintf("%ds", int(d/time.Second))
	}
	return d.String()
}
