package todo

import (
	"math"
	"time"
)

type DueColor string

const (
	DueNone    DueColor = ""
	DueDanger  DueColor = "danger"
	DueWarning DueColor = "warning"
	DueMedium  DueColor = "medium"
)

// DueDateColor picks the indicator for a due date as seen at now: overdue is
// danger, due within a day is warning, anything later is medium.
func DueDateColor(due *time.Time, now time.Time) DueColor {
	if due == nil || due.IsZero() {
		return DueNone
	}

	diff := due.Sub(now)
	if diff < 0 {
		return DueDanger
	}

	days := math.Ceil(diff.Hours() / 24)
	if days <= 1 {
		return DueWarning
	}

	return DueMedium
}
