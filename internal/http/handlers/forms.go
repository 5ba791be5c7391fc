package handlers

import (
	"errors"
	"strings"
	"time"
)

type passwordResetRequestForm struct {
	Email string `form:"email" binding:"required,email"`
}

type passwordResetForm struct {
	UserID          string `form:"userId" binding:"required"`
	Secret          string `form:"secret" binding:"required"`
	Password        string `form:"password" binding:"required,min=8"`
	ConfirmPassword string `form:"confirmPassword" binding:"required,eqfield=Password"`
}

type todoForm struct {
	Title       string `form:"title" binding:"required,max=255"`
	Description string `form:"description" binding:"max=1000"`
	Completed   bool   `form:"completed"`
	DueDate     string `form:"dueDate"`
}

type profileForm struct {
	Email    string `form:"email" binding:"required,email"`
	Name     string `form:"name"`
	Password string `form:"password"`
}

var errBadDueDate = errors.New("must be a valid date")

// parseDueDate accepts a date input value, a datetime-local value or a full
// RFC 3339 timestamp. Empty means no due date.
func parseDueDate(raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}

	for _, layout := range []string{"2006-01-02", "2006-01-02T15:04", time.RFC3339Nano} {
		if t, err := time.Parse(layout, raw); err == nil {
			t = t.UTC()
			return &t, nil
		}
	}
	return nil, errBadDueDate
}
