package todo

import (
	"errors"
	"time"
)

type Todo struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Completed   bool       `json:"completed"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
	CreatedAt   time.Time  `json:"created"`
	UpdatedAt   time.Time  `json:"updated"`
}

var ErrNotFound = errors.New("todo not found")

type CreateTodoRequest struct {
	Title       string
	Description *string
	Completed   *bool
	DueDate     *time.Time
}

// UpdateTodoRequest sends only the fields that are set. ClearDueDate sends
// an explicit null for the due date.
type UpdateTodoRequest struct {
	Title        *string
	Description  *string
	Completed    *bool
	DueDate      *time.Time
	ClearDueDate bool
}

type ListFilter struct {
	HideCompleted bool
	Limit         int
	// AfterID continues the list after the row with this id
	AfterID string
}

type Page struct {
	Items  []Todo `json:"items"`
	Total  int    `json:"total"`
	LastID string `json:"-"`
	// HasMore is true when rows remain past this page
	HasMore bool `json:"hasMore"`
}
