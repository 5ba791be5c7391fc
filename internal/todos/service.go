// Package todos forwards todo CRUD to the backend table and maps rows to
// todo.Todo.
package todos

import (
	"context"
	"errors"
	"time"

	"github.com/geocoder89/todohub/internal/appwrite"
	"github.com/geocoder89/todohub/internal/domain/todo"
)

type TablesAPI interface {
	ListRows(ctx context.Context, databaseID, tableID string, queries []string) (appwrite.RowList, error)
	CreateRow(ctx context.Context, databaseID, tableID, rowID string, data any, permissions []string) (appwrite.Row, error)
	UpdateRow(ctx context.Context, databaseID, tableID, rowID string, data any) (appwrite.Row, error)
	DeleteRow(ctx context.Context, databaseID, tableID, rowID string) error
	GetRow(ctx context.Context, databaseID, tableID, rowID string) (appwrite.Row, error)
}

// UserSource reports the id of the signed-in user, or "" when nobody is.
type UserSource interface {
	CurrentUserID() string
}

var ErrNotAuthenticated = errors.New("User not authenticated")

const DefaultPageSize = 25

// dueDateLayout matches what browsers produce from Date.toISOString.
const dueDateLayout = "2006-01-02T15:04:05.000Z07:00"

type Service struct {
	tables     TablesAPI
	users      UserSource
	databaseID string
	tableID    string
}

func NewService(tables TablesAPI, users UserSource, databaseID, tableID string) *Service {
	return &Service{
		tables:     tables,
		users:      users,
		databaseID: databaseID,
		tableID:    tableID,
	}
}

type todoRow struct {
	ID          string     `json:"$id"`
	CreatedAt   time.Time  `json:"$createdAt"`
	UpdatedAt   time.Time  `json:"$updatedAt"`
	Title       string     `json:"title"`
	Description *string    `json:"description"`
	Completed   bool       `json:"completed"`
	DueDate     *time.Time `json:"dueDate"`
}

func (s *Service) GetTodos(ctx context.Context, filter todo.ListFilter) (todo.Page, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = DefaultPageSize
	}

	queries := []string{appwrite.OrderDesc("$createdAt")}

	if filter.HideCompleted {
		queries = append(queries, appwrite.Equal("completed", false))
	}

	queries = append(queries, appwrite.Limit(limit))

	if filter.AfterID != "" {
		queries = append(queries, appwrite.CursorAfter(filter.AfterID))
	}

	list, err := s.tables.ListRows(ctx, s.databaseID, s.tableID, queries)
	if err != nil {
		return todo.Page{}, appwrite.Normalize(err)
	}

	items := make([]todo.Todo, 0, len(list.Rows))
	for _, row := range list.Rows {
		t, err := mapRow(row)
		if err != nil {
			return todo.Page{}, appwrite.Normalize(err)
		}
		items = append(items, t)
	}

	page := todo.Page{
		Items:   items,
		Total:   list.Total,
		HasMore: len(items) == limit,
	}
	if len(items) > 0 {
		page.LastID = items[len(items)-1].ID
	}

	return page, nil
}

func (s *Service) CreateTodo(ctx context.Context, req todo.CreateTodoRequest) (todo.Todo, error) {
	data := map[string]any{
		"title":       req.Title,
		"description": "",
		"completed":   false,
		"dueDate":     nil,
	}
	if req.Description != nil {
		data["description"] = *req.Description
	}
	if req.Completed != nil {
		data["completed"] = *req.Completed
	}
	if req.DueDate != nil {
		data["dueDate"] = formatDueDate(*req.DueDate)
	}

	userID := s.users.CurrentUserID()
	if userID == "" {
		return todo.Todo{}, ErrNotAuthenticated
	}

	role := appwrite.UserRole(userID)

	row, err := s.tables.CreateRow(ctx, s.databaseID, s.tableID, appwrite.UniqueID(), data, []string{
		appwrite.ReadPermission(role),
		appwrite.UpdatePermission(role),
		appwrite.DeletePermission(role),
	})
	if err != nil {
		return todo.Todo{}, appwrite.Normalize(err)
	}

	return s.mapOrNormalize(row)
}

func (s *Service) UpdateTodo(ctx context.Context, id string, req todo.UpdateTodoRequest) (todo.Todo, error) {
	data := map[string]any{}

	if req.Title != nil {
		data["title"] = *req.Title
	}
	if req.Description != nil {
		data["description"] = *req.Description
	}
	if req.Completed != nil {
		data["completed"] = *req.Completed
	}
	if req.DueDate != nil {
		data["dueDate"] = formatDueDate(*req.DueDate)
	} else if req.ClearDueDate {
		data["dueDate"] = nil
	}

	row, err := s.tables.UpdateRow(ctx, s.databaseID, s.tableID, id, data)
	if err != nil {
		return todo.Todo{}, s.normalizeRowErr(err)
	}

	return s.mapOrNormalize(row)
}

func (s *Service) DeleteTodo(ctx context.Context, id string) error {
	err := s.tables.DeleteRow(ctx, s.databaseID, s.tableID, id)
	if err != nil {
		return s.normalizeRowErr(err)
	}

	return nil
}

func (s *Service) GetTodo(ctx context.Context, id string) (todo.Todo, error) {
	row, err := s.tables.GetRow(ctx, s.databaseID, s.tableID, id)
	if err != nil {
		return todo.Todo{}, s.normalizeRowErr(err)
	}

	return s.mapOrNormalize(row)
}

// normalizeRowErr keeps todo.ErrNotFound matchable next to the backend
// message.
func (s *Service) normalizeRowErr(err error) error {
	normalized := appwrite.Normalize(err)
	if appwrite.IsNotFound(err) {
		return &notFoundError{msg: normalized.Error()}
	}
	return normalized
}

func (s *Service) mapOrNormalize(row appwrite.Row) (todo.Todo, error) {
	t, err := mapRow(row)
	if err != nil {
		return todo.Todo{}, appwrite.Normalize(err)
	}
	return t, nil
}

type notFoundError struct {
	msg string
}

func (e *notFoundError) Error() string        { return e.msg }
func (e *notFoundError) Is(target error) bool { return target == todo.ErrNotFound }

func mapRow(row appwrite.Row) (todo.Todo, error) {
	var r todoRow
	if err := row.Decode(&r); err != nil {
		return todo.Todo{}, err
	}

	t := todo.Todo{
		ID:        r.ID,
		Title:     r.Title,
		Completed: r.Completed,
		DueDate:   r.DueDate,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
	if r.Description != nil {
		t.Description = *r.Description
	}

	return t, nil
}

func formatDueDate(t time.Time) string {
	return t.UTC().Format(dueDateLayout)
}
