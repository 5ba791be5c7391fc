package utils

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"time"
)

// TodoCursor points at the last todo of a page. The list continues after it.
type TodoCursor struct {
	CreatedAt time.Time `json:"createdAt"`
	ID        string    `json:"id"`
}

func EncodeTodoCursor(createdAt time.Time, id string) (string, error) {
	if id == "" {
		return "", errors.New("empty cursor id")
	}

	b, err := json.Marshal(TodoCursor{CreatedAt: createdAt, ID: id})
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

func DecodeTodoCursor(cursor string) (TodoCursor, error) {
	if cursor == "" {
		return TodoCursor{}, errors.New("empty cursor")
	}

	raw, err := base64.RawURLEncoding.DecodeString(cursor)
	if err != nil {
		return TodoCursor{}, err
	}

	var c TodoCursor
	if err := json.Unmarshal(raw, &c); err != nil {
		return TodoCursor{}, err
	}
	if c.ID == "" {
		return TodoCursor{}, errors.New("invalid cursor payload")
	}
	return c, nil
}
