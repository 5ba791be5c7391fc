package appwrite

import (
	"encoding/json"
	"time"
)

type User struct {
	ID                string    `json:"$id"`
	CreatedAt         time.Time `json:"$createdAt"`
	UpdatedAt         time.Time `json:"$updatedAt"`
	Name              string    `json:"name"`
	Email             string    `json:"email"`
	EmailVerification bool      `json:"emailVerification"`
	Status            bool      `json:"status"`
}

type Session struct {
	ID        string    `json:"$id"`
	CreatedAt time.Time `json:"$createdAt"`
	UserID    string    `json:"userId"`
	Expire    time.Time `json:"expire"`
	Provider  string    `json:"provider"`
	Current   bool      `json:"current"`
	// only filled when the session is created with an API key
	Secret string `json:"secret"`
}

type Token struct {
	ID        string    `json:"$id"`
	CreatedAt time.Time `json:"$createdAt"`
	UserID    string    `json:"userId"`
	Secret    string    `json:"secret"`
	Expire    time.Time `json:"expire"`
}

// Row is a table row. The system attributes are decoded; the user columns
// stay raw until Decode.
type Row struct {
	ID          string    `json:"$id"`
	TableID     string    `json:"$tableId"`
	DatabaseID  string    `json:"$databaseId"`
	CreatedAt   time.Time `json:"$createdAt"`
	UpdatedAt   time.Time `json:"$updatedAt"`
	Permissions []string  `json:"$permissions"`

	raw json.RawMessage
}

func (r *Row) UnmarshalJSON(b []byte) error {
	type rowAlias Row

	var a rowAlias
	if err := json.Unmarshal(b, &a); err != nil {
		return err
	}

	*r = Row(a)
	r.raw = append(json.RawMessage(nil), b...)

	return nil
}

// Decode unmarshals the full row, user columns included, into v.
func (r Row) Decode(v any) error {
	if len(r.raw) == 0 {
		return json.Unmarshal([]byte("{}"), v)
	}
	return json.Unmarshal(r.raw, v)
}

type RowList struct {
	Total int   `json:"total"`
	Rows  []Row `json:"rows"`
}
