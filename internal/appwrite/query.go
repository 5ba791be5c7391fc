package appwrite

import "encoding/json"

type query struct {
	Method    string `json:"method"`
	Attribute string `json:"attribute,omitempty"`
	Values    []any  `json:"values,omitempty"`
}

func encodeQuery(q query) string {
	// marshalling these fields cannot fail
	b, _ := json.Marshal(q)
	return string(b)
}

func OrderDesc(attribute string) string {
	return encodeQuery(query{Method: "orderDesc", Attribute: attribute})
}

func OrderAsc(attribute string) string {
	return encodeQuery(query{Method: "orderAsc", Attribute: attribute})
}

func Equal(attribute string, values ...any) string {
	return encodeQuery(query{Method: "equal", Attribute: attribute, Values: values})
}

func Limit(n int) string {
	return encodeQuery(query{Method: "limit", Values: []any{n}})
}

func CursorAfter(rowID string) string {
	return encodeQuery(query{Method: "cursorAfter", Values: []any{rowID}})
}
