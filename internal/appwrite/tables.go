package appwrite

import (
	"context"
	"net/http"
	"net/url"
)

// TablesDB covers row operations under /tablesdb.
type TablesDB struct {
	c *Client
}

func NewTablesDB(c *Client) *TablesDB {
	return &TablesDB{c: c}
}

func rowsPath(databaseID, tableID string) string {
	return "/tablesdb/" + url.PathEscape(databaseID) + "/tables/" + url.PathEscape(tableID) + "/rows"
}

func (t *TablesDB) ListRows(ctx context.Context, databaseID, tableID string, queries []string) (RowList, error) {
	var out RowList

	q := url.Values{}
	for _, query := range queries {
		q.Add("queries[]", query)
	}

	_, err := t.c.call(ctx, request{
		op:     "tables.listRows",
		method: http.MethodGet,
		path:   rowsPath(databaseID, tableID),
		query:  q,
	}, &out)

	return out, err
}

func (t *TablesDB) CreateRow(ctx context.Context, databaseID, tableID, rowID string, data any, permissions []string) (Row, error) {
	var out Row

	body := map[string]any{
		"rowId": rowID,
		"data":  data,
	}
	if len(permissions) > 0 {
		body["permissions"] = permissions
	}

	_, err := t.c.call(ctx, request{
		op:     "tables.createRow",
		method: http.MethodPost,
		path:   rowsPath(databaseID, tableID),
		body:   body,
	}, &out)

	return out, err
}

func (t *TablesDB) UpdateRow(ctx context.Context, databaseID, tableID, rowID string, data any) (Row, error) {
	var out Row

	_, err := t.c.call(ctx, request{
		op:     "tables.updateRow",
		method: http.MethodPatch,
		path:   rowsPath(databaseID, tableID) + "/" + url.PathEscape(rowID),
		body:   map[string]any{"data": data},
	}, &out)

	return out, err
}

func (t *TablesDB) DeleteRow(ctx context.Context, databaseID, tableID, rowID string) error {
	_, err := t.c.call(ctx, request{
		op:     "tables.deleteRow",
		method: http.MethodDelete,
		path:   rowsPath(databaseID, tableID) + "/" + url.PathEscape(rowID),
	}, nil)

	return err
}

func (t *TablesDB) GetRow(ctx context.Context, databaseID, tableID, rowID string) (Row, error) {
	var out Row

	_, err := t.c.call(ctx, request{
		op:     "tables.getRow",
		method: http.MethodGet,
		path:   rowsPath(databaseID, tableID) + "/" + url.PathEscape(rowID),
	}, &out)

	return out, err
}
