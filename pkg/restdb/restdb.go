// Package restdb is a small client for the PostgREST-style data API and its
// companion auth endpoints exposed by the remote backend. It covers exactly
// what the entity store needs: per-table CRUD with equality filters, ordering,
// limits and embedded joins, each call returning either data or an error.
package restdb

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// Client talks to one backend project. The zero value is not usable; use New.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client

	// Auth exposes the sign-in/sign-up/session endpoints.
	Auth *AuthClient
}

// New creates a client for the backend at baseURL authenticated with the
// anonymous API key. The timeout bounds every call so a hung backend surfaces
// as an error instead of blocking forever.
func New(baseURL, apiKey string, timeout time.Duration) *Client {
	c := &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: timeout},
	}
	c.Auth = &AuthClient{c: c}
	return c
}

// Error is a backend-reported failure (non-2xx response).
type Error struct {
	Status  int    `json:"-"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("backend error (status %d): %s", e.Status, e.Message)
	}
	return fmt.Sprintf("backend error (status %d)", e.Status)
}

// From starts a query against a table.
func (c *Client) From(table string) *Query {
	return &Query{c: c, table: table, selectCols: "*"}
}

// Query accumulates modifiers for a single table operation.
type Query struct {
	c          *Client
	table      string
	selectCols string
	filters    []filter
	order      string
	limit      int
}

type filter struct {
	column string
	value  string
}

// Select sets the column list, including embedded resources such as
// "*, profiles:user_id (username)".
func (q *Query) Select(cols string) *Query {
	q.selectCols = cols
	return q
}

// Eq adds an equality filter on column.
func (q *Query) Eq(column, value string) *Query {
	q.filters = append(q.filters, filter{column: column, value: value})
	return q
}

// Order sorts the result by column.
func (q *Query) Order(column string, ascending bool) *Query {
	dir := "desc"
	if ascending {
		dir = "asc"
	}
	q.order = column + "." + dir
	return q
}

// Limit caps the number of returned rows.
func (q *Query) Limit(n int) *Query {
	q.limit = n
	return q
}

func (q *Query) values(withSelect bool) url.Values {
	v := url.Values{}
	if withSelect && q.selectCols != "" {
		v.Set("select", q.selectCols)
	}
	for _, f := range q.filters {
		v.Add(f.column, "eq."+f.value)
	}
	if q.order != "" {
		v.Set("order", q.order)
	}
	if q.limit > 0 {
		v.Set("limit", strconv.Itoa(q.limit))
	}
	return v
}

// Get executes the query and decodes the row set into dest (a pointer to a
// slice, or to a struct when exactly one row is expected).
func (q *Query) Get(ctx context.Context, dest interface{}) error {
	return q.c.do(ctx, http.MethodGet, "/rest/v1/"+q.table, q.values(true), nil, "", dest)
}

// Insert adds row(s) to the table. When dest is non-nil the created rows are
// decoded into it.
func (q *Query) Insert(ctx context.Context, row, dest interface{}) error {
	prefer := "return=minimal"
	if dest != nil {
		prefer = "return=representation"
	}
	return q.c.do(ctx, http.MethodPost, "/rest/v1/"+q.table, q.values(dest != nil), row, prefer, dest)
}

// Upsert inserts row(s), replacing on primary-key conflict.
func (q *Query) Upsert(ctx context.Context, row, dest interface{}) error {
	prefer := "resolution=merge-duplicates"
	if dest != nil {
		prefer += ",return=representation"
	}
	return q.c.do(ctx, http.MethodPost, "/rest/v1/"+q.table, q.values(dest != nil), row, prefer, dest)
}

// Update patches all rows matching the filters and returns how many matched.
// Zero matched rows on an owner-scoped update means the filter rejected the
// write; the caller decides what that means.
func (q *Query) Update(ctx context.Context, patch interface{}) (int, error) {
	var rows []json.RawMessage
	err := q.c.do(ctx, http.MethodPatch, "/rest/v1/"+q.table, q.values(false), patch, "return=representation", &rows)
	if err != nil {
		return 0, err
	}
	return len(rows), nil
}

// Delete removes all rows matching the filters and returns how many matched.
func (q *Query) Delete(ctx context.Context) (int, error) {
	var rows []json.RawMessage
	err := q.c.do(ctx, http.MethodDelete, "/rest/v1/"+q.table, q.values(false), nil, "return=representation", &rows)
	if err != nil {
		return 0, err
	}
	return len(rows), nil
}

// do performs one HTTP round trip. A nil dest discards the response body.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body interface{}, prefer string, dest interface{}) error {
	return c.doAuthorized(ctx, method, path, query, body, prefer, c.apiKey, dest)
}

func (c *Client) doAuthorized(ctx context.Context, method, path string, query url.Values, body interface{}, prefer, bearer string, dest interface{}) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", "Bearer "+bearer)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if prefer != "" {
		req.Header.Set("Prefer", prefer)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("backend request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &Error{Status: resp.StatusCode}
		// Best effort: the backend usually reports {"message": ..., "code": ...}.
		_ = json.NewDecoder(resp.Body).Decode(apiErr)
		return apiErr
	}

	if dest == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
