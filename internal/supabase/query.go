package supabase

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"reflect"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/mitchellh/mapstructure"
)

const (
	objectContentType = "application/vnd.pgrst.object+json"
	serviceRest       = "rest"
)

// Query is a PostgREST request against one table. Filters accumulate until
// one of Get, Insert or Update sends it.
type Query struct {
	client *Client
	table  string
	params url.Values
	single bool
}

// From starts a query on table.
func (c *Client) From(table string) *Query {
	return &Query{
		client: c,
		table:  table,
		params: url.Values{},
	}
}

// Select sets the returned columns, e.g. "*" or "*,upload(image_url)".
func (q *Query) Select(columns string) *Query {
	q.params.Set("select", columns)
	return q
}

// Eq filters rows where column equals value.
func (q *Query) Eq(column string, value any) *Query {
	q.params.Add(column, "eq."+fmt.Sprintf("%v", value))
	return q
}

// In filters rows where column is one of values.
func (q *Query) In(column string, values []string) *Query {
	quoted := make([]string, 0, len(values))
	for _, v := range values {
		quoted = append(quoted, quoteValue(v))
	}
	q.params.Add(column, "in.("+strings.Join(quoted, ",")+")")
	return q
}

// Order sorts the result by column.
func (q *Query) Order(column string, ascending bool) *Query {
	direction := "desc"
	if ascending {
		direction = "asc"
	}
	q.params.Set("order", column+"."+direction)
	return q
}

// Single expects exactly one row. No rows yields ErrNotFound.
func (q *Query) Single() *Query {
	q.single = true
	return q
}

// Get runs a read and decodes the rows into target.
func (q *Query) Get(ctx context.Context, target any) error {
	req, err := q.client.newRequest(ctx, http.MethodGet, q.url(), nil)
	if err != nil {
		return err
	}
	if q.single {
		req.Header.Set("Accept", objectContentType)
	}

	data, err := q.client.do(serviceRest, req)
	if err != nil {
		return fmt.Errorf("select from %s: %w", q.table, err)
	}

	return decodeRows(data, target)
}

// Insert writes rows (a struct, map or slice of them). When target is not nil
// the inserted rows, restricted to the selected columns, are decoded into it.
func (q *Query) Insert(ctx context.Context, rows any, target any) error {
	return q.write(ctx, http.MethodPost, "insert into", rows, target)
}

// Update patches the rows matched by the filters with values.
func (q *Query) Update(ctx context.Context, values any, target any) error {
	return q.write(ctx, http.MethodPatch, "update", values, target)
}

func (q *Query) write(ctx context.Context, method, verb string, payload any, target any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s payload: %w", q.table, err)
	}

	req, err := q.client.newRequest(ctx, method, q.url(), body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", contentType)
	if target != nil {
		req.Header.Set("Prefer", "return=representation")
	} else {
		req.Header.Set("Prefer", "return=minimal")
	}

	data, err := q.client.do(serviceRest, req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", verb, q.table, err)
	}

	if target == nil {
		return nil
	}

	return decodeRows(data, target)
}

func (q *Query) url() string {
	u := fmt.Sprintf("%s%s/%s", q.client.URL, restPath, q.table)
	if len(q.params) == 0 {
		return u
	}
	return u + "?" + q.params.Encode()
}

// quoteValue wraps values holding PostgREST reserved characters in double quotes.
func quoteValue(v string) string {
	if !strings.ContainsAny(v, `,.:()" `) {
		return v
	}
	return `"` + strings.ReplaceAll(v, `"`, `\"`) + `"`
}

// decodeRows decodes a PostgREST body into target the same way for rows and
// single objects: through a generic value and mapstructure with json tags.
func decodeRows(data []byte, target any) error {
	if target == nil || len(strings.TrimSpace(string(data))) == 0 {
		return nil
	}

	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("parse response: %w", err)
	}

	// A single object requested into a slice, or one row requested into a struct.
	kind := reflect.Indirect(reflect.ValueOf(target)).Kind()
	switch items := raw.(type) {
	case map[string]any:
		if kind == reflect.Slice {
			raw = []any{items}
		}
	case []any:
		if kind == reflect.Struct || kind == reflect.Map {
			if len(items) == 0 {
				return ErrNotFound
			}
			raw = items[0]
		}
	}

	cfg := &mapstructure.DecoderConfig{
		DecodeHook: timeHook,
		Result:     target,
		TagName:    "json",
	}
	decoder, err := mapstructure.NewDecoder(cfg)
	if err != nil {
		return err
	}

	if err := decoder.Decode(raw); err != nil {
		return fmt.Errorf("decode rows: %w", err)
	}

	return nil
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999-07",
	"2006-01-02",
}

// timeHook converts PostgreSQL timestamps to time.Time.
func timeHook(from reflect.Type, to reflect.Type, data any) (any, error) {
	if from.Kind() != reflect.String || to != reflect.TypeOf(time.Time{}) {
		return data, nil
	}

	s := strings.TrimSpace(data.(string))
	if s == "" {
		return time.Time{}, nil
	}

	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}

	return nil, fmt.Errorf("unsupported timestamp %q", s)
}
