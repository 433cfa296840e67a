// Package store is the tabular store client. Backends speak to a concrete
// store (Airtable, SQLite, Postgres, memory); Client wraps a backend with the
// fail-soft read policy and owns the comma encoding of list-typed fields.
package store

import (
	"context"
	"crypto/rand"
	stderrors "errors"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/sirupsen/logrus"

	"github.com/hpungsan/folio/internal/content"
	"github.com/hpungsan/folio/internal/errors"
	"github.com/hpungsan/folio/internal/logging"
)

var errNotConfigured = stderrors.New("no backend configured")

// Record is one row: an opaque id plus field values.
type Record struct {
	ID     string         `json:"id"`
	Fields map[string]any `json:"fields"`
}

// Backend is a concrete tabular store. Implementations return *errors.FolioError
// values (UPSTREAM for wire failures, NOT_FOUND for unknown ids).
type Backend interface {
	List(ctx context.Context, table string) ([]Record, error)
	Create(ctx context.Context, table string, fields map[string]any) (Record, error)
	Update(ctx context.Context, table, id string, fields map[string]any) (Record, error)
	Delete(ctx context.Context, table, id string) error
}

// Client is the only component that reads or writes the store.
type Client struct {
	backend Backend
	log     *logrus.Entry
}

// NewClient wraps backend. A nil backend is allowed and behaves like a store
// whose every table is missing: reads are empty, writes fail.
func NewClient(backend Backend, logger logrus.FieldLogger) *Client {
	return &Client{
		backend: backend,
		log:     logging.Component(logger, "store"),
	}
}

// Configured reports whether a backend is attached.
func (c *Client) Configured() bool {
	return c != nil && c.backend != nil
}

// ListRecords returns every row of table with list fields decoded. It never
// fails: any backend error is logged and the result is empty.
func (c *Client) ListRecords(ctx context.Context, table content.Table) []Record {
	if !c.Configured() {
		c.log.WithField("table", table).Warn("store is not configured; serving empty section")
		return []Record{}
	}
	if _, ok := content.ParseTable(string(table)); !ok {
		c.log.WithField("table", table).Warn("unknown table; serving empty section")
		return []Record{}
	}

	records, err := c.backend.List(ctx, string(table))
	if err != nil {
		c.log.WithFields(logrus.Fields{"table": table, "error": err}).
			Warn("could not fetch records; the table may be missing, misnamed, or the credentials invalid. Serving empty section")
		return []Record{}
	}

	out := make([]Record, 0, len(records))
	for _, r := range records {
		out = append(out, decodeRecord(table, r))
	}
	return out
}

// CreateRecord inserts a row. Errors propagate.
func (c *Client) CreateRecord(ctx context.Context, table content.Table, fields map[string]any) (Record, error) {
	if !c.Configured() {
		return Record{}, errors.NewUpstream("store", errNotConfigured)
	}
	if err := checkTable(table); err != nil {
		return Record{}, err
	}
	rec, err := c.backend.Create(ctx, string(table), encodeFields(table, fields))
	if err != nil {
		c.log.WithFields(logrus.Fields{"table": table, "error": err}).Error("create record failed")
		return Record{}, err
	}
	return decodeRecord(table, rec), nil
}

// UpdateRecord patches the given fields of row id. List-typed fields given as
// slices are joined before transmission. Errors propagate.
func (c *Client) UpdateRecord(ctx context.Context, table content.Table, id string, fields map[string]any) (Record, error) {
	if !c.Configured() {
		return Record{}, errors.NewUpstream("store", errNotConfigured)
	}
	if err := checkTable(table); err != nil {
		return Record{}, err
	}
	if strings.TrimSpace(id) == "" {
		return Record{}, errors.NewInvalidRequest("record id is required")
	}
	rec, err := c.backend.Update(ctx, string(table), id, encodeFields(table, fields))
	if err != nil {
		c.log.WithFields(logrus.Fields{"table": table, "id": id, "error": err}).Error("update record failed")
		return Record{}, err
	}
	return decodeRecord(table, rec), nil
}

// DeleteRecord removes row id. Errors propagate.
func (c *Client) DeleteRecord(ctx context.Context, table content.Table, id string) error {
	if !c.Configured() {
		return errors.NewUpstream("store", errNotConfigured)
	}
	if err := checkTable(table); err != nil {
		return err
	}
	if strings.TrimSpace(id) == "" {
		return errors.NewInvalidRequest("record id is required")
	}
	if err := c.backend.Delete(ctx, string(table), id); err != nil {
		c.log.WithFields(logrus.Fields{"table": table, "id": id, "error": err}).Error("delete record failed")
		return err
	}
	return nil
}

// NewRecordID returns an Airtable-style id ("rec" + ULID) for local backends.
func NewRecordID() string {
	return "rec" + ulid.MustNew(ulid.Timestamp(time.Now()), rand.Reader).String()
}

// JoinList encodes a list field for storage.
func JoinList(xs []string) string {
	return strings.Join(xs, ",")
}

// SplitList decodes a stored list field. Blank input is an empty list;
// otherwise every comma-separated element is trimmed.
func SplitList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return []string{}
	}
	parts := strings.Split(s, ",")
	out := make([]string, len(parts))
	for i, p := range parts {
		out[i] = strings.TrimSpace(p)
	}
	return out
}

func checkTable(table content.Table) error {
	if _, ok := content.ParseTable(string(table)); !ok {
		return errors.NewInvalidRequest("unknown table: " + string(table))
	}
	return nil
}

func encodeFields(table content.Table, fields map[string]any) map[string]any {
	out := make(map[string]any, len(fields))
	for k, v := range fields {
		out[k] = v
	}
	for _, name := range table.ListFields() {
		switch v := out[name].(type) {
		case []string:
			out[name] = JoinList(v)
		case []any:
			if strs, ok := stringSlice(v); ok {
				out[name] = JoinList(strs)
			}
		}
	}
	return out
}

func decodeRecord(table content.Table, r Record) Record {
	fields := make(map[string]any, len(r.Fields))
	for k, v := range r.Fields {
		fields[k] = v
	}
	for _, name := range table.ListFields() {
		switch v := fields[name].(type) {
		case nil:
			fields[name] = []string{}
		case string:
			fields[name] = SplitList(v)
		}
		// Anything else (attachment arrays, native lists) is left for the
		// normalizer, which understands those shapes.
	}
	return Record{ID: r.ID, Fields: fields}
}

func stringSlice(v []any) ([]string, bool) {
	out := make([]string, 0, len(v))
	for _, x := range v {
		s, ok := x.(string)
		if !ok {
			return nil, false
		}
		out = append(out, s)
	}
	return out, true
}
