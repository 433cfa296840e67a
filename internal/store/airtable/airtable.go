// Package airtable is the Airtable REST backend for the tabular store.
package airtable

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/hpungsan/folio/internal/errors"
	"github.com/hpungsan/folio/internal/httpx"
	"github.com/hpungsan/folio/internal/store"
)

// DefaultBaseURL is the public Airtable API root.
const DefaultBaseURL = "https://api.airtable.com"

const pageSize = 100

// Options configures a Backend.
type Options struct {
	BaseURL string
	APIKey  string
	BaseID  string
	HTTP    *http.Client
	Retry   httpx.RetryConfig
}

// Backend talks to one Airtable base.
type Backend struct {
	baseURL string
	apiKey  string
	baseID  string
	http    *http.Client
	retry   httpx.RetryConfig
}

type apiRecord struct {
	ID     string         `json:"id,omitempty"`
	Fields map[string]any `json:"fields"`
}

type listResponse struct {
	Records []apiRecord `json:"records"`
	Offset  string      `json:"offset"`
}

type writeRequest struct {
	Records  []apiRecord `json:"records"`
	Typecast bool        `json:"typecast"`
}

type writeResponse struct {
	Records []apiRecord `json:"records"`
}

type deleteResponse struct {
	Records []struct {
		ID      string `json:"id"`
		Deleted bool   `json:"deleted"`
	} `json:"records"`
}

// New validates credentials and builds a Backend.
func New(opts Options) (*Backend, error) {
	if strings.TrimSpace(opts.APIKey) == "" || strings.TrimSpace(opts.BaseID) == "" {
		return nil, errors.NewInvalidRequest("airtable api key and base id are required")
	}
	base := strings.TrimRight(opts.BaseURL, "/")
	if base == "" {
		base = DefaultBaseURL
	}
	if opts.Retry.MaxAttempts <= 0 {
		opts.Retry = httpx.DefaultRetryConfig()
	}
	return &Backend{
		baseURL: base,
		apiKey:  opts.APIKey,
		baseID:  opts.BaseID,
		http:    opts.HTTP,
		retry:   opts.Retry,
	}, nil
}

// List follows offset pagination until the table is exhausted.
func (b *Backend) List(ctx context.Context, table string) ([]store.Record, error) {
	out := []store.Record{}
	offset := ""
	for {
		q := url.Values{}
		q.Set("pageSize", fmt.Sprint(pageSize))
		if offset != "" {
			q.Set("offset", offset)
		}

		build, err := httpx.JSONRequest(http.MethodGet, b.tableURL(table)+"?"+q.Encode(), nil, b.header())
		if err != nil {
			return nil, errors.NewInternal(err)
		}
		var page listResponse
		if err := httpx.DoJSON(ctx, b.http, build, &page, b.retry); err != nil {
			return nil, errors.NewUpstream("airtable", err)
		}
		for _, r := range page.Records {
			out = append(out, toRecord(r))
		}
		if page.Offset == "" {
			return out, nil
		}
		offset = page.Offset
	}
}

// Create posts one record with typecast enabled.
func (b *Backend) Create(ctx context.Context, table string, fields map[string]any) (store.Record, error) {
	return b.write(ctx, http.MethodPost, table, apiRecord{Fields: fields})
}

// Update patches the given fields of one record.
func (b *Backend) Update(ctx context.Context, table, id string, fields map[string]any) (store.Record, error) {
	return b.write(ctx, http.MethodPatch, table, apiRecord{ID: id, Fields: fields})
}

// Delete removes one record.
func (b *Backend) Delete(ctx context.Context, table, id string) error {
	q := url.Values{}
	q.Add("records[]", id)
	build, err := httpx.JSONRequest(http.MethodDelete, b.tableURL(table)+"?"+q.Encode(), nil, b.header())
	if err != nil {
		return errors.NewInternal(err)
	}
	var resp deleteResponse
	if err := httpx.DoJSON(ctx, b.http, build, &resp, httpx.NoRetry()); err != nil {
		return b.wrap(err, id)
	}
	for _, r := range resp.Records {
		if r.ID == id && r.Deleted {
			return nil
		}
	}
	return errors.NewNotFound("record", id)
}

func (b *Backend) write(ctx context.Context, method, table string, rec apiRecord) (store.Record, error) {
	build, err := httpx.JSONRequest(method, b.tableURL(table), writeRequest{
		Records:  []apiRecord{rec},
		Typecast: true,
	}, b.header())
	if err != nil {
		return store.Record{}, errors.NewInvalidRequest(err.Error())
	}
	// Writes are not idempotent on the Airtable side; a single attempt only.
	var resp writeResponse
	if err := httpx.DoJSON(ctx, b.http, build, &resp, httpx.NoRetry()); err != nil {
		return store.Record{}, b.wrap(err, rec.ID)
	}
	if len(resp.Records) == 0 {
		return store.Record{}, errors.NewUpstream("airtable", fmt.Errorf("empty write response"))
	}
	return toRecord(resp.Records[0]), nil
}

func (b *Backend) wrap(err error, id string) error {
	var herr *httpx.HTTPError
	if id != "" && stderrors.As(err, &herr) && herr.StatusCode == http.StatusNotFound {
		return errors.NewNotFound("record", id)
	}
	return errors.NewUpstream("airtable", err)
}

func (b *Backend) tableURL(table string) string {
	return b.baseURL + "/v0/" + url.PathEscape(b.baseID) + "/" + url.PathEscape(table)
}

func (b *Backend) header() http.Header {
	return http.Header{"Authorization": {"Bearer " + b.apiKey}}
}

func toRecord(r apiRecord) store.Record {
	fields := r.Fields
	if fields == nil {
		fields = map[string]any{}
	}
	return store.Record{ID: r.ID, Fields: fields}
}
