package records

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/yungbote/claimintake-backend/internal/pkg/ctxutil"
	xerrors "github.com/yungbote/claimintake-backend/internal/pkg/errors"
	"github.com/yungbote/claimintake-backend/internal/pkg/httpx"
	"github.com/yungbote/claimintake-backend/internal/pkg/logger"
)

type AirtableConfig struct {
	APIKey  string
	BaseID  string
	BaseURL string
	Timeout time.Duration
}

type airtableClient struct {
	log        *logger.Logger
	cfg        AirtableConfig
	httpClient *http.Client
}

// NewAirtable returns a Store backed by the Airtable REST API. Every call
// is a single attempt; failures surface to the caller unretried.
func NewAirtable(log *logger.Logger, cfg AirtableConfig) (Store, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("missing AIRTABLE_API_KEY")
	}
	if strings.TrimSpace(cfg.BaseID) == "" {
		return nil, fmt.Errorf("missing AIRTABLE_BASE_ID")
	}
	if strings.TrimSpace(cfg.BaseURL) == "" {
		cfg.BaseURL = "https://api.airtable.com"
	}
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &airtableClient{
		log:        log.With("client", "AirtableClient"),
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}, nil
}

// --- wire types ---

type airtableRecord struct {
	ID     string         `json:"id"`
	Fields map[string]any `json:"fields"`
}

type listResponse struct {
	Records []airtableRecord `json:"records"`
}

type writeRequest struct {
	Fields   Fields `json:"fields"`
	Typecast bool   `json:"typecast,omitempty"`
}

func (c *airtableClient) tableURL(table string) string {
	return fmt.Sprintf("%s/v0/%s/%s", c.cfg.BaseURL, c.cfg.BaseID, url.PathEscape(table))
}

func (c *airtableClient) headers() map[string]string {
	return map[string]string{"Authorization": "Bearer " + c.cfg.APIKey}
}

func (c *airtableClient) list(ctx context.Context, table string, filter Filter, max int) ([]Record, error) {
	q := url.Values{}
	if !filter.IsZero() {
		q.Set("filterByFormula", filter.Formula())
	}
	if max > 0 {
		q.Set("maxRecords", fmt.Sprintf("%d", max))
	}
	endpoint := c.tableURL(table)
	if enc := q.Encode(); enc != "" {
		endpoint += "?" + enc
	}

	var resp listResponse
	err := httpx.DoJSON(ctxutil.Default(ctx), c.httpClient, "airtable", http.MethodGet, endpoint, c.headers(), nil, &resp)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", table, err)
	}
	out := make([]Record, 0, len(resp.Records))
	for _, r := range resp.Records {
		out = append(out, NewRecord(r.ID, r.Fields))
	}
	return out, nil
}

func (c *airtableClient) FindOne(ctx context.Context, table string, filter Filter) (Record, error) {
	recs, err := c.list(ctx, table, filter, 1)
	if err != nil {
		return Record{}, err
	}
	if len(recs) == 0 {
		return Record{}, fmt.Errorf("find one %s: %w", table, xerrors.ErrNotFound)
	}
	return recs[0], nil
}

func (c *airtableClient) FindAll(ctx context.Context, table string, filter Filter) ([]Record, error) {
	return c.list(ctx, table, filter, 0)
}

func (c *airtableClient) Create(ctx context.Context, table string, fields Fields) (Record, error) {
	var resp airtableRecord
	err := httpx.DoJSON(ctxutil.Default(ctx), c.httpClient, "airtable", http.MethodPost,
		c.tableURL(table), c.headers(), writeRequest{Fields: fields, Typecast: true}, &resp)
	if err != nil {
		return Record{}, fmt.Errorf("create %s: %w", table, err)
	}
	c.log.Debug("Record created", "table", table, "record_id", resp.ID)
	return NewRecord(resp.ID, resp.Fields), nil
}

func (c *airtableClient) Update(ctx context.Context, table, id string, fields Fields) (Record, error) {
	var resp airtableRecord
	err := httpx.DoJSON(ctxutil.Default(ctx), c.httpClient, "airtable", http.MethodPatch,
		c.tableURL(table)+"/"+url.PathEscape(id), c.headers(), writeRequest{Fields: fields, Typecast: true}, &resp)
	if err != nil {
		return Record{}, fmt.Errorf("update %s/%s: %w", table, id, err)
	}
	c.log.Debug("Record updated", "table", table, "record_id", resp.ID)
	return NewRecord(resp.ID, resp.Fields), nil
}

// GetOrCreateByName resolves a record by case-insensitive name, creating
// it when absent. Two concurrent callers with the same new name can both
// create; the duplicate is accepted rather than serialized.
func (c *airtableClient) GetOrCreateByName(ctx context.Context, table, nameField, name string) (Record, bool, error) {
	name = strings.TrimSpace(name)
	rec, err := c.FindOne(ctx, table, EqFold(nameField, name))
	if err == nil {
		return rec, false, nil
	}
	if !isNotFound(err) {
		return Record{}, false, err
	}
	created, err := c.Create(ctx, table, Fields{nameField: name})
	if err != nil {
		return Record{}, false, err
	}
	return created, true, nil
}

func isNotFound(err error) bool {
	return errors.Is(err, xerrors.ErrNotFound)
}
