package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/brightstudy/internal/client/models"
	"github.com/dmitrijs2005/brightstudy/internal/common"
)

// Table names the PostgREST table backing one kind and its id column.
type Table struct {
	Name     string
	IDColumn string
}

// DefaultTables is the layout of the delivery schema.
func DefaultTables() map[models.Kind]Table {
	return map[models.Kind]Table{
		models.KindConcept: {Name: "delivery_concepts", IDColumn: "id"},
		models.KindLesson:  {Name: "delivery_lessons", IDColumn: "lesson_id"},
		models.KindVideo:   {Name: "delivery_videos", IDColumn: "id"},
	}
}

type Options struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
	// Tables overrides DefaultTables per kind.
	Tables map[models.Kind]Table
	// HTTPClient is used as-is when set; Timeout is ignored then.
	HTTPClient *http.Client
}

type HTTPClient struct {
	base   string
	apiKey string
	tables map[models.Kind]Table
	http   *http.Client
}

var _ Client = (*HTTPClient)(nil)

func NewHTTPClient(opts Options) (*HTTPClient, error) {
	base := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if base == "" {
		return nil, fmt.Errorf("remote base url is empty")
	}
	if _, err := url.ParseRequestURI(base); err != nil {
		return nil, fmt.Errorf("remote base url: %w", err)
	}

	tables := DefaultTables()
	for k, t := range opts.Tables {
		tables[k] = t
	}

	hc := opts.HTTPClient
	if hc == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		hc = &http.Client{Timeout: timeout}
	}

	return &HTTPClient{base: base, apiKey: opts.APIKey, tables: tables, http: hc}, nil
}

func (c *HTTPClient) Close() error {
	c.http.CloseIdleConnections()
	return nil
}

func (c *HTTPClient) Ping(ctx context.Context) error {
	t := c.tables[models.KindConcept]
	q := url.Values{"select": {t.IDColumn}, "limit": {"1"}}
	var rows []json.RawMessage
	if err := c.getJSON(ctx, c.restURL(t.Name, q), &rows); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

func (c *HTTPClient) ListInventory(ctx context.Context, kind models.Kind) ([]models.InventoryItem, error) {
	t, ok := c.tables[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %s", common.ErrUnknownKind, kind)
	}

	q := url.Values{"select": {t.IDColumn + ",version"}}
	var rows []map[string]json.RawMessage
	if err := c.getJSON(ctx, c.restURL(t.Name, q), &rows); err != nil {
		return nil, fmt.Errorf("%w: list %s: %v", ErrUnavailable, kind.Plural(), err)
	}

	items := make([]models.InventoryItem, 0, len(rows))
	for i, row := range rows {
		id, version, err := rowKey(row, t.IDColumn)
		if err != nil {
			return nil, fmt.Errorf("%w: list %s: row %d: %v", ErrUnavailable, kind.Plural(), i, err)
		}
		items = append(items, models.InventoryItem{ID: id, Version: version})
	}
	return items, nil
}

// FetchPayload tries the delivery function first and falls back to a fresh
// bulk listing when it is unavailable.
func (c *HTTPClient) FetchPayload(ctx context.Context, kind models.Kind, id string, known *int64) (*models.Document, error) {
	if _, ok := c.tables[kind]; !ok {
		return nil, fmt.Errorf("%w: %s", common.ErrUnknownKind, kind)
	}

	doc, detailErr := c.fetchDetail(ctx, kind, id, known)
	if detailErr == nil {
		return doc, nil
	}

	doc, bulkErr := c.fetchFromBulk(ctx, kind, id)
	if bulkErr == nil {
		return doc, nil
	}

	return nil, fmt.Errorf("%w: %s %s: detail: %v; bulk: %v", common.ErrItemFetchFailed, kind, id, detailErr, bulkErr)
}

type detailResponse struct {
	DeliveryVersion *int64 `json:"delivery_version"`
	UpdateAvailable bool   `json:"update_available"`
}

func (c *HTTPClient) fetchDetail(ctx context.Context, kind models.Kind, id string, known *int64) (*models.Document, error) {
	q := url.Values{"id": {id}}
	if known != nil {
		q.Set("current_version", strconv.FormatInt(*known, 10))
	}
	u := fmt.Sprintf("%s/functions/v1/%s-delivery?%s", c.base, kind, q.Encode())

	var body map[string]json.RawMessage
	if err := c.getJSON(ctx, u, &body); err != nil {
		return nil, err
	}

	raw, ok := body[string(kind)]
	if !ok || isNull(raw) {
		return nil, fmt.Errorf("response has no %q document", kind)
	}

	var meta detailResponse
	if err := remarshal(body, &meta); err != nil {
		return nil, err
	}
	if meta.DeliveryVersion == nil {
		return nil, fmt.Errorf("response has no delivery_version")
	}

	return &models.Document{
		Kind:            kind,
		ID:              id,
		Version:         *meta.DeliveryVersion,
		Raw:             raw,
		UpdateAvailable: meta.UpdateAvailable,
	}, nil
}

func (c *HTTPClient) fetchFromBulk(ctx context.Context, kind models.Kind, id string) (*models.Document, error) {
	t := c.tables[kind]
	q := url.Values{"select": {t.IDColumn + ",version,json_data"}}

	var rows []map[string]json.RawMessage
	if err := c.getJSON(ctx, c.restURL(t.Name, q), &rows); err != nil {
		return nil, err
	}

	for _, row := range rows {
		rowID, version, err := rowKey(row, t.IDColumn)
		if err != nil || rowID != id {
			continue
		}
		raw, ok := row["json_data"]
		if !ok || isNull(raw) {
			return nil, fmt.Errorf("row %s has no json_data", id)
		}
		return &models.Document{Kind: kind, ID: id, Version: version, Raw: raw, UpdateAvailable: true}, nil
	}

	return nil, fmt.Errorf("%w: %s %s", ErrNoSuchItem, kind, id)
}

func (c *HTTPClient) restURL(table string, q url.Values) string {
	// PostgREST wants the select list unescaped
	return fmt.Sprintf("%s/rest/v1/%s?%s", c.base, table, strings.ReplaceAll(q.Encode(), "%2C", ","))
}

func (c *HTTPClient) getJSON(ctx context.Context, u string, dst any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	req.Header.Set(common.APIKeyHeaderName, c.apiKey)
	req.Header.Set(common.AuthorizationHeaderName, "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", common.UserAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("GET %s: %s; body: %s", req.URL.Path, resp.Status, strings.TrimSpace(string(b)))
	}

	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("decode %s: %w", req.URL.Path, err)
	}
	return nil
}

// rowKey extracts the id and version of an inventory row. Numeric ids are
// accepted and rendered in decimal.
func rowKey(row map[string]json.RawMessage, idColumn string) (string, int64, error) {
	rawID, ok := row[idColumn]
	if !ok || isNull(rawID) {
		return "", 0, fmt.Errorf("missing %s", idColumn)
	}

	var id string
	if err := json.Unmarshal(rawID, &id); err != nil {
		var n json.Number
		if err2 := json.Unmarshal(rawID, &n); err2 != nil {
			return "", 0, fmt.Errorf("bad %s: %v", idColumn, err)
		}
		id = n.String()
	}
	if id == "" {
		return "", 0, fmt.Errorf("empty %s", idColumn)
	}

	rawVersion, ok := row["version"]
	if !ok || isNull(rawVersion) {
		return "", 0, fmt.Errorf("missing version for %s", id)
	}
	var version int64
	if err := json.Unmarshal(rawVersion, &version); err != nil {
		return "", 0, fmt.Errorf("bad version for %s: %v", id, err)
	}

	return id, version, nil
}

func isNull(raw json.RawMessage) bool {
	return len(bytes.TrimSpace(raw)) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

func remarshal(src map[string]json.RawMessage, dst any) error {
	b, err := json.Marshal(src)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, dst)
}
