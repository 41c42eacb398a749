package elasticsearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mmrzaf/datacraft/internal/domain"
)

type ElasticsearchTarget struct {
	baseURL string
	client  *http.Client
	// json columns per index, so their text can be sent as nested objects
	jsonColumns map[string]map[string]bool
}

func NewElasticsearchTarget(dsn string) *ElasticsearchTarget {
	return &ElasticsearchTarget{
		baseURL:     normalizeURL(dsn),
		jsonColumns: make(map[string]map[string]bool),
	}
}

func (t *ElasticsearchTarget) Connect(ctx context.Context) error {
	t.client = &http.Client{Timeout: 15 * time.Second}
	resp, err := t.do(ctx, http.MethodGet, "/", "", nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("elasticsearch ping failed: status=%d body=%s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return nil
}

func (t *ElasticsearchTarget) Close() error { return nil }

func (t *ElasticsearchTarget) CreateTableIfNotExists(ctx context.Context, table string, columns []domain.ColumnDef) error {
	indexName := toIndexName(table)

	props := make(map[string]any, len(columns))
	jsonCols := make(map[string]bool)
	for _, col := range columns {
		props[col.Name] = map[string]string{"type": mapColumnType(col.Type)}
		if col.Type == domain.ColumnTypeJSON {
			jsonCols[col.Name] = true
		}
	}
	t.jsonColumns[indexName] = jsonCols

	payload, err := json.Marshal(map[string]any{"mappings": map[string]any{"properties": props}})
	if err != nil {
		return err
	}
	resp, err := t.do(ctx, http.MethodPut, "/"+indexName, "application/json", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusCreated {
		return nil
	}
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode == http.StatusBadRequest && strings.Contains(string(body), "resource_already_exists_exception") {
		return nil
	}
	return fmt.Errorf("elasticsearch create index failed: status=%d body=%s", resp.StatusCode, strings.TrimSpace(string(body)))
}

func mapColumnType(colType domain.ColumnType) string {
	switch colType {
	case domain.ColumnTypeBigInt:
		return "long"
	case domain.ColumnTypeDouble:
		return "double"
	case domain.ColumnTypeBool:
		return "boolean"
	case domain.ColumnTypeJSON:
		return "object"
	default:
		return "keyword"
	}
}

func (t *ElasticsearchTarget) TruncateTable(ctx context.Context, table string) error {
	indexName := toIndexName(table)
	payload := []byte(`{"query":{"match_all":{}}}`)
	resp, err := t.do(ctx, http.MethodPost, "/"+indexName+"/_delete_by_query?refresh=true", "application/json", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("elasticsearch truncate failed: status=%d body=%s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return nil
}

func (t *ElasticsearchTarget) InsertBatch(ctx context.Context, table string, columns []string, rows [][]any) error {
	if len(rows) == 0 {
		return nil
	}
	indexName := toIndexName(table)
	jsonCols := t.jsonColumns[indexName]

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for _, row := range rows {
		if err := enc.Encode(map[string]any{"index": map[string]string{"_index": indexName}}); err != nil {
			return err
		}
		doc := map[string]any{}
		for i, col := range columns {
			val := row[i]
			if s, ok := val.(string); ok && jsonCols[col] && json.Valid([]byte(s)) {
				val = json.RawMessage(s)
			}
			doc[col] = val
		}
		if err := enc.Encode(doc); err != nil {
			return err
		}
	}
	resp, err := t.do(ctx, http.MethodPost, "/_bulk", "application/x-ndjson", &buf)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("elasticsearch bulk insert failed: status=%d body=%s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	var bulkResp struct {
		Errors bool `json:"errors"`
	}
	_ = json.Unmarshal(body, &bulkResp)
	if bulkResp.Errors {
		return fmt.Errorf("elasticsearch bulk insert returned errors")
	}
	return nil
}

func (t *ElasticsearchTarget) do(ctx context.Context, method, path, contentType string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, t.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	return t.client.Do(req)
}

func normalizeURL(dsn string) string {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		return "http://localhost:9200"
	}
	if strings.HasPrefix(dsn, "http://") || strings.HasPrefix(dsn, "https://") {
		return strings.TrimRight(dsn, "/")
	}
	return "http://" + strings.TrimRight(dsn, "/")
}

func toIndexName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	return url.PathEscape(name)
}

func GetServerVersion(ctx context.Context, dsn string) (string, error) {
	client := &http.Client{Timeout: 15 * time.Second}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, normalizeURL(dsn)+"/", nil)
	if err != nil {
		return "", err
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("status=%d body=%s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	var root struct {
		Version struct {
			Number string `json:"number"`
		} `json:"version"`
	}
	if err := json.Unmarshal(body, &root); err != nil {
		return "", err
	}
	return root.Version.Number, nil
}
