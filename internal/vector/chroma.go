// Package vector provides the similarity-store client used by the commit
// stage. It speaks the Chroma REST API over HTTP; vectors land in a single
// named collection which is created on first use with an explicit
// get-or-create call.
package vector

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Record is one vector plus its filing metadata.
type Record struct {
	ID        string
	Embedding []float32
	Document  string
	Metadata  map[string]any
}

// Client talks to a Chroma-compatible similarity store.
type Client struct {
	baseURL    string
	collection string
	httpClient *http.Client
	logger     *zap.Logger

	// collectionID caches the resolved collection after the first
	// get-or-create round trip.
	collectionID string
}

// NewClient creates a client for the store at address (e.g.
// "http://localhost:8000") writing into the named collection. No network
// traffic happens until the first Upsert.
func NewClient(address, collection string, logger *zap.Logger) *Client {
	return &Client{
		baseURL:    address,
		collection: collection,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     logger,
	}
}

// Upsert writes one record into the collection, creating the collection if
// it does not exist yet.
func (c *Client) Upsert(ctx context.Context, rec Record) error {
	collectionID, err := c.ensureCollection(ctx)
	if err != nil {
		return fmt.Errorf("similarity store: %w", err)
	}

	body := map[string]any{
		"ids":        []string{rec.ID},
		"embeddings": [][]float32{rec.Embedding},
		"documents":  []string{rec.Document},
		"metadatas":  []map[string]any{rec.Metadata},
	}

	path := fmt.Sprintf("/api/v1/collections/%s/add", collectionID)
	if err := c.post(ctx, path, body, nil); err != nil {
		return fmt.Errorf("similarity store: add vector: %w", err)
	}

	c.logger.Debug("vector upserted",
		zap.String("collection", c.collection), zap.String("id", rec.ID))
	return nil
}

// ensureCollection resolves the collection ID with an idempotent
// get-or-create call, caching the answer for subsequent writes.
func (c *Client) ensureCollection(ctx context.Context) (string, error) {
	if c.collectionID != "" {
		return c.collectionID, nil
	}

	var resp struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}
	body := map[string]any{
		"name":          c.collection,
		"get_or_create": true,
	}
	if err := c.post(ctx, "/api/v1/collections", body, &resp); err != nil {
		return "", fmt.Errorf("get-or-create collection %q: %w", c.collection, err)
	}
	if resp.ID == "" {
		return "", fmt.Errorf("get-or-create collection %q: empty collection id in response", c.collection)
	}

	c.collectionID = resp.ID
	return c.collectionID, nil
}

// post sends a JSON request and decodes the JSON response into out when out
// is non-nil. Non-2xx statuses become errors carrying the response body.
func (c *Client) post(ctx context.Context, path string, body any, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("POST %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("POST %s: status %d: %s", path, resp.StatusCode, bytes.TrimSpace(msg))
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}
