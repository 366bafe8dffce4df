package vector

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
)

const qdrantTimeout = 30 * time.Second

// pointIDNamespace generates deterministic Qdrant point ids from document
// ids, so re-upserting the same job overwrites instead of duplicating.
var pointIDNamespace = uuid.MustParse("7c9a2f04-61bd-4c0e-9b5f-2d84a0c3e917")

// Qdrant implements SimilarityStore against Qdrant's HTTP API, embedding
// document text with the configured Embedder before storage and search.
type Qdrant struct {
	endpoint  string
	dimension int
	embedder  Embedder
	client    *http.Client

	mu      sync.Mutex
	ensured map[string]bool // collections known to exist
}

// NewQdrant constructs a Qdrant-backed similarity store. Collections are
// created lazily on first use with cosine distance.
func NewQdrant(endpoint string, dimension int, embedder Embedder) *Qdrant {
	return &Qdrant{
		endpoint:  endpoint,
		dimension: dimension,
		embedder:  embedder,
		client:    &http.Client{Timeout: qdrantTimeout},
		ensured:   make(map[string]bool),
	}
}

// Upsert embeds the text and writes one point into the collection, keyed
// deterministically by docID.
func (q *Qdrant) Upsert(ctx context.Context, collection, docID, text string, metadata map[string]string) error {
	if err := q.ensureCollection(ctx, collection); err != nil {
		return err
	}

	vec, err := q.embedder.Embed(ctx, text)
	if err != nil {
		return fmt.Errorf("embed document %s: %w", docID, err)
	}

	payload := map[string]any{"doc_id": docID, "text": text}
	for k, v := range metadata {
		payload[k] = v
	}

	body := map[string]any{
		"points": []map[string]any{{
			"id":      uuid.NewSHA1(pointIDNamespace, []byte(docID)).String(),
			"vector":  vec,
			"payload": payload,
		}},
	}

	path := fmt.Sprintf("/collections/%s/points?wait=true", collection)
	if _, err := q.do(ctx, http.MethodPut, path, body); err != nil {
		return fmt.Errorf("upsert point %s into %s: %w", docID, collection, err)
	}
	return nil
}

type searchResponse struct {
	Result []struct {
		ID      any            `json:"id"`
		Score   float64        `json:"score"`
		Payload map[string]any `json:"payload"`
	} `json:"result"`
}

// Search embeds the query and returns the topK nearest documents. A missing
// collection yields an empty result, not an error.
func (q *Qdrant) Search(ctx context.Context, collection, query string, topK int) ([]Match, error) {
	vec, err := q.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	body := map[string]any{
		"vector":       vec,
		"limit":        topK,
		"with_payload": true,
	}

	raw, err := q.do(ctx, http.MethodPost, fmt.Sprintf("/collections/%s/points/search", collection), body)
	if isNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("search %s: %w", collection, err)
	}

	var parsed searchResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("parse search response: %w", err)
	}

	matches := make([]Match, 0, len(parsed.Result))
	for _, r := range parsed.Result {
		m := Match{Score: r.Score, Metadata: make(map[string]string)}
		for k, v := range r.Payload {
			s, ok := v.(string)
			if !ok {
				continue
			}
			if k == "doc_id" {
				m.ID = s
				continue
			}
			m.Metadata[k] = s
		}
		matches = append(matches, m)
	}
	return matches, nil
}

type countResponse struct {
	Result struct {
		Count int `json:"count"`
	} `json:"result"`
}

// Count returns the number of points in the collection; 0 when the
// collection does not exist yet.
func (q *Qdrant) Count(ctx context.Context, collection string) (int, error) {
	raw, err := q.do(ctx, http.MethodPost,
		fmt.Sprintf("/collections/%s/points/count", collection),
		map[string]any{"exact": true})
	if isNotFound(err) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("count %s: %w", collection, err)
	}

	var parsed countResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return 0, fmt.Errorf("parse count response: %w", err)
	}
	return parsed.Result.Count, nil
}

// DeleteCollection removes the collection and all of its points.
func (q *Qdrant) DeleteCollection(ctx context.Context, collection string) error {
	_, err := q.do(ctx, http.MethodDelete, "/collections/"+collection, nil)
	if isNotFound(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("delete collection %s: %w", collection, err)
	}

	q.mu.Lock()
	delete(q.ensured, collection)
	q.mu.Unlock()
	return nil
}

// ensureCollection creates the collection on first use. Existence is cached
// per process; a racing create is tolerated via the 409 path.
func (q *Qdrant) ensureCollection(ctx context.Context, collection string) error {
	q.mu.Lock()
	known := q.ensured[collection]
	q.mu.Unlock()
	if known {
		return nil
	}

	_, err := q.do(ctx, http.MethodGet, "/collections/"+collection, nil)
	if isNotFound(err) {
		body := map[string]any{
			"vectors": map[string]any{
				"size":     q.dimension,
				"distance": "Cosine",
			},
		}
		_, err = q.do(ctx, http.MethodPut, "/collections/"+collection, body)
		if err != nil && !isConflict(err) {
			return fmt.Errorf("create collection %s: %w", collection, err)
		}
	} else if err != nil {
		return fmt.Errorf("check collection %s: %w", collection, err)
	}

	q.mu.Lock()
	q.ensured[collection] = true
	q.mu.Unlock()
	return nil
}

// statusError carries the HTTP status of a failed Qdrant call.
type statusError struct {
	code int
	body string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("qdrant returned %d: %s", e.code, e.body)
}

func isNotFound(err error) bool {
	se, ok := err.(*statusError)
	return ok && se.code == http.StatusNotFound
}

func isConflict(err error) bool {
	se, ok := err.(*statusError)
	return ok && se.code == http.StatusConflict
}

// do executes one JSON request against the Qdrant API and returns the raw
// response body.
func (q *Qdrant) do(ctx context.Context, method, path string, body any) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, q.endpoint+path, reader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := q.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &statusError{code: resp.StatusCode, body: string(raw)}
	}
	return raw, nil
}
