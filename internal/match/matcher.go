package match

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"jobpilot/campaign-service/internal/model"
)

const httpTimeout = 15 * time.Second

// Result is the base matcher's verdict before any feedback adjustment.
type Result struct {
	Score       int    `json:"score"`
	Explanation string `json:"explanation"`
}

// Matcher computes the raw resume↔job compatibility score (0–100).
// Implementations are external services; retries belong to them, not here.
type Matcher interface {
	Score(ctx context.Context, resume model.Resume, job model.Job) (Result, error)
}

// HTTPMatcher calls the scoring service over HTTP.
type HTTPMatcher struct {
	endpoint string
	client   *http.Client
}

// NewHTTPMatcher constructs a matcher client with a shared HTTP client.
func NewHTTPMatcher(endpoint string) *HTTPMatcher {
	return &HTTPMatcher{
		endpoint: endpoint,
		client:   &http.Client{Timeout: httpTimeout},
	}
}

// scoreRequest mirrors the matcher service's request body.
type scoreRequest struct {
	ResumeID      string `json:"resumeId"`
	ResumeSummary string `json:"resumeSummary"`
	Job           struct {
		ID          string `json:"id"`
		Title       string `json:"title"`
		Company     string `json:"company"`
		Location    string `json:"location"`
		Description string `json:"description"`
	} `json:"job"`
}

// Score posts the resume summary and listing to the matcher service and
// returns its verdict, clamped to [0,100].
func (m *HTTPMatcher) Score(ctx context.Context, resume model.Resume, job model.Job) (Result, error) {
	payload := scoreRequest{ResumeID: resume.ID, ResumeSummary: resume.Summary}
	payload.Job.ID = job.ID
	payload.Job.Title = job.Title
	payload.Job.Company = job.Company
	payload.Job.Location = job.Location
	payload.Job.Description = job.Description

	body, err := json.Marshal(payload)
	if err != nil {
		return Result{}, fmt.Errorf("marshal score request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.endpoint+"/v1/score", bytes.NewReader(body))
	if err != nil {
		return Result{}, fmt.Errorf("build score request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.client.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("http POST: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return Result{}, fmt.Errorf("read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return Result{}, fmt.Errorf("matcher returned %d: %s", resp.StatusCode, string(raw))
	}

	var result Result
	if err := json.Unmarshal(raw, &result); err != nil {
		return Result{}, fmt.Errorf("json unmarshal: %w", err)
	}

	result.Score = Clamp(result.Score)
	return result, nil
}
