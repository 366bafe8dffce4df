package match_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"jobpilot/campaign-service/internal/match"
	"jobpilot/campaign-service/internal/model"
)

func TestHTTPMatcher_Score(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/v1/score" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decoding request body: %v", err)
		}
		if body["resumeId"] != "resume-1" {
			t.Errorf("resumeId = %v, want resume-1", body["resumeId"])
		}
		json.NewEncoder(w).Encode(match.Result{Score: 87, Explanation: "strong overlap"})
	}))
	defer srv.Close()

	m := match.NewHTTPMatcher(srv.URL)
	got, err := m.Score(context.Background(),
		model.Resume{ID: "resume-1", Summary: "Go engineer"},
		model.Job{ID: "job-1", Title: "Backend Engineer"},
	)
	if err != nil {
		t.Fatalf("Score returned error: %v", err)
	}
	if got.Score != 87 || got.Explanation != "strong overlap" {
		t.Errorf("got %+v, want score 87 with explanation", got)
	}
}

func TestHTTPMatcher_ClampsOutOfRangeScore(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(match.Result{Score: 150})
	}))
	defer srv.Close()

	got, err := match.NewHTTPMatcher(srv.URL).Score(context.Background(), model.Resume{}, model.Job{})
	if err != nil {
		t.Fatalf("Score returned error: %v", err)
	}
	if got.Score != 100 {
		t.Errorf("Score = %d, want 100", got.Score)
	}
}

func TestHTTPMatcher_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "scoring backend unavailable", http.StatusBadGateway)
	}))
	defer srv.Close()

	if _, err := match.NewHTTPMatcher(srv.URL).Score(context.Background(), model.Resume{}, model.Job{}); err == nil {
		t.Fatal("expected error on non-200 response, got nil")
	}
}
