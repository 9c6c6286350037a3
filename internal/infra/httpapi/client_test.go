package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"quizmaster-console/internal/domain"
)

func TestDoSendsBearerAndDecodes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer tok" {
			t.Errorf("authorization header = %q", got)
		}
		if got := r.Header.Get("Content-Type"); got != "application/json" {
			t.Errorf("content type = %q", got)
		}
		var in map[string]string
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			t.Errorf("decode body: %v", err)
		}
		if in["name"] != "x" {
			t.Errorf("body = %v", in)
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"echo": in["name"]})
	}))
	defer srv.Close()

	c := NewClient(time.Second)
	var out map[string]string
	err := c.do(context.Background(), http.MethodPost, srv.URL, "tok", map[string]string{"name": "x"}, &out)
	if err != nil {
		t.Fatalf("do: %v", err)
	}
	if out["echo"] != "x" {
		t.Fatalf("response = %v", out)
	}
}

func TestDoStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"quiz not found"}`, http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewClient(time.Second)
	err := c.do(context.Background(), http.MethodGet, srv.URL, "", nil, nil)

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %v", err)
	}
	if !apiErr.NotFound() {
		t.Fatalf("expected 404, got %d", apiErr.Status)
	}
	if apiErr.Message != "quiz not found" {
		t.Fatalf("message = %q", apiErr.Message)
	}
}

func TestDoMessageKeyFallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"message":"bad input"}`))
	}))
	defer srv.Close()

	c := NewClient(time.Second)
	err := c.do(context.Background(), http.MethodGet, srv.URL, "", nil, nil)

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %v", err)
	}
	if apiErr.Message != "bad input" {
		t.Fatalf("message = %q", apiErr.Message)
	}
}

func TestDoTransportErrorIsNotAPIError(t *testing.T) {
	c := NewClient(100 * time.Millisecond)
	err := c.do(context.Background(), http.MethodGet, "http://127.0.0.1:1", "", nil, nil)
	if err == nil {
		t.Fatal("expected error")
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		t.Fatalf("transport failure must not be an APIError: %v", err)
	}
}

func TestQuestionClientMetadataBackfillsID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/quiz/AB12CD/metadata" {
			t.Errorf("path = %s", r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode(domain.QuizSummary{QuizName: "Capitals", QuestionCount: 3})
	}))
	defer srv.Close()

	q := NewQuestionClient(NewClient(time.Second), srv.URL)
	meta, err := q.QuizMetadata(context.Background(), "tok", "AB12CD")
	if err != nil {
		t.Fatalf("metadata: %v", err)
	}
	if meta.QuizID != "AB12CD" {
		t.Fatalf("expected backfilled quiz id, got %q", meta.QuizID)
	}
}

func TestAuthClientCountUsersTotalFallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"total": 42}`))
	}))
	defer srv.Close()

	a := NewAuthClient(NewClient(time.Second), srv.URL)
	count, err := a.CountUsers(context.Background(), "tok")
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 42 {
		t.Fatalf("count = %d", count)
	}
}

func TestResultClientAttempted(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/attempted/AB12CD/alice" {
			t.Errorf("path = %s", r.URL.Path)
		}
		_, _ = w.Write([]byte("true"))
	}))
	defer srv.Close()

	rc := NewResultClient(NewClient(time.Second), srv.URL)
	attempted, err := rc.Attempted(context.Background(), "tok", "AB12CD", "alice")
	if err != nil {
		t.Fatalf("attempted: %v", err)
	}
	if !attempted {
		t.Fatal("expected attempted=true")
	}
}
