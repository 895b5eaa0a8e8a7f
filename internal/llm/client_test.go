package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"alcyxob/coach-core/internal/config"
	"alcyxob/coach-core/internal/logger"
)

type recordedCall struct {
	model string
	auth  string
}

func newTestServer(t *testing.T, handle func(call int, model string, w http.ResponseWriter)) (*httptest.Server, *[]recordedCall) {
	t.Helper()
	var mu sync.Mutex
	calls := []recordedCall{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			http.NotFound(w, r)
			return
		}
		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		mu.Lock()
		calls = append(calls, recordedCall{model: req.Model, auth: r.Header.Get("Authorization")})
		n := len(calls)
		mu.Unlock()
		handle(n, req.Model, w)
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func reply(w http.ResponseWriter, content string) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"choices": []map[string]any{{"message": map[string]string{"role": "assistant", "content": content}}},
	})
}

func testClient(baseURL string, fallback string, retries int) *httpClient {
	c := NewHTTPClient(config.LLMConfig{
		BaseURL:       baseURL + "/",
		APIKey:        "sk-test",
		Model:         "primary",
		FallbackModel: fallback,
		Timeout:       5 * time.Second,
		MaxRetries:    retries,
	}, logger.Nop()).(*httpClient)
	c.backoff = time.Millisecond
	return c
}

func TestGenerateText_Success(t *testing.T) {
	srv, calls := newTestServer(t, func(_ int, _ string, w http.ResponseWriter) {
		reply(w, "# Program")
	})
	got, err := testClient(srv.URL, "", 0).GenerateText(context.Background(), "system", "user")
	if err != nil {
		t.Fatalf("GenerateText: %v", err)
	}
	if got != "# Program" {
		t.Errorf("text = %q", got)
	}
	if len(*calls) != 1 || (*calls)[0].auth != "Bearer sk-test" {
		t.Errorf("calls = %+v", *calls)
	}
}

func TestGenerateText_RetriesServerErrors(t *testing.T) {
	srv, calls := newTestServer(t, func(n int, _ string, w http.ResponseWriter) {
		if n < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		reply(w, "ok")
	})
	got, err := testClient(srv.URL, "", 2).GenerateText(context.Background(), "s", "u")
	if err != nil || got != "ok" {
		t.Fatalf("GenerateText = %q, %v", got, err)
	}
	if len(*calls) != 3 {
		t.Errorf("expected 3 attempts, got %d", len(*calls))
	}
}

func TestGenerateText_FallsBackToSecondModel(t *testing.T) {
	srv, calls := newTestServer(t, func(_ int, model string, w http.ResponseWriter) {
		if model == "primary" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		reply(w, "from fallback")
	})
	got, err := testClient(srv.URL, "backup", 3).GenerateText(context.Background(), "s", "u")
	if err != nil || got != "from fallback" {
		t.Fatalf("GenerateText = %q, %v", got, err)
	}
	// 400 is not retried, so exactly one call per model.
	if len(*calls) != 2 || (*calls)[0].model != "primary" || (*calls)[1].model != "backup" {
		t.Errorf("calls = %+v", *calls)
	}
}

func TestGenerateText_ReturnsLastError(t *testing.T) {
	srv, _ := newTestServer(t, func(_ int, _ string, w http.ResponseWriter) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	_, err := testClient(srv.URL, "", 1).GenerateText(context.Background(), "s", "u")
	var he *httpError
	if !errors.As(err, &he) || he.StatusCode != http.StatusUnauthorized {
		t.Fatalf("err = %v, want http 401", err)
	}
}

func TestGenerateText_NotConfigured(t *testing.T) {
	c := NewHTTPClient(config.LLMConfig{BaseURL: "http://localhost"}, logger.Nop())
	if _, err := c.GenerateText(context.Background(), "s", "u"); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("err = %v, want ErrNotConfigured", err)
	}
}
