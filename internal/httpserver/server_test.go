package httpserver

import (
	"context"
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"chessbot/pkg/logx"
)

func newTestServer(hooks Hooks) *Server {
	return New(Config{Port: 0, TriggerSecret: "s3cret"}, hooks, logx.Nop())
}

func TestIndexRoute(t *testing.T) {
	t.Parallel()
	srv := newTestServer(Hooks{})

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))

	if rec.Code != 200 {
		t.Fatalf("GET / = %d, want 200", rec.Code)
	}
	if body := rec.Body.String(); !strings.Contains(body, "running") {
		t.Fatalf("GET / body = %q", body)
	}
}

func TestWebhookNotInitialized(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name  string
		hooks Hooks
	}{
		{name: "no handler", hooks: Hooks{}},
		{name: "not ready", hooks: Hooks{
			Ready:         func() bool { return false },
			ProcessUpdate: func([]byte) error { return nil },
		}},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(tt.hooks)
			rec := httptest.NewRecorder()
			srv.Handler().ServeHTTP(rec, httptest.NewRequest("POST", "/webhook", strings.NewReader("{}")))

			if rec.Code != 500 {
				t.Fatalf("POST /webhook = %d, want 500", rec.Code)
			}
			if !strings.Contains(rec.Body.String(), "not initialized") {
				t.Fatalf("body = %q, want not-initialized message", rec.Body.String())
			}
		})
	}
}

func TestWebhookDispatch(t *testing.T) {
	t.Parallel()
	var got []byte
	srv := newTestServer(Hooks{
		Ready: func() bool { return true },
		ProcessUpdate: func(body []byte) error {
			got = body
			return nil
		},
	})

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest("POST", "/webhook", strings.NewReader(`{"update_id":5}`)))

	if rec.Code != 200 {
		t.Fatalf("POST /webhook = %d, want 200", rec.Code)
	}
	if string(got) != `{"update_id":5}` {
		t.Fatalf("handler received %q", got)
	}
}

func TestWebhookProcessingError(t *testing.T) {
	t.Parallel()
	srv := newTestServer(Hooks{
		Ready:         func() bool { return true },
		ProcessUpdate: func([]byte) error { return errors.New("bad update") },
	})

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest("POST", "/webhook", strings.NewReader("{}")))

	if rec.Code != 500 {
		t.Fatalf("POST /webhook = %d, want 500 on processing failure", rec.Code)
	}
}

func TestTriggerWrongSecret(t *testing.T) {
	t.Parallel()
	var fired atomic.Bool
	srv := newTestServer(Hooks{
		Trigger: func(context.Context, string) { fired.Store(true) },
	})

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest("POST", "/trigger-puzzle/WRONG", nil))

	if rec.Code != 403 {
		t.Fatalf("wrong secret = %d, want 403", rec.Code)
	}
	// No side effects on rejection.
	time.Sleep(20 * time.Millisecond)
	if fired.Load() {
		t.Fatal("trigger must not fire for a bad secret")
	}
}

func TestTriggerFireAndForget(t *testing.T) {
	t.Parallel()
	done := make(chan string, 1)
	srv := newTestServer(Hooks{
		Trigger: func(_ context.Context, source string) { done <- source },
	})

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest("POST", "/trigger-puzzle/s3cret", nil))

	if rec.Code != 200 {
		t.Fatalf("trigger = %d, want 200", rec.Code)
	}
	if body, _ := io.ReadAll(rec.Body); !strings.Contains(string(body), "triggered") {
		t.Fatalf("trigger body = %q", body)
	}

	select {
	case source := <-done:
		if source != "manual" {
			t.Fatalf("trigger source = %q, want manual", source)
		}
	case <-time.After(time.Second):
		t.Fatal("trigger callback never ran")
	}
}
