package telegram

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"chessbot/pkg/logx"
)

// setWebhookAdapter builds an adapter pointed at a test API server,
// skipping bot construction which SetWebhook does not need.
func setWebhookAdapter(apiBase string, client *http.Client) *Adapter {
	return &Adapter{
		cfg:  Config{Token: "123:abc", APIBase: apiBase},
		log:  logx.Nop(),
		http: client,
	}
}

func TestSetWebhookRegistersAgainstConfiguredAPIBase(t *testing.T) {
	t.Parallel()

	var gotPath string
	var gotBody struct {
		URL                string `json:"url"`
		DropPendingUpdates bool   `json:"drop_pending_updates"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	ad := setWebhookAdapter(srv.URL, srv.Client())
	if err := ad.SetWebhook(context.Background(), "https://bot.example.org/"); err != nil {
		t.Fatalf("SetWebhook: %v", err)
	}

	if want := "/bot123:abc/setWebhook"; gotPath != want {
		t.Fatalf("path = %q, want %q", gotPath, want)
	}
	if want := "https://bot.example.org/webhook"; gotBody.URL != want {
		t.Fatalf("webhook url = %q, want %q", gotBody.URL, want)
	}
	if !gotBody.DropPendingUpdates {
		t.Fatal("drop_pending_updates not set")
	}
}

func TestSetWebhookSurfacesAPIError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"ok":false,"error_code":401,"description":"Unauthorized"}`))
	}))
	defer srv.Close()

	ad := setWebhookAdapter(srv.URL, srv.Client())
	err := ad.SetWebhook(context.Background(), "https://bot.example.org")
	if err == nil {
		t.Fatal("expected error for ok=false response")
	}
	if !strings.Contains(err.Error(), "Unauthorized") {
		t.Fatalf("error %q does not carry the API description", err)
	}
}
