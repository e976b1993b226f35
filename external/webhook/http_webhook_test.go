package webhook

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/foxseedlab/tokpost/internal/webhook"
)

func TestSendUploadResult_EmptyWebhookURL(t *testing.T) {
	sender := NewHTTPSender("")
	if err := sender.SendUploadResult(context.Background(), webhook.UploadResultPayload{}); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
}

func TestSendUploadResult_Success(t *testing.T) {
	var got webhook.UploadResultPayload

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("unexpected method: %s", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("unexpected content type: %s", ct)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("failed to decode payload: %v", err)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	sender := NewHTTPSender(server.URL)
	err := sender.SendUploadResult(context.Background(), webhook.UploadResultPayload{
		SchemaVersion: webhook.UploadResultSchemaVersion,
		AccountName:   "alice",
		Title:         "my clip",
		DelaySeconds:  1800,
		Succeeded:     true,
	})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if got.AccountName != "alice" || got.DelaySeconds != 1800 || !got.Succeeded || got.SchemaVersion != 1 {
		t.Fatalf("unexpected payload: %+v", got)
	}
}

func TestSendUploadResult_Non2xx(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	sender := NewHTTPSender(server.URL)
	if err := sender.SendUploadResult(context.Background(), webhook.UploadResultPayload{}); err == nil {
		t.Fatal("expected error for non-2xx response")
	}
}
