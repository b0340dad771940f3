package qwenvl

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/OSH212/phmarcel-rpg/internal/core/domain"
)

func TestClassifySendsImagePath(t *testing.T) {
	var captured map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/classify" {
			http.NotFound(w, r)
			return
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Errorf("decode request: %v", err)
		}
		_, _ = w.Write([]byte(`{"doc_kind":"tax_form"}`))
	}))
	defer server.Close()

	client, err := New(server.URL, nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	kind, err := client.Classify(context.Background(), "/blobs/intake-1/abc.pdf")
	if err != nil {
		t.Fatalf("Classify() error = %v", err)
	}
	if kind != domain.KindTaxForm {
		t.Fatalf("kind = %s, want tax_form", kind)
	}
	if captured["image_path"] != "/blobs/intake-1/abc.pdf" {
		t.Fatalf("unexpected request payload: %v", captured)
	}
}

func TestExtractSendsSchemaFieldsForKind(t *testing.T) {
	var captured map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/extract" {
			http.NotFound(w, r)
			return
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Errorf("decode request: %v", err)
		}
		_, _ = w.Write([]byte(`{"fields":{"merchant_name":"Costco","total_amount":"42.17","date":null}}`))
	}))
	defer server.Close()

	client, err := New(server.URL, nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	fields, err := client.Extract(context.Background(), "/blobs/intake-1/def.png", domain.KindReceipt)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if fields["merchant_name"] != "Costco" {
		t.Fatalf("fields = %v", fields)
	}
	if captured["doc_kind"] != "receipt" {
		t.Fatalf("doc_kind = %v, want receipt", captured["doc_kind"])
	}
	sent, _ := captured["fields"].([]any)
	if len(sent) == 0 {
		t.Fatalf("expected schema fields in request, got %v", captured["fields"])
	}
	var hasMerchant bool
	for _, f := range sent {
		if f == "merchant_name" {
			hasMerchant = true
		}
	}
	if !hasMerchant {
		t.Fatalf("merchant_name missing from requested fields: %v", sent)
	}
}

func TestExtractRejectsUnknownKind(t *testing.T) {
	client, err := New("http://localhost:0", nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if _, err := client.Extract(context.Background(), "/blobs/x", domain.KindUnknown); err == nil {
		t.Fatalf("expected error for unknown kind")
	}
}

func TestRetryableStatusWrapsAsTemporary(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model loading", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client, err := New(server.URL, nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	_, err = client.Classify(context.Background(), "/blobs/x")
	if err == nil {
		t.Fatalf("expected error")
	}
	if !domain.IsKind(err, domain.ErrTemporary) {
		t.Fatalf("expected Temporary kind, got %v", err)
	}
	if !strings.Contains(err.Error(), "model loading") {
		t.Fatalf("expected response body in error, got %v", err)
	}
}

func TestClientRejectionIsNotTemporary(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unsupported image", http.StatusUnprocessableEntity)
	}))
	defer server.Close()

	client, err := New(server.URL, nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	_, err = client.Classify(context.Background(), "/blobs/x")
	if err == nil {
		t.Fatalf("expected error")
	}
	if domain.IsKind(err, domain.ErrTemporary) {
		t.Fatalf("4xx rejection must not be Temporary: %v", err)
	}
}
