package transport

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-responder/core"
)

func TestRESTAdapter_ExecutesRequest(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer token-1" {
			t.Errorf("missing authorization header")
		}
		if r.URL.Query().Get("limit") != "25" {
			t.Errorf("missing query parameter, got %q", r.URL.RawQuery)
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"results": []}`))
	}))
	defer server.Close()

	adapter := NewRESTAdapter(nil)
	res, err := adapter.Do(context.Background(), core.TransportRequest{
		Method:  http.MethodGet,
		URL:     server.URL + "/threads/T1/messages",
		Headers: map[string]string{"Authorization": "Bearer token-1"},
		Query:   map[string]string{"limit": "25"},
	})
	if err != nil {
		t.Fatalf("do: %v", err)
	}
	if res.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.StatusCode)
	}
	if !strings.Contains(string(res.Body), "results") {
		t.Fatalf("unexpected body %q", res.Body)
	}
}

func TestRESTAdapter_EnforcesResponseBodyLimit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(strings.Repeat("x", 64)))
	}))
	defer server.Close()

	adapter := NewRESTAdapter(nil)
	adapter.MaxResponseBodyBytes = 16
	_, err := adapter.Do(context.Background(), core.TransportRequest{URL: server.URL})
	if err == nil {
		t.Fatalf("expected body limit error")
	}
	var richErr *goerrors.Error
	if !goerrors.As(err, &richErr) {
		t.Fatalf("expected structured error, got %T", err)
	}
	if richErr.Category != goerrors.CategoryExternal {
		t.Fatalf("expected external category, got %s", richErr.Category)
	}
}

func TestRESTAdapter_RejectsMissingURL(t *testing.T) {
	adapter := NewRESTAdapter(nil)
	_, err := adapter.Do(context.Background(), core.TransportRequest{})
	if err == nil {
		t.Fatalf("expected missing url error")
	}
	var richErr *goerrors.Error
	if !goerrors.As(err, &richErr) {
		t.Fatalf("expected structured error, got %T", err)
	}
	if richErr.TextCode != core.ResponderErrorBadInput {
		t.Fatalf("expected bad input text code, got %s", richErr.TextCode)
	}
}

func TestRegistry_RegisterAndReplace(t *testing.T) {
	registry := NewDefaultRegistry()

	if _, ok := registry.Get(KindREST); !ok {
		t.Fatalf("expected default rest adapter")
	}
	if err := registry.Register(NewRESTAdapter(nil)); err == nil {
		t.Fatalf("expected duplicate kind rejection")
	}
	if err := registry.Replace(NewRESTAdapter(nil)); err != nil {
		t.Fatalf("replace: %v", err)
	}
	if list := registry.List(); len(list) != 1 {
		t.Fatalf("expected single adapter, got %d", len(list))
	}
}

func TestUnsupportedAdapter_AlwaysErrors(t *testing.T) {
	adapter := NewUnsupportedAdapter("grpc", "no grpc upstream")
	if _, err := adapter.Do(context.Background(), core.TransportRequest{}); err == nil {
		t.Fatalf("expected configuration error")
	}
}
