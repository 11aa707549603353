package fetch

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/esmgis/platcrawl/internal/model"
	"github.com/esmgis/platcrawl/internal/store"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// TestGatewayURL tests template substitution.
func TestGatewayURL(t *testing.T) {
	t.Parallel()

	st, err := store.New(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	g := New("https://example.test/maps/{id}.pdf", st, WithLogger(discardLogger()))
	got := g.URL(model.MustParseMapID("001-07"))
	want := "https://example.test/maps/001-07.pdf"
	if got != want {
		t.Errorf("expected URL %q, got %q", want, got)
	}
}

// TestGatewayFetch tests the download path end to end against a test server.
func TestGatewayFetch(t *testing.T) {
	t.Parallel()

	t.Run("downloads and stores the document", func(t *testing.T) {
		t.Parallel()

		var gotUA string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotUA = r.Header.Get("User-Agent")
			if r.URL.Path != "/maps/003-12.pdf" {
				t.Errorf("unexpected request path %q", r.URL.Path)
			}
			_, _ = w.Write([]byte("%PDF-1.4 twelve"))
		}))
		defer srv.Close()

		st, err := store.New(t.TempDir())
		if err != nil {
			t.Fatal(err)
		}

		g := New(srv.URL+"/maps/{id}.pdf", st,
			WithLogger(discardLogger()),
			WithUserAgent("platcrawl-test"),
		)

		id := model.MustParseMapID("003-12")
		if err := g.Fetch(context.Background(), id); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if gotUA != "platcrawl-test" {
			t.Errorf("expected custom User-Agent, got %q", gotUA)
		}

		data, err := st.Read(id)
		if err != nil {
			t.Fatalf("expected document in store: %v", err)
		}
		if string(data) != "%PDF-1.4 twelve" {
			t.Errorf("stored content mismatch: %q", data)
		}
	})

	t.Run("skips the network when the document exists", func(t *testing.T) {
		t.Parallel()

		var hits atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			hits.Add(1)
			_, _ = w.Write([]byte("x"))
		}))
		defer srv.Close()

		st, err := store.New(t.TempDir())
		if err != nil {
			t.Fatal(err)
		}

		id := model.MustParseMapID("001-01")
		if err := st.Write(id, []byte("already here")); err != nil {
			t.Fatal(err)
		}

		g := New(srv.URL+"/{id}.pdf", st, WithLogger(discardLogger()))
		if err := g.Fetch(context.Background(), id); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if hits.Load() != 0 {
			t.Errorf("expected no HTTP requests, got %d", hits.Load())
		}

		data, err := st.Read(id)
		if err != nil {
			t.Fatal(err)
		}
		if string(data) != "already here" {
			t.Errorf("existing document must not be overwritten, got %q", data)
		}
	})

	t.Run("reports non-2xx status as an error", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "not found", http.StatusNotFound)
		}))
		defer srv.Close()

		st, err := store.New(t.TempDir())
		if err != nil {
			t.Fatal(err)
		}

		g := New(srv.URL+"/{id}.pdf", st, WithLogger(discardLogger()))
		id := model.MustParseMapID("002-44")
		err = g.Fetch(context.Background(), id)
		if err == nil {
			t.Fatal("expected error for 404 response")
		}
		if !strings.Contains(err.Error(), "404") {
			t.Errorf("expected status in error, got %v", err)
		}
		if st.Exists(id) {
			t.Error("failed fetch must not leave a document in the store")
		}
	})

	t.Run("honors context cancellation", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte("x"))
		}))
		defer srv.Close()

		st, err := store.New(t.TempDir())
		if err != nil {
			t.Fatal(err)
		}

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		g := New(srv.URL+"/{id}.pdf", st, WithLogger(discardLogger()))
		if err := g.Fetch(ctx, model.MustParseMapID("004-01")); err == nil {
			t.Error("expected error for canceled context")
		}
	})

	t.Run("truncates bodies beyond the size cap", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte("0123456789"))
		}))
		defer srv.Close()

		st, err := store.New(t.TempDir())
		if err != nil {
			t.Fatal(err)
		}

		g := New(srv.URL+"/{id}.pdf", st,
			WithLogger(discardLogger()),
			WithMaxBodySize(4),
		)

		id := model.MustParseMapID("006-02")
		if err := g.Fetch(context.Background(), id); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		data, err := st.Read(id)
		if err != nil {
			t.Fatal(err)
		}
		if string(data) != "0123" {
			t.Errorf("expected truncated body %q, got %q", "0123", data)
		}
	})
}
