package scrape

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/kailas-cloud/pageqa/internal/domain"
)

func serveHTML(t *testing.T, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestExtract_ParagraphsInDocumentOrder(t *testing.T) {
	srv := serveHTML(t, `<html><body>
		<p>First paragraph.</p>
		<div><p>Second paragraph.</p></div>
		<p>Third paragraph.</p>
	</body></html>`)

	got, err := NewExtractor(Config{}).Extract(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"First paragraph.", "Second paragraph.", "Third paragraph."}
	if len(got) != len(want) {
		t.Fatalf("expected %d paragraphs, got %d: %v", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("paragraph %d: got %q, want %q", i, got[i], want[i])
		}
	}
}

func TestExtract_StripsCitationsAndWhitespace(t *testing.T) {
	srv := serveHTML(t, `<html><body>
		<p>  Elon Musk was born in 1971[5].  </p>
		<p>Multiple[1] markers[23] here[456].</p>
	</body></html>`)

	got, err := NewExtractor(Config{}).Extract(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(got) != 2 {
		t.Fatalf("expected 2 paragraphs, got %d", len(got))
	}
	if got[0] != "Elon Musk was born in 1971." {
		t.Errorf("unexpected first paragraph %q", got[0])
	}
	if got[1] != "Multiple markers here." {
		t.Errorf("unexpected second paragraph %q", got[1])
	}
}

func TestExtract_DropsEmptyParagraphs(t *testing.T) {
	srv := serveHTML(t, `<html><body>
		<p>Kept.</p>
		<p>   </p>
		<p></p>
		<p>[7]</p>
	</body></html>`)

	got, err := NewExtractor(Config{}).Extract(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0] != "Kept." {
		t.Fatalf("expected only the non-empty paragraph, got %v", got)
	}
}

func TestExtract_KeepsDuplicates(t *testing.T) {
	srv := serveHTML(t, `<html><body>
		<p>Twice.</p>
		<p>Twice.</p>
	</body></html>`)

	got, err := NewExtractor(Config{}).Extract(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("repeated paragraphs must pass through, got %v", got)
	}
}

func TestExtract_SkipsScriptAndStyleText(t *testing.T) {
	srv := serveHTML(t, `<html><body>
		<p>Visible<script>hidden()</script> text.</p>
	</body></html>`)

	got, err := NewExtractor(Config{}).Extract(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0] != "Visible text." {
		t.Fatalf("expected script text to be skipped, got %v", got)
	}
}

func TestExtract_NonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	t.Cleanup(srv.Close)

	_, err := NewExtractor(Config{}).Extract(context.Background(), srv.URL)
	if !errors.Is(err, domain.ErrFetch) {
		t.Fatalf("expected ErrFetch, got %v", err)
	}
}

func TestExtract_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close() // connection refused

	_, err := NewExtractor(Config{}).Extract(context.Background(), srv.URL)
	if !errors.Is(err, domain.ErrFetch) {
		t.Fatalf("expected ErrFetch, got %v", err)
	}
}

func TestExtract_SendsUserAgent(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		_, _ = w.Write([]byte("<html><body><p>ok</p></body></html>"))
	}))
	t.Cleanup(srv.Close)

	_, err := NewExtractor(Config{UserAgent: "pageqa/1.0"}).Extract(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotUA != "pageqa/1.0" {
		t.Errorf("expected custom user agent, got %q", gotUA)
	}
}
