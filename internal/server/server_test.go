package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"aivan/internal/config"
	"aivan/internal/generate"
	"aivan/internal/llm"
)

type stubGenerator struct{ words int }

func (s stubGenerator) GenerateText(ctx context.Context, prompt string, options llm.TextGenerationOptions) (string, error) {
	if strings.Contains(prompt, "blog headline") {
		return "Stub Headline", nil
	}
	parts := make([]string, s.words)
	for i := range parts {
		parts[i] = "word"
	}
	return strings.Join(parts, " "), nil
}

func testServer(t *testing.T) *Server {
	t.Helper()

	dir := t.TempDir()
	templates := filepath.Join(dir, "templates")
	if err := os.MkdirAll(templates, 0o755); err != nil {
		t.Fatal(err)
	}
	index := `{{range .Articles}}[{{.Variant}}:{{.WordCount}}]{{end}}{{if .Error}}ERR:{{.Error}}{{end}}`
	for _, name := range []string{"index.html", "history.html", "history_entry.html"} {
		if err := os.WriteFile(filepath.Join(templates, name), []byte(index), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	clients := filepath.Join(dir, "clients")
	if err := os.MkdirAll(clients, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(clients, "acme.yaml"), []byte("name: Acme\nkeywords: [hiring]\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := &config.Config{}
	cfg.Server.Host = "localhost"
	cfg.Server.Port = 0
	cfg.Server.TemplatesDir = templates
	cfg.Server.MaxUploadMB = 16
	cfg.Generate.HistoryLimit = 10
	cfg.Clients.Directory = clients
	cfg.Clients.DefaultProfile = "acme"
	cfg.Output.Directory = filepath.Join(dir, "exports")
	cfg.AI.Gemini.Model = "test-model"

	policy := llm.RetryPolicy{MaxAttempts: 1, BaseDelay: time.Millisecond, Sleep: func(time.Duration) {}}
	service := generate.NewService(stubGenerator{words: 800}, policy, generate.DefaultOptions())

	return New(cfg, service)
}

func TestHealth(t *testing.T) {
	srv := testServer(t)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"status":"ok"`) {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func postForm(srv *Server, path string, form url.Values, cookies []*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	return rec
}

func TestGenerateBothVariants(t *testing.T) {
	srv := testServer(t)

	form := url.Values{
		"topic":      {"remote hiring trends"},
		"client":     {"acme"},
		"word_range": {"750-1500"},
		"variants":   {"UK", "US"},
	}
	rec := postForm(srv, "/generate", form, nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	body := rec.Body.String()
	ukIdx := strings.Index(body, "[UK:")
	usIdx := strings.Index(body, "[US:")
	if ukIdx < 0 || usIdx < 0 {
		t.Fatalf("missing variant panels: %s", body)
	}
	if ukIdx > usIdx {
		t.Error("UK panel should render before US")
	}

	// The session cookie carries usage stats across requests.
	cookies := rec.Result().Cookies()
	req := httptest.NewRequest(http.MethodGet, "/api/status", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	statusRec := httptest.NewRecorder()
	srv.Router().ServeHTTP(statusRec, req)
	if !strings.Contains(statusRec.Body.String(), `"blogs_generated":1`) {
		t.Errorf("status body = %s", statusRec.Body.String())
	}
	if !strings.Contains(statusRec.Body.String(), `"history_entries":1`) {
		t.Errorf("status body = %s", statusRec.Body.String())
	}
}

func TestGenerateRequiresTopic(t *testing.T) {
	srv := testServer(t)
	rec := postForm(srv, "/generate", url.Values{"variants": {"UK"}}, nil)
	if !strings.Contains(rec.Body.String(), "ERR:") {
		t.Errorf("expected error banner, got: %s", rec.Body.String())
	}
}

func TestReviseWithoutArticle(t *testing.T) {
	srv := testServer(t)
	rec := postForm(srv, "/revise", url.Values{
		"variant":      {"UK"},
		"instructions": {"tighten the intro"},
	}, nil)
	if !strings.Contains(rec.Body.String(), "ERR:") {
		t.Errorf("expected error banner, got: %s", rec.Body.String())
	}
}

func TestDownloadWithoutArticle(t *testing.T) {
	srv := testServer(t)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/download/UK", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d", rec.Code)
	}
}

func TestPasswordGate(t *testing.T) {
	t.Setenv("AIVAN_PASSWORD", "letmein")
	srv := testServer(t)

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("unauthenticated status = %d", rec.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.SetBasicAuth("operator", "letmein")
	rec = httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("authenticated status = %d", rec.Code)
	}

	// Health stays open for probes.
	rec = httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("health status = %d", rec.Code)
	}
}
