package server

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"golang.org/x/sync/errgroup"

	htmlconv "github.com/porticus-lab/go-html-convert"
	"github.com/porticus-lab/go-html-convert/internal/config"
	"github.com/porticus-lab/go-html-convert/internal/handler"
)

type stubPDF struct{}

func (stubPDF) Format() htmlconv.Format { return htmlconv.FormatPDF }

func (stubPDF) Render(_ context.Context, html string) (*htmlconv.Result, error) {
	return htmlconv.NewResult([]byte("%PDF-1.4\n"+html), htmlconv.FormatPDF), nil
}

func newTestServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()
	cfg := config.Defaults()
	cfg.OutputDir = t.TempDir()

	ts := httptest.NewUnstartedServer(nil)
	cfg.BaseURL = "http://" + ts.Listener.Addr().String()

	srv, err := New(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)),
		WithRenderers(stubPDF{}, htmlconv.NewSlidesRenderer()))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ts.Config.Handler = srv.Handler()
	ts.Start()
	t.Cleanup(ts.Close)
	return srv, ts
}

func postConvert(url, html, format string) (handler.ConvertResponse, error) {
	var out handler.ConvertResponse
	body, _ := json.Marshal(map[string]string{
		"base64Html": base64.StdEncoding.EncodeToString([]byte(html)),
		"format":     format,
	})
	resp, err := http.Post(url+"/convert-html", "application/json", bytes.NewReader(body))
	if err != nil {
		return out, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return out, fmt.Errorf("status = %d, body = %s", resp.StatusCode, b)
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return out, fmt.Errorf("decoding response: %w", err)
	}
	return out, nil
}

func convertRequest(t *testing.T, url, html, format string) handler.ConvertResponse {
	t.Helper()
	out, err := postConvert(url, html, format)
	if err != nil {
		t.Fatalf("convert %s: %v", format, err)
	}
	return out
}

func TestConvertAndDownload_Slides(t *testing.T) {
	_, ts := newTestServer(t)

	html := "<html><body><h1>Welcome</h1><section>Agenda\nDetails</section><div><h2>Title</h2></div></body></html>"
	out := convertRequest(t, ts.URL, html, "pptx")
	if !strings.HasPrefix(out.DownloadURL, ts.URL+"/downloads/") {
		t.Fatalf("downloadUrl %q is not served by this server", out.DownloadURL)
	}

	resp, err := http.Get(out.DownloadURL)
	if err != nil {
		t.Fatalf("GET download: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("download status = %d", resp.StatusCode)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}

	if ct := resp.Header.Get("Content-Type"); ct != htmlconv.FormatPPTX.ContentType() {
		t.Errorf("Content-Type = %q", ct)
	}
	n, err := htmlconv.NewResult(data, htmlconv.FormatPPTX).Pages()
	if err != nil {
		t.Fatalf("Pages: %v", err)
	}
	// h1, section, h2 and the div holding the h2.
	if n != 4 {
		t.Errorf("got %d slides, want 4", n)
	}
}

func TestConvert_ConcurrentRequestsGetDistinctFiles(t *testing.T) {
	_, ts := newTestServer(t)

	const n = 16
	var (
		mu   sync.Mutex
		urls = make(map[string]bool)
	)
	var g errgroup.Group
	for i := 0; i < n; i++ {
		format := "pdf"
		if i%2 == 0 {
			format = "pptx"
		}
		g.Go(func() error {
			out, err := postConvert(ts.URL, "<html><h1>same</h1></html>", format)
			if err != nil {
				return err
			}
			mu.Lock()
			urls[out.DownloadURL] = true
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatal(err)
	}
	if len(urls) != n {
		t.Errorf("got %d distinct download URLs, want %d", len(urls), n)
	}
}

func TestRoutes(t *testing.T) {
	_, ts := newTestServer(t)

	tests := []struct {
		method, path string
		status       int
		contains     string
	}{
		{http.MethodGet, "/health", http.StatusOK, `"ok"`},
		{http.MethodGet, "/metrics", http.StatusOK, "htmlconvert_"},
		{http.MethodGet, "/downloads/converted-missing.pdf", http.StatusNotFound, ""},
		{http.MethodGet, "/downloads/", http.StatusNotFound, ""},
		{http.MethodGet, "/convert-html", http.StatusMethodNotAllowed, ""},
	}
	for _, tt := range tests {
		req, _ := http.NewRequest(tt.method, ts.URL+tt.path, nil)
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatalf("%s %s: %v", tt.method, tt.path, err)
		}
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()

		if resp.StatusCode != tt.status {
			t.Errorf("%s %s = %d, want %d", tt.method, tt.path, resp.StatusCode, tt.status)
		}
		if tt.contains != "" && !strings.Contains(string(body), tt.contains) {
			t.Errorf("%s %s body missing %q", tt.method, tt.path, tt.contains)
		}
	}
}

func TestMetricsCountConversions(t *testing.T) {
	_, ts := newTestServer(t)
	convertRequest(t, ts.URL, "<html><h1>x</h1></html>", "pptx")

	resp, err := http.Get(ts.URL + "/metrics")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), `htmlconvert_conversions_total{format="pptx",outcome="success"} 1`) {
		t.Error("successful conversion not counted")
	}
}

func TestCORS(t *testing.T) {
	_, ts := newTestServer(t)

	req, _ := http.NewRequest(http.MethodOptions, ts.URL+"/convert-html", nil)
	req.Header.Set("Origin", "https://app.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()

	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Access-Control-Allow-Origin = %q, want *", got)
	}
}

func TestServe_GracefulShutdown(t *testing.T) {
	cfg := config.Defaults()
	cfg.OutputDir = t.TempDir()
	cfg.BaseURL = "http://localhost"
	cfg.RenderTimeout = time.Second
	cfg.ChromePath = "/nonexistent/chrome"

	srv, err := New(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatal(err)
	}
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, ln) }()

	url := "http://" + ln.Addr().String() + "/health"
	deadline := time.Now().Add(5 * time.Second)
	for {
		resp, err := http.Get(url)
		if err == nil {
			resp.Body.Close()
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("server never became ready: %v", err)
		}
		time.Sleep(20 * time.Millisecond)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Serve returned %v", err)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}
