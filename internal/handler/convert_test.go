package handler

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	htmlconv "github.com/porticus-lab/go-html-convert"
	"github.com/porticus-lab/go-html-convert/internal/convert"
	"github.com/porticus-lab/go-html-convert/internal/httputil"
	"github.com/porticus-lab/go-html-convert/internal/store"
)

type stubPDF struct {
	err error
}

func (stubPDF) Format() htmlconv.Format { return htmlconv.FormatPDF }

func (s stubPDF) Render(ctx context.Context, html string) (*htmlconv.Result, error) {
	if s.err != nil {
		return nil, s.err
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	return htmlconv.NewResult([]byte("%PDF-1.4\n"+html), htmlconv.FormatPDF), nil
}

func newHandler(t *testing.T, maxBody int64, pdf htmlconv.Renderer) (*ConvertHandler, *store.Store) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	st, err := store.New(t.TempDir(), "http://localhost:3001", logger)
	if err != nil {
		t.Fatal(err)
	}
	svc := convert.NewService([]htmlconv.Renderer{pdf, htmlconv.NewSlidesRenderer()}, st, nil, logger)
	return NewConvertHandler(svc, maxBody, logger), st
}

func post(h *ConvertHandler, body string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/convert-html", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	h.Convert(rec, req)
	return rec
}

func requestBody(html, format string) string {
	b, _ := json.Marshal(convert.Request{
		Base64HTML: base64.StdEncoding.EncodeToString([]byte(html)),
		Format:     format,
	})
	return string(b)
}

func TestConvert_Success(t *testing.T) {
	tests := []struct {
		format  string
		message string
	}{
		{"pdf", "PDF generated successfully."},
		{"pptx", "PPTX generated successfully."},
	}
	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			h, st := newHandler(t, 0, stubPDF{})
			rec := post(h, requestBody("<html><h1>Hi</h1></html>", tt.format))

			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
			}
			var resp ConvertResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("decoding response: %v", err)
			}
			if resp.Message != tt.message {
				t.Errorf("message = %q, want %q", resp.Message, tt.message)
			}
			prefix := "http://localhost:3001/downloads/converted-"
			if !strings.HasPrefix(resp.DownloadURL, prefix) || !strings.HasSuffix(resp.DownloadURL, "."+tt.format) {
				t.Errorf("downloadUrl = %q", resp.DownloadURL)
			}
			name := strings.TrimPrefix(resp.DownloadURL, "http://localhost:3001/downloads/")
			if f, err := st.Stat(name); err != nil || f.Size == 0 {
				t.Errorf("stored file missing or empty: %v", err)
			}
		})
	}
}

func TestConvert_BadRequests(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		status int
		error  string
	}{
		{"malformed json", `{"base64Html":`, http.StatusBadRequest, msgInvalidJSON},
		{"missing fields", `{}`, http.StatusBadRequest, msgMissingFields},
		{"missing format", `{"base64Html":"PGh0bWw+"}`, http.StatusBadRequest, msgMissingFields},
		{"bad base64", `{"base64Html":"***","format":"pdf"}`, http.StatusBadRequest, msgInvalidBase64},
		{"not html", requestBody("plain text", "pdf"), http.StatusBadRequest, msgNotHTML},
		{"unsupported format", requestBody("<html></html>", "docx"), http.StatusBadRequest, msgUnsupportedFormat},
		{"too large", requestBody("<html>"+strings.Repeat("x", 512)+"</html>", "pdf"), http.StatusRequestEntityTooLarge, msgBodyTooLarge},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, st := newHandler(t, 256, stubPDF{})
			rec := post(h, tt.body)

			if rec.Code != tt.status {
				t.Errorf("status = %d, want %d", rec.Code, tt.status)
			}
			var resp httputil.ErrorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("decoding response: %v", err)
			}
			if resp.Error != tt.error {
				t.Errorf("error = %q, want %q", resp.Error, tt.error)
			}
			entries, _ := os.ReadDir(st.Dir())
			if len(entries) != 0 {
				t.Errorf("%d files stored for a rejected request", len(entries))
			}
		})
	}
}

func TestConvert_RenderFailure(t *testing.T) {
	for _, err := range []error{htmlconv.ErrRender, htmlconv.ErrBrowserNotFound} {
		h, _ := newHandler(t, 0, stubPDF{err: err})
		rec := post(h, requestBody("<html></html>", "pdf"))

		if rec.Code != http.StatusInternalServerError {
			t.Errorf("%v: status = %d, want 500", err, rec.Code)
		}
		if !strings.Contains(rec.Body.String(), msgProcessing) {
			t.Errorf("%v: body = %s", err, rec.Body.String())
		}
	}
}

func TestConvert_ClientCancelDoesNotAbort(t *testing.T) {
	h, _ := newHandler(t, 0, stubPDF{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	req := httptest.NewRequest(http.MethodPost, "/convert-html", strings.NewReader(requestBody("<html></html>", "pdf"))).WithContext(ctx)
	rec := httptest.NewRecorder()
	h.Convert(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200 despite canceled request context", rec.Code)
	}
}

func TestHealth(t *testing.T) {
	rec := httptest.NewRecorder()
	Health(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK || strings.TrimSpace(rec.Body.String()) != `{"status":"ok"}` {
		t.Errorf("got %d %s", rec.Code, rec.Body.String())
	}
}
