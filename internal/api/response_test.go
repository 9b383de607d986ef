package api

import (
	"bytes"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/erazemk/transferlog/internal/httpx"
)

type brokenWriter struct {
	header http.Header
}

func (b *brokenWriter) Header() http.Header { return b.header }
func (b *brokenWriter) WriteHeader(int) {}
func (b *brokenWriter) Write([]byte) (int, error) {
	return 0, errors.New("connection reset by peer")
}

func TestAttachmentLogsWriteError(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))
	req := httptest.NewRequest("GET", "/api/reports/transfers.pdf", nil)
	req = req.WithContext(httpx.WithLogger(req.Context(), logger))

	w := &brokenWriter{header: http.Header{}}
	attachment(w, req, ContentTypePDF, "report.pdf", []byte("%PDF-1.3"))

	if got := w.header.Get("Content-Disposition"); got != `attachment; filename="report.pdf"` {
		t.Errorf("unexpected Content-Disposition %q", got)
	}
	out := logs.String()
	if !strings.Contains(out, "failed to write download") || !strings.Contains(out, "connection reset by peer") {
		t.Errorf("expected write failure to be logged, got %q", out)
	}
}
