package httpclient

import (
	"bytes"
	"io"
	"net/http"
	"strings"
	"time"

	"yt-summary/cmd/api/trace"
	"yt-summary/internal/logger"
)

const maxBodyLog = 1024

// Config holds the shared settings of outbound HTTP clients.
type Config struct {
	// Timeout of 0 means 10 seconds; a negative value disables the client timeout.
	Timeout time.Duration
}

// loggingRoundTripper logs every outbound call and forwards the X-Request-Id and
// X-Span-Id of the inbound request that caused it.
type loggingRoundTripper struct {
	inner http.RoundTripper
}

func (l *loggingRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()

	requestID, spanID := trace.NextSpanID(req.Context())
	req.Header.Set("X-Request-Id", requestID)
	req.Header.Set("X-Span-Id", spanID)

	bodySnippet := readSnippet(req)

	resp, err := l.inner.RoundTrip(req)
	fields := logger.Fields{
		"method":     req.Method,
		"host":       req.URL.Host,
		"path":       req.URL.Path,
		"duration":   time.Since(start).String(),
		"request_id": requestID,
		"span_id":    spanID,
	}
	if bodySnippet != "" {
		fields["body"] = bodySnippet
	}
	if err != nil {
		fields["error"] = err.Error()
		logger.ErrorWithFields("httpclient request failed", fields)
		return nil, err
	}

	fields["status"] = resp.StatusCode
	if resp.StatusCode >= http.StatusBadRequest {
		logger.WarnWithFields("httpclient request returned error status", fields)
	} else {
		logger.DebugWithFields("httpclient request success", fields)
	}
	return resp, nil
}

// readSnippet captures the start of a JSON request body and restores the body for sending.
// Other bodies (audio uploads) are left untouched. The query string is never logged
// because some APIs carry the key there.
func readSnippet(req *http.Request) string {
	if req.Body == nil || !strings.Contains(req.Header.Get("Content-Type"), "json") {
		return ""
	}
	bodyBytes, err := io.ReadAll(req.Body)
	if err != nil {
		return ""
	}
	req.Body = io.NopCloser(bytes.NewReader(bodyBytes))
	if len(bodyBytes) > maxBodyLog {
		bodyBytes = bodyBytes[:maxBodyLog]
	}
	return string(bodyBytes)
}

// New builds an http.Client with the logging transport.
func New(cfg Config) *http.Client {
	timeout := cfg.Timeout
	switch {
	case timeout == 0:
		timeout = 10 * time.Second
	case timeout < 0:
		timeout = 0
	}

	return &http.Client{
		Timeout:   timeout,
		Transport: &loggingRoundTripper{inner: http.DefaultTransport},
	}
}
