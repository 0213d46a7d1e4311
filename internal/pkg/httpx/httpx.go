package httpx

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// Error is a non-2xx response from a collaborator API.
type Error struct {
	Service    string
	StatusCode int
	Body       string
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil http error>"
	}
	msg := strings.TrimSpace(e.Body)
	if msg == "" {
		msg = "<empty body>"
	}
	if len(msg) > 4000 {
		msg = msg[:4000] + "..."
	}
	return fmt.Sprintf("%s http %d: %s", e.Service, e.StatusCode, msg)
}

func (e *Error) HTTPStatusCode() int {
	if e == nil {
		return 0
	}
	return e.StatusCode
}

func IsSuccess(code int) bool {
	return code >= 200 && code < 300
}

// StatusCode extracts the collaborator status from err, or 0.
func StatusCode(err error) int {
	var he *Error
	if errors.As(err, &he) {
		return he.StatusCode
	}
	return 0
}

// DoJSON issues a single request with a JSON body and decodes a JSON
// response into out (skipped when out is nil). Exactly one attempt is
// made; callers own any fallback behavior.
func DoJSON(ctx context.Context, client *http.Client, service, method, url string, headers map[string]string, body, out any) error {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return fmt.Errorf("%s: encode request: %w", service, err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, url, &buf)
	if err != nil {
		return fmt.Errorf("%s: build request: %w", service, err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", service, err)
	}
	raw, readErr := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if readErr != nil {
		return fmt.Errorf("%s: read response: %w", service, readErr)
	}

	if !IsSuccess(resp.StatusCode) {
		return &Error{Service: service, StatusCode: resp.StatusCode, Body: string(raw)}
	}

	if out != nil && len(raw) > 0 {
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("%s: decode response: %w", service, err)
		}
	}
	return nil
}
