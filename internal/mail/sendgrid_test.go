package mail

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSendGridBatchesAllRecipientsInOneRequest(t *testing.T) {
	var requests int
	var captured mailSendRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		if r.URL.Path != "/v3/mail/send" {
			t.Errorf("path: got %q", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer sg-key" {
			t.Errorf("authorization header: got %q", got)
		}
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &captured); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	transport := NewSendGrid(testLogger(t), SendGridConfig{
		APIKey:    "sg-key",
		BaseURL:   srv.URL,
		FromEmail: "claims@ins.com",
	})

	err := transport.Send(context.Background(), Message{
		To:      []string{"u1@ins.com", "u2@ins.com", "u3@ins.com"},
		Subject: "New claim",
		HTML:    "<p>hi</p>",
	})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if requests != 1 {
		t.Fatalf("requests: want=1 got=%d", requests)
	}
	if len(captured.Personalizations) != 1 || len(captured.Personalizations[0].To) != 3 {
		t.Fatalf("personalizations: got %+v", captured.Personalizations)
	}
	if captured.From.Email != "claims@ins.com" {
		t.Fatalf("from: got %q", captured.From.Email)
	}
}

func TestSendGridNon2xxIsAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"errors":[{"message":"bad key"}]}`))
	}))
	defer srv.Close()

	transport := NewSendGrid(testLogger(t), SendGridConfig{
		APIKey:    "sg-key",
		BaseURL:   srv.URL,
		FromEmail: "claims@ins.com",
	})

	err := transport.Send(context.Background(), Message{To: []string{"u@x.com"}, Subject: "s", HTML: "<p>x</p>"})
	if err == nil {
		t.Fatalf("want error on 401")
	}
}

func TestSendGridConfigured(t *testing.T) {
	if NewSendGrid(testLogger(t), SendGridConfig{}).Configured() {
		t.Fatalf("empty API key must report unconfigured")
	}
	if !NewSendGrid(testLogger(t), SendGridConfig{APIKey: "k"}).Configured() {
		t.Fatalf("API key present must report configured")
	}
}
