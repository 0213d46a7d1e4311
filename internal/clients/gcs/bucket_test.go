package gcs

import (
	"testing"
	"time"
)

func TestObjectKey(t *testing.T) {
	now := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		filename string
		want     string
	}{
		{"report.pdf", "2026-08/tok_report.pdf"},
		{"claim form (final).pdf", "2026-08/tok_claim_form_final_.pdf"},
		{"überschrift.docx", "2026-08/tok__berschrift.docx"},
		{"", "2026-08/tok_upload"},
	}
	for _, tc := range tests {
		if got := ObjectKey(now, "tok", tc.filename); got != tc.want {
			t.Fatalf("ObjectKey(%q): want=%q got=%q", tc.filename, tc.want, got)
		}
	}
}

func TestPublicURL(t *testing.T) {
	bs := &bucketService{bucket: "claims-bucket"}
	if got := bs.PublicURL("2026-08/tok_report.pdf"); got != "https://storage.googleapis.com/claims-bucket/2026-08/tok_report.pdf" {
		t.Fatalf("default public url: got %q", got)
	}

	bs = &bucketService{bucket: "claims-bucket", publicBaseURL: "http://localhost:4443"}
	if got := bs.PublicURL("2026-08/a b.pdf"); got != "http://localhost:4443/claims-bucket/2026-08/a%20b.pdf" {
		t.Fatalf("emulator public url: got %q", got)
	}
}
