package mail

import (
	"context"
	"errors"
	"testing"

	"github.com/yungbote/claimintake-backend/internal/pkg/logger"
)

func testLogger(t *testing.T) *logger.Logger {
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	return log
}

type stubTransport struct {
	name       string
	configured bool
	err        error
	calls      int
}

func (s *stubTransport) Name() string     { return s.name }
func (s *stubTransport) Configured() bool { return s.configured }
func (s *stubTransport) Send(ctx context.Context, msg Message) error {
	s.calls++
	return s.err
}

func TestChainEmptyRecipientsIsNoOp(t *testing.T) {
	primary := &stubTransport{name: "primary", configured: true}
	chain := NewChain(testLogger(t), primary)

	if err := chain.Send(context.Background(), Message{Subject: "s"}); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if primary.calls != 0 {
		t.Fatalf("no transport may be called for an empty recipient list")
	}
}

func TestChainPrimarySuccessStopsChain(t *testing.T) {
	primary := &stubTransport{name: "primary", configured: true}
	secondary := &stubTransport{name: "secondary", configured: true}
	chain := NewChain(testLogger(t), primary, secondary)

	if err := chain.Send(context.Background(), Message{To: []string{"u@x.com"}}); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if primary.calls != 1 || secondary.calls != 0 {
		t.Fatalf("calls: primary=%d secondary=%d", primary.calls, secondary.calls)
	}
}

func TestChainFallsBackOncePerTransport(t *testing.T) {
	primary := &stubTransport{name: "primary", configured: true, err: errors.New("api down")}
	secondary := &stubTransport{name: "secondary", configured: true}
	chain := NewChain(testLogger(t), primary, secondary)

	if err := chain.Send(context.Background(), Message{To: []string{"u@x.com"}}); err != nil {
		t.Fatalf("Send: fallback should succeed: %v", err)
	}
	if primary.calls != 1 || secondary.calls != 1 {
		t.Fatalf("calls: primary=%d secondary=%d", primary.calls, secondary.calls)
	}
}

func TestChainUnconfiguredPrimaryIsSkipped(t *testing.T) {
	primary := &stubTransport{name: "primary", configured: false}
	secondary := &stubTransport{name: "secondary", configured: true}
	chain := NewChain(testLogger(t), primary, secondary)

	if err := chain.Send(context.Background(), Message{To: []string{"u@x.com"}}); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if primary.calls != 0 || secondary.calls != 1 {
		t.Fatalf("calls: primary=%d secondary=%d", primary.calls, secondary.calls)
	}
}

func TestChainSurfacesPrimaryFailureWhenNoFallbackConfigured(t *testing.T) {
	primaryErr := errors.New("api down")
	primary := &stubTransport{name: "primary", configured: true, err: primaryErr}
	secondary := &stubTransport{name: "secondary", configured: false}
	chain := NewChain(testLogger(t), primary, secondary)

	err := chain.Send(context.Background(), Message{To: []string{"u@x.com"}})
	if !errors.Is(err, primaryErr) {
		t.Fatalf("want the primary failure surfaced, got %v", err)
	}
}

func TestChainNoConfiguredTransportIsAnError(t *testing.T) {
	chain := NewChain(testLogger(t),
		&stubTransport{name: "primary"},
		&stubTransport{name: "secondary"},
	)

	if err := chain.Send(context.Background(), Message{To: []string{"u@x.com"}}); err == nil {
		t.Fatalf("want error when nothing is configured")
	}
}
