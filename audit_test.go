package techhatch

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	internalaudit "github.com/MrEthical07/techhatch/internal/audit"
	"github.com/MrEthical07/techhatch/transport"
)

type countingSink struct {
	count atomic.Int64
}

func (s *countingSink) Emit(context.Context, AuditEvent) {
	s.count.Add(1)
}

func (s *countingSink) Count() int64 {
	return s.count.Load()
}

type gateSink struct {
	gate chan struct{}
}

func newGateSink() *gateSink {
	return &gateSink{
		gate: make(chan struct{}),
	}
}

func (s *gateSink) Emit(context.Context, AuditEvent) {
	<-s.gate
}

func newAuditDispatcher(cfg AuditConfig, sink AuditSink) *internalaudit.Dispatcher {
	return internalaudit.NewDispatcher(internalaudit.Config{
		Enabled:    cfg.Enabled,
		BufferSize: cfg.BufferSize,
		DropIfFull: cfg.DropIfFull,
	}, sink)
}

func collectEvents(sink *ChannelSink, max int, wait time.Duration) []AuditEvent {
	events := make([]AuditEvent, 0, max)
	timeout := time.After(wait)
	for len(events) < max {
		select {
		case ev := <-sink.Events():
			events = append(events, ev)
		case <-timeout:
			return events
		}
	}
	return events
}

func TestAuditDisabledNoSinkCalls(t *testing.T) {
	env := newTestEnv(t)
	env.srv.SeedUser("ada@example.com", "s3cret-pass", "CANDIDATE")
	sink := &countingSink{}
	c := env.client(t, func(cfg *Config, b *Builder) {
		cfg.Audit.Enabled = false
		b.WithAuditSink(sink)
	})

	_, _ = c.Login(context.Background(), "ada@example.com", "wrong-password")
	time.Sleep(30 * time.Millisecond)

	if sink.Count() != 0 {
		t.Fatalf("expected no audit sink calls when disabled, got %d", sink.Count())
	}
	if c.AuditDropped() != 0 || c.AuditDelivered() != 0 {
		t.Fatal("expected an inert disabled dispatcher")
	}
}

func TestAuditLoginFlowEvents(t *testing.T) {
	env := newTestEnv(t)
	env.srv.SeedUser("ada@example.com", "s3cret-pass", "CANDIDATE")
	sink := NewChannelSink(16)
	c := env.client(t, func(cfg *Config, b *Builder) {
		cfg.Audit.Enabled = true
		cfg.Audit.DropIfFull = false
		b.WithAuditSink(sink)
	})
	ctx := context.Background()

	_, _ = c.Login(ctx, "ada@example.com", "wrong-password")
	signIn(t, c, "ada@example.com", "s3cret-pass")
	c.Logout(ctx)

	events := collectEvents(sink, 4, 2*time.Second)
	want := []string{AuditOTPRejected, AuditLoginOTPIssued, AuditLoginSuccess, AuditLogout}
	if len(events) != len(want) {
		t.Fatalf("expected %d events, got %+v", len(want), events)
	}
	for i, ev := range events {
		if ev.EventType != want[i] {
			t.Fatalf("event %d: expected %s, got %s", i, want[i], ev.EventType)
		}
		if ev.Timestamp.IsZero() {
			t.Fatalf("event %d: missing timestamp", i)
		}
	}
	if events[0].Success || events[0].Error != string(auditErrOTPNotSent) {
		t.Fatalf("unexpected rejection event %+v", events[0])
	}
	if events[0].Metadata["purpose"] != string(PurposeLogin) {
		t.Fatalf("expected purpose metadata, got %v", events[0].Metadata)
	}
	if !events[2].Success || events[2].UserID == "" || events[2].Metadata["role"] != string(RoleCandidate) {
		t.Fatalf("unexpected success event %+v", events[2])
	}
}

func TestAuditNoSecretsInEvents(t *testing.T) {
	env := newTestEnv(t)
	const password = "correct-password-123"
	env.srv.SeedUser("ada@example.com", password, "CANDIDATE")
	sink := NewChannelSink(32)
	c := env.client(t, func(cfg *Config, b *Builder) {
		cfg.Audit.Enabled = true
		cfg.Audit.BufferSize = 32
		cfg.Audit.DropIfFull = false
		b.WithAuditSink(sink)
	})
	ctx := context.Background()

	if _, err := c.Login(ctx, "ada@example.com", password); err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if _, err := c.VerifyLoginOTP(ctx, "ada@example.com", "000000"); err == nil {
		t.Fatal("expected wrong OTP to fail")
	}
	res, err := c.VerifyLoginOTP(ctx, "ada@example.com", testOTP)
	if err != nil {
		t.Fatalf("VerifyLoginOTP failed: %v", err)
	}

	events := collectEvents(sink, 3, 2*time.Second)
	if len(events) == 0 {
		t.Fatal("expected at least one audit event")
	}

	needles := []string{password, testOTP, "000000", res.Token}
	for _, ev := range events {
		for _, needle := range needles {
			if strings.Contains(ev.Error, needle) {
				t.Fatalf("sensitive value leaked in audit error field: %q", needle)
			}
			for k, v := range ev.Metadata {
				if strings.Contains(k, needle) || strings.Contains(v, needle) {
					t.Fatalf("sensitive value leaked in audit metadata: %q", needle)
				}
			}
		}
	}
	if events[1].EventType != AuditLoginFailure || events[1].Error != string(auditErrRejected) {
		t.Fatalf("expected rejected login failure, got %+v", events[1])
	}
}

func TestAuditBufferFullDropIfFullTrueDoesNotBlock(t *testing.T) {
	sink := newGateSink()
	dispatcher := newAuditDispatcher(AuditConfig{
		Enabled:    true,
		BufferSize: 1,
		DropIfFull: true,
	}, sink)
	defer func() {
		close(sink.gate)
		dispatcher.Close()
	}()

	dispatcher.Emit(context.Background(), AuditEvent{EventType: "e1"})
	dispatcher.Emit(context.Background(), AuditEvent{EventType: "e2"})

	start := time.Now()
	dispatcher.Emit(context.Background(), AuditEvent{EventType: "e3"})
	if time.Since(start) > 100*time.Millisecond {
		t.Fatal("expected non-blocking emit when DropIfFull is true")
	}
	if dispatcher.Dropped() == 0 {
		t.Fatal("expected dropped counter to increment when queue is full")
	}
}

func TestAuditBufferFullDropIfFullFalseBlocksUntilSpace(t *testing.T) {
	sink := newGateSink()
	dispatcher := newAuditDispatcher(AuditConfig{
		Enabled:    true,
		BufferSize: 1,
		DropIfFull: false,
	}, sink)
	defer func() {
		close(sink.gate)
		dispatcher.Close()
	}()

	dispatcher.Emit(context.Background(), AuditEvent{EventType: "e1"})
	dispatcher.Emit(context.Background(), AuditEvent{EventType: "e2"})

	done := make(chan struct{})
	go func() {
		dispatcher.Emit(context.Background(), AuditEvent{EventType: "e3"})
		close(done)
	}()

	select {
	case <-done:
		t.Fatal("expected emit to block while buffer is full")
	case <-time.After(150 * time.Millisecond):
	}

	sink.gate <- struct{}{}

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("expected blocked emit to proceed after space is available")
	}
}

func TestAuditJSONWriterSinkWritesJSONLines(t *testing.T) {
	var buf syncBuffer
	sink := NewJSONWriterSink(&buf)
	sink.Emit(context.Background(), AuditEvent{
		Timestamp: time.Now().UTC(),
		EventType: AuditLoginSuccess,
		UserID:    "7",
		Email:     "ada@example.com",
		Success:   true,
	})

	if !buf.Contains("login_success") {
		t.Fatal("expected JSON log line to contain event type")
	}
	if !buf.Contains("\"user_id\":\"7\"") {
		t.Fatal("expected JSON log line to contain user id")
	}
	if !buf.Contains("\n") {
		t.Fatal("expected newline-terminated record")
	}
}

func TestAuditDispatcherCloseIdempotentAndEmitAfterCloseSafe(t *testing.T) {
	sink := &countingSink{}
	dispatcher := newAuditDispatcher(AuditConfig{
		Enabled:    true,
		BufferSize: 4,
		DropIfFull: true,
	}, sink)

	dispatcher.Emit(context.Background(), AuditEvent{EventType: "e1"})
	dispatcher.Close()
	dispatcher.Close()
	dispatcher.Emit(context.Background(), AuditEvent{EventType: "e2"})

	if sink.Count() != 1 {
		t.Fatalf("expected buffered event to be drained on close, got %d", sink.Count())
	}
	if dispatcher.Delivered() != 1 {
		t.Fatalf("expected one delivered event, got %d", dispatcher.Delivered())
	}
}

func TestAuditErrorCodeMapping(t *testing.T) {
	tests := []struct {
		err  error
		want AuditErrorCode
	}{
		{nil, ""},
		{ErrValidation, auditErrValidation},
		{&RejectedError{Message: "nope"}, auditErrOTPNotSent},
		{&CooldownError{Remaining: time.Second}, auditErrCooldownActive},
		{ErrAlreadyAuthenticated, auditErrAlreadyAuthed},
		{ErrMissingToken, auditErrMissingToken},
		{ErrDecode, auditErrInvalidCredential},
		{&Error{Kind: transport.KindAuth, Err: ErrTokenExpired}, auditErrTokenExpired},
		{ErrUnauthorized, auditErrUnauthorized},
		{ErrTransient, auditErrTransient},
		{ErrDomain, auditErrRejected},
		{errors.New("boom"), auditErrInternal},
	}
	for _, tt := range tests {
		if got := auditErrorCode(tt.err); got != tt.want {
			t.Fatalf("auditErrorCode(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}

type syncBuffer struct {
	mu  sync.Mutex
	buf []byte
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.buf = append(b.buf, p...)
	return len(p), nil
}

func (b *syncBuffer) Contains(v string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return strings.Contains(string(b.buf), v)
}
