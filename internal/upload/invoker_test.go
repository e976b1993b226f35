package upload

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/foxseedlab/tokpost/internal/publisher"
)

type mockPublisher struct {
	publishCalls []publisher.PublishInput
	publishErr   error
	panicWith    any
}

func (m *mockPublisher) Login(_ context.Context, _ string) error { return nil }

func (m *mockPublisher) Publish(_ context.Context, input publisher.PublishInput) error {
	m.publishCalls = append(m.publishCalls, input)
	if m.panicWith != nil {
		panic(m.panicWith)
	}
	return m.publishErr
}

func TestInvoke_Success(t *testing.T) {
	p := &mockPublisher{}
	inv := NewInvoker(p, publisher.DefaultVisibility)

	res := inv.Invoke(context.Background(), Request{Username: "alice", FilePath: "/tmp/a.mp4", Title: "hello", DelaySeconds: 1800})
	if !res.OK || res.Detail != "" {
		t.Fatalf("unexpected result: %+v", res)
	}
	if len(p.publishCalls) != 1 {
		t.Fatalf("expected one publish call, got %d", len(p.publishCalls))
	}
	got := p.publishCalls[0]
	if got.AccountName != "alice" || got.FilePath != "/tmp/a.mp4" || got.Caption != "hello" || got.DelaySeconds != 1800 {
		t.Fatalf("unexpected publish input: %+v", got)
	}
	if got.Visibility != publisher.DefaultVisibility {
		t.Fatalf("unexpected visibility: %+v", got.Visibility)
	}
}

func TestInvoke_ErrorBecomesResult(t *testing.T) {
	p := &mockPublisher{publishErr: errors.New("session expired")}
	res := NewInvoker(p, publisher.DefaultVisibility).Invoke(context.Background(), Request{Username: "alice"})
	if res.OK {
		t.Fatal("expected failure result")
	}
	if res.Detail != "session expired" {
		t.Fatalf("unexpected detail: %q", res.Detail)
	}
}

func TestInvoke_PanicBecomesResult(t *testing.T) {
	p := &mockPublisher{panicWith: "boom"}
	res := NewInvoker(p, publisher.DefaultVisibility).Invoke(context.Background(), Request{Username: "alice"})
	if res.OK {
		t.Fatal("expected failure result")
	}
	if !strings.Contains(res.Detail, "boom") {
		t.Fatalf("expected panic value in detail, got %q", res.Detail)
	}
}

func TestInvoke_DetailIsBounded(t *testing.T) {
	p := &mockPublisher{publishErr: errors.New(strings.Repeat("あ", 1000))}
	res := NewInvoker(p, publisher.DefaultVisibility).Invoke(context.Background(), Request{Username: "alice"})
	if n := utf8.RuneCountInString(res.Detail); n != maxDetailRunes+1 {
		t.Fatalf("expected %d runes, got %d", maxDetailRunes+1, n)
	}
}

func TestBoundDetail_Empty(t *testing.T) {
	if got := boundDetail("  "); got != "unknown error" {
		t.Fatalf("unexpected detail: %q", got)
	}
}
