package enrich

import (
	"context"
	"errors"
	"testing"

	"github.com/nikhilza/focuspanel/internal/config"
)

type stubEnricher struct {
	text string
	err  error
}

func (s stubEnricher) Polish(context.Context, Prompt) (string, error) {
	return s.text, s.err
}

func TestDisabledServiceReturnsUnavailable(t *testing.T) {
	svc, err := NewService(context.Background(), nil, config.AIConfig{TimeoutSeconds: 1, MaxRetries: 0})
	if err != nil {
		t.Fatalf("NewService failed: %v", err)
	}
	if svc.Enabled() {
		t.Fatal("service without a chat model should be disabled")
	}
	if _, err := svc.Polish(context.Background(), Prompt{User: "x"}); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("disabled Polish returned %v, want ErrUnavailable", err)
	}
}

func TestPolishOrFallsBack(t *testing.T) {
	if got := PolishOr(context.Background(), nil, Prompt{}, "fallback"); got != "fallback" {
		t.Fatalf("nil enricher: got %q", got)
	}

	failing := stubEnricher{err: ErrUnavailable}
	if got := PolishOr(context.Background(), failing, Prompt{}, "fallback"); got != "fallback" {
		t.Fatalf("failing enricher: got %q", got)
	}

	working := stubEnricher{text: "polished"}
	if got := PolishOr(context.Background(), working, Prompt{}, "fallback"); got != "polished" {
		t.Fatalf("working enricher: got %q", got)
	}
}
