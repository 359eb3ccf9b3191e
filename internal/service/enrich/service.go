// Package enrich is the optional text-completion capability used to polish
// moderator prompts, persona backgrounds and answer phrasing. Every caller
// has a deterministic heuristic fallback; a failed or absent enricher never
// surfaces to API clients.
package enrich

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"github.com/nikhilza/focuspanel/internal/config"
)

// ErrUnavailable is returned when the hook is disabled or exhausted its retry
// budget. Callers recover locally; the error never reaches an API response.
var ErrUnavailable = errors.New("enrichment unavailable")

// Prompt is the single structured input the capability accepts.
type Prompt struct {
	System string
	User   string
}

// Enricher is the one-method capability interface. The core is fully
// exercised with this stubbed out.
type Enricher interface {
	Polish(ctx context.Context, p Prompt) (string, error)
}

// Service implements Enricher on top of an eino chat-model chain.
type Service struct {
	enabled    bool
	chain      compose.Runnable[map[string]any, *schema.Message]
	timeout    time.Duration
	maxRetries int
}

// NewService compiles the enrichment chain. A nil chatModel yields a disabled
// service whose Polish always returns ErrUnavailable.
func NewService(ctx context.Context, chatModel model.ChatModel, cfg config.AIConfig) (*Service, error) {
	svc := &Service{
		timeout:    time.Duration(cfg.TimeoutSeconds) * time.Second,
		maxRetries: cfg.MaxRetries,
	}
	if chatModel == nil {
		return svc, nil
	}

	promptTemplate := prompt.FromMessages(
		schema.FString,
		schema.SystemMessage("{system}"),
		schema.UserMessage("{query}"),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(promptTemplate)
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compile enrichment chain: %w", err)
	}

	svc.chain = runnable
	svc.enabled = true
	return svc, nil
}

// Enabled reports whether the hook can be invoked at all.
func (s *Service) Enabled() bool {
	return s != nil && s.enabled && s.chain != nil
}

// Polish runs the prompt through the model within the configured timeout and
// retry budget. It never blocks indefinitely.
func (s *Service) Polish(ctx context.Context, p Prompt) (string, error) {
	if !s.Enabled() {
		return "", ErrUnavailable
	}

	input := map[string]any{
		"system": p.System,
		"query":  p.User,
	}

	var lastErr error
	for attempt := 0; attempt <= s.maxRetries; attempt++ {
		attemptCtx, cancel := context.WithTimeout(ctx, s.timeout)
		msg, err := s.chain.Invoke(attemptCtx, input)
		cancel()

		if err == nil && msg != nil {
			if text := strings.TrimSpace(msg.Content); text != "" {
				return text, nil
			}
			err = errors.New("empty completion")
		}
		lastErr = err
		log.Printf("[enrich] attempt %d failed: %v", attempt+1, err)

		if ctx.Err() != nil {
			break
		}
	}

	return "", fmt.Errorf("%w: %v", ErrUnavailable, lastErr)
}

// PolishOr returns the enriched text, or fallback when the hook is disabled
// or failed. This is the form nearly every call site wants.
func PolishOr(ctx context.Context, e Enricher, p Prompt, fallback string) string {
	if e == nil {
		return fallback
	}
	text, err := e.Polish(ctx, p)
	if err != nil {
		return fallback
	}
	return text
}
