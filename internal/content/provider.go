package content

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	logx "digestbot/pkg/logx"
)

var ErrEmptyContent = errors.New("empty response")

// Provider generates text for a prompt.
type Provider interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// ProviderFunc adapts a function to Provider.
type ProviderFunc func(ctx context.Context, prompt string) (string, error)

func (f ProviderFunc) Generate(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

// ProviderError is a recoverable generation failure.
type ProviderError struct {
	Op  string
	Err error
}

func (e *ProviderError) Error() string {
	if e.Op == "" {
		return e.Err.Error()
	}
	return e.Op + ": " + e.Err.Error()
}

func (e *ProviderError) Unwrap() error { return e.Err }

// Request is one generation. ErrorPrefix starts the placeholder body used
// when generation fails.
type Request struct {
	Kind        string
	Prompt      string
	ErrorPrefix string
}

// Placeholder renders the body sent in place of generated content.
func Placeholder(prefix string, err error) string {
	if strings.TrimSpace(prefix) == "" {
		prefix = ErrorPrefixLearning
	}
	reason := "unknown error"
	if err != nil {
		var pe *ProviderError
		if errors.As(err, &pe) && pe.Err != nil {
			err = pe.Err
		}
		if s := strings.TrimSpace(err.Error()); s != "" {
			reason = s
		}
	}
	return fmt.Sprintf("%s: %s", prefix, reason)
}

// Generator applies the placeholder policy on top of a Provider.
type Generator struct {
	p   Provider
	log logx.Logger
}

func NewGenerator(p Provider, log logx.Logger) *Generator {
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Generator{p: p, log: log}
}

// Generate always returns a non-empty body. err is a *ProviderError when the
// body is a placeholder, for the caller's logs only.
func (g *Generator) Generate(ctx context.Context, req Request) (string, error) {
	start := time.Now()
	text, err := g.generate(ctx, req.Prompt)
	if err != nil {
		g.log.Debug("content generation failed",
			logx.String("kind", req.Kind),
			logx.Duration("took", time.Since(start)),
			logx.Err(err),
		)
		return Placeholder(req.ErrorPrefix, err), err
	}
	g.log.Info("content generated",
		logx.String("kind", req.Kind),
		logx.Int("chars", len(text)),
		logx.Duration("took", time.Since(start)),
	)
	return text, nil
}

func (g *Generator) generate(ctx context.Context, prompt string) (text string, err error) {
	if g.p == nil {
		return "", &ProviderError{Op: "generate", Err: errors.New("no content provider")}
	}
	defer func() {
		if r := recover(); r != nil {
			err = &ProviderError{Op: "generate", Err: fmt.Errorf("panic: %v", r)}
		}
	}()

	text, err = g.p.Generate(ctx, prompt)
	if err != nil {
		var pe *ProviderError
		if errors.As(err, &pe) {
			return "", err
		}
		return "", &ProviderError{Err: err}
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", &ProviderError{Err: ErrEmptyContent}
	}
	return text, nil
}
