package content

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/time/rate"
	"google.golang.org/genai"
)

const DefaultModel = "gemini-1.5-flash"

type GeminiConfig struct {
	APIKey string
	Model  string

	// RequestsPerMinute throttles outgoing calls. <=0 disables throttling.
	RequestsPerMinute int

	// Timeout bounds one call. 0 means none.
	Timeout time.Duration
}

// Gemini is a Provider backed by the Gemini API.
type Gemini struct {
	models  *genai.Models
	model   string
	timeout time.Duration
	limiter *rate.Limiter
}

func NewGemini(ctx context.Context, cfg GeminiConfig) (*Gemini, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("gemini: api key required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini: new client: %w", err)
	}

	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = DefaultModel
	}
	g := &Gemini{models: client.Models, model: model, timeout: cfg.Timeout}
	if cfg.RequestsPerMinute > 0 {
		g.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(cfg.RequestsPerMinute)), 1)
	}
	return g, nil
}

func (g *Gemini) Model() string { return g.model }

func (g *Gemini) Generate(ctx context.Context, prompt string) (string, error) {
	if g.limiter != nil {
		if err := g.limiter.Wait(ctx); err != nil {
			return "", &ProviderError{Op: "gemini rate limit", Err: err}
		}
	}
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	resp, err := g.models.GenerateContent(ctx, g.model, genai.Text(prompt), nil)
	if err != nil {
		return "", &ProviderError{Op: "gemini", Err: err}
	}
	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", &ProviderError{Op: "gemini", Err: ErrEmptyContent}
	}
	return text, nil
}
