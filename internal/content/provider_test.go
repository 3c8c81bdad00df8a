package content

import (
	"context"
	"errors"
	"strings"
	"testing"

	logx "digestbot/pkg/logx"
)

func TestGeneratorPlaceholderPolicy(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		reply   string
		err     error
		req     Request
		want    string
		wantErr bool
	}{
		{name: "content trimmed", reply: "  Use EXPLAIN ANALYZE.\n", req: LearningRequest("SQL"), want: "Use EXPLAIN ANALYZE."},
		{name: "provider error", err: errors.New("quota exceeded"), req: LearningRequest("AI"), want: "Error: quota exceeded", wantErr: true},
		{name: "news error", err: errors.New("timeout"), req: NewsRequest(), want: "Error fetching news: timeout", wantErr: true},
		{name: "meme error", err: errors.New("403"), req: MemeRequest(), want: "Error fetching meme: 403", wantErr: true},
		{name: "empty content", reply: "", req: LearningRequest("AI"), want: "Error: empty response", wantErr: true},
		{name: "whitespace content", reply: " \n\t ", req: NewsRequest(), want: "Error fetching news: empty response", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			p := ProviderFunc(func(ctx context.Context, prompt string) (string, error) {
				if prompt != tt.req.Prompt {
					t.Errorf("prompt = %q, want %q", prompt, tt.req.Prompt)
				}
				return tt.reply, tt.err
			})
			got, err := NewGenerator(p, logx.Nop()).Generate(context.Background(), tt.req)
			if got != tt.want {
				t.Fatalf("body = %q, want %q", got, tt.want)
			}
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				var pe *ProviderError
				if !errors.As(err, &pe) {
					t.Fatalf("err = %T, want *ProviderError", err)
				}
			}
		})
	}
}

func TestGeneratorRecoversProviderPanic(t *testing.T) {
	t.Parallel()

	p := ProviderFunc(func(context.Context, string) (string, error) { panic("sdk bug") })
	got, err := NewGenerator(p, logx.Nop()).Generate(context.Background(), MemeRequest())
	if err == nil || !strings.HasPrefix(got, ErrorPrefixMeme+": ") {
		t.Fatalf("body = %q, err = %v", got, err)
	}
}

func TestGeneratorWithoutProvider(t *testing.T) {
	t.Parallel()

	got, err := NewGenerator(nil, logx.Nop()).Generate(context.Background(), LearningRequest("Go"))
	if err == nil || strings.TrimSpace(got) == "" {
		t.Fatalf("body = %q, err = %v", got, err)
	}
}

func TestPlaceholderUnwrapsProviderError(t *testing.T) {
	t.Parallel()

	err := &ProviderError{Op: "gemini", Err: errors.New("rpc error: code = Unavailable")}
	if got, want := Placeholder("Error", err), "Error: rpc error: code = Unavailable"; got != want {
		t.Fatalf("Placeholder = %q, want %q", got, want)
	}
	if got := Placeholder("", nil); got != "Error: unknown error" {
		t.Fatalf("Placeholder(nil) = %q", got)
	}
}

func TestLearningPrompt(t *testing.T) {
	t.Parallel()

	req := LearningRequest("Flutter")
	want := "Explain a useful concept or coding technique in Flutter with an example in 5-7 lines."
	if req.Prompt != want {
		t.Fatalf("Prompt = %q, want %q", req.Prompt, want)
	}
}

func TestNewGeminiRequiresKey(t *testing.T) {
	t.Parallel()

	if _, err := NewGemini(context.Background(), GeminiConfig{}); err == nil {
		t.Fatal("NewGemini without key: expected error")
	}
}
