package notifier

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
)

// Console prints notifications as a "[title]" block. It is the driver used
// for local runs.
type Console struct {
	mu  sync.Mutex
	out io.Writer
}

func NewConsole(out io.Writer) *Console {
	if out == nil {
		out = os.Stdout
	}
	return &Console{out: out}
}

func (c *Console) Name() string { return "console" }

func (c *Console) Send(_ context.Context, p Payload) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if p.Image != "" {
		_, err := fmt.Fprintf(c.out, "\n[%s]\n%s\n(image: %s)\n", p.Title, p.Body, p.Image)
		return err
	}
	_, err := fmt.Fprintf(c.out, "\n[%s]\n%s\n", p.Title, p.Body)
	return err
}
