package dispatch

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/sigbus/sigbus/pkg/signal"
)

// ConsoleAdapter implements the "console" tag: a human-readable print,
// recognizing no options.
type ConsoleAdapter struct {
	out io.Writer
}

// NewConsoleAdapter builds a ConsoleAdapter writing to out. A nil out
// defaults to os.Stdout.
func NewConsoleAdapter(out io.Writer) *ConsoleAdapter {
	if out == nil {
		out = os.Stdout
	}
	return &ConsoleAdapter{out: out}
}

func (a *ConsoleAdapter) Validate(options map[string]any) (map[string]any, error) {
	return map[string]any{}, nil
}

func (a *ConsoleAdapter) Deliver(ctx context.Context, sig *signal.Signal, options map[string]any) error {
	_, err := fmt.Fprintln(a.out, sig.String())
	return err
}
