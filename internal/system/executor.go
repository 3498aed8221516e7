package system

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

type osExecutor struct{}

// Execute returns stdout. Stderr, when present, is folded into the error.
func (osExecutor) Execute(ctx context.Context, name string, args ...string) ([]byte, error) {
	var stderr bytes.Buffer
	c := exec.CommandContext(ctx, name, args...)
	c.Stderr = &stderr

	out, err := c.Output()
	if err == nil {
		return out, nil
	}
	if msg := strings.TrimSpace(stderr.String()); msg != "" {
		return out, fmt.Errorf("%s %s: %s: %w", name, strings.Join(args, " "), msg, err)
	}
	return out, fmt.Errorf("%s %s: %w", name, strings.Join(args, " "), err)
}
