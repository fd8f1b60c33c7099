package media

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// CommandRunner executes an external binary and returns its combined output.
// Implementations must honor context cancellation.
type CommandRunner func(ctx context.Context, name string, args ...string) ([]byte, error)

// Run invokes the binary directly. It is the production CommandRunner.
func Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		trimmed := strings.TrimSpace(string(output))
		if trimmed != "" {
			return nil, fmt.Errorf("%s: %w: %s", name, err, trimmed)
		}
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return output, nil
}

// IsNotFound reports whether the error means the binary is missing from PATH.
func IsNotFound(err error) bool {
	return errors.Is(err, exec.ErrNotFound)
}
