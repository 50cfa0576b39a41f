package firewall

import (
	"context"
	"log/slog"
	"os/exec"
)

// Runner executes an external command and returns its combined output.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

type ExecRunner struct{}

func (ExecRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	slog.Debug("Running firewall command", "name", name, "args", args)
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}
