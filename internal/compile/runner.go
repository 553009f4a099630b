package compile

import (
	"bytes"
	"context"
	stdErrors "errors"
	"log/slog"
	"os/exec"

	"git.home.luguber.info/inful/texbuild/internal/logfields"
)

// Invocation is one run of an external tool.
type Invocation struct {
	Program string
	Args    []string
	Dir     string
}

// Runner executes external tools. A nonzero exit is reported through the
// exit code; err is reserved for failures to start or wait for the process.
type Runner interface {
	Run(ctx context.Context, inv Invocation) (exitCode int, err error)
}

// maxLoggedOutput bounds the tool output kept for debug logging.
const maxLoggedOutput = 4096

// ExecRunner runs tools with os/exec. Standard input is empty, so a TeX
// engine in errorstopmode terminates at the first error instead of waiting.
type ExecRunner struct {
	Logger *slog.Logger
}

func (r ExecRunner) Run(ctx context.Context, inv Invocation) (int, error) {
	logger := r.Logger
	if logger == nil {
		logger = slog.Default()
	}
	cmd := exec.CommandContext(ctx, inv.Program, inv.Args...)
	cmd.Dir = inv.Dir
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	logger.Debug("Running tool", logfields.Program(inv.Program), slog.Any("args", inv.Args), logfields.Path(inv.Dir))
	err := cmd.Run()
	if out.Len() > 0 && logger.Enabled(ctx, slog.LevelDebug) {
		b := out.Bytes()
		if len(b) > maxLoggedOutput {
			b = b[len(b)-maxLoggedOutput:]
		}
		logger.Debug("Tool output", logfields.Program(inv.Program), slog.String("output_tail", string(b)))
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return -1, ctxErr
	}
	var exitErr *exec.ExitError
	if stdErrors.As(err, &exitErr) {
		return exitErr.ExitCode(), nil
	}
	if err != nil {
		return -1, err
	}
	return 0, nil
}
