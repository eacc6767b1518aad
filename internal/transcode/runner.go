package transcode

import (
	"bytes"
	"context"
	"os/exec"
)

// Runner executes the transcoder binary and returns what it wrote to stderr.
type Runner interface {
	Run(ctx context.Context, name string, args []string) ([]byte, error)
}

type ExecRunner struct{}

func (ExecRunner) Run(ctx context.Context, name string, args []string) ([]byte, error) {
	var stderr bytes.Buffer

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stderr = &stderr

	err := cmd.Run()
	return stderr.Bytes(), err
}
