package engines

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"time"

	"github.com/charmbracelet/log"
)

// killGrace is how long a subprocess gets to exit after an interrupt.
const killGrace = 100 * time.Millisecond

// command describes one subprocess invocation.
type command struct {
	name    string
	args    []string
	stdin   io.Reader
	timeout time.Duration
}

// run executes c and returns its stdout. The stdin reader is attached
// before start so the process never sees an empty stdin. When the timeout
// or ctx ends first the process is interrupted, then killed.
func run(ctx context.Context, c command) ([]byte, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	cmd := exec.Command(c.name, c.args...)
	if c.stdin != nil {
		cmd.Stdin = c.stdin
	}
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start %s: %w", c.name, err)
	}

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	select {
	case err := <-done:
		if err != nil {
			return nil, fmt.Errorf("%s failed: %w, stderr: %s", c.name, err, stderr.String())
		}
		return stdout.Bytes(), nil

	case <-ctx.Done():
		log.Debug("stopping subprocess", "cmd", c.name, "reason", ctx.Err())
		_ = cmd.Process.Signal(os.Interrupt)
		select {
		case <-done:
		case <-time.After(killGrace):
			_ = cmd.Process.Kill()
			<-done
		}
		return nil, fmt.Errorf("%s interrupted: %w", c.name, ctx.Err())
	}
}
