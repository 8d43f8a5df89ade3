// Package tunnel supervises external tunnel processes and discovers the
// public URL they expose.
package tunnel

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os/exec"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog/log"
)

// OutputFunc receives one line of combined subprocess output.
type OutputFunc func(line string)

// Process supervises one external tunnel subprocess. Output is captured as it
// arrives so callers can scan it without blocking; liveness is observed
// through Running.
type Process struct {
	cmd     *exec.Cmd
	running atomic.Bool

	mu     sync.Mutex
	output []byte
}

// Start spawns name with args and begins draining its combined stdout/stderr.
// onOutput, when non-nil, is invoked once per line from the drain goroutines.
// Cancelling ctx kills the subprocess.
func Start(ctx context.Context, name string, args []string, onOutput OutputFunc) (*Process, error) {
	if _, err := exec.LookPath(name); err != nil {
		return nil, fmt.Errorf("%s not found in PATH: %w", name, err)
	}

	cmd := exec.CommandContext(ctx, name, args...)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("attaching stdout: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, fmt.Errorf("attaching stderr: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("starting %s: %w", name, err)
	}

	p := &Process{cmd: cmd}
	p.running.Store(true)

	go p.drain(stdout, onOutput)
	go p.drain(stderr, onOutput)

	go func() {
		err := cmd.Wait()
		p.running.Store(false)
		if err != nil && ctx.Err() == nil {
			log.Debug().Err(err).Str("command", name).Msg("Tunnel process exited")
		}
	}()

	log.Info().
		Str("command", name).
		Strs("args", args).
		Msg("Tunnel process started")

	return p, nil
}

// Running reports whether the subprocess is still alive.
func (p *Process) Running() bool {
	return p.running.Load()
}

// Output returns everything the subprocess has written so far.
func (p *Process) Output() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return string(p.output)
}

// Stop terminates the subprocess. Safe to call after the process has already
// exited.
func (p *Process) Stop() {
	if p.cmd.Process != nil {
		_ = p.cmd.Process.Kill()
	}
}

func (p *Process) drain(r io.Reader, onOutput OutputFunc) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()

		p.mu.Lock()
		p.output = append(p.output, line...)
		p.output = append(p.output, '\n')
		p.mu.Unlock()

		if onOutput != nil {
			onOutput(line)
		}
	}
}
