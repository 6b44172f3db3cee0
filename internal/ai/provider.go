package ai

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/xonecas/revel/internal/config"
)

// killGrace is how long a signalled provider subprocess is given to exit
// on its own before it is force-killed (spec.md §4.8: "cancels on user
// request by signalling the process and reaping").
const killGrace = 2 * time.Second

// Provider is one configured AI collaborator backend: a binary to spawn,
// with a fixed invocation shape (spec.md §4.8 {id, label, binary, default
// args, payload mode, optional flags}).
type Provider struct {
	cfg config.ProviderConfig
}

// ID returns the provider's configured identifier.
func (p *Provider) ID() string { return p.cfg.ID }

// Label returns the provider's display name.
func (p *Provider) Label() string { return p.cfg.Label }

// Run spawns the provider's binary, delivers payload per its configured
// input mode, and returns its raw stdout once the process exits or ctx is
// done. No PTY is allocated — the retrieved pack carries no PTY allocator
// library, so a provider that needs a terminal is a documented capability
// gap (see DESIGN.md) rather than something this method fakes.
func (p *Provider) Run(ctx context.Context, timeout time.Duration, payload string) (string, error) {
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	args := make([]string, 0, len(p.cfg.Args)+2)
	args = append(args, p.cfg.Args...)
	if p.cfg.InputMode == config.InputArg {
		if p.cfg.ArgFlag != "" {
			args = append(args, p.cfg.ArgFlag)
		}
		args = append(args, payload)
	} else if p.cfg.StdinFlag != "" {
		args = append(args, p.cfg.StdinFlag)
	}

	cmd := exec.Command(p.cfg.Binary, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if p.cfg.InputMode == config.InputStdin {
		cmd.Stdin = bytes.NewReader([]byte(payload))
	}

	if err := cmd.Start(); err != nil {
		return "", fmt.Errorf("ai: spawn %s: %w", p.cfg.Binary, err)
	}

	waitErr := waitOrCancel(runCtx, cmd)
	if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
		return stdout.String(), fmt.Errorf("ai: provider %s timed out after %s", p.cfg.ID, timeout)
	}
	if errors.Is(runCtx.Err(), context.Canceled) {
		return stdout.String(), fmt.Errorf("ai: provider %s cancelled", p.cfg.ID)
	}
	if waitErr != nil {
		log.Warn().Str("provider", p.cfg.ID).Err(waitErr).Str("stderr", stderr.String()).Msg("ai: provider exited with error")
		return stdout.String(), fmt.Errorf("ai: provider %s: %w", p.cfg.ID, waitErr)
	}
	return stdout.String(), nil
}

// waitOrCancel waits for cmd to exit, signalling it with SIGTERM (then
// Kill after killGrace) if ctx is cancelled or times out first.
func waitOrCancel(ctx context.Context, cmd *exec.Cmd) error {
	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		_ = cmd.Process.Signal(syscall.SIGTERM)
		select {
		case err := <-done:
			return err
		case <-time.After(killGrace):
			_ = cmd.Process.Kill()
			return <-done
		}
	}
}
