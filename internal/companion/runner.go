// ABOUTME: Companion poll loop: login, entitlement check, fetch, execute, complete
// ABOUTME: Failed or malformed entries stay pending; completion is success-only

package companion

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/techguides/techhub/internal/queue"
)

// ErrAccessDenied is returned when the account lacks the external tools
// entitlement; the runner refuses to start polling.
var ErrAccessDenied = errors.New("account has no external tools access")

// Runner drives the companion lifecycle against one server.
type Runner struct {
	client *Client
	exec   Executor
	cfg    *Config
	logger *slog.Logger
}

// NewRunner wires a runner from its collaborators.
func NewRunner(client *Client, exec Executor, cfg *Config) *Runner {
	return &Runner{
		client: client,
		exec:   exec,
		cfg:    cfg,
		logger: slog.Default().With("component", "companion"),
	}
}

// Run executes the connect flow, then polls until ctx is cancelled: fetch
// pending commands, execute each locally, and report completion only for
// entries that succeeded. After a fetch error the next poll waits the
// longer error interval.
func (r *Runner) Run(ctx context.Context) error {
	if err := r.client.Login(ctx, r.cfg.Username, r.cfg.Password); err != nil {
		return err
	}
	r.logger.Info("logged in", "username", r.cfg.Username, "server", r.cfg.ServerURL)

	entitled, err := r.client.CheckExternalFeatures(ctx)
	if err != nil {
		return err
	}
	if !entitled {
		return ErrAccessDenied
	}

	r.logger.Info("polling command queue", "interval", r.cfg.PollInterval)
	interval := r.cfg.PollInterval
	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}

		if err := r.pollOnce(ctx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			r.logger.Warn("poll failed", "error", err)
			interval = r.cfg.ErrorInterval
		} else {
			interval = r.cfg.PollInterval
		}
		timer.Reset(interval)
	}
}

func (r *Runner) pollOnce(ctx context.Context) error {
	pending, err := r.client.FetchQueue(ctx)
	if err != nil {
		return err
	}

	for _, cmd := range pending {
		if cmd.Type != queue.TypeCommand {
			continue
		}
		r.process(ctx, cmd)
	}
	return nil
}

// process executes one queue entry. Malformed instructions are skipped and
// left pending; execution failures are logged and left pending; only a
// local success is completed back to the server.
func (r *Runner) process(ctx context.Context, cmd queue.Command) {
	inst, err := queue.ParseInstruction(cmd.Command)
	if err != nil {
		r.logger.Warn("skipping malformed instruction", "command_id", cmd.ID, "error", err)
		return
	}

	if err := r.execute(inst); err != nil {
		r.logger.Warn("local execution failed, leaving pending", "command_id", cmd.ID, "error", err)
		return
	}

	if err := r.client.CompleteTask(ctx, cmd.ID); err != nil {
		r.logger.Warn("completion report failed", "command_id", cmd.ID, "error", err)
		return
	}
	r.logger.Info("command completed", "command_id", cmd.ID)
}

func (r *Runner) execute(inst queue.Instruction) error {
	switch inst.Kind {
	case queue.KindTool:
		if inst.Action != queue.ActionLaunch {
			return fmt.Errorf("unsupported tool action %q", inst.Action)
		}
		if inst.Executable == queue.StandaloneExecutable {
			r.logger.Info("standalone tool launched", "tool_id", inst.ToolID)
			return nil
		}
		if strings.HasPrefix(inst.Executable, "http://") || strings.HasPrefix(inst.Executable, "https://") {
			return r.exec.OpenURL(inst.Executable)
		}
		return r.exec.Launch(inst.Executable)
	case queue.KindSystem:
		return r.exec.RunSystem(inst.SystemCommand)
	default:
		return queue.ErrMalformedInstruction
	}
}
