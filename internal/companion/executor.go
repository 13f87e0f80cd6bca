// ABOUTME: Local action executor: launch programs, run shell commands, open URLs
// ABOUTME: The "standalone" executable is a log-only success by contract

package companion

import (
	"fmt"
	"log/slog"
	"os/exec"
	"runtime"
	"strings"

	"github.com/pkg/browser"
)

// Executor performs the local side of a queued instruction.
type Executor interface {
	// Launch starts the executable without waiting for it to exit.
	Launch(executable string) error
	// RunSystem runs a shell command and waits for it.
	RunSystem(command string) error
	// OpenURL opens the URL in the default browser.
	OpenURL(url string) error
}

// LocalExecutor is the real implementation backed by os/exec and the
// system browser.
type LocalExecutor struct {
	logger *slog.Logger
}

// NewLocalExecutor creates the real executor.
func NewLocalExecutor() *LocalExecutor {
	return &LocalExecutor{logger: slog.Default().With("component", "executor")}
}

func (e *LocalExecutor) Launch(executable string) error {
	cmd := exec.Command(executable)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("launching %s: %w", executable, err)
	}
	e.logger.Info("launched", "executable", executable, "pid", cmd.Process.Pid)

	// Detach: reap the process in the background so it never zombies
	go func() { _ = cmd.Wait() }()
	return nil
}

func (e *LocalExecutor) RunSystem(command string) error {
	shell, flag := "sh", "-c"
	if runtime.GOOS == "windows" {
		shell, flag = "cmd", "/C"
	}

	out, err := exec.Command(shell, flag, command).CombinedOutput()
	if err != nil {
		return fmt.Errorf("running %q: %w: %s", command, err, strings.TrimSpace(string(out)))
	}
	e.logger.Info("system command finished", "command", command)
	return nil
}

func (e *LocalExecutor) OpenURL(url string) error {
	if err := browser.OpenURL(url); err != nil {
		return fmt.Errorf("opening %s: %w", url, err)
	}
	e.logger.Info("opened url", "url", url)
	return nil
}
