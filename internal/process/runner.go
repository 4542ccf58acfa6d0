package process

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"
	"syscall"
	"time"

	"golang.org/x/sys/unix"

	"archconv/internal/services"
)

const (
	defaultKillGrace = 2 * time.Second
	maxLineBytes     = 1 << 20
)

// Command is the program path followed by its arguments.
type Command []string

// Program returns the executable token.
func (c Command) Program() string {
	if len(c) == 0 {
		return ""
	}
	return c[0]
}

// Args returns the argument tokens.
func (c Command) Args() []string {
	if len(c) < 2 {
		return nil
	}
	return c[1:]
}

func (c Command) String() string {
	return strings.Join(c, " ")
}

// Result reports how one invocation ended. ExitCode is -1 when the process
// was terminated by a signal.
type Result struct {
	ExitCode int
	TimedOut bool
}

// Success reports whether the tool exited with code zero.
func (r Result) Success() bool {
	return !r.TimedOut && r.ExitCode == 0
}

// Spec controls a single invocation.
//
// Timeout is wall-clock from start: zero expires immediately and a negative
// value disables the bound. OnStdout and OnStderr each run on their own
// goroutine; a nil callback discards that stream. Inherit attaches the host's
// stdin/stdout/stderr instead of capturing output, so no callbacks fire.
type Spec struct {
	Timeout  time.Duration
	Inherit  bool
	OnStdout func(string)
	OnStderr func(string)
}

// Runner abstracts command execution for testability.
type Runner interface {
	Run(ctx context.Context, cmd Command, spec Spec) (Result, error)
}

// ExecRunner runs commands as child processes in their own process group.
type ExecRunner struct {
	// KillGrace is how long a process may take to exit after SIGTERM before
	// it receives SIGKILL.
	KillGrace time.Duration
}

// NewExecRunner returns a runner with the default kill grace period.
func NewExecRunner() *ExecRunner {
	return &ExecRunner{KillGrace: defaultKillGrace}
}

// Run starts the command and blocks until it exits, the timeout expires, or
// ctx is cancelled. Both output streams are drained concurrently with the
// wait so a chatty tool cannot stall on a full pipe. A line longer than
// maxLineBytes ends forwarding for that stream; the rest is discarded and the
// scan error is returned with the real exit code. A nonzero exit code is
// reported in Result, not as an error.
func (r *ExecRunner) Run(ctx context.Context, command Command, spec Spec) (Result, error) {
	if strings.TrimSpace(command.Program()) == "" {
		return Result{}, errors.New("empty command")
	}
	cmd := exec.Command(command.Program(), command.Args()...) //nolint:gosec

	var (
		wg      sync.WaitGroup
		scanErr error
		once    sync.Once
		pipes   []io.Closer
	)

	scan := func(reader io.Reader, forward func(string)) {
		defer wg.Done()
		scanner := bufio.NewScanner(reader)
		scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
		for scanner.Scan() {
			if forward != nil {
				forward(scanner.Text())
			}
		}
		if err := scanner.Err(); err != nil {
			once.Do(func() {
				scanErr = err
			})
			// Keep reading so the tool never blocks on a full pipe.
			_, _ = io.Copy(io.Discard, reader)
		}
	}

	if spec.Inherit {
		cmd.Stdin = os.Stdin
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr
		if err := cmd.Start(); err != nil {
			return Result{}, fmt.Errorf("start command: %w", err)
		}
	} else {
		// A separate group lets the kill reach helpers the tool spawned.
		cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
		stdout, err := cmd.StdoutPipe()
		if err != nil {
			return Result{}, fmt.Errorf("stdout pipe: %w", err)
		}
		stderr, err := cmd.StderrPipe()
		if err != nil {
			return Result{}, fmt.Errorf("stderr pipe: %w", err)
		}
		if err := cmd.Start(); err != nil {
			return Result{}, fmt.Errorf("start command: %w", err)
		}
		pipes = []io.Closer{stdout, stderr}
		wg.Add(2)
		go scan(stdout, spec.OnStdout)
		go scan(stderr, spec.OnStderr)
	}

	done := make(chan error, 1)
	go func() {
		wg.Wait()
		done <- cmd.Wait()
	}()

	var expired <-chan time.Time
	if spec.Timeout >= 0 {
		timer := time.NewTimer(spec.Timeout)
		defer timer.Stop()
		expired = timer.C
	}

	select {
	case err := <-done:
		return exitResult(err, scanErr)
	case <-expired:
		r.terminate(cmd, !spec.Inherit, pipes, done)
		return Result{ExitCode: -1, TimedOut: true}, nil
	case <-ctx.Done():
		r.terminate(cmd, !spec.Inherit, pipes, done)
		return Result{ExitCode: -1}, services.Wrap(services.ErrInterrupted, "process", "wait", command.Program(), ctx.Err())
	}
}

func exitResult(waitErr, scanErr error) (Result, error) {
	if waitErr != nil {
		var exitErr *exec.ExitError
		if !errors.As(waitErr, &exitErr) {
			return Result{ExitCode: -1}, fmt.Errorf("wait command: %w", waitErr)
		}
		if scanErr != nil {
			return Result{ExitCode: exitErr.ExitCode()}, fmt.Errorf("scan output: %w", scanErr)
		}
		return Result{ExitCode: exitErr.ExitCode()}, nil
	}
	if scanErr != nil {
		return Result{}, fmt.Errorf("scan output: %w", scanErr)
	}
	return Result{}, nil
}

// terminate sends SIGTERM, escalates to SIGKILL after the grace period, and
// waits for the drain/wait goroutine to finish so no goroutine outlives Run.
func (r *ExecRunner) terminate(cmd *exec.Cmd, group bool, pipes []io.Closer, done <-chan error) {
	grace := r.KillGrace
	if grace <= 0 {
		grace = defaultKillGrace
	}
	signalProcess(cmd, group, unix.SIGTERM)
	select {
	case <-done:
		return
	case <-time.After(grace):
	}
	signalProcess(cmd, group, unix.SIGKILL)
	select {
	case <-done:
		return
	case <-time.After(grace):
	}
	// A descendant outside the group may still hold the pipes open.
	for _, p := range pipes {
		_ = p.Close()
	}
	<-done
}

func signalProcess(cmd *exec.Cmd, group bool, sig unix.Signal) {
	if cmd.Process == nil {
		return
	}
	pid := cmd.Process.Pid
	if group {
		if err := unix.Kill(-pid, sig); err == nil {
			return
		}
	}
	_ = unix.Kill(pid, sig)
}
