// Package session owns a single child shell process attached to a
// pseudo-terminal: spawn, non-blocking write, non-blocking read-into-buffer,
// and resize. Grounded on thicc's internal/terminal/panel.go (NewPanel,
// readLoop, Write, Resize, Close, RespawnShell) — the teacher
// (go-headless-term) is itself headless and has no process-spawning code,
// so this component is learned from the rest of the pack per SPEC_FULL.md.
//
// Unlike panel.go's always-blocking background readLoop goroutine, Session
// exposes non-blocking TryReadOutput/WriteInput so a single-threaded event
// loop (spec.md §5) can poll it without a dedicated reader goroutine. Deadline
// polling (a read deadline one millisecond ahead) rather than a second thread is the
// chosen mechanism on platforms where creack/pty's file descriptor supports
// it, matching spec.md's preference for a non-blocking call over a
// thread-bridged channel.
package session

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"os/user"
	"runtime"
	"sync"
	"time"

	"github.com/creack/pty"
	"github.com/google/uuid"
)

// SpawnErrorKind discriminates why a shell executable could not be launched.
type SpawnErrorKind int

const (
	SpawnNotFound SpawnErrorKind = iota
	SpawnPermission
	SpawnIO
)

func (k SpawnErrorKind) String() string {
	switch k {
	case SpawnNotFound:
		return "not_found"
	case SpawnPermission:
		return "permission"
	default:
		return "io"
	}
}

// SpawnError is returned by Spawn when the child shell cannot be launched.
type SpawnError struct {
	Kind SpawnErrorKind
	Err  error
}

func (e *SpawnError) Error() string {
	return fmt.Sprintf("session: spawn failed (%v): %v", e.Kind, e.Err)
}

func (e *SpawnError) Unwrap() error { return e.Err }

// ErrWouldBlock is returned by WriteInput when the pty master is not
// currently writable; the caller should retry on the next loop iteration.
var ErrWouldBlock = errors.New("session: write would block")

// CommandState is the session's command-lifecycle state, driven by OSC 133
// shell-integration marks (spec.md §3).
type CommandState int

const (
	StateIdle CommandState = iota
	StateRunning
	StateFinished
)

// RespawnPolicy controls whether a Session restarts its child shell after
// the process exits, adapted from thicc's Panel.autoRespawn /
// Panel.RespawnShell (SPEC_FULL.md §3 "Auto-respawn" supplement).
type RespawnPolicy int

const (
	// RespawnNever leaves the session dead on child exit (default for an
	// interactive login shell).
	RespawnNever RespawnPolicy = iota
	// RespawnAlways relaunches the same shell_executable/working_dir/env
	// whenever the child exits, e.g. for a wrapped AI-tool subprocess.
	RespawnAlways
)

// Spec is the frozen geometry and launch parameters for a Session, set once
// at Spawn and reused by Respawn.
type Spec struct {
	ShellExecutable string
	WorkingDir      string
	Env             []string
	Rows, Cols      uint16
	Respawn         RespawnPolicy
}

// Session owns a child process plus its pty descriptors. Not safe for
// concurrent use — it is driven exclusively by the event-loop thread
// (spec.md §5).
type Session struct {
	ID   string
	spec Spec

	mu      sync.Mutex
	cmd     *exec.Cmd
	pty     *os.File
	running bool

	state       CommandState
	commandText string
	startedAt   time.Time
	exitCode    int

	ioFailures int
}

// Spawn launches shellExecutable with the given working directory,
// environment and initial geometry. If shellExecutable is empty it is
// auto-detected from $SHELL (falling back to a platform default), and
// workingDir defaults to the user's home directory, per spec.md §3's
// Configuration table.
func Spawn(shellExecutable, workingDir string, env []string, rows, cols uint16) (*Session, error) {
	spec := Spec{
		ShellExecutable: resolveShell(shellExecutable),
		WorkingDir:      resolveWorkingDir(workingDir),
		Env:             env,
		Rows:            rows,
		Cols:            cols,
	}
	s := &Session{ID: uuid.NewString(), spec: spec, exitCode: -1}
	if err := s.start(); err != nil {
		return nil, err
	}
	return s, nil
}

func resolveShell(shell string) string {
	if shell != "" {
		return shell
	}
	if env := os.Getenv("SHELL"); env != "" {
		return env
	}
	if runtime.GOOS == "windows" {
		return "powershell.exe"
	}
	return "/bin/sh"
}

func resolveWorkingDir(dir string) string {
	if dir != "" {
		return dir
	}
	if u, err := user.Current(); err == nil && u.HomeDir != "" {
		return u.HomeDir
	}
	return "."
}

func (s *Session) start() error {
	cmd := exec.Command(s.spec.ShellExecutable)
	cmd.Dir = s.spec.WorkingDir
	cmd.Env = append(append([]string{}, os.Environ()...), s.spec.Env...)
	cmd.Env = append(cmd.Env, "TERM=xterm-256color")

	ptmx, err := pty.StartWithSize(cmd, &pty.Winsize{Rows: s.spec.Rows, Cols: s.spec.Cols})
	if err != nil {
		return &SpawnError{Kind: classifySpawnErr(err), Err: err}
	}

	s.mu.Lock()
	s.cmd = cmd
	s.pty = ptmx
	s.running = true
	s.state = StateIdle
	s.mu.Unlock()
	return nil
}

func classifySpawnErr(err error) SpawnErrorKind {
	if errors.Is(err, exec.ErrNotFound) || errors.Is(err, os.ErrNotExist) {
		return SpawnNotFound
	}
	if errors.Is(err, os.ErrPermission) {
		return SpawnPermission
	}
	return SpawnIO
}

// WriteInput enqueues bytes to the pty master. It never blocks the caller:
// if the master isn't writable within a near-zero deadline, it returns
// ErrWouldBlock and the caller should retry next tick (spec.md §4.1).
func (s *Session) WriteInput(b []byte) (int, error) {
	s.mu.Lock()
	f, running := s.pty, s.running
	s.mu.Unlock()
	if !running || f == nil {
		return 0, io.ErrClosedPipe
	}

	_ = f.SetWriteDeadline(time.Now().Add(time.Millisecond))
	n, err := f.Write(b)
	_ = f.SetWriteDeadline(time.Time{})
	if err != nil {
		if isTimeout(err) {
			return n, ErrWouldBlock
		}
		return n, s.fatal(err)
	}
	return n, nil
}

// TryReadOutput performs a non-blocking read into buf (typically a reused
// 4 KiB buffer, per spec.md §4.1). It returns (n, true, nil) with 1 <= n <=
// len(buf) when bytes were available, and (0, false, nil) when none were or
// buf has zero length. Child exit (io.EOF, or a read of exactly 0 bytes) and
// other non-timeout errors return an *IoFatalError and mark the session
// dead; once dead, every later call returns io.ErrClosedPipe.
func (s *Session) TryReadOutput(buf []byte) (int, bool, error) {
	if len(buf) == 0 {
		return 0, false, nil
	}
	s.mu.Lock()
	f, running := s.pty, s.running
	s.mu.Unlock()
	if !running || f == nil {
		return 0, false, io.ErrClosedPipe
	}

	_ = f.SetReadDeadline(time.Now().Add(time.Millisecond))
	n, err := f.Read(buf)
	_ = f.SetReadDeadline(time.Time{})
	if err != nil {
		if isTimeout(err) {
			return 0, false, nil
		}
		if err == io.EOF {
			return 0, false, s.fatal(io.EOF)
		}
		return 0, false, s.fatal(err)
	}
	if n == 0 {
		return 0, false, s.fatal(io.EOF)
	}
	return n, true, nil
}

func isTimeout(err error) bool {
	var ne interface{ Timeout() bool }
	return errors.As(err, &ne) && ne.Timeout()
}

// fatal marks the session dead after exhausting the transient-error retry
// budget (spec.md §7: "Temporary errors are retried up to 3 times before
// escalating"). Non-timeout read/write errors are always treated as fatal
// immediately since the pty master itself is no longer usable.
func (s *Session) fatal(err error) error {
	s.mu.Lock()
	s.ioFailures++
	failures := s.ioFailures
	s.mu.Unlock()
	if failures < 3 && errors.Is(err, os.ErrDeadlineExceeded) {
		return ErrWouldBlock
	}
	s.mu.Lock()
	s.running = false
	s.mu.Unlock()
	return &IoFatalError{Err: err}
}

// IoFatalError wraps a non-recoverable pty I/O error. The event loop logs it
// and stops reading that session for the current tick; it does not remove
// the session or notify the user.
type IoFatalError struct{ Err error }

func (e *IoFatalError) Error() string { return fmt.Sprintf("session: fatal io error: %v", e.Err) }
func (e *IoFatalError) Unwrap() error { return e.Err }

// Resize sends a window-size change to the pty. Idempotent: repeated calls
// with identical geometry are no-ops.
func (s *Session) Resize(rows, cols uint16) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.spec.Rows == rows && s.spec.Cols == cols {
		return nil
	}
	s.spec.Rows, s.spec.Cols = rows, cols
	if s.pty == nil {
		return nil
	}
	return pty.Setsize(s.pty, &pty.Winsize{Rows: rows, Cols: cols})
}

// Close waits with a short bounded timeout for child exit, then releases
// descriptors (spec.md §4.1, §5: 200ms then force).
func (s *Session) Close() error {
	s.mu.Lock()
	cmd := s.cmd
	f := s.pty
	s.running = false
	s.mu.Unlock()

	if f != nil {
		_ = f.Close()
	}
	if cmd == nil || cmd.Process == nil {
		return nil
	}

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()
	select {
	case <-done:
	case <-time.After(200 * time.Millisecond):
		_ = cmd.Process.Kill()
		<-done
	}
	return nil
}

// Respawn restarts the child shell using the Session's original Spec
// (SPEC_FULL.md §3 "Auto-respawn", adapted from thicc's RespawnShell). The
// caller is responsible for clearing any grid/local-echo state that belongs
// to the old process.
func (s *Session) Respawn() error {
	_ = s.Close()
	s.mu.Lock()
	s.ioFailures = 0
	s.exitCode = -1
	s.mu.Unlock()
	return s.start()
}

// ShouldAutoRespawn reports whether this session's policy calls for
// Respawn after the current child exits.
func (s *Session) ShouldAutoRespawn() bool {
	return s.spec.Respawn == RespawnAlways
}

// IsRunning reports whether the child process is currently alive.
func (s *Session) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// State returns the session's current command-lifecycle state.
func (s *Session) State() CommandState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// MarkCommandStart transitions to Running, recording the command text and
// start time, driven by an OSC 133;C mark.
func (s *Session) MarkCommandStart(command string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = StateRunning
	s.commandText = command
	s.startedAt = time.Now()
}

// MarkCommandEnd transitions to Finished with the given exit code, driven
// by an OSC 133;D mark, and returns the elapsed duration since
// MarkCommandStart (0 if no start was recorded).
func (s *Session) MarkCommandEnd(exitCode int) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	var dur time.Duration
	if !s.startedAt.IsZero() {
		dur = time.Since(s.startedAt)
	}
	s.state = StateFinished
	s.exitCode = exitCode
	return dur
}

// CommandText returns the command text recorded by the most recent
// MarkCommandStart.
func (s *Session) CommandText() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.commandText
}

// WorkingDir returns the directory the session was launched in (used by
// session save/restore, an external collaborator per spec.md §6).
func (s *Session) WorkingDir() string {
	return s.spec.WorkingDir
}
