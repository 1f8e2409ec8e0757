package session

import (
	"errors"
	"os"
	"strings"
	"testing"
	"time"
)

func TestResolveShellFallsBackToEnv(t *testing.T) {
	t.Setenv("SHELL", "/bin/zsh")
	if got := resolveShell(""); got != "/bin/zsh" {
		t.Fatalf("resolveShell(\"\") = %q, want /bin/zsh", got)
	}
	if got := resolveShell("/bin/fish"); got != "/bin/fish" {
		t.Fatalf("resolveShell override = %q, want /bin/fish", got)
	}
}

func TestResolveWorkingDirDefaultsToHome(t *testing.T) {
	if got := resolveWorkingDir("/tmp/explicit"); got != "/tmp/explicit" {
		t.Fatalf("resolveWorkingDir override = %q, want /tmp/explicit", got)
	}
	if got := resolveWorkingDir(""); got == "" {
		t.Fatalf("resolveWorkingDir(\"\") returned empty string")
	}
}

func TestClassifySpawnErr(t *testing.T) {
	cases := []struct {
		err  error
		want SpawnErrorKind
	}{
		{os.ErrNotExist, SpawnNotFound},
		{os.ErrPermission, SpawnPermission},
		{errors.New("boom"), SpawnIO},
	}
	for _, c := range cases {
		if got := classifySpawnErr(c.err); got != c.want {
			t.Errorf("classifySpawnErr(%v) = %v, want %v", c.err, got, c.want)
		}
	}
}

func TestSessionSpawnWriteReadClose(t *testing.T) {
	if _, err := os.Stat("/bin/sh"); err != nil {
		t.Skip("/bin/sh not available")
	}
	s, err := Spawn("/bin/sh", "", nil, 24, 80)
	if err != nil {
		t.Fatalf("Spawn: %v", err)
	}
	defer s.Close()

	if _, err := s.WriteInput([]byte("echo hello-session\n")); err != nil && !errors.Is(err, ErrWouldBlock) {
		t.Fatalf("WriteInput: %v", err)
	}

	var out strings.Builder
	buf := make([]byte, 4096)
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		n, ok, err := s.TryReadOutput(buf)
		if err != nil {
			t.Fatalf("TryReadOutput: %v", err)
		}
		if ok {
			out.Write(buf[:n])
			if strings.Contains(out.String(), "hello-session") {
				return
			}
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("did not observe echoed output, got: %q", out.String())
}

func TestResizeIsIdempotent(t *testing.T) {
	s := &Session{spec: Spec{Rows: 24, Cols: 80}}
	if err := s.Resize(24, 80); err != nil {
		t.Fatalf("Resize no-op: %v", err)
	}
	if s.spec.Rows != 24 || s.spec.Cols != 80 {
		t.Fatalf("geometry changed on no-op resize")
	}
}

func TestMarkCommandLifecycle(t *testing.T) {
	s := &Session{exitCode: -1}
	if s.State() != StateIdle {
		t.Fatalf("initial state = %v, want Idle", s.State())
	}
	s.MarkCommandStart("ls -la")
	if s.State() != StateRunning || s.CommandText() != "ls -la" {
		t.Fatalf("MarkCommandStart didn't update state/command")
	}
	dur := s.MarkCommandEnd(0)
	if s.State() != StateFinished {
		t.Fatalf("MarkCommandEnd didn't transition to Finished")
	}
	if dur < 0 {
		t.Fatalf("duration should be non-negative, got %v", dur)
	}
}
