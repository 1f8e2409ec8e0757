package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/term"

	"github.com/quillterm/quillterm/config"
	"github.com/quillterm/quillterm/hooks"
	"github.com/quillterm/quillterm/loop"
	"github.com/quillterm/quillterm/localecho"
	"github.com/quillterm/quillterm/session"
)

// runInteractive wires config, the hook executor, a spawned pty session and
// the event loop together against the real controlling terminal. Grounded
// on h2's internal/overlay/overlay.go (raw-mode enter, SIGWINCH watcher
// goroutine, initial draw before the blocking run) and thicc's micro.go
// (flag-driven single-session bring-up).
func runInteractive(configPath string) error {
	logger := slog.Default()

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	executor := hooks.NewExecutor(logger)
	defer executor.Close()
	if err := loadHooks(executor, cfg); err != nil {
		return fmt.Errorf("loading hooks: %w", err)
	}

	resolver, warnings, err := cfg.KeybindResolver()
	if err != nil {
		return fmt.Errorf("loading keybindings: %w", err)
	}
	for _, w := range warnings {
		logger.Warn("keybinding collision", "detail", w)
	}

	fd := int(os.Stdin.Fd())
	cols, rows, err := term.GetSize(fd)
	if err != nil {
		cols, rows = 80, 24
	}

	sess, err := session.Spawn(cfg.Shell.DefaultShell, cfg.Shell.WorkingDir, envSlice(cfg.Shell.Env), uint16(rows), uint16(cols))
	if err != nil {
		return fmt.Errorf("spawning shell: %w", err)
	}

	sink := newTextSink(os.Stdout)

	l := loop.New(resolver, executor, sink, logger, nil)
	l.AddSession(sess.ID, sess, cfg.Terminal.ScrollbackLines, rows, cols, localecho.Heuristic)

	state, err := term.MakeRaw(fd)
	if err != nil {
		return fmt.Errorf("entering raw mode: %w", err)
	}
	defer term.Restore(fd, state)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGWINCH)
	defer signal.Stop(sigCh)
	go watchResize(sigCh, fd, sess)

	go readInput(os.Stdin, l)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigTerm := make(chan os.Signal, 1)
	signal.Notify(sigTerm, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigTerm
		l.Stop()
	}()

	return l.Run(ctx)
}

// loadHooks compiles every hook script named in the configuration into the
// executor, following spec.md §4.6's hook-point table.
func loadHooks(executor *hooks.Executor, cfg *config.Config) error {
	for point, source := range cfg.Hooks.Lifecycle {
		if err := executor.LoadHook(hooks.Point(point), source); err != nil {
			return fmt.Errorf("hook %q: %w", point, err)
		}
	}
	for _, source := range cfg.Hooks.OutputFilters {
		if err := executor.LoadOutputFilter(source); err != nil {
			return fmt.Errorf("output filter: %w", err)
		}
	}
	for combo, source := range cfg.Hooks.CustomKeybindings {
		if err := executor.LoadCustomKeybinding(combo, source); err != nil {
			return fmt.Errorf("custom keybinding %q: %w", combo, err)
		}
	}
	return nil
}

func envSlice(env map[string]string) []string {
	out := make([]string, 0, len(env))
	for k, v := range env {
		out = append(out, k+"="+v)
	}
	return out
}

// watchResize relays SIGWINCH to the session's pty geometry, following h2's
// overlay.go SIGWINCH goroutine (poll GetSize, push into the session).
func watchResize(sigCh chan os.Signal, fd int, sess *session.Session) {
	for range sigCh {
		cols, rows, err := term.GetSize(fd)
		if err != nil {
			continue
		}
		_ = sess.Resize(uint16(rows), uint16(cols))
	}
}

// readInput feeds raw stdin bytes through decodeKey into the loop, one read
// at a time; the loop's own input queue absorbs bursts (spec.md §4.7).
func readInput(r *os.File, l *loop.Loop) {
	buf := make([]byte, 64)
	for {
		n, err := r.Read(buf)
		if err != nil {
			return
		}
		if ev := decodeKey(buf[:n]); ev != nil {
			l.PostInput(ev)
		}
	}
}
