// Command quillterm is the thin CLI entrypoint wiring config, the hook
// executor, a pty session and the event loop together against a real
// terminal. Grounded on thicc's cmd/thicc/micro.go (flag parsing,
// crash-report recover using github.com/go-errors/errors) and h2's
// internal/cmd (a cobra command tree, internal/session/virtualterminal's
// golang.org/x/term.MakeRaw/Restore host-raw-mode dance).
package main

import (
	"fmt"
	"os"

	goerrors "github.com/go-errors/errors"
	"github.com/spf13/cobra"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			reportCrash(r)
			os.Exit(1)
		}
	}()

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// reportCrash prints a stack trace for an unrecovered panic, following
// thicc's micro.go crash-report recover handler.
func reportCrash(r any) {
	fmt.Fprintln(os.Stderr)
	fmt.Fprintln(os.Stderr, "quillterm encountered an unexpected error!")
	fmt.Fprintln(os.Stderr)
	fmt.Fprintf(os.Stderr, "Error: %v\n", r)
	fmt.Fprintln(os.Stderr)
	fmt.Fprintln(os.Stderr, "Stack trace:")
	fmt.Fprintln(os.Stderr, goerrors.Wrap(r, 2).ErrorStack())
}

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:   "quillterm",
		Short: "A scriptable terminal emulator core",
		Long:  "quillterm drives a shell inside a pty, renders it through a configurable theme and hook scripts, and exposes a keybinding-driven input layer.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInteractive(configPath)
		},
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "Path to a quillterm YAML configuration file")
	root.AddCommand(newValidateConfigCmd())
	return root
}
