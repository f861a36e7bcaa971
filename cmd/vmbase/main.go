package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/vango-dev/vmbase/internal/config"
	vmerrors "github.com/vango-dev/vmbase/internal/errors"
	"github.com/vango-dev/vmbase/pkg/diag"
	"github.com/vango-dev/vmbase/pkg/viewmodel"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const banner = `
  ╦  ╦╔╦╗┌┐ ┌─┐┌─┐┌─┐
  ╚╗╔╝║║║├┴┐├─┤└─┐├┤
   ╚╝ ╩ ╩└─┘┴ ┴└─┘└─┘
`

// app is the state shared by all commands once flags are parsed.
type app struct {
	configPath string
	cfg        *config.Config
	logger     *slog.Logger
}

// load resolves the configuration and builds the logger.
func (a *app) load(stderr io.Writer) error {
	cfg, err := config.Resolve(a.configPath)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = cfg.NewLogger(stderr)
	slog.SetDefault(a.logger)
	return nil
}

// registry returns a diagnostics registry configured from the config, and
// the environment reporting to it.
func (a *app) registry(opts ...diag.Option) (*diag.Registry, *viewmodel.Env) {
	opts = append(opts,
		diag.WithStacks(a.cfg.Diagnostics.CaptureStacks),
		diag.WithLogger(a.logger.With("component", "diag")),
	)
	reg := diag.NewRegistry(opts...)
	return reg, reg.Env(a.logger.With("component", "viewmodel"))
}

func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "vmbase",
		Short: "Managed view models for Go",
		Long: `vmbase demonstrates and inspects managed view models.

View models observe a change-notifying item, re-announce dependent
properties when it changes and own child view models that are
replaced whenever the property they came from is announced.

  • demo      run the sample scenarios and print a registry dump
  • serve     serve live diagnostics over HTTP and WebSocket
  • snapshot  upload a registry dump to S3`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "version" {
				return nil
			}
			return a.load(cmd.ErrOrStderr())
		},
	}

	rootCmd.PersistentFlags().StringVarP(&a.configPath, "config", "c", "",
		"Path to "+config.ConfigFileName+" (default: ./"+config.ConfigFileName+" if present)")

	rootCmd.AddCommand(
		demoCmd(a),
		serveCmd(a),
		snapshotCmd(a),
		versionCmd(),
	)
	return rootCmd
}

func versionCmd() *cobra.Command {
	var short bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			if short {
				fmt.Fprintln(cmd.OutOrStdout(), version)
				return
			}
			fmt.Fprintf(cmd.OutOrStdout(), "vmbase %s (commit %s, built %s) %s %s/%s\n",
				version, commit, date, runtime.Version(), runtime.GOOS, runtime.GOARCH)
		},
	}

	cmd.Flags().BoolVarP(&short, "short", "s", false, "Print only the version number")

	return cmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		if vmerrors.Code(err) != "" {
			vmerrors.Fprint(os.Stderr, err)
		} else {
			fmt.Fprintf(os.Stderr, "\033[31mError:\033[0m %s\n", err)
		}
		os.Exit(1)
	}
}

// printBanner prints the ASCII art banner.
func printBanner(w io.Writer) {
	fmt.Fprint(w, banner)
}

// success prints a success message.
func success(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "\033[32m✓\033[0m %s\n", fmt.Sprintf(format, args...))
}

// info prints an info message.
func info(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "  %s\n", fmt.Sprintf(format, args...))
}

// warn prints a warning message.
func warn(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "\033[33m⚠\033[0m %s\n", fmt.Sprintf(format, args...))
}
