package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/trussfs/internal/domain/vfs"
	"github.com/GriffinCanCode/trussfs/internal/infrastructure/config"
	"github.com/GriffinCanCode/trussfs/internal/infrastructure/logging"
	"github.com/GriffinCanCode/trussfs/internal/providers/terminal"
	"github.com/GriffinCanCode/trussfs/internal/shared/handle"
)

// app carries the state shared by every subcommand.
type app struct {
	in  io.Reader
	out io.Writer

	cfgFile string
	verbose bool

	cfg *config.Config
	log *logging.Logger
	ctx *vfs.Context
}

func newRootCmd(in io.Reader, out io.Writer) *cobra.Command {
	a := &app{in: in, out: out}

	root := &cobra.Command{
		Use:   "trussfs",
		Short: "Inspect directories, archives and file changes",
		Long: `trussfs drives a local trussfs context from the shell.

Every listing prints one entry per line in the same encodings the library
returns, so output can be piped straight into other tools.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.open,
		PersistentPostRun: func(*cobra.Command, []string) { a.close() },
	}
	root.SetIn(in)
	root.SetOut(out)

	root.PersistentFlags().StringVar(&a.cfgFile, "config", "", "YAML or TOML config file (default: TRUSSFS_* environment)")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "log to stderr at debug level")

	root.AddCommand(
		newLsCmd(a),
		newSplitCmd(a),
		newMkdirCmd(a),
		newDirsCmd(a),
		newArchiveCmd(a),
		newWatchCmd(a),
		newPromptCmd(a),
		newVersionCmd(a),
	)
	return root
}

func (a *app) open(cmd *cobra.Command, _ []string) error {
	var err error
	if a.cfgFile != "" {
		a.cfg, err = config.LoadFile(a.cfgFile)
	} else {
		a.cfg, err = config.Load()
	}
	if err != nil {
		return err
	}

	a.log = logging.NewNop()
	if a.verbose {
		lc := a.cfg.Logging
		lc.Level = "debug"
		lc.Development = true
		if a.log, err = logging.FromConfig(lc); err != nil {
			a.log.Warn("invalid logging configuration, using defaults", zap.Error(err))
		}
	}

	a.ctx = vfs.New(
		vfs.WithConfig(a.cfg),
		vfs.WithLogger(a.log),
		vfs.WithPrompter(terminal.NewPrompt(a.in, a.out)),
	)
	return nil
}

func (a *app) close() {
	if a.ctx != nil {
		if err := a.ctx.Close(); err != nil {
			a.log.Warn("context closed with errors", zap.Error(err))
		}
	}
	if a.log != nil {
		_ = a.log.Sync()
	}
}

func (a *app) println(v ...any) {
	fmt.Fprintln(a.out, v...)
}

// printList writes and frees a list handle.
func (a *app) printList(h handle.Handle, err error) error {
	if err != nil {
		return err
	}
	defer a.ctx.FreeList(h)

	items, err := a.ctx.ListItems(h)
	if err != nil {
		return err
	}
	for _, item := range items {
		a.println(item)
	}
	return nil
}
