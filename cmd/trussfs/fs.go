package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/GriffinCanCode/trussfs/internal/providers/filesystem"
)

func newLsCmd(a *app) *cobra.Command {
	var (
		filesOnly bool
		meta      bool
		format    string
	)
	cmd := &cobra.Command{
		Use:   "ls [dir]",
		Short: "List a directory",
		Long: `List a directory, one entry per line, sorted by name.

With --meta each line is "<kind> <symlink> <size>:<name>", kind being F, D
or ?. With --format json|yaml|toml the entries are exported as structured
records instead.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}
			if format != "" {
				entries, err := filesystem.ReadDir(dir, filesOnly)
				if err != nil {
					return err
				}
				return a.export(entries, format)
			}
			return a.printList(a.ctx.ListDir(dir, filesOnly, meta))
		},
	}
	cmd.Flags().BoolVarP(&filesOnly, "files-only", "f", false, "only regular files")
	cmd.Flags().BoolVarP(&meta, "meta", "m", false, "include kind, symlink flag and size")
	cmd.Flags().StringVar(&format, "format", "", "export as json, yaml or toml")
	return cmd
}

func (a *app) export(v any, format string) error {
	data, err := filesystem.Export(v, format)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%s", data)
	if len(data) > 0 && data[len(data)-1] != '\n' {
		a.println()
	}
	return nil
}

func newSplitCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "split <path>",
		Short: "Print the components of a path",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.printList(a.ctx.SplitPath(args[0]))
		},
	}
}

func newMkdirCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "mkdir <dir>...",
		Short: "Create directories and their parents",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, dir := range args {
				if err := a.ctx.MakeDirAll(dir); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func newDirsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "dirs",
		Short: "Print the working and executable directories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			wd, err := a.ctx.WorkingDir()
			if err != nil {
				return err
			}
			bin, err := a.ctx.BinaryDir()
			if err != nil {
				return err
			}
			a.println("working_dir", wd)
			a.println("binary_dir", bin)
			return nil
		},
	}
}

func newPromptCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "prompt [text]",
		Short: "Read one line from the terminal and echo it",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text := "> "
			if len(args) == 1 {
				text = args[0]
			}
			line, err := a.ctx.ReadLine(text)
			if err != nil {
				return err
			}
			a.println(line)
			return nil
		},
	}
}
