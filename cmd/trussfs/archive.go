package main

import (
	"errors"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

func newArchiveCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "archive",
		Short: "Inspect zip and tar archives",
		Long: `Inspect zip, tar, tar.gz and tar.zst archives without extracting them.
The container format is detected from content, not from the file name.`,
	}
	cmd.AddCommand(newArchiveLsCmd(a), newArchiveCatCmd(a), newArchiveSizeCmd(a))
	return cmd
}

func newArchiveLsCmd(a *app) *cobra.Command {
	var (
		detailed bool
		glob     string
		format   string
	)
	cmd := &cobra.Command{
		Use:   "ls <archive>",
		Short: "List archive entries in container order",
		Long: `List archive entries in container order.

With --detailed each line is "<index> <size> <kind>:<name>". Entries whose
name would escape the extraction root are reported as "<index> 0 X:".`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := a.ctx.MountArchive(args[0])
			if err != nil {
				return err
			}
			defer a.ctx.FreeArchive(h)

			switch {
			case format != "":
				arc, err := a.ctx.Archive(h)
				if err != nil {
					return err
				}
				return a.export(arc.Entries(), format)
			case glob != "":
				return a.printList(a.ctx.ArchiveGlob(h, glob))
			case detailed:
				return a.printList(a.ctx.ArchiveListDetailed(h))
			default:
				return a.printList(a.ctx.ArchiveList(h))
			}
		},
	}
	cmd.Flags().BoolVarP(&detailed, "detailed", "l", false, "include index, size and kind")
	cmd.Flags().StringVarP(&glob, "glob", "g", "", "only entries matching a doublestar pattern")
	cmd.Flags().StringVar(&format, "format", "", "export as json, yaml or toml")
	return cmd
}

func newArchiveCatCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "cat <archive> <entry>",
		Short: "Write an entry's content to stdout",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := a.ctx.MountArchive(args[0])
			if err != nil {
				return err
			}
			defer a.ctx.FreeArchive(h)

			data, err := a.ctx.ArchiveContent(h, args[1])
			if err != nil {
				return err
			}
			_, err = a.out.Write(data)
			return err
		},
	}
}

func newArchiveSizeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "size <archive> <entry|#index>",
		Short: "Print the uncompressed size of an entry",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := a.ctx.MountArchive(args[0])
			if err != nil {
				return err
			}
			defer a.ctx.FreeArchive(h)

			var size uint64
			if raw, ok := strings.CutPrefix(args[1], "#"); ok {
				i, perr := strconv.Atoi(raw)
				if perr != nil {
					return errors.New("index must be a number after '#'")
				}
				size, err = a.ctx.ArchiveSizeByIndex(h, i)
			} else {
				size, err = a.ctx.ArchiveSizeByName(h, args[1])
			}
			if err != nil {
				return err
			}
			a.println(size)
			return nil
		},
	}
}
