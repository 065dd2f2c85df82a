package main

import (
	"github.com/spf13/cobra"

	"github.com/GriffinCanCode/trussfs/internal/domain/vfs"
)

func newVersionCmd(a *app) *cobra.Command {
	var numeric bool
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print the library version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if numeric {
				a.println(vfs.VersionNumber())
				return nil
			}
			a.println("trussfs", vfs.Version())
			return nil
		},
	}
	cmd.Flags().BoolVar(&numeric, "number", false, "print major*1000000 + minor*1000 + patch")
	return cmd
}
