package main

import (
	"context"

	"github.com/spf13/cobra"
)

func newWatchCmd(a *app) *cobra.Command {
	var (
		recursive bool
		ignore    []string
	)
	cmd := &cobra.Command{
		Use:   "watch <path>...",
		Short: "Print change records until interrupted",
		Long: `Watch one or more paths and print a "KIND:path" line per change, KIND
being ADD, MOD, REM, REN or ERR. Runs until interrupted or the watcher fails.

--ignore takes doublestar patterns relative to each watched root and
replaces the configured ignore list.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("ignore") {
				a.cfg.Watcher.Ignore = ignore
			}
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			h, err := a.ctx.Watch(ctx, args[0], recursive)
			if err != nil {
				return err
			}
			defer a.ctx.FreeWatcher(h)
			for _, path := range args[1:] {
				if err := a.ctx.WatchAugment(ctx, h, path, recursive); err != nil {
					return err
				}
			}

			w, err := a.ctx.Watcher(h)
			if err != nil {
				return err
			}
			for {
				select {
				case <-ctx.Done():
					return nil
				case <-w.Done():
					for _, rec := range w.PollStrings() {
						a.println(rec)
					}
					return w.Err()
				case <-w.Notify():
					for _, rec := range w.PollStrings() {
						a.println(rec)
					}
				}
			}
		},
	}
	cmd.Flags().BoolVarP(&recursive, "recursive", "r", false, "watch subdirectories too")
	cmd.Flags().StringSliceVar(&ignore, "ignore", nil, "patterns to skip (overrides config)")
	return cmd
}
