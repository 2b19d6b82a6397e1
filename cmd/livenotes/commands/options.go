package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"livenotes/internal"
)

var optionsFlags struct {
	relative bool
	offset   int64
}

var optionsCmd = &cobra.Command{
	Use:   "options",
	Short: "Show or change the export time options",
	Long: `Show the export options. Passing --relative or --offset changes them:
--relative renders times as the offset from the live start, --offset shifts
every rendered time by the given number of seconds.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withCore(cmd, func(ctx context.Context, core *internal.Core) error {
			opts := core.Options.Get()
			changed := false
			if cmd.Flags().Changed("relative") {
				opts.UseRelativeTime = optionsFlags.relative
				changed = true
			}
			if cmd.Flags().Changed("offset") {
				opts.TimeOffsetSeconds = optionsFlags.offset
				changed = true
			}
			if changed {
				if err := core.Options.Set(ctx, opts); err != nil {
					return err
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "relative: %t\noffset: %ds\n", opts.UseRelativeTime, opts.TimeOffsetSeconds)
			return nil
		})
	},
}

var usageCmd = &cobra.Command{
	Use:   "usage",
	Short: "Show the selected storage backend and its disk usage",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withCore(cmd, func(ctx context.Context, core *internal.Core) error {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "backend: %s\nfallback: %t\n", core.Backend.Kind(), core.Backend.IsFallback())
			usage, err := core.Backend.Usage(ctx)
			if err != nil {
				fmt.Fprintln(out, "usage: unavailable")
				return nil
			}
			fmt.Fprintf(out, "used: %d bytes\n", usage.UsedBytes)
			if usage.QuotaBytes > 0 {
				fmt.Fprintf(out, "quota: %d bytes\n", usage.QuotaBytes)
			}
			return nil
		})
	},
}

func init() {
	optionsCmd.Flags().BoolVar(&optionsFlags.relative, "relative", false, "render times relative to the live start")
	optionsCmd.Flags().Int64Var(&optionsFlags.offset, "offset", 0, "seconds added to every rendered time")
	rootCmd.AddCommand(optionsCmd)
	rootCmd.AddCommand(usageCmd)
}
