package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"livenotes/internal"
	"livenotes/internal/services"
)

var deleteCmd = &cobra.Command{
	Use:   "delete <session-id>",
	Short: "Delete a session; deleting the last one deletes the broadcaster",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRoom(cmd, func(ctx context.Context, core *internal.Core, room *services.RoomService) error {
			outcome, err := room.DeleteSessionByID(ctx, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s deleted\n", outcome)
			return nil
		})
	},
}

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every note of the room",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRoom(cmd, func(ctx context.Context, core *internal.Core, room *services.RoomService) error {
			if err := room.Clear(ctx); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "cleared")
			return nil
		})
	},
}

var gcCmd = &cobra.Command{
	Use:   "gc",
	Short: "Physically remove deleted broadcasters and sessions",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRoom(cmd, func(ctx context.Context, core *internal.Core, room *services.RoomService) error {
			stats, err := room.Compact(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "removed %d broadcasters, %d sessions\n", stats.Broadcasters, stats.Sessions)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(clearCmd)
	rootCmd.AddCommand(gcCmd)
}
