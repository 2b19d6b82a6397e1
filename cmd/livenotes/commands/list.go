package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"livenotes/internal"
	"livenotes/internal/models"
	"livenotes/internal/services"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List broadcasters and their sessions, newest session first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRoom(cmd, func(ctx context.Context, core *internal.Core, room *services.RoomService) error {
			out := cmd.OutOrStdout()
			empty := true
			for ab := range room.ListActive(ctx) {
				empty = false
				fmt.Fprintln(out, ab.Broadcaster.Name)
				for _, as := range models.SortSessionsByStartDesc(ab.Sessions) {
					fmt.Fprintf(out, "  %s  %s\n", core.Exporter.ListLabel(*as.Session), as.Session.ID)
				}
			}
			if empty {
				fmt.Fprintln(out, "no sessions")
			}
			return ctx.Err()
		})
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
}
