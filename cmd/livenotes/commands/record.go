package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"livenotes/internal"
	"livenotes/internal/models"
	"livenotes/internal/services"
)

var recordOpts struct {
	name  string
	link  string
	title string
	start int64
	live  bool
}

var recordCmd = &cobra.Command{
	Use:   "record <text>...",
	Short: "Record a note against the current live session",
	Long: `Record a note. The broadcaster identity comes from --name, --link and
--title. --start is the live start time in epoch seconds; with --live=false
or a zero start nothing is recorded.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRoom(cmd, func(ctx context.Context, core *internal.Core, room *services.RoomService) error {
			resolver := services.StaticResolver{
				Identity: models.Identity{Name: recordOpts.name, Link: recordOpts.link, Title: recordOpts.title},
				Status:   models.LiveStatus{IsLive: recordOpts.live, StartEpochSeconds: recordOpts.start},
			}
			recorded, err := room.Annotate(ctx, resolver, strings.Join(args, " "))
			if err != nil {
				return err
			}
			if !recorded {
				fmt.Fprintln(cmd.OutOrStdout(), "not live, nothing recorded")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), "recorded")
			return nil
		})
	},
}

func init() {
	f := recordCmd.Flags()
	f.StringVar(&recordOpts.name, "name", "", "broadcaster name")
	f.StringVar(&recordOpts.link, "link", "", "broadcaster profile link")
	f.StringVar(&recordOpts.title, "title", "", "session title")
	f.Int64Var(&recordOpts.start, "start", 0, "live start time in epoch seconds")
	f.BoolVar(&recordOpts.live, "live", true, "whether the room is live")
	_ = recordCmd.MarkFlagRequired("name")
	_ = recordCmd.MarkFlagRequired("title")
	rootCmd.AddCommand(recordCmd)
}
