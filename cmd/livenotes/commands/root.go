package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"livenotes/internal"
	"livenotes/internal/di"
	"livenotes/internal/services"
	"livenotes/internal/structures"
)

var (
	flags  structures.CliFlags
	roomID string

	// initCore is swapped in tests.
	initCore = di.InitCore
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "livenotes",
	Short: "Timestamped notes for live broadcasts",
	Long: `livenotes records timestamped notes against the live session of a
broadcaster and exports them as plain-text transcripts.

Every command works on one room (--room). Notes are kept per broadcaster
and per session; deleted sessions stay in the store until "gc" runs.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
	FParseErrWhitelist: cobra.FParseErrWhitelist{},
}

// Execute runs the command tree. Errors are printed once to stderr.
func Execute() error {
	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
	return err
}

// SetVersionInfo sets the version information for the CLI
func SetVersionInfo(v, c, d string) {
	rootCmd.Version = fmt.Sprintf("%s (commit: %s, built: %s)", v, c, d)
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flags.ConfigPath, "config", "c", "config.yaml", "path to the configuration file")
	rootCmd.PersistentFlags().BoolVarP(&flags.DebugMode, "debug", "d", false, "log to the console as well")
	rootCmd.PersistentFlags().StringVarP(&roomID, "room", "r", "", "room id the command works on")
}

// withCore builds the core for one command and always releases it.
func withCore(cmd *cobra.Command, fn func(ctx context.Context, core *internal.Core) error) error {
	core, err := initCore(&flags)
	if err != nil {
		return err
	}
	defer core.Close()
	return fn(cmd.Context(), core)
}

// withRoom resolves --room on top of withCore.
func withRoom(cmd *cobra.Command, fn func(ctx context.Context, core *internal.Core, room *services.RoomService) error) error {
	return withCore(cmd, func(ctx context.Context, core *internal.Core) error {
		room, err := core.Rooms.Room(ctx, roomID)
		if err != nil {
			return err
		}
		return fn(ctx, core, room)
	})
}
