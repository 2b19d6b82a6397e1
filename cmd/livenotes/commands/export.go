package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"livenotes/internal"
	"livenotes/internal/services"
)

var exportDir string

var exportCmd = &cobra.Command{
	Use:   "export <session-id>",
	Short: "Export a session as a plain-text transcript",
	Long: `Export a session. The transcript is written to stdout unless --out
names a directory, in which case it is saved as [name][title][date].txt.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRoom(cmd, func(ctx context.Context, core *internal.Core, room *services.RoomService) error {
			session, name, err := room.Session(args[0])
			if err != nil {
				return err
			}
			text := core.Exporter.Render(session, name, core.Options.Get())

			if exportDir == "" {
				_, err = fmt.Fprint(cmd.OutOrStdout(), text)
				return err
			}
			path := filepath.Join(exportDir, core.Exporter.FileName(session, name))
			if err := os.WriteFile(path, []byte(text), 0644); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		})
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportDir, "out", "o", "", "directory to write the transcript file into")
	rootCmd.AddCommand(exportCmd)
}
