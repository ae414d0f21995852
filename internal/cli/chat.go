package cli

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/jakco/support-router/internal/app"
	"github.com/jakco/support-router/internal/config"
	"github.com/jakco/support-router/internal/tui"
)

func newChatCommand(logger *slog.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Chat with the router locally and inspect its decisions",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.FromEnv()
			runtime, err := app.New(cfg, logger)
			if err != nil {
				return err
			}
			defer runtime.Close()

			return tui.Run(runtime.Engine())
		},
	}
}
