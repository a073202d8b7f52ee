// cmd/cli/main.go
package main

import (
	"fmt"
	"os"

	_ "wigglebot/internal/responses/awaken"
	_ "wigglebot/internal/responses/basic"
	_ "wigglebot/internal/responses/cancel"
	_ "wigglebot/internal/responses/gpt"
	_ "wigglebot/internal/responses/help"
	_ "wigglebot/internal/responses/itsyou"
	_ "wigglebot/internal/responses/mock"
	_ "wigglebot/internal/responses/points"
	_ "wigglebot/internal/responses/rate"
	_ "wigglebot/internal/responses/register"

	"wigglebot/internal/config"
	"wigglebot/internal/logging"

	"github.com/spf13/cobra"
)

type cli struct {
	cfg    *config.Config
	closer interface{ Close() error }
}

func newRootCmd() *cobra.Command {
	c := &cli{}
	root := &cobra.Command{
		Use:   "wigglebot-cli",
		Short: "Offline console and admin tools for wigglebot",
		Long: `wigglebot-cli runs the bot against an in-memory chat so commands can be
tried without Discord, and manages the state the Discord bot reads.

Configuration comes from the same environment variables (and .env file) as
the Discord bot.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.New()
			if err != nil {
				return err
			}
			c.cfg = cfg
			c.closer = logging.Setup(cfg.LogLevel, cfg.LogFile)
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if c.closer != nil {
				return c.closer.Close()
			}
			return nil
		},
	}
	root.AddCommand(c.chatCmd(), c.selfawareCmd(), c.promptsCmd())
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
