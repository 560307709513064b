package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/scrypster/focusd/internal/config"
	"github.com/scrypster/focusd/internal/notify"
)

func newReloadCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "reload",
		Short: "Tell a running daemon to reload its settings",
		Long: "Drops a control file into the daemon's data directory. The daemon " +
			"picks it up via its filesystem watcher and re-reads persisted settings, " +
			"so this works even when the HTTP API is not reachable.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return err
			}

			writer := notify.NewCommandWriter(cfg.Storage.DataPath)
			if err := writer.Send(notify.CommandReload); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "reload requested")
			return nil
		},
	}
}
