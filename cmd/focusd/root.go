package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	var addrFlag string
	var tokenFlag string

	rootCmd := &cobra.Command{
		Use:           "focusd",
		Short:         "Screen activity tracker daemon and CLI",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVar(&addrFlag, "addr", "", "Daemon address (default: FOCUSD_HOST:FOCUSD_PORT)")
	rootCmd.PersistentFlags().StringVar(&tokenFlag, "token", "", "API token (default: FOCUSD_API_TOKEN)")

	client := newAPIClient(&addrFlag, &tokenFlag)

	rootCmd.AddCommand(newServeCommand())
	rootCmd.AddCommand(newStatusCommand(client))
	rootCmd.AddCommand(newTrackingCommands(client)...)
	rootCmd.AddCommand(newThemesCommand(client))
	rootCmd.AddCommand(newReloadCommand())

	return rootCmd
}
