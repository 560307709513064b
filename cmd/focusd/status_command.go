package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/scrypster/focusd/web/handlers"
)

func newStatusCommand(client *apiClient) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show daemon and tracking status",
		RunE: func(cmd *cobra.Command, args []string) error {
			var status handlers.StatusResponse
			if err := client.do("GET", "/api/status", nil, &status); err != nil {
				return err
			}

			running := "stopped"
			if status.Tracker.Running {
				running = "running since " + status.Tracker.StartedAt.Local().Format(time.RFC822)
			}

			rows := [][]string{
				{"tracking", running},
				{"captures", strconv.FormatUint(status.Tracker.Captures, 10)},
				{"skipped", strconv.FormatUint(status.Tracker.Skipped, 10)},
				{"analyses", strconv.FormatUint(status.Tracker.Analyses, 10)},
				{"degraded", strconv.FormatUint(status.Tracker.Degraded, 10)},
				{"events", strconv.FormatInt(status.Events, 10)},
				{"themes", strconv.Itoa(status.Themes)},
			}
			if status.Tracker.LastActivity != "" {
				rows = append(rows, []string{"last activity", status.Tracker.LastActivity})
			}
			if status.BreakerState != "" {
				rows = append(rows, []string{"breaker", status.BreakerState})
			}

			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Field", "Value"}, rows,
				[]columnAlignment{alignLeft, alignLeft}))
			return nil
		},
	}
}

func newTrackingCommands(client *apiClient) []*cobra.Command {
	start := &cobra.Command{
		Use:   "start",
		Short: "Start tracking",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := client.do("POST", "/api/tracking/start", nil, nil); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "tracking started")
			return nil
		},
	}

	stop := &cobra.Command{
		Use:   "stop",
		Short: "Stop tracking",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := client.do("POST", "/api/tracking/stop", nil, nil); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "tracking stopped")
			return nil
		},
	}

	return []*cobra.Command{start, stop}
}
