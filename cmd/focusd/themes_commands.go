package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/scrypster/focusd/internal/importer"
	"github.com/scrypster/focusd/web/handlers"
)

func newThemesCommand(client *apiClient) *cobra.Command {
	themesCmd := &cobra.Command{
		Use:   "themes",
		Short: "Manage the classification taxonomy",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	themesCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List all themes",
		RunE: func(cmd *cobra.Command, args []string) error {
			var resp handlers.ThemesResponse
			if err := client.do("GET", "/api/themes", nil, &resp); err != nil {
				return err
			}

			rows := make([][]string, 0, len(resp.Themes))
			for _, t := range resp.Themes {
				rows = append(rows, []string{
					strconv.FormatInt(t.ID, 10), t.Category, t.Subcategory, t.Specific,
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"ID", "Category", "Subcategory", "Specific"}, rows,
				[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft}))
			return nil
		},
	})

	themesCmd.AddCommand(&cobra.Command{
		Use:   "import <file>",
		Short: "Replace the taxonomy from a YAML file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			// Parse locally first for a fast, readable failure.
			themes, err := importer.LoadThemesFile(args[0])
			if err != nil {
				return err
			}

			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			if err := client.doRaw("POST", "/api/themes/import", data, "application/x-yaml"); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d themes\n", len(themes))
			return nil
		},
	})

	themesCmd.AddCommand(&cobra.Command{
		Use:   "export <file>",
		Short: "Write the taxonomy to a YAML file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var resp handlers.ThemesResponse
			if err := client.do("GET", "/api/themes", nil, &resp); err != nil {
				return err
			}

			data, err := importer.ExportThemes(resp.Themes)
			if err != nil {
				return err
			}
			if err := os.WriteFile(args[0], data, 0o600); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "exported %d themes to %s\n", len(resp.Themes), args[0])
			return nil
		},
	})

	return themesCmd
}
