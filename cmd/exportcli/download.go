package main

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var downloadCmd = &cobra.Command{
	Use:   "download <dataset-id>",
	Short: "Download a dataset as csv, json or xlsx",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id := args[0]
		format, _ := cmd.Flags().GetString("format")
		maxRows, _ := cmd.Flags().GetInt("max-rows")
		destDir, _ := cmd.Flags().GetString("out")
		column, _ := cmd.Flags().GetString("column")
		operator, _ := cmd.Flags().GetString("operator")
		value, _ := cmd.Flags().GetString("value")

		c := newClient()
		if column != "" || operator != "" || value != "" {
			if _, err := c.ApplyFilter(cmd.Context(), id, column, operator, value); err != nil {
				return err
			}
		}

		path, err := c.DownloadFiltered(cmd.Context(), id, format, maxRows, destDir)
		if err != nil {
			return err
		}
		pterm.Success.Printfln("Saved %s", path)
		return nil
	},
}

func init() {
	downloadCmd.Flags().String("format", "csv", "file format: csv, json or xlsx")
	downloadCmd.Flags().Int("max-rows", 0, "cap exported rows (0 = all)")
	downloadCmd.Flags().String("out", ".", "destination directory")
	downloadCmd.Flags().String("column", "", "column to filter on")
	downloadCmd.Flags().String("operator", "", "filter operator")
	downloadCmd.Flags().String("value", "", "filter value")
	rootCmd.AddCommand(downloadCmd)
}
