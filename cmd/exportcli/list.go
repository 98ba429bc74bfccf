package main

import (
	"strconv"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List datasets in the catalog",
	RunE: func(cmd *cobra.Command, args []string) error {
		page, _ := cmd.Flags().GetInt("page")
		limit, _ := cmd.Flags().GetInt("limit")
		search, _ := cmd.Flags().GetString("search")

		list, err := newClient().ListDatasets(cmd.Context(), page, limit, search)
		if err != nil {
			return err
		}

		data := pterm.TableData{{"ID", "Name", "Type", "Source", "Rows", "Uploaded"}}
		for _, d := range list.Datasets {
			rows := "-"
			if d.RowCount != nil {
				rows = strconv.FormatInt(*d.RowCount, 10)
			}
			data = append(data, []string{
				d.ID, d.Name, d.Type, d.SourceType, rows,
				d.UploadedAt.Format("2006-01-02 15:04"),
			})
		}
		if err := pterm.DefaultTable.WithHasHeader().WithData(data).Render(); err != nil {
			return err
		}
		pterm.Printfln("%d of %d dataset(s)", len(list.Datasets), list.Total)
		return nil
	},
}

func init() {
	listCmd.Flags().Int("page", 1, "catalog page")
	listCmd.Flags().Int("limit", 10, "datasets per page")
	listCmd.Flags().String("search", "", "match against dataset names")
	rootCmd.AddCommand(listCmd)
}
