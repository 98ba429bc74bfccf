package main

import (
	"errors"

	"github.com/genaimavericks/datapuur-export/client"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var previewCmd = &cobra.Command{
	Use:   "preview <dataset-id>",
	Short: "Show a page of dataset rows",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id := args[0]
		page, _ := cmd.Flags().GetInt("page")

		c := newClient()
		var err error
		if page > 1 {
			if _, err = c.Preview(cmd.Context(), id); err == nil {
				_, err = c.SetPage(cmd.Context(), id, page)
			}
		} else {
			_, err = c.Preview(cmd.Context(), id)
		}
		if err != nil {
			return err
		}
		return renderSession(c, id)
	},
}

var filterCmd = &cobra.Command{
	Use:   "filter <dataset-id>",
	Short: "Preview a dataset with a column filter applied",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id := args[0]
		column, _ := cmd.Flags().GetString("column")
		operator, _ := cmd.Flags().GetString("operator")
		value, _ := cmd.Flags().GetString("value")
		page, _ := cmd.Flags().GetInt("page")

		c := newClient()
		_, err := c.ApplyFilter(cmd.Context(), id, column, operator, value)
		if errors.Is(err, client.ErrIncompleteFilter) {
			return errors.New("--column, --operator and --value are all required")
		}
		if err != nil {
			return err
		}
		if page > 1 {
			if _, err := c.SetPage(cmd.Context(), id, page); err != nil {
				return err
			}
		}
		return renderSession(c, id)
	},
}

func renderSession(c *client.Client, id string) error {
	table, err := c.RenderPreview(id)
	if err != nil {
		return err
	}
	if table.Empty {
		pterm.Println("No rows to display.")
		return nil
	}

	data := pterm.TableData{table.Columns}
	for _, row := range table.Cells {
		data = append(data, row)
	}
	if err := pterm.DefaultTable.WithHasHeader().WithData(data).Render(); err != nil {
		return err
	}
	pterm.Printfln("%s (page %d of %d)", table.RangeLabel, table.Page, table.TotalPages)
	if table.TotalNote != "" {
		pterm.Println(table.TotalNote)
	}
	return nil
}

func init() {
	previewCmd.Flags().Int("page", 1, "preview page")
	filterCmd.Flags().String("column", "", "column to filter on")
	filterCmd.Flags().String("operator", "", "one of eq, neq, gt, lt, gte, lte, contains")
	filterCmd.Flags().String("value", "", "value to compare against")
	filterCmd.Flags().Int("page", 1, "preview page")
	rootCmd.AddCommand(previewCmd, filterCmd)
}
