package client

import (
	"encoding/json"
	"fmt"
)

// Table is the bounded, render-ready form of a preview page. Cells are
// already coerced to strings; consumers only lay them out.
type Table struct {
	Columns []string
	Cells   [][]string
	// RangeLabel is the 1-based inclusive row range visible on this page,
	// e.g. "16-30 of 500".
	RangeLabel string
	// TotalNote carries the server's true row count when it exceeds the
	// preview ceiling, empty otherwise.
	TotalNote string
	// Page and TotalPages let consumers disable pagination controls at
	// either bound.
	Page       int
	TotalPages int
	Loading    bool
	Empty      bool
}

// RenderPreview builds the table for a dataset's current session state. A
// loading session renders as Loading; a session without data renders Empty.
func (c *Client) RenderPreview(id string) (*Table, error) {
	sess, ok := c.sessions.lookup(id)
	if !ok {
		return nil, ErrNoSession
	}
	view := sess.view()

	if view.Loading {
		return &Table{Loading: true}, nil
	}
	if view.Preview == nil || len(view.Preview.Columns) == 0 {
		return &Table{Empty: true}, nil
	}

	preview := view.Preview
	cells := make([][]string, 0, len(preview.Rows))
	for _, row := range preview.Rows {
		line := make([]string, len(preview.Columns))
		for i, col := range preview.Columns {
			value, present := row[col]
			if !present {
				line[i] = "NULL"
				continue
			}
			line[i] = CellText(value)
		}
		cells = append(cells, line)
	}

	lo, hi := RowRange(preview.Page, preview.PageSize, c.maxPreviewRows, preview.TotalRows)
	table := &Table{
		Columns:    preview.Columns,
		Cells:      cells,
		Page:       preview.Page,
		TotalPages: preview.TotalPages,
	}
	if hi >= lo {
		visible := preview.TotalRows
		if visible > int64(c.maxPreviewRows) {
			visible = int64(c.maxPreviewRows)
		}
		table.RangeLabel = fmt.Sprintf("%d-%d of %d", lo, hi, visible)
	} else {
		table.RangeLabel = "0 rows"
	}
	if preview.TotalRows > int64(c.maxPreviewRows) {
		table.TotalNote = fmt.Sprintf("dataset has %d rows, preview limited to %d", preview.TotalRows, c.maxPreviewRows)
	}
	return table, nil
}

// CellText coerces one row value into display text: nulls render as the NULL
// marker, structured values as compact JSON, everything else by string
// conversion.
func CellText(v interface{}) string {
	if v == nil {
		return "NULL"
	}
	switch t := v.(type) {
	case string:
		return t
	case map[string]interface{}, []interface{}:
		data, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(data)
	case float64:
		// JSON numbers decode as float64; keep integers unadorned
		if t == float64(int64(t)) {
			return fmt.Sprintf("%d", int64(t))
		}
		return fmt.Sprintf("%g", t)
	default:
		return fmt.Sprint(t)
	}
}
