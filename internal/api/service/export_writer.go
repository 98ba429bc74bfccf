package service

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"
)

// exportWriter streams rows into an output format without materializing the
// full result set.
type exportWriter interface {
	WriteHeader(columns []string) error
	WriteRow(values []interface{}) error
	Flush() error
}

func newExportWriter(format string, w io.Writer) (exportWriter, string, error) {
	switch format {
	case "csv":
		return &csvExportWriter{w: csv.NewWriter(w)}, "csv", nil
	case "json":
		return &jsonExportWriter{w: w}, "json", nil
	case "xlsx":
		return newXLSXExportWriter(w)
	default:
		return nil, "", fmt.Errorf("unsupported export format %q", format)
	}
}

func cellString(v interface{}) string {
	if v == nil {
		return ""
	}
	switch t := v.(type) {
	case string:
		return t
	case time.Time:
		return t.Format(time.RFC3339)
	default:
		return fmt.Sprint(t)
	}
}

type csvExportWriter struct {
	w *csv.Writer
}

func (c *csvExportWriter) WriteHeader(columns []string) error {
	return c.w.Write(columns)
}

func (c *csvExportWriter) WriteRow(values []interface{}) error {
	record := make([]string, len(values))
	for i, v := range values {
		record[i] = cellString(v)
	}
	return c.w.Write(record)
}

func (c *csvExportWriter) Flush() error {
	c.w.Flush()
	return c.w.Error()
}

// jsonExportWriter emits an array of column-keyed objects, one element per row.
type jsonExportWriter struct {
	w       io.Writer
	columns []string
	first   bool
}

func (j *jsonExportWriter) WriteHeader(columns []string) error {
	j.columns = columns
	j.first = true
	_, err := io.WriteString(j.w, "[")
	return err
}

func (j *jsonExportWriter) WriteRow(values []interface{}) error {
	row := make(map[string]interface{}, len(j.columns))
	for i, col := range j.columns {
		row[col] = values[i]
	}
	data, err := json.Marshal(row)
	if err != nil {
		return err
	}
	if !j.first {
		if _, err := io.WriteString(j.w, ","); err != nil {
			return err
		}
	}
	j.first = false
	_, err = j.w.Write(data)
	return err
}

func (j *jsonExportWriter) Flush() error {
	_, err := io.WriteString(j.w, "]")
	return err
}

type xlsxExportWriter struct {
	file   *excelize.File
	stream *excelize.StreamWriter
	out    io.Writer
	rowIdx int
}

func newXLSXExportWriter(w io.Writer) (*xlsxExportWriter, string, error) {
	f := excelize.NewFile()
	stream, err := f.NewStreamWriter("Sheet1")
	if err != nil {
		return nil, "", fmt.Errorf("failed to open xlsx stream writer: %w", err)
	}
	return &xlsxExportWriter{file: f, stream: stream, out: w, rowIdx: 1}, "xlsx", nil
}

func (x *xlsxExportWriter) WriteHeader(columns []string) error {
	cells := make([]interface{}, len(columns))
	for i, col := range columns {
		cells[i] = col
	}
	return x.writeCells(cells)
}

func (x *xlsxExportWriter) WriteRow(values []interface{}) error {
	cells := make([]interface{}, len(values))
	for i, v := range values {
		if v == nil {
			cells[i] = ""
			continue
		}
		switch t := v.(type) {
		case string, int64, float64, bool, time.Time:
			cells[i] = t
		default:
			cells[i] = fmt.Sprint(t)
		}
	}
	return x.writeCells(cells)
}

func (x *xlsxExportWriter) writeCells(cells []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, x.rowIdx)
	if err != nil {
		return err
	}
	if err := x.stream.SetRow(cell, cells); err != nil {
		return err
	}
	x.rowIdx++
	return nil
}

func (x *xlsxExportWriter) Flush() error {
	if err := x.stream.Flush(); err != nil {
		return err
	}
	defer x.file.Close()
	return x.file.Write(x.out)
}
