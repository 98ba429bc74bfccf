package service

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestNewExportWriter_UnsupportedFormat(t *testing.T) {
	_, _, err := newExportWriter("parquet", &bytes.Buffer{})
	assert.Error(t, err)
}

func TestCSVExportWriter(t *testing.T) {
	var buf bytes.Buffer
	w, ext, err := newExportWriter("csv", &buf)
	require.NoError(t, err)
	assert.Equal(t, "csv", ext)

	require.NoError(t, w.WriteHeader([]string{"id", "name", "note"}))
	require.NoError(t, w.WriteRow([]interface{}{int64(1), "alice", nil}))
	require.NoError(t, w.WriteRow([]interface{}{int64(2), "with,comma", "x"}))
	require.NoError(t, w.Flush())

	assert.Equal(t, "id,name,note\n1,alice,\n2,\"with,comma\",x\n", buf.String())
}

func TestCSVExportWriter_FormatsTime(t *testing.T) {
	var buf bytes.Buffer
	w, _, err := newExportWriter("csv", &buf)
	require.NoError(t, err)

	ts := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, w.WriteHeader([]string{"uploaded_at"}))
	require.NoError(t, w.WriteRow([]interface{}{ts}))
	require.NoError(t, w.Flush())

	assert.Equal(t, "uploaded_at\n2024-03-01T12:00:00Z\n", buf.String())
}

func TestJSONExportWriter(t *testing.T) {
	var buf bytes.Buffer
	w, ext, err := newExportWriter("json", &buf)
	require.NoError(t, err)
	assert.Equal(t, "json", ext)

	require.NoError(t, w.WriteHeader([]string{"id", "name"}))
	require.NoError(t, w.WriteRow([]interface{}{int64(1), "alice"}))
	require.NoError(t, w.WriteRow([]interface{}{int64(2), nil}))
	require.NoError(t, w.Flush())

	var rows []map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rows))
	require.Len(t, rows, 2)
	assert.Equal(t, "alice", rows[0]["name"])
	assert.Equal(t, float64(2), rows[1]["id"])
	assert.Nil(t, rows[1]["name"])
}

func TestJSONExportWriter_EmptyResult(t *testing.T) {
	var buf bytes.Buffer
	w, _, err := newExportWriter("json", &buf)
	require.NoError(t, err)

	require.NoError(t, w.WriteHeader([]string{"id"}))
	require.NoError(t, w.Flush())
	assert.Equal(t, "[]", buf.String())
}

func TestXLSXExportWriter(t *testing.T) {
	var buf bytes.Buffer
	w, ext, err := newExportWriter("xlsx", &buf)
	require.NoError(t, err)
	assert.Equal(t, "xlsx", ext)

	require.NoError(t, w.WriteHeader([]string{"id", "name"}))
	require.NoError(t, w.WriteRow([]interface{}{int64(1), "alice"}))
	require.NoError(t, w.Flush())

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Sheet1")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"id", "name"}, rows[0])
	assert.Equal(t, []string{"1", "alice"}, rows[1])
}
