package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilenameFromDisposition(t *testing.T) {
	cases := []struct {
		name   string
		header string
		want   string
	}{
		{"plain", `attachment; filename=report.csv`, "report.csv"},
		{"trailing semicolon", `attachment; filename=report.csv;`, "report.csv"},
		{"quoted", `attachment; filename="sales export.xlsx"`, "sales export.xlsx"},
		{"missing parameter", `attachment`, "filtered_data.csv"},
		{"empty header", ``, "filtered_data.csv"},
		{"empty value", `attachment; filename=`, "filtered_data.csv"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, filenameFromDisposition(tc.header, "filtered_data.csv"))
		})
	}
}

func TestDownloadFiltered_SavesWithServerName(t *testing.T) {
	_, c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/export/download", r.URL.Path)
		assert.Equal(t, "ds-1", r.URL.Query().Get("dataset_id"))
		assert.Equal(t, "csv", r.URL.Query().Get("file_format"))
		assert.Empty(t, r.URL.Query().Get("max_rows"))

		w.Header().Set("Content-Disposition", `attachment; filename=telco_filtered.csv`)
		w.Write([]byte("id,name\n1,alice\n"))
	})

	dir := t.TempDir()
	path, err := c.DownloadFiltered(context.Background(), "ds-1", "csv", 0, dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "telco_filtered.csv"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "id,name\n1,alice\n", string(data))
}

func TestDownloadFiltered_FallbackName(t *testing.T) {
	_, c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	})

	dir := t.TempDir()
	path, err := c.DownloadFiltered(context.Background(), "ds-1", "json", 0, dir)
	require.NoError(t, err)
	assert.Equal(t, "filtered_data.json", filepath.Base(path))
}

func TestDownloadFiltered_MaxRowsParam(t *testing.T) {
	_, c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "1000", r.URL.Query().Get("max_rows"))
		w.Write([]byte("id\n1\n"))
	})

	_, err := c.DownloadFiltered(context.Background(), "ds-1", "csv", 1000, t.TempDir())
	require.NoError(t, err)
}

func TestDownloadFiltered_CarriesActiveFilter(t *testing.T) {
	_, c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/export/download" {
			assert.Equal(t, "region", r.URL.Query().Get("column"))
			assert.Equal(t, "eq", r.URL.Query().Get("operator"))
			assert.Equal(t, "north", r.URL.Query().Get("value"))
			w.Write([]byte("id\n1\n"))
			return
		}
		writeJSONPreview(w, previewResponse(1, 15, 10, 500))
	})

	_, err := c.ApplyFilter(context.Background(), "ds-1", "region", "eq", "north")
	require.NoError(t, err)

	_, err = c.DownloadFiltered(context.Background(), "ds-1", "csv", 0, t.TempDir())
	require.NoError(t, err)
}

func TestDownloadDataset_NameDerivedFromDataset(t *testing.T) {
	_, c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/export/datasets/ds-1/download", r.URL.Path)
		assert.Equal(t, "csv", r.URL.Query().Get("format"))
		// no Content-Disposition: client falls back to the derived name
		w.Write([]byte("id\n1\n"))
	})

	dir := t.TempDir()
	path, err := c.DownloadDataset(context.Background(), "ds-1", "telco_churn.csv", dir)
	require.NoError(t, err)
	assert.Equal(t, "telco_churn_export.csv", filepath.Base(path))
}

func TestDownload_MissingTokenShortCircuits(t *testing.T) {
	var requests atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
	}))
	defer srv.Close()

	var redirected bool
	c := New(srv.URL,
		WithAuthFailureHandler(func() { redirected = true }),
		WithoutFixtureFallback(),
	)

	_, err := c.DownloadFiltered(context.Background(), "ds-1", "csv", 0, t.TempDir())
	assert.ErrorIs(t, err, ErrAuthRequired)
	assert.True(t, redirected)
	assert.Equal(t, int64(0), requests.Load(), "unauthenticated downloads must not hit the server")
}

func TestDownload_ServerRejectionLeavesNoFile(t *testing.T) {
	_, c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	dir := t.TempDir()
	_, err := c.DownloadFiltered(context.Background(), "ds-1", "csv", 0, dir)
	require.Error(t, err)
	assert.False(t, IsDegraded(err), "downloads never degrade to fixture data")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
