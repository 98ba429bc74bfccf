package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func previewResponse(page, pageSize int, totalRows int64, maxRows int) PreviewPage {
	rows := make([]map[string]interface{}, 0, pageSize)
	lo, hi := RowRange(page, pageSize, maxRows, totalRows)
	for i := lo; i <= hi; i++ {
		rows = append(rows, map[string]interface{}{"id": i})
	}
	return PreviewPage{
		Columns:    []string{"id"},
		Rows:       rows,
		Page:       page,
		PageSize:   pageSize,
		TotalRows:  totalRows,
		TotalPages: TotalPages(totalRows, maxRows, pageSize),
	}
}

func writeJSONPreview(w http.ResponseWriter, p PreviewPage) {
	json.NewEncoder(w).Encode(p)
}

func newTestServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *Client) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c := New(srv.URL, WithToken("test-token"), WithoutFixtureFallback())
	return srv, c
}

func TestListDatasets(t *testing.T) {
	_, c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/export/datasets", r.URL.Path)
		assert.Equal(t, "2", r.URL.Query().Get("page"))
		assert.Equal(t, "10", r.URL.Query().Get("limit"))
		assert.Equal(t, "churn", r.URL.Query().Get("search"))
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))

		json.NewEncoder(w).Encode(DatasetList{
			Datasets: []DatasetSummary{{ID: "ds-1", Name: "telco_churn.csv"}},
			Total:    41,
		})
	})

	list, err := c.ListDatasets(context.Background(), 2, 10, "churn")
	require.NoError(t, err)
	assert.Equal(t, int64(41), list.Total)
	require.Len(t, list.Datasets, 1)
	assert.Equal(t, "ds-1", list.Datasets[0].ID)
}

func TestPreview_FirstPage(t *testing.T) {
	_, c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/export/datasets/ds-1/preview", r.URL.Path)
		assert.Equal(t, "1", r.URL.Query().Get("page"))
		assert.Equal(t, "15", r.URL.Query().Get("page_size"))
		assert.Equal(t, "500", r.URL.Query().Get("max_rows"))

		resp := previewResponse(1, 15, 100, 500)
		json.NewEncoder(w).Encode(resp)
	})

	preview, err := c.Preview(context.Background(), "ds-1")
	require.NoError(t, err)
	assert.Equal(t, 1, preview.Page)
	assert.Len(t, preview.Rows, 15)
	assert.Equal(t, 7, preview.TotalPages)

	view, err := c.Session("ds-1")
	require.NoError(t, err)
	assert.False(t, view.Loading)
	assert.NotNil(t, view.Preview)
	assert.Nil(t, view.Filter)
}

func TestSetPage_KeepsActiveFilter(t *testing.T) {
	var sawFilterPage2 bool
	_, c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/export/datasets/ds-1/filter", r.URL.Path)
		assert.Equal(t, "region", r.URL.Query().Get("column"))
		assert.Equal(t, "eq", r.URL.Query().Get("operator"))
		assert.Equal(t, "north", r.URL.Query().Get("value"))
		if r.URL.Query().Get("page") == "2" {
			sawFilterPage2 = true
		}

		page := 1
		if r.URL.Query().Get("page") == "2" {
			page = 2
		}
		json.NewEncoder(w).Encode(previewResponse(page, 15, 40, 500))
	})

	_, err := c.ApplyFilter(context.Background(), "ds-1", "region", "eq", "north")
	require.NoError(t, err)

	preview, err := c.SetPage(context.Background(), "ds-1", 2)
	require.NoError(t, err)
	assert.True(t, sawFilterPage2, "page change should re-issue the filtered request")
	assert.Equal(t, 2, preview.Page)
}

func TestSetPage_ClampsToKnownPageCount(t *testing.T) {
	var fetchedPages []string
	_, c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		page := r.URL.Query().Get("page")
		fetchedPages = append(fetchedPages, page)
		n := 1
		if page == "7" {
			n = 7
		}
		// 100 rows at page size 15: 7 pages
		json.NewEncoder(w).Encode(previewResponse(n, 15, 100, 500))
	})

	_, err := c.Preview(context.Background(), "ds-1")
	require.NoError(t, err)

	preview, err := c.SetPage(context.Background(), "ds-1", 35)
	require.NoError(t, err)
	assert.Equal(t, 7, preview.Page)
	assert.Equal(t, []string{"1", "7"}, fetchedPages, "page 35 must be clamped to the last page")

	view, err := c.Session("ds-1")
	require.NoError(t, err)
	assert.Equal(t, 7, view.Page)
}

func TestApplyFilter_ResetsToPageOne(t *testing.T) {
	_, c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		page := 1
		if r.URL.Query().Get("page") == "3" {
			page = 3
		}
		json.NewEncoder(w).Encode(previewResponse(page, 15, 100, 500))
	})

	_, err := c.Preview(context.Background(), "ds-1")
	require.NoError(t, err)
	_, err = c.SetPage(context.Background(), "ds-1", 3)
	require.NoError(t, err)

	preview, err := c.ApplyFilter(context.Background(), "ds-1", "amount", "gt", "50")
	require.NoError(t, err)
	assert.Equal(t, 1, preview.Page)

	view, err := c.Session("ds-1")
	require.NoError(t, err)
	assert.Equal(t, 1, view.Page)
	require.NotNil(t, view.Filter)
	assert.Equal(t, "amount", view.Filter.Column)
}

func TestApplyFilter_RejectsIncompleteWithoutRequest(t *testing.T) {
	var requests atomic.Int64
	_, c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		json.NewEncoder(w).Encode(previewResponse(1, 15, 100, 500))
	})

	cases := []struct {
		name                    string
		column, operator, value string
	}{
		{"missing column", "", "eq", "x"},
		{"missing operator", "region", "", "x"},
		{"missing value", "region", "eq", ""},
		{"blank value", "region", "eq", "   "},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := c.ApplyFilter(context.Background(), "ds-1", tc.column, tc.operator, tc.value)
			assert.ErrorIs(t, err, ErrIncompleteFilter)
		})
	}
	assert.Equal(t, int64(0), requests.Load(), "incomplete filters must not reach the server")
}

func TestApplyFilter_UsesSubmittedValuesVerbatim(t *testing.T) {
	_, c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "region", r.URL.Query().Get("column"))
		assert.Equal(t, "contains", r.URL.Query().Get("operator"))
		assert.Equal(t, "or", r.URL.Query().Get("value"))
		json.NewEncoder(w).Encode(previewResponse(1, 15, 10, 500))
	})

	// a stale draft must not leak into the request
	c.SetDraft("ds-1", "old_col", "eq", "old_val")

	_, err := c.ApplyFilter(context.Background(), "ds-1", "region", "contains", "or")
	require.NoError(t, err)
}

func TestClearFilter(t *testing.T) {
	_, c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/export/datasets/ds-1/preview" {
			assert.Empty(t, r.URL.Query().Get("column"))
		}
		json.NewEncoder(w).Encode(previewResponse(1, 15, 100, 500))
	})

	_, err := c.ApplyFilter(context.Background(), "ds-1", "region", "eq", "north")
	require.NoError(t, err)

	_, err = c.ClearFilter(context.Background(), "ds-1")
	require.NoError(t, err)

	view, err := c.Session("ds-1")
	require.NoError(t, err)
	assert.Nil(t, view.Filter)
	assert.Equal(t, Filter{}, view.Draft)
	assert.Equal(t, 1, view.Page)
}

func TestAuthFailureInvokesHandler(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	var redirected bool
	c := New(srv.URL,
		WithToken("expired"),
		WithAuthFailureHandler(func() { redirected = true }),
		WithoutFixtureFallback(),
	)

	_, err := c.ListDatasets(context.Background(), 1, 10, "")
	assert.ErrorIs(t, err, ErrAuthRequired)
	assert.True(t, redirected)
}

func TestFixtureFallbackOnServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := New(srv.URL, WithToken("test-token"))

	list, err := c.ListDatasets(context.Background(), 1, 10, "")
	require.Error(t, err)
	assert.True(t, IsDegraded(err))
	require.NotNil(t, list)
	assert.NotEmpty(t, list.Datasets)

	preview, err := c.Preview(context.Background(), "fixture-1")
	require.Error(t, err)
	assert.True(t, IsDegraded(err))
	require.NotNil(t, preview)
	assert.NotEmpty(t, preview.Rows)

	// degraded previews still commit to the session
	view, err := c.Session("fixture-1")
	require.NoError(t, err)
	assert.NotNil(t, view.Preview)
	assert.False(t, view.Loading)
}

func TestTokenProviderReadPerRequest(t *testing.T) {
	var got []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = append(got, r.Header.Get("Authorization"))
		json.NewEncoder(w).Encode(DatasetList{})
	}))
	defer srv.Close()

	token := "first"
	c := New(srv.URL,
		WithTokenProvider(func() string { return token }),
		WithoutFixtureFallback(),
	)

	_, err := c.ListDatasets(context.Background(), 1, 10, "")
	require.NoError(t, err)
	token = "second"
	_, err = c.ListDatasets(context.Background(), 1, 10, "")
	require.NoError(t, err)

	require.Len(t, got, 2)
	assert.Equal(t, "Bearer first", got[0])
	assert.Equal(t, "Bearer second", got[1])
}
