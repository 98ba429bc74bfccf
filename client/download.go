package client

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// DownloadDataset saves the default CSV export of a dataset into destDir,
// applying the session's active filter when one is set. The file is named
// after the dataset: <base-name-without-extension>_export.csv.
func (c *Client) DownloadDataset(ctx context.Context, id, name, destDir string) (string, error) {
	query := url.Values{}
	query.Set("format", "csv")
	c.addActiveFilter(id, query)

	base := strings.TrimSuffix(name, filepath.Ext(name))
	fallback := base + "_export.csv"

	path := fmt.Sprintf("/api/export/datasets/%s/download", url.PathEscape(id))
	return c.saveDownload(ctx, path, query, destDir, fallback)
}

// DownloadFiltered saves a filtered export in the requested format (csv, json
// or xlsx) into destDir. The session's active filter is applied when present,
// and maxRows truncates the export when positive; zero means all matching
// rows. The saved filename comes from the Content-Disposition header,
// defaulting to filtered_data.<format>.
func (c *Client) DownloadFiltered(ctx context.Context, id, format string, maxRows int, destDir string) (string, error) {
	query := url.Values{}
	query.Set("dataset_id", id)
	query.Set("file_format", format)
	c.addActiveFilter(id, query)
	if maxRows > 0 {
		query.Set("max_rows", strconv.Itoa(maxRows))
	}

	return c.saveDownload(ctx, "/api/export/download", query, destDir, "filtered_data."+format)
}

// addActiveFilter appends the session's filter parameters when one is active.
func (c *Client) addActiveFilter(id string, query url.Values) {
	sess, ok := c.sessions.lookup(id)
	if !ok {
		return
	}
	view := sess.view()
	if view.Filter == nil {
		return
	}
	query.Set("column", view.Filter.Column)
	query.Set("operator", view.Filter.Operator)
	query.Set("value", view.Filter.Value)
}

// saveDownload performs the authenticated GET and writes the payload to a
// file in destDir, deriving the name from Content-Disposition. Downloads are
// never retried and never fall back to fixture data.
func (c *Client) saveDownload(ctx context.Context, path string, query url.Values, destDir, fallbackName string) (string, error) {
	if c.token() == "" {
		c.onAuthFailure()
		return "", ErrAuthRequired
	}

	req, err := c.newRequest(ctx, path, query)
	if err != nil {
		return "", err
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return "", fmt.Errorf("download request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		c.onAuthFailure()
		return "", ErrAuthRequired
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("download failed with status %d", resp.StatusCode)
	}

	name := filenameFromDisposition(resp.Header.Get("Content-Disposition"), fallbackName)
	target := filepath.Join(destDir, filepath.Base(name))

	out, err := os.Create(target)
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", target, err)
	}
	defer out.Close()

	if _, err := io.Copy(out, resp.Body); err != nil {
		os.Remove(target)
		return "", fmt.Errorf("failed to save download: %w", err)
	}

	c.logger.Info().Str("file", target).Msg("download saved")
	return target, nil
}

// filenameFromDisposition extracts the suggested name from a
// Content-Disposition header via its filename= parameter.
func filenameFromDisposition(header, fallback string) string {
	const marker = "filename="
	idx := strings.Index(header, marker)
	if idx < 0 {
		return fallback
	}
	name := header[idx+len(marker):]
	if i := strings.IndexByte(name, ';'); i >= 0 {
		name = name[:i]
	}
	name = strings.Trim(strings.TrimSpace(name), `"`)
	if name == "" {
		return fallback
	}
	return name
}
