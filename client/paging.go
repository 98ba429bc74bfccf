package client

// TotalPages computes how many preview pages a dataset exposes. The row
// universe is clamped to maxPreviewRows before dividing, and the result is
// never below 1 so pagination controls stay well-defined for empty datasets.
func TotalPages(totalRows int64, maxPreviewRows, pageSize int) int {
	visible := totalRows
	if visible > int64(maxPreviewRows) {
		visible = int64(maxPreviewRows)
	}
	pages := int((visible + int64(pageSize) - 1) / int64(pageSize))
	if pages < 1 {
		return 1
	}
	return pages
}

// RowRange returns the 1-based inclusive row range visible on a page. The
// upper bound respects both the preview ceiling and the true row count; for
// an empty dataset the range is 1..0 and renders as no rows.
func RowRange(page, pageSize, maxPreviewRows int, totalRows int64) (int64, int64) {
	lo := int64(page-1)*int64(pageSize) + 1
	hi := int64(page) * int64(pageSize)
	if int64(maxPreviewRows) < hi {
		hi = int64(maxPreviewRows)
	}
	if totalRows < hi {
		hi = totalRows
	}
	return lo, hi
}
