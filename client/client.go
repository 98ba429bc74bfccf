package client

import (
	"context"
	"net/http"
	"strings"

	"github.com/rs/zerolog"
)

const (
	// DefaultMaxPreviewRows is the ceiling on rows reachable through paginated
	// previews, regardless of how many rows the server reports.
	DefaultMaxPreviewRows = 500
	// DefaultPageSize is the fixed preview page size.
	DefaultPageSize = 15
	// DefaultSessionCapacity bounds how many expanded datasets keep state.
	DefaultSessionCapacity = 32
)

// TokenProvider supplies the bearer token for authenticated requests. It is
// consulted on every request, never cached.
type TokenProvider func() string

// Client drives the dataset export pipeline against the export API.
type Client struct {
	baseURL        string
	httpc          *http.Client
	token          TokenProvider
	onAuthFailure  func()
	logger         zerolog.Logger
	maxPreviewRows int
	pageSize       int
	sessions       *sessionStore
	source         DataSource
}

type Option func(*Client)

func WithHTTPClient(httpc *http.Client) Option {
	return func(c *Client) { c.httpc = httpc }
}

func WithToken(token string) Option {
	return func(c *Client) { c.token = func() string { return token } }
}

func WithTokenProvider(provider TokenProvider) Option {
	return func(c *Client) { c.token = provider }
}

// WithAuthFailureHandler registers the hook invoked on 401/403 responses,
// typically a redirect to login.
func WithAuthFailureHandler(handler func()) Option {
	return func(c *Client) { c.onAuthFailure = handler }
}

func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

func WithMaxPreviewRows(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.maxPreviewRows = n
		}
	}
}

func WithPageSize(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.pageSize = n
		}
	}
}

func WithSessionCapacity(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.sessions = newSessionStore(n)
		}
	}
}

// WithDataSource replaces the listing/preview source, bypassing the default
// remote-with-fixture-fallback policy.
func WithDataSource(source DataSource) Option {
	return func(c *Client) { c.source = source }
}

// WithoutFixtureFallback disables the demo-mode degradation: listing and
// preview errors are returned as-is instead of substituting fixture data.
func WithoutFixtureFallback() Option {
	return func(c *Client) { c.source = &remoteSource{c: c} }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:        strings.TrimRight(baseURL, "/"),
		httpc:          &http.Client{},
		token:          func() string { return "" },
		onAuthFailure:  func() {},
		logger:         zerolog.Nop(),
		maxPreviewRows: DefaultMaxPreviewRows,
		pageSize:       DefaultPageSize,
		sessions:       newSessionStore(DefaultSessionCapacity),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.source == nil {
		c.source = &fallbackSource{
			primary:  &remoteSource{c: c},
			fallback: newFixtureSource(),
			logger:   c.logger,
		}
	}
	return c
}

// ListDatasets fetches one page of the dataset catalog.
func (c *Client) ListDatasets(ctx context.Context, page, limit int, search string) (*DatasetList, error) {
	return c.source.ListDatasets(ctx, page, limit, search)
}

// Preview expands a dataset: it opens (or reuses) the session and fetches the
// preview page for its current filter and page.
func (c *Client) Preview(ctx context.Context, id string) (*PreviewPage, error) {
	sess := c.sessions.get(id)

	var filter *Filter
	var page int
	seq := sess.begin(func(s *session) {
		if s.page < 1 {
			s.page = 1
		}
		filter = s.filter
		page = s.page
	})

	return c.fetchAndCommit(ctx, sess, seq, id, filter, page)
}

// SetPage advances the session to page n and re-fetches the same filter state
// at the new page. n is clamped to the page count of the last committed
// preview, so paging past the end re-fetches the final page instead.
func (c *Client) SetPage(ctx context.Context, id string, n int) (*PreviewPage, error) {
	if n < 1 {
		n = 1
	}
	sess := c.sessions.get(id)

	var filter *Filter
	page := n
	seq := sess.begin(func(s *session) {
		if s.preview != nil && s.preview.TotalPages > 0 && page > s.preview.TotalPages {
			page = s.preview.TotalPages
		}
		s.page = page
		filter = s.filter
	})

	return c.fetchAndCommit(ctx, sess, seq, id, filter, page)
}

// ApplyFilter validates and installs a filter for the dataset, resets paging
// to page 1, and fetches the first filtered page. The submitted values are
// used verbatim for the fetch, never read back from session state.
func (c *Client) ApplyFilter(ctx context.Context, id, column, operator, value string) (*PreviewPage, error) {
	filter := Filter{Column: column, Operator: operator, Value: value}
	if column == "" || operator == "" || strings.TrimSpace(value) == "" {
		return nil, ErrIncompleteFilter
	}

	sess := c.sessions.get(id)
	seq := sess.begin(func(s *session) {
		f := filter
		s.filter = &f
		s.draft = filter
		s.page = 1
	})

	return c.fetchAndCommit(ctx, sess, seq, id, &filter, 1)
}

// ClearFilter removes the filter and its form draft, resets paging to page 1,
// and fetches the unfiltered preview.
func (c *Client) ClearFilter(ctx context.Context, id string) (*PreviewPage, error) {
	sess := c.sessions.get(id)
	seq := sess.begin(func(s *session) {
		s.filter = nil
		s.draft = Filter{}
		s.page = 1
	})

	return c.fetchAndCommit(ctx, sess, seq, id, nil, 1)
}

// SetDraft stores filter-form values without issuing any request.
func (c *Client) SetDraft(id, column, operator, value string) {
	sess := c.sessions.get(id)
	sess.mu.Lock()
	sess.draft = Filter{Column: column, Operator: operator, Value: value}
	sess.mu.Unlock()
}

// Session returns a snapshot of the dataset's pipeline state.
func (c *Client) Session(id string) (SessionView, error) {
	sess, ok := c.sessions.lookup(id)
	if !ok {
		return SessionView{}, ErrNoSession
	}
	return sess.view(), nil
}

// Collapse evicts the dataset's session, releasing its state.
func (c *Client) Collapse(id string) {
	c.sessions.evict(id)
}

func (c *Client) fetchAndCommit(ctx context.Context, sess *session, seq uint64, id string, filter *Filter, page int) (*PreviewPage, error) {
	preview, err := c.source.FetchPreview(ctx, id, filter, page)
	if err != nil && !IsDegraded(err) {
		sess.fail(seq)
		return nil, err
	}

	if !sess.commit(seq, preview) {
		c.logger.Debug().Str("datasetId", id).Uint64("seq", seq).Msg("discarded stale preview response")
	}
	return preview, err
}
