package client

import (
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
)

// session is the per-dataset pipeline record: current page, active filter,
// filter-form draft, last committed preview, and the request sequence counter
// used to discard stale responses.
type session struct {
	mu      sync.Mutex
	seq     uint64
	page    int
	filter  *Filter
	draft   Filter
	preview *PreviewPage
	loading bool
}

// begin bumps the sequence counter, applies the state mutation for the new
// request, and returns the sequence number the response must present to commit.
func (s *session) begin(mutate func(*session)) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	s.loading = true
	if mutate != nil {
		mutate(s)
	}
	return s.seq
}

// commit installs a fetched preview page unless a newer request was issued in
// the meantime. Stale responses are dropped, latest request wins.
func (s *session) commit(seq uint64, page *PreviewPage) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if seq != s.seq {
		return false
	}
	s.preview = page
	s.loading = false
	return true
}

// fail clears the loading flag for a request that errored, without touching
// the last committed preview.
func (s *session) fail(seq uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if seq == s.seq {
		s.loading = false
	}
}

func (s *session) view() SessionView {
	s.mu.Lock()
	defer s.mu.Unlock()
	v := SessionView{
		Page:    s.page,
		Draft:   s.draft,
		Preview: s.preview,
		Loading: s.loading,
	}
	if s.filter != nil {
		f := *s.filter
		v.Filter = &f
	}
	return v
}

// SessionView is a point-in-time snapshot of a dataset session, safe to
// render without holding any lock.
type SessionView struct {
	Page    int
	Filter  *Filter
	Draft   Filter
	Preview *PreviewPage
	Loading bool
}

// sessionStore keeps one session per expanded dataset in a bounded LRU cache,
// so state cannot grow without limit as datasets are expanded.
type sessionStore struct {
	mu    sync.Mutex
	cache *lru.Cache[string, *session]
}

func newSessionStore(capacity int) *sessionStore {
	cache, err := lru.New[string, *session](capacity)
	if err != nil {
		// capacity is validated by the constructor options
		panic(err)
	}
	return &sessionStore{cache: cache}
}

func (s *sessionStore) get(id string) *session {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.cache.Get(id); ok {
		return sess
	}
	sess := &session{page: 1}
	s.cache.Add(id, sess)
	return sess
}

func (s *sessionStore) lookup(id string) (*session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cache.Get(id)
}

func (s *sessionStore) evict(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache.Remove(id)
}

func (s *sessionStore) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cache.Len()
}
