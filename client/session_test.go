package client

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSession_StaleResponseDiscarded(t *testing.T) {
	sess := &session{page: 1}

	first := sess.begin(nil)
	second := sess.begin(nil)

	late := &PreviewPage{Page: 1}
	current := &PreviewPage{Page: 2}

	// the newer request lands first
	assert.True(t, sess.commit(second, current))
	// the older response arrives afterwards and must be dropped
	assert.False(t, sess.commit(first, late))

	assert.Same(t, current, sess.view().Preview)
}

func TestSession_FailKeepsLastPreview(t *testing.T) {
	sess := &session{page: 1}

	seq := sess.begin(nil)
	committed := &PreviewPage{Page: 1}
	require.True(t, sess.commit(seq, committed))

	seq = sess.begin(nil)
	sess.fail(seq)

	view := sess.view()
	assert.False(t, view.Loading)
	assert.Same(t, committed, view.Preview)
}

func TestSession_StaleFailDoesNotClearLoading(t *testing.T) {
	sess := &session{page: 1}

	old := sess.begin(nil)
	sess.begin(nil)
	sess.fail(old)

	assert.True(t, sess.view().Loading)
}

func TestSessionStore_EvictsLeastRecentlyUsed(t *testing.T) {
	store := newSessionStore(3)

	for i := 0; i < 3; i++ {
		store.get(fmt.Sprintf("ds-%d", i))
	}
	require.Equal(t, 3, store.len())

	// touching ds-0 makes ds-1 the eviction candidate
	store.get("ds-0")
	store.get("ds-3")

	assert.Equal(t, 3, store.len())
	_, ok := store.lookup("ds-1")
	assert.False(t, ok)
	_, ok = store.lookup("ds-0")
	assert.True(t, ok)
}

func TestSessionStore_GetReusesExisting(t *testing.T) {
	store := newSessionStore(2)

	a := store.get("ds-1")
	a.page = 4
	b := store.get("ds-1")

	assert.Same(t, a, b)
	assert.Equal(t, 4, b.page)
}

func TestCollapseReleasesSession(t *testing.T) {
	c := New("http://localhost:0")
	c.sessions.get("ds-1")

	_, err := c.Session("ds-1")
	require.NoError(t, err)

	c.Collapse("ds-1")
	_, err = c.Session("ds-1")
	assert.ErrorIs(t, err, ErrNoSession)
}
