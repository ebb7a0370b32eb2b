package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"artshop/internal/catalog"
)

func newTestManager(idle time.Duration) (*Manager, *fakeLoader, *recorder) {
	loader := &fakeLoader{coll: sampleCollection}
	rec := &recorder{}
	return NewManager(loader, rec, idle, nil), loader, rec
}

func TestManagerCreateLoadsGalleries(t *testing.T) {
	m, loader, rec := newTestManager(time.Hour)

	st := m.Create(context.Background())
	require.NotNil(t, st)
	assert.NotEmpty(t, st.ID())
	assert.Equal(t, 1, loader.Calls())
	assert.Equal(t, 3, st.Galleries().Len())
	assert.Equal(t, []string{EventGalleriesLoaded, EventCreated}, rec.Types())

	got, err := m.Get(st.ID())
	require.NoError(t, err)
	assert.Same(t, st, got)
	assert.Equal(t, 1, m.Len())
}

func TestManagerSessionsAreIndependent(t *testing.T) {
	m, loader, _ := newTestManager(time.Hour)
	a := m.Create(context.Background())
	b := m.Create(context.Background())

	assert.NotEqual(t, a.ID(), b.ID())
	assert.NotSame(t, a.Galleries(), b.Galleries())
	assert.Equal(t, 2, loader.Calls())

	a.ToggleTopic("Arts")
	a.AddToCart()
	assert.Empty(t, b.Snapshot().Selection.Topic)
	assert.Zero(t, b.CartCount())
}

func TestManagerLookup(t *testing.T) {
	m, _, _ := newTestManager(time.Hour)
	st := m.Create(context.Background())
	st.ToggleTopic("News")

	v, ok := m.Lookup(st.ID())
	require.True(t, ok)
	snap, ok := v.(Snapshot)
	require.True(t, ok)
	assert.Equal(t, "News", snap.Selection.Topic)

	_, ok = m.Lookup("missing")
	assert.False(t, ok)
}

func TestManagerEnd(t *testing.T) {
	m, _, rec := newTestManager(time.Hour)
	var ended []string
	m.OnEnd = func(id string) { ended = append(ended, id) }

	st := m.Create(context.Background())
	require.NoError(t, m.End(st.ID()))
	assert.Equal(t, []string{st.ID()}, ended)
	assert.Equal(t, EventEnded, rec.Last().Type)

	_, err := m.Get(st.ID())
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, m.End(st.ID()), ErrNotFound)
	assert.Zero(t, m.Len())
}

func TestManagerSweep(t *testing.T) {
	m, _, _ := newTestManager(time.Minute)
	st := m.Create(context.Background())

	assert.Zero(t, m.Sweep(time.Now()))
	assert.Equal(t, 1, m.Sweep(time.Now().Add(2*time.Minute)))

	_, err := m.Get(st.ID())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestManagerSweepDisabled(t *testing.T) {
	m, _, _ := newTestManager(0)
	m.Create(context.Background())
	assert.Zero(t, m.Sweep(time.Now().Add(24*time.Hour)))
	assert.Equal(t, 1, m.Len())
}

func TestManagerWithNilCollection(t *testing.T) {
	loader := &fakeLoader{coll: func() *catalog.Collection { return nil }}
	m := NewManager(loader, nil, time.Hour, nil)

	st := m.Create(context.Background())
	_, ok := st.Galleries().Gallery("original")
	assert.False(t, ok)
	assert.Zero(t, st.Galleries().Len())
}
