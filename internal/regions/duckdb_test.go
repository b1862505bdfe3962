package regions

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsStorePath(t *testing.T) {
	assert.True(t, IsStorePath("regions.duckdb"))
	assert.True(t, IsStorePath("regions.db"))
	assert.False(t, IsStorePath("regions.tsv"))
	assert.False(t, IsStorePath("regions.tsv.gz"))
}

func TestStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "regions.duckdb")

	store, err := OpenStore(path)
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.CreateSchema())
	fwd := createForwardTranscript()
	rev := createReverseTranscript()
	require.NoError(t, store.Insert(fwd))
	require.NoError(t, store.Insert(rev))

	count, err := store.Count()
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	loaded, err := store.Load("")
	require.NoError(t, err)
	require.Len(t, loaded, 2)

	byName := map[string]*Transcript{loaded[0].Name: loaded[0], loaded[1].Name: loaded[1]}
	assert.Equal(t, fwd, byName["TF1"])
	assert.Equal(t, rev, byName["TR1"])
}

func TestStoreLoad_Filter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "regions.duckdb")

	store, err := OpenStore(path)
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.CreateSchema())
	require.NoError(t, store.Insert(createForwardTranscript()))
	require.NoError(t, store.Insert(createReverseTranscript()))

	loaded, err := store.Load("TR1")
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, "TR1", loaded[0].Name)
}
