package storage

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStore(t *testing.T) {
	store, err := NewStore("", "")
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, store)

	store, err = NewStore(DefaultStoreKind(), "")
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, store)

	store, err = NewStore(KindBolt, filepath.Join(t.TempDir(), "x.db"))
	require.NoError(t, err)
	assert.IsType(t, &BoltStore{}, store)

	_, err = NewStore("postgres", "")
	assert.Error(t, err)
}

func TestCloseIfSupported(t *testing.T) {
	assert.NoError(t, CloseIfSupported(NewMemoryStore()))
	assert.NoError(t, CloseIfSupported(NewBoltStore("unused.db")))
}
