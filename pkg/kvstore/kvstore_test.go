package kvstore_test

import (
	"path/filepath"
	"testing"

	"ecofinds/pkg/kvstore"

	"github.com/stretchr/testify/assert"
)

func TestStore_SetGetDelete(t *testing.T) {
	store, err := kvstore.Open(filepath.Join(t.TempDir(), "test.db"))
	assert.NoError(t, err)

	// Missing key reads as absent, not as an error
	_, ok, err := store.Get("ecofinds_products")
	assert.NoError(t, err)
	assert.False(t, ok)

	assert.NoError(t, store.Set("ecofinds_products", `[{"id":"p1"}]`))
	value, ok, err := store.Get("ecofinds_products")
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `[{"id":"p1"}]`, value)

	// Set replaces in place
	assert.NoError(t, store.Set("ecofinds_products", `[]`))
	value, ok, err = store.Get("ecofinds_products")
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `[]`, value)

	assert.NoError(t, store.Delete("ecofinds_products"))
	_, ok, err = store.Get("ecofinds_products")
	assert.NoError(t, err)
	assert.False(t, ok)

	// Deleting an absent key is a no-op
	assert.NoError(t, store.Delete("ecofinds_products"))
}

func TestStore_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	first, err := kvstore.Open(path)
	assert.NoError(t, err)
	assert.NoError(t, first.Set("ecofinds_session", `{"token":"abc"}`))

	second, err := kvstore.Open(path)
	assert.NoError(t, err)
	value, ok, err := second.Get("ecofinds_session")
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `{"token":"abc"}`, value)
}
