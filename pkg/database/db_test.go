package database

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	t.Setenv("ARTSHOP_DB_PATH", "")
	assert.Equal(t, "artshop.db", DefaultConfig().Path)

	t.Setenv("ARTSHOP_DB_PATH", "/data/shop.db")
	assert.Equal(t, "/data/shop.db", DefaultConfig().Path)
}

func TestOpenReadOnlyMissing(t *testing.T) {
	cfg := Config{Path: filepath.Join(t.TempDir(), "missing.db")}

	_, err := OpenReadOnly(cfg)
	require.ErrorIs(t, err, ErrNotExist)

	_, statErr := os.Stat(cfg.Path)
	assert.True(t, os.IsNotExist(statErr), "read-only open must not create the file")
}

func TestOpenReadOnlyDirectory(t *testing.T) {
	_, err := OpenReadOnly(Config{Path: t.TempDir()})
	assert.ErrorIs(t, err, ErrNotExist)
}

func TestOpenMigrateAndReadOnly(t *testing.T) {
	cfg := Config{Path: filepath.Join(t.TempDir(), "nested", "shop.db")}

	db, err := Open(cfg)
	require.NoError(t, err)
	require.NoError(t, Migrate(db))
	require.NoError(t, Migrate(db), "schema is idempotent")
	_, err = db.Exec(`INSERT INTO gallery_items (image_path, name, price, description) VALUES (?, ?, ?, ?)`,
		"pergamano/lace.png", "Lace", 2.5, "Hand made")
	require.NoError(t, err)
	require.NoError(t, db.Close())
	assert.True(t, cfg.Exists())

	ro, err := OpenReadOnly(cfg)
	require.NoError(t, err)
	defer ro.Close()

	var name string
	var display int
	require.NoError(t, ro.QueryRow(`SELECT name, display FROM gallery_items`).Scan(&name, &display))
	assert.Equal(t, "Lace", name)
	assert.Equal(t, 1, display)

	_, err = ro.Exec(`DELETE FROM gallery_items`)
	assert.Error(t, err)
}
