package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"artshop/pkg/database"
)

type metaRow struct {
	path        any
	name        any
	price       any
	description any
	display     int
}

func newStore(t *testing.T, rows ...metaRow) database.Config {
	t.Helper()
	cfg := database.Config{Path: filepath.Join(t.TempDir(), "artshop.db")}
	db, err := database.Open(cfg)
	require.NoError(t, err)
	defer db.Close()
	require.NoError(t, database.Migrate(db))

	for _, r := range rows {
		_, err := db.Exec(`
			INSERT INTO gallery_items (image_path, name, price, description, display)
			VALUES (?, ?, ?, ?, ?)
		`, r.path, r.name, r.price, r.description, r.display)
		require.NoError(t, err)
	}
	return cfg
}

func writeGallery(t *testing.T, root, gallery string, files ...string) {
	t.Helper()
	dir := filepath.Join(root, gallery)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	for _, f := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, f), []byte("x"), 0o644))
	}
}
