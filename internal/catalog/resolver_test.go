package catalog

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"artshop/pkg/database"
	"artshop/pkg/models"
)

func TestBuildImageListOrdersAndMerges(t *testing.T) {
	root := t.TempDir()
	writeGallery(t, root, "original", "sunset.jpg", "Dawn.PNG", "note.txt")
	price := 12.0
	desc := "Evening view"
	meta := map[string]models.MetadataEntry{
		"sunset.jpg": {Name: "Sunset", Price: &price, Description: &desc},
	}

	r := NewResolver(root, database.Config{}, nil, nil)
	items := r.BuildImageList("original", meta)

	require.Len(t, items, 2)
	assert.Equal(t, models.GalleryItem{
		Src:         "/static/original/Dawn.PNG",
		Alt:         "Dawn",
		Name:        "Dawn",
		Price:       1.50,
		Description: "description",
	}, items[0])
	assert.Equal(t, models.GalleryItem{
		Src:         "/static/original/sunset.jpg",
		Alt:         "Sunset",
		Name:        "Sunset",
		Price:       12.0,
		Description: "Evening view",
	}, items[1])
}

func TestBuildImageListCaseInsensitiveOrder(t *testing.T) {
	root := t.TempDir()
	writeGallery(t, root, "pergamano", "b.gif", "A.webp", "c.JPEG", "a_second.jpg", "README", "x.bmp")

	items := NewResolver(root, database.Config{}, nil, nil).BuildImageList("pergamano", nil)

	var srcs []string
	for _, it := range items {
		srcs = append(srcs, it.Src)
	}
	assert.Equal(t, []string{
		"/static/pergamano/A.webp",
		"/static/pergamano/a_second.jpg",
		"/static/pergamano/b.gif",
		"/static/pergamano/c.JPEG",
	}, srcs)
	assert.Equal(t, "A Second", items[1].Alt)
}

func TestBuildImageListSkipsDirectoriesAndDotfiles(t *testing.T) {
	root := t.TempDir()
	writeGallery(t, root, "original", ".jpg", "keep.png")
	require.NoError(t, os.Mkdir(filepath.Join(root, "original", "folder.jpg"), 0o755))

	items := NewResolver(root, database.Config{}, nil, nil).BuildImageList("original", nil)
	require.Len(t, items, 1)
	assert.Equal(t, "/static/original/keep.png", items[0].Src)
}

func TestBuildImageListMissingDirectory(t *testing.T) {
	r := NewResolver(t.TempDir(), database.Config{}, nil, nil)

	items := r.BuildImageList("nope", nil)
	assert.NotNil(t, items)
	assert.Empty(t, items)
}

func TestBuildImageListPathIsFile(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "original"), []byte("x"), 0o644))

	assert.Empty(t, NewResolver(root, database.Config{}, nil, nil).BuildImageList("original", nil))
}

func TestBuildImageListRejectsTraversal(t *testing.T) {
	root := t.TempDir()
	writeGallery(t, root, "original", "a.jpg")
	r := NewResolver(filepath.Join(root, "original"), database.Config{}, nil, nil)

	assert.Empty(t, r.BuildImageList("..", nil))
	assert.Empty(t, r.BuildImageList("../original", nil))
}

func TestBuildImageListPartialMetadataFallsBackPerField(t *testing.T) {
	root := t.TempDir()
	writeGallery(t, root, "original", "cat_nap.jpg", "dog.jpg", "owl.jpg")
	price := 4.25
	negative := -3.0
	empty := ""
	meta := map[string]models.MetadataEntry{
		"cat_nap.jpg": {Price: &price},
		"dog.jpg":     {Name: "Rex", Description: &empty},
		"owl.jpg":     {Name: "Owl", Price: &negative},
	}

	items := NewResolver(root, database.Config{}, nil, nil).BuildImageList("original", meta)
	require.Len(t, items, 3)

	assert.Equal(t, "Cat Nap", items[0].Name)
	assert.Equal(t, 4.25, items[0].Price)
	assert.Equal(t, "description", items[0].Description)

	assert.Equal(t, "Rex", items[1].Alt)
	assert.Equal(t, 1.50, items[1].Price)
	assert.Equal(t, "", items[1].Description)

	assert.Equal(t, 1.50, items[2].Price)
}

func TestLoadMetadataMissingStore(t *testing.T) {
	cfg := database.Config{Path: filepath.Join(t.TempDir(), "missing.db")}
	r := NewResolver(t.TempDir(), cfg, nil, nil)

	meta := r.LoadMetadata(context.Background())
	assert.NotNil(t, meta)
	assert.Empty(t, meta)

	_, err := os.Stat(cfg.Path)
	assert.True(t, os.IsNotExist(err), "store file must not be created")
}

func TestLoadMetadataCorruptStore(t *testing.T) {
	cfg := database.Config{Path: filepath.Join(t.TempDir(), "artshop.db")}
	require.NoError(t, os.WriteFile(cfg.Path, []byte("definitely not sqlite, just bytes padding the header out"), 0o644))

	meta := NewResolver(t.TempDir(), cfg, nil, nil).LoadMetadata(context.Background())
	assert.Empty(t, meta)
}

func TestLoadMetadataSchemaMismatch(t *testing.T) {
	cfg := database.Config{Path: filepath.Join(t.TempDir(), "artshop.db")}
	db, err := database.Open(cfg)
	require.NoError(t, err)
	_, err = db.Exec(`CREATE TABLE other (id INTEGER)`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	meta := NewResolver(t.TempDir(), cfg, nil, nil).LoadMetadata(context.Background())
	assert.Empty(t, meta)
}

func TestLoadMetadataRows(t *testing.T) {
	cfg := newStore(t,
		metaRow{path: "static/original/Sunset.JPG", name: "First", price: 5.0, description: "one", display: 1},
		metaRow{path: `C:\art\sunset.jpg`, name: "Second", price: 6.0, description: "two", display: 1},
		metaRow{path: "hidden.png", name: "Hidden", price: 1.0, description: "x", display: 0},
		metaRow{path: nil, name: "No path", price: 1.0, description: "x", display: 1},
		metaRow{path: "", name: "Empty path", price: 1.0, description: "x", display: 1},
		metaRow{path: "partial.png", name: nil, price: nil, description: nil, display: 1},
	)

	meta := NewResolver(t.TempDir(), cfg, nil, nil).LoadMetadata(context.Background())

	require.Len(t, meta, 2)
	sunset := meta["sunset.jpg"]
	assert.Equal(t, "Second", sunset.Name)
	require.NotNil(t, sunset.Price)
	assert.Equal(t, 6.0, *sunset.Price)
	require.NotNil(t, sunset.Description)
	assert.Equal(t, "two", *sunset.Description)

	partial := meta["partial.png"]
	assert.Empty(t, partial.Name)
	assert.Nil(t, partial.Price)
	assert.Nil(t, partial.Description)
}

func TestLoadGalleries(t *testing.T) {
	root := t.TempDir()
	writeGallery(t, root, "original", "sunset.jpg", "Dawn.PNG", "note.txt")
	writeGallery(t, root, "pergamano", "lace_card.png")
	cfg := newStore(t, metaRow{path: "sunset.jpg", name: "Sunset", price: 12.0, description: "Evening view", display: 1})

	r := NewResolver(root, cfg, nil, nil)
	first := r.LoadGalleries(context.Background())

	assert.Equal(t, []string{"pergamano", "original"}, first.Names)
	require.Len(t, first.Items["original"], 2)
	require.Len(t, first.Items["pergamano"], 1)
	assert.Equal(t, "Sunset", first.Items["original"][1].Name)
	assert.Equal(t, "Lace Card", first.Items["pergamano"][0].Name)
	assert.Equal(t, 3, first.Len())

	second := r.LoadGalleries(context.Background())
	assert.Equal(t, first, second)
	assert.NotSame(t, first, second)
}

func TestLoadGalleriesWithoutAnything(t *testing.T) {
	r := NewResolver(filepath.Join(t.TempDir(), "assets"), database.Config{Path: filepath.Join(t.TempDir(), "x.db")}, []string{"a", "b"}, nil)

	coll := r.LoadGalleries(context.Background())
	assert.Equal(t, []string{"a", "b"}, coll.Names)
	assert.Empty(t, coll.Items["a"])
	assert.Empty(t, coll.Items["b"])
}

func TestCollectionAccessors(t *testing.T) {
	root := t.TempDir()
	writeGallery(t, root, "original", "a.jpg", "b.jpg")
	coll := NewResolver(root, database.Config{}, []string{"original"}, nil).LoadGalleries(context.Background())

	items, ok := coll.Gallery("original")
	require.True(t, ok)
	items[0].Name = "changed"
	again, _ := coll.Gallery("original")
	assert.Equal(t, "A", again[0].Name)

	_, ok = coll.Gallery("pergamano")
	assert.False(t, ok)

	it, ok := coll.Item("original", 1)
	require.True(t, ok)
	assert.Equal(t, "/static/original/b.jpg", it.Src)

	_, ok = coll.Item("original", 2)
	assert.False(t, ok)
	_, ok = coll.Item("original", -1)
	assert.False(t, ok)

	var nilColl *Collection
	_, ok = nilColl.Item("original", 0)
	assert.False(t, ok)
	assert.Zero(t, nilColl.Len())
}
