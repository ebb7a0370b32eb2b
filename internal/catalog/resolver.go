package catalog

import (
	"context"
	"database/sql"
	"errors"
	"math"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"go.uber.org/zap"

	"artshop/internal/metrics"
	"artshop/pkg/database"
	"artshop/pkg/logging"
	"artshop/pkg/models"
)

// StoreOpener opens the metadata store. It returns an error wrapping
// database.ErrNotExist when there is no store.
type StoreOpener func() (*sql.DB, error)

// Resolver assembles gallery item lists from image directories and the
// optional metadata store. None of its methods fail: a missing or broken
// store, or a missing directory, degrades to defaults and is logged.
type Resolver struct {
	AssetsRoot string
	Galleries  []string
	OpenStore  StoreOpener
	Logger     *zap.Logger
}

func NewResolver(assetsRoot string, store database.Config, galleries []string, logger *zap.Logger) *Resolver {
	if len(galleries) == 0 {
		galleries = DefaultGalleries
	}
	return &Resolver{
		AssetsRoot: assetsRoot,
		Galleries:  slices.Clone(galleries),
		OpenStore: func() (*sql.DB, error) {
			return database.OpenReadOnly(store)
		},
		Logger: logging.OrNop(logger).Named("catalog"),
	}
}

func (r *Resolver) log() *zap.Logger {
	return logging.OrNop(r.Logger)
}

// LoadMetadata reads the display metadata table. It always returns a
// non-nil map, empty when the store is absent or unusable.
func (r *Resolver) LoadMetadata(ctx context.Context) map[string]models.MetadataEntry {
	empty := map[string]models.MetadataEntry{}
	if r.OpenStore == nil {
		return empty
	}

	db, err := r.OpenStore()
	if err != nil {
		if errors.Is(err, database.ErrNotExist) {
			r.log().Info("metadata store not found, using defaults", zap.Error(err))
			metrics.CatalogDegraded(metrics.ReasonStoreMissing)
			return empty
		}
		r.log().Warn("metadata store unavailable, using defaults", zap.Error(err))
		metrics.CatalogDegraded(metrics.ReasonStoreError)
		return empty
	}
	defer db.Close()

	meta, skipped, err := NewRepo(db).Metadata(ctx)
	if err != nil {
		r.log().Warn("metadata load failed, using defaults", zap.Error(err))
		metrics.CatalogDegraded(metrics.ReasonStoreError)
		return empty
	}
	if skipped > 0 {
		r.log().Info("skipped metadata rows without image_path", zap.Int("rows", skipped))
		metrics.CatalogDegradedBy(metrics.ReasonMalformedRow, skipped)
	}
	r.log().Debug("metadata loaded", zap.Int("entries", len(meta)))
	return meta
}

// BuildImageList lists the images of one gallery subfolder in display order
// and merges each with its metadata entry. It always returns a non-nil slice.
func (r *Resolver) BuildImageList(gallery string, meta map[string]models.MetadataEntry) []models.GalleryItem {
	items := []models.GalleryItem{}
	log := r.log().With(zap.String("gallery", gallery))

	if !ValidName(gallery) {
		log.Warn("invalid gallery name")
		metrics.CatalogDegraded(metrics.ReasonDirMissing)
		return items
	}

	dir := filepath.Join(r.AssetsRoot, gallery)
	fi, err := os.Stat(dir)
	if err != nil || !fi.IsDir() {
		log.Info("gallery directory missing", zap.String("dir", dir))
		metrics.CatalogDegraded(metrics.ReasonDirMissing)
		return items
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		log.Warn("gallery directory unreadable", zap.String("dir", dir), zap.Error(err))
		metrics.CatalogDegraded(metrics.ReasonDirError)
		return items
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !IsImage(e.Name()) || !isFile(dir, e) {
			continue
		}
		names = append(names, e.Name())
	}
	sortFilenames(names)

	for _, fn := range names {
		items = append(items, buildItem(gallery, fn, meta))
	}
	return items
}

// LoadGalleries loads metadata once and builds every configured gallery.
func (r *Resolver) LoadGalleries(ctx context.Context) *Collection {
	meta := r.LoadMetadata(ctx)

	c := newCollection(r.Galleries)
	for _, g := range c.Names {
		items := r.BuildImageList(g, meta)
		c.Items[g] = items
		metrics.GalleryItems(g, len(items))
	}
	metrics.CatalogLoaded()

	r.log().Info("galleries loaded",
		zap.Strings("galleries", c.Names),
		zap.Int("items", c.Len()),
		zap.Int("metadata_entries", len(meta)),
	)
	return c
}

func buildItem(gallery, filename string, meta map[string]models.MetadataEntry) models.GalleryItem {
	entry, ok := meta[strings.ToLower(filename)]

	alt := AltText(filename)
	if ok && entry.Name != "" {
		alt = entry.Name
	}

	it := models.GalleryItem{
		Src:         PublicPath(gallery, filename),
		Alt:         alt,
		Name:        alt,
		Price:       DefaultPrice,
		Description: DefaultDescription,
	}
	if !ok {
		return it
	}
	if p := entry.Price; p != nil && *p >= 0 && !math.IsNaN(*p) && !math.IsInf(*p, 0) {
		it.Price = *p
	}
	if entry.Description != nil {
		it.Description = *entry.Description
	}
	return it
}

// sortFilenames orders case-insensitively, breaking ties on the raw name so
// the order is total.
func sortFilenames(names []string) {
	slices.SortFunc(names, func(a, b string) int {
		if c := strings.Compare(strings.ToLower(a), strings.ToLower(b)); c != 0 {
			return c
		}
		return strings.Compare(a, b)
	})
}

func isFile(dir string, e os.DirEntry) bool {
	if e.Type().IsRegular() {
		return true
	}
	if e.Type()&os.ModeSymlink == 0 {
		return false
	}
	fi, err := os.Stat(filepath.Join(dir, e.Name()))
	return err == nil && fi.Mode().IsRegular()
}
