package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"path"
	"strings"

	"artshop/pkg/models"
)

const metadataQuery = `SELECT image_path, name, price, description FROM gallery_items WHERE display = 1`

// Repo reads display metadata from the gallery_items table. It never writes.
type Repo struct {
	DB *sql.DB
}

func NewRepo(db *sql.DB) *Repo {
	return &Repo{DB: db}
}

// Metadata returns display-enabled rows keyed by lowercased file name.
// Rows without an image_path are skipped and counted; for duplicate keys
// the later row wins.
func (r *Repo) Metadata(ctx context.Context) (map[string]models.MetadataEntry, int, error) {
	rows, err := r.DB.QueryContext(ctx, metadataQuery)
	if err != nil {
		return nil, 0, fmt.Errorf("metadata query: %w", err)
	}
	defer rows.Close()

	out := make(map[string]models.MetadataEntry)
	skipped := 0
	for rows.Next() {
		var (
			imagePath   sql.NullString
			name        sql.NullString
			price       sql.NullFloat64
			description sql.NullString
		)
		if err := rows.Scan(&imagePath, &name, &price, &description); err != nil {
			return nil, 0, fmt.Errorf("metadata scan: %w", err)
		}

		key := MetadataKey(imagePath.String)
		if !imagePath.Valid || key == "" {
			skipped++
			continue
		}

		entry := models.MetadataEntry{Name: name.String}
		if price.Valid {
			p := price.Float64
			entry.Price = &p
		}
		if description.Valid {
			d := description.String
			entry.Description = &d
		}
		out[key] = entry
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("metadata rows: %w", err)
	}
	return out, skipped, nil
}

// MetadataKey reduces a stored image path to the lookup key used by the
// gallery builder: its lowercased final path component. Both slash styles
// are accepted as separators. A path ending in a separator names a
// directory and has no key.
func MetadataKey(imagePath string) string {
	p := strings.ReplaceAll(strings.TrimSpace(imagePath), `\`, "/")
	if p == "" || strings.HasSuffix(p, "/") {
		return ""
	}
	base := path.Base(p)
	if base == "." || base == "/" {
		return ""
	}
	return strings.ToLower(base)
}
