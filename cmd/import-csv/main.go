package main

import (
	"context"
	"database/sql"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"artshop/pkg/database"
	"artshop/pkg/logging"
)

func main() {
	var (
		dbPath  = pflag.String("db", database.DefaultConfig().Path, "metadata store path")
		in      = pflag.StringP("in", "i", "data/gallery_items.csv", "input CSV path")
		replace = pflag.Bool("replace", false, "delete existing rows before importing")
	)
	pflag.Parse()

	logger, err := logging.NewLogger(os.Getenv("LOG_LEVEL"))
	if err != nil {
		log.Fatalf("logger init failed: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := database.Open(database.Config{Path: *dbPath})
	if err != nil {
		logger.Fatal("open store failed", zap.Error(err))
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		logger.Fatal("db migrate failed", zap.Error(err))
	}

	f, err := os.Open(*in)
	if err != nil {
		logger.Fatal("open csv failed", zap.Error(err))
	}
	defer f.Close()

	n, err := importItems(ctx, db, f, *replace)
	if err != nil {
		logger.Fatal("import failed", zap.String("in", *in), zap.Error(err))
	}
	logger.Info("imported gallery items",
		zap.Int("rows", n),
		zap.String("in", *in),
		zap.String("db", *dbPath),
		zap.Bool("replace", *replace),
	)
}

// importItems loads rows with the columns image_path, name, price,
// description and display into gallery_items inside one transaction.
// Empty cells become NULL so the catalog applies its defaults.
func importItems(ctx context.Context, db *sql.DB, src io.Reader, replace bool) (int, error) {
	r := csv.NewReader(src)
	r.FieldsPerRecord = -1

	header, err := readHeader(r)
	if err != nil {
		return 0, fmt.Errorf("read header: %w", err)
	}
	if _, ok := header["image_path"]; !ok {
		return 0, errors.New("csv has no image_path column")
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	if replace {
		if _, err := tx.ExecContext(ctx, `DELETE FROM gallery_items`); err != nil {
			return 0, fmt.Errorf("clear gallery_items: %w", err)
		}
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO gallery_items (image_path, name, price, description, display)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	n := 0
	for line := 2; ; line++ {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return 0, err
		}

		imagePath := valueAt(header, row, "image_path")
		if imagePath == "" {
			continue
		}

		price, err := parseNullFloat(valueAt(header, row, "price"))
		if err != nil {
			return 0, fmt.Errorf("line %d: parse price: %w", line, err)
		}
		display, err := parseDisplay(valueAt(header, row, "display"))
		if err != nil {
			return 0, fmt.Errorf("line %d: parse display: %w", line, err)
		}

		if _, err := stmt.ExecContext(
			ctx,
			imagePath,
			nullString(valueAt(header, row, "name")),
			price,
			nullString(valueAt(header, row, "description")),
			display,
		); err != nil {
			return 0, fmt.Errorf("line %d: %w", line, err)
		}
		n++
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return n, nil
}

func readHeader(r *csv.Reader) (map[string]int, error) {
	row, err := r.Read()
	if err != nil {
		return nil, err
	}
	header := make(map[string]int, len(row))
	for idx, name := range row {
		header[strings.TrimSpace(strings.ToLower(name))] = idx
	}
	return header, nil
}

func valueAt(header map[string]int, row []string, key string) string {
	idx, ok := header[key]
	if !ok || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func parseNullFloat(raw string) (sql.NullFloat64, error) {
	if raw == "" {
		return sql.NullFloat64{}, nil
	}
	f, err := strconv.ParseFloat(strings.TrimPrefix(raw, "$"), 64)
	if err != nil {
		return sql.NullFloat64{}, err
	}
	return sql.NullFloat64{Float64: f, Valid: true}, nil
}

// parseDisplay defaults to shown; accepts 0/1 and true/false.
func parseDisplay(raw string) (int, error) {
	if raw == "" {
		return 1, nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return 0, err
	}
	if b {
		return 1, nil
	}
	return 0, nil
}

func nullString(raw string) sql.NullString {
	if raw == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: raw, Valid: true}
}
