package main

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"artshop/internal/catalog"
	"artshop/internal/topics"
	"artshop/pkg/database"
	"artshop/pkg/logging"
	"artshop/pkg/utils"
)

type export struct {
	GeneratedAt time.Time           `json:"generated_at"`
	Total       int                 `json:"total"`
	Catalog     *catalog.Collection `json:"catalog"`
}

func main() {
	cfg := utils.LoadServerConfig()
	var (
		outPath    = pflag.StringP("out", "o", "data/catalog.json", "output JSON path, - for stdout")
		assetsRoot = pflag.String("assets", cfg.AssetsRoot, "static assets root")
		dbPath     = pflag.String("db", cfg.DB.Path, "metadata store path")
		topicsFile = pflag.String("topics", cfg.TopicsFile, "topic tree YAML, empty for the built-in tree")
	)
	pflag.Parse()

	logger, err := logging.NewLogger(cfg.LogLevel)
	if err != nil {
		log.Fatalf("logger init failed: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	tree, err := topics.LoadOrDefault(*topicsFile)
	if err != nil {
		logger.Fatal("topic tree invalid", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	resolver := catalog.NewResolver(*assetsRoot, database.Config{Path: *dbPath}, tree.GalleryKeys(), logger)
	coll := resolver.LoadGalleries(ctx)

	b, err := json.MarshalIndent(export{
		GeneratedAt: time.Now().UTC(),
		Total:       coll.Len(),
		Catalog:     coll,
	}, "", "  ")
	if err != nil {
		logger.Fatal("marshal failed", zap.Error(err))
	}

	if *outPath == "-" {
		_, _ = os.Stdout.Write(append(b, '\n'))
		return
	}
	if err := os.MkdirAll(filepath.Dir(*outPath), 0o755); err != nil {
		logger.Fatal("mkdir failed", zap.Error(err))
	}
	if err := os.WriteFile(*outPath, b, 0o644); err != nil {
		logger.Fatal("write failed", zap.Error(err))
	}

	logger.Info("exported catalog",
		zap.Int("items", coll.Len()),
		zap.Strings("galleries", coll.Names),
		zap.String("out", *outPath),
	)
}
