// Package thumbs renders resized JPEG previews of gallery images and keeps
// them in a disk cache next to the originals' modification times.
package thumbs

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"go.uber.org/zap"

	"artshop/internal/catalog"
	"artshop/pkg/logging"
)

var (
	ErrInvalidName = errors.New("invalid gallery or file name")
	ErrUnknownSize = errors.New("unknown thumbnail size")
	ErrNotFound    = errors.New("image not found")
	ErrDecode      = errors.New("image cannot be decoded")
)

type Size struct {
	MaxDim  int
	Quality int
}

// Sizes maps the size query values to their bounds.
var Sizes = map[string]Size{
	"thumb":  {MaxDim: 300, Quality: 60},
	"medium": {MaxDim: 800, Quality: 75},
}

const DefaultSize = "thumb"

type Service struct {
	AssetsRoot string
	CacheDir   string
	Logger     *zap.Logger
}

func New(assetsRoot, cacheDir string, logger *zap.Logger) *Service {
	return &Service{
		AssetsRoot: assetsRoot,
		CacheDir:   cacheDir,
		Logger:     logging.OrNop(logger).Named("thumbs"),
	}
}

// Result is a rendered thumbnail. Cached is set when it came from disk.
type Result struct {
	Data   []byte
	Cached bool
}

// Thumbnail returns the JPEG preview of gallery/file at the named size.
// A cached copy is reused unless the original changed after it was written.
func (s *Service) Thumbnail(gallery, file, size string) (Result, error) {
	if !catalog.ValidName(gallery) || !catalog.ValidName(file) || !catalog.IsImage(file) {
		return Result{}, ErrInvalidName
	}
	sz, ok := Sizes[size]
	if !ok {
		return Result{}, fmt.Errorf("%q: %w", size, ErrUnknownSize)
	}

	src := filepath.Join(s.AssetsRoot, gallery, file)
	fi, err := os.Stat(src)
	if err != nil || !fi.Mode().IsRegular() {
		return Result{}, ErrNotFound
	}

	cachePath := s.cachePath(gallery, file, size)
	if cfi, err := os.Stat(cachePath); err == nil && !cfi.ModTime().Before(fi.ModTime()) {
		if data, err := os.ReadFile(cachePath); err == nil {
			return Result{Data: data, Cached: true}, nil
		}
	}

	img, err := imaging.Open(src, imaging.AutoOrientation(true))
	if err != nil {
		return Result{}, fmt.Errorf("%s: %w", file, ErrDecode)
	}
	img = imaging.Fit(img, sz.MaxDim, sz.MaxDim, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(sz.Quality)); err != nil {
		return Result{}, fmt.Errorf("encode %s: %w", file, err)
	}

	if err := writeAtomic(cachePath, buf.Bytes()); err != nil {
		logging.OrNop(s.Logger).Warn("thumbnail not cached",
			zap.String("path", cachePath),
			zap.Error(err),
		)
	}
	return Result{Data: buf.Bytes()}, nil
}

func (s *Service) cachePath(gallery, file, size string) string {
	stem := strings.TrimSuffix(file, filepath.Ext(file))
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(file)), ".")
	return filepath.Join(s.CacheDir, gallery, fmt.Sprintf("%s_%s_%s.jpg", stem, ext, size))
}

func writeAtomic(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".thumb-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}
