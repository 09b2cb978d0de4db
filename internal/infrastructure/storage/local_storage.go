package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/wedding-gallery/photo-api/internal/config"
	"github.com/wedding-gallery/photo-api/utils/photokey"
)

// LocalBackend writes photos to the local filesystem. Development only; the
// base URL must be served by something else (or the frontend dev proxy).
type LocalBackend struct {
	basePath string
	baseURL  string
	log      zerolog.Logger
}

func NewLocalBackend(cfg *config.Config, log zerolog.Logger) (*LocalBackend, error) {
	if err := os.MkdirAll(filepath.Join(cfg.LocalStoragePath, ObjectPrefix), 0o755); err != nil {
		return nil, fmt.Errorf("create local storage directory: %w", err)
	}
	return &LocalBackend{
		basePath: cfg.LocalStoragePath,
		baseURL:  strings.TrimRight(cfg.LocalStorageBaseURL, "/"),
		log:      log.With().Str("component", "local-storage").Logger(),
	}, nil
}

func (b *LocalBackend) UploadImage(ctx context.Context, image io.ReadCloser, filename string) (string, error) {
	data, err := drain(image)
	if err != nil {
		b.log.Error().Err(err).Str("filename", filename).Msg("failed to read image stream")
		return "", fmt.Errorf("read image stream: %w", err)
	}

	key := ObjectPrefix + photokey.New() + "." + objectExtension(filename)
	fullPath := filepath.Join(b.basePath, filepath.FromSlash(key))
	if err := os.WriteFile(fullPath, data, 0o644); err != nil {
		b.log.Error().Err(err).Str("filename", filename).Str("key", key).Msg("failed to write image file")
		return "", fmt.Errorf("write file %q: %w", key, err)
	}

	url := b.baseURL + "/" + key
	b.log.Info().Str("filename", filename).Str("key", key).Int("bytes", len(data)).Msg("stored image locally")
	return url, nil
}

func (b *LocalBackend) DeleteImage(ctx context.Context, identifier string) bool {
	fullPath := filepath.Join(b.basePath, filepath.FromSlash(identifier))
	if err := os.Remove(fullPath); err != nil {
		if os.IsNotExist(err) {
			b.log.Warn().Str("key", identifier).Msg("image file not found")
		} else {
			b.log.Error().Err(err).Str("key", identifier).Msg("failed to delete image file")
		}
		return false
	}
	b.log.Info().Str("key", identifier).Msg("deleted image file")
	return true
}

func (b *LocalBackend) ExtractKeyFromURL(url string) (string, bool) {
	if !strings.HasPrefix(url, b.baseURL+"/") {
		return "", false
	}
	key := strings.TrimPrefix(url, b.baseURL+"/")
	if key == "" {
		return "", false
	}
	return key, true
}
