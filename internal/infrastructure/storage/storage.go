// Package storage provides a uniform contract over the object storage
// providers the gallery can upload photos to. The concrete backend is chosen
// once at startup from configuration and never switched at runtime.
package storage

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"

	"github.com/wedding-gallery/photo-api/internal/config"
)

// ObjectPrefix is the fixed logical namespace all photo objects live under.
// Advisory filenames from clients never influence the object path.
const ObjectPrefix = "wedding_photos/"

// Backend is the storage contract the handler layer programs against.
//
// UploadImage and DeleteImage perform network I/O and must be called with a
// request-scoped context. URL generation and ExtractKeyFromURL are inverse
// operations for the same backend: the key extracted from an upload's URL is
// a valid DeleteImage identifier.
type Backend interface {
	// UploadImage drains the stream into the backend under a
	// collision-resistant key and returns the public URL. The stream is
	// closed on every exit path. A returned error is an expected failure
	// signal for that request, never a reason to panic.
	UploadImage(ctx context.Context, image io.ReadCloser, filename string) (string, error)

	// DeleteImage removes the object identified by key, best-effort.
	// False covers both provider errors and an already-absent object;
	// callers decide whether that is worth more than a warning.
	DeleteImage(ctx context.Context, identifier string) bool

	// ExtractKeyFromURL parses the provider's URL shape and returns the
	// embedded object key. Pure, no I/O.
	ExtractKeyFromURL(url string) (string, bool)
}

// New constructs the configured storage backend.
func New(ctx context.Context, cfg *config.Config, log zerolog.Logger) (Backend, error) {
	switch cfg.Backend() {
	case "s3":
		return NewS3Backend(ctx, cfg, log)
	case "minio":
		return NewMinioBackend(ctx, cfg, log)
	case "cloudinary":
		return NewCloudinaryBackend(cfg, log)
	case "local":
		return NewLocalBackend(cfg, log)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
}

// drain reads the image stream fully into memory and closes it. Buffering is
// acceptable for photo-sized payloads and is what the CDN SDK needs anyway.
func drain(image io.ReadCloser) ([]byte, error) {
	defer func() {
		_ = image.Close()
	}()
	return io.ReadAll(image)
}

// objectExtension derives a lowercase file extension from the advisory
// filename, falling back to jpg.
func objectExtension(filename string) string {
	idx := strings.LastIndex(filename, ".")
	if idx < 0 || idx == len(filename)-1 {
		return "jpg"
	}
	ext := strings.ToLower(filename[idx+1:])
	if strings.ContainsAny(ext, "/\\") || len(ext) > 8 {
		return "jpg"
	}
	return ext
}
