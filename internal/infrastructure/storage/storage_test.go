package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wedding-gallery/photo-api/internal/config"
	"github.com/wedding-gallery/photo-api/utils/photokey"
)

func TestObjectExtension(t *testing.T) {
	tests := []struct {
		filename string
		want     string
	}{
		{"photo.jpg", "jpg"},
		{"photo.JPEG", "jpeg"},
		{"archive.tar.gz", "gz"},
		{"noextension", "jpg"},
		{"trailingdot.", "jpg"},
		{"", "jpg"},
		{"weird.ext/with/slash", "jpg"},
		{"huge.extensionnn", "jpg"},
		{"pic.heic", "heic"},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, objectExtension(tc.filename), "filename %q", tc.filename)
	}
}

type trackingReadCloser struct {
	io.Reader
	closed bool
}

func (r *trackingReadCloser) Close() error {
	r.closed = true
	return nil
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("stream broken") }

func TestDrainClosesStream(t *testing.T) {
	rc := &trackingReadCloser{Reader: bytes.NewReader([]byte("payload"))}
	data, err := drain(rc)
	require.NoError(t, err)
	assert.Equal(t, []byte("payload"), data)
	assert.True(t, rc.closed)
}

func TestDrainClosesStreamOnReadError(t *testing.T) {
	rc := &trackingReadCloser{Reader: failingReader{}}
	_, err := drain(rc)
	require.Error(t, err)
	assert.True(t, rc.closed)
}

func TestS3ExtractKeyFromURLInvertsUploadURL(t *testing.T) {
	b := &S3Backend{
		bucket:     "wedding-bucket",
		publicBase: "https://wedding-bucket.s3.eu-central-1.amazonaws.com",
		log:        zerolog.Nop(),
	}

	key := ObjectPrefix + photokey.New() + ".jpg"
	url := fmt.Sprintf("%s/%s", b.publicBase, key)

	got, ok := b.ExtractKeyFromURL(url)
	require.True(t, ok)
	assert.Equal(t, key, got)
}

func TestS3ExtractKeyFromURLWithCustomEndpoint(t *testing.T) {
	b := &S3Backend{
		bucket:     "wedding-bucket",
		publicBase: "https://storage.example.net/wedding-bucket",
		log:        zerolog.Nop(),
	}

	key := ObjectPrefix + photokey.New() + ".jpg"
	url := fmt.Sprintf("%s/%s", b.publicBase, key)

	got, ok := b.ExtractKeyFromURL(url)
	require.True(t, ok)
	assert.Equal(t, key, got)

	// URLs written under the AWS template stay resolvable after an
	// endpoint change.
	got, ok = b.ExtractKeyFromURL("https://wedding-bucket.s3.eu-central-1.amazonaws.com/" + key)
	require.True(t, ok)
	assert.Equal(t, key, got)
}

func TestS3ExtractKeyFromURLRejectsForeignURL(t *testing.T) {
	b := &S3Backend{
		bucket:     "wedding-bucket",
		publicBase: "https://wedding-bucket.s3.eu-central-1.amazonaws.com",
		log:        zerolog.Nop(),
	}

	_, ok := b.ExtractKeyFromURL("https://res.cloudinary.com/demo/image/upload/v1/wedding_photos/abc.jpg")
	assert.False(t, ok)

	_, ok = b.ExtractKeyFromURL("")
	assert.False(t, ok)
}

func TestMinioExtractKeyFromURLInvertsUploadURL(t *testing.T) {
	b := &MinioBackend{bucket: "wedding-photos", publicBase: "https://minio.example.com", log: zerolog.Nop()}

	key := ObjectPrefix + photokey.New() + ".png"
	url := fmt.Sprintf("%s/%s/%s", b.publicBase, b.bucket, key)

	got, ok := b.ExtractKeyFromURL(url)
	require.True(t, ok)
	assert.Equal(t, key, got)
}

func TestMinioExtractKeyFromURLRejectsOtherBucket(t *testing.T) {
	b := &MinioBackend{bucket: "wedding-photos", publicBase: "https://minio.example.com", log: zerolog.Nop()}

	_, ok := b.ExtractKeyFromURL("https://minio.example.com/other-bucket/wedding_photos/abc.png")
	assert.False(t, ok)

	_, ok = b.ExtractKeyFromURL("https://minio.example.com/wedding-photos/")
	assert.False(t, ok)
}

func TestCloudinaryExtractKeyFromURL(t *testing.T) {
	b := &CloudinaryBackend{log: zerolog.Nop()}

	publicID := "wedding_photos/" + photokey.New()
	url := "https://res.cloudinary.com/demo/image/upload/v1712345678/" + publicID + ".jpg"

	got, ok := b.ExtractKeyFromURL(url)
	require.True(t, ok)
	assert.Equal(t, publicID, got)

	_, ok = b.ExtractKeyFromURL("https://res.cloudinary.com/demo/image/upload/no-version/abc.jpg")
	assert.False(t, ok)
}

func TestLocalBackendRoundTrip(t *testing.T) {
	cfg := &config.Config{
		LocalStoragePath:    t.TempDir(),
		LocalStorageBaseURL: "http://localhost:8080/files",
	}
	b, err := NewLocalBackend(cfg, zerolog.Nop())
	require.NoError(t, err)

	rc := &trackingReadCloser{Reader: bytes.NewReader([]byte{0xFF, 0xD8, 0xFF, 0xE0})}
	url, err := b.UploadImage(context.Background(), rc, "guest.jpg")
	require.NoError(t, err)
	assert.True(t, rc.closed)
	assert.Contains(t, url, "/"+ObjectPrefix)

	key, ok := b.ExtractKeyFromURL(url)
	require.True(t, ok)
	assert.True(t, len(key) > len(ObjectPrefix))

	assert.True(t, b.DeleteImage(context.Background(), key))
	assert.False(t, b.DeleteImage(context.Background(), key), "second delete should report absence")
}

func TestLocalExtractKeyFromURLRejectsForeignBase(t *testing.T) {
	cfg := &config.Config{
		LocalStoragePath:    t.TempDir(),
		LocalStorageBaseURL: "http://localhost:8080/files",
	}
	b, err := NewLocalBackend(cfg, zerolog.Nop())
	require.NoError(t, err)

	_, ok := b.ExtractKeyFromURL("http://elsewhere:9090/files/wedding_photos/abc.jpg")
	assert.False(t, ok)
}

func TestNewRejectsUnknownBackend(t *testing.T) {
	cfg := &config.Config{StorageBackend: "ftp"}
	_, err := New(context.Background(), cfg, zerolog.Nop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown storage backend")
}
