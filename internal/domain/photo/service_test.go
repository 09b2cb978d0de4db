package photo

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wedding-gallery/photo-api/internal/config"
	"github.com/wedding-gallery/photo-api/internal/utils/platformerrors"
)

var jpegHeader = []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 0x4A, 0x46, 0x49, 0x46}

// stubBackend implements storage.Backend with canned behavior and records
// the delete calls it receives.
type stubBackend struct {
	uploadURL   string
	uploadErr   error
	deleted     []string
	deleteOK    bool
	extractFail bool
}

func (b *stubBackend) UploadImage(_ context.Context, image io.ReadCloser, _ string) (string, error) {
	_ = image.Close()
	if b.uploadErr != nil {
		return "", b.uploadErr
	}
	return b.uploadURL, nil
}

func (b *stubBackend) DeleteImage(_ context.Context, identifier string) bool {
	b.deleted = append(b.deleted, identifier)
	return b.deleteOK
}

func (b *stubBackend) ExtractKeyFromURL(url string) (string, bool) {
	if b.extractFail {
		return "", false
	}
	return "wedding_photos/extracted", true
}

// stubRepo keeps photos in a slice ordered by insertion.
type stubRepo struct {
	nextID    int
	photos    []Photo
	createErr error
}

func (r *stubRepo) Create(_ context.Context, imageURL, uploaderID string, uploadedAt time.Time) (*Photo, error) {
	if r.createErr != nil {
		return nil, r.createErr
	}
	r.nextID++
	p := Photo{PhotoID: r.nextID, ImageURL: imageURL, UploaderID: uploaderID, UploadedAt: uploadedAt}
	r.photos = append(r.photos, p)
	return &p, nil
}

func (r *stubRepo) GetByID(_ context.Context, photoID int) (*Photo, error) {
	for _, p := range r.photos {
		if p.PhotoID == photoID {
			clone := p
			return &clone, nil
		}
	}
	return nil, nil
}

func (r *stubRepo) List(_ context.Context, uploaderID string, page, limit int) ([]Photo, error) {
	return r.photos, nil
}

func (r *stubRepo) Count(_ context.Context, uploaderID string) (int64, error) {
	return int64(len(r.photos)), nil
}

func (r *stubRepo) Delete(_ context.Context, photoID int, uploaderID string) (bool, error) {
	for i, p := range r.photos {
		if p.PhotoID != photoID {
			continue
		}
		if uploaderID != "" && p.UploaderID != uploaderID {
			return false, nil
		}
		r.photos = append(r.photos[:i], r.photos[i+1:]...)
		return true, nil
	}
	return false, nil
}

func newTestService(backend *stubBackend, repo *stubRepo) *Service {
	cfg := &config.Config{MaxUploadBytes: 1 << 20}
	svc := NewService(cfg, repo, backend, zerolog.Nop())
	svc.now = func() time.Time { return time.Date(2026, 6, 20, 18, 30, 0, 0, time.UTC) }
	return svc
}

func TestUploadSuccess(t *testing.T) {
	backend := &stubBackend{uploadURL: "https://cdn.example.com/wedding_photos/abc.jpg", deleteOK: true}
	repo := &stubRepo{}
	svc := newTestService(backend, repo)

	photo, err := svc.Upload(context.Background(), bytes.NewReader(jpegHeader), "guest.jpg", "guest-42")
	require.NoError(t, err)
	assert.Equal(t, 1, photo.PhotoID)
	assert.Equal(t, backend.uploadURL, photo.ImageURL)
	assert.Equal(t, "guest-42", photo.UploaderID)
	assert.Equal(t, time.Date(2026, 6, 20, 18, 30, 0, 0, time.UTC), photo.UploadedAt)
	assert.Empty(t, backend.deleted)
}

func TestUploadRequiresUploaderID(t *testing.T) {
	svc := newTestService(&stubBackend{}, &stubRepo{})

	_, err := svc.Upload(context.Background(), bytes.NewReader(jpegHeader), "guest.jpg", "")
	require.Error(t, err)
	assert.True(t, platformerrors.IsType(err, platformerrors.ErrorTypeValidation))
}

func TestUploadRejectsEmptyFile(t *testing.T) {
	svc := newTestService(&stubBackend{}, &stubRepo{})

	_, err := svc.Upload(context.Background(), bytes.NewReader(nil), "guest.jpg", "guest-42")
	require.Error(t, err)
	assert.True(t, platformerrors.IsType(err, platformerrors.ErrorTypeValidation))
}

func TestUploadRejectsOversizedFile(t *testing.T) {
	backend := &stubBackend{}
	repo := &stubRepo{}
	svc := newTestService(backend, repo)

	big := append(append([]byte{}, jpegHeader...), make([]byte, 1<<20)...)
	_, err := svc.Upload(context.Background(), bytes.NewReader(big), "guest.jpg", "guest-42")
	require.Error(t, err)
	assert.True(t, platformerrors.IsType(err, platformerrors.ErrorTypeValidation))
	assert.Empty(t, repo.photos)
}

func TestUploadRejectsNonImagePayload(t *testing.T) {
	backend := &stubBackend{}
	repo := &stubRepo{}
	svc := newTestService(backend, repo)

	_, err := svc.Upload(context.Background(), bytes.NewReader([]byte("%PDF-1.4 not a photo")), "doc.pdf", "guest-42")
	require.Error(t, err)
	assert.True(t, platformerrors.IsType(err, platformerrors.ErrorTypeValidation))
	assert.Empty(t, repo.photos)
}

func TestUploadStorageFailureLeavesNoMetadata(t *testing.T) {
	backend := &stubBackend{uploadErr: errors.New("bucket unreachable")}
	repo := &stubRepo{}
	svc := newTestService(backend, repo)

	_, err := svc.Upload(context.Background(), bytes.NewReader(jpegHeader), "guest.jpg", "guest-42")
	require.Error(t, err)
	assert.True(t, platformerrors.IsType(err, platformerrors.ErrorTypeExternal))
	assert.Empty(t, repo.photos)
}

func TestUploadMetadataFailureCleansUpStoredObject(t *testing.T) {
	backend := &stubBackend{uploadURL: "https://cdn.example.com/wedding_photos/abc.jpg", deleteOK: true}
	repo := &stubRepo{createErr: errors.New("insert failed")}
	svc := newTestService(backend, repo)

	_, err := svc.Upload(context.Background(), bytes.NewReader(jpegHeader), "guest.jpg", "guest-42")
	require.Error(t, err)
	require.Len(t, backend.deleted, 1)
	assert.Equal(t, "wedding_photos/extracted", backend.deleted[0])
}

func TestGetUnknownPhotoIsNotFound(t *testing.T) {
	svc := newTestService(&stubBackend{}, &stubRepo{})

	_, err := svc.Get(context.Background(), 123)
	require.Error(t, err)
	assert.True(t, platformerrors.IsType(err, platformerrors.ErrorTypeNotFound))
}

func TestDeleteRemovesMetadataAndObject(t *testing.T) {
	backend := &stubBackend{uploadURL: "https://cdn.example.com/wedding_photos/abc.jpg", deleteOK: true}
	repo := &stubRepo{}
	svc := newTestService(backend, repo)

	photo, err := svc.Upload(context.Background(), bytes.NewReader(jpegHeader), "guest.jpg", "guest-42")
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), photo.PhotoID, "guest-42"))
	assert.Empty(t, repo.photos)
	require.Len(t, backend.deleted, 1)
}

func TestDeleteWithoutUploaderSkipsOwnershipCheck(t *testing.T) {
	backend := &stubBackend{uploadURL: "https://cdn.example.com/wedding_photos/abc.jpg", deleteOK: true}
	repo := &stubRepo{}
	svc := newTestService(backend, repo)

	photo, err := svc.Upload(context.Background(), bytes.NewReader(jpegHeader), "guest.jpg", "guest-42")
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), photo.PhotoID, ""))
	assert.Empty(t, repo.photos)
}

func TestDeleteOwnershipMismatchIsForbidden(t *testing.T) {
	backend := &stubBackend{uploadURL: "https://cdn.example.com/wedding_photos/abc.jpg", deleteOK: true}
	repo := &stubRepo{}
	svc := newTestService(backend, repo)

	photo, err := svc.Upload(context.Background(), bytes.NewReader(jpegHeader), "guest.jpg", "guest-42")
	require.NoError(t, err)

	err = svc.Delete(context.Background(), photo.PhotoID, "someone-else")
	require.Error(t, err)
	assert.True(t, platformerrors.IsType(err, platformerrors.ErrorTypeForbidden))
	assert.Len(t, repo.photos, 1, "record must survive a forbidden delete")
	assert.Empty(t, backend.deleted)
}

func TestDeleteUnknownPhotoIsNotFound(t *testing.T) {
	svc := newTestService(&stubBackend{}, &stubRepo{})

	err := svc.Delete(context.Background(), 404, "")
	require.Error(t, err)
	assert.True(t, platformerrors.IsType(err, platformerrors.ErrorTypeNotFound))
}

func TestDeleteSurvivesStorageFailure(t *testing.T) {
	backend := &stubBackend{uploadURL: "https://cdn.example.com/wedding_photos/abc.jpg", deleteOK: false}
	repo := &stubRepo{}
	svc := newTestService(backend, repo)

	photo, err := svc.Upload(context.Background(), bytes.NewReader(jpegHeader), "guest.jpg", "guest-42")
	require.NoError(t, err)

	// Metadata removal wins; a storage failure afterwards is only logged.
	require.NoError(t, svc.Delete(context.Background(), photo.PhotoID, "guest-42"))
	assert.Empty(t, repo.photos)
}
