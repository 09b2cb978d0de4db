package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/wedding-gallery/photo-api/internal/config"
	accessdomain "github.com/wedding-gallery/photo-api/internal/domain/accesstoken"
	photodomain "github.com/wedding-gallery/photo-api/internal/domain/photo"
	"github.com/wedding-gallery/photo-api/internal/infrastructure/database/entities"
	accessrepo "github.com/wedding-gallery/photo-api/internal/infrastructure/repository/accesstoken"
	photorepo "github.com/wedding-gallery/photo-api/internal/infrastructure/repository/photo"
	"github.com/wedding-gallery/photo-api/internal/interfaces/httpserver/handlers"
	"github.com/wedding-gallery/photo-api/internal/interfaces/httpserver/routes"
)

var jpegHeader = []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 0x4A, 0x46, 0x49, 0x46}

type stubBackend struct {
	deleted []string
}

func (b *stubBackend) UploadImage(_ context.Context, image io.ReadCloser, filename string) (string, error) {
	defer image.Close()
	if _, err := io.ReadAll(image); err != nil {
		return "", err
	}
	return "https://cdn.example.com/wedding_photos/" + filename, nil
}

func (b *stubBackend) DeleteImage(_ context.Context, identifier string) bool {
	b.deleted = append(b.deleted, identifier)
	return true
}

func (b *stubBackend) ExtractKeyFromURL(url string) (string, bool) {
	const marker = "/wedding_photos/"
	idx := strings.Index(url, marker)
	if idx < 0 {
		return "", false
	}
	return "wedding_photos/" + url[idx+len(marker):], true
}

type testEnv struct {
	router    *gin.Engine
	backend   *stubBackend
	photoRepo *photorepo.Repository
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&entities.Photo{}, &entities.AccessToken{}))

	cfg := &config.Config{MaxUploadBytes: 1 << 20}
	backend := &stubBackend{}
	photoRepository := photorepo.NewRepository(db)

	photoService := photodomain.NewService(cfg, photoRepository, backend, zerolog.Nop())
	accessService := accessdomain.NewService(cfg, accessrepo.NewRepository(db), zerolog.Nop())

	router := gin.New()
	provider := handlers.NewProvider(cfg, photoService, accessService, zerolog.Nop())
	routes.New(provider).Register(router.Group("/"))

	return &testEnv{router: router, backend: backend, photoRepo: photoRepository}
}

func (e *testEnv) do(t *testing.T, method, path string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) uploadPhoto(t *testing.T, uploaderID string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	require.NoError(t, writer.WriteField("uploader_id", uploaderID))
	part, err := writer.CreateFormFile("image", "guest.jpg")
	require.NoError(t, err)
	_, err = part.Write(jpegHeader)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	return e.do(t, http.MethodPost, "/photos", &buf, writer.FormDataContentType())
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestUploadPhotoCreated(t *testing.T) {
	env := newTestEnv(t)

	rec := env.uploadPhoto(t, "guest-42")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	photo := decode[photodomain.Photo](t, rec)
	assert.NotZero(t, photo.PhotoID)
	assert.Equal(t, "guest-42", photo.UploaderID)
	assert.Contains(t, photo.ImageURL, "wedding_photos/")
}

func TestUploadPhotoMissingFields(t *testing.T) {
	env := newTestEnv(t)

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	require.NoError(t, writer.WriteField("uploader_id", "guest-42"))
	require.NoError(t, writer.Close())

	rec := env.do(t, http.MethodPost, "/photos", &buf, writer.FormDataContentType())
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListPhotosPagination(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	base := time.Date(2026, 6, 20, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		_, err := env.photoRepo.Create(ctx,
			fmt.Sprintf("https://cdn.example.com/wedding_photos/%d.jpg", i),
			"guest-1", base.Add(time.Duration(i)*time.Minute))
		require.NoError(t, err)
	}

	rec := env.do(t, http.MethodGet, "/photos?page=2&limit=2", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)

	page := decode[struct {
		Data  []photodomain.Photo `json:"data"`
		Page  int                 `json:"page"`
		Limit int                 `json:"limit"`
		Total int64               `json:"total"`
		Pages int64               `json:"pages"`
	}](t, rec)

	assert.Equal(t, 2, page.Page)
	assert.Equal(t, 2, page.Limit)
	assert.Equal(t, int64(5), page.Total)
	assert.Equal(t, int64(3), page.Pages)
	require.Len(t, page.Data, 2)
	assert.True(t, page.Data[0].UploadedAt.After(page.Data[1].UploadedAt), "newest first")
}

func TestListPhotosRejectsBadPaging(t *testing.T) {
	env := newTestEnv(t)

	for _, path := range []string{"/photos?page=0", "/photos?page=abc", "/photos?limit=-1"} {
		rec := env.do(t, http.MethodGet, path, nil, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code, path)
	}
}

func TestGetPhotoNotFound(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/photos/999", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeletePhotoOwnershipEnforced(t *testing.T) {
	env := newTestEnv(t)

	created := decode[photodomain.Photo](t, env.uploadPhoto(t, "guest-42"))

	body := strings.NewReader(`{"uploader_id":"intruder"}`)
	rec := env.do(t, http.MethodDelete, fmt.Sprintf("/photos/%d", created.PhotoID), body, "application/json")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = env.do(t, http.MethodGet, fmt.Sprintf("/photos/%d", created.PhotoID), nil, "")
	assert.Equal(t, http.StatusOK, rec.Code, "photo must survive a forbidden delete")
}

func TestDeletePhotoWithoutBodySkipsOwnership(t *testing.T) {
	env := newTestEnv(t)

	created := decode[photodomain.Photo](t, env.uploadPhoto(t, "guest-42"))

	rec := env.do(t, http.MethodDelete, fmt.Sprintf("/photos/%d", created.PhotoID), nil, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.NotEmpty(t, env.backend.deleted, "stored object removed after metadata delete")

	rec = env.do(t, http.MethodGet, fmt.Sprintf("/photos/%d", created.PhotoID), nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAccessTokenGenerateAndValidate(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/access/generate",
		strings.NewReader(`{"description":"table 7","validityHours":24}`), "application/json")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	token := decode[accessdomain.AccessToken](t, rec)
	assert.Len(t, token.Token, 43)
	assert.True(t, token.IsActive)

	rec = env.do(t, http.MethodPost, "/access/validate",
		strings.NewReader(fmt.Sprintf(`{"token":%q}`, token.Token)), "application/json")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decode[struct {
		Valid bool `json:"valid"`
	}](t, rec).Valid)
}

func TestAccessTokenValidateUnknownToken(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/access/validate",
		strings.NewReader(`{"token":"never-issued"}`), "application/json")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, decode[struct {
		Valid bool `json:"valid"`
	}](t, rec).Valid)
}

func TestAccessTokenValidateMalformedBody(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/access/validate",
		strings.NewReader(`{"nope":true}`), "application/json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, decode[struct {
		Valid bool `json:"valid"`
	}](t, rec).Valid)
}

func TestAccessTokenDeactivateFlow(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/access/generate", strings.NewReader(`{}`), "application/json")
	require.Equal(t, http.StatusCreated, rec.Code)
	token := decode[accessdomain.AccessToken](t, rec)

	rec = env.do(t, http.MethodDelete, fmt.Sprintf("/access/codes/%d", token.ID), nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodPost, "/access/validate",
		strings.NewReader(fmt.Sprintf(`{"token":%q}`, token.Token)), "application/json")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, decode[struct {
		Valid bool `json:"valid"`
	}](t, rec).Valid)

	rec = env.do(t, http.MethodDelete, "/access/codes/9999", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAccessTokenListNewestFirst(t *testing.T) {
	env := newTestEnv(t)

	for i := 0; i < 2; i++ {
		rec := env.do(t, http.MethodPost, "/access/generate", strings.NewReader(`{}`), "application/json")
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	rec := env.do(t, http.MethodGet, "/access/codes", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	tokens := decode[[]accessdomain.AccessToken](t, rec)
	require.Len(t, tokens, 2)
	assert.False(t, tokens[0].CreatedAt.Before(tokens[1].CreatedAt))
}

func TestAccessTokenCleanup(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/access/cleanup", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)

	out := decode[struct {
		Message string `json:"message"`
		Cleaned int64  `json:"cleaned"`
	}](t, rec)
	assert.Equal(t, int64(0), out.Cleaned)
	assert.Contains(t, out.Message, "Cleaned up 0 expired tokens")
}
