package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/wedding-gallery/photo-api/internal/config"
	domain "github.com/wedding-gallery/photo-api/internal/domain/photo"
	"github.com/wedding-gallery/photo-api/internal/interfaces/httpserver/requests"
	"github.com/wedding-gallery/photo-api/internal/interfaces/httpserver/responses"
	"github.com/wedding-gallery/photo-api/internal/utils/platformerrors"
)

const (
	defaultPage  = 1
	defaultLimit = 20
	maxLimit     = 100
)

// PhotoHandler exposes the photo gallery endpoints.
type PhotoHandler struct {
	cfg     *config.Config
	service *domain.Service
	log     zerolog.Logger
}

func NewPhotoHandler(cfg *config.Config, service *domain.Service, log zerolog.Logger) *PhotoHandler {
	return &PhotoHandler{
		cfg:     cfg,
		service: service,
		log:     log.With().Str("component", "photo-handler").Logger(),
	}
}

// List godoc
// @Summary      List gallery photos
// @Description  Returns one page of photos, newest first, optionally filtered by uploader.
// @Tags         photos
// @Produce      json
// @Param        uploaderId  query     string  false  "Filter by uploader id"
// @Param        page        query     int     false  "Page number (1-based)"
// @Param        limit       query     int     false  "Page size (max 100)"
// @Success      200         {object}  responses.PaginatedPhotos
// @Failure      400         {object}  responses.ErrorResponse
// @Router       /photos [get]
func (h *PhotoHandler) List(c *gin.Context) {
	uploaderID := c.Query("uploaderId")

	page, err := parsePositiveInt(c.DefaultQuery("page", strconv.Itoa(defaultPage)))
	if err != nil {
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation,
			"page and limit must be positive integers", "83f6d1a9-2c50-4e7b-9d43-b17e8a05f2c6")
		return
	}
	limit, err := parsePositiveInt(c.DefaultQuery("limit", strconv.Itoa(defaultLimit)))
	if err != nil {
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation,
			"page and limit must be positive integers", "83f6d1a9-2c50-4e7b-9d43-b17e8a05f2c6")
		return
	}
	if limit > maxLimit {
		limit = maxLimit
	}

	photos, total, err := h.service.List(c.Request.Context(), uploaderID, page, limit)
	if err != nil {
		h.log.Error().Err(err).Msg("list photos failed")
		responses.HandleError(c, err, "failed to list photos")
		return
	}

	c.JSON(http.StatusOK, responses.NewPaginatedPhotos(photos, page, limit, total))
}

// Get godoc
// @Summary      Get a photo by id
// @Tags         photos
// @Produce      json
// @Param        id   path      int  true  "Photo id"
// @Success      200  {object}  domain.Photo
// @Failure      400  {object}  responses.ErrorResponse
// @Failure      404  {object}  responses.ErrorResponse
// @Router       /photos/{id} [get]
func (h *PhotoHandler) Get(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation,
			"invalid photo id", "b50c2e84-6f1a-4d97-83b0-a29d7e46c153")
		return
	}

	photo, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		responses.HandleError(c, err, "failed to get photo")
		return
	}

	c.JSON(http.StatusOK, photo)
}

// Upload godoc
// @Summary      Upload a photo
// @Description  Multipart upload with an uploader_id field and an image file.
// @Tags         photos
// @Accept       multipart/form-data
// @Produce      json
// @Param        uploader_id  formData  string  true  "Opaque uploader identifier"
// @Param        image        formData  file    true  "Image file"
// @Success      201          {object}  domain.Photo
// @Failure      400          {object}  responses.ErrorResponse
// @Failure      502          {object}  responses.ErrorResponse
// @Router       /photos [post]
func (h *PhotoHandler) Upload(c *gin.Context) {
	uploaderID := c.PostForm("uploader_id")

	fileHeader, err := c.FormFile("image")
	if err != nil {
		// Older frontend revisions sent the part as "file".
		fileHeader, err = c.FormFile("file")
	}
	if uploaderID == "" || err != nil {
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation,
			"missing required fields: uploader_id and image file", "e61a4d27-9b38-40c5-8f72-d05c3b1e9a84")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation,
			"failed to open uploaded file", "27c5f0b8-4e92-4a61-b3d7-18f6e9a40d25")
		return
	}
	defer file.Close()

	photo, err := h.service.Upload(c.Request.Context(), file, fileHeader.Filename, uploaderID)
	if err != nil {
		h.log.Error().Err(err).Str("uploader_id", uploaderID).Msg("photo upload failed")
		responses.HandleError(c, err, "failed to upload image to cloud storage")
		return
	}

	c.JSON(http.StatusCreated, photo)
}

// Delete godoc
// @Summary      Delete a photo
// @Description  Removes the metadata, then best-effort the stored object. An
// @Description  uploader_id in the body must match the owner; without one the
// @Description  ownership check is skipped.
// @Tags         photos
// @Accept       json
// @Param        id       path  int                          true   "Photo id"
// @Param        request  body  requests.DeletePhotoRequest  false  "Uploader verification"
// @Success      204
// @Failure      400  {object}  responses.ErrorResponse
// @Failure      403  {object}  responses.ErrorResponse
// @Failure      404  {object}  responses.ErrorResponse
// @Router       /photos/{id} [delete]
func (h *PhotoHandler) Delete(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation,
			"invalid photo id", "b50c2e84-6f1a-4d97-83b0-a29d7e46c153")
		return
	}

	// The body is optional; a missing or malformed one just skips the
	// ownership check.
	var req requests.DeletePhotoRequest
	_ = c.ShouldBindJSON(&req)

	if err := h.service.Delete(c.Request.Context(), id, req.UploaderID); err != nil {
		responses.HandleError(c, err, "failed to delete photo")
		return
	}

	c.Status(http.StatusNoContent)
}

func parsePositiveInt(value string) (int, error) {
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}
	if n <= 0 {
		return 0, strconv.ErrRange
	}
	return n, nil
}
