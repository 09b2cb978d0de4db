package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	domain "github.com/wedding-gallery/photo-api/internal/domain/accesstoken"
	"github.com/wedding-gallery/photo-api/internal/interfaces/httpserver/requests"
	"github.com/wedding-gallery/photo-api/internal/interfaces/httpserver/responses"
	"github.com/wedding-gallery/photo-api/internal/utils/platformerrors"
)

// AccessHandler exposes the organizer-facing token endpoints and the guest
// validation endpoint.
type AccessHandler struct {
	service *domain.Service
	log     zerolog.Logger
}

func NewAccessHandler(service *domain.Service, log zerolog.Logger) *AccessHandler {
	return &AccessHandler{
		service: service,
		log:     log.With().Str("component", "access-handler").Logger(),
	}
}

type validateResponse struct {
	Valid bool `json:"valid"`
}

type cleanupResponse struct {
	Message string `json:"message"`
	Cleaned int64  `json:"cleaned"`
}

// Validate godoc
// @Summary      Validate an access token
// @Description  Reports whether the presented bearer token currently grants
// @Description  gallery access. Unknown, expired and deactivated tokens are
// @Description  indistinguishable.
// @Tags         access
// @Accept       json
// @Produce      json
// @Param        request  body      requests.ValidateTokenRequest  true  "Token to check"
// @Success      200      {object}  validateResponse
// @Failure      400      {object}  validateResponse
// @Router       /access/validate [post]
func (h *AccessHandler) Validate(c *gin.Context) {
	var req requests.ValidateTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, validateResponse{Valid: false})
		return
	}

	valid, err := h.service.Validate(c.Request.Context(), req.Token)
	if err != nil {
		h.log.Error().Err(err).Msg("token validation failed")
		responses.HandleError(c, err, "failed to validate token")
		return
	}

	c.JSON(http.StatusOK, validateResponse{Valid: valid})
}

// Generate godoc
// @Summary      Generate an access token
// @Tags         access
// @Accept       json
// @Produce      json
// @Param        request  body      requests.GenerateTokenRequest  true  "Token parameters"
// @Success      201      {object}  domain.AccessToken
// @Failure      400      {object}  responses.ErrorResponse
// @Router       /access/generate [post]
func (h *AccessHandler) Generate(c *gin.Context) {
	var req requests.GenerateTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation,
			"invalid token request", "f08d3b61-7a25-4c94-b0e8-59c1d6f2a437")
		return
	}

	token, err := h.service.Generate(c.Request.Context(), req.Description, req.ValidityHours)
	if err != nil {
		h.log.Error().Err(err).Msg("token generation failed")
		responses.HandleError(c, err, "failed to generate token")
		return
	}

	c.JSON(http.StatusCreated, token)
}

// List godoc
// @Summary      List all access tokens
// @Description  Organizer listing of every token, active and inactive, newest first.
// @Tags         access
// @Produce      json
// @Success      200  {array}  domain.AccessToken
// @Router       /access/codes [get]
func (h *AccessHandler) List(c *gin.Context) {
	tokens, err := h.service.List(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("token listing failed")
		responses.HandleError(c, err, "failed to retrieve tokens")
		return
	}

	c.JSON(http.StatusOK, tokens)
}

// Deactivate godoc
// @Summary      Deactivate an access token
// @Tags         access
// @Produce      json
// @Param        id   path      int  true  "Token id"
// @Success      200  {object}  map[string]string
// @Failure      400  {object}  responses.ErrorResponse
// @Failure      404  {object}  responses.ErrorResponse
// @Router       /access/codes/{id} [delete]
func (h *AccessHandler) Deactivate(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation,
			"invalid token id", "1d7e9f40-3c58-4b26-a9d1-06b2e8c5f793")
		return
	}

	found, err := h.service.Deactivate(c.Request.Context(), id)
	if err != nil {
		h.log.Error().Err(err).Int("id", id).Msg("token deactivation failed")
		responses.HandleError(c, err, "failed to deactivate token")
		return
	}
	if !found {
		responses.HandleNewError(c, platformerrors.ErrorTypeNotFound,
			"token not found", "a93c5d18-6e70-4f2b-8c49-d31f0b7e6a52")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Token deactivated"})
}

// Cleanup godoc
// @Summary      Deactivate expired tokens
// @Description  Sweeps every still-active expired token and reports the count.
// @Tags         access
// @Produce      json
// @Success      200  {object}  cleanupResponse
// @Router       /access/cleanup [post]
func (h *AccessHandler) Cleanup(c *gin.Context) {
	count, err := h.service.CleanupExpired(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("token cleanup failed")
		responses.HandleError(c, err, "failed to cleanup tokens")
		return
	}

	c.JSON(http.StatusOK, cleanupResponse{
		Message: fmt.Sprintf("Cleaned up %d expired tokens", count),
		Cleaned: count,
	})
}
