package responses

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/wedding-gallery/photo-api/internal/utils/platformerrors"
)

// ErrorResponse is the uniform error payload.
type ErrorResponse struct {
	Code      string `json:"code,omitempty"` // UUID of the raise site
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

// HandleError translates a domain or repository error into an HTTP response.
func HandleError(reqCtx *gin.Context, err error, fallback string) {
	var platformErr *platformerrors.PlatformError
	if errors.As(err, &platformErr) {
		message := platformErr.Message
		if message == "" {
			message = fallback
		}
		reqCtx.AbortWithStatusJSON(
			platformerrors.ErrorTypeToHTTPStatus(platformErr.GetErrorType()),
			ErrorResponse{
				Code:      platformErr.GetUUID(),
				Error:     message,
				RequestID: platformErr.GetRequestID(),
			},
		)
		return
	}
	reqCtx.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{Error: fallback})
}

// HandleNewError raises a typed error at the handler layer and responds.
func HandleNewError(reqCtx *gin.Context, errorType platformerrors.ErrorType, message string, uuid string) {
	err := platformerrors.NewError(reqCtx.Request.Context(), platformerrors.LayerHandler, errorType, message, nil, uuid)
	reqCtx.AbortWithStatusJSON(
		platformerrors.ErrorTypeToHTTPStatus(err.GetErrorType()),
		ErrorResponse{
			Code:      err.GetUUID(),
			Error:     message,
			RequestID: err.GetRequestID(),
		},
	)
}
