package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/wedding-gallery/photo-api/internal/interfaces/httpserver/handlers"
)

// Routes encapsulates route registration.
type Routes struct {
	handlers *handlers.Provider
}

func New(provider *handlers.Provider) *Routes {
	return &Routes{handlers: provider}
}

// Register attaches the photo and access endpoints.
func (r *Routes) Register(router gin.IRouter) {
	photos := router.Group("/photos")
	photos.GET("", r.handlers.Photos.List)
	photos.GET("/:id", r.handlers.Photos.Get)
	photos.POST("", r.handlers.Photos.Upload)
	photos.DELETE("/:id", r.handlers.Photos.Delete)

	access := router.Group("/access")
	access.POST("/validate", r.handlers.Access.Validate)
	access.POST("/generate", r.handlers.Access.Generate)
	access.GET("/codes", r.handlers.Access.List)
	access.DELETE("/codes/:id", r.handlers.Access.Deactivate)
	access.POST("/cleanup", r.handlers.Access.Cleanup)
}
