package handlers

import (
	"github.com/rs/zerolog"

	"github.com/wedding-gallery/photo-api/internal/config"
	accessdomain "github.com/wedding-gallery/photo-api/internal/domain/accesstoken"
	photodomain "github.com/wedding-gallery/photo-api/internal/domain/photo"
)

// Provider wires HTTP handlers.
type Provider struct {
	Photos *PhotoHandler
	Access *AccessHandler
}

func NewProvider(cfg *config.Config, photoService *photodomain.Service, accessService *accessdomain.Service, log zerolog.Logger) *Provider {
	return &Provider{
		Photos: NewPhotoHandler(cfg, photoService, log),
		Access: NewAccessHandler(accessService, log),
	}
}
