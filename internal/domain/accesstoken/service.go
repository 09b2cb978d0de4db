package accesstoken

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"time"

	"github.com/rs/zerolog"

	"github.com/wedding-gallery/photo-api/internal/config"
	"github.com/wedding-gallery/photo-api/internal/infrastructure/metrics"
	"github.com/wedding-gallery/photo-api/internal/utils/platformerrors"
)

// DefaultValidityHours is the fallback validity when neither the request nor
// the configuration supplies one.
const DefaultValidityHours = 48

// tokenBytes is the entropy drawn per token: 32 bytes = 256 bits.
const tokenBytes = 32

// Repository defines persistence operations needed by the service.
type Repository interface {
	Create(ctx context.Context, token *AccessToken) error
	FindByToken(ctx context.Context, token string) (*AccessToken, error)
	List(ctx context.Context) ([]AccessToken, error)
	Deactivate(ctx context.Context, id int) (bool, error)
	DeactivateExpired(ctx context.Context, now time.Time) (int64, error)
}

// Service issues, validates and reaps gallery access tokens.
type Service struct {
	repo            Repository
	log             zerolog.Logger
	now             func() time.Time
	defaultValidity int
}

func NewService(cfg *config.Config, repo Repository, log zerolog.Logger) *Service {
	defaultValidity := cfg.DefaultTokenValidityHours
	if defaultValidity <= 0 {
		defaultValidity = DefaultValidityHours
	}
	return &Service{
		repo:            repo,
		log:             log.With().Str("component", "access-token-service").Logger(),
		now:             time.Now,
		defaultValidity: defaultValidity,
	}
}

// Generate creates and persists a new token. The secret is 256 bits from a
// CSPRNG, URL-safe base64 without padding so it can sit in a query string
// unescaped. A non-positive validity falls back to the configured default.
func (s *Service) Generate(ctx context.Context, description *string, validityHours int) (*AccessToken, error) {
	if validityHours <= 0 {
		validityHours = s.defaultValidity
	}

	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeInternal,
			"failed to generate token randomness", err, "f3b19e57-8a2d-4c06-b4f1-d75e0c28a693")
	}

	now := s.now()
	token := &AccessToken{
		Token:       base64.RawURLEncoding.EncodeToString(buf),
		Description: description,
		CreatedAt:   now,
		ExpiresAt:   now.Add(time.Duration(validityHours) * time.Hour),
		IsActive:    true,
	}

	if err := s.repo.Create(ctx, token); err != nil {
		return nil, err
	}

	metrics.TokensIssuedTotal.Inc()
	s.log.Info().Int("id", token.ID).Time("expires_at", token.ExpiresAt).Msg("access token generated")
	return token, nil
}

// Validate reports whether the token grants access right now. An unknown
// token and an expired or deactivated one are indistinguishable to the
// caller; existence is never leaked.
func (s *Service) Validate(ctx context.Context, token string) (bool, error) {
	found, err := s.repo.FindByToken(ctx, token)
	if err != nil {
		return false, err
	}
	valid := found != nil && found.IsActive && s.now().Before(found.ExpiresAt)
	metrics.RecordTokenValidation(valid)
	return valid, nil
}

// List returns all tokens, active and inactive, newest first. Not paginated;
// token volume is tens to low hundreds.
func (s *Service) List(ctx context.Context) ([]AccessToken, error) {
	return s.repo.List(ctx)
}

// Deactivate flips the token inactive. Returns false only when the id is
// unknown; deactivating an already-inactive token still returns true.
func (s *Service) Deactivate(ctx context.Context, id int) (bool, error) {
	found, err := s.repo.Deactivate(ctx, id)
	if err != nil {
		return false, err
	}
	if found {
		s.log.Info().Int("id", id).Msg("access token deactivated")
	}
	return found, nil
}

// CleanupExpired deactivates every still-active token whose expiry has
// passed and returns how many were touched. The sweep is one conditional
// bulk update, so repeat calls count 0 unless something newly expired.
func (s *Service) CleanupExpired(ctx context.Context) (int64, error) {
	count, err := s.repo.DeactivateExpired(ctx, s.now())
	if err != nil {
		return 0, err
	}
	if count > 0 {
		s.log.Info().Int64("count", count).Msg("expired access tokens deactivated")
	}
	return count, nil
}
