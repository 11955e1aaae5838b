package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	jwt "github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/diario-de-bordo/internal/config"
)

const restPrefix = "/rest/v1"

// Supabase wraps a resty client bound to a project's PostgREST endpoint.
type Supabase struct {
	Client *resty.Client
}

// SupabaseKeyClaims are the claims Supabase embeds in its API keys.
type SupabaseKeyClaims struct {
	Role string `json:"role"`
	Ref  string `json:"ref"`
	jwt.RegisteredClaims
}

// NewSupabase builds the REST client. The key is sent both as apikey and as
// bearer token, which is what PostgREST behind Supabase expects.
func NewSupabase(cfg config.SupabaseConfig, logger *zap.Logger) *Supabase {
	client := resty.New().
		SetBaseURL(cfg.URL+restPrefix).
		SetTimeout(cfg.Timeout()).
		SetHeader("apikey", cfg.Key).
		SetAuthToken(cfg.Key).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	if claims, err := InspectSupabaseKey(cfg.Key, time.Now()); err != nil {
		logger.Warn("supabase key could not be inspected", zap.Error(err))
	} else {
		logger.Info("supabase client configured",
			zap.String("url", cfg.URL),
			zap.String("role", claims.Role),
			zap.String("project_ref", claims.Ref),
		)
	}

	return &Supabase{Client: client}
}

// InspectSupabaseKey decodes the API key without verifying its signature
// (only the project holds the secret) and rejects keys past their expiry.
func InspectSupabaseKey(key string, now time.Time) (*SupabaseKeyClaims, error) {
	claims := &SupabaseKeyClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(key, claims); err != nil {
		return nil, fmt.Errorf("parse supabase key: %w", err)
	}
	if claims.ExpiresAt != nil && claims.ExpiresAt.Before(now) {
		return claims, fmt.Errorf("supabase key expired at %s", claims.ExpiresAt.Time.Format(time.RFC3339))
	}
	return claims, nil
}

// Ping checks that the PostgREST endpoint answers.
func (s *Supabase) Ping(ctx context.Context) error {
	if s == nil || s.Client == nil {
		return errors.New("supabase client not configured")
	}
	resp, err := s.Client.R().SetContext(ctx).Get("/")
	if err != nil {
		return err
	}
	if resp.StatusCode() >= 500 {
		return fmt.Errorf("supabase responded %d", resp.StatusCode())
	}
	return nil
}
