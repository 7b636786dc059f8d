package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/eventra/eventra/internal/database/models"
	"github.com/eventra/eventra/pkg/config"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/idtoken"
	"gorm.io/gorm"
)

var ErrGoogleNotConfigured = errors.New("google sign-in is not configured")

// idTokenVerifier is swapped out in tests; the default asks Google to
// validate the token signature and audience.
type idTokenVerifier func(ctx context.Context, token, audience string) (*idtoken.Payload, error)

// GoogleService signs users in with a Google ID token. New identities are
// provisioned as account managers of a fresh organization; returning
// identities are matched by subject, then by email.
type GoogleService struct {
	db     *gorm.DB
	jwt    *JWTService
	cfg    config.GoogleOAuthConfig
	oauth  *oauth2.Config
	verify idTokenVerifier
}

func NewGoogleService(db *gorm.DB, jwt *JWTService, cfg config.GoogleOAuthConfig) *GoogleService {
	return &GoogleService{
		db:  db,
		jwt: jwt,
		cfg: cfg,
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     google.Endpoint,
		},
		verify: idtoken.Validate,
	}
}

// Login verifies a Google ID token and returns a session for the matching
// user, creating one when the identity is new.
func (s *GoogleService) Login(ctx context.Context, rawIDToken string) (*AuthResponse, error) {
	if s.cfg.ClientID == "" {
		return nil, ErrGoogleNotConfigured
	}

	payload, err := s.verify(ctx, rawIDToken, s.cfg.ClientID)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidCredentials, err)
	}

	email, _ := payload.Claims["email"].(string)
	name, _ := payload.Claims["name"].(string)
	if email == "" {
		return nil, ErrInvalidCredentials
	}

	user, err := s.findOrCreate(ctx, payload.Subject, email, name)
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, ErrInactiveUser
	}

	token, err := s.jwt.GenerateToken(user)
	if err != nil {
		return nil, err
	}
	return &AuthResponse{Token: token, User: user}, nil
}

// ExchangeCode trades an OAuth authorization code for tokens and logs in
// with the ID token Google returns alongside them.
func (s *GoogleService) ExchangeCode(ctx context.Context, code string) (*AuthResponse, error) {
	if s.cfg.ClientID == "" {
		return nil, ErrGoogleNotConfigured
	}
	tok, err := s.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidCredentials, err)
	}
	rawIDToken, ok := tok.Extra("id_token").(string)
	if !ok || rawIDToken == "" {
		return nil, ErrInvalidCredentials
	}
	return s.Login(ctx, rawIDToken)
}

func (s *GoogleService) findOrCreate(ctx context.Context, subject, email, name string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("google_subject = ?", subject).First(&user).Error
	if err == nil {
		return &user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	// Existing local account with this email: link the Google identity.
	err = s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if err == nil {
		user.GoogleSubject = subject
		if err := s.db.WithContext(ctx).Save(&user).Error; err != nil {
			return nil, err
		}
		return &user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if name == "" {
		name = email
	}
	user = models.User{
		Email:         email,
		Name:          name,
		PasswordHash:  "-",
		Organization:  name + "'s Team",
		Role:          models.RoleAccountManager,
		IsActive:      true,
		GoogleSubject: subject,
	}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}
