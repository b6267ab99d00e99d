package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ideameet/backend/internal/auth"
	"github.com/ideameet/backend/internal/domain"
	"github.com/ideameet/backend/internal/repository"
	"github.com/ideameet/backend/lib/logger/sl"
)

// AuthService signs users in through Google or Facebook and manages the
// access/refresh token pair. First sign-in provisions the account.
type AuthService struct {
	log      *slog.Logger
	users    repository.UserRepository
	tokens   *auth.TokenManager
	google   auth.GoogleProvider
	facebook auth.FacebookProvider
}

func NewAuthService(
	log *slog.Logger,
	users repository.UserRepository,
	tokens *auth.TokenManager,
	google auth.GoogleProvider,
	facebook auth.FacebookProvider,
) *AuthService {
	return &AuthService{
		log:      log,
		users:    users,
		tokens:   tokens,
		google:   google,
		facebook: facebook,
	}
}

func (s *AuthService) SignInWithGoogle(ctx context.Context, code string) (*AuthResult, error) {
	const op = "service.auth.SignInWithGoogle"

	email, err := s.google.ExchangeCode(ctx, code)
	if err != nil {
		if errors.Is(err, auth.ErrProviderRejected) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	user, err := s.users.GetByEmail(ctx, email)
	if errors.Is(err, repository.ErrUserNotFound) {
		user = domain.NewGoogleUser(email)
		if err := s.users.Create(ctx, user); err != nil {
			s.log.Error("failed to create user", slog.String("op", op), sl.Err(err))
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		s.log.Info("user registered",
			slog.String("user_id", user.ID.String()),
			slog.String("provider", string(domain.UserProviderGoogle)),
		)
	} else if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return s.issueTokens(ctx, op, user)
}

func (s *AuthService) SignInWithFacebook(ctx context.Context, accessToken string) (*AuthResult, error) {
	const op = "service.auth.SignInWithFacebook"

	profile, err := s.facebook.VerifyToken(ctx, accessToken)
	if err != nil {
		if errors.Is(err, auth.ErrProviderRejected) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	user, err := s.users.GetByFacebookID(ctx, profile.ID)
	if errors.Is(err, repository.ErrUserNotFound) {
		user = domain.NewFacebookUser(profile.ID, profile.Name, parseGender(profile.Gender))
		if err := s.users.Create(ctx, user); err != nil {
			s.log.Error("failed to create user", slog.String("op", op), sl.Err(err))
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		s.log.Info("user registered",
			slog.String("user_id", user.ID.String()),
			slog.String("provider", string(domain.UserProviderFacebook)),
		)
	} else if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return s.issueTokens(ctx, op, user)
}

// RefreshToken rotates the token pair. The presented token must both verify
// and match the copy stored on the user row, so each refresh token is good
// for exactly one rotation.
func (s *AuthService) RefreshToken(ctx context.Context, refreshToken string) (*AuthResult, error) {
	const op = "service.auth.RefreshToken"

	claims, err := s.tokens.ParseRefreshToken(refreshToken)
	if err != nil {
		return nil, ErrInvalidRefreshToken
	}

	user, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrInvalidRefreshToken
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if user.RefreshToken == nil || *user.RefreshToken != refreshToken {
		return nil, ErrInvalidRefreshToken
	}

	return s.issueTokens(ctx, op, user)
}

func (s *AuthService) issueTokens(ctx context.Context, op string, user *domain.User) (*AuthResult, error) {
	accessToken, err := s.tokens.NewAccessToken(user.ID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	refreshToken, err := s.tokens.NewRefreshToken(user.ID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := s.users.UpdateRefreshToken(ctx, user.ID, &refreshToken); err != nil {
		s.log.Error("failed to store refresh token", slog.String("op", op), sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	user.RefreshToken = &refreshToken

	return &AuthResult{
		User:         user,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

func parseGender(raw string) *domain.UserGender {
	switch raw {
	case "male":
		g := domain.UserGenderMale
		return &g
	case "female":
		g := domain.UserGenderFemale
		return &g
	}
	return nil
}
