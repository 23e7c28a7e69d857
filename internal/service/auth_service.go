package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/biyonik/project-management-tool/internal/i18n"
	"github.com/biyonik/project-management-tool/internal/model"
	"github.com/biyonik/project-management-tool/internal/repository"
	"github.com/biyonik/project-management-tool/pkg/apierror"
)

type tokenClaims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// AuthService issues and validates HS256 access tokens. Login failures are
// deliberately indistinguishable between unknown email and wrong password.
type AuthService struct {
	users    repository.EntityStore[model.User]
	messages *i18n.MessageSource
	log      *slog.Logger
	secret   []byte
	tokenTTL time.Duration
	devMode  bool
}

func NewAuthService(
	users repository.EntityStore[model.User],
	messages *i18n.MessageSource,
	log *slog.Logger,
	secret string,
	tokenTTL time.Duration,
	devMode bool,
) *AuthService {
	return &AuthService{
		users:    users,
		messages: messages,
		log:      log,
		secret:   []byte(secret),
		tokenTTL: tokenTTL,
		devMode:  devMode,
	}
}

func (s *AuthService) Login(ctx context.Context, locale, email, password string) *model.APIResponse {
	user, err := s.users.FindOneBy(ctx, "email", email)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return s.loginFailed(locale)
		}
		return s.internal(locale, err)
	}

	if !user.IsActive {
		return s.loginFailed(locale)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return s.loginFailed(locale)
	}

	token, err := s.issueToken(user)
	if err != nil {
		return s.internal(locale, err)
	}

	return model.SuccessResponse(model.TokenResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int64(s.tokenTTL.Seconds()),
		User:        user,
	}, "")
}

func (s *AuthService) issueToken(user *model.User) (string, error) {
	now := time.Now().UTC()
	claims := tokenClaims{
		Email: user.Email,
		Role:  user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return token, nil
}

// ValidateToken parses and verifies an access token, returning the caller's
// identity claims.
func (s *AuthService) ValidateToken(tokenString string) (*model.AuthClaims, error) {
	var claims tokenClaims
	_, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}

	return &model.AuthClaims{
		UserID: claims.Subject,
		Email:  claims.Email,
		Role:   claims.Role,
	}, nil
}

// Me returns the authenticated user's current record.
func (s *AuthService) Me(ctx context.Context, locale, userID string) *model.APIResponse {
	user, err := s.users.FindByID(ctx, userID, false)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return model.ErrorResponse(apierror.CodeUnauthorized,
				s.messages.Message("common.error.unauthorized", locale, nil), "")
		}
		return s.internal(locale, err)
	}
	return model.SuccessResponse(user, "")
}

func (s *AuthService) loginFailed(locale string) *model.APIResponse {
	return model.ErrorResponse(apierror.CodeInvalidCredentials,
		s.messages.Message("user.login.failed", locale, nil), "")
}

func (s *AuthService) internal(locale string, err error) *model.APIResponse {
	s.log.Error("auth request failed", "error", err)
	details := ""
	if s.devMode {
		details = err.Error()
	}
	return model.ErrorResponse(apierror.CodeInternal,
		s.messages.Message("common.error.internal", locale, nil), details)
}
