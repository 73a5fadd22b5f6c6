package service

import (
	"context"
	"fmt"
	"time"

	"gptteam/seathub/internal/repository"
	"gptteam/seathub/pkg/crypto"
	jwtpkg "gptteam/seathub/pkg/jwt"
)

const refreshJTIPrefix = "refresh_jti:"

// TokenSet represents a set of tokens returned after authentication.
type TokenSet struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

type AuthService interface {
	Login(ctx context.Context, username, password string) (*TokenSet, error)
	RefreshToken(ctx context.Context, refreshToken string) (*TokenSet, error)
	Logout(ctx context.Context, refreshToken string) error
}

type authService struct {
	adminUsername     string
	adminPasswordHash string
	stateStore        repository.StateStore
	jwtManager        *jwtpkg.Manager
}

func NewAuthService(adminUsername, adminPasswordHash string, stateStore repository.StateStore, jwtManager *jwtpkg.Manager) AuthService {
	return &authService{
		adminUsername:     adminUsername,
		adminPasswordHash: adminPasswordHash,
		stateStore:        stateStore,
		jwtManager:        jwtManager,
	}
}

func (s *authService) Login(ctx context.Context, username, password string) (*TokenSet, error) {
	if username != s.adminUsername || !crypto.CheckPassword(password, s.adminPasswordHash) {
		return nil, ErrInvalidCredentials
	}
	return s.issueTokens(ctx, username)
}

// RefreshToken rotates the refresh token: the presented JTI must still be
// tracked in the state store and is revoked on use.
func (s *authService) RefreshToken(ctx context.Context, refreshToken string) (*TokenSet, error) {
	claims, err := s.jwtManager.Validate(refreshToken)
	if err != nil || claims.TokenType != jwtpkg.TokenTypeRefresh {
		return nil, ErrRefreshTokenInvalid
	}

	key := refreshJTIPrefix + claims.ID
	exists, err := s.stateStore.Exists(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("check refresh token: %w", err)
	}
	if !exists {
		return nil, ErrRefreshTokenInvalid
	}
	if err := s.stateStore.Delete(ctx, key); err != nil {
		return nil, fmt.Errorf("revoke refresh token: %w", err)
	}

	return s.issueTokens(ctx, claims.Subject)
}

func (s *authService) Logout(ctx context.Context, refreshToken string) error {
	claims, err := s.jwtManager.Validate(refreshToken)
	if err != nil || claims.TokenType != jwtpkg.TokenTypeRefresh {
		return ErrRefreshTokenInvalid
	}
	if err := s.stateStore.Delete(ctx, refreshJTIPrefix+claims.ID); err != nil {
		return fmt.Errorf("revoke refresh token: %w", err)
	}
	return nil
}

func (s *authService) issueTokens(ctx context.Context, subject string) (*TokenSet, error) {
	accessToken, err := s.jwtManager.GenerateAccessToken(subject)
	if err != nil {
		return nil, fmt.Errorf("generate access token: %w", err)
	}
	refreshToken, claims, err := s.jwtManager.GenerateRefreshToken(subject)
	if err != nil {
		return nil, fmt.Errorf("generate refresh token: %w", err)
	}

	ttl := time.Until(claims.ExpiresAt.Time)
	if err := s.stateStore.Set(ctx, refreshJTIPrefix+claims.ID, []byte(subject), ttl); err != nil {
		return nil, fmt.Errorf("track refresh token: %w", err)
	}

	return &TokenSet{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(s.jwtManager.AccessTokenTTL().Seconds()),
	}, nil
}

var _ AuthService = (*authService)(nil)
