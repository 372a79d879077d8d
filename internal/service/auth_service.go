package service

import (
	"context"
	"fmt"

	"quiz-tube/internal/config"
	"quiz-tube/internal/domain"

	"github.com/golang-jwt/jwt/v5"
)

// Claims are the token claims issued by the identity service. Token issuance
// lives there; this service only validates.
type Claims struct {
	UserID    string `json:"uid"`
	TokenType string `json:"token_type"`
	jwt.RegisteredClaims
}

// AuthService validates bearer tokens for protected routes.
type AuthService interface {
	ValidateJWT(ctx context.Context, tokenString string) (*Claims, error)
}

type authService struct {
	secret []byte
}

// NewAuthService creates a new instance of authService
func NewAuthService(cfg config.AuthConfig) AuthService {
	return &authService{secret: []byte(cfg.JWTSecret)}
}

// ValidateJWT implements AuthService
func (s *authService) ValidateJWT(ctx context.Context, tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, domain.NewUnauthorizedError(fmt.Sprintf("invalid token: %v", err))
	}
	if !token.Valid {
		return nil, domain.NewUnauthorizedError("invalid token")
	}

	if claims.UserID == "" {
		claims.UserID = claims.Subject
	}
	if claims.UserID == "" {
		return nil, domain.NewUnauthorizedError("token carries no user identity")
	}
	return claims, nil
}
