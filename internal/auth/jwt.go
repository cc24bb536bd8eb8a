package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gamebuddy-app/internal/config"
	"github.com/gamebuddy-app/internal/domain"
	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrTokenInvalid = errors.New("token is invalid")
	ErrTokenExpired = errors.New("token has expired")
)

// Claims carries the caller email as the token subject
type Claims struct {
	jwt.RegisteredClaims
}

// Service issues and validates HS256 bearer tokens
type Service struct {
	secretKey []byte
	issuer    string
	ttl       time.Duration
}

// NewService creates a token service
func NewService(cfg *config.AuthConfig) *Service {
	return &Service{
		secretKey: []byte(cfg.Secret),
		issuer:    cfg.Issuer,
		ttl:       cfg.TokenTTL,
	}
}

// IssueToken signs a token for the given email
func (s *Service) IssueToken(email string) (string, error) {
	now := time.Now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   email,
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secretKey)
}

// Subject validates the token and returns its subject
func (s *Service) Subject(tokenString string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrTokenInvalid
		}
		return s.secretKey, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrTokenExpired
		}
		return "", ErrTokenInvalid
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Subject == "" {
		return "", ErrTokenInvalid
	}
	return claims.Subject, nil
}

// GamerLookup finds a gamer by email
type GamerLookup interface {
	FindByEmail(ctx context.Context, email string) (*domain.Gamer, error)
}

// Resolver maps a bearer token to the caller's gamer id
type Resolver struct {
	tokens *Service
	gamers GamerLookup
}

// NewResolver creates a caller resolver
func NewResolver(tokens *Service, gamers GamerLookup) *Resolver {
	return &Resolver{tokens: tokens, gamers: gamers}
}

// ResolveCaller returns the gamer id behind the token. Bad tokens fail with
// ErrUnauthorized, unknown subjects with ErrUserNotFound.
func (r *Resolver) ResolveCaller(ctx context.Context, token string) (string, error) {
	email, err := r.tokens.Subject(token)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrUnauthorized, err)
	}

	gamer, err := r.gamers.FindByEmail(ctx, email)
	if err != nil {
		return "", err
	}
	return gamer.ID, nil
}

// BearerToken extracts the token from an Authorization header value
func BearerToken(header string) string {
	const prefix = "Bearer "
	if len(header) > len(prefix) && strings.EqualFold(header[:len(prefix)], prefix) {
		return strings.TrimSpace(header[len(prefix):])
	}
	return ""
}
