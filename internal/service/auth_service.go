package service

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/naperu/collabmesh/internal/domain"
	"golang.org/x/crypto/bcrypt"
)

// JWTClaims is the token payload. Identity is hex-encoded since
// domain.Identity itself doesn't implement json.Marshaler.
type JWTClaims struct {
	Identity string `json:"identity"`
	jwt.RegisteredClaims
}

var ErrInvalidCredentials = errors.New("invalid username or password")

// AuthService issues JWTs against the dev_credentials table. The spec
// treats identity issuance as an external oracle; this is the dev-only
// stand-in that lets the HTTP surface be exercised before a real identity
// provider is wired in.
type AuthService struct {
	pool      *pgxpool.Pool
	jwtSecret string
}

func NewAuthService(pool *pgxpool.Pool, jwtSecret string) *AuthService {
	return &AuthService{pool: pool, jwtSecret: jwtSecret}
}

func (s *AuthService) Login(ctx context.Context, username, password string) (string, domain.Identity, error) {
	var identityBytes []byte
	var passwordHash string
	err := s.pool.QueryRow(ctx, `
		SELECT identity, password_hash FROM dev_credentials WHERE username = $1
	`, username).Scan(&identityBytes, &passwordHash)
	if err != nil {
		return "", domain.ZeroIdentity, ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(passwordHash), []byte(password)) != nil {
		return "", domain.ZeroIdentity, ErrInvalidCredentials
	}

	var identity domain.Identity
	copy(identity[:], identityBytes)

	token, err := s.issueToken(identity)
	if err != nil {
		return "", domain.ZeroIdentity, err
	}
	return token, identity, nil
}

func (s *AuthService) issueToken(identity domain.Identity) (string, error) {
	claims := &JWTClaims{
		Identity: identity.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(7 * 24 * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtSecret))
}

func (s *AuthService) ValidateToken(tokenString string) (domain.Identity, error) {
	claims := &JWTClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(s.jwtSecret), nil
	})
	if err != nil || !token.Valid {
		return domain.ZeroIdentity, errors.New("invalid token")
	}
	return domain.ParseIdentity(claims.Identity)
}
