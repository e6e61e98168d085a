// Package auth is the identity provider: it hashes credentials and issues
// and validates the signed tokens that carry a request's identity claim.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/taskhub/taskhub/internal/model"
)

var (
	// ErrInvalidToken is returned when a token is malformed, expired or
	// signed with the wrong key.
	ErrInvalidToken = errors.New("invalid token")
	// ErrInvalidCredentials is returned when an email/password pair does
	// not match a known user.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// AuthenticatorConfig is the configuration for the authenticator.
type AuthenticatorConfig struct {
	Secret        string
	TokenDuration time.Duration
	Issuer        string
}

func (c *AuthenticatorConfig) defaults() error {
	if c.Secret == "" {
		return fmt.Errorf("secret is required")
	}
	if c.TokenDuration == 0 {
		c.TokenDuration = 7 * 24 * time.Hour
	}
	if c.Issuer == "" {
		c.Issuer = "taskhub"
	}
	return nil
}

// Authenticator issues and validates identity tokens and password hashes.
type Authenticator struct {
	secret        []byte
	tokenDuration time.Duration
	issuer        string
}

// NewAuthenticator creates a new authenticator.
func NewAuthenticator(cfg AuthenticatorConfig) (*Authenticator, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Authenticator{
		secret:        []byte(cfg.Secret),
		tokenDuration: cfg.TokenDuration,
		issuer:        cfg.Issuer,
	}, nil
}

// HashPassword hashes a plain text password with bcrypt.
func (a *Authenticator) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("could not hash password: %w", err)
	}
	return string(hash), nil
}

// CheckPassword compares a plain text password against a bcrypt hash.
func (a *Authenticator) CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// Claims are the custom JWT claims carrying the identity.
type Claims struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// GenerateToken issues a signed token for the given user.
func (a *Authenticator) GenerateToken(u model.User) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID: u.ID,
		Role:   string(u.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    a.issuer,
			Subject:   u.ID,
			ExpiresAt: jwt.NewNumericDate(now.Add(a.tokenDuration)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(a.secret)
	if err != nil {
		return "", fmt.Errorf("could not sign token: %w", err)
	}

	return signed, nil
}

// ParseToken validates a token and returns the identity it carries.
func (a *Authenticator) ParseToken(tokenString string) (*model.Identity, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return a.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("could not parse token: %w", ErrInvalidToken)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	identity := model.Identity{UserID: claims.UserID, Role: model.Role(claims.Role)}
	if identity.UserID == "" || !identity.Role.Valid() {
		return nil, ErrInvalidToken
	}

	return &identity, nil
}
