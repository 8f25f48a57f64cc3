package jwt

import (
	"crypto/rsa"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
	ErrMissingKey   = errors.New("no verification key configured")
)

// Claims represents the claims of an identity-provider session token.
// The subject is the stable user identifier the rest of the system trusts.
type Claims struct {
	SessionID string `json:"sid,omitempty"`
	jwt.RegisteredClaims
}

// Service verifies bearer tokens issued by the identity provider. It accepts
// HS256 tokens signed with a shared secret and, when a public key is
// configured, RS256 tokens.
type Service struct {
	secret    []byte
	publicKey *rsa.PublicKey
	issuer    string
	expiry    time.Duration
}

// NewService creates a new JWT service. publicKeyPEM may be empty.
func NewService(secret, publicKeyPEM, issuer string) (*Service, error) {
	s := &Service{
		secret: []byte(secret),
		issuer: issuer,
		expiry: 24 * time.Hour,
	}

	if publicKeyPEM != "" {
		key, err := jwt.ParseRSAPublicKeyFromPEM([]byte(publicKeyPEM))
		if err != nil {
			return nil, fmt.Errorf("parse jwt public key: %w", err)
		}
		s.publicKey = key
	}

	if len(s.secret) == 0 && s.publicKey == nil {
		return nil, ErrMissingKey
	}

	return s, nil
}

// ValidateToken validates a token and returns its claims. The subject is
// guaranteed to be non-empty on success.
func (s *Service) ValidateToken(tokenString string) (*Claims, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{"HS256", "RS256"})}
	if s.issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.issuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, s.keyFunc, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Subject == "" {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

// GenerateToken signs an HS256 token for the given subject. Only available
// when a shared secret is configured; used by local tooling and tests.
func (s *Service) GenerateToken(subject string) (string, error) {
	if len(s.secret) == 0 {
		return "", ErrMissingKey
	}

	now := time.Now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    s.issuer,
			ExpiresAt: jwt.NewNumericDate(now.Add(s.expiry)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

func (s *Service) keyFunc(token *jwt.Token) (interface{}, error) {
	switch token.Method.(type) {
	case *jwt.SigningMethodHMAC:
		if len(s.secret) == 0 {
			return nil, ErrInvalidToken
		}
		return s.secret, nil
	case *jwt.SigningMethodRSA:
		if s.publicKey == nil {
			return nil, ErrInvalidToken
		}
		return s.publicKey, nil
	default:
		return nil, ErrInvalidToken
	}
}
