package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var ErrInvalidToken = errors.New("invalid token")

// TokenService issues and validates HS256 bearer tokens whose subject is the
// caller's address.
type TokenService struct {
	secret []byte
	issuer string
	now    func() time.Time
}

// NewTokenService creates a token service. An empty secret disables it.
func NewTokenService(secret, issuer string) *TokenService {
	return &TokenService{secret: []byte(secret), issuer: issuer, now: time.Now}
}

// Enabled reports whether a signing secret is configured.
func (s *TokenService) Enabled() bool {
	return s != nil && len(s.secret) > 0
}

// Issue signs a token for address valid for ttl.
func (s *TokenService) Issue(address common.Address, ttl time.Duration) (string, error) {
	if !s.Enabled() {
		return "", fmt.Errorf("jwt secret not configured")
	}
	now := s.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   address.Hex(),
		Issuer:    s.issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		ID:        uuid.NewString(),
	})
	return token.SignedString(s.secret)
}

// Validate parses tokenString and returns the address in its subject.
func (s *TokenService) Validate(tokenString string) (common.Address, error) {
	if !s.Enabled() {
		return common.Address{}, fmt.Errorf("%w: jwt secret not configured", ErrInvalidToken)
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	}
	if s.issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.issuer))
	}

	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	}, opts...)
	if err != nil {
		return common.Address{}, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	if !ValidateEVMAddress(claims.Subject) {
		return common.Address{}, fmt.Errorf("%w: subject is not an address", ErrInvalidToken)
	}
	return common.HexToAddress(claims.Subject), nil
}
