package preferences

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/i474232898/cloudcast/internal/weather"
)

const tokenIssuer = "cloudcast"

// ParseSessionToken verifies an HS256 token signed with secret and returns
// its subject as a user id.
func ParseSessionToken(token string, secret []byte) (uuid.UUID, error) {
	if len(secret) == 0 {
		return uuid.Nil, fmt.Errorf("%w: sessions are not configured", weather.ErrPermissionDenied)
	}

	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithIssuer(tokenIssuer))
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %v", weather.ErrPermissionDenied, err)
	}

	id, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: subject is not a user id", weather.ErrPermissionDenied)
	}
	return id, nil
}

// IssueSessionToken signs a token for userID valid for ttl.
func IssueSessionToken(userID uuid.UUID, secret []byte, ttl time.Duration) (string, error) {
	if len(secret) == 0 {
		return "", errors.New("empty session secret")
	}
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Issuer:    tokenIssuer,
		Subject:   userID.String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}
