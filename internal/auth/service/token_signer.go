package service

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	keysDomain "github.com/allisson/authserver/internal/keys/domain"
)

type jwtTokenSigner struct{}

// NewTokenSigner creates a TokenSigner backed by golang-jwt.
func NewTokenSigner() TokenSigner {
	return &jwtTokenSigner{}
}

func (s *jwtTokenSigner) Sign(
	key *keysDomain.SigningKey,
	claims map[string]any,
	now time.Time,
	lifetime time.Duration,
) (string, int64, error) {
	if key == nil || key.PrivateKey == nil {
		return "", 0, errors.New("a signing key is required")
	}

	expiresAt := now.Add(lifetime).Unix()

	mapClaims := make(jwt.MapClaims, len(claims)+3)
	for name, value := range claims {
		mapClaims[name] = value
	}
	mapClaims["iat"] = now.Unix()
	mapClaims["exp"] = expiresAt
	mapClaims["kid"] = key.ID

	token := jwt.NewWithClaims(jwt.SigningMethodRS256, mapClaims)
	token.Header["kid"] = key.ID

	signed, err := token.SignedString(key.PrivateKey)
	if err != nil {
		return "", 0, err
	}
	return signed, expiresAt, nil
}
