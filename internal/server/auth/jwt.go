// Package auth issues and verifies the bearer tokens handed out by the
// EmergQR server.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/emergqr/emergqr/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// Claims carries the standard registered claims plus the client UUID.
type Claims struct {
	jwt.RegisteredClaims
	ClientUUID string `json:"uid"`
}

// GenerateToken signs an HS256 token for clientUUID that expires after validity.
func GenerateToken(clientUUID string, secretKey []byte, validity time.Duration) (string, error) {
	now := time.Now().UTC()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(validity)),
			Subject:   clientUUID,
		},
		ClientUUID: clientUUID,
	})

	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	return tokenString, nil
}

// ClientUUIDFromToken validates tokenString and returns the client UUID it
// was issued for. Expired tokens yield common.ErrTokenExpired; every other
// failure yields common.ErrInvalidToken.
func ClientUUIDFromToken(tokenString string, secretKey []byte) (string, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return secretKey, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", common.ErrTokenExpired
		}
		return "", common.ErrInvalidToken
	}

	if !token.Valid || claims.ClientUUID == "" {
		return "", common.ErrInvalidToken
	}

	return claims.ClientUUID, nil
}
