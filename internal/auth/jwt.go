// Package auth mints and checks the HS256 session tokens the terminal host
// issues after a successful sign-in.
package auth

import (
	"errors"
	"time"

	"github.com/dmitrijs2005/patrimonio/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// Claims carries the signed-in email next to the registered claims.
type Claims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
	Guest bool   `json:"guest,omitempty"`
}

func GenerateToken(email string, guest bool, secretKey []byte, validity time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(validity)),
		},
		Email: email,
		Guest: guest,
	})

	return token.SignedString(secretKey)
}

// ParseToken validates tokenString and returns its claims.
// Expired tokens yield common.ErrTokenExpired, anything else invalid
// yields common.ErrInvalidToken.
func ParseToken(tokenString string, secretKey []byte) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, common.ErrTokenExpired
		}
		return nil, common.ErrInvalidToken
	}

	if !token.Valid {
		return nil, common.ErrInvalidToken
	}

	return claims, nil
}
