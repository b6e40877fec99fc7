package util

import (
	"github.com/golang-jwt/jwt/v5"
)

// SessionClaims is the payload of session tokens issued by the identity
// provider. Subject carries the external user id; the profile claims are
// optional and feed the lazy local-user bootstrap.
type SessionClaims struct {
	Email     string `json:"email,omitempty"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	jwt.RegisteredClaims
}

// ParseSessionToken parses and verifies a session token (HS256 against
// the provider-shared secret) and returns its claims.
func ParseSessionToken(secret, tokenStr string) (*SessionClaims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &SessionClaims{}, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return claims, nil
}
