// Package auth supplies signed bearer tokens for restclient headers.
package auth

import (
	"errors"
	"fmt"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"github.com/starius/restclient"
)

const HttpHeaderAuthorization = "Authorization"

var ErrEmptySecret = errors.New("HMAC secret is empty")

// Signer issues short-lived HS256 tokens.
type Signer struct {
	Secret   []byte
	Subject  string
	Issuer   string
	Lifetime time.Duration

	// Now is used for iat and exp. Defaults to time.Now.
	Now func() time.Time
}

// Token returns a new token with fresh iat and exp claims.
func (s *Signer) Token() (string, error) {
	if len(s.Secret) == 0 {
		return "", ErrEmptySecret
	}
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	lifetime := s.Lifetime
	if lifetime == 0 {
		lifetime = time.Minute
	}

	issuedAt := now()
	claims := jwt.RegisteredClaims{
		Subject:   s.Subject,
		Issuer:    s.Issuer,
		IssuedAt:  jwt.NewNumericDate(issuedAt),
		ExpiresAt: jwt.NewNumericDate(issuedAt.Add(lifetime)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.Secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return tokenString, nil
}

// Bearer is a restclient.ValueSupplier producing "Bearer <token>".
func (s *Signer) Bearer() (string, error) {
	token, err := s.Token()
	if err != nil {
		return "", err
	}
	return "Bearer " + token, nil
}

// Option adds the Authorization header, signed anew for every call.
func (s *Signer) Option() restclient.Option {
	return restclient.WithHeaderFunc(HttpHeaderAuthorization, s.Bearer)
}

// Verify parses a token produced by Signer and returns its claims.
func Verify(tokenString string, secret []byte) (*jwt.RegisteredClaims, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return secret, nil
		},
	)
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	return claims, nil
}
