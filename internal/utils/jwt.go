package utils

import (
	"errors"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

type sessionTokenClaims struct {
	Dest string `json:"dest"`
	jwt.RegisteredClaims
}

// ErrInvalidSessionToken is returned when a Shopify session token fails
// signature or claim validation.
var ErrInvalidSessionToken = errors.New("invalid session token")

// ParseSessionToken validates an embedded-app session token issued by
// Shopify (HS256, signed with the app API secret) and returns the shop
// domain carried in the dest claim.
func ParseSessionToken(secret, apiKey, tokenString string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &sessionTokenClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidSessionToken
		}
		return []byte(secret), nil
	}, jwt.WithAudience(apiKey))
	if err != nil {
		return "", err
	}

	claims, ok := token.Claims.(*sessionTokenClaims)
	if !ok || !token.Valid {
		return "", ErrInvalidSessionToken
	}

	shop := strings.TrimPrefix(claims.Dest, "https://")
	shop = strings.TrimSuffix(shop, "/")
	if shop == "" {
		return "", ErrInvalidSessionToken
	}

	return shop, nil
}
