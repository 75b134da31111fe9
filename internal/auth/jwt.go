package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	RoleAdmin = "admin"

	minSecretLength = 32
)

type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

func checkSecret(secret string) error {
	if secret == "" {
		return fmt.Errorf("JWT secret is required but not set")
	}
	if len(secret) < minSecretLength {
		return fmt.Errorf("JWT secret must be at least %d characters long for security", minSecretLength)
	}
	return nil
}

// GenerateJWT signs an HS256 token for subject carrying role, valid for ttl.
func GenerateJWT(secret, subject, role string, ttl time.Duration) (string, error) {
	if err := checkSecret(secret); err != nil {
		return "", fmt.Errorf("cannot generate JWT: %w", err)
	}

	now := time.Now()
	claims := Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Subject:   subject,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

func ValidateJWT(secret, tokenString string) (*Claims, error) {
	if err := checkSecret(secret); err != nil {
		return nil, fmt.Errorf("cannot validate JWT: %w", err)
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}

	return nil, fmt.Errorf("invalid token")
}
