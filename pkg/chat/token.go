// Package chat issues user tokens for the Stream chat service
package chat

import (
	"fmt"

	"github.com/golang-jwt/jwt/v4"
)

// Config holds the Stream application credentials
type Config struct {
	AppID     string
	APIKey    string
	APISecret string
}

// TokenIssuer signs Stream user tokens with the application secret
type TokenIssuer struct {
	secret []byte
}

func NewTokenIssuer(cfg Config) *TokenIssuer {
	return &TokenIssuer{secret: []byte(cfg.APISecret)}
}

// Enabled reports whether a secret is configured
func (t *TokenIssuer) Enabled() bool {
	return len(t.secret) > 0
}

// CreateToken returns an HS256 token carrying {"user_id": userID} without expiry
func (t *TokenIssuer) CreateToken(userID string) (string, error) {
	if !t.Enabled() {
		return "", fmt.Errorf("chat token issuer: no API secret configured")
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"user_id": userID})
	signed, err := token.SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("sign chat token: %w", err)
	}
	return signed, nil
}
