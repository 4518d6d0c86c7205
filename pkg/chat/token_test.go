package chat

import (
	"testing"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateToken(t *testing.T) {
	issuer := NewTokenIssuer(Config{AppID: "1", APIKey: "key", APISecret: "stream-secret"})
	require.True(t, issuer.Enabled())

	signed, err := issuer.CreateToken("65f0c0ffee0000000000abcd")
	require.NoError(t, err)

	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(signed, claims, func(*jwt.Token) (interface{}, error) {
		return []byte("stream-secret"), nil
	})
	require.NoError(t, err)
	assert.True(t, token.Valid)
	assert.Equal(t, "HS256", token.Header["alg"])
	assert.Equal(t, jwt.MapClaims{"user_id": "65f0c0ffee0000000000abcd"}, claims)
}

func TestCreateTokenWithoutSecret(t *testing.T) {
	issuer := NewTokenIssuer(Config{})
	assert.False(t, issuer.Enabled())
	_, err := issuer.CreateToken("someone")
	assert.Error(t, err)
}
