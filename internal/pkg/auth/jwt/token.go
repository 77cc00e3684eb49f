package jwt

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt"

	"livechat/internal/pkg/randx"
)

const (
	// SessionExpiration defines the lifetime of a token issued at login or registration.
	SessionExpiration = 24 * time.Hour

	// TokenIssuer identifies the issuer of the token.
	TokenIssuer = "livechat"
)

// GenerateToken creates and signs a new JWT for username.
func GenerateToken(username string, secretKey string, duration time.Duration) (string, error) {
	now := time.Now()

	tokenID, err := randx.TokenID()
	if err != nil {
		return "", err
	}

	payload := &Payload{
		StandardClaims: jwt.StandardClaims{
			Id:        tokenID,
			ExpiresAt: now.Add(duration).Unix(),
			IssuedAt:  now.Unix(),
			Issuer:    TokenIssuer,
		},
		Username: username,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, payload)

	return token.SignedString([]byte(secretKey))
}

// ParseToken parses and validates the JWT Token string using the provided secretKey.
func ParseToken(tokenString string, secretKey string) (*Payload, error) {
	claims := &Payload{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(secretKey), nil
	})

	if err != nil {
		return nil, err
	}

	if !token.Valid || claims.Username == "" {
		return nil, errors.New("invalid or expired token")
	}

	if claims.Issuer != TokenIssuer {
		return nil, errors.New("unexpected token issuer")
	}

	if !randx.IsValidTokenID(claims.Id) {
		return nil, errors.New("malformed token id")
	}

	return claims, nil
}
