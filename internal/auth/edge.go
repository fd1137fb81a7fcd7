package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Authenticator проверяет JWT на входе в task/project хендлеры:
// подпись, срок, черный список отозванных токенов.
type Authenticator struct {
	jwtSecret []byte
	rdb       *redis.Client
}

var ErrUnauthorized = errors.New("unauthorized")

func NewAuthenticator(jwtSecret []byte, rdb *redis.Client) *Authenticator {
	return &Authenticator{jwtSecret: jwtSecret, rdb: rdb}
}

func (a *Authenticator) Authenticate(r *http.Request) (uuid.UUID, Role, error) {
	tokenString, err := tokenFromRequest(r)
	if err != nil {
		return uuid.Nil, "", ErrUnauthorized
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return a.jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return uuid.Nil, "", ErrUnauthorized
	}

	normalizeClaims(claims)
	if claims.UserID == uuid.Nil || claims.ID == "" {
		return uuid.Nil, "", ErrUnauthorized
	}

	if a.rdb != nil {
		key := tokenBlacklistPrefix + claims.ID
		exists, err := a.rdb.Exists(r.Context(), key).Result()
		if err != nil {
			return uuid.Nil, "", err
		}
		if exists == 1 {
			return uuid.Nil, "", ErrUnauthorized
		}
	}

	return claims.UserID, claims.Role, nil
}

func tokenFromRequest(r *http.Request) (string, error) {
	if token, err := extractBearerToken(r.Header.Get("Authorization")); err == nil {
		return token, nil
	}
	if cookie, err := r.Cookie(authCookieName); err == nil {
		if token := strings.TrimSpace(cookie.Value); token != "" {
			return token, nil
		}
	}
	return "", errTokenRequired
}
