package jwt

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"ucp_service/internal/models"
)

// ErrInvalidToken is returned for every rejection reason. Callers must not
// learn whether a token was tampered with, malformed or expired.
var ErrInvalidToken = errors.New("invalid token")

// Claims embeds the account identity and role flags into the session token.
// Role claims go stale for at most the token TTL; there is no server-side
// revocation.
type Claims struct {
	jwt.RegisteredClaims
	UserID int64 `json:"uid"`
	Admin  int   `json:"admin"`
	Helper int   `json:"helper"`
}

func NewToken(user models.User, secret string, ttl time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
		UserID: user.ID,
		Admin:  user.Admin,
		Helper: user.Helper,
	})

	return token.SignedString([]byte(secret))
}

func ParseToken(tokenString, secret string) (Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return Claims{}, ErrInvalidToken
	}

	return *claims, nil
}
