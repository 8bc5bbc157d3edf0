package jwt

import (
	"errors"
	"fmt"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"

	appErr "github.com/xxxsen/portfolio/internal/pkg/errors"
	"github.com/xxxsen/portfolio/internal/pkg/timeutil"
)

// TokenTTL is the lifetime of every session token. There is no refresh.
const TokenTTL = 24 * time.Hour

type Claims struct {
	UserID string `json:"userId"`
	jwtlib.RegisteredClaims
}

func GenerateToken(userID string, secret []byte, issuedAt time.Time, ttl time.Duration) (string, error) {
	claims := Claims{
		UserID: userID,
		RegisteredClaims: jwtlib.RegisteredClaims{
			Subject:   userID,
			ExpiresAt: jwtlib.NewNumericDate(issuedAt.Add(ttl)),
			IssuedAt:  jwtlib.NewNumericDate(issuedAt),
		},
	}
	token := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

func ParseToken(tokenString string, secret []byte, now timeutil.Clock) (*Claims, error) {
	token, err := jwtlib.ParseWithClaims(tokenString, &Claims{}, func(token *jwtlib.Token) (interface{}, error) {
		return secret, nil
	},
		jwtlib.WithValidMethods([]string{jwtlib.SigningMethodHS256.Alg()}),
		jwtlib.WithExpirationRequired(),
		jwtlib.WithTimeFunc(now.Now),
	)
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}
	if claims.UserID == "" {
		return nil, errors.New("token has no subject")
	}
	return claims, nil
}

// Signer issues and verifies session tokens with a process-wide HMAC secret.
type Signer struct {
	secret []byte
	now    timeutil.Clock
}

func NewSigner(secret []byte, now timeutil.Clock) (*Signer, error) {
	if len(secret) == 0 {
		return nil, fmt.Errorf("jwt secret is required")
	}
	return &Signer{secret: secret, now: now}, nil
}

func (s *Signer) Issue(userID string) (string, error) {
	return GenerateToken(userID, s.secret, s.now.Now(), TokenTTL)
}

// Verify returns the subject of a valid token. Malformed, forged and expired
// tokens all fail with ErrInvalidToken.
func (s *Signer) Verify(tokenString string) (string, error) {
	claims, err := ParseToken(tokenString, s.secret, s.now)
	if err != nil {
		return "", fmt.Errorf("%w: %v", appErr.ErrInvalidToken, err)
	}
	return claims.UserID, nil
}
