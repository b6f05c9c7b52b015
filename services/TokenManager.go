package services

import (
	"time"

	"badmintonStore/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

type tokenClaims struct {
	UserId int    `json:"id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// TokenManager signs and verifies HS256 access tokens. The token id doubles
// as the session key that logout revokes.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenManager(secret string, ttl time.Duration) TokenManager {
	return TokenManager{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

func (tm TokenManager) TTL() time.Duration {
	return tm.ttl
}

func (tm TokenManager) Issue(userId int, role string) (token string, claims models.Claims, expiresAt time.Time, err error) {
	now := tm.now()
	expiresAt = now.Add(tm.ttl).UTC()
	claims = models.Claims{UserId: userId, Role: role, SessionId: uuid.NewString()}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, tokenClaims{
		UserId: userId,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        claims.SessionId,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	})
	token, err = t.SignedString(tm.secret)
	if err != nil {
		err = errors.Wrap(models.ErrServerError, err.Error())
	}
	return
}

func (tm TokenManager) Parse(token string) (claims models.Claims, err error) {
	var tc tokenClaims
	_, err = jwt.ParseWithClaims(token, &tc, func(*jwt.Token) (any, error) {
		return tm.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(tm.now),
	)
	if err != nil {
		err = errors.Wrap(models.ErrInvalidToken, err.Error())
		return
	}
	if tc.ID == "" || tc.UserId == 0 {
		err = errors.Wrap(models.ErrInvalidToken, "token without session")
		return
	}
	claims = models.Claims{UserId: tc.UserId, Role: tc.Role, SessionId: tc.ID}
	return
}
