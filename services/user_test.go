package services

import (
	"context"
	"testing"
	"time"

	"badmintonStore/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignupAndSignin(t *testing.T) {
	ctx := context.Background()
	ts := newTestStore(t)

	usr, err := ts.userSvc.Signup(ctx, models.Credentials{Email: " Alice@Example.com", Password: "secret1", Role: models.RoleAdmin})
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", usr.Email)
	assert.Equal(t, models.RoleUser, usr.Role, "signup never grants admin")
	assert.NotEqual(t, "secret1", usr.Password)

	_, err = ts.userSvc.Signup(ctx, models.Credentials{Email: "alice@example.com", Password: "another1"})
	assert.ErrorIs(t, err, models.ErrConflict)

	resp, err := ts.userSvc.Signin(ctx, "alice@example.com", "secret1")
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
	assert.True(t, resp.ExpiresAt.After(time.Now()))

	claims, err := ts.userSvc.Authenticate(ctx, resp.Token)
	require.NoError(t, err)
	assert.Equal(t, usr.Id, claims.UserId)
	assert.Equal(t, models.RoleUser, claims.Role)

	_, err = ts.userSvc.Signin(ctx, "alice@example.com", "wrong-pass")
	assert.ErrorIs(t, err, models.ErrUnauthorized)
	_, err = ts.userSvc.Signin(ctx, "nobody@example.com", "secret1")
	assert.ErrorIs(t, err, models.ErrUnauthorized)
}

func TestSignupValidation(t *testing.T) {
	ts := newTestStore(t)

	_, err := ts.userSvc.Signup(context.Background(), models.Credentials{Email: "not-an-email", Password: "secret1"})
	assert.ErrorIs(t, err, models.ErrValidation)
	_, err = ts.userSvc.Signup(context.Background(), models.Credentials{Email: "a@example.com", Password: "123"})
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestLogoutRevokesToken(t *testing.T) {
	ctx := context.Background()
	ts := newTestStore(t)
	_, err := ts.userSvc.Signup(ctx, models.Credentials{Email: "alice@example.com", Password: "secret1"})
	require.NoError(t, err)
	resp, err := ts.userSvc.Signin(ctx, "alice@example.com", "secret1")
	require.NoError(t, err)
	claims, err := ts.userSvc.Authenticate(ctx, resp.Token)
	require.NoError(t, err)

	require.NoError(t, ts.userSvc.Logout(ctx, claims))

	_, err = ts.userSvc.Authenticate(ctx, resp.Token)
	assert.ErrorIs(t, err, models.ErrInvalidToken)
}

func TestChangePassword(t *testing.T) {
	ctx := context.Background()
	ts := newTestStore(t)
	_, err := ts.userSvc.Signup(ctx, models.Credentials{Email: "alice@example.com", Password: "secret1"})
	require.NoError(t, err)
	resp, err := ts.userSvc.Signin(ctx, "alice@example.com", "secret1")
	require.NoError(t, err)
	claims, err := ts.userSvc.Authenticate(ctx, resp.Token)
	require.NoError(t, err)

	err = ts.userSvc.ChangePassword(ctx, claims, models.PasswordData{OldPassword: "wrong", NewPassword: "secret2"})
	assert.ErrorIs(t, err, models.ErrValidation)
	err = ts.userSvc.ChangePassword(ctx, claims, models.PasswordData{OldPassword: "secret1", NewPassword: "s"})
	assert.ErrorIs(t, err, models.ErrValidation)

	require.NoError(t, ts.userSvc.ChangePassword(ctx, claims, models.PasswordData{OldPassword: "secret1", NewPassword: "secret2"}))

	_, err = ts.userSvc.Authenticate(ctx, resp.Token)
	assert.ErrorIs(t, err, models.ErrInvalidToken, "changing the password logs out")
	_, err = ts.userSvc.Signin(ctx, "alice@example.com", "secret1")
	assert.ErrorIs(t, err, models.ErrUnauthorized)
	_, err = ts.userSvc.Signin(ctx, "alice@example.com", "secret2")
	assert.NoError(t, err)
}

func TestCreateUserAndEnsureAdmin(t *testing.T) {
	ctx := context.Background()
	ts := newTestStore(t)

	_, err := ts.userSvc.CreateUser(ctx, models.Credentials{Email: "x@example.com", Password: "secret1", Role: "manager"})
	assert.ErrorIs(t, err, models.ErrValidation)

	staff, err := ts.userSvc.CreateUser(ctx, models.Credentials{Email: "staff@example.com", Password: "secret1", Role: models.RoleAdmin})
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, staff.Role)

	require.NoError(t, ts.userSvc.EnsureAdmin(ctx, "root@example.com", "rootpass"))
	require.NoError(t, ts.userSvc.EnsureAdmin(ctx, "root@example.com", "rootpass"), "second run is a no-op")
	require.NoError(t, ts.userSvc.EnsureAdmin(ctx, "", ""))

	resp, err := ts.userSvc.Signin(ctx, "root@example.com", "rootpass")
	require.NoError(t, err)
	claims, err := ts.userSvc.Authenticate(ctx, resp.Token)
	require.NoError(t, err)
	assert.True(t, claims.IsAdmin())
}

func TestTokenManager(t *testing.T) {
	tm := NewTokenManager("secret", time.Hour)

	token, issued, expiresAt, err := tm.Issue(7, models.RoleAdmin)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, time.Minute)

	claims, err := tm.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, issued, claims)
	assert.Equal(t, 7, claims.UserId)
	assert.NotEmpty(t, claims.SessionId)

	other := NewTokenManager("another-secret", time.Hour)
	_, err = other.Parse(token)
	assert.ErrorIs(t, err, models.ErrInvalidToken, "signature from another key")

	_, err = tm.Parse(token + "x")
	assert.ErrorIs(t, err, models.ErrInvalidToken)
	_, err = tm.Parse("garbage")
	assert.ErrorIs(t, err, models.ErrInvalidToken)
}

func TestTokenManagerExpiry(t *testing.T) {
	tm := NewTokenManager("secret", time.Minute)
	tm.now = func() time.Time { return time.Now().Add(-2 * time.Minute) }
	token, _, _, err := tm.Issue(1, models.RoleUser)
	require.NoError(t, err)

	tm.now = time.Now
	_, err = tm.Parse(token)
	assert.ErrorIs(t, err, models.ErrInvalidToken)
}

func TestTokenManagerRejectsOtherAlgorithms(t *testing.T) {
	tm := NewTokenManager("secret", time.Hour)
	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"id":   1,
		"role": models.RoleAdmin,
		"jti":  "abc",
		"exp":  time.Now().Add(time.Hour).Unix(),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = tm.Parse(unsigned)
	assert.ErrorIs(t, err, models.ErrInvalidToken)
}
