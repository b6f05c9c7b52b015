package services

import (
	"context"
	"strings"

	"badmintonStore/entities"
	"badmintonStore/models"
	"badmintonStore/repository"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

const bcryptCost = 8

type UserService struct {
	ur     repository.UserRepository
	sr     repository.SessionRepository
	tokens TokenManager
}

func NewUserService(uRepo repository.UserRepository, sRepo repository.SessionRepository, tokens TokenManager) UserService {
	return UserService{
		ur:     uRepo,
		sr:     sRepo,
		tokens: tokens,
	}
}

func encryptPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		log.Printf("encryptPassword: %v", err)
		return "", models.ErrServerError
	}
	return string(hashed), nil
}

func verifyPassword(hashed, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(password)) == nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateCredentials(creds models.Credentials) error {
	return checkStruct("", creds)
}

func (us *UserService) register(ctx context.Context, creds models.Credentials) (uModel models.User_db, err error) {
	creds.Email = normalizeEmail(creds.Email)
	if err = validateCredentials(creds); err != nil {
		return
	}
	uModel = models.User_db{Email: creds.Email, Role: creds.Role}
	if uModel.Password, err = encryptPassword(creds.Password); err != nil {
		return
	}
	uModel.Id, err = us.ur.AddNewUser(ctx, uModel)
	if err != nil {
		return
	}
	log.WithFields(log.Fields{"user_id": uModel.Id, "role": uModel.Role}).Info("user registered")
	return
}

// Signup registers a customer account. Any requested role is ignored.
func (us *UserService) Signup(ctx context.Context, creds models.Credentials) (uModel models.User_db, err error) {
	creds.Role = models.RoleUser
	return us.register(ctx, creds)
}

func (us *UserService) CreateUser(ctx context.Context, creds models.Credentials) (uModel models.User_db, err error) {
	if creds.Role == "" {
		creds.Role = models.RoleUser
	}
	if creds.Role != models.RoleUser && creds.Role != models.RoleAdmin {
		err = invalid("role must be %q or %q", models.RoleUser, models.RoleAdmin)
		return
	}
	return us.register(ctx, creds)
}

func (us *UserService) Signin(ctx context.Context, email, password string) (resp entities.TokenResponse, err error) {
	uModel, exists, err := us.ur.GetUserByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return
	}
	if !exists || !verifyPassword(uModel.Password, password) {
		err = errors.Wrap(models.ErrUnauthorized, "wrong email or password")
		return
	}
	token, claims, expiresAt, err := us.tokens.Issue(uModel.Id, uModel.Role)
	if err != nil {
		return
	}
	if err = us.sr.CreateSession(ctx, claims.SessionId, uModel.Id, uModel.Role, us.tokens.TTL()); err != nil {
		return
	}
	resp = entities.TokenResponse{Token: token, ExpiresAt: expiresAt}
	return
}

// Authenticate verifies a bearer token and that its session is still live.
// The role recorded with the session wins over the one in the token.
func (us *UserService) Authenticate(ctx context.Context, token string) (claims models.Claims, err error) {
	if claims, err = us.tokens.Parse(token); err != nil {
		return
	}
	userId, role, exists, err := us.sr.GetUserSessionInfo(ctx, claims.SessionId)
	if err != nil {
		return
	}
	if !exists || userId != claims.UserId {
		err = errors.Wrap(models.ErrInvalidToken, "session revoked")
		return
	}
	claims.Role = role
	return
}

func (us *UserService) Logout(ctx context.Context, claims models.Claims) (err error) {
	err = us.sr.DeleteSession(ctx, claims.SessionId)
	return
}

func (us *UserService) ChangePassword(ctx context.Context, claims models.Claims, pd models.PasswordData) (err error) {
	uModel, exists, err := us.ur.GetUserById(ctx, claims.UserId)
	if err != nil {
		return
	}
	if !exists {
		err = errors.Wrapf(models.ErrNotFound, "user %d", claims.UserId)
		return
	}
	if !verifyPassword(uModel.Password, pd.OldPassword) {
		err = invalid("old password does not match")
		return
	}
	if err = checkStruct("", pd); err != nil {
		return
	}
	hashed, err := encryptPassword(pd.NewPassword)
	if err != nil {
		return
	}
	if err = us.ur.UpdatePassword(ctx, claims.UserId, hashed); err != nil {
		return
	}
	err = us.sr.DeleteSession(ctx, claims.SessionId)
	return
}

// EnsureAdmin creates the bootstrap administrator unless the email is taken.
func (us *UserService) EnsureAdmin(ctx context.Context, email, password string) (err error) {
	if email == "" {
		return
	}
	_, exists, err := us.ur.GetUserByEmail(ctx, normalizeEmail(email))
	if err != nil || exists {
		return
	}
	_, err = us.register(ctx, models.Credentials{Email: email, Password: password, Role: models.RoleAdmin})
	return
}
