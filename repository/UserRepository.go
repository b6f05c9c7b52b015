package repository

import (
	"context"
	"database/sql"

	"badmintonStore/models"

	"github.com/lib/pq"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

type UserRepository interface {
	GetUserById(ctx context.Context, id int) (models.User_db, bool, error)
	GetUserByEmail(ctx context.Context, email string) (models.User_db, bool, error)
	UpdatePassword(ctx context.Context, userId int, newPassword string) error
	AddNewUser(ctx context.Context, uModel models.User_db) (newUserId int, err error)
}

type UserRepo struct {
	db *sql.DB
}

func NewUserRepository(conn *sql.DB) (UserRepository, error) {
	if conn == nil {
		return nil, errors.New("conn must be non-nil")
	}
	err := conn.Ping()
	if err != nil {
		return nil, err
	}
	return &UserRepo{
		db: conn,
	}, nil
}

func (u *UserRepo) GetUserById(ctx context.Context, id int) (uModel models.User_db, exists bool, err error) {
	row := u.db.QueryRowContext(ctx, "SELECT Id, Email, Password, Role FROM Users WHERE Id = $1", id)
	err = row.Scan(&uModel.Id, &uModel.Email, &uModel.Password, &uModel.Role)
	if err != nil {
		if err == sql.ErrNoRows {
			err = nil
			return
		}
		log.Printf("GetUserById: %v", err)
		err = models.ErrServerError
		return
	}
	exists = true
	return
}

func (u *UserRepo) GetUserByEmail(ctx context.Context, email string) (uModel models.User_db, exists bool, err error) {
	row := u.db.QueryRowContext(ctx, "SELECT Id, Email, Password, Role FROM Users WHERE Email = $1", email)
	err = row.Scan(&uModel.Id, &uModel.Email, &uModel.Password, &uModel.Role)
	if err != nil {
		if err == sql.ErrNoRows {
			err = nil
			return
		}
		log.Printf("GetUserByEmail: %v", err)
		err = models.ErrServerError
		return
	}
	exists = true
	return
}

func (u *UserRepo) AddNewUser(ctx context.Context, uModel models.User_db) (newUserId int, err error) {
	err = u.db.QueryRowContext(ctx, "INSERT INTO Users (Email, Password, Role) VALUES ($1, $2, $3) RETURNING Id", uModel.Email, uModel.Password, uModel.Role).Scan(&newUserId)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			err = errors.Wrapf(models.ErrConflict, "user %s", uModel.Email)
			return
		}
		log.Printf("AddNewUser: %v", err)
		err = models.ErrServerError
	}
	return
}

func (u *UserRepo) UpdatePassword(ctx context.Context, userId int, newPassword string) error {
	_, err := u.db.ExecContext(ctx, "UPDATE Users SET Password = $1 WHERE Id = $2", newPassword, userId)
	if err != nil {
		log.Printf("UpdatePassword: %v", err)
		err = models.ErrServerError
	}
	return err
}
