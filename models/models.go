package models

import (
	"database/sql"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

var ErrValidation = errors.New("validation error")
var ErrNotFound = errors.New("not found")
var ErrEmptyCart = errors.New("cart is empty")
var ErrItemNotFound = errors.New("item not found")
var ErrInvalidQuantity = errors.New("invalid quantity")
var ErrUnauthorized = errors.New("unauthorized")
var ErrInvalidToken = errors.New("invalid token")
var ErrForbidden = errors.New("forbidden")
var ErrConflict = errors.New("already exists")
var ErrUpstream = errors.New("payment provider error")
var ErrServerError = errors.New("server error")

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

const (
	PaymentCOD    = "cod"
	PaymentOnline = "online"
)

const (
	PaymentPending = "pending"
	PaymentPaid    = "paid"
	PaymentFailed  = "failed"
)

const (
	OrderPending    = "pending"
	OrderProcessing = "processing"
	OrderShipped    = "shipped"
	OrderDelivered  = "delivered"
	OrderCancelled  = "cancelled"
)

func IsOrderStatus(s string) bool {
	switch s {
	case OrderPending, OrderProcessing, OrderShipped, OrderDelivered, OrderCancelled:
		return true
	}
	return false
}

type Credentials struct {
	Password string `json:"password" db:"Password" validate:"min=6"`
	Email    string `json:"email" db:"Email" validate:"required,email"`
	Role     string `json:"role" db:"Role"`
}

type PasswordData struct {
	OldPassword string `json:"old_password" validate:"required"`
	NewPassword string `json:"new_password" validate:"min=6"`
}

// Claims identify the caller of an authenticated request.
type Claims struct {
	UserId    int
	Role      string
	SessionId string
}

func (c Claims) IsAdmin() bool {
	return c.Role == RoleAdmin
}

type User_db struct {
	Id       int
	Email    string `json:"email" db:"Email"`
	Password string `json:"password" db:"Password"`
	Role     string `json:"role" db:"Role"`
}

type Order_db struct {
	Id              int
	OrderNumber     string
	UserId          int
	Items           []byte
	TotalAmount     decimal.Decimal
	ReceiverName    string
	PhoneNumber     string
	Address         string
	Note            sql.NullString
	PaymentMethod   string
	PaymentStatus   string
	OrderStatus     string
	PaymentIntentId sql.NullString
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// PaymentUpdate carries the payment fields an update may change.
type PaymentUpdate struct {
	PaymentStatus   *string
	PaymentIntentId *string
}
