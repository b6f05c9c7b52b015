package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"badmintonStore/entities"
	"badmintonStore/models"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

type OrderRepository interface {
	CreateOrder(ctx context.Context, order entities.Order) (orderId int, err error)
	GetOrderById(ctx context.Context, orderId int) (order entities.Order, exists bool, err error)
	GetOrderByPaymentIntent(ctx context.Context, intentId string) (order entities.Order, exists bool, err error)
	GetUserOrders(ctx context.Context, userId int) (orders []entities.Order, err error)
	GetAllOrders(ctx context.Context) (orders []entities.Order, err error)
	// SetOrderStatus moves the order from status `from` to `to`; ok is false
	// when the order is no longer in `from`.
	SetOrderStatus(ctx context.Context, orderId int, from, to string) (ok bool, err error)
	UpdatePayment(ctx context.Context, orderId int, upd models.PaymentUpdate) (err error)
	// DeleteOrder removes the order only while it is still in `status`.
	DeleteOrder(ctx context.Context, orderId int, status string) (ok bool, err error)
}

type OrderRepo struct {
	db *sql.DB
}

func NewOrderRepository(conn *sql.DB) (OrderRepository, error) {
	if conn == nil {
		return nil, errors.New("conn must be non-nil")
	}
	err := conn.Ping()
	if err != nil {
		return nil, err
	}
	return &OrderRepo{
		db: conn,
	}, nil
}

const orderColumns = "Id, OrderNumber, UserId, Items, TotalAmount, ReceiverName, PhoneNumber, Address, Note, PaymentMethod, PaymentStatus, OrderStatus, PaymentIntentId, CreatedAt, UpdatedAt"

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (or models.Order_db, err error) {
	err = row.Scan(&or.Id, &or.OrderNumber, &or.UserId, &or.Items, &or.TotalAmount,
		&or.ReceiverName, &or.PhoneNumber, &or.Address, &or.Note,
		&or.PaymentMethod, &or.PaymentStatus, &or.OrderStatus, &or.PaymentIntentId,
		&or.CreatedAt, &or.UpdatedAt)
	return
}

func orderFromDb(or models.Order_db) (order entities.Order, err error) {
	order = entities.Order{
		Id:              or.Id,
		OrderNumber:     or.OrderNumber,
		UserId:          or.UserId,
		TotalAmount:     or.TotalAmount,
		ReceiverName:    or.ReceiverName,
		PhoneNumber:     or.PhoneNumber,
		Address:         or.Address,
		Note:            or.Note.String,
		PaymentMethod:   or.PaymentMethod,
		PaymentStatus:   or.PaymentStatus,
		OrderStatus:     or.OrderStatus,
		PaymentIntentId: or.PaymentIntentId.String,
		CreatedAt:       or.CreatedAt,
		UpdatedAt:       or.UpdatedAt,
	}
	err = json.Unmarshal(or.Items, &order.Items)
	return
}

func (o *OrderRepo) CreateOrder(ctx context.Context, order entities.Order) (orderId int, err error) {
	items, e := json.Marshal(order.Items)
	if e != nil {
		log.Printf("CreateOrder[1]: %v", e)
		err = models.ErrServerError
		return
	}
	e = o.db.QueryRowContext(ctx,
		"INSERT INTO Orders (OrderNumber, UserId, Items, TotalAmount, ReceiverName, PhoneNumber, Address, Note, PaymentMethod, PaymentStatus, OrderStatus, CreatedAt, UpdatedAt) "+
			"VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13) RETURNING Id",
		order.OrderNumber, order.UserId, string(items), order.TotalAmount, order.ReceiverName, order.PhoneNumber,
		order.Address, sql.NullString{String: order.Note, Valid: order.Note != ""},
		order.PaymentMethod, order.PaymentStatus, order.OrderStatus, order.CreatedAt, order.UpdatedAt).Scan(&orderId)
	if e != nil {
		log.Printf("CreateOrder[2]: %v", e)
		err = models.ErrServerError
	}
	return
}

func (o *OrderRepo) getOrder(ctx context.Context, op string, where string, arg any) (order entities.Order, exists bool, err error) {
	row := o.db.QueryRowContext(ctx, "SELECT "+orderColumns+" FROM Orders WHERE "+where+"=$1", arg)
	or, e := scanOrder(row)
	if e != nil {
		if e == sql.ErrNoRows {
			return
		}
		log.Printf("%s[1]: %v", op, e)
		err = models.ErrServerError
		return
	}
	order, e = orderFromDb(or)
	if e != nil {
		log.Printf("%s[2]: %v", op, e)
		err = models.ErrServerError
		return
	}
	exists = true
	return
}

func (o *OrderRepo) GetOrderById(ctx context.Context, orderId int) (order entities.Order, exists bool, err error) {
	return o.getOrder(ctx, "GetOrderById", "Id", orderId)
}

func (o *OrderRepo) GetOrderByPaymentIntent(ctx context.Context, intentId string) (order entities.Order, exists bool, err error) {
	return o.getOrder(ctx, "GetOrderByPaymentIntent", "PaymentIntentId", intentId)
}

func (o *OrderRepo) listOrders(ctx context.Context, op string, query string, args ...any) (orders []entities.Order, err error) {
	rows, e := o.db.QueryContext(ctx, query, args...)
	if e != nil {
		log.Printf("%s[1]: %v", op, e)
		err = models.ErrServerError
		return
	}
	defer rows.Close()

	orders = []entities.Order{}
	for rows.Next() {
		or, e := scanOrder(rows)
		if e != nil {
			log.Printf("%s[2]: %v", op, e)
			err = models.ErrServerError
			return
		}
		order, e := orderFromDb(or)
		if e != nil {
			log.Printf("%s[3]: %v", op, e)
			err = models.ErrServerError
			return
		}
		orders = append(orders, order)
	}
	if e = rows.Err(); e != nil {
		log.Printf("%s[4]: %v", op, e)
		err = models.ErrServerError
	}
	return
}

func (o *OrderRepo) GetUserOrders(ctx context.Context, userId int) (orders []entities.Order, err error) {
	return o.listOrders(ctx, "GetUserOrders",
		"SELECT "+orderColumns+" FROM Orders WHERE UserId=$1 ORDER BY CreatedAt DESC, Id DESC", userId)
}

func (o *OrderRepo) GetAllOrders(ctx context.Context) (orders []entities.Order, err error) {
	return o.listOrders(ctx, "GetAllOrders",
		"SELECT "+orderColumns+" FROM Orders ORDER BY CreatedAt DESC, Id DESC")
}

func (o *OrderRepo) SetOrderStatus(ctx context.Context, orderId int, from, to string) (ok bool, err error) {
	res, e := o.db.ExecContext(ctx, "UPDATE Orders SET OrderStatus=$1, UpdatedAt=$2 WHERE Id=$3 AND OrderStatus=$4",
		to, time.Now().UTC(), orderId, from)
	if e != nil {
		log.Printf("SetOrderStatus: %v", e)
		err = models.ErrServerError
		return
	}
	n, _ := res.RowsAffected()
	ok = n > 0
	return
}

func (o *OrderRepo) UpdatePayment(ctx context.Context, orderId int, upd models.PaymentUpdate) (err error) {
	var sets []string
	var params []any
	if upd.PaymentStatus != nil {
		params = append(params, *upd.PaymentStatus)
		sets = append(sets, "PaymentStatus=$"+strconv.Itoa(len(params)))
	}
	if upd.PaymentIntentId != nil {
		params = append(params, *upd.PaymentIntentId)
		sets = append(sets, "PaymentIntentId=$"+strconv.Itoa(len(params)))
	}
	if len(sets) == 0 {
		return
	}
	params = append(params, time.Now().UTC())
	sets = append(sets, "UpdatedAt=$"+strconv.Itoa(len(params)))
	params = append(params, orderId)
	query := "UPDATE Orders SET " + strings.Join(sets, ", ") + " WHERE Id=$" + strconv.Itoa(len(params))

	res, e := o.db.ExecContext(ctx, query, params...)
	if e != nil {
		log.Printf("UpdatePayment: %v", e)
		err = models.ErrServerError
		return
	}
	if n, _ := res.RowsAffected(); n == 0 {
		err = errors.Wrapf(models.ErrNotFound, "order %d", orderId)
	}
	return
}

func (o *OrderRepo) DeleteOrder(ctx context.Context, orderId int, status string) (ok bool, err error) {
	res, e := o.db.ExecContext(ctx, "DELETE FROM Orders WHERE Id=$1 AND OrderStatus=$2", orderId, status)
	if e != nil {
		log.Printf("DeleteOrder: %v", e)
		err = models.ErrServerError
		return
	}
	n, _ := res.RowsAffected()
	ok = n > 0
	return
}
