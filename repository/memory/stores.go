package memory

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"badmintonStore/entities"
	"badmintonStore/models"
	"badmintonStore/repository"

	"github.com/pkg/errors"
)

var (
	_ repository.CartRepository    = (*CartRepo)(nil)
	_ repository.OrderRepository   = (*OrderRepo)(nil)
	_ repository.UserRepository    = (*UserRepo)(nil)
	_ repository.SessionRepository = (*SessionRepo)(nil)
)

// CartRepo keeps carts as serialized documents, like the Redis store.
type CartRepo struct {
	mu    sync.Mutex
	carts map[int][]byte
}

func NewCartRepository() *CartRepo {
	return &CartRepo{carts: map[int][]byte{}}
}

func (c *CartRepo) GetCart(_ context.Context, userId int) (entities.Cart, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	cart := entities.Cart{UserId: userId, Items: []entities.CartItem{}}
	raw, ok := c.carts[userId]
	if !ok {
		return cart, false, nil
	}
	if err := json.Unmarshal(raw, &cart); err != nil {
		return cart, false, models.ErrServerError
	}
	if cart.Items == nil {
		cart.Items = []entities.CartItem{}
	}
	return cart, true, nil
}

func (c *CartRepo) SetCart(_ context.Context, cart entities.Cart) error {
	raw, err := json.Marshal(cart)
	if err != nil {
		return models.ErrServerError
	}
	c.mu.Lock()
	c.carts[cart.UserId] = raw
	c.mu.Unlock()
	return nil
}

func (c *CartRepo) DeleteCart(_ context.Context, userId int) error {
	c.mu.Lock()
	delete(c.carts, userId)
	c.mu.Unlock()
	return nil
}

type OrderRepo struct {
	mu     sync.Mutex
	nextId int
	orders map[int]entities.Order
}

func NewOrderRepository() *OrderRepo {
	return &OrderRepo{orders: map[int]entities.Order{}}
}

func cloneOrder(o entities.Order) entities.Order {
	o.Items = append([]entities.OrderItem(nil), o.Items...)
	return o
}

func (o *OrderRepo) CreateOrder(_ context.Context, order entities.Order) (int, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.nextId++
	order.Id = o.nextId
	o.orders[order.Id] = cloneOrder(order)
	return order.Id, nil
}

func (o *OrderRepo) GetOrderById(_ context.Context, orderId int) (entities.Order, bool, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	order, ok := o.orders[orderId]
	if !ok {
		return entities.Order{}, false, nil
	}
	return cloneOrder(order), true, nil
}

func (o *OrderRepo) GetOrderByPaymentIntent(_ context.Context, intentId string) (entities.Order, bool, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	for _, order := range o.orders {
		if intentId != "" && order.PaymentIntentId == intentId {
			return cloneOrder(order), true, nil
		}
	}
	return entities.Order{}, false, nil
}

func (o *OrderRepo) list(match func(entities.Order) bool) []entities.Order {
	o.mu.Lock()
	defer o.mu.Unlock()

	orders := []entities.Order{}
	for _, order := range o.orders {
		if match(order) {
			orders = append(orders, cloneOrder(order))
		}
	}
	sort.Slice(orders, func(i, j int) bool {
		if orders[i].CreatedAt.Equal(orders[j].CreatedAt) {
			return orders[i].Id > orders[j].Id
		}
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})
	return orders
}

func (o *OrderRepo) GetUserOrders(_ context.Context, userId int) ([]entities.Order, error) {
	return o.list(func(order entities.Order) bool { return order.UserId == userId }), nil
}

func (o *OrderRepo) GetAllOrders(_ context.Context) ([]entities.Order, error) {
	return o.list(func(entities.Order) bool { return true }), nil
}

func (o *OrderRepo) SetOrderStatus(_ context.Context, orderId int, from, to string) (bool, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	order, ok := o.orders[orderId]
	if !ok || order.OrderStatus != from {
		return false, nil
	}
	order.OrderStatus = to
	order.UpdatedAt = time.Now().UTC()
	o.orders[orderId] = order
	return true, nil
}

func (o *OrderRepo) UpdatePayment(_ context.Context, orderId int, upd models.PaymentUpdate) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	order, ok := o.orders[orderId]
	if !ok {
		return errors.Wrapf(models.ErrNotFound, "order %d", orderId)
	}
	if upd.PaymentStatus != nil {
		order.PaymentStatus = *upd.PaymentStatus
	}
	if upd.PaymentIntentId != nil {
		order.PaymentIntentId = *upd.PaymentIntentId
	}
	order.UpdatedAt = time.Now().UTC()
	o.orders[orderId] = order
	return nil
}

func (o *OrderRepo) DeleteOrder(_ context.Context, orderId int, status string) (bool, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	order, ok := o.orders[orderId]
	if !ok || order.OrderStatus != status {
		return false, nil
	}
	delete(o.orders, orderId)
	return true, nil
}

type UserRepo struct {
	mu     sync.Mutex
	nextId int
	users  map[int]models.User_db
}

func NewUserRepository() *UserRepo {
	return &UserRepo{users: map[int]models.User_db{}}
}

func (u *UserRepo) GetUserById(_ context.Context, id int) (models.User_db, bool, error) {
	u.mu.Lock()
	defer u.mu.Unlock()

	usr, ok := u.users[id]
	return usr, ok, nil
}

func (u *UserRepo) GetUserByEmail(_ context.Context, email string) (models.User_db, bool, error) {
	u.mu.Lock()
	defer u.mu.Unlock()

	for _, usr := range u.users {
		if usr.Email == email {
			return usr, true, nil
		}
	}
	return models.User_db{}, false, nil
}

func (u *UserRepo) UpdatePassword(_ context.Context, userId int, newPassword string) error {
	u.mu.Lock()
	defer u.mu.Unlock()

	usr, ok := u.users[userId]
	if !ok {
		return errors.Wrapf(models.ErrNotFound, "user %d", userId)
	}
	usr.Password = newPassword
	u.users[userId] = usr
	return nil
}

func (u *UserRepo) AddNewUser(_ context.Context, uModel models.User_db) (int, error) {
	u.mu.Lock()
	defer u.mu.Unlock()

	for _, usr := range u.users {
		if usr.Email == uModel.Email {
			return 0, errors.Wrapf(models.ErrConflict, "user %s", uModel.Email)
		}
	}
	u.nextId++
	uModel.Id = u.nextId
	u.users[uModel.Id] = uModel
	return uModel.Id, nil
}

type session struct {
	userId  int
	role    string
	expires time.Time
}

type SessionRepo struct {
	mu       sync.Mutex
	sessions map[string]session
}

func NewSessionRepository() *SessionRepo {
	return &SessionRepo{sessions: map[string]session{}}
}

func (s *SessionRepo) CreateSession(_ context.Context, sessionId string, userId int, role string, ttl time.Duration) error {
	s.mu.Lock()
	s.sessions[sessionId] = session{userId: userId, role: role, expires: time.Now().Add(ttl)}
	s.mu.Unlock()
	return nil
}

func (s *SessionRepo) DeleteSession(_ context.Context, sessionId string) error {
	s.mu.Lock()
	delete(s.sessions, sessionId)
	s.mu.Unlock()
	return nil
}

func (s *SessionRepo) GetUserSessionInfo(_ context.Context, sessionId string) (int, string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ses, ok := s.sessions[sessionId]
	if !ok || time.Now().After(ses.expires) {
		delete(s.sessions, sessionId)
		return 0, "", false, nil
	}
	return ses.userId, ses.role, true, nil
}
