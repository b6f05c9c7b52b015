package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"badmintonStore/entities"
	"badmintonStore/models"
	"badmintonStore/payment"
	"badmintonStore/repository"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

type OrderService struct {
	pr       repository.CatalogRepository
	cr       repository.CartRepository
	or       repository.OrderRepository
	ur       repository.UserRepository
	payments payment.Bridge
	currency string
}

func NewOrderService(catalogRepo repository.CatalogRepository, cartRepo repository.CartRepository, orderRepo repository.OrderRepository, userRepo repository.UserRepository, bridge payment.Bridge, currency string) OrderService {
	return OrderService{
		pr:       catalogRepo,
		cr:       cartRepo,
		or:       orderRepo,
		ur:       userRepo,
		payments: bridge,
		currency: currency,
	}
}

func newOrderNumber(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	return fmt.Sprintf("BM-%s-%s", now.Format("20060102"), suffix)
}

// priceItems snapshots every cart line against the live catalog.
func (ors *OrderService) priceItems(ctx context.Context, items []entities.CartItem) (lines []entities.OrderItem, total decimal.Decimal, err error) {
	total = decimal.Zero
	for _, it := range items {
		prod, found, e := findProduct(ctx, ors.pr, it.Category, it.ProductId)
		if e != nil {
			err = e
			return
		}
		if !found {
			err = errors.Wrapf(models.ErrItemNotFound, "product %s", it.ProductId)
			return
		}
		stock, ok := prod.Stock(it.Color, it.Type)
		if !ok {
			err = errors.Wrapf(models.ErrItemNotFound, "product %s color %q type %q", it.ProductId, it.Color, it.Type)
			return
		}
		if it.Quantity <= 0 || it.Quantity > stock {
			err = errors.Wrapf(models.ErrInvalidQuantity, "only %d of %s left", stock, prod.Name)
			return
		}
		subtotal := decimal.NewFromFloat(prod.Price).Mul(decimal.NewFromInt(int64(it.Quantity))).Round(2)
		lines = append(lines, entities.OrderItem{
			Category:  prod.Category,
			ProductId: prod.Id,
			Name:      prod.Name,
			Color:     it.Color,
			Type:      it.Type,
			Quantity:  it.Quantity,
			Price:     prod.Price,
			Subtotal:  subtotal,
		})
		total = total.Add(subtotal)
	}
	total = total.Round(2)
	return
}

func (ors *OrderService) reserve(ctx context.Context, items []entities.OrderItem) (err error) {
	for i, it := range items {
		ok, e := ors.pr.Reserve(ctx, it.StockLine())
		if e == nil && !ok {
			e = errors.Wrapf(models.ErrInvalidQuantity, "%s is no longer in stock", it.Name)
		}
		if e != nil {
			ors.release(ctx, items[:i])
			err = e
			return
		}
	}
	return
}

func (ors *OrderService) release(ctx context.Context, items []entities.OrderItem) {
	for _, it := range items {
		if err := ors.pr.Release(ctx, it.StockLine()); err != nil {
			log.WithError(err).WithFields(log.Fields{
				"category":   it.Category,
				"product_id": it.ProductId,
				"quantity":   it.Quantity,
			}).Error("stock release failed")
		}
	}
}

func (ors *OrderService) CreateOrder(ctx context.Context, userId int, req entities.OrderRequest) (order entities.Order, err error) {
	if err = validateDelivery(req); err != nil {
		return
	}
	cart, _, err := ors.cr.GetCart(ctx, userId)
	if err != nil {
		return
	}
	if len(cart.Items) == 0 {
		err = models.ErrEmptyCart
		return
	}

	items, total, err := ors.priceItems(ctx, cart.Items)
	if err != nil {
		return
	}
	if err = ors.reserve(ctx, items); err != nil {
		return
	}

	now := time.Now().UTC()
	order = entities.Order{
		OrderNumber:   newOrderNumber(now),
		UserId:        userId,
		Items:         items,
		TotalAmount:   total,
		ReceiverName:  strings.TrimSpace(req.ReceiverName),
		PhoneNumber:   strings.TrimSpace(req.PhoneNumber),
		Address:       strings.TrimSpace(req.Address),
		Note:          req.Note,
		PaymentMethod: req.PaymentMethod,
		PaymentStatus: models.PaymentPending,
		OrderStatus:   models.OrderPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	order.Id, err = ors.or.CreateOrder(ctx, order)
	if err != nil {
		ors.release(ctx, items)
		return
	}

	if order.PaymentMethod == models.PaymentCOD {
		if e := ors.cr.DeleteCart(ctx, userId); e != nil {
			log.WithError(e).WithField("user_id", userId).Warn("cart not cleared after checkout")
		}
	}
	log.WithFields(log.Fields{
		"order_id":     order.Id,
		"order_number": order.OrderNumber,
		"user_id":      userId,
		"total":        order.TotalAmount.String(),
	}).Info("order created")
	return
}

// Checkout creates the order and, for online payment, opens a payment
// intent. A failed intent leaves the order in place; the client can retry it.
func (ors *OrderService) Checkout(ctx context.Context, userId int, req entities.OrderRequest) (resp entities.CheckoutResponse, err error) {
	order, err := ors.CreateOrder(ctx, userId, req)
	if err != nil {
		return
	}
	resp.Order = order
	if order.PaymentMethod != models.PaymentOnline {
		return
	}
	intent, e := ors.openIntent(ctx, order)
	if e != nil {
		log.WithError(e).WithField("order_id", order.Id).Warn("payment intent not created at checkout")
		return
	}
	resp.Order.PaymentIntentId = intent.Id
	resp.ClientSecret = intent.ClientSecret
	return
}

func (ors *OrderService) getOrder(ctx context.Context, orderId int) (order entities.Order, err error) {
	order, exists, err := ors.or.GetOrderById(ctx, orderId)
	if err != nil {
		return
	}
	if !exists {
		err = errors.Wrapf(models.ErrNotFound, "order %d", orderId)
	}
	return
}

func (ors *OrderService) GetOrder(ctx context.Context, requester models.Claims, orderId int) (order entities.Order, err error) {
	if order, err = ors.getOrder(ctx, orderId); err != nil {
		return
	}
	if !requester.IsAdmin() && order.UserId != requester.UserId {
		err = errors.Wrapf(models.ErrForbidden, "order %d", orderId)
	}
	return
}

func (ors *OrderService) GetUserOrders(ctx context.Context, userId int) (orders []entities.Order, err error) {
	orders, err = ors.or.GetUserOrders(ctx, userId)
	return
}

func (ors *OrderService) GetAllOrders(ctx context.Context) (orders []entities.Order, err error) {
	orders, err = ors.or.GetAllOrders(ctx)
	if err != nil {
		return
	}
	emails := map[int]string{}
	for i := range orders {
		uid := orders[i].UserId
		email, seen := emails[uid]
		if !seen {
			usr, exists, e := ors.ur.GetUserById(ctx, uid)
			if e != nil {
				err = e
				return
			}
			if exists {
				email = usr.Email
			}
			emails[uid] = email
		}
		orders[i].UserEmail = email
	}
	return
}

func (ors *OrderService) moveStatus(ctx context.Context, order entities.Order, to string) (err error) {
	ok, err := ors.or.SetOrderStatus(ctx, order.Id, order.OrderStatus, to)
	if err != nil {
		return
	}
	if !ok {
		err = errors.Wrapf(models.ErrConflict, "order %d changed concurrently", order.Id)
		return
	}
	if to == models.OrderCancelled && holdsStock(order.OrderStatus) {
		ors.release(ctx, order.Items)
	}
	log.WithFields(log.Fields{"order_id": order.Id, "from": order.OrderStatus, "to": to}).Info("order status changed")
	return
}

func (ors *OrderService) UpdateOrder(ctx context.Context, orderId int, req entities.OrderStatusRequest) (order entities.Order, err error) {
	if req.OrderStatus == nil && req.PaymentStatus == nil {
		err = invalid("orderStatus or paymentStatus is required")
		return
	}
	if err = checkStruct("", req); err != nil {
		return
	}
	if order, err = ors.getOrder(ctx, orderId); err != nil {
		return
	}

	moving := req.OrderStatus != nil && *req.OrderStatus != order.OrderStatus
	paying := req.PaymentStatus != nil && *req.PaymentStatus != order.PaymentStatus
	if moving && !CanTransition(order.OrderStatus, *req.OrderStatus) {
		err = invalid("order cannot move from %s to %s", order.OrderStatus, *req.OrderStatus)
		return
	}

	// payment first: it is a plain overwrite and can be put back if the
	// status move loses its race
	if paying {
		if err = ors.or.UpdatePayment(ctx, orderId, models.PaymentUpdate{PaymentStatus: req.PaymentStatus}); err != nil {
			return
		}
	}
	if moving {
		if err = ors.moveStatus(ctx, order, *req.OrderStatus); err != nil {
			if paying {
				ors.restorePayment(ctx, order)
			}
			return
		}
	}
	order, err = ors.getOrder(ctx, orderId)
	return
}

func (ors *OrderService) restorePayment(ctx context.Context, order entities.Order) {
	prev := order.PaymentStatus
	if e := ors.or.UpdatePayment(ctx, order.Id, models.PaymentUpdate{PaymentStatus: &prev}); e != nil {
		log.WithError(e).WithField("order_id", order.Id).Error("payment status not restored")
	}
}

func (ors *OrderService) CancelOrder(ctx context.Context, userId, orderId int) (order entities.Order, err error) {
	if order, err = ors.getOrder(ctx, orderId); err != nil {
		return
	}
	if order.UserId != userId {
		err = errors.Wrapf(models.ErrForbidden, "order %d", orderId)
		return
	}
	if !Cancelable(order.OrderStatus) {
		err = invalid("order in status %s cannot be cancelled", order.OrderStatus)
		return
	}
	if err = ors.moveStatus(ctx, order, models.OrderCancelled); err != nil {
		return
	}
	order, err = ors.getOrder(ctx, orderId)
	return
}

func (ors *OrderService) DeleteOrder(ctx context.Context, requester models.Claims, orderId int) (err error) {
	order, err := ors.getOrder(ctx, orderId)
	if err != nil {
		return
	}
	if !requester.IsAdmin() {
		if order.UserId != requester.UserId {
			err = errors.Wrapf(models.ErrForbidden, "order %d", orderId)
			return
		}
		if !Cancelable(order.OrderStatus) && order.OrderStatus != models.OrderCancelled {
			err = invalid("order in status %s cannot be deleted", order.OrderStatus)
			return
		}
	}
	ok, err := ors.or.DeleteOrder(ctx, orderId, order.OrderStatus)
	if err != nil {
		return
	}
	if !ok {
		err = errors.Wrapf(models.ErrConflict, "order %d changed concurrently", orderId)
		return
	}
	if holdsStock(order.OrderStatus) {
		ors.release(ctx, order.Items)
	}
	log.WithFields(log.Fields{"order_id": orderId, "by": requester.UserId}).Info("order deleted")
	return
}

func (ors *OrderService) openIntent(ctx context.Context, order entities.Order) (intent payment.Intent, err error) {
	intent, err = ors.payments.CreatePaymentIntent(ctx, payment.Request{
		OrderId:     order.Id,
		OrderNumber: order.OrderNumber,
		Amount:      order.TotalAmount,
		Currency:    ors.currency,
	})
	if err != nil {
		return
	}
	err = ors.or.UpdatePayment(ctx, order.Id, models.PaymentUpdate{PaymentIntentId: &intent.Id})
	return
}

func (ors *OrderService) CreatePaymentIntent(ctx context.Context, requester models.Claims, orderId int) (resp entities.PaymentIntentResponse, err error) {
	order, err := ors.GetOrder(ctx, requester, orderId)
	if err != nil {
		return
	}
	switch {
	case order.PaymentMethod != models.PaymentOnline:
		err = invalid("order %d is not paid online", orderId)
	case order.PaymentStatus == models.PaymentPaid:
		err = invalid("order %d is already paid", orderId)
	case order.OrderStatus == models.OrderCancelled:
		err = invalid("order %d is cancelled", orderId)
	}
	if err != nil {
		return
	}
	intent, err := ors.openIntent(ctx, order)
	if err != nil {
		return
	}
	resp = entities.PaymentIntentResponse{OrderId: orderId, ClientSecret: intent.ClientSecret}
	return
}

// ApplyPaymentEvent reconciles an online order with a verified provider
// event. Events of other types, or for orders paid another way, are ignored.
func (ors *OrderService) ApplyPaymentEvent(ctx context.Context, event payment.Event) (err error) {
	var status string
	switch event.Type {
	case payment.EventSucceeded:
		status = models.PaymentPaid
	case payment.EventFailed:
		status = models.PaymentFailed
	default:
		log.WithField("type", event.Type).Debug("payment event ignored")
		return
	}

	var order entities.Order
	exists := false
	if event.OrderId != 0 {
		order, exists, err = ors.or.GetOrderById(ctx, event.OrderId)
	} else {
		order, exists, err = ors.or.GetOrderByPaymentIntent(ctx, event.IntentId)
	}
	if err != nil {
		return
	}
	if !exists {
		err = errors.Wrapf(models.ErrNotFound, "order for payment %s", event.IntentId)
		return
	}
	if order.PaymentMethod != models.PaymentOnline {
		log.WithFields(log.Fields{"order_id": order.Id, "payment_method": order.PaymentMethod}).Warn("payment event for an offline order ignored")
		return
	}
	if order.PaymentStatus == models.PaymentPaid {
		return
	}

	upd := models.PaymentUpdate{PaymentStatus: &status}
	if event.IntentId != "" {
		upd.PaymentIntentId = &event.IntentId
	}
	if err = ors.or.UpdatePayment(ctx, order.Id, upd); err != nil {
		return
	}
	if status == models.PaymentPaid {
		if e := ors.cr.DeleteCart(ctx, order.UserId); e != nil {
			log.WithError(e).WithField("user_id", order.UserId).Warn("cart not cleared after payment")
		}
	}
	log.WithFields(log.Fields{"order_id": order.Id, "payment_status": status}).Info("payment reconciled")
	return
}
