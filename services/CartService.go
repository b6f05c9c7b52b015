package services

import (
	"context"
	"time"

	"badmintonStore/entities"
	"badmintonStore/models"
	"badmintonStore/repository"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

type CartService struct {
	pr repository.CatalogRepository
	cr repository.CartRepository
}

func NewCartService(catalogRepo repository.CatalogRepository, cartRepo repository.CartRepository) CartService {
	return CartService{
		pr: catalogRepo,
		cr: cartRepo,
	}
}

func cartTotal(items []entities.CartItem) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(decimal.NewFromFloat(it.Price).Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	return total.Round(2)
}

func (cs *CartService) GetCart(ctx context.Context, userId int) (resp entities.CartResponse, err error) {
	cart, _, err := cs.cr.GetCart(ctx, userId)
	if err != nil {
		return
	}
	resp = entities.CartResponse{
		Items:      cart.Items,
		TotalPrice: cartTotal(cart.Items),
	}
	return
}

// resolveLine looks up the catalog entry a cart line points at and returns
// its live stock for the line's color and type.
func (cs *CartService) resolveLine(ctx context.Context, category, productId, color, typ string) (prod entities.Product, stock int, err error) {
	prod, found, err := findProduct(ctx, cs.pr, category, productId)
	if err != nil {
		return
	}
	if !found {
		err = errors.Wrapf(models.ErrNotFound, "product %s", productId)
		return
	}
	if entities.KindOf(prod.Category) != entities.NoVariants && typ == "" {
		err = invalid("type is required for %s", prod.Category)
		return
	}
	stock, ok := prod.Stock(color, typ)
	if !ok {
		err = errors.Wrapf(models.ErrNotFound, "product %s has no color %q type %q", productId, color, typ)
	}
	return
}

func (cs *CartService) AddItem(ctx context.Context, userId int, req entities.CartRequest) (cart entities.Cart, err error) {
	if err = checkStruct("", req); err != nil {
		return
	}

	prod, stock, err := cs.resolveLine(ctx, req.Category, req.ProductId, req.Color, req.Type)
	if err != nil {
		return
	}
	line := entities.CartItem{
		Category:  prod.Category,
		ProductId: prod.Id,
		Name:      prod.Name,
		Quantity:  req.Quantity,
		Color:     req.Color,
		Price:     prod.Price,
	}
	if entities.KindOf(prod.Category) != entities.NoVariants {
		line.Type = req.Type
	}

	cart, _, err = cs.cr.GetCart(ctx, userId)
	if err != nil {
		return
	}
	// one line per product and color: a repeat add takes the new type
	// and the summed quantity
	idx := -1
	for i := range cart.Items {
		if cart.Items[i].SameLine(line) {
			idx = i
			line.Quantity += cart.Items[i].Quantity
			break
		}
	}
	if line.Quantity > stock {
		err = errors.Wrapf(models.ErrInvalidQuantity, "only %d of %s left", stock, prod.Name)
		return
	}
	if idx >= 0 {
		cart.Items[idx] = line
	} else {
		cart.Items = append(cart.Items, line)
	}

	cart.UserId = userId
	cart.UpdatedAt = time.Now().UTC()
	err = cs.cr.SetCart(ctx, cart)
	return
}

func (cs *CartService) SetItemQuantity(ctx context.Context, userId int, ref entities.LineRef, quantity int) (cart entities.Cart, err error) {
	if quantity <= 0 {
		return cs.RemoveItem(ctx, userId, ref)
	}
	cart, exists, err := cs.cr.GetCart(ctx, userId)
	if err != nil {
		return
	}
	idx := -1
	for i, it := range cart.Items {
		if it.Matches(ref) {
			if idx >= 0 {
				err = invalid("product %s has several lines, color is required", ref.ProductId)
				return
			}
			idx = i
		}
	}
	if !exists || idx < 0 {
		err = errors.Wrapf(models.ErrNotFound, "cart item %s", ref.ProductId)
		return
	}

	it := cart.Items[idx]
	_, stock, err := cs.resolveLine(ctx, it.Category, it.ProductId, it.Color, it.Type)
	if err != nil {
		return
	}
	if quantity > stock {
		err = errors.Wrapf(models.ErrInvalidQuantity, "only %d of %s left", stock, it.Name)
		return
	}
	cart.Items[idx].Quantity = quantity
	cart.UpdatedAt = time.Now().UTC()
	err = cs.cr.SetCart(ctx, cart)
	return
}

func (cs *CartService) RemoveItem(ctx context.Context, userId int, ref entities.LineRef) (cart entities.Cart, err error) {
	cart, exists, err := cs.cr.GetCart(ctx, userId)
	if err != nil {
		return
	}
	if !exists {
		err = errors.Wrap(models.ErrNotFound, "cart")
		return
	}
	kept := make([]entities.CartItem, 0, len(cart.Items))
	for _, it := range cart.Items {
		if !it.Matches(ref) {
			kept = append(kept, it)
		}
	}
	if len(kept) == len(cart.Items) {
		err = errors.Wrapf(models.ErrNotFound, "cart item %s", ref.ProductId)
		return
	}
	cart.Items = kept
	cart.UpdatedAt = time.Now().UTC()
	err = cs.cr.SetCart(ctx, cart)
	return
}

func (cs *CartService) ClearCart(ctx context.Context, userId int) (err error) {
	err = cs.cr.DeleteCart(ctx, userId)
	if err == nil {
		log.WithField("user_id", userId).Debug("cart cleared")
	}
	return
}
