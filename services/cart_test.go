package services

import (
	"context"
	"testing"

	"badmintonStore/entities"
	"badmintonStore/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddItemMergesRepeatedLines(t *testing.T) {
	ctx := context.Background()
	ts := newTestStore(t)
	ts.seed(t, entities.Rackets, racket("ax77-pr", 195, 8))

	req := entities.CartRequest{ProductId: "ax77-pr", Color: "High Orange", Type: "4ug5", Quantity: 2}
	ts.addToCart(t, 1, req)
	req.Quantity = 3
	cart, err := ts.cartSvc.AddItem(ctx, 1, req)
	require.NoError(t, err)

	require.Len(t, cart.Items, 1)
	assert.Equal(t, 5, cart.Items[0].Quantity)
}

func TestAddItemMergesOnProductAndColor(t *testing.T) {
	ctx := context.Background()
	ts := newTestStore(t)
	ts.seed(t, entities.Rackets, twoColorRacket("ax77-pr", 195, 8))

	ts.addToCart(t, 1, entities.CartRequest{ProductId: "ax77-pr", Color: "High Orange", Type: "4ug5", Quantity: 1})
	cart, err := ts.cartSvc.AddItem(ctx, 1, entities.CartRequest{ProductId: "ax77-pr", Color: "High Orange", Type: "3ug5", Quantity: 1})
	require.NoError(t, err)
	require.Len(t, cart.Items, 1, "a different type of the same color merges")
	assert.Equal(t, 2, cart.Items[0].Quantity)
	assert.Equal(t, "3ug5", cart.Items[0].Type, "the latest type wins")

	cart, err = ts.cartSvc.AddItem(ctx, 1, entities.CartRequest{ProductId: "ax77-pr", Color: "Black", Type: "3ug5", Quantity: 1})
	require.NoError(t, err)
	assert.Len(t, cart.Items, 2, "another color is its own line")
}

func TestAddItemMergeChecksStockOfLatestType(t *testing.T) {
	ctx := context.Background()
	ts := newTestStore(t)
	p := racket("ax77-pr", 195, 8)
	p.Colors[0].Variants[1].Quantity = 2
	ts.seed(t, entities.Rackets, p)

	ts.addToCart(t, 1, entities.CartRequest{ProductId: "ax77-pr", Color: "High Orange", Type: "4ug5", Quantity: 2})
	_, err := ts.cartSvc.AddItem(ctx, 1, entities.CartRequest{ProductId: "ax77-pr", Color: "High Orange", Type: "3ug5", Quantity: 1})
	assert.ErrorIs(t, err, models.ErrInvalidQuantity)

	cart, err := ts.cartSvc.GetCart(ctx, 1)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, "4ug5", cart.Items[0].Type, "a rejected merge leaves the line alone")
	assert.Equal(t, 2, cart.Items[0].Quantity)
}

func TestAddItemResolvesFromCatalog(t *testing.T) {
	ts := newTestStore(t)
	ts.seed(t, entities.Rackets, racket("ax77-pr", 195, 8))

	cart, err := ts.cartSvc.AddItem(context.Background(), 1, entities.CartRequest{
		ProductId: "ax77-pr",
		Name:      "cheap racket",
		Price:     1,
		Color:     "High Orange",
		Type:      "4ug5",
		Quantity:  1,
	})
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	item := cart.Items[0]
	assert.Equal(t, 195.0, item.Price, "client price is ignored")
	assert.Equal(t, "Astrox 77 Pro", item.Name)
	assert.Equal(t, entities.Rackets, item.Category, "category is resolved by scanning")
}

func TestAddItemChecksStock(t *testing.T) {
	ctx := context.Background()
	ts := newTestStore(t)
	ts.seed(t, entities.Grips, grip("ac102", 5, 3))

	_, err := ts.cartSvc.AddItem(ctx, 1, entities.CartRequest{Category: entities.Grips, ProductId: "ac102", Color: "White", Quantity: 4})
	assert.ErrorIs(t, err, models.ErrInvalidQuantity)

	ts.addToCart(t, 1, entities.CartRequest{Category: entities.Grips, ProductId: "ac102", Color: "White", Quantity: 2})
	_, err = ts.cartSvc.AddItem(ctx, 1, entities.CartRequest{Category: entities.Grips, ProductId: "ac102", Color: "White", Quantity: 2})
	assert.ErrorIs(t, err, models.ErrInvalidQuantity, "merged quantity exceeds stock")

	cart, err := ts.cartSvc.GetCart(ctx, 1)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 2, cart.Items[0].Quantity)
}

func TestAddItemRejectsBadLines(t *testing.T) {
	ts := newTestStore(t)
	ts.seed(t, entities.Rackets, racket("ax77-pr", 195, 8))

	tests := []struct {
		name string
		req  entities.CartRequest
		want error
	}{
		{"zero quantity", entities.CartRequest{ProductId: "ax77-pr", Color: "High Orange", Type: "4ug5"}, models.ErrValidation},
		{"no color", entities.CartRequest{ProductId: "ax77-pr", Type: "4ug5", Quantity: 1}, models.ErrValidation},
		{"no type for racket", entities.CartRequest{ProductId: "ax77-pr", Color: "High Orange", Quantity: 1}, models.ErrValidation},
		{"unknown product", entities.CartRequest{ProductId: "nope", Color: "High Orange", Quantity: 1}, models.ErrNotFound},
		{"unknown color", entities.CartRequest{ProductId: "ax77-pr", Color: "Pink", Type: "4ug5", Quantity: 1}, models.ErrNotFound},
		{"unknown type", entities.CartRequest{ProductId: "ax77-pr", Color: "High Orange", Type: "5ug5", Quantity: 1}, models.ErrNotFound},
		{"wrong category", entities.CartRequest{Category: entities.Bags, ProductId: "ax77-pr", Color: "High Orange", Type: "4ug5", Quantity: 1}, models.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ts.cartSvc.AddItem(context.Background(), 1, tt.req)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestGetCartTotals(t *testing.T) {
	ctx := context.Background()
	ts := newTestStore(t)
	ts.seed(t, entities.Rackets, racket("ax77-pr", 195, 8))
	ts.seed(t, entities.Grips, grip("ac102", 4.35, 10))

	empty, err := ts.cartSvc.GetCart(ctx, 1)
	require.NoError(t, err)
	assert.NotNil(t, empty.Items)
	assert.Empty(t, empty.Items)
	assert.True(t, empty.TotalPrice.IsZero())

	ts.addToCart(t, 1, entities.CartRequest{ProductId: "ax77-pr", Color: "High Orange", Type: "4ug5", Quantity: 2})
	ts.addToCart(t, 1, entities.CartRequest{ProductId: "ac102", Color: "White", Quantity: 3})

	cart, err := ts.cartSvc.GetCart(ctx, 1)
	require.NoError(t, err)
	assert.True(t, cart.TotalPrice.Equal(decimal.RequireFromString("403.05")), cart.TotalPrice.String())
}

func TestSetQuantityZeroEqualsRemove(t *testing.T) {
	ctx := context.Background()
	ts := newTestStore(t)
	ts.seed(t, entities.Rackets, racket("ax77-pr", 195, 8))
	ts.seed(t, entities.Grips, grip("ac102", 5, 10))

	for _, user := range []int{1, 2} {
		ts.addToCart(t, user, entities.CartRequest{ProductId: "ax77-pr", Color: "High Orange", Type: "4ug5", Quantity: 2})
		ts.addToCart(t, user, entities.CartRequest{ProductId: "ac102", Color: "White", Quantity: 1})
	}

	viaSet, err := ts.cartSvc.SetItemQuantity(ctx, 1, entities.LineRef{ProductId: "ax77-pr"}, 0)
	require.NoError(t, err)
	viaRemove, err := ts.cartSvc.RemoveItem(ctx, 2, entities.LineRef{ProductId: "ax77-pr"})
	require.NoError(t, err)

	assert.Equal(t, viaRemove.Items, viaSet.Items)
	require.Len(t, viaSet.Items, 1)
	assert.Equal(t, "ac102", viaSet.Items[0].ProductId)
}

func TestSetItemQuantity(t *testing.T) {
	ctx := context.Background()
	ts := newTestStore(t)
	ts.seed(t, entities.Rackets, twoColorRacket("ax77-pr", 195, 8))
	ts.addToCart(t, 1, entities.CartRequest{ProductId: "ax77-pr", Color: "High Orange", Type: "4ug5", Quantity: 2})

	cart, err := ts.cartSvc.SetItemQuantity(ctx, 1, entities.LineRef{ProductId: "ax77-pr"}, 6)
	require.NoError(t, err)
	assert.Equal(t, 6, cart.Items[0].Quantity)

	_, err = ts.cartSvc.SetItemQuantity(ctx, 1, entities.LineRef{ProductId: "ax77-pr"}, 9)
	assert.ErrorIs(t, err, models.ErrInvalidQuantity)
	_, err = ts.cartSvc.SetItemQuantity(ctx, 1, entities.LineRef{ProductId: "nope"}, 1)
	assert.ErrorIs(t, err, models.ErrNotFound)

	ts.addToCart(t, 1, entities.CartRequest{ProductId: "ax77-pr", Color: "Black", Type: "3ug5", Quantity: 1})
	_, err = ts.cartSvc.SetItemQuantity(ctx, 1, entities.LineRef{ProductId: "ax77-pr"}, 1)
	assert.ErrorIs(t, err, models.ErrValidation, "two lines match")
	cart, err = ts.cartSvc.SetItemQuantity(ctx, 1, entities.LineRef{ProductId: "ax77-pr", Color: "Black"}, 4)
	require.NoError(t, err)
	assert.Equal(t, 4, cart.Items[1].Quantity)
}

func TestRemoveItem(t *testing.T) {
	ctx := context.Background()
	ts := newTestStore(t)
	ts.seed(t, entities.Rackets, twoColorRacket("ax77-pr", 195, 8))

	_, err := ts.cartSvc.RemoveItem(ctx, 1, entities.LineRef{ProductId: "ax77-pr"})
	assert.ErrorIs(t, err, models.ErrNotFound, "no cart yet")

	ts.addToCart(t, 1, entities.CartRequest{ProductId: "ax77-pr", Color: "High Orange", Type: "4ug5", Quantity: 1})
	ts.addToCart(t, 1, entities.CartRequest{ProductId: "ax77-pr", Color: "Black", Type: "3ug5", Quantity: 1})

	_, err = ts.cartSvc.RemoveItem(ctx, 1, entities.LineRef{ProductId: "other"})
	assert.ErrorIs(t, err, models.ErrNotFound)

	cart, err := ts.cartSvc.RemoveItem(ctx, 1, entities.LineRef{ProductId: "ax77-pr", Color: "Black"})
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, "4ug5", cart.Items[0].Type)

	cart, err = ts.cartSvc.RemoveItem(ctx, 1, entities.LineRef{ProductId: "ax77-pr"})
	require.NoError(t, err)
	assert.Empty(t, cart.Items)
}

func TestClearCart(t *testing.T) {
	ctx := context.Background()
	ts := newTestStore(t)
	ts.seed(t, entities.Grips, grip("ac102", 5, 10))
	ts.addToCart(t, 1, entities.CartRequest{ProductId: "ac102", Color: "White", Quantity: 1})

	require.NoError(t, ts.cartSvc.ClearCart(ctx, 1))
	cart, err := ts.cartSvc.GetCart(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, cart.Items)
}
