package services

import (
	"context"
	"testing"

	"badmintonStore/entities"
	"badmintonStore/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateProductAssignsIdentifiers(t *testing.T) {
	ts := newTestStore(t)

	prod := ts.seed(t, entities.Rackets, racket("ax77-pr", 195, 8))

	assert.Equal(t, entities.Rackets, prod.Category)
	assert.False(t, prod.CreatedAt.IsZero())
	require.Len(t, prod.Colors, 1)
	assert.NotEmpty(t, prod.Colors[0].ColorId)
	assert.Nil(t, prod.Colors[0].Quantity)
	for _, v := range prod.Colors[0].Variants {
		assert.NotEmpty(t, v.VariantId)
	}
}

func TestCreateProductValidation(t *testing.T) {
	noName := grip("g1", 5, 1)
	noName.Name = " "
	freePrice := grip("g1", 0, 1)
	noColors := grip("g1", 5, 1)
	noColors.Colors = nil
	badPhoto := grip("g1", 5, 1)
	badPhoto.Colors[0].Photo = "not a url"
	gripWithVariants := grip("g1", 5, 1)
	gripWithVariants.Colors[0].Variants = []entities.Variant{{Type: "x", Quantity: 1}}
	noQuantity := grip("g1", 5, 1)
	noQuantity.Colors[0].Quantity = nil
	racketNoVariants := racket("r1", 100, 1)
	racketNoVariants.Colors[0].Variants = nil
	dupType := racket("r1", 100, 1)
	dupType.Colors[0].Variants[1].Type = "4ug5"
	negative := racket("r1", 100, 1)
	negative.Colors[0].Variants[0].Quantity = -1
	dupColor := grip("g1", 5, 1)
	dupColor.Colors = append(dupColor.Colors, dupColor.Colors[0])

	tests := []struct {
		name     string
		category string
		prod     entities.Product
		want     error
	}{
		{"blank name", entities.Grips, noName, models.ErrValidation},
		{"zero price", entities.Grips, freePrice, models.ErrValidation},
		{"no colors", entities.Grips, noColors, models.ErrValidation},
		{"photo is not a url", entities.Grips, badPhoto, models.ErrValidation},
		{"grip with variants", entities.Grips, gripWithVariants, models.ErrValidation},
		{"grip without quantity", entities.Grips, noQuantity, models.ErrValidation},
		{"racket without variants", entities.Rackets, racketNoVariants, models.ErrValidation},
		{"duplicated type", entities.Rackets, dupType, models.ErrValidation},
		{"negative quantity", entities.Rackets, negative, models.ErrValidation},
		{"duplicated color", entities.Grips, dupColor, models.ErrValidation},
		{"unknown category", "balls", grip("g1", 5, 1), models.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestStore(t)
			_, err := ts.catalogSvc.CreateProduct(context.Background(), tt.category, tt.prod)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestCreateProductDuplicateId(t *testing.T) {
	ts := newTestStore(t)
	ts.seed(t, entities.Grips, grip("ac102", 5, 10))

	_, err := ts.catalogSvc.CreateProduct(context.Background(), entities.Grips, grip("ac102", 6, 1))
	assert.ErrorIs(t, err, models.ErrConflict)
}

func TestListAllCoversEveryCategory(t *testing.T) {
	ts := newTestStore(t)
	ts.seed(t, entities.Grips, grip("ac102", 5, 10))

	all, err := ts.catalogSvc.ListAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, len(entities.Categories))
	assert.Len(t, all[entities.Grips], 1)
	assert.Empty(t, all[entities.Bags])
}

func TestGetProductNotFound(t *testing.T) {
	ts := newTestStore(t)

	_, err := ts.catalogSvc.GetProduct(context.Background(), entities.Rackets, "missing")
	assert.ErrorIs(t, err, models.ErrNotFound)
	_, err = ts.catalogSvc.ListByCategory(context.Background(), "balls")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestUpdateProduct(t *testing.T) {
	ctx := context.Background()
	ts := newTestStore(t)
	ts.seed(t, entities.Grips, grip("ac102", 5, 10))

	price := 6.5
	prod, err := ts.catalogSvc.UpdateProduct(ctx, entities.Grips, "ac102", entities.ProductPatch{
		Price:      &price,
		Attributes: map[string]string{"thickness": "0.6mm"},
	})
	require.NoError(t, err)
	assert.Equal(t, 6.5, prod.Price)
	assert.Equal(t, "Super Grap", prod.Name)
	assert.Equal(t, "0.6mm", prod.Attributes["thickness"])

	_, err = ts.catalogSvc.UpdateProduct(ctx, entities.Grips, "ac102", entities.ProductPatch{})
	assert.ErrorIs(t, err, models.ErrValidation)
	_, err = ts.catalogSvc.UpdateProduct(ctx, entities.Grips, "ac102", entities.ProductPatch{Name: strp("")})
	assert.ErrorIs(t, err, models.ErrValidation)
	_, err = ts.catalogSvc.UpdateProduct(ctx, entities.Grips, "missing", entities.ProductPatch{Price: &price})
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestDeleteProduct(t *testing.T) {
	ctx := context.Background()
	ts := newTestStore(t)
	ts.seed(t, entities.Grips, grip("ac102", 5, 10))

	require.NoError(t, ts.catalogSvc.DeleteProduct(ctx, entities.Grips, "ac102"))
	_, err := ts.catalogSvc.GetProduct(ctx, entities.Grips, "ac102")
	assert.ErrorIs(t, err, models.ErrNotFound)
	assert.ErrorIs(t, ts.catalogSvc.DeleteProduct(ctx, entities.Grips, "ac102"), models.ErrNotFound)
}

func TestAddColorIsRetrievable(t *testing.T) {
	ctx := context.Background()
	ts := newTestStore(t)
	ts.seed(t, entities.Rackets, racket("ax77-pr", 195, 8))

	_, err := ts.catalogSvc.AddColor(ctx, entities.Rackets, "ax77-pr", entities.ColorVariant{
		Color:    "Shine Blue",
		Photo:    "https://cdn.example.com/ax77-blue.png",
		Variants: []entities.Variant{{Type: "4ug5", Quantity: 5}},
	})
	require.NoError(t, err)

	prods, err := ts.catalogSvc.ListByCategory(ctx, entities.Rackets)
	require.NoError(t, err)
	require.Len(t, prods, 1)
	qty, ok := prods[0].Stock("Shine Blue", "4ug5")
	assert.True(t, ok)
	assert.Equal(t, 5, qty)

	_, err = ts.catalogSvc.AddColor(ctx, entities.Rackets, "ax77-pr", entities.ColorVariant{
		Color:    "Shine Blue",
		Photo:    "https://cdn.example.com/ax77-blue.png",
		Variants: []entities.Variant{{Type: "4ug5", Quantity: 1}},
	})
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestAddVariantIsRetrievable(t *testing.T) {
	ctx := context.Background()
	ts := newTestStore(t)
	created := ts.seed(t, entities.Shoes, shoe("65z", 150, 3))
	colorId := created.Colors[0].ColorId

	_, err := ts.catalogSvc.AddVariant(ctx, entities.Shoes, "65z", colorId, entities.Variant{Size: "43", Quantity: 7})
	require.NoError(t, err)

	prod, err := ts.catalogSvc.GetProduct(ctx, entities.Shoes, "65z")
	require.NoError(t, err)
	qty, ok := prod.Stock("White Tiger", "43")
	assert.True(t, ok)
	assert.Equal(t, 7, qty)

	_, err = ts.catalogSvc.AddVariant(ctx, entities.Shoes, "65z", colorId, entities.Variant{Size: "43", Quantity: 1})
	assert.ErrorIs(t, err, models.ErrValidation)
	_, err = ts.catalogSvc.AddVariant(ctx, entities.Shoes, "65z", "nope", entities.Variant{Size: "44", Quantity: 1})
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestAddVariantRejectedForFlatCategories(t *testing.T) {
	ts := newTestStore(t)
	created := ts.seed(t, entities.Grips, grip("ac102", 5, 10))

	_, err := ts.catalogSvc.AddVariant(context.Background(), entities.Grips, "ac102", created.Colors[0].ColorId, entities.Variant{Type: "x", Quantity: 1})
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestUpdateQuantity(t *testing.T) {
	ctx := context.Background()
	ts := newTestStore(t)
	r := ts.seed(t, entities.Rackets, racket("ax77-pr", 195, 8))
	g := ts.seed(t, entities.Grips, grip("ac102", 5, 10))
	rColor := r.Colors[0]

	prod, err := ts.catalogSvc.UpdateQuantity(ctx, entities.Rackets, "ax77-pr", entities.QuantityRequest{
		ColorId:   rColor.ColorId,
		VariantId: rColor.Variants[0].VariantId,
		Quantity:  intp(2),
	})
	require.NoError(t, err)
	qty, _ := prod.Stock("High Orange", "4ug5")
	assert.Equal(t, 2, qty)

	prod, err = ts.catalogSvc.UpdateQuantity(ctx, entities.Grips, "ac102", entities.QuantityRequest{
		ColorId:  g.Colors[0].ColorId,
		Quantity: intp(0),
	})
	require.NoError(t, err)
	qty, _ = prod.Stock("White", "")
	assert.Equal(t, 0, qty)

	_, err = ts.catalogSvc.UpdateQuantity(ctx, entities.Rackets, "ax77-pr", entities.QuantityRequest{ColorId: rColor.ColorId, Quantity: intp(1)})
	assert.ErrorIs(t, err, models.ErrValidation, "variant id is required for rackets")
	_, err = ts.catalogSvc.UpdateQuantity(ctx, entities.Grips, "ac102", entities.QuantityRequest{ColorId: g.Colors[0].ColorId, VariantId: "v", Quantity: intp(1)})
	assert.ErrorIs(t, err, models.ErrValidation, "variant id is forbidden for grips")
	_, err = ts.catalogSvc.UpdateQuantity(ctx, entities.Grips, "ac102", entities.QuantityRequest{ColorId: g.Colors[0].ColorId, Quantity: intp(-1)})
	assert.ErrorIs(t, err, models.ErrValidation)
	_, err = ts.catalogSvc.UpdateQuantity(ctx, entities.Grips, "ac102", entities.QuantityRequest{ColorId: "nope", Quantity: intp(1)})
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestDeleteColorAndVariant(t *testing.T) {
	ctx := context.Background()
	ts := newTestStore(t)
	r := ts.seed(t, entities.Rackets, racket("ax77-pr", 195, 8))
	color := r.Colors[0]

	prod, err := ts.catalogSvc.DeleteVariant(ctx, entities.Rackets, "ax77-pr", color.ColorId, color.Variants[1].VariantId)
	require.NoError(t, err)
	require.Len(t, prod.Colors[0].Variants, 1)

	_, err = ts.catalogSvc.DeleteVariant(ctx, entities.Rackets, "ax77-pr", color.ColorId, color.Variants[0].VariantId)
	assert.ErrorIs(t, err, models.ErrValidation, "last variant stays")

	_, err = ts.catalogSvc.DeleteColor(ctx, entities.Rackets, "ax77-pr", color.ColorId)
	assert.ErrorIs(t, err, models.ErrValidation, "last color stays")

	prod, err = ts.catalogSvc.AddColor(ctx, entities.Rackets, "ax77-pr", entities.ColorVariant{
		Color:    "Black",
		Photo:    "https://cdn.example.com/ax77-black.png",
		Variants: []entities.Variant{{Type: "4ug5", Quantity: 1}},
	})
	require.NoError(t, err)
	prod, err = ts.catalogSvc.DeleteColor(ctx, entities.Rackets, "ax77-pr", color.ColorId)
	require.NoError(t, err)
	require.Len(t, prod.Colors, 1)
	assert.Equal(t, "Black", prod.Colors[0].Color)
}
