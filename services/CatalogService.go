package services

import (
	"context"
	"time"

	"badmintonStore/entities"
	"badmintonStore/models"
	"badmintonStore/repository"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

type CatalogService struct {
	cr repository.CatalogRepository
}

func NewCatalogService(catalogRepo repository.CatalogRepository) CatalogService {
	return CatalogService{
		cr: catalogRepo,
	}
}

// findProduct resolves a product by business id. With an empty category
// every category is scanned and the first match wins.
func findProduct(ctx context.Context, cr repository.CatalogRepository, category, id string) (prod entities.Product, found bool, err error) {
	if category != "" {
		if !entities.IsCategory(category) {
			return
		}
		return cr.GetProduct(ctx, category, id)
	}
	for _, c := range entities.Categories {
		prod, found, err = cr.GetProduct(ctx, c, id)
		if err != nil || found {
			return
		}
	}
	return
}

func (cs *CatalogService) ListAll(ctx context.Context) (all map[string][]entities.Product, err error) {
	all = make(map[string][]entities.Product, len(entities.Categories))
	for _, c := range entities.Categories {
		all[c], err = cs.cr.ListByCategory(ctx, c)
		if err != nil {
			return
		}
	}
	return
}

func (cs *CatalogService) ListByCategory(ctx context.Context, category string) (prods []entities.Product, err error) {
	if err = checkCategory(category); err != nil {
		return
	}
	prods, err = cs.cr.ListByCategory(ctx, category)
	return
}

func (cs *CatalogService) GetProduct(ctx context.Context, category, id string) (prod entities.Product, err error) {
	if err = checkCategory(category); err != nil {
		return
	}
	var exists bool
	prod, exists, err = cs.cr.GetProduct(ctx, category, id)
	if err != nil {
		return
	}
	if !exists {
		err = errors.Wrapf(models.ErrNotFound, "product %s", id)
	}
	return
}

func assignColorIds(c *entities.ColorVariant) {
	if c.ColorId == "" {
		c.ColorId = uuid.NewString()
	}
	for i := range c.Variants {
		if c.Variants[i].VariantId == "" {
			c.Variants[i].VariantId = uuid.NewString()
		}
	}
}

// normalizeColor drops fields that do not apply to the category.
func normalizeColor(category string, c *entities.ColorVariant) {
	kind := entities.KindOf(category)
	if kind != entities.NoVariants {
		c.Quantity = nil
	}
	for i := range c.Variants {
		if kind == entities.SizeVariants {
			c.Variants[i].Type = ""
		} else {
			c.Variants[i].Size = ""
		}
	}
}

func (cs *CatalogService) CreateProduct(ctx context.Context, category string, prod entities.Product) (created entities.Product, err error) {
	if err = checkCategory(category); err != nil {
		return
	}
	if err = validateProduct(category, prod); err != nil {
		return
	}
	for i := range prod.Colors {
		normalizeColor(category, &prod.Colors[i])
		assignColorIds(&prod.Colors[i])
	}
	now := time.Now().UTC()
	prod.Category = category
	prod.CreatedAt = now
	prod.UpdatedAt = now

	if err = cs.cr.CreateProduct(ctx, category, prod); err != nil {
		return
	}
	log.WithFields(log.Fields{"category": category, "id": prod.Id}).Info("product created")
	created = prod
	return
}

func (cs *CatalogService) UpdateProduct(ctx context.Context, category, id string, patch entities.ProductPatch) (prod entities.Product, err error) {
	if err = checkCategory(category); err != nil {
		return
	}
	if err = validatePatch(patch); err != nil {
		return
	}
	prod, err = cs.cr.UpdateProduct(ctx, category, id, patch)
	return
}

func (cs *CatalogService) DeleteProduct(ctx context.Context, category, id string) (err error) {
	if err = checkCategory(category); err != nil {
		return
	}
	err = cs.cr.DeleteProduct(ctx, category, id)
	if err == nil {
		log.WithFields(log.Fields{"category": category, "id": id}).Info("product deleted")
	}
	return
}

func (cs *CatalogService) AddColor(ctx context.Context, category, id string, color entities.ColorVariant) (prod entities.Product, err error) {
	if prod, err = cs.GetProduct(ctx, category, id); err != nil {
		return
	}
	if err = validateColor(category, color, "color"); err != nil {
		return
	}
	if _, dup := prod.ColorByName(color.Color); dup {
		err = invalid("color %q already exists", color.Color)
		return
	}
	normalizeColor(category, &color)
	assignColorIds(&color)
	if err = cs.cr.AddColor(ctx, category, id, color); err != nil {
		return
	}
	prod, err = cs.GetProduct(ctx, category, id)
	return
}

func (cs *CatalogService) AddVariant(ctx context.Context, category, id, colorId string, variant entities.Variant) (prod entities.Product, err error) {
	if prod, err = cs.GetProduct(ctx, category, id); err != nil {
		return
	}
	kind := entities.KindOf(category)
	if kind == entities.NoVariants {
		err = invalid("%s have no size or type variants", category)
		return
	}
	color, ok := prod.ColorById(colorId)
	if !ok {
		err = errors.Wrapf(models.ErrNotFound, "color %s", colorId)
		return
	}
	if err = validateVariant(kind, variant, "variant"); err != nil {
		return
	}
	for _, v := range color.Variants {
		if v.Label(kind) == variant.Label(kind) {
			err = invalid("%s %q already exists", kind.LabelField(), variant.Label(kind))
			return
		}
	}
	if kind == entities.SizeVariants {
		variant.Type = ""
	} else {
		variant.Size = ""
	}
	variant.VariantId = uuid.NewString()
	if err = cs.cr.AddVariant(ctx, category, id, colorId, variant); err != nil {
		return
	}
	prod, err = cs.GetProduct(ctx, category, id)
	return
}

func (cs *CatalogService) UpdateQuantity(ctx context.Context, category, id string, req entities.QuantityRequest) (prod entities.Product, err error) {
	if err = checkCategory(category); err != nil {
		return
	}
	if err = checkStruct("", req); err != nil {
		return
	}
	switch {
	case entities.KindOf(category) == entities.NoVariants && req.VariantId != "":
		err = invalid("%s have no size or type variants", category)
	case entities.KindOf(category) != entities.NoVariants && req.VariantId == "":
		err = invalid("variantId is required for %s", category)
	}
	if err != nil {
		return
	}
	if err = cs.cr.SetQuantity(ctx, category, id, req.ColorId, req.VariantId, *req.Quantity); err != nil {
		return
	}
	prod, err = cs.GetProduct(ctx, category, id)
	return
}

func (cs *CatalogService) DeleteColor(ctx context.Context, category, id, colorId string) (prod entities.Product, err error) {
	if prod, err = cs.GetProduct(ctx, category, id); err != nil {
		return
	}
	if _, ok := prod.ColorById(colorId); !ok {
		err = errors.Wrapf(models.ErrNotFound, "color %s", colorId)
		return
	}
	if len(prod.Colors) == 1 {
		err = invalid("a product needs at least one color")
		return
	}
	if err = cs.cr.DeleteColor(ctx, category, id, colorId); err != nil {
		return
	}
	prod, err = cs.GetProduct(ctx, category, id)
	return
}

func (cs *CatalogService) DeleteVariant(ctx context.Context, category, id, colorId, variantId string) (prod entities.Product, err error) {
	if prod, err = cs.GetProduct(ctx, category, id); err != nil {
		return
	}
	color, ok := prod.ColorById(colorId)
	if !ok {
		err = errors.Wrapf(models.ErrNotFound, "color %s", colorId)
		return
	}
	found := false
	for _, v := range color.Variants {
		if v.VariantId == variantId {
			found = true
			break
		}
	}
	if !found {
		err = errors.Wrapf(models.ErrNotFound, "variant %s", variantId)
		return
	}
	if len(color.Variants) == 1 {
		err = invalid("a color needs at least one size or type")
		return
	}
	if err = cs.cr.DeleteVariant(ctx, category, id, colorId, variantId); err != nil {
		return
	}
	prod, err = cs.GetProduct(ctx, category, id)
	return
}
