// Package memory holds process-local implementations of the repository
// interfaces. They back the STORAGE=memory mode and the test suites.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"badmintonStore/entities"
	"badmintonStore/models"
	"badmintonStore/repository"

	"github.com/pkg/errors"
)

var _ repository.CatalogRepository = (*CatalogRepo)(nil)

type CatalogRepo struct {
	mu    sync.Mutex
	items map[string]map[string]entities.Product
}

func NewCatalogRepository() *CatalogRepo {
	items := make(map[string]map[string]entities.Product, len(entities.Categories))
	for _, c := range entities.Categories {
		items[c] = map[string]entities.Product{}
	}
	return &CatalogRepo{items: items}
}

func cloneProduct(p entities.Product) entities.Product {
	out := p
	if p.Attributes != nil {
		out.Attributes = make(map[string]string, len(p.Attributes))
		for k, v := range p.Attributes {
			out.Attributes[k] = v
		}
	}
	out.Colors = make([]entities.ColorVariant, len(p.Colors))
	for i, c := range p.Colors {
		out.Colors[i] = cloneColor(c)
	}
	return out
}

func cloneColor(c entities.ColorVariant) entities.ColorVariant {
	out := c
	if c.Quantity != nil {
		q := *c.Quantity
		out.Quantity = &q
	}
	if c.Variants != nil {
		out.Variants = append([]entities.Variant(nil), c.Variants...)
	}
	return out
}

func (c *CatalogRepo) ListByCategory(_ context.Context, category string) ([]entities.Product, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	prods := []entities.Product{}
	for _, p := range c.items[category] {
		prods = append(prods, cloneProduct(p))
	}
	sort.Slice(prods, func(i, j int) bool {
		if prods[i].Name == prods[j].Name {
			return prods[i].Id < prods[j].Id
		}
		return prods[i].Name < prods[j].Name
	})
	return prods, nil
}

func (c *CatalogRepo) GetProduct(_ context.Context, category, id string) (entities.Product, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	p, ok := c.items[category][id]
	if !ok {
		return entities.Product{}, false, nil
	}
	return cloneProduct(p), true, nil
}

func (c *CatalogRepo) CreateProduct(_ context.Context, category string, prod entities.Product) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.items[category][prod.Id]; ok {
		return errors.Wrapf(models.ErrConflict, "product %s", prod.Id)
	}
	prod.Category = category
	c.items[category][prod.Id] = cloneProduct(prod)
	return nil
}

func (c *CatalogRepo) UpdateProduct(_ context.Context, category, id string, patch entities.ProductPatch) (entities.Product, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	p, ok := c.items[category][id]
	if !ok {
		return entities.Product{}, errors.Wrapf(models.ErrNotFound, "product %s", id)
	}
	if patch.Name != nil {
		p.Name = *patch.Name
	}
	if patch.Brand != nil {
		p.Brand = *patch.Brand
	}
	if patch.Price != nil {
		p.Price = *patch.Price
	}
	if patch.Description != nil {
		p.Description = *patch.Description
	}
	if patch.Attributes != nil {
		p.Attributes = patch.Attributes
	}
	p.UpdatedAt = time.Now().UTC()
	c.items[category][id] = cloneProduct(p)
	return cloneProduct(p), nil
}

func (c *CatalogRepo) DeleteProduct(_ context.Context, category, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.items[category][id]; !ok {
		return errors.Wrapf(models.ErrNotFound, "product %s", id)
	}
	delete(c.items[category], id)
	return nil
}

// mutate applies fn to a stored product under the lock.
func (c *CatalogRepo) mutate(category, id string, fn func(p *entities.Product) error) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	p, ok := c.items[category][id]
	if !ok {
		return errors.Wrapf(models.ErrNotFound, "product %s", id)
	}
	p = cloneProduct(p)
	if err := fn(&p); err != nil {
		return err
	}
	p.UpdatedAt = time.Now().UTC()
	c.items[category][id] = p
	return nil
}

func colorIndex(p *entities.Product, match func(entities.ColorVariant) bool) int {
	for i, col := range p.Colors {
		if match(col) {
			return i
		}
	}
	return -1
}

func byColorId(colorId string) func(entities.ColorVariant) bool {
	return func(col entities.ColorVariant) bool { return col.ColorId == colorId }
}

func variantIndex(col entities.ColorVariant, match func(entities.Variant) bool) int {
	for i, v := range col.Variants {
		if match(v) {
			return i
		}
	}
	return -1
}

func (c *CatalogRepo) AddColor(_ context.Context, category, id string, color entities.ColorVariant) error {
	return c.mutate(category, id, func(p *entities.Product) error {
		p.Colors = append(p.Colors, cloneColor(color))
		return nil
	})
}

func (c *CatalogRepo) AddVariant(_ context.Context, category, id, colorId string, variant entities.Variant) error {
	return c.mutate(category, id, func(p *entities.Product) error {
		ci := colorIndex(p, byColorId(colorId))
		if ci < 0 {
			return errors.Wrapf(models.ErrNotFound, "color %s", colorId)
		}
		p.Colors[ci].Variants = append(p.Colors[ci].Variants, variant)
		return nil
	})
}

func (c *CatalogRepo) SetQuantity(_ context.Context, category, id, colorId, variantId string, quantity int) error {
	return c.mutate(category, id, func(p *entities.Product) error {
		ci := colorIndex(p, byColorId(colorId))
		if ci < 0 {
			return errors.Wrapf(models.ErrNotFound, "color %s", colorId)
		}
		if variantId == "" {
			q := quantity
			p.Colors[ci].Quantity = &q
			return nil
		}
		vi := variantIndex(p.Colors[ci], func(v entities.Variant) bool { return v.VariantId == variantId })
		if vi < 0 {
			return errors.Wrapf(models.ErrNotFound, "variant %s", variantId)
		}
		p.Colors[ci].Variants[vi].Quantity = quantity
		return nil
	})
}

func (c *CatalogRepo) DeleteColor(_ context.Context, category, id, colorId string) error {
	return c.mutate(category, id, func(p *entities.Product) error {
		ci := colorIndex(p, byColorId(colorId))
		if ci < 0 {
			return errors.Wrapf(models.ErrNotFound, "color %s", colorId)
		}
		p.Colors = append(p.Colors[:ci], p.Colors[ci+1:]...)
		return nil
	})
}

func (c *CatalogRepo) DeleteVariant(_ context.Context, category, id, colorId, variantId string) error {
	return c.mutate(category, id, func(p *entities.Product) error {
		ci := colorIndex(p, byColorId(colorId))
		if ci < 0 {
			return errors.Wrapf(models.ErrNotFound, "variant %s", variantId)
		}
		vi := variantIndex(p.Colors[ci], func(v entities.Variant) bool { return v.VariantId == variantId })
		if vi < 0 {
			return errors.Wrapf(models.ErrNotFound, "variant %s", variantId)
		}
		vs := p.Colors[ci].Variants
		p.Colors[ci].Variants = append(vs[:vi], vs[vi+1:]...)
		return nil
	})
}

// counter returns a pointer to the stock counter addressed by line.
func counter(p *entities.Product, line entities.StockLine) *int {
	ci := colorIndex(p, func(col entities.ColorVariant) bool { return col.Color == line.Color })
	if ci < 0 {
		return nil
	}
	kind := entities.KindOf(line.Category)
	if kind == entities.NoVariants {
		if p.Colors[ci].Quantity == nil {
			p.Colors[ci].Quantity = new(int)
		}
		return p.Colors[ci].Quantity
	}
	vi := variantIndex(p.Colors[ci], func(v entities.Variant) bool { return v.Label(kind) == line.Type })
	if vi < 0 {
		return nil
	}
	return &p.Colors[ci].Variants[vi].Quantity
}

func (c *CatalogRepo) Reserve(_ context.Context, line entities.StockLine) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	p, ok := c.items[line.Category][line.ProductId]
	if !ok {
		return false, nil
	}
	p = cloneProduct(p)
	q := counter(&p, line)
	if q == nil || *q < line.Quantity {
		return false, nil
	}
	*q -= line.Quantity
	c.items[line.Category][line.ProductId] = p
	return true, nil
}

func (c *CatalogRepo) Release(_ context.Context, line entities.StockLine) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	p, ok := c.items[line.Category][line.ProductId]
	if !ok {
		return nil
	}
	p = cloneProduct(p)
	if q := counter(&p, line); q != nil {
		*q += line.Quantity
		c.items[line.Category][line.ProductId] = p
	}
	return nil
}
