package repository

import (
	"context"
	"time"

	"badmintonStore/entities"
	"badmintonStore/models"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

type CatalogRepository interface {
	ListByCategory(ctx context.Context, category string) (prods []entities.Product, err error)
	GetProduct(ctx context.Context, category, id string) (prod entities.Product, exists bool, err error)
	CreateProduct(ctx context.Context, category string, prod entities.Product) (err error)
	UpdateProduct(ctx context.Context, category, id string, patch entities.ProductPatch) (prod entities.Product, err error)
	DeleteProduct(ctx context.Context, category, id string) (err error)
	AddColor(ctx context.Context, category, id string, color entities.ColorVariant) (err error)
	AddVariant(ctx context.Context, category, id, colorId string, variant entities.Variant) (err error)
	SetQuantity(ctx context.Context, category, id, colorId, variantId string, quantity int) (err error)
	DeleteColor(ctx context.Context, category, id, colorId string) (err error)
	DeleteVariant(ctx context.Context, category, id, colorId, variantId string) (err error)
	// Reserve decrements stock only when at least line.Quantity units remain.
	Reserve(ctx context.Context, line entities.StockLine) (ok bool, err error)
	Release(ctx context.Context, line entities.StockLine) (err error)
}

type CatalogRepo struct {
	db *mongo.Database
}

func NewCatalogRepository(ctx context.Context, db *mongo.Database) (CatalogRepository, error) {
	if db == nil {
		return nil, errors.New("db must be non-nil")
	}
	err := db.Client().Ping(ctx, readpref.Primary())
	if err != nil {
		return nil, err
	}
	for _, category := range entities.Categories {
		_, err = db.Collection(category).Indexes().CreateOne(ctx, mongo.IndexModel{
			Keys:    bson.D{{Key: "id", Value: 1}},
			Options: options.Index().SetUnique(true),
		})
		if err != nil {
			return nil, errors.Wrapf(err, "index %s", category)
		}
	}
	return &CatalogRepo{
		db: db,
	}, nil
}

func (c *CatalogRepo) ListByCategory(ctx context.Context, category string) (prods []entities.Product, err error) {
	cur, e := c.db.Collection(category).Find(ctx, bson.D{}, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if e != nil {
		log.Printf("ListByCategory[1]: %v", e)
		err = models.ErrServerError
		return
	}
	defer cur.Close(ctx)

	prods = []entities.Product{}
	if e = cur.All(ctx, &prods); e != nil {
		log.Printf("ListByCategory[2]: %v", e)
		err = models.ErrServerError
		return
	}
	for i := range prods {
		prods[i].Category = category
	}
	return
}

func (c *CatalogRepo) GetProduct(ctx context.Context, category, id string) (prod entities.Product, exists bool, err error) {
	e := c.db.Collection(category).FindOne(ctx, bson.M{"id": id}).Decode(&prod)
	if e != nil {
		if errors.Is(e, mongo.ErrNoDocuments) {
			return
		}
		log.Printf("GetProduct: %v", e)
		err = models.ErrServerError
		return
	}
	prod.Category = category
	exists = true
	return
}

func (c *CatalogRepo) CreateProduct(ctx context.Context, category string, prod entities.Product) (err error) {
	_, e := c.db.Collection(category).InsertOne(ctx, prod)
	if e != nil {
		if mongo.IsDuplicateKeyError(e) {
			err = errors.Wrapf(models.ErrConflict, "product %s", prod.Id)
			return
		}
		log.Printf("CreateProduct: %v", e)
		err = models.ErrServerError
	}
	return
}

func (c *CatalogRepo) UpdateProduct(ctx context.Context, category, id string, patch entities.ProductPatch) (prod entities.Product, err error) {
	set := bson.M{"updatedAt": time.Now().UTC()}
	if patch.Name != nil {
		set["name"] = *patch.Name
	}
	if patch.Brand != nil {
		set["brand"] = *patch.Brand
	}
	if patch.Price != nil {
		set["price"] = *patch.Price
	}
	if patch.Description != nil {
		set["description"] = *patch.Description
	}
	if patch.Attributes != nil {
		set["attributes"] = patch.Attributes
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	e := c.db.Collection(category).FindOneAndUpdate(ctx, bson.M{"id": id}, bson.M{"$set": set}, opts).Decode(&prod)
	if e != nil {
		if errors.Is(e, mongo.ErrNoDocuments) {
			err = errors.Wrapf(models.ErrNotFound, "product %s", id)
			return
		}
		log.Printf("UpdateProduct: %v", e)
		err = models.ErrServerError
		return
	}
	prod.Category = category
	return
}

func (c *CatalogRepo) DeleteProduct(ctx context.Context, category, id string) (err error) {
	res, e := c.db.Collection(category).DeleteOne(ctx, bson.M{"id": id})
	if e != nil {
		log.Printf("DeleteProduct: %v", e)
		err = models.ErrServerError
		return
	}
	if res.DeletedCount == 0 {
		err = errors.Wrapf(models.ErrNotFound, "product %s", id)
	}
	return
}

func (c *CatalogRepo) AddColor(ctx context.Context, category, id string, color entities.ColorVariant) (err error) {
	update := bson.M{
		"$push": bson.M{"colors": color},
		"$set":  bson.M{"updatedAt": time.Now().UTC()},
	}
	err = c.updateOne(ctx, "AddColor", category, bson.M{"id": id}, update, nil, "product "+id)
	return
}

func (c *CatalogRepo) AddVariant(ctx context.Context, category, id, colorId string, variant entities.Variant) (err error) {
	filter := bson.M{"id": id, "colors.colorId": colorId}
	update := bson.M{
		"$push": bson.M{"colors.$.variants": variant},
		"$set":  bson.M{"updatedAt": time.Now().UTC()},
	}
	err = c.updateOne(ctx, "AddVariant", category, filter, update, nil, "color "+colorId)
	return
}

func (c *CatalogRepo) SetQuantity(ctx context.Context, category, id, colorId, variantId string, quantity int) (err error) {
	filter, update, opts := quantityUpdate(id, colorId, variantId, quantity)
	what := "color " + colorId
	if variantId != "" {
		what = "variant " + variantId
	}
	err = c.updateOne(ctx, "SetQuantity", category, filter, update, opts, what)
	return
}

func (c *CatalogRepo) DeleteColor(ctx context.Context, category, id, colorId string) (err error) {
	filter := bson.M{"id": id, "colors.colorId": colorId}
	update := bson.M{
		"$pull": bson.M{"colors": bson.M{"colorId": colorId}},
		"$set":  bson.M{"updatedAt": time.Now().UTC()},
	}
	err = c.updateOne(ctx, "DeleteColor", category, filter, update, nil, "color "+colorId)
	return
}

func (c *CatalogRepo) DeleteVariant(ctx context.Context, category, id, colorId, variantId string) (err error) {
	filter := bson.M{
		"id":     id,
		"colors": bson.M{"$elemMatch": bson.M{"colorId": colorId, "variants.variantId": variantId}},
	}
	update := bson.M{
		"$pull": bson.M{"colors.$.variants": bson.M{"variantId": variantId}},
		"$set":  bson.M{"updatedAt": time.Now().UTC()},
	}
	err = c.updateOne(ctx, "DeleteVariant", category, filter, update, nil, "variant "+variantId)
	return
}

func (c *CatalogRepo) Reserve(ctx context.Context, line entities.StockLine) (ok bool, err error) {
	filter, update, opts := stockUpdate(line, -line.Quantity, true)
	res, e := c.db.Collection(line.Category).UpdateOne(ctx, filter, update, opts)
	if e != nil {
		log.Printf("Reserve: %v", e)
		err = models.ErrServerError
		return
	}
	ok = res.ModifiedCount > 0
	return
}

func (c *CatalogRepo) Release(ctx context.Context, line entities.StockLine) (err error) {
	filter, update, opts := stockUpdate(line, line.Quantity, false)
	_, e := c.db.Collection(line.Category).UpdateOne(ctx, filter, update, opts)
	if e != nil {
		log.Printf("Release: %v", e)
		err = models.ErrServerError
	}
	return
}

func (c *CatalogRepo) updateOne(ctx context.Context, op, category string, filter, update bson.M, opts *options.UpdateOptions, what string) (err error) {
	if opts == nil {
		opts = options.Update()
	}
	res, e := c.db.Collection(category).UpdateOne(ctx, filter, update, opts)
	if e != nil {
		log.Printf("%s: %v", op, e)
		err = models.ErrServerError
		return
	}
	if res.MatchedCount == 0 {
		err = errors.Wrap(models.ErrNotFound, what)
	}
	return
}

func quantityUpdate(id, colorId, variantId string, quantity int) (filter, update bson.M, opts *options.UpdateOptions) {
	now := time.Now().UTC()
	if variantId == "" {
		filter = bson.M{"id": id, "colors.colorId": colorId}
		update = bson.M{"$set": bson.M{"colors.$.quantity": quantity, "updatedAt": now}}
		return
	}
	filter = bson.M{
		"id":     id,
		"colors": bson.M{"$elemMatch": bson.M{"colorId": colorId, "variants.variantId": variantId}},
	}
	update = bson.M{"$set": bson.M{"colors.$[c].variants.$[v].quantity": quantity, "updatedAt": now}}
	opts = options.Update().SetArrayFilters(options.ArrayFilters{
		Filters: []interface{}{bson.M{"c.colorId": colorId}, bson.M{"v.variantId": variantId}},
	})
	return
}

// stockUpdate builds an $inc of delta on the counter addressed by line.
// With conditional set the filter only matches while the counter holds at
// least line.Quantity units.
func stockUpdate(line entities.StockLine, delta int, conditional bool) (filter, update bson.M, opts *options.UpdateOptions) {
	kind := entities.KindOf(line.Category)
	filter = bson.M{"id": line.ProductId}

	if kind == entities.NoVariants {
		match := bson.M{"color": line.Color}
		if conditional {
			match["quantity"] = bson.M{"$gte": line.Quantity}
		}
		filter["colors"] = bson.M{"$elemMatch": match}
		update = bson.M{"$inc": bson.M{"colors.$.quantity": delta}}
		opts = options.Update()
		return
	}

	label := kind.LabelField()
	variantMatch := bson.M{label: line.Type}
	if conditional {
		variantMatch["quantity"] = bson.M{"$gte": line.Quantity}
	}
	filter["colors"] = bson.M{"$elemMatch": bson.M{
		"color":    line.Color,
		"variants": bson.M{"$elemMatch": variantMatch},
	}}
	update = bson.M{"$inc": bson.M{"colors.$[c].variants.$[v].quantity": delta}}

	arrayVariant := bson.M{"v." + label: line.Type}
	if conditional {
		arrayVariant["v.quantity"] = bson.M{"$gte": line.Quantity}
	}
	opts = options.Update().SetArrayFilters(options.ArrayFilters{
		Filters: []interface{}{bson.M{"c.color": line.Color}, arrayVariant},
	})
	return
}
