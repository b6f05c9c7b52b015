package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"badmintonStore/entities"
	"badmintonStore/models"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

const cartTTL = 30 * 24 * time.Hour

// CartRepository stores one cart document per user. Writes replace the
// whole document, so concurrent writers for the same user race and the
// last one wins.
type CartRepository interface {
	GetCart(ctx context.Context, userId int) (cart entities.Cart, exists bool, err error)
	SetCart(ctx context.Context, cart entities.Cart) (err error)
	DeleteCart(ctx context.Context, userId int) (err error)
}

type CartRepo struct {
	rdb *redis.Client
}

func NewCartRepository(ctx context.Context, redisConn *redis.Client) (CartRepository, error) {
	if redisConn == nil {
		return nil, errors.New("conn must be non-nil")
	}
	err := redisConn.Ping(ctx).Err()
	if err != nil {
		return nil, err
	}
	return &CartRepo{
		rdb: redisConn,
	}, nil
}

func cartKey(userId int) string {
	return fmt.Sprintf("cart:%d", userId)
}

func (c *CartRepo) SetCart(ctx context.Context, cart entities.Cart) (err error) {
	jsonData, err := json.Marshal(cart)
	if err != nil {
		log.Printf("SetCart: marshal: %v", err)
		err = models.ErrServerError
		return
	}
	err = c.rdb.Set(ctx, cartKey(cart.UserId), jsonData, cartTTL).Err()
	if err != nil {
		log.Printf("SetCart: redis: %v", err)
		err = models.ErrServerError
	}
	return
}

func (c *CartRepo) GetCart(ctx context.Context, userId int) (res entities.Cart, exists bool, err error) {
	res = entities.Cart{UserId: userId, Items: []entities.CartItem{}}
	val, e := c.rdb.Get(ctx, cartKey(userId)).Result()
	if e != nil {
		if e == redis.Nil {
			return
		}
		log.Printf("GetCart: redis: %v", e)
		err = models.ErrServerError
		return
	}
	err = json.Unmarshal([]byte(val), &res)
	if err != nil {
		log.Printf("GetCart: unmarshal: %v", err)
		err = models.ErrServerError
		return
	}
	if res.Items == nil {
		res.Items = []entities.CartItem{}
	}
	exists = true
	return
}

func (c *CartRepo) DeleteCart(ctx context.Context, userId int) (err error) {
	err = c.rdb.Del(ctx, cartKey(userId)).Err()
	if err != nil {
		log.Printf("DeleteCart: %v", err)
		err = models.ErrServerError
	}
	return
}
