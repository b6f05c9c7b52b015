package repository

import (
	"context"
	"strconv"
	"time"

	"badmintonStore/models"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

// SessionRepository tracks live token ids so that logout can revoke a token
// before it expires.
type SessionRepository interface {
	CreateSession(ctx context.Context, sessionId string, userId int, role string, ttl time.Duration) (err error)
	DeleteSession(ctx context.Context, sessionId string) (err error)
	GetUserSessionInfo(ctx context.Context, sessionId string) (userId int, role string, exists bool, err error)
}

type SessionRepo struct {
	rdb *redis.Client
}

func NewSessionRepository(ctx context.Context, redisConn *redis.Client) (SessionRepository, error) {
	if redisConn == nil {
		return nil, errors.New("conn must be non-nil")
	}
	err := redisConn.Ping(ctx).Err()
	if err != nil {
		return nil, err
	}
	return &SessionRepo{
		rdb: redisConn,
	}, nil
}

func sessionKey(sessionId string) string {
	return "session:" + sessionId
}

func (s *SessionRepo) CreateSession(ctx context.Context, sessionId string, userId int, role string, ttl time.Duration) (err error) {
	key := sessionKey(sessionId)
	_, err = s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key, "userId", userId, "role", role)
		pipe.Expire(ctx, key, ttl)
		return nil
	})
	if err != nil {
		log.Printf("CreateSession: %v", err)
		err = models.ErrServerError
	}
	return
}

func (s *SessionRepo) DeleteSession(ctx context.Context, sessionId string) (err error) {
	err = s.rdb.Del(ctx, sessionKey(sessionId)).Err()
	if err != nil {
		log.Printf("DeleteSession: %v", err)
		err = models.ErrServerError
	}
	return
}

func (s *SessionRepo) GetUserSessionInfo(ctx context.Context, sessionId string) (userId int, role string, exists bool, err error) {
	val, e := s.rdb.HGetAll(ctx, sessionKey(sessionId)).Result()
	if e != nil {
		log.Printf("GetUserSessionInfo: %v", e)
		err = models.ErrServerError
		return
	}
	if len(val) == 0 {
		return
	}
	userId, _ = strconv.Atoi(val["userId"])
	role = val["role"]
	exists = true
	return
}
