package cache

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// SeatsCache кэш остатков мест в Redis. Используется только для
// отображения: короткий TTL, допускается отставание от базы. Решения о
// допуске на место кэш никогда не принимает.
type SeatsCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// New создаёт кэш поверх Redis
func New(addr string, ttl time.Duration) *SeatsCache {
	rdb := redis.NewClient(&redis.Options{
		Addr: addr,
	})

	return &SeatsCache{rdb: rdb, ttl: ttl}
}

func seatsKey(examSlotID int64) string {
	return fmt.Sprintf("examreg:seats:%d", examSlotID)
}

// Get возвращает закэшированный остаток мест слота
func (c *SeatsCache) Get(ctx context.Context, examSlotID int64) (int, bool) {
	val, err := c.rdb.Get(ctx, seatsKey(examSlotID)).Result()
	if err != nil {
		return 0, false
	}

	seats, err := strconv.Atoi(val)
	if err != nil {
		return 0, false
	}

	return seats, true
}

// Set сохраняет остаток мест слота
func (c *SeatsCache) Set(ctx context.Context, examSlotID int64, seats int) {
	c.rdb.Set(ctx, seatsKey(examSlotID), strconv.Itoa(seats), c.ttl)
}

// Invalidate сбрасывает закэшированные значения для слотов
func (c *SeatsCache) Invalidate(ctx context.Context, examSlotIDs ...int64) {
	if len(examSlotIDs) == 0 {
		return
	}

	keys := make([]string, 0, len(examSlotIDs))
	for _, id := range examSlotIDs {
		keys = append(keys, seatsKey(id))
	}

	c.rdb.Del(ctx, keys...)
}

// Ping проверяет доступность Redis
func (c *SeatsCache) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

// Close закрывает соединение с Redis
func (c *SeatsCache) Close() error {
	return c.rdb.Close()
}
