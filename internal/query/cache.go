package query

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache guarda listagens de partidas no Redis com TTL curto.
// Mutações administrativas invalidam as chaves para manter
// read-your-writes na listagem.
type Cache struct{ R *redis.Client }

func NewCache(r *redis.Client) *Cache { return &Cache{R: r} }

func keyList(status string) string { return "matches:list:" + status }

func (c *Cache) GetMatches(ctx context.Context, status string, dst any) (bool, error) {
	b, err := c.R.Get(ctx, keyList(status)).Bytes()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, json.Unmarshal(b, dst)
}

func (c *Cache) SetMatches(ctx context.Context, status string, v any, ttl time.Duration) error {
	b, _ := json.Marshal(v)
	return c.R.Set(ctx, keyList(status), b, ttl).Err()
}

// InvalidateMatches apaga todas as variações da listagem
func (c *Cache) InvalidateMatches(ctx context.Context) {
	keys := []string{keyList(""), keyList("scheduled"), keyList("active"), keyList("completed")}
	_ = c.R.Del(ctx, keys...).Err()
}
