package sink

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/raywall/fast-fetch-toolkit/pkg/records"
	"github.com/redis/go-redis/v9"
)

// RedisClient é o subconjunto do go-redis usado pelo sink.
type RedisClient interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Close() error
}

// RedisWriter grava cada registro como JSON em prefix + record[keyField].
type RedisWriter struct {
	client   RedisClient
	prefix   string
	keyField string
	ttl      time.Duration
}

func NewRedisWriter(client RedisClient, prefix, keyField string, ttl time.Duration) *RedisWriter {
	return &RedisWriter{client: client, prefix: prefix, keyField: keyField, ttl: ttl}
}

// NewRedisClient cria o client real.
func NewRedisClient(addr, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
}

func (w *RedisWriter) Write(ctx context.Context, recs []Record) error {
	for _, r := range recs {
		id := records.Stringify(r[w.keyField])
		if id == "" {
			return fmt.Errorf("redis: registro sem o campo chave '%s'", w.keyField)
		}

		b, err := json.Marshal(r)
		if err != nil {
			return fmt.Errorf("redis: erro ao serializar %s: %w", id, err)
		}

		if err := w.client.Set(ctx, w.prefix+id, b, w.ttl).Err(); err != nil {
			return fmt.Errorf("redis: erro no SET %s: %w", w.prefix+id, err)
		}
	}
	return nil
}

func (w *RedisWriter) Close() error {
	return w.client.Close()
}
