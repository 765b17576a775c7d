package lock

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// releaseScript удаляет ключ, только если он все еще принадлежит владельцу токена
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

const retryInterval = 25 * time.Millisecond

// Options параметры блокировок
type Options struct {
	TTL       time.Duration // время жизни ключа, страхует от зависшего владельца
	Wait      time.Duration // сколько ждать освобождения
	KeyPrefix string
}

// RedisLocker блокировка ресурсов через SET NX PX
// Сериализует записи по одному ресурсу между всеми экземплярами сервиса
type RedisLocker struct {
	client redis.Cmdable
	opts   Options
}

// NewRedisLocker создает блокировку поверх клиента go-redis
func NewRedisLocker(client redis.Cmdable, opts Options) *RedisLocker {
	return &RedisLocker{client: client, opts: opts}
}

// Acquire захватывает все ключи в порядке сортировки, чтобы два вызова не ждали друг друга по кругу
func (l *RedisLocker) Acquire(ctx context.Context, keys ...string) (ReleaseFunc, error) {
	keys = normalizeKeys(keys)
	token := uuid.NewString()
	acquired := make([]string, 0, len(keys))

	release := func(ctx context.Context) error {
		var errs []error
		for i := len(acquired) - 1; i >= 0; i-- {
			if err := releaseScript.Run(ctx, l.client, []string{acquired[i]}, token).Err(); err != nil {
				errs = append(errs, err)
			}
		}
		if len(errs) > 0 {
			return fmt.Errorf("%w: release: %v", ErrLockBackend, errors.Join(errs...))
		}
		return nil
	}

	deadline := time.Now().Add(l.opts.Wait)
	for _, key := range keys {
		fullKey := l.opts.KeyPrefix + key
		if err := l.acquireOne(ctx, fullKey, token, deadline); err != nil {
			_ = release(context.WithoutCancel(ctx))
			return nil, err
		}
		acquired = append(acquired, fullKey)
	}

	return release, nil
}

func (l *RedisLocker) acquireOne(ctx context.Context, key, token string, deadline time.Time) error {
	for {
		ok, err := l.client.SetNX(ctx, key, token, l.opts.TTL).Result()
		if err != nil {
			return fmt.Errorf("%w: SETNX %s: %v", ErrLockBackend, key, err)
		}
		if ok {
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("%w: %s", ErrLockTimeout, key)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(retryInterval):
		}
	}
}

func normalizeKeys(keys []string) []string {
	seen := make(map[string]struct{}, len(keys))
	result := make([]string, 0, len(keys))
	for _, k := range keys {
		if _, ok := seen[k]; ok || k == "" {
			continue
		}
		seen[k] = struct{}{}
		result = append(result, k)
	}
	sort.Strings(result)
	return result
}
