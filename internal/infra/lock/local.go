package lock

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// LocalLocker блокировка ресурсов в памяти процесса (один экземпляр сервиса, тесты)
type LocalLocker struct {
	mu    sync.Mutex
	slots map[string]chan struct{}
	wait  time.Duration
}

// NewLocalLocker создает блокировку в памяти
func NewLocalLocker(wait time.Duration) *LocalLocker {
	return &LocalLocker{slots: make(map[string]chan struct{}), wait: wait}
}

func (l *LocalLocker) slot(key string) chan struct{} {
	l.mu.Lock()
	defer l.mu.Unlock()
	ch, ok := l.slots[key]
	if !ok {
		ch = make(chan struct{}, 1)
		l.slots[key] = ch
	}
	return ch
}

// Acquire захватывает ключи в порядке сортировки
func (l *LocalLocker) Acquire(ctx context.Context, keys ...string) (ReleaseFunc, error) {
	keys = normalizeKeys(keys)
	acquired := make([]chan struct{}, 0, len(keys))

	release := func(context.Context) error {
		for i := len(acquired) - 1; i >= 0; i-- {
			<-acquired[i]
		}
		acquired = acquired[:0]
		return nil
	}

	timer := time.NewTimer(l.wait)
	defer timer.Stop()

	for _, key := range keys {
		ch := l.slot(key)
		select {
		case ch <- struct{}{}:
			acquired = append(acquired, ch)
		case <-timer.C:
			_ = release(ctx)
			return nil, fmt.Errorf("%w: %s", ErrLockTimeout, key)
		case <-ctx.Done():
			_ = release(ctx)
			return nil, ctx.Err()
		}
	}

	return release, nil
}
