package lock

import (
	"context"
	"errors"
)

var (
	// ErrLockTimeout не удалось захватить блокировку за отведенное время
	ErrLockTimeout = errors.New("lock: timeout acquiring resource lock")

	// ErrLockBackend ошибка хранилища блокировок
	ErrLockBackend = errors.New("lock: backend error")
)

// ReleaseFunc освобождает захваченные блокировки
type ReleaseFunc func(ctx context.Context) error
