package reconciler

import "time"

// Результаты попытки восстановления для метрик
const (
	resultSuccess = "success"
	resultFailed  = "failed"
	resultGaveUp  = "gave_up"
)

// Options параметры воркера
type Options struct {
	Interval    time.Duration
	BatchSize   int
	MaxAttempts int
	Backoff     time.Duration // задержка умножается на номер попытки
}
