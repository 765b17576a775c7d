package events

import "errors"

var (
	// ErrMarshalEvent ошибка сериализации события
	ErrMarshalEvent = errors.New("events.publisher: failed to marshal event")

	// ErrPublish ошибка записи в брокер
	ErrPublish = errors.New("events.publisher: failed to publish event")
)
