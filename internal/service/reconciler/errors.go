package reconciler

import "errors"

var (
	// ErrUnknownAction возвращается для задачи с неизвестным действием
	ErrUnknownAction = errors.New("reconciler: unknown repair action")

	// ErrRepairFailed возвращается, когда недостающую операцию не удалось выполнить
	ErrRepairFailed = errors.New("reconciler: repair failed")
)
