package repair

import "errors"

var (
	// ErrTaskNotFound возвращается, когда задача восстановления не найдена
	ErrTaskNotFound = errors.New("repair.repository: task not found")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("repair.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("repair.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("repair.repository: failed to scan row")
)
