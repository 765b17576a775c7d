package resource

import "errors"

var (
	// ErrResourceNotFound возвращается, когда специалист или кабинет не найден
	ErrResourceNotFound = errors.New("resource.repository: resource not found")

	// ErrUnsupportedKind возвращается для неизвестного вида ресурса
	ErrUnsupportedKind = errors.New("resource.repository: unsupported resource kind")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("resource.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("resource.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("resource.repository: failed to scan row")
)
