package roombooking

import (
	"errors"

	"github.com/lib/pq"
)

var (
	// ErrRoomBookingNotFound возвращается, когда бронирование кабинета не найдено
	ErrRoomBookingNotFound = errors.New("roombooking.repository: room booking not found")

	// ErrOverlap возвращается при нарушении ограничения исключения (кабинет занят вместе с подготовкой)
	ErrOverlap = errors.New("roombooking.repository: interval overlaps existing room booking")

	// ErrUnsupportedKind возвращается для вида бронирования без отдельной таблицы
	ErrUnsupportedKind = errors.New("roombooking.repository: unsupported booking kind")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("roombooking.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("roombooking.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("roombooking.repository: failed to scan row")
)

const exclusionViolation = "23P01"

func isExclusionViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == exclusionViolation
}
