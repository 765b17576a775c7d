package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidRange некорректные параметры сетки или интервала
	ErrInvalidRange = errors.New("domain: invalid range")

	// ErrCrossesMidnight сеанс заканчивается на следующий день
	ErrCrossesMidnight = errors.New("domain: session crosses midnight")

	// ErrConflict кандидат пересекается с существующим бронированием или его буфером
	ErrConflict = errors.New("domain: resource is already booked")

	// ErrClosingTimeExceeded сеанс заканчивается после закрытия
	ErrClosingTimeExceeded = errors.New("domain: session ends after closing time")

	// ErrOutsideWorkingHours сеанс вне рабочих часов специалиста
	ErrOutsideWorkingHours = errors.New("domain: session is outside working hours")

	// ErrNotWorkingDay специалист не работает в этот день
	ErrNotWorkingDay = errors.New("domain: professional does not work on this day")

	// ErrResourceInactive ресурс выключен
	ErrResourceInactive = errors.New("domain: resource is inactive")

	// ErrLookupFailed не удалось прочитать бронирования при проверке доступности
	ErrLookupFailed = errors.New("domain: availability lookup failed")

	// ErrPartialWrite двойная запись выполнена частично
	ErrPartialWrite = errors.New("domain: partial write")

	// ErrInvalidTransition недопустимый переход состояния бронирования
	ErrInvalidTransition = errors.New("domain: invalid reservation transition")

	// ErrUnknownServiceType неизвестный вид услуги
	ErrUnknownServiceType = errors.New("domain: unknown service type")
)

// ConflictError отказ из-за занятости ресурса со списком всех конфликтов
type ConflictError struct {
	Resource  ResourceRef
	Conflicts []Conflict
}

func (e *ConflictError) Error() string {
	parts := make([]string, 0, len(e.Conflicts))
	for _, c := range e.Conflicts {
		parts = append(parts, fmt.Sprintf("%s (booking %d, %s)", c.Existing.Span, c.Existing.BookingID, c.Kind))
	}
	return fmt.Sprintf("%s: %s conflicts with %s", ErrConflict, e.Resource, strings.Join(parts, ", "))
}

func (e *ConflictError) Unwrap() error {
	return ErrConflict
}

// PartialWriteError пара записей осталась несогласованной
type PartialWriteError struct {
	Operation     string
	AppointmentID int64
	RoomBookingID int64
	Completed     string // запись, которая успешно обновлена
	Failed        string // запись, которую обновить не удалось
	Err           error
}

func (e *PartialWriteError) Error() string {
	return fmt.Sprintf("%s: %s: %s updated, %s failed (appointment=%d, room_booking=%d): %v",
		ErrPartialWrite, e.Operation, e.Completed, e.Failed, e.AppointmentID, e.RoomBookingID, e.Err)
}

func (e *PartialWriteError) Unwrap() []error {
	return []error{ErrPartialWrite, e.Err}
}
