package domain

import (
	"time"

	"github.com/m04kA/SMC-ClinicBooking/pkg/types"
)

// BookingInterval единица, с которой работает детектор конфликтов
// BookingID это id исходной записи (appointment для специалиста и кабинета консультаций,
// room booking для wellness и treatment кабинетов)
type BookingInterval struct {
	BookingID    int64
	Kind         BookingKind
	Resource     ResourceRef
	Date         time.Time
	Span         Interval
	BufferBefore int
	BufferAfter  int
	Status       BookingStatus
}

// NewBookingInterval строит интервал из времени начала и окончания
func NewBookingInterval(id int64, resource ResourceRef, date time.Time, start, end types.TimeString, bufferAfter int, status BookingStatus) (BookingInterval, error) {
	span, err := IntervalBetween(start, end)
	if err != nil {
		return BookingInterval{}, err
	}
	return BookingInterval{
		BookingID:   id,
		Resource:    resource,
		Date:        date,
		Span:        span,
		BufferAfter: bufferAfter,
		Status:      status,
	}, nil
}

// Expanded интервал вместе с буферами
func (b BookingInterval) Expanded() Interval {
	return Expand(b.Span, b.BufferBefore, b.BufferAfter)
}

// ConflictKind источник конфликта
type ConflictKind string

const (
	// ConflictSession пересекаются сами сеансы
	ConflictSession ConflictKind = "session"
	// ConflictBuffer пересечение только с окном подготовки
	ConflictBuffer ConflictKind = "buffer"
)

// Conflict существующее бронирование, с которым пересекается кандидат
type Conflict struct {
	Existing BookingInterval
	Kind     ConflictKind
}

// FindConflicts возвращает все конфликты кандидата с существующими бронированиями
// Каждый интервал расширяется своим буфером; отмененные и excludeID пропускаются
// excludeID = 0 ничего не исключает
func FindConflicts(candidate BookingInterval, existing []BookingInterval, excludeID int64) []Conflict {
	conflicts := make([]Conflict, 0)
	candidateExpanded := candidate.Expanded()

	for _, iv := range existing {
		if !iv.Status.IsActive() {
			continue
		}
		if excludeID != 0 && iv.BookingID == excludeID {
			continue
		}
		if !Overlaps(candidateExpanded, iv.Expanded()) {
			continue
		}

		kind := ConflictBuffer
		if Overlaps(candidate.Span, iv.Span) {
			kind = ConflictSession
		}
		conflicts = append(conflicts, Conflict{Existing: iv, Kind: kind})
	}

	return conflicts
}
