package bookings

import (
	"fmt"

	"github.com/m04kA/SMC-ClinicBooking/internal/domain"
)

// Source по какой записи адресуется бронирование
type Source string

const (
	// SourceAppointment id записи журнала приемов (любой вид)
	SourceAppointment Source = "appointment"
	// SourceConsultation консультация адресуется id приема
	SourceConsultation Source = "consultation"
	// SourceWellness id бронирования wellness-кабинета
	SourceWellness Source = "wellness"
	// SourceTreatment id бронирования процедурного кабинета
	SourceTreatment Source = "treatment"
)

// ParseSource разбирает вид ссылки из URL
func ParseSource(s string) (Source, error) {
	switch src := Source(s); src {
	case SourceAppointment, SourceConsultation, SourceWellness, SourceTreatment:
		return src, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidSource, s)
}

// IsAppointment true, если id указывает на запись журнала приемов
func (s Source) IsAppointment() bool {
	return s == SourceAppointment || s == SourceConsultation
}

// BookingKind вид специализированной записи для wellness и treatment
func (s Source) BookingKind() domain.BookingKind {
	switch s {
	case SourceWellness:
		return domain.KindWellness
	case SourceTreatment:
		return domain.KindTreatment
	default:
		return domain.KindConsultation
	}
}
