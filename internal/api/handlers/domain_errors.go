package handlers

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-ClinicBooking/internal/domain"
)

const (
	msgSlotConflict        = "выбранное время занято"
	msgClosingTimeExceeded = "сеанс заканчивается после закрытия клиники"
	msgOutsideWorkingHours = "время вне рабочих часов специалиста"
	msgNotWorkingDay       = "специалист не работает в выбранный день"
	msgCrossesMidnight     = "сеанс не может переходить через полночь"
	msgResourceInactive    = "ресурс недоступен для бронирования"
	msgUnknownServiceType  = "неизвестный вид услуги"
	msgLookupFailed        = "не удалось проверить доступность, повторите позже"
)

// RespondAvailabilityError отвечает на ошибки проверки доступности
// Возвращает false, если ошибка к ним не относится
func RespondAvailabilityError(w http.ResponseWriter, err error) bool {
	switch {
	case errors.Is(err, domain.ErrConflict):
		RespondConflict(w, msgSlotConflict, err)
	case errors.Is(err, domain.ErrClosingTimeExceeded):
		RespondUnprocessable(w, msgClosingTimeExceeded)
	case errors.Is(err, domain.ErrOutsideWorkingHours):
		RespondUnprocessable(w, msgOutsideWorkingHours)
	case errors.Is(err, domain.ErrNotWorkingDay):
		RespondUnprocessable(w, msgNotWorkingDay)
	case errors.Is(err, domain.ErrCrossesMidnight):
		RespondUnprocessable(w, msgCrossesMidnight)
	case errors.Is(err, domain.ErrResourceInactive):
		RespondUnprocessable(w, msgResourceInactive)
	case errors.Is(err, domain.ErrUnknownServiceType):
		RespondBadRequest(w, msgUnknownServiceType)
	case errors.Is(err, domain.ErrLookupFailed):
		RespondServiceUnavailable(w, msgLookupFailed)
	default:
		return false
	}
	return true
}
