package reschedule_booking

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-ClinicBooking/internal/api/handlers"
	"github.com/m04kA/SMC-ClinicBooking/internal/service/bookings"
	rescheduleBooking "github.com/m04kA/SMC-ClinicBooking/internal/usecase/reschedule_booking"
)

const (
	msgInvalidKind          = "некорректный вид бронирования"
	msgInvalidBookingID     = "некорректный ID бронирования"
	msgInvalidRequestBody   = "некорректное тело запроса"
	msgInvalidDate          = "некорректный формат даты, ожидается YYYY-MM-DD"
	msgInvalidTime          = "некорректный формат времени начала, ожидается HH:MM"
	msgInvalidServiceType   = "неизвестный вид услуги"
	msgInvalidInput         = "некорректные данные переноса"
	msgNotFound             = "бронирование не найдено"
	msgCannotReschedule     = "бронирование не может быть перенесено"
	msgInconsistentPair     = "записи бронирования рассогласованы, перенос невозможен"
	msgProfessionalNotFound = "специалист не найден"
	msgRoomNotFound         = "кабинет не найден"
	msgResourceBusy         = "ресурс сейчас бронируется, повторите попытку"
)

type Handler struct {
	useCase RescheduleBookingUseCase
	logger  Logger
}

func NewHandler(useCase RescheduleBookingUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle PATCH /api/v1/bookings/{kind}/{bookingId}
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	source, err := bookings.ParseSource(vars["kind"])
	if err != nil {
		h.logger.Warn("PATCH /bookings/{kind}/{id} - Invalid kind: %v", err)
		handlers.RespondBadRequest(w, msgInvalidKind)
		return
	}

	bookingID, err := strconv.ParseInt(vars["bookingId"], 10, 64)
	if err != nil {
		h.logger.Warn("PATCH /bookings/{kind}/{id} - Invalid booking ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidBookingID)
		return
	}

	var req RescheduleBookingRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("PATCH /bookings/{kind}/{id} - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	useCaseReq, err := req.ToUseCaseRequest(source, bookingID)
	if err != nil {
		h.logger.Warn("PATCH /bookings/{kind}/{id} - Failed to parse request: %v", err)
		var pErr *parseError
		if errors.As(err, &pErr) {
			handlers.RespondBadRequest(w, pErr.message)
			return
		}
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	result, err := h.useCase.Execute(r.Context(), useCaseReq)
	if err != nil {
		if handlers.RespondAvailabilityError(w, err) {
			h.logger.Warn("PATCH /bookings/{kind}/{id} - Slot rejected: %s id=%d, error=%v", source, bookingID, err)
			return
		}

		switch {
		case errors.Is(err, rescheduleBooking.ErrInvalidInput):
			h.logger.Warn("PATCH /bookings/{kind}/{id} - Invalid input: %s id=%d, error=%v", source, bookingID, err)
			handlers.RespondBadRequest(w, msgInvalidInput)

		case errors.Is(err, rescheduleBooking.ErrBookingNotFound):
			h.logger.Warn("PATCH /bookings/{kind}/{id} - Booking not found: %s id=%d", source, bookingID)
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, rescheduleBooking.ErrCannotReschedule):
			h.logger.Warn("PATCH /bookings/{kind}/{id} - Cannot reschedule: %s id=%d", source, bookingID)
			handlers.RespondError(w, http.StatusConflict, msgCannotReschedule)

		case errors.Is(err, rescheduleBooking.ErrInconsistentPair):
			h.logger.Warn("PATCH /bookings/{kind}/{id} - Inconsistent pair: %s id=%d", source, bookingID)
			handlers.RespondError(w, http.StatusConflict, msgInconsistentPair)

		case errors.Is(err, rescheduleBooking.ErrProfessionalNotFound):
			h.logger.Warn("PATCH /bookings/{kind}/{id} - Professional not found: professional_id=%v", req.ProfessionalID)
			handlers.RespondNotFound(w, msgProfessionalNotFound)

		case errors.Is(err, rescheduleBooking.ErrRoomNotFound):
			h.logger.Warn("PATCH /bookings/{kind}/{id} - Room not found: room_id=%v", req.RoomID)
			handlers.RespondNotFound(w, msgRoomNotFound)

		case errors.Is(err, rescheduleBooking.ErrResourceBusy):
			h.logger.Warn("PATCH /bookings/{kind}/{id} - Resource busy: %s id=%d", source, bookingID)
			handlers.RespondError(w, http.StatusConflict, msgResourceBusy)

		default:
			h.logger.Error("PATCH /bookings/{kind}/{id} - Failed to reschedule: %s id=%d, error=%v", source, bookingID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("PATCH /bookings/{kind}/{id} - Booking rescheduled successfully: %s id=%d", source, bookingID)
	handlers.RespondJSON(w, http.StatusOK, FromUseCaseResponse(result))
}
