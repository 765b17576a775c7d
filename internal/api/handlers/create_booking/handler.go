package create_booking

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-ClinicBooking/internal/api/handlers"
	createBooking "github.com/m04kA/SMC-ClinicBooking/internal/usecase/create_booking"
)

const (
	msgInvalidRequestBody   = "некорректное тело запроса"
	msgInvalidServiceType   = "неизвестный вид услуги"
	msgInvalidDate          = "некорректный формат даты, ожидается YYYY-MM-DD"
	msgInvalidTime          = "некорректный формат времени начала, ожидается HH:MM"
	msgInvalidInput         = "некорректные данные бронирования"
	msgProfessionalNotFound = "специалист не найден"
	msgRoomNotFound         = "кабинет не найден"
	msgNoRoomAvailable      = "нет свободного кабинета на выбранное время"
	msgResourceBusy         = "ресурс сейчас бронируется, повторите попытку"
)

type Handler struct {
	useCase CreateBookingUseCase
	logger  Logger
}

func NewHandler(useCase CreateBookingUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/bookings
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	var req CreateBookingRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /bookings - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	// Конвертируем HTTP запрос в модель use case (с парсингом даты и времени)
	useCaseReq, err := req.ToUseCaseRequest()
	if err != nil {
		h.logger.Warn("POST /bookings - Failed to parse request: %v", err)
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
			h.logger.Warn("POST /bookings - Slot rejected: patient_id=%d, error=%v", req.PatientID, err)
			return
		}

		switch {
		case errors.Is(err, createBooking.ErrInvalidInput):
			h.logger.Warn("POST /bookings - Invalid input: patient_id=%d, error=%v", req.PatientID, err)
			handlers.RespondBadRequest(w, msgInvalidInput)

		case errors.Is(err, createBooking.ErrProfessionalNotFound):
			h.logger.Warn("POST /bookings - Professional not found: professional_id=%v", req.ProfessionalID)
			handlers.RespondNotFound(w, msgProfessionalNotFound)

		case errors.Is(err, createBooking.ErrRoomNotFound):
			h.logger.Warn("POST /bookings - Room not found: room_id=%v", req.RoomID)
			handlers.RespondNotFound(w, msgRoomNotFound)

		case errors.Is(err, createBooking.ErrNoRoomAvailable):
			h.logger.Warn("POST /bookings - No room available: service_type=%s, date=%s, start=%s",
				req.ServiceType, req.Date, req.StartTime)
			handlers.RespondError(w, http.StatusConflict, msgNoRoomAvailable)

		case errors.Is(err, createBooking.ErrResourceBusy):
			h.logger.Warn("POST /bookings - Resource busy: patient_id=%d", req.PatientID)
			handlers.RespondError(w, http.StatusConflict, msgResourceBusy)

		default:
			h.logger.Error("POST /bookings - Failed to create booking: patient_id=%d, error=%v", req.PatientID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	response := FromUseCaseResponse(result)

	h.logger.Info("POST /bookings - Booking created successfully: appointment_id=%d, patient_id=%d",
		result.Appointment.ID, req.PatientID)
	handlers.RespondJSON(w, http.StatusCreated, response)
}
