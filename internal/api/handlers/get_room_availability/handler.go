package get_room_availability

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-ClinicBooking/internal/api/handlers"
	"github.com/m04kA/SMC-ClinicBooking/internal/domain"
	getRoomAvailability "github.com/m04kA/SMC-ClinicBooking/internal/usecase/get_room_availability"
	"github.com/m04kA/SMC-ClinicBooking/pkg/types"
)

const (
	msgInvalidRoomKind  = "некорректный вид кабинета"
	msgInvalidDate      = "некорректный формат даты, ожидается YYYY-MM-DD"
	msgInvalidTime      = "некорректный формат времени, ожидается HH:MM"
	msgInvalidBuffer    = "некорректное время подготовки"
	msgInvalidExcludeID = "некорректный ID исключаемого бронирования"
	msgInvalidInput     = "некорректные параметры запроса"
	msgLookupFailed     = "не удалось проверить доступность, повторите позже"
)

type Handler struct {
	useCase GetRoomAvailabilityUseCase
	logger  Logger
}

func NewHandler(useCase GetRoomAvailabilityUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle GET /api/v1/rooms/{kind}/availability
// Query params: date, start, end (required), bufferMinutes, excludeBookingId
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	kind := domain.ResourceKind(mux.Vars(r)["kind"])
	if !kind.IsRoom() {
		h.logger.Warn("GET /rooms/{kind}/availability - Invalid room kind: %s", kind)
		handlers.RespondBadRequest(w, msgInvalidRoomKind)
		return
	}

	query := r.URL.Query()

	date, err := handlers.ParseDate(query.Get("date"))
	if err != nil {
		h.logger.Warn("GET /rooms/{kind}/availability - Invalid date: %v", err)
		handlers.RespondBadRequest(w, msgInvalidDate)
		return
	}

	start, err := types.NewTimeStringFromString(query.Get("start"))
	if err != nil {
		h.logger.Warn("GET /rooms/{kind}/availability - Invalid start: %v", err)
		handlers.RespondBadRequest(w, msgInvalidTime)
		return
	}

	end, err := types.NewTimeStringFromString(query.Get("end"))
	if err != nil {
		h.logger.Warn("GET /rooms/{kind}/availability - Invalid end: %v", err)
		handlers.RespondBadRequest(w, msgInvalidTime)
		return
	}

	useCaseReq := &getRoomAvailability.Request{
		RoomKind:  kind,
		Date:      date,
		StartTime: start,
		EndTime:   end,
	}

	if s := query.Get("bufferMinutes"); s != "" {
		buffer, err := strconv.Atoi(s)
		if err != nil {
			h.logger.Warn("GET /rooms/{kind}/availability - Invalid buffer: %v", err)
			handlers.RespondBadRequest(w, msgInvalidBuffer)
			return
		}
		useCaseReq.BufferMinutes = buffer
	}

	if s := query.Get("excludeBookingId"); s != "" {
		excludeID, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			h.logger.Warn("GET /rooms/{kind}/availability - Invalid exclude ID: %v", err)
			handlers.RespondBadRequest(w, msgInvalidExcludeID)
			return
		}
		useCaseReq.ExcludeBookingID = excludeID
	}

	result, err := h.useCase.Execute(r.Context(), useCaseReq)
	if err != nil {
		switch {
		case errors.Is(err, getRoomAvailability.ErrInvalidInput):
			h.logger.Warn("GET /rooms/{kind}/availability - Invalid input: %v", err)
			handlers.RespondBadRequest(w, msgInvalidInput)

		case errors.Is(err, domain.ErrLookupFailed):
			h.logger.Error("GET /rooms/{kind}/availability - Lookup failed: kind=%s, error=%v", kind, err)
			handlers.RespondServiceUnavailable(w, msgLookupFailed)

		default:
			h.logger.Error("GET /rooms/{kind}/availability - Failed to check rooms: kind=%s, error=%v", kind, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /rooms/{kind}/availability - Rooms checked successfully: kind=%s, rooms_count=%d",
		kind, len(result.Rooms))
	handlers.RespondJSON(w, http.StatusOK, FromUseCaseResponse(result))
}
