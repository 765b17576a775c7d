package get_available_slots

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-ClinicBooking/internal/api/handlers"
	"github.com/m04kA/SMC-ClinicBooking/internal/domain"
	getAvailableSlots "github.com/m04kA/SMC-ClinicBooking/internal/usecase/get_available_slots"
)

const (
	msgInvalidResourceKind = "некорректный вид ресурса"
	msgInvalidResourceID   = "некорректный ID ресурса"
	msgMissingDate         = "дата обязательна"
	msgInvalidDate         = "некорректный формат даты, ожидается YYYY-MM-DD"
	msgInvalidServiceType  = "неизвестный вид услуги"
	msgInvalidDuration     = "некорректная длительность"
	msgInvalidExcludeID    = "некорректный ID исключаемого бронирования"
	msgInvalidInput        = "некорректные параметры запроса"
	msgResourceNotFound    = "ресурс не найден"
)

type Handler struct {
	useCase GetAvailableSlotsUseCase
	logger  Logger
}

func NewHandler(useCase GetAvailableSlotsUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle GET /api/v1/resources/{kind}/{resourceId}/available-slots
// Query params: date (required), serviceType, durationMinutes, excludeBookingId
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	query := r.URL.Query()

	kind := domain.ResourceKind(vars["kind"])
	if !kind.Valid() {
		h.logger.Warn("GET /resources/{kind}/{id}/available-slots - Invalid kind: %s", vars["kind"])
		handlers.RespondBadRequest(w, msgInvalidResourceKind)
		return
	}

	resourceID, err := strconv.ParseInt(vars["resourceId"], 10, 64)
	if err != nil {
		h.logger.Warn("GET /resources/{kind}/{id}/available-slots - Invalid resource ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidResourceID)
		return
	}

	dateStr := query.Get("date")
	if dateStr == "" {
		h.logger.Warn("GET /resources/{kind}/{id}/available-slots - Missing date")
		handlers.RespondBadRequest(w, msgMissingDate)
		return
	}

	date, err := handlers.ParseDate(dateStr)
	if err != nil {
		h.logger.Warn("GET /resources/{kind}/{id}/available-slots - Invalid date format: %v", err)
		handlers.RespondBadRequest(w, msgInvalidDate)
		return
	}

	useCaseReq := &getAvailableSlots.Request{
		Resource: domain.ResourceRef{Kind: kind, ID: resourceID},
		Date:     date,
	}

	if s := query.Get("serviceType"); s != "" {
		serviceType, err := domain.ParseServiceType(s)
		if err != nil {
			h.logger.Warn("GET /resources/{kind}/{id}/available-slots - Invalid service type: %v", err)
			handlers.RespondBadRequest(w, msgInvalidServiceType)
			return
		}
		useCaseReq.ServiceType = &serviceType
	}

	if s := query.Get("durationMinutes"); s != "" {
		duration, err := strconv.Atoi(s)
		if err != nil {
			h.logger.Warn("GET /resources/{kind}/{id}/available-slots - Invalid duration: %v", err)
			handlers.RespondBadRequest(w, msgInvalidDuration)
			return
		}
		useCaseReq.DurationMinutes = duration
	}

	if s := query.Get("excludeBookingId"); s != "" {
		excludeID, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			h.logger.Warn("GET /resources/{kind}/{id}/available-slots - Invalid exclude ID: %v", err)
			handlers.RespondBadRequest(w, msgInvalidExcludeID)
			return
		}
		useCaseReq.ExcludeID = excludeID
	}

	result, err := h.useCase.Execute(r.Context(), useCaseReq)
	if err != nil {
		switch {
		case errors.Is(err, getAvailableSlots.ErrInvalidInput):
			h.logger.Warn("GET /resources/{kind}/{id}/available-slots - Invalid input: %v", err)
			handlers.RespondBadRequest(w, msgInvalidInput)

		case errors.Is(err, getAvailableSlots.ErrResourceNotFound):
			h.logger.Warn("GET /resources/{kind}/{id}/available-slots - Resource not found: %s", useCaseReq.Resource)
			handlers.RespondNotFound(w, msgResourceNotFound)

		case handlers.RespondAvailabilityError(w, err):
			h.logger.Warn("GET /resources/{kind}/{id}/available-slots - Availability check failed: %s, error=%v",
				useCaseReq.Resource, err)

		default:
			h.logger.Error("GET /resources/{kind}/{id}/available-slots - Failed to get slots: %s, error=%v",
				useCaseReq.Resource, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /resources/{kind}/{id}/available-slots - Slots retrieved successfully: %s, date=%s, slots_count=%d",
		useCaseReq.Resource, dateStr, len(result.Slots))
	handlers.RespondJSON(w, http.StatusOK, FromUseCaseResponse(result))
}
