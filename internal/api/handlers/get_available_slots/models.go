package get_available_slots

import (
	"github.com/m04kA/SMC-ClinicBooking/internal/domain"
	getAvailableSlots "github.com/m04kA/SMC-ClinicBooking/internal/usecase/get_available_slots"
)

// SlotResponse один слот сетки
type SlotResponse struct {
	StartTime       string `json:"startTime"`
	EndTime         string `json:"endTime"`
	DurationMinutes int    `json:"durationMinutes"`
	Available       bool   `json:"available"`
	Reason          string `json:"reason,omitempty"`
}

// AvailableSlotsResponse HTTP response model
type AvailableSlotsResponse struct {
	ResourceKind string         `json:"resourceKind"`
	ResourceID   int64          `json:"resourceId"`
	Date         string         `json:"date"`
	Slots        []SlotResponse `json:"slots"`
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *getAvailableSlots.Response) *AvailableSlotsResponse {
	slots := make([]SlotResponse, 0, len(resp.Slots))
	for _, s := range resp.Slots {
		slots = append(slots, SlotResponse{
			StartTime:       s.StartTime.String(),
			EndTime:         s.EndTime.String(),
			DurationMinutes: s.DurationMinutes,
			Available:       s.Available,
			Reason:          s.Reason,
		})
	}

	return &AvailableSlotsResponse{
		ResourceKind: string(resp.Resource.Kind),
		ResourceID:   resp.Resource.ID,
		Date:         resp.Date.Format(domain.DateFormat),
		Slots:        slots,
	}
}
