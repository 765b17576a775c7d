package get_room_availability

import (
	"github.com/m04kA/SMC-ClinicBooking/internal/domain"
	getRoomAvailability "github.com/m04kA/SMC-ClinicBooking/internal/usecase/get_room_availability"
)

// RoomResponse доступность одного кабинета
type RoomResponse struct {
	RoomID      int64  `json:"roomId"`
	Name        string `json:"name"`
	SortOrder   int    `json:"sortOrder"`
	IsAvailable bool   `json:"is_available"`
	Reason      string `json:"reason,omitempty"`
}

// RoomAvailabilityResponse HTTP response model
type RoomAvailabilityResponse struct {
	RoomKind  string         `json:"roomKind"`
	Date      string         `json:"date"`
	StartTime string         `json:"startTime"`
	EndTime   string         `json:"endTime"`
	Rooms     []RoomResponse `json:"rooms"`
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *getRoomAvailability.Response) *RoomAvailabilityResponse {
	rooms := make([]RoomResponse, 0, len(resp.Rooms))
	for _, room := range resp.Rooms {
		rooms = append(rooms, RoomResponse{
			RoomID:      room.RoomID,
			Name:        room.Name,
			SortOrder:   room.SortOrder,
			IsAvailable: room.IsAvailable,
			Reason:      room.Reason,
		})
	}

	return &RoomAvailabilityResponse{
		RoomKind:  string(resp.RoomKind),
		Date:      resp.Date.Format(domain.DateFormat),
		StartTime: resp.StartTime.String(),
		EndTime:   resp.EndTime.String(),
		Rooms:     rooms,
	}
}
