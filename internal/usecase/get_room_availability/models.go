package get_room_availability

import (
	"time"

	"github.com/m04kA/SMC-ClinicBooking/internal/domain"
	"github.com/m04kA/SMC-ClinicBooking/pkg/types"
)

// Request модель запроса доступности кабинетов вида на интервал
type Request struct {
	RoomKind         domain.ResourceKind
	Date             time.Time
	StartTime        types.TimeString
	EndTime          types.TimeString
	BufferMinutes    int
	ExcludeBookingID int64
}

// Response доступность всех активных кабинетов вида
type Response struct {
	RoomKind  domain.ResourceKind
	Date      time.Time
	StartTime types.TimeString
	EndTime   types.TimeString
	Rooms     []RoomAvailability
}

// RoomAvailability результат по одному кабинету
type RoomAvailability struct {
	RoomID      int64
	Name        string
	SortOrder   int
	IsAvailable bool
	Reason      string
}

// maxParallelChecks ограничение параллельных проверок кабинетов
const maxParallelChecks = 4
