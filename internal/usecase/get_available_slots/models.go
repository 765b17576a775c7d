package get_available_slots

import (
	"time"

	"github.com/m04kA/SMC-ClinicBooking/internal/domain"
	"github.com/m04kA/SMC-ClinicBooking/pkg/types"
)

// ReasonPast слот уже начался
const ReasonPast = "past"

// Request модель запроса на получение слотов ресурса
type Request struct {
	Resource        domain.ResourceRef
	Date            time.Time           // дата без времени
	ServiceType     *domain.ServiceType // задает длительность и подготовку
	DurationMinutes int                 // 0 означает длительность услуги или шаг сетки
	ExcludeID       int64               // id переносимого бронирования
}

// Response сетка слотов на день
type Response struct {
	Resource domain.ResourceRef
	Date     time.Time
	Slots    []Slot
}

// Slot один слот сетки и результат проверки доступности
type Slot struct {
	StartTime       types.TimeString
	EndTime         types.TimeString
	DurationMinutes int
	Available       bool
	Reason          string
}

// Options параметры сетки
type Options struct {
	OpenTime            types.TimeString
	CloseTime           types.TimeString
	ClinicalStepMinutes int
	WellnessStepMinutes int
	PreparationMinutes  int
}
