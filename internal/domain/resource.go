package domain

import (
	"fmt"
	"time"

	"github.com/m04kA/SMC-ClinicBooking/pkg/types"
)

// ResourceKind вид бронируемого ресурса
type ResourceKind string

const (
	ResourceProfessional     ResourceKind = "professional"
	ResourceConsultationRoom ResourceKind = "consultation_room"
	ResourceWellnessRoom     ResourceKind = "wellness_room"
	ResourceTreatmentRoom    ResourceKind = "treatment_room"
)

// Valid returns true for a known resource kind
func (k ResourceKind) Valid() bool {
	return k == ResourceProfessional || k.IsRoom()
}

// IsRoom true для любых кабинетов
func (k ResourceKind) IsRoom() bool {
	return k == ResourceConsultationRoom || k == ResourceWellnessRoom || k == ResourceTreatmentRoom
}

// ResourceRef ссылка на ресурс
type ResourceRef struct {
	Kind ResourceKind
	ID   int64
}

func (r ResourceRef) String() string {
	return fmt.Sprintf("%s:%d", r.Kind, r.ID)
}

// DaySchedule рабочие часы на один день недели
type DaySchedule struct {
	IsOpen    bool
	OpenTime  types.TimeString
	CloseTime types.TimeString
}

// WeeklySchedule расписание специалиста по дням недели
// Отсутствие ключа означает, что для дня расписание не настроено
type WeeklySchedule map[time.Weekday]DaySchedule

// ForDay возвращает расписание на день недели даты
func (w WeeklySchedule) ForDay(date time.Time) (DaySchedule, bool) {
	if w == nil {
		return DaySchedule{}, false
	}
	day, ok := w[date.Weekday()]
	return day, ok
}

// Professional специалист клиники
type Professional struct {
	ID       int64
	Name     string
	Active   bool
	Schedule WeeklySchedule
}

// Ref returns the resource reference
func (p *Professional) Ref() ResourceRef {
	return ResourceRef{Kind: ResourceProfessional, ID: p.ID}
}

// Room кабинет. Открыт все рабочее время клиники, если не занят
type Room struct {
	ID        int64
	Kind      ResourceKind
	Name      string
	Active    bool
	SortOrder int
}

// Ref returns the resource reference
func (r *Room) Ref() ResourceRef {
	return ResourceRef{Kind: r.Kind, ID: r.ID}
}

// Resource полиморфное представление ресурса для проверки доступности
type Resource struct {
	Ref      ResourceRef
	Name     string
	Active   bool
	Schedule WeeklySchedule // только у специалистов
}

// ResourceFromProfessional converts a professional into a resource
func ResourceFromProfessional(p *Professional) *Resource {
	return &Resource{Ref: p.Ref(), Name: p.Name, Active: p.Active, Schedule: p.Schedule}
}

// ResourceFromRoom converts a room into a resource
func ResourceFromRoom(r *Room) *Resource {
	return &Resource{Ref: r.Ref(), Name: r.Name, Active: r.Active}
}
