package domain

import "fmt"

// ServiceType вид услуги
type ServiceType string

const (
	ServiceConsultation    ServiceType = "consultation"
	ServiceColdBath        ServiceType = "cold_bath"
	ServiceInfraredSauna   ServiceType = "infrared_sauna"
	ServiceCombinedTherapy ServiceType = "combined_therapy"
	ServiceFacial          ServiceType = "facial"
	ServiceMassage         ServiceType = "massage"
)

// ServicePolicy правила бронирования для вида услуги
type ServicePolicy struct {
	Kind                   BookingKind
	RoomKind               ResourceKind
	DefaultDurationMinutes int
	BufferAfterMinutes     int
	RequiresProfessional   bool
}

var servicePolicies = map[ServiceType]ServicePolicy{
	ServiceConsultation: {
		Kind:                   KindConsultation,
		RoomKind:               ResourceConsultationRoom,
		DefaultDurationMinutes: 30,
		RequiresProfessional:   true,
	},
	ServiceColdBath: {
		Kind:                   KindWellness,
		RoomKind:               ResourceWellnessRoom,
		DefaultDurationMinutes: 30,
		BufferAfterMinutes:     DefaultWellnessPreparationMinutes,
	},
	ServiceInfraredSauna: {
		Kind:                   KindWellness,
		RoomKind:               ResourceWellnessRoom,
		DefaultDurationMinutes: 30,
		BufferAfterMinutes:     DefaultWellnessPreparationMinutes,
	},
	ServiceCombinedTherapy: {
		Kind:                   KindWellness,
		RoomKind:               ResourceWellnessRoom,
		DefaultDurationMinutes: 45,
		BufferAfterMinutes:     DefaultWellnessPreparationMinutes,
	},
	ServiceFacial: {
		Kind:                   KindTreatment,
		RoomKind:               ResourceTreatmentRoom,
		DefaultDurationMinutes: 60,
		RequiresProfessional:   true,
	},
	ServiceMassage: {
		Kind:                   KindTreatment,
		RoomKind:               ResourceTreatmentRoom,
		DefaultDurationMinutes: 60,
		RequiresProfessional:   true,
	},
}

// ParseServiceType проверяет и возвращает вид услуги
func ParseServiceType(s string) (ServiceType, error) {
	t := ServiceType(s)
	if _, ok := servicePolicies[t]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownServiceType, s)
	}
	return t, nil
}

// Policy возвращает правила по умолчанию для вида услуги
func (t ServiceType) Policy() (ServicePolicy, error) {
	p, ok := servicePolicies[t]
	if !ok {
		return ServicePolicy{}, fmt.Errorf("%w: %q", ErrUnknownServiceType, string(t))
	}
	return p, nil
}

// WithPreparation заменяет время подготовки для wellness-услуг
// Для остальных видов буфер всегда нулевой
func (p ServicePolicy) WithPreparation(minutes int) ServicePolicy {
	if p.Kind == KindWellness {
		p.BufferAfterMinutes = minutes
	}
	return p
}
