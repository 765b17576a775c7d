package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/m04kA/SMC-ClinicBooking/internal/domain"
	"github.com/m04kA/SMC-ClinicBooking/internal/infra/storage/appointment"
	"github.com/m04kA/SMC-ClinicBooking/pkg/ptr"
)

// Appointments приемы в памяти, повторяют поведение appointment.Repository
type Appointments struct {
	s *Store
}

func (r *Appointments) Create(ctx context.Context, a *domain.Appointment) (*domain.Appointment, error) {
	err := r.s.write(ctx, func() error {
		if err := r.s.checkAppointmentOverlap(a); err != nil {
			return err
		}
		r.s.nextAppointmentID++
		now := r.s.now()
		a.ID = r.s.nextAppointmentID
		a.CreatedAt = now
		a.UpdatedAt = now
		stored := *a
		r.s.appointments[a.ID] = &stored
		return nil
	})
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (r *Appointments) GetByID(ctx context.Context, id int64) (*domain.Appointment, error) {
	var result *domain.Appointment
	r.s.read(func() {
		if a, ok := r.s.appointments[id]; ok {
			copied := *a
			result = &copied
		}
	})
	if result == nil {
		return nil, appointment.ErrAppointmentNotFound
	}
	return result, nil
}

func (r *Appointments) ListActiveForResource(ctx context.Context, ref domain.ResourceRef, date time.Time) ([]*domain.Appointment, error) {
	result := make([]*domain.Appointment, 0)
	r.s.read(func() {
		for _, a := range r.s.appointments {
			if !a.IsActive() || !sameDay(a.Date, date) || !occupies(a, ref) {
				continue
			}
			copied := *a
			result = append(result, &copied)
		}
	})
	sort.Slice(result, func(i, j int) bool { return result[i].StartTime.IsBefore(result[j].StartTime) })
	return result, nil
}

func (r *Appointments) UpdateSchedule(ctx context.Context, a *domain.Appointment) error {
	return r.s.write(ctx, func() error {
		stored, ok := r.s.appointments[a.ID]
		if !ok {
			return appointment.ErrAppointmentNotFound
		}
		if err := r.s.checkAppointmentOverlap(a); err != nil {
			return err
		}
		stored.ServiceID = a.ServiceID
		stored.SubServiceID = a.SubServiceID
		stored.ServiceType = a.ServiceType
		stored.ProfessionalID = a.ProfessionalID
		stored.RoomID = a.RoomID
		stored.Date = a.Date
		stored.StartTime = a.StartTime
		stored.EndTime = a.EndTime
		stored.DurationMinutes = a.DurationMinutes
		stored.Amount = a.Amount
		stored.Notes = a.Notes
		stored.UpdatedAt = r.s.now()
		return nil
	})
}

func (r *Appointments) Cancel(ctx context.Context, id int64, reason string) error {
	return r.s.write(ctx, func() error {
		stored, ok := r.s.appointments[id]
		if !ok {
			return appointment.ErrAppointmentNotFound
		}
		now := r.s.now()
		stored.Status = domain.StatusCancelled
		stored.CancellationReason = ptr.Ptr(reason)
		stored.CancelledAt = ptr.Ptr(now)
		stored.UpdatedAt = now
		return nil
	})
}

// occupies true, если прием занимает ресурс
func occupies(a *domain.Appointment, ref domain.ResourceRef) bool {
	switch ref.Kind {
	case domain.ResourceProfessional:
		return a.ProfessionalID != nil && *a.ProfessionalID == ref.ID
	case domain.ResourceConsultationRoom:
		return a.Kind == domain.KindConsultation && a.RoomID != nil && *a.RoomID == ref.ID
	default:
		return false
	}
}

// checkAppointmentOverlap повторяет EXCLUDE-ограничения таблицы appointments
// Вызывается под s.mu
func (s *Store) checkAppointmentOverlap(candidate *domain.Appointment) error {
	if !candidate.IsActive() {
		return nil
	}
	span, err := domain.IntervalBetween(candidate.StartTime, candidate.EndTime)
	if err != nil {
		return fmt.Errorf("%w: %v", appointment.ErrExecQuery, err)
	}

	refs := make([]domain.ResourceRef, 0, 2)
	if candidate.ProfessionalID != nil {
		refs = append(refs, domain.ResourceRef{Kind: domain.ResourceProfessional, ID: *candidate.ProfessionalID})
	}
	if candidate.Kind == domain.KindConsultation && candidate.RoomID != nil {
		refs = append(refs, domain.ResourceRef{Kind: domain.ResourceConsultationRoom, ID: *candidate.RoomID})
	}

	for _, existing := range s.appointments {
		if existing.ID == candidate.ID || !existing.IsActive() || !sameDay(existing.Date, candidate.Date) {
			continue
		}
		for _, ref := range refs {
			if !occupies(existing, ref) {
				continue
			}
			other, err := domain.IntervalBetween(existing.StartTime, existing.EndTime)
			if err != nil {
				continue
			}
			if domain.Overlaps(span, other) {
				return fmt.Errorf("%w: %s with appointment id=%d", appointment.ErrOverlap, ref, existing.ID)
			}
		}
	}
	return nil
}
