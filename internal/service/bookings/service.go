package bookings

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-ClinicBooking/internal/domain"
	appointmentRepo "github.com/m04kA/SMC-ClinicBooking/internal/infra/storage/appointment"
	roomBookingRepo "github.com/m04kA/SMC-ClinicBooking/internal/infra/storage/roombooking"
	"github.com/m04kA/SMC-ClinicBooking/internal/service/bookings/models"
)

// Service сервис чтения пар записей бронирования
type Service struct {
	appointments AppointmentRepository
	roomBookings RoomBookingRepository
	logger       Logger
}

// NewService создает новый экземпляр сервиса бронирований
func NewService(appointments AppointmentRepository, roomBookings RoomBookingRepository, logger Logger) *Service {
	return &Service{
		appointments: appointments,
		roomBookings: roomBookings,
		logger:       logger,
	}
}

// GetPair загружает прием и специализированную запись по id любой из них
// Внутри транзакции записи читаются с блокировкой строк
// Отсутствующая половина пары возвращается как nil, проверку согласованности делает вызывающий
func (s *Service) GetPair(ctx context.Context, source Source, id int64) (*domain.BookingPair, error) {
	if id <= 0 {
		return nil, fmt.Errorf("%w: id must be positive", ErrInvalidInput)
	}

	if source.IsAppointment() {
		return s.pairByAppointment(ctx, id)
	}
	return s.pairByRoomBooking(ctx, source.BookingKind(), id)
}

func (s *Service) pairByAppointment(ctx context.Context, id int64) (*domain.BookingPair, error) {
	appt, err := s.appointments.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, appointmentRepo.ErrAppointmentNotFound) {
			return nil, fmt.Errorf("%w: appointment id=%d", ErrBookingNotFound, id)
		}
		s.logger.Error("GetPair: failed to load appointment id=%d: %v", id, err)
		return nil, fmt.Errorf("%w: GetPair - load appointment: %v", ErrInternal, err)
	}

	pair := &domain.BookingPair{Appointment: appt}
	if !appt.Kind.HasRoomBooking() {
		return pair, nil
	}

	room, err := s.roomBookings.GetByAppointmentID(ctx, appt.Kind, appt.ID)
	switch {
	case err == nil:
		pair.Room = room
	case errors.Is(err, roomBookingRepo.ErrRoomBookingNotFound):
		s.logger.Warn("GetPair: appointment id=%d has no %s room booking", appt.ID, appt.Kind)
	default:
		s.logger.Error("GetPair: failed to load room booking for appointment id=%d: %v", appt.ID, err)
		return nil, fmt.Errorf("%w: GetPair - load room booking: %v", ErrInternal, err)
	}

	return pair, nil
}

func (s *Service) pairByRoomBooking(ctx context.Context, kind domain.BookingKind, id int64) (*domain.BookingPair, error) {
	room, err := s.roomBookings.GetByID(ctx, kind, id)
	if err != nil {
		if errors.Is(err, roomBookingRepo.ErrRoomBookingNotFound) {
			return nil, fmt.Errorf("%w: %s room booking id=%d", ErrBookingNotFound, kind, id)
		}
		s.logger.Error("GetPair: failed to load %s room booking id=%d: %v", kind, id, err)
		return nil, fmt.Errorf("%w: GetPair - load room booking: %v", ErrInternal, err)
	}

	pair := &domain.BookingPair{Room: room}
	if room.AppointmentID == nil {
		s.logger.Warn("GetPair: %s room booking id=%d has no appointment reference", kind, id)
		return pair, nil
	}

	appt, err := s.appointments.GetByID(ctx, *room.AppointmentID)
	switch {
	case err == nil:
		pair.Appointment = appt
	case errors.Is(err, appointmentRepo.ErrAppointmentNotFound):
		s.logger.Warn("GetPair: appointment id=%d referenced by %s room booking id=%d is missing",
			*room.AppointmentID, kind, id)
	default:
		s.logger.Error("GetPair: failed to load appointment id=%d: %v", *room.AppointmentID, err)
		return nil, fmt.Errorf("%w: GetPair - load appointment: %v", ErrInternal, err)
	}

	return pair, nil
}

// GetBooking возвращает пару в виде ответа API
func (s *Service) GetBooking(ctx context.Context, source Source, id int64) (*models.BookingPairResponse, error) {
	s.logger.Info("GetBooking: source=%s id=%d", source, id)

	pair, err := s.GetPair(ctx, source, id)
	if err != nil {
		return nil, err
	}

	if !pair.IsConsistent() {
		s.logger.Warn("GetBooking: pair for %s id=%d is inconsistent", source, id)
	}

	return models.FromDomainPair(pair), nil
}
