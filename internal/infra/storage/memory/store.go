package memory

import (
	"context"
	"sync"
	"time"

	"github.com/m04kA/SMC-ClinicBooking/internal/domain"
)

// Store хранилище в памяти процесса с теми же контрактами, что и Postgres-репозитории
// Транзакции сериализуются и откатываются восстановлением снимка
type Store struct {
	mu   sync.RWMutex
	txMu sync.Mutex

	appointments  map[int64]*domain.Appointment
	roomBookings  map[domain.BookingKind]map[int64]*domain.RoomBooking
	professionals map[int64]*domain.Professional
	rooms         map[int64]*domain.Room
	repairs       map[int64]*domain.RepairTask

	nextAppointmentID int64
	nextRoomBookingID map[domain.BookingKind]int64
	nextRepairID      int64

	now func() time.Time
}

// NewStore создает пустое хранилище
func NewStore() *Store {
	return &Store{
		appointments: make(map[int64]*domain.Appointment),
		roomBookings: map[domain.BookingKind]map[int64]*domain.RoomBooking{
			domain.KindWellness:  make(map[int64]*domain.RoomBooking),
			domain.KindTreatment: make(map[int64]*domain.RoomBooking),
		},
		professionals:     make(map[int64]*domain.Professional),
		rooms:             make(map[int64]*domain.Room),
		repairs:           make(map[int64]*domain.RepairTask),
		nextRoomBookingID: make(map[domain.BookingKind]int64),
		now:               time.Now,
	}
}

// SetClock подменяет источник времени (для тестов)
func (s *Store) SetClock(now func() time.Time) {
	s.now = now
}

// Appointments репозиторий приемов
func (s *Store) Appointments() *Appointments {
	return &Appointments{s: s}
}

// RoomBookings репозиторий бронирований кабинетов
func (s *Store) RoomBookings() *RoomBookings {
	return &RoomBookings{s: s}
}

// Resources справочник специалистов и кабинетов
func (s *Store) Resources() *Resources {
	return &Resources{s: s}
}

// Repairs очередь задач восстановления
func (s *Store) Repairs() *Repairs {
	return &Repairs{s: s}
}

// TxManager менеджер транзакций хранилища
func (s *Store) TxManager() *TxManager {
	return &TxManager{s: s}
}

// AddProfessional добавляет специалиста в справочник
func (s *Store) AddProfessional(p domain.Professional) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.professionals[p.ID] = &p
}

// AddRoom добавляет кабинет в справочник
func (s *Store) AddRoom(r domain.Room) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rooms[r.ID] = &r
}

type txKey struct{}

func inTx(ctx context.Context) bool {
	_, ok := ctx.Value(txKey{}).(bool)
	return ok
}

// write выполняет изменение; вне транзакции изменение тоже сериализуется с транзакциями,
// чтобы откат снимка не затирал чужие записи
func (s *Store) write(ctx context.Context, fn func() error) error {
	if !inTx(ctx) {
		s.txMu.Lock()
		defer s.txMu.Unlock()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn()
}

func (s *Store) read(fn func()) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn()
}

type snapshot struct {
	appointments      map[int64]domain.Appointment
	roomBookings      map[domain.BookingKind]map[int64]domain.RoomBooking
	repairs           map[int64]domain.RepairTask
	nextAppointmentID int64
	nextRoomBookingID map[domain.BookingKind]int64
	nextRepairID      int64
}

func (s *Store) snapshot() snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := snapshot{
		appointments:      make(map[int64]domain.Appointment, len(s.appointments)),
		roomBookings:      make(map[domain.BookingKind]map[int64]domain.RoomBooking, len(s.roomBookings)),
		repairs:           make(map[int64]domain.RepairTask, len(s.repairs)),
		nextAppointmentID: s.nextAppointmentID,
		nextRoomBookingID: make(map[domain.BookingKind]int64, len(s.nextRoomBookingID)),
		nextRepairID:      s.nextRepairID,
	}
	for id, a := range s.appointments {
		snap.appointments[id] = *a
	}
	for kind, table := range s.roomBookings {
		copied := make(map[int64]domain.RoomBooking, len(table))
		for id, b := range table {
			copied[id] = *b
		}
		snap.roomBookings[kind] = copied
	}
	for id, t := range s.repairs {
		snap.repairs[id] = *t
	}
	for kind, next := range s.nextRoomBookingID {
		snap.nextRoomBookingID[kind] = next
	}
	return snap
}

func (s *Store) restore(snap snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.appointments = make(map[int64]*domain.Appointment, len(snap.appointments))
	for id, a := range snap.appointments {
		a := a
		s.appointments[id] = &a
	}
	s.roomBookings = make(map[domain.BookingKind]map[int64]*domain.RoomBooking, len(snap.roomBookings))
	for kind, table := range snap.roomBookings {
		restored := make(map[int64]*domain.RoomBooking, len(table))
		for id, b := range table {
			b := b
			restored[id] = &b
		}
		s.roomBookings[kind] = restored
	}
	s.repairs = make(map[int64]*domain.RepairTask, len(snap.repairs))
	for id, t := range snap.repairs {
		t := t
		s.repairs[id] = &t
	}
	s.nextAppointmentID = snap.nextAppointmentID
	s.nextRoomBookingID = snap.nextRoomBookingID
	s.nextRepairID = snap.nextRepairID
}

func sameDay(a, b time.Time) bool {
	y1, m1, d1 := a.Date()
	y2, m2, d2 := b.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}
