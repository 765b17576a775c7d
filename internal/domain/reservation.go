package domain

import "fmt"

// ReservationState состояние операции бронирования
type ReservationState string

const (
	ReservationDraft      ReservationState = "draft"
	ReservationValidating ReservationState = "validating"
	ReservationCommitted  ReservationState = "committed"
	ReservationRejected   ReservationState = "rejected"
	ReservationCancelled  ReservationState = "cancelled"
)

var reservationTransitions = map[ReservationState][]ReservationState{
	ReservationDraft:      {ReservationValidating},
	ReservationValidating: {ReservationCommitted, ReservationRejected},
	ReservationCommitted:  {ReservationCancelled},
}

// Reservation автомат одной операции координатора
type Reservation struct {
	state  ReservationState
	reason error
}

// NewReservation создает бронирование в состоянии Draft
func NewReservation() *Reservation {
	return &Reservation{state: ReservationDraft}
}

// CommittedReservation восстанавливает автомат для уже записанного бронирования
func CommittedReservation() *Reservation {
	return &Reservation{state: ReservationCommitted}
}

// State текущее состояние
func (r *Reservation) State() ReservationState {
	return r.state
}

// Reason причина отказа для Rejected
func (r *Reservation) Reason() error {
	return r.reason
}

func (r *Reservation) transition(to ReservationState) error {
	for _, allowed := range reservationTransitions[r.state] {
		if allowed == to {
			r.state = to
			return nil
		}
	}
	return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, r.state, to)
}

// Validate Draft -> Validating
func (r *Reservation) Validate() error {
	return r.transition(ReservationValidating)
}

// Commit Validating -> Committed
func (r *Reservation) Commit() error {
	return r.transition(ReservationCommitted)
}

// Reject Validating -> Rejected с причиной
func (r *Reservation) Reject(reason error) error {
	if err := r.transition(ReservationRejected); err != nil {
		return err
	}
	r.reason = reason
	return nil
}

// Cancel Committed -> Cancelled
func (r *Reservation) Cancel() error {
	return r.transition(ReservationCancelled)
}
