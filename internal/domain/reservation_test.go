package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReservation_HappyPath(t *testing.T) {
	r := NewReservation()
	assert.Equal(t, ReservationDraft, r.State())

	require.NoError(t, r.Validate())
	require.NoError(t, r.Commit())
	require.NoError(t, r.Cancel())
	assert.Equal(t, ReservationCancelled, r.State())
}

func TestReservation_Reject(t *testing.T) {
	r := NewReservation()
	require.NoError(t, r.Validate())
	require.NoError(t, r.Reject(ErrConflict))

	assert.Equal(t, ReservationRejected, r.State())
	assert.ErrorIs(t, r.Reason(), ErrConflict)
	assert.ErrorIs(t, r.Cancel(), ErrInvalidTransition)
}

func TestReservation_IllegalTransitions(t *testing.T) {
	assert.ErrorIs(t, NewReservation().Commit(), ErrInvalidTransition)
	assert.ErrorIs(t, NewReservation().Cancel(), ErrInvalidTransition)

	committed := CommittedReservation()
	assert.ErrorIs(t, committed.Validate(), ErrInvalidTransition)
	require.NoError(t, committed.Cancel())
	assert.ErrorIs(t, committed.Cancel(), ErrInvalidTransition)
}
