package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-ClinicBooking/pkg/types"
)

var (
	testDate = time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	testRoom = ResourceRef{Kind: ResourceWellnessRoom, ID: 1}
)

func mustInterval(t *testing.T, id int64, start, end string, buffer int, status BookingStatus) BookingInterval {
	t.Helper()
	iv, err := NewBookingInterval(id, testRoom, testDate, types.TimeString(start), types.TimeString(end), buffer, status)
	require.NoError(t, err)
	return iv
}

func TestFindConflicts_BufferAsymmetry(t *testing.T) {
	existing := []BookingInterval{mustInterval(t, 1, "10:00", "10:30", 15, StatusConfirmed)}

	afterSession := mustInterval(t, 0, "10:30", "10:45", 0, StatusPending)
	conflicts := FindConflicts(afterSession, existing, 0)
	require.Len(t, conflicts, 1)
	assert.Equal(t, ConflictBuffer, conflicts[0].Kind)
	assert.Equal(t, int64(1), conflicts[0].Existing.BookingID)

	beforeSession := mustInterval(t, 0, "09:45", "10:00", 0, StatusPending)
	assert.Empty(t, FindConflicts(beforeSession, existing, 0))

	afterBuffer := mustInterval(t, 0, "10:45", "11:15", 15, StatusPending)
	assert.Empty(t, FindConflicts(afterBuffer, existing, 0))
}

func TestFindConflicts_ReportsAll(t *testing.T) {
	existing := []BookingInterval{
		mustInterval(t, 1, "10:00", "10:30", 15, StatusConfirmed),
		mustInterval(t, 2, "11:00", "11:30", 15, StatusPending),
		mustInterval(t, 3, "10:40", "10:55", 0, StatusCancelled),
		mustInterval(t, 4, "12:00", "12:30", 15, StatusConfirmed),
	}

	candidate := mustInterval(t, 0, "10:20", "11:10", 0, StatusPending)
	conflicts := FindConflicts(candidate, existing, 0)

	require.Len(t, conflicts, 2)
	assert.Equal(t, int64(1), conflicts[0].Existing.BookingID)
	assert.Equal(t, ConflictSession, conflicts[0].Kind)
	assert.Equal(t, int64(2), conflicts[1].Existing.BookingID)
	assert.Equal(t, ConflictSession, conflicts[1].Kind)
}

func TestFindConflicts_ExcludeSelf(t *testing.T) {
	existing := []BookingInterval{mustInterval(t, 7, "10:00", "10:30", 15, StatusConfirmed)}
	same := mustInterval(t, 7, "10:00", "10:30", 15, StatusConfirmed)

	assert.NotEmpty(t, FindConflicts(same, existing, 0))
	assert.Empty(t, FindConflicts(same, existing, 7))
}

func TestFindConflicts_SecondWellnessBookingRejected(t *testing.T) {
	first := mustInterval(t, 1, "10:00", "10:30", 15, StatusConfirmed)
	second := mustInterval(t, 0, "10:20", "10:50", 15, StatusPending)

	conflicts := FindConflicts(second, []BookingInterval{first}, 0)
	require.Len(t, conflicts, 1)

	err := error(&ConflictError{Resource: testRoom, Conflicts: conflicts})
	assert.True(t, errors.Is(err, ErrConflict))

	var conflictErr *ConflictError
	require.True(t, errors.As(err, &conflictErr))
	assert.Equal(t, int64(1), conflictErr.Conflicts[0].Existing.BookingID)
	assert.Contains(t, err.Error(), "10:00-10:30")
}

// Любой набор, принятый детектором по одному, попарно не пересекается с учетом буферов
func TestFindConflicts_AcceptedSetNeverOverlaps(t *testing.T) {
	accepted := make([]BookingInterval, 0)
	var nextID int64 = 1

	for start := 8 * 60; start < 19*60; start += 5 {
		for _, duration := range []int{15, 30, 45} {
			if start+duration > 19*60 {
				continue
			}
			candidate := BookingInterval{
				BookingID:   nextID,
				Resource:    testRoom,
				Date:        testDate,
				Span:        Interval{Start: start, End: start + duration},
				BufferAfter: 15,
				Status:      StatusConfirmed,
			}
			if len(FindConflicts(candidate, accepted, 0)) == 0 {
				accepted = append(accepted, candidate)
				nextID++
			}
		}
	}

	require.NotEmpty(t, accepted)
	for i := range accepted {
		for j := i + 1; j < len(accepted); j++ {
			assert.False(t, Overlaps(accepted[i].Expanded(), accepted[j].Expanded()),
				"bookings %d and %d overlap", accepted[i].BookingID, accepted[j].BookingID)
		}
	}
}
