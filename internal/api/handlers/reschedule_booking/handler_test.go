package reschedule_booking

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-ClinicBooking/internal/domain"
	"github.com/m04kA/SMC-ClinicBooking/internal/service/bookings"
	rescheduleBooking "github.com/m04kA/SMC-ClinicBooking/internal/usecase/reschedule_booking"
	"github.com/m04kA/SMC-ClinicBooking/pkg/logger"
	"github.com/m04kA/SMC-ClinicBooking/pkg/ptr"
	"github.com/m04kA/SMC-ClinicBooking/pkg/types"
)

type fakeUseCase struct {
	got  *rescheduleBooking.Request
	resp *rescheduleBooking.Response
	err  error
}

func (f *fakeUseCase) Execute(_ context.Context, req *rescheduleBooking.Request) (*rescheduleBooking.Response, error) {
	f.got = req
	return f.resp, f.err
}

func doRequest(h *Handler, kind, id, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPatch, "/api/v1/bookings/"+kind+"/"+id, strings.NewReader(body))
	req = mux.SetURLVars(req, map[string]string{"kind": kind, "bookingId": id})
	rec := httptest.NewRecorder()
	h.Handle(rec, req)
	return rec
}

func TestHandle_Rescheduled(t *testing.T) {
	date := time.Date(2026, 3, 3, 0, 0, 0, 0, time.UTC)
	uc := &fakeUseCase{resp: &rescheduleBooking.Response{
		Appointment: &domain.Appointment{
			ID:        12,
			Kind:      domain.KindWellness,
			Date:      date,
			StartTime: types.MustTimeString("11:00"),
			EndTime:   types.MustTimeString("11:30"),
			Status:    domain.StatusConfirmed,
		},
		RoomBooking: &domain.RoomBooking{
			ID:            4,
			Kind:          domain.KindWellness,
			AppointmentID: ptr.Ptr(int64(12)),
			Date:          date,
			StartTime:     types.MustTimeString("11:00"),
			EndTime:       types.MustTimeString("11:30"),
			Status:        domain.StatusConfirmed,
		},
	}}
	h := NewHandler(uc, logger.NewNop())

	rec := doRequest(h, "wellness", "4", `{"date":"2026-03-03","startTime":"11:00"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	require.NotNil(t, uc.got)
	assert.Equal(t, bookings.SourceWellness, uc.got.Source)
	assert.Equal(t, int64(4), uc.got.ID)
	require.NotNil(t, uc.got.Date)
	assert.True(t, date.Equal(*uc.got.Date))
	require.NotNil(t, uc.got.StartTime)
	assert.Equal(t, types.MustTimeString("11:00"), *uc.got.StartTime)
	assert.Nil(t, uc.got.ServiceType)
	assert.Nil(t, uc.got.DurationMinutes)
}

func TestHandle_ParseErrors(t *testing.T) {
	h := NewHandler(&fakeUseCase{}, logger.NewNop())

	tests := []struct {
		name string
		kind string
		id   string
		body string
		msg  string
	}{
		{name: "unknown kind", kind: "spa", id: "1", body: `{}`, msg: msgInvalidKind},
		{name: "bad id", kind: "wellness", id: "abc", body: `{}`, msg: msgInvalidBookingID},
		{name: "broken json", kind: "wellness", id: "1", body: `{`, msg: msgInvalidRequestBody},
		{name: "unknown field", kind: "wellness", id: "1", body: `{"kind":"treatment"}`, msg: msgInvalidRequestBody},
		{name: "bad date", kind: "wellness", id: "1", body: `{"date":"03.03.2026"}`, msg: msgInvalidDate},
		{name: "bad time", kind: "wellness", id: "1", body: `{"startTime":"25:00"}`, msg: msgInvalidTime},
		{name: "bad service", kind: "wellness", id: "1", body: `{"serviceType":"yoga"}`, msg: msgInvalidServiceType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(h, tt.kind, tt.id, tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.msg)
		})
	}
}

func TestHandle_ErrorMapping(t *testing.T) {
	conflict := &domain.ConflictError{
		Resource: domain.ResourceRef{Kind: domain.ResourceTreatmentRoom, ID: 2},
		Conflicts: []domain.Conflict{{
			Existing: domain.BookingInterval{BookingID: 7, Span: domain.Interval{Start: 600, End: 660}},
			Kind:     domain.ConflictSession,
		}},
	}

	tests := []struct {
		name   string
		err    error
		status int
	}{
		{name: "conflict", err: conflict, status: http.StatusConflict},
		{name: "closing time", err: domain.ErrClosingTimeExceeded, status: http.StatusUnprocessableEntity},
		{name: "lookup failed", err: domain.ErrLookupFailed, status: http.StatusServiceUnavailable},
		{name: "invalid input", err: rescheduleBooking.ErrInvalidInput, status: http.StatusBadRequest},
		{name: "not found", err: rescheduleBooking.ErrBookingNotFound, status: http.StatusNotFound},
		{name: "cannot reschedule", err: rescheduleBooking.ErrCannotReschedule, status: http.StatusConflict},
		{name: "inconsistent pair", err: rescheduleBooking.ErrInconsistentPair, status: http.StatusConflict},
		{name: "room not found", err: rescheduleBooking.ErrRoomNotFound, status: http.StatusNotFound},
		{name: "resource busy", err: rescheduleBooking.ErrResourceBusy, status: http.StatusConflict},
		{name: "internal", err: errors.New("boom"), status: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHandler(&fakeUseCase{err: tt.err}, logger.NewNop())
			rec := doRequest(h, "treatment", "2", `{"startTime":"10:00"}`)
			assert.Equal(t, tt.status, rec.Code)
		})
	}
}
