package cancel_booking

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-ClinicBooking/internal/domain"
	"github.com/m04kA/SMC-ClinicBooking/internal/service/bookings"
	cancelBooking "github.com/m04kA/SMC-ClinicBooking/internal/usecase/cancel_booking"
	"github.com/m04kA/SMC-ClinicBooking/pkg/logger"
)

type fakeUseCase struct {
	got  *cancelBooking.Request
	resp *cancelBooking.Response
	err  error
}

func (f *fakeUseCase) Execute(_ context.Context, req *cancelBooking.Request) (*cancelBooking.Response, error) {
	f.got = req
	return f.resp, f.err
}

func doRequest(h *Handler, kind, id, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPatch, "/api/v1/bookings/"+kind+"/"+id+"/cancel", strings.NewReader(body))
	req = mux.SetURLVars(req, map[string]string{"kind": kind, "bookingId": id})
	rec := httptest.NewRecorder()
	h.Handle(rec, req)
	return rec
}

func TestHandle_Cancelled(t *testing.T) {
	uc := &fakeUseCase{resp: &cancelBooking.Response{
		Appointment: &domain.Appointment{ID: 3, Kind: domain.KindConsultation, Status: domain.StatusCancelled},
	}}
	h := NewHandler(uc, logger.NewNop())

	rec := doRequest(h, "consultation", "3", `{"cancellationReason":"sick"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, bookings.SourceConsultation, uc.got.Source)
	assert.Equal(t, int64(3), uc.got.ID)
	assert.Equal(t, "sick", uc.got.Reason)
}

func TestHandle_EmptyBody(t *testing.T) {
	uc := &fakeUseCase{resp: &cancelBooking.Response{}}
	h := NewHandler(uc, logger.NewNop())

	rec := doRequest(h, "wellness", "8", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, uc.got.Reason)
}

func TestHandle_PartialWrite(t *testing.T) {
	uc := &fakeUseCase{err: &domain.PartialWriteError{
		Operation:     "cancel",
		AppointmentID: 4,
		RoomBookingID: 9,
		Completed:     "room_booking",
		Failed:        "appointment",
		Err:           errors.New("connection refused"),
	}}
	h := NewHandler(uc, logger.NewNop())

	rec := doRequest(h, "treatment", "9", "")
	require.Equal(t, http.StatusAccepted, rec.Code)

	var body PartialCancelResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.False(t, body.Consistent)
	assert.Equal(t, "appointment", body.Failed)
	assert.Equal(t, int64(9), body.RoomBookingID)
}

func TestHandle_Errors(t *testing.T) {
	tests := []struct {
		name string
		kind string
		id   string
		err  error
		want int
	}{
		{"bad kind", "spa", "1", nil, http.StatusBadRequest},
		{"bad id", "wellness", "x", nil, http.StatusBadRequest},
		{"not found", "wellness", "1", cancelBooking.ErrBookingNotFound, http.StatusNotFound},
		{"completed", "wellness", "1", cancelBooking.ErrCannotCancel, http.StatusBadRequest},
		{"internal", "wellness", "1", cancelBooking.ErrInternal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHandler(&fakeUseCase{err: tt.err, resp: &cancelBooking.Response{}}, logger.NewNop())
			rec := doRequest(h, tt.kind, tt.id, "")
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}
