package get_booking

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-ClinicBooking/internal/service/bookings"
	"github.com/m04kA/SMC-ClinicBooking/internal/service/bookings/models"
	"github.com/m04kA/SMC-ClinicBooking/pkg/logger"
)

type fakeService struct {
	source bookings.Source
	id     int64
	resp   *models.BookingPairResponse
	err    error
}

func (f *fakeService) GetBooking(_ context.Context, source bookings.Source, id int64) (*models.BookingPairResponse, error) {
	f.source = source
	f.id = id
	return f.resp, f.err
}

func doRequest(h *Handler, kind, id string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/bookings/"+kind+"/"+id, nil)
	req = mux.SetURLVars(req, map[string]string{"kind": kind, "bookingId": id})
	rec := httptest.NewRecorder()
	h.Handle(rec, req)
	return rec
}

func TestHandle_Found(t *testing.T) {
	svc := &fakeService{resp: &models.BookingPairResponse{Consistent: true}}
	h := NewHandler(svc, logger.NewNop())

	rec := doRequest(h, "appointment", "15")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, bookings.SourceAppointment, svc.source)
	assert.Equal(t, int64(15), svc.id)
	assert.Contains(t, rec.Body.String(), `"consistent":true`)
}

func TestHandle_Errors(t *testing.T) {
	tests := []struct {
		name   string
		kind   string
		id     string
		err    error
		status int
	}{
		{name: "unknown kind", kind: "spa", id: "1", status: http.StatusBadRequest},
		{name: "zero id", kind: "wellness", id: "0", status: http.StatusBadRequest},
		{name: "not found", kind: "wellness", id: "1", err: bookings.ErrBookingNotFound, status: http.StatusNotFound},
		{name: "internal", kind: "treatment", id: "1", err: errors.New("db down"), status: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHandler(&fakeService{err: tt.err, resp: &models.BookingPairResponse{}}, logger.NewNop())
			rec := doRequest(h, tt.kind, tt.id)
			assert.Equal(t, tt.status, rec.Code)
		})
	}
}
