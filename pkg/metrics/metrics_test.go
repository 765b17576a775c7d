package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics_Record(t *testing.T) {
	m := NewWithRegistry("clinic-booking", prometheus.NewRegistry())

	m.RecordBookingOperation("create", "ok")
	m.RecordBookingOperation("create", "ok")
	m.RecordConflict("wellness_room", "buffer")
	m.RecordPartialWrite("cancel")
	m.RecordDBQuery("select", time.Millisecond, errors.New("boom"))
	m.RecordHTTPRequest("POST", "/api/v1/bookings", 201, 10*time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.BookingOperations.WithLabelValues("clinic-booking", "create", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.BookingConflicts.WithLabelValues("clinic-booking", "wellness_room", "buffer")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.PartialWrites.WithLabelValues("clinic-booking", "cancel")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.DBQueriesTotal.WithLabelValues("clinic-booking", "select", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("clinic-booking", "POST", "/api/v1/bookings", "201")))
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.RecordBookingOperation("create", "ok")
		m.RecordConflict("professional", "session")
		m.RecordPartialWrite("cancel")
		m.RecordRepair("ok")
		m.RecordDBQuery("insert", time.Second, nil)
		m.RecordHTTPRequest("GET", "/", 200, time.Second)
	})
	assert.Equal(t, "", m.ServiceName())
}
