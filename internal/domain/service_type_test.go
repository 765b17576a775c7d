package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServiceType_Policy(t *testing.T) {
	tests := []struct {
		service  ServiceType
		kind     BookingKind
		room     ResourceKind
		duration int
		buffer   int
	}{
		{ServiceConsultation, KindConsultation, ResourceConsultationRoom, 30, 0},
		{ServiceColdBath, KindWellness, ResourceWellnessRoom, 30, 15},
		{ServiceInfraredSauna, KindWellness, ResourceWellnessRoom, 30, 15},
		{ServiceCombinedTherapy, KindWellness, ResourceWellnessRoom, 45, 15},
		{ServiceFacial, KindTreatment, ResourceTreatmentRoom, 60, 0},
		{ServiceMassage, KindTreatment, ResourceTreatmentRoom, 60, 0},
	}

	for _, tt := range tests {
		t.Run(string(tt.service), func(t *testing.T) {
			p, err := tt.service.Policy()
			require.NoError(t, err)
			assert.Equal(t, tt.kind, p.Kind)
			assert.Equal(t, tt.room, p.RoomKind)
			assert.Equal(t, tt.duration, p.DefaultDurationMinutes)
			assert.Equal(t, tt.buffer, p.BufferAfterMinutes)
		})
	}
}

func TestServicePolicy_WithPreparation(t *testing.T) {
	wellness, _ := ServiceColdBath.Policy()
	assert.Equal(t, 20, wellness.WithPreparation(20).BufferAfterMinutes)

	treatment, _ := ServiceMassage.Policy()
	assert.Equal(t, 0, treatment.WithPreparation(20).BufferAfterMinutes)
}

func TestParseServiceType_Unknown(t *testing.T) {
	_, err := ParseServiceType("yoga")
	assert.ErrorIs(t, err, ErrUnknownServiceType)

	st, err := ParseServiceType("infrared_sauna")
	require.NoError(t, err)
	assert.Equal(t, ServiceInfraredSauna, st)
}
