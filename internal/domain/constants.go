package domain

// Default configuration values
const (
	DefaultOpenTime                   = "08:00"
	DefaultCloseTime                  = "19:00"
	DefaultClinicalStepMinutes        = 15
	DefaultWellnessStepMinutes        = 30
	DefaultWellnessPreparationMinutes = 15
)

// Business validation constants
const (
	MinDurationMinutes          = 5
	MaxDurationMinutes          = 480 // 8 hours
	MaxBufferMinutes            = 120
	MaxNotesLength              = 500
	MaxCancellationReasonLength = 500
)

// Time format constants
const (
	TimeFormat = "15:04"      // HH:MM
	DateFormat = "2006-01-02" // YYYY-MM-DD
)

// ActiveStatuses статусы, участвующие в проверке пересечений
var ActiveStatuses = []BookingStatus{
	StatusPending,
	StatusConfirmed,
	StatusInProgress,
	StatusCompleted,
}
