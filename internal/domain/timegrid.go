package domain

import (
	"fmt"

	"github.com/m04kA/SMC-ClinicBooking/pkg/types"
)

// TimeGrid каталог времен начала сеансов на день
type TimeGrid struct {
	Open         types.TimeString
	Close        types.TimeString
	StepMinutes  int
	IncludeClose bool // включать ли само время закрытия, если оно попадает на шаг
}

// ClinicalGrid сетка для консультаций и процедурных кабинетов: [open, close)
func ClinicalGrid(open, close types.TimeString, step int) TimeGrid {
	return TimeGrid{Open: open, Close: close, StepMinutes: step}
}

// WellnessGrid сетка wellness-кабинетов, заканчивается временем закрытия включительно
func WellnessGrid(open, close types.TimeString, step int) TimeGrid {
	return TimeGrid{Open: open, Close: close, StepMinutes: step, IncludeClose: true}
}

// GenerateTimeGrid времена начала в [open, close) с шагом step
func GenerateTimeGrid(open, close types.TimeString, step int) ([]types.TimeString, error) {
	return ClinicalGrid(open, close, step).Slots()
}

// Slots генерирует упорядоченный список времен начала
func (g TimeGrid) Slots() ([]types.TimeString, error) {
	if g.StepMinutes <= 0 {
		return nil, fmt.Errorf("%w: step must be positive, got %d", ErrInvalidRange, g.StepMinutes)
	}
	open, err := g.Open.Minutes()
	if err != nil {
		return nil, fmt.Errorf("%w: open time: %v", ErrInvalidRange, err)
	}
	closing, err := g.Close.Minutes()
	if err != nil {
		return nil, fmt.Errorf("%w: close time: %v", ErrInvalidRange, err)
	}
	if closing <= open {
		return nil, fmt.Errorf("%w: close %s must be after open %s", ErrInvalidRange, g.Close, g.Open)
	}

	slots := make([]types.TimeString, 0, (closing-open)/g.StepMinutes+1)
	for m := open; m < closing || (g.IncludeClose && m == closing); m += g.StepMinutes {
		slot, err := types.NewTimeStringFromMinutes(m)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidRange, err)
		}
		slots = append(slots, slot)
	}
	return slots, nil
}
