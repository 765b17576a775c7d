package domain

import (
	"errors"
	"fmt"

	"github.com/m04kA/SMC-ClinicBooking/pkg/types"
)

// Interval полуоткрытый интервал [Start, End) в минутах от полуночи
type Interval struct {
	Start int
	End   int
}

// NewInterval строит интервал сеанса от времени начала и длительности
func NewInterval(start types.TimeString, durationMinutes int) (Interval, error) {
	end, err := EndTime(start, durationMinutes)
	if err != nil {
		return Interval{}, err
	}
	return IntervalBetween(start, end)
}

// IntervalBetween строит интервал по началу и концу
func IntervalBetween(start, end types.TimeString) (Interval, error) {
	s, err := start.Minutes()
	if err != nil {
		return Interval{}, fmt.Errorf("%w: start %q: %v", ErrInvalidRange, start, err)
	}
	e, err := end.Minutes()
	if err != nil {
		return Interval{}, fmt.Errorf("%w: end %q: %v", ErrInvalidRange, end, err)
	}
	if e <= s {
		return Interval{}, fmt.Errorf("%w: end %s is not after start %s", ErrInvalidRange, end, start)
	}
	return Interval{Start: s, End: e}, nil
}

// EndTime вычисляет время окончания сеанса. Сеанс не может переходить через полночь
func EndTime(start types.TimeString, durationMinutes int) (types.TimeString, error) {
	if durationMinutes <= 0 {
		return "", fmt.Errorf("%w: duration must be positive, got %d", ErrInvalidRange, durationMinutes)
	}
	end, err := start.AddMinutes(durationMinutes)
	if err != nil {
		if errors.Is(err, types.ErrOutOfDay) {
			return "", fmt.Errorf("%w: %s + %d minutes", ErrCrossesMidnight, start, durationMinutes)
		}
		return "", fmt.Errorf("%w: %v", ErrInvalidRange, err)
	}
	return end, nil
}

// Overlaps полуоткрытая семантика: касание концами не считается пересечением
func Overlaps(a, b Interval) bool {
	return a.Start < b.End && b.Start < a.End
}

// Expand расширяет интервал буферами до и после
func Expand(iv Interval, before, after int) Interval {
	return Interval{Start: iv.Start - before, End: iv.End + after}
}

// Duration длительность в минутах
func (iv Interval) Duration() int {
	return iv.End - iv.Start
}

func (iv Interval) String() string {
	return formatClock(iv.Start) + "-" + formatClock(iv.End)
}

func formatClock(minutes int) string {
	if minutes < 0 {
		minutes = 0
	}
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// Bounds начало и конец в формате HH:MM
func (iv Interval) Bounds() (string, string) {
	return formatClock(iv.Start), formatClock(iv.End)
}
