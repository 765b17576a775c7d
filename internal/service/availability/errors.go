package availability

import "errors"

var (
	// ErrResourceNotFound возвращается, когда ресурс не найден
	ErrResourceNotFound = errors.New("availability: resource not found")

	// ErrInvalidCandidate возвращается при некорректном времени или длительности кандидата
	ErrInvalidCandidate = errors.New("availability: invalid candidate interval")
)
