package mesher

import (
	"errors"
	"fmt"
)

// Sentinels matched by the typed errors below through errors.Is.
var (
	ErrNotEnoughPoints   = errors.New("not enough points")
	ErrInvalidParameters = errors.New("invalid parameters")
	ErrAlgorithm         = errors.New("algorithm error")
)

// Raised when a point set is smaller than a stage requires
type NotEnoughPointsError struct {
	Count    int
	Required int
}

func (e *NotEnoughPointsError) Error() string {
	return fmt.Sprintf("not enough points for reconstruction: %d (at least %d required)", e.Count, e.Required)
}

func (e *NotEnoughPointsError) Is(target error) bool {
	return target == ErrNotEnoughPoints
}

// Raised on malformed configuration, e.g. a non positive voxel size
type InvalidParametersError struct {
	Description string
}

func (e *InvalidParametersError) Error() string {
	return "invalid parameters: " + e.Description
}

func (e *InvalidParametersError) Is(target error) bool {
	return target == ErrInvalidParameters
}

// Raised when extraction produced no geometry
type AlgorithmError struct {
	Description string
}

func (e *AlgorithmError) Error() string {
	return "algorithm error: " + e.Description
}

func (e *AlgorithmError) Is(target error) bool {
	return target == ErrAlgorithm
}

func NotEnoughPoints(count int, required int) error {
	return &NotEnoughPointsError{Count: count, Required: required}
}

func InvalidParameters(format string, args ...interface{}) error {
	return &InvalidParametersError{Description: fmt.Sprintf(format, args...)}
}

func NewAlgorithmError(description string) error {
	return &AlgorithmError{Description: description}
}
