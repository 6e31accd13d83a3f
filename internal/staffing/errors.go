package staffing

import (
	"errors"
	"fmt"
)

// ErrAlignment is matched by every *AlignmentError
var ErrAlignment = errors.New("forecasts share no dates")

// AlignmentError reports a Calls and AHT forecast pair with no common date
type AlignmentError struct {
	CallsPoints int
	AHTPoints   int
}

func (e *AlignmentError) Error() string {
	return fmt.Sprintf("%s: %d calls points, %d AHT points", ErrAlignment, e.CallsPoints, e.AHTPoints)
}

func (e *AlignmentError) Is(target error) bool { return target == ErrAlignment }
