package forecast

import (
	"errors"
	"fmt"

	"github.com/ManfreddAbrego/forecast-tool/pkg/contracts/domain"
)

var (
	// ErrInsufficientData is matched by every *InsufficientDataError
	ErrInsufficientData = errors.New("insufficient data")
	// ErrFitDivergence is matched by every *FitDivergenceError
	ErrFitDivergence = errors.New("model fit diverged")
)

// InsufficientDataError reports a series shorter than the configured number
// of full seasons
type InsufficientDataError struct {
	Metric   domain.Metric
	Count    int
	Required int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("%s for %s: %d observations, need at least %d", ErrInsufficientData, e.Metric, e.Count, e.Required)
}

func (e *InsufficientDataError) Is(target error) bool { return target == ErrInsufficientData }

// FitDivergenceError reports a failed parameter optimisation
type FitDivergenceError struct {
	Metric domain.Metric
	Reason string
	Err    error
}

func (e *FitDivergenceError) Error() string {
	msg := fmt.Sprintf("%s for %s: %s", ErrFitDivergence, e.Metric, e.Reason)
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *FitDivergenceError) Is(target error) bool { return target == ErrFitDivergence }

func (e *FitDivergenceError) Unwrap() error { return e.Err }
