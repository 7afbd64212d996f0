package reward

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput marks a step input that breaks the simulator contract,
	// such as a closest waypoint index outside the waypoint list.
	ErrInvalidInput = errors.New("invalid step input")
	ErrMissingParam = errors.New("missing required param")
	ErrInvalidParam = errors.New("invalid param type")
)

func invalidInputf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}
