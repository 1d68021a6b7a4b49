package pricing

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnsupportedDestination is matched by every UnsupportedDestinationError.
var ErrUnsupportedDestination = errors.New("unsupported destination")

// UnsupportedDestinationError reports a lookup miss together with the
// destinations the table does know about.
type UnsupportedDestinationError struct {
	Destination string
	Supported   []string
}

func (e *UnsupportedDestinationError) Error() string {
	return fmt.Sprintf("unsupported destination: %s (supported: %s)", e.Destination, strings.Join(e.Supported, ", "))
}

// Is makes errors.Is(err, ErrUnsupportedDestination) work.
func (e *UnsupportedDestinationError) Is(target error) bool {
	return target == ErrUnsupportedDestination
}
