package engine

import (
	"fmt"

	"github.com/shetautnetjer/alienfan/internal/backend"
)

// ErrNoSuchActuator is returned for operations addressing an actuator id
// that discovery never produced.
var ErrNoSuchActuator = fmt.Errorf("no such actuator: %w", backend.ErrUnavailable)
