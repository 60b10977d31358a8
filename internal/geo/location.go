package geo

import (
	"errors"
	"strings"
)

var (
	ErrLocationUnavailable = errors.New("location unavailable")
)

// LocationFailure is a reason the client platform could not provide a position
type LocationFailure int

const (
	LocationUnknown LocationFailure = iota
	LocationPermissionDenied
	LocationPositionUnavailable
	LocationTimeout
)

// ParseLocationFailure maps a GeolocationPositionError code ("1", "2", "3")
// or name ("PERMISSION_DENIED", "POSITION_UNAVAILABLE", "TIMEOUT") to a failure.
// Anything else is LocationUnknown.
func ParseLocationFailure(code string) LocationFailure {
	switch strings.ToUpper(strings.TrimSpace(code)) {
	case "1", "PERMISSION_DENIED":
		return LocationPermissionDenied
	case "2", "POSITION_UNAVAILABLE":
		return LocationPositionUnavailable
	case "3", "TIMEOUT":
		return LocationTimeout
	default:
		return LocationUnknown
	}
}

// Message is the user-facing text for the failure
func (f LocationFailure) Message() string {
	switch f {
	case LocationPermissionDenied:
		return "Location permission denied"
	case LocationPositionUnavailable:
		return "Location unavailable"
	case LocationTimeout:
		return "Location request timed out"
	default:
		return "Unknown location error"
	}
}

func (f LocationFailure) Error() string {
	return f.Message()
}

// Is makes every failure match ErrLocationUnavailable
func (f LocationFailure) Is(target error) bool {
	return target == ErrLocationUnavailable
}
