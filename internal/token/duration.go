package token

import (
	"errors"
	"fmt"
)

// ErrUnmappedDurationUnit is a configuration error: the package carries a
// duration unit the device vocabulary has no translation for. Never retried.
var ErrUnmappedDurationUnit = errors.New("duration unit has no device mapping")

// durationUnits translates the platform's duration vocabulary into the
// device's native one.
var durationUnits = map[string]string{
	"hour_Hours": "hour",
	"day_Days":   "day",
	"week_Weeks": "week",
}

// DeviceDurationUnit maps a package duration unit to the device vocabulary.
func DeviceDurationUnit(unit string) (string, error) {
	mapped, ok := durationUnits[unit]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnmappedDurationUnit, unit)
	}
	return mapped, nil
}
