// Package units provides shared constants and conversions for speed and distance units
package units

// Unit constants
const (
	MPS  = "mps"
	MPH  = "mph"
	KMPH = "kmph"
	KPH  = "kph"
)

// MetersPerMile is the conversion factor used everywhere distance in miles
// meets distance in meters. Segment boundaries depend on this exact value.
const MetersPerMile = 1609.34

// ValidUnits contains all valid unit values
var ValidUnits = []string{MPS, MPH, KMPH, KPH}

// IsValid checks if the given unit is in the list of valid units
func IsValid(unit string) bool {
	for _, validUnit := range ValidUnits {
		if unit == validUnit {
			return true
		}
	}
	return false
}

// GetValidUnitsString returns a comma-separated string of valid units for error messages
func GetValidUnitsString() string {
	return "mps, mph, kmph, kph"
}

// ConvertSpeed converts a speed from miles per hour to the target units.
// Recording sessions deliver speeds in mph and the database stores them as-is.
func ConvertSpeed(speedMPH float64, targetUnits string) float64 {
	switch targetUnits {
	case MPH:
		return speedMPH
	case MPS:
		return speedMPH * 0.44704 // mph to m/s
	case KMPH, KPH:
		return speedMPH * 1.609344 // mph to km/h
	default:
		return speedMPH
	}
}

// MilesToMeters converts a distance in miles to meters.
func MilesToMeters(miles float64) float64 {
	return miles * MetersPerMile
}

// MetersToMiles converts a distance in meters to miles.
func MetersToMiles(meters float64) float64 {
	return meters / MetersPerMile
}
