package units

import (
	"math"
	"testing"
)

func TestIsValid(t *testing.T) {
	for _, u := range ValidUnits {
		if !IsValid(u) {
			t.Errorf("IsValid(%q) = false, want true", u)
		}
	}
	for _, u := range []string{"", "knots", "MPH", "furlongs"} {
		if IsValid(u) {
			t.Errorf("IsValid(%q) = true, want false", u)
		}
	}
}

func TestConvertSpeed(t *testing.T) {
	cases := []struct {
		speedMPH float64
		target   string
		want     float64
	}{
		{60, MPH, 60},
		{60, MPS, 26.8224},
		{60, KMPH, 96.56064},
		{60, KPH, 96.56064},
		{60, "unknown", 60}, // unknown units pass through
		{0, MPS, 0},
	}

	for _, tc := range cases {
		got := ConvertSpeed(tc.speedMPH, tc.target)
		if math.Abs(got-tc.want) > 1e-9 {
			t.Errorf("ConvertSpeed(%v, %q) = %v, want %v", tc.speedMPH, tc.target, got, tc.want)
		}
	}
}

func TestDistanceConversions(t *testing.T) {
	if got := MilesToMeters(0.1); math.Abs(got-160.934) > 1e-9 {
		t.Errorf("MilesToMeters(0.1) = %v, want 160.934", got)
	}
	if got := MetersToMiles(1609.34); math.Abs(got-1.0) > 1e-12 {
		t.Errorf("MetersToMiles(1609.34) = %v, want 1", got)
	}

	// round trip
	for _, miles := range []float64{0.05, 0.1, 1, 26.2} {
		if got := MetersToMiles(MilesToMeters(miles)); math.Abs(got-miles) > 1e-12 {
			t.Errorf("round trip of %v miles = %v", miles, got)
		}
	}
}
