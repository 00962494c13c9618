package trip

import "math"

// SanitizeReport counts records dropped by Sanitize, broken out per stream so
// callers can surface the degradation without treating it as a failure.
type SanitizeReport struct {
	DroppedFixes   int `json:"dropped_fixes"`
	DroppedSamples int `json:"dropped_samples"`
}

// Total returns the combined dropped-record count.
func (r SanitizeReport) Total() int {
	return r.DroppedFixes + r.DroppedSamples
}

// Sanitize drops malformed records before segmentation: fixes with a zero
// timestamp, negative speed, or any non-finite numeric field, and samples
// with a zero timestamp or non-finite axis value. Bad records are dropped
// and counted, never an error; the segmenter only ever sees well-formed
// input.
func Sanitize(fixes []LocationFix, samples []InertialSample) ([]LocationFix, []InertialSample, SanitizeReport) {
	var report SanitizeReport

	cleanFixes := make([]LocationFix, 0, len(fixes))
	for _, f := range fixes {
		if f.Timestamp.IsZero() || f.Speed < 0 || !allFinite(f.Speed, f.Latitude, f.Longitude) {
			report.DroppedFixes++
			continue
		}
		cleanFixes = append(cleanFixes, f)
	}

	cleanSamples := make([]InertialSample, 0, len(samples))
	for _, s := range samples {
		if s.Timestamp.IsZero() || !allFinite(s.AccelX, s.AccelY, s.AccelZ, s.GyroX, s.GyroY, s.GyroZ) {
			report.DroppedSamples++
			continue
		}
		cleanSamples = append(cleanSamples, s)
	}

	return cleanFixes, cleanSamples, report
}

func allFinite(values ...float64) bool {
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
