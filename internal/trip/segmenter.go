package trip

import (
	"math"
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/banshee-data/roughness.report/internal/units"
)

// SegmentLengthMiles is the nominal target length of one segment.
const SegmentLengthMiles = 0.1

// earthRadiusMeters is the mean Earth radius used by the haversine formula.
const earthRadiusMeters = 6371000

// Segmenter converts fix/sample streams into segments. The zero value is not
// usable; NewSegmenter applies the default target length.
type Segmenter struct {
	// TargetMeters is the segment boundary threshold. A segment closes once
	// the accumulated haversine distance of its fix pairs reaches this value,
	// or at trip end (which may close a shorter segment).
	TargetMeters float64
}

// NewSegmenter returns a segmenter with the standard 0.1-mile target.
func NewSegmenter() *Segmenter {
	return &Segmenter{TargetMeters: units.MilesToMeters(SegmentLengthMiles)}
}

// Segment walks the fixes in timestamp order, accumulating great-circle
// distance between consecutive fixes, and closes a segment whenever the
// accumulated distance reaches the target or the trip ends. Each segment
// aggregates the inertial samples whose timestamps fall inside the segment's
// fix time window (inclusive on both ends); a segment with no in-window
// samples is dropped rather than padded, so downstream consumers never see
// fabricated features.
//
// Inputs are not mutated: both slices are copied before sorting. If either
// input is empty the result is empty, not an error. The walk is
// deterministic, so repeated calls on the same inputs yield identical output.
func (s *Segmenter) Segment(fixes []LocationFix, samples []InertialSample) []Segment {
	if len(fixes) == 0 || len(samples) == 0 {
		return nil
	}

	sorted := make([]LocationFix, len(fixes))
	copy(sorted, fixes)
	// Stable: equal timestamps keep their original relative order.
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.Before(sorted[j].Timestamp)
	})

	window := make([]InertialSample, len(samples))
	copy(window, samples)
	sort.Slice(window, func(i, j int) bool {
		return window[i].Timestamp.Before(window[j].Timestamp)
	})

	var segments []Segment
	segmentStart := 0
	currentDistance := 0.0

	for i := 1; i < len(sorted); i++ {
		prev, cur := sorted[i-1], sorted[i]
		currentDistance += haversineMeters(prev.Latitude, prev.Longitude, cur.Latitude, cur.Longitude)

		lastPair := i == len(sorted)-1
		if currentDistance < s.TargetMeters && !lastPair {
			continue
		}

		if seg, ok := buildSegment(sorted[segmentStart:i+1], window); ok {
			segments = append(segments, seg)
		}

		currentDistance = 0
		segmentStart = i
	}

	return segments
}

// buildSegment aggregates one fix slice and its in-window inertial samples.
// Returns ok=false when the slice is empty or no samples fall in the window.
func buildSegment(fixes []LocationFix, sorted []InertialSample) (Segment, bool) {
	if len(fixes) == 0 {
		return Segment{}, false
	}

	first := fixes[0]
	start, end := first.Timestamp, fixes[len(fixes)-1].Timestamp
	inWindow := samplesInWindow(sorted, start, end)
	if len(inWindow) == 0 {
		return Segment{}, false
	}

	accelY := make([]float64, len(inWindow))
	accelZ := make([]float64, len(inWindow))
	for i, sm := range inWindow {
		accelY[i] = sm.AccelY
		accelZ[i] = sm.AccelZ
	}
	speeds := make([]float64, len(fixes))
	for i, f := range fixes {
		speeds[i] = f.Speed
	}

	return Segment{
		AvgAccelY:     stat.Mean(accelY, nil),
		AvgAccelZ:     stat.Mean(accelZ, nil),
		AvgSpeed:      stat.Mean(speeds, nil),
		UnixTimestamp: first.Timestamp.Unix(),
		Latitude:      first.Latitude,
		Longitude:     first.Longitude,
	}, true
}

// samplesInWindow returns the samples with start <= ts <= end. The input must
// be sorted by timestamp; both bounds are found by binary search so per-segment
// selection is O(log n) plus the size of the window.
func samplesInWindow(sorted []InertialSample, start, end time.Time) []InertialSample {
	lo := sort.Search(len(sorted), func(i int) bool {
		return !sorted[i].Timestamp.Before(start)
	})
	hi := sort.Search(len(sorted), func(i int) bool {
		return sorted[i].Timestamp.After(end)
	})
	if lo >= hi {
		return nil
	}
	return sorted[lo:hi]
}

// haversineMeters returns the great-circle distance between two WGS84
// coordinates in meters.
func haversineMeters(lat1, lon1, lat2, lon2 float64) float64 {
	lat1Rad := lat1 * math.Pi / 180
	lat2Rad := lat2 * math.Pi / 180
	deltaLat := (lat2 - lat1) * math.Pi / 180
	deltaLon := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(deltaLat/2)*math.Sin(deltaLat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*
			math.Sin(deltaLon/2)*math.Sin(deltaLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusMeters * c
}
