package trip

import (
	"math"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

var testStart = time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)

// fixNorthOf returns a fix the given number of meters due north of the base
// coordinate. Pure north-south displacement keeps the haversine distance
// exact on the sphere, so tests can reason in meters.
func fixNorthOf(ts time.Time, meters, speed float64) LocationFix {
	const baseLat, baseLon = 37.0, -122.0
	degPerMeter := 180.0 / (math.Pi * earthRadiusMeters)
	return LocationFix{
		Timestamp: ts,
		Speed:     speed,
		Latitude:  baseLat + meters*degPerMeter,
		Longitude: baseLon,
	}
}

func sampleAt(ts time.Time, accelY, accelZ float64) InertialSample {
	return InertialSample{
		Timestamp: ts,
		AccelX:    0.01,
		AccelY:    accelY,
		AccelZ:    accelZ,
		GyroX:     0.001, GyroY: 0.002, GyroZ: 0.003,
	}
}

func TestSegment_EmptyInputs(t *testing.T) {
	s := NewSegmenter()

	fixes := []LocationFix{fixNorthOf(testStart, 0, 30)}
	samples := []InertialSample{sampleAt(testStart, 0.1, 9.8)}

	if got := s.Segment(nil, samples); len(got) != 0 {
		t.Errorf("Segment(nil, samples) = %d segments, want 0", len(got))
	}
	if got := s.Segment(fixes, nil); len(got) != 0 {
		t.Errorf("Segment(fixes, nil) = %d segments, want 0", len(got))
	}
	if got := s.Segment(nil, nil); len(got) != 0 {
		t.Errorf("Segment(nil, nil) = %d segments, want 0", len(got))
	}
}

// Three fixes 0.05 mi then 0.08 mi apart (cumulative 0.13 mi) with three
// samples across the 2-second window must yield exactly one segment spanning
// all three fixes and all three samples.
func TestSegment_SingleSegmentSpansTrip(t *testing.T) {
	s := NewSegmenter()

	fixes := []LocationFix{
		fixNorthOf(testStart, 0, 28),
		fixNorthOf(testStart.Add(1*time.Second), 0.05*1609.34, 31),
		fixNorthOf(testStart.Add(2*time.Second), 0.13*1609.34, 34),
	}
	samples := []InertialSample{
		sampleAt(testStart.Add(200*time.Millisecond), 0.10, 9.7),
		sampleAt(testStart.Add(900*time.Millisecond), 0.20, 9.8),
		sampleAt(testStart.Add(1700*time.Millisecond), 0.30, 9.9),
	}

	got := s.Segment(fixes, samples)
	if len(got) != 1 {
		t.Fatalf("Segment() = %d segments, want 1", len(got))
	}

	seg := got[0]
	if seg.UnixTimestamp != testStart.Unix() {
		t.Errorf("UnixTimestamp = %d, want %d", seg.UnixTimestamp, testStart.Unix())
	}
	if seg.Latitude != fixes[0].Latitude || seg.Longitude != fixes[0].Longitude {
		t.Errorf("coordinates = (%v, %v), want first fix's (%v, %v)",
			seg.Latitude, seg.Longitude, fixes[0].Latitude, fixes[0].Longitude)
	}

	wantSpeed := (28.0 + 31.0 + 34.0) / 3.0
	if math.Abs(seg.AvgSpeed-wantSpeed) > 1e-9 {
		t.Errorf("AvgSpeed = %v, want %v", seg.AvgSpeed, wantSpeed)
	}
	wantAccelY := (0.10 + 0.20 + 0.30) / 3.0
	if math.Abs(seg.AvgAccelY-wantAccelY) > 1e-9 {
		t.Errorf("AvgAccelY = %v, want %v", seg.AvgAccelY, wantAccelY)
	}
	wantAccelZ := (9.7 + 9.8 + 9.9) / 3.0
	if math.Abs(seg.AvgAccelZ-wantAccelZ) > 1e-9 {
		t.Errorf("AvgAccelZ = %v, want %v", seg.AvgAccelZ, wantAccelZ)
	}
}

// Fixes supplied out of timestamp order must still produce timestamp-ascending
// segments, and the input slice must not be reordered.
func TestSegment_UnsortedFixes(t *testing.T) {
	s := NewSegmenter()

	step := 100.0 // meters between consecutive fixes
	var ordered []LocationFix
	for i := 0; i < 8; i++ {
		ordered = append(ordered, fixNorthOf(testStart.Add(time.Duration(i)*time.Second), float64(i)*step, 30))
	}

	shuffled := []LocationFix{ordered[5], ordered[0], ordered[7], ordered[2], ordered[1], ordered[6], ordered[3], ordered[4]}
	inputCopy := make([]LocationFix, len(shuffled))
	copy(inputCopy, shuffled)

	var samples []InertialSample
	for i := 0; i < 80; i++ {
		samples = append(samples, sampleAt(testStart.Add(time.Duration(i)*100*time.Millisecond), 0.1, 9.8))
	}

	got := s.Segment(shuffled, samples)
	if len(got) == 0 {
		t.Fatal("Segment() returned no segments")
	}
	for i := 1; i < len(got); i++ {
		if got[i].UnixTimestamp < got[i-1].UnixTimestamp {
			t.Errorf("segment %d timestamp %d before segment %d timestamp %d",
				i, got[i].UnixTimestamp, i-1, got[i-1].UnixTimestamp)
		}
	}

	if diff := cmp.Diff(inputCopy, shuffled); diff != "" {
		t.Errorf("input fixes mutated (-want +got):\n%s", diff)
	}
}

// A segment whose fix window contains no inertial samples is dropped, never
// emitted with zero-filled features.
func TestSegment_DropsSegmentWithoutSamples(t *testing.T) {
	s := NewSegmenter()

	// Two full segments' worth of fixes; samples only cover the second.
	var fixes []LocationFix
	for i := 0; i < 5; i++ {
		fixes = append(fixes, fixNorthOf(testStart.Add(time.Duration(i)*time.Second), float64(i)*45, 25))
	}

	// First segment closes at fix 4 (180 m > 160.934 m); samples start after
	// its window, so it is dropped and nothing else accumulates enough
	// distance. Expect zero segments rather than a NaN/zero segment.
	samples := []InertialSample{
		sampleAt(testStart.Add(10*time.Second), 0.1, 9.8),
	}

	if got := s.Segment(fixes, samples); len(got) != 0 {
		t.Errorf("Segment() = %d segments, want 0 (no samples in any window)", len(got))
	}
}

// Every returned segment except possibly the last must span at least the
// 0.1-mile target distance.
func TestSegment_SegmentLengthInvariant(t *testing.T) {
	s := NewSegmenter()

	step := 60.0 // meters per second of travel
	var fixes []LocationFix
	var samples []InertialSample
	for i := 0; i < 20; i++ {
		ts := testStart.Add(time.Duration(i) * time.Second)
		fixes = append(fixes, fixNorthOf(ts, float64(i)*step, 30))
		samples = append(samples, sampleAt(ts, 0.1, 9.8))
	}

	got := s.Segment(fixes, samples)
	if len(got) < 2 {
		t.Fatalf("Segment() = %d segments, want at least 2", len(got))
	}

	// Reconstruct per-segment distance from the segment timestamps: fixes move
	// at a constant 60 m/s, so distance is 60 m per second between boundaries.
	for i := 1; i < len(got); i++ {
		// the distance covered by segment i-1 ends where segment i starts
		seconds := got[i].UnixTimestamp - got[i-1].UnixTimestamp
		meters := float64(seconds) * step
		if meters < s.TargetMeters-1e-6 {
			t.Errorf("segment %d spans %.1f m, want >= %.1f m", i-1, meters, s.TargetMeters)
		}
	}
}

func TestSegment_Deterministic(t *testing.T) {
	s := NewSegmenter()

	var fixes []LocationFix
	var samples []InertialSample
	for i := 0; i < 12; i++ {
		ts := testStart.Add(time.Duration(i) * time.Second)
		fixes = append(fixes, fixNorthOf(ts, float64(i)*70, 20+float64(i)))
		samples = append(samples, sampleAt(ts, 0.1*float64(i), 9.8))
	}

	first := s.Segment(fixes, samples)
	second := s.Segment(fixes, samples)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("repeated Segment() calls differ (-first +second):\n%s", diff)
	}
}

func TestSanitize_DropsMalformed(t *testing.T) {
	fixes := []LocationFix{
		fixNorthOf(testStart, 0, 30),
		{Timestamp: time.Time{}, Speed: 30, Latitude: 37, Longitude: -122}, // zero timestamp
		{Timestamp: testStart, Speed: math.NaN(), Latitude: 37, Longitude: -122},
		{Timestamp: testStart, Speed: -5, Latitude: 37, Longitude: -122},
		{Timestamp: testStart, Speed: 30, Latitude: math.Inf(1), Longitude: -122},
	}
	samples := []InertialSample{
		sampleAt(testStart, 0.1, 9.8),
		{Timestamp: testStart, AccelY: math.NaN()},
		{}, // zero timestamp
	}

	cleanFixes, cleanSamples, report := Sanitize(fixes, samples)

	if len(cleanFixes) != 1 {
		t.Errorf("clean fixes = %d, want 1", len(cleanFixes))
	}
	if len(cleanSamples) != 1 {
		t.Errorf("clean samples = %d, want 1", len(cleanSamples))
	}
	if report.DroppedFixes != 4 {
		t.Errorf("DroppedFixes = %d, want 4", report.DroppedFixes)
	}
	if report.DroppedSamples != 2 {
		t.Errorf("DroppedSamples = %d, want 2", report.DroppedSamples)
	}
	if report.Total() != 6 {
		t.Errorf("Total() = %d, want 6", report.Total())
	}
}

func TestHaversine_KnownDistance(t *testing.T) {
	// One degree of latitude on the reference sphere.
	got := haversineMeters(37.0, -122.0, 38.0, -122.0)
	want := earthRadiusMeters * math.Pi / 180.0
	if math.Abs(got-want) > 1e-6 {
		t.Errorf("haversineMeters() = %v, want %v", got, want)
	}

	if d := haversineMeters(37.0, -122.0, 37.0, -122.0); d != 0 {
		t.Errorf("zero displacement distance = %v, want 0", d)
	}
}
