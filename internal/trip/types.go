// Package trip holds the trip data model and the segmenter that reduces raw
// recording-session streams to fixed-length road segments.
//
// A recording session produces two independently sampled streams: GPS/speed
// fixes (up to 10 Hz) and inertial samples (generally faster, unaligned).
// The segmenter merges them by timestamp-window membership into nominal
// 0.1-mile segments, each carrying one aggregated feature tuple.
package trip

import "time"

// LocationFix is one GPS/speed observation from the recording session.
// Speed is in miles per hour; coordinates are WGS84 decimal degrees.
// Fixes are immutable once recorded and arrive in no guaranteed order.
type LocationFix struct {
	Timestamp time.Time `json:"timestamp"`
	Speed     float64   `json:"speed"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
}

// InertialSample is one accelerometer+gyroscope observation. Sampled on an
// independent clock from LocationFix; only timestamp range membership is
// used when attaching samples to segments.
type InertialSample struct {
	Timestamp time.Time `json:"timestamp"`
	AccelX    float64   `json:"accel_x"`
	AccelY    float64   `json:"accel_y"`
	AccelZ    float64   `json:"accel_z"`
	GyroX     float64   `json:"gyro_x"`
	GyroY     float64   `json:"gyro_y"`
	GyroZ     float64   `json:"gyro_z"`
}

// Segment is a derived stretch of the trip with a nominal target length of
// 0.1 mile. It is a pure aggregation: after construction it owns no reference
// back to its source fixes or samples.
//
// UnixTimestamp is the whole-second epoch timestamp of the first fix in the
// segment; Latitude/Longitude are that fix's coordinates. The averages are
// arithmetic means over the constituent samples (accel Y/Z axes) and fixes
// (speed, mph).
type Segment struct {
	AvgAccelY     float64 `json:"avg_accel_y"`
	AvgAccelZ     float64 `json:"avg_accel_z"`
	AvgSpeed      float64 `json:"avg_speed"`
	UnixTimestamp int64   `json:"unix_timestamp"`
	Latitude      float64 `json:"latitude"`
	Longitude     float64 `json:"longitude"`
}
