// Package profile builds a trip's distance-indexed roughness profile by
// scoring each segment against an external scoring oracle.
package profile

import (
	"context"
	"errors"
	"sync"

	"github.com/banshee-data/roughness.report/internal/monitoring"
	"github.com/banshee-data/roughness.report/internal/trip"
)

// ErrEmptyInput is returned by Build when there are no segments to score.
// An empty trip is a caller error at this layer, unlike in the segmenter
// where empty input degrades to empty output.
var ErrEmptyInput = errors.New("profile: no segments to score")

// DefaultWorkers bounds concurrent in-flight oracle calls.
const DefaultWorkers = 4

// Scorer is the capability the builder needs from the scoring oracle: one
// segment in, one scalar roughness score (meters of roughness per km) out.
type Scorer interface {
	Score(ctx context.Context, seg trip.Segment) (float64, error)
}

// ScorerFunc adapts a function to the Scorer interface.
type ScorerFunc func(ctx context.Context, seg trip.Segment) (float64, error)

// Score calls f.
func (f ScorerFunc) Score(ctx context.Context, seg trip.Segment) (float64, error) {
	return f(ctx, seg)
}

// Prediction is one scored segment of the roughness profile. DistanceStart
// and DistanceEnd are the cumulative trip-mile range the segment represents;
// across an ordered profile they are contiguous and non-overlapping with a
// fixed nominal 0.1-mile step. OK is false when the oracle call for this
// segment failed and Score holds the zero sentinel instead of a real score.
type Prediction struct {
	Segment       trip.Segment `json:"segment"`
	Score         float64      `json:"score"`
	DistanceStart float64      `json:"distance_start"`
	DistanceEnd   float64      `json:"distance_end"`
	OK            bool         `json:"ok"`
}

// Builder orchestrates the per-segment oracle calls. Calls run as
// index-tagged tasks on a fixed-size worker pool; each result is written into
// a position-indexed slice, so ordering and distance accounting are fixed by
// segment position regardless of response arrival order.
type Builder struct {
	scorer  Scorer
	workers int
}

// NewBuilder returns a builder using the given scorer. workers <= 0 selects
// DefaultWorkers.
func NewBuilder(scorer Scorer, workers int) *Builder {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	return &Builder{scorer: scorer, workers: workers}
}

// Build scores every segment and assembles the ordered profile. It fails with
// ErrEmptyInput for zero segments and with ctx.Err() if the context is
// cancelled mid-build (no partial profile is returned). An individual oracle
// failure does not abort the build: the affected prediction keeps its slot
// with a zero sentinel score and OK=false, so cardinality and the distance
// counter are unaffected.
func (b *Builder) Build(ctx context.Context, segments []trip.Segment) ([]Prediction, error) {
	if len(segments) == 0 {
		return nil, ErrEmptyInput
	}

	results := make([]Prediction, len(segments))
	jobs := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < b.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i] = b.scoreOne(ctx, i, segments[i])
			}
		}()
	}

feed:
	for i := range segments {
		select {
		case jobs <- i:
		case <-ctx.Done():
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

// scoreOne runs a single oracle call and maps its outcome onto the
// position-indexed prediction, including the nominal distance range.
func (b *Builder) scoreOne(ctx context.Context, i int, seg trip.Segment) Prediction {
	p := Prediction{
		Segment:       seg,
		DistanceStart: float64(i) * trip.SegmentLengthMiles,
		DistanceEnd:   float64(i+1) * trip.SegmentLengthMiles,
	}

	score, err := b.scorer.Score(ctx, seg)
	if err != nil {
		monitoring.Logf("profile: oracle call for segment %d failed: %v", i, err)
		return p
	}

	p.Score = score
	p.OK = true
	return p
}

// FailedCount returns how many predictions in a profile carry the sentinel
// score, for callers that surface degradation to users.
func FailedCount(predictions []Prediction) int {
	n := 0
	for _, p := range predictions {
		if !p.OK {
			n++
		}
	}
	return n
}
