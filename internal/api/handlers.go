package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/banshee-data/roughness.report/internal/db"
	"github.com/banshee-data/roughness.report/internal/httputil"
	"github.com/banshee-data/roughness.report/internal/monitoring"
	"github.com/banshee-data/roughness.report/internal/profile"
	"github.com/banshee-data/roughness.report/internal/trip"
	"github.com/banshee-data/roughness.report/internal/units"
)

// createTripRequest is the upload payload from a recording session: the trip
// name plus both raw streams. Speeds arrive in mph, coordinates in decimal
// degrees, timestamps RFC 3339 with sub-second precision.
type createTripRequest struct {
	Name    string                `json:"name"`
	Fixes   []trip.LocationFix    `json:"fixes"`
	Samples []trip.InertialSample `json:"samples"`
}

type createTripResponse struct {
	Trip           db.Trip `json:"trip"`
	FixCount       int     `json:"fix_count"`
	SampleCount    int     `json:"sample_count"`
	DroppedFixes   int     `json:"dropped_fixes"`
	DroppedSamples int     `json:"dropped_samples"`
}

func (s *Server) createTrip(w http.ResponseWriter, r *http.Request) {
	var req createTripRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.BadRequest(w, fmt.Sprintf("invalid request body: %v", err))
		return
	}
	if req.Name == "" {
		httputil.BadRequest(w, "trip name is required")
		return
	}

	// Malformed records are dropped and counted, never a hard failure.
	fixes, samples, report := trip.Sanitize(req.Fixes, req.Samples)
	if report.Total() > 0 {
		monitoring.Logf("api: trip %q upload dropped %d malformed records", req.Name, report.Total())
	}

	ctx := r.Context()
	created, err := s.db.CreateTrip(ctx, req.Name)
	if err != nil {
		httputil.InternalServerError(w, fmt.Sprintf("failed to create trip: %v", err))
		return
	}
	if err := s.db.RecordFixes(ctx, created.ID, fixes); err != nil {
		httputil.InternalServerError(w, fmt.Sprintf("failed to record fixes: %v", err))
		return
	}
	if err := s.db.RecordSamples(ctx, created.ID, samples); err != nil {
		httputil.InternalServerError(w, fmt.Sprintf("failed to record samples: %v", err))
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, createTripResponse{
		Trip:           *created,
		FixCount:       len(fixes),
		SampleCount:    len(samples),
		DroppedFixes:   report.DroppedFixes,
		DroppedSamples: report.DroppedSamples,
	})
}

func (s *Server) listTrips(w http.ResponseWriter, r *http.Request) {
	trips, err := s.db.Trips(r.Context())
	if err != nil {
		httputil.InternalServerError(w, fmt.Sprintf("failed to list trips: %v", err))
		return
	}
	if trips == nil {
		trips = []db.Trip{}
	}
	httputil.WriteJSONOK(w, trips)
}

type profileResponse struct {
	TripID      string               `json:"trip_id"`
	Predictions []profile.Prediction `json:"predictions"`
	FailedCount int                  `json:"failed_count"`
}

// buildProfile runs the full segment-and-score pipeline for a stored trip
// and persists the result, replacing any previous profile.
func (s *Server) buildProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tripID := r.PathValue("id")

	if _, err := s.db.Trip(ctx, tripID); err != nil {
		if errors.Is(err, db.ErrTripNotFound) {
			httputil.NotFound(w, "trip not found")
			return
		}
		httputil.InternalServerError(w, fmt.Sprintf("failed to load trip: %v", err))
		return
	}

	fixes, err := s.db.TripFixes(ctx, tripID)
	if err != nil {
		httputil.InternalServerError(w, fmt.Sprintf("failed to load fixes: %v", err))
		return
	}
	samples, err := s.db.TripSamples(ctx, tripID)
	if err != nil {
		httputil.InternalServerError(w, fmt.Sprintf("failed to load samples: %v", err))
		return
	}

	segments := s.segmenter.Segment(fixes, samples)

	builder := profile.NewBuilder(s.scorer, s.workers)
	predictions, err := builder.Build(ctx, segments)
	if err != nil {
		if errors.Is(err, profile.ErrEmptyInput) {
			httputil.UnprocessableEntity(w,
				"trip produced no segments; not enough distance or no inertial coverage")
			return
		}
		httputil.InternalServerError(w, fmt.Sprintf("failed to build profile: %v", err))
		return
	}

	if err := s.db.RecordProfile(ctx, tripID, predictions); err != nil {
		httputil.InternalServerError(w, fmt.Sprintf("failed to store profile: %v", err))
		return
	}

	httputil.WriteJSONOK(w, profileResponse{
		TripID:      tripID,
		Predictions: s.convertPredictionSpeeds(predictions, s.units),
		FailedCount: profile.FailedCount(predictions),
	})
}

func (s *Server) showProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tripID := r.PathValue("id")

	targetUnits := s.units
	if u := r.URL.Query().Get("units"); u != "" {
		if !units.IsValid(u) {
			httputil.BadRequest(w, fmt.Sprintf("invalid units %q, valid: %s", u, units.GetValidUnitsString()))
			return
		}
		targetUnits = u
	}

	if _, err := s.db.Trip(ctx, tripID); err != nil {
		if errors.Is(err, db.ErrTripNotFound) {
			httputil.NotFound(w, "trip not found")
			return
		}
		httputil.InternalServerError(w, fmt.Sprintf("failed to load trip: %v", err))
		return
	}

	predictions, err := s.db.TripProfile(ctx, tripID)
	if err != nil {
		httputil.InternalServerError(w, fmt.Sprintf("failed to load profile: %v", err))
		return
	}
	if predictions == nil {
		predictions = []profile.Prediction{}
	}

	httputil.WriteJSONOK(w, profileResponse{
		TripID:      tripID,
		Predictions: s.convertPredictionSpeeds(predictions, targetUnits),
		FailedCount: profile.FailedCount(predictions),
	})
}

// convertPredictionSpeeds applies unit conversion to each prediction's
// segment speed. The input slice is not modified.
func (s *Server) convertPredictionSpeeds(predictions []profile.Prediction, targetUnits string) []profile.Prediction {
	out := make([]profile.Prediction, len(predictions))
	copy(out, predictions)
	for i := range out {
		out[i].Segment.AvgSpeed = units.ConvertSpeed(out[i].Segment.AvgSpeed, targetUnits)
	}
	return out
}
