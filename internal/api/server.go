// Package api is the HTTP surface for recording trips and building
// roughness profiles.
package api

import (
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/banshee-data/roughness.report/internal/db"
	"github.com/banshee-data/roughness.report/internal/profile"
	"github.com/banshee-data/roughness.report/internal/trip"
)

// ANSI escape codes for cyan and reset
const colorCyan = "\033[36m"
const colorReset = "\033[0m"
const colorYellow = "\033[33m"
const colorBoldGreen = "\033[1;32m"
const colorBoldRed = "\033[1;31m"

type Server struct {
	db        *db.DB
	scorer    profile.Scorer
	segmenter *trip.Segmenter
	units     string
	workers   int
}

// NewServer wires the API against the database and the scoring oracle.
// units is the speed unit for API output; workers bounds concurrent oracle
// calls during a profile build.
func NewServer(database *db.DB, scorer profile.Scorer, units string, workers int) *Server {
	return &Server{
		db:        database,
		scorer:    scorer,
		segmenter: trip.NewSegmenter(),
		units:     units,
		workers:   workers,
	}
}

type loggingResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (lrw *loggingResponseWriter) WriteHeader(code int) {
	lrw.statusCode = code
	lrw.ResponseWriter.WriteHeader(code)
}

func (lrw *loggingResponseWriter) Flush() {
	if flusher, ok := lrw.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}

func statusCodeColor(statusCode int) string {
	switch {
	case statusCode >= 200 && statusCode < 300:
		return colorBoldGreen + strconv.Itoa(statusCode) + colorReset
	case statusCode >= 300 && statusCode < 400:
		return colorYellow + strconv.Itoa(statusCode) + colorReset
	case statusCode >= 400:
		return colorBoldRed + strconv.Itoa(statusCode) + colorReset
	default:
		return strconv.Itoa(statusCode)
	}
}

// LoggingMiddleware logs method, path, query, status, and duration
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		lrw := &loggingResponseWriter{w, http.StatusOK}
		next.ServeHTTP(lrw, r)
		log.Printf(
			"[%s] %s %s%s%s %vms",
			statusCodeColor(lrw.statusCode), r.Method,
			colorCyan, r.RequestURI, colorReset,
			float64(time.Since(start).Nanoseconds())/1e6,
		)
	})
}

func (s *Server) ServeMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /trips", s.createTrip)
	mux.HandleFunc("GET /trips", s.listTrips)
	mux.HandleFunc("POST /trips/{id}/profile", s.buildProfile)
	mux.HandleFunc("GET /trips/{id}/profile", s.showProfile)
	mux.HandleFunc("GET /trips/{id}/profile/chart", s.profileChart)
	return mux
}
