package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/banshee-data/roughness.report/internal/db"
	"github.com/banshee-data/roughness.report/internal/httputil"
)

// profileChart renders a quick HTML line chart of a stored roughness profile
// using go-echarts. This is a debugging endpoint to eyeball a profile without
// the mobile client; the x-axis is cumulative trip distance in miles, the
// y-axis roughness in m/km.
func (s *Server) profileChart(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tripID := r.PathValue("id")

	tr, err := s.db.Trip(ctx, tripID)
	if err != nil {
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
	if len(predictions) == 0 {
		httputil.NotFound(w, "no profile stored for this trip")
		return
	}

	xAxis := make([]string, len(predictions))
	series := make([]opts.LineData, len(predictions))
	for i, p := range predictions {
		xAxis[i] = fmt.Sprintf("%.1f", p.DistanceStart)
		series[i] = opts.LineData{Value: p.Score}
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    fmt.Sprintf("Roughness profile: %s", tr.Name),
			Subtitle: "score (m/km) by cumulative distance (mi)",
		}),
		charts.WithXAxisOpts(opts.XAxis{Name: "distance (mi)"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "roughness (m/km)"}),
		charts.WithTooltipOpts(opts.Tooltip{Trigger: "axis"}),
	)
	line.SetXAxis(xAxis).AddSeries("roughness", series)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := line.Render(w); err != nil {
		httputil.InternalServerError(w, fmt.Sprintf("failed to render chart: %v", err))
	}
}
