// profile-plot renders a stored roughness profile as a PNG line chart,
// for offline inspection of survey runs without the web UI.
//
// Usage:
//
//	profile-plot -db trips.db -list
//	profile-plot -db trips.db -trip <trip-id> -out profile.png
package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/banshee-data/roughness.report/internal/db"
)

var (
	dbPath = flag.String("db", "trips.db", "Path to sqlite database")
	tripID = flag.String("trip", "", "Trip id to plot")
	out    = flag.String("out", "profile.png", "Output PNG path")
	list   = flag.Bool("list", false, "List trips and exit")
)

func main() {
	flag.Parse()

	database, err := db.NewDB(*dbPath)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer database.Close()

	ctx := context.Background()

	if *list {
		trips, err := database.Trips(ctx)
		if err != nil {
			log.Fatalf("failed to list trips: %v", err)
		}
		for _, t := range trips {
			fmt.Printf("%s  %s  %s\n", t.ID, t.CreatedAt.Format("2006-01-02 15:04:05"), t.Name)
		}
		return
	}

	if *tripID == "" {
		log.Fatal("either -list or -trip is required")
	}

	tr, err := database.Trip(ctx, *tripID)
	if err != nil {
		log.Fatalf("failed to load trip: %v", err)
	}
	predictions, err := database.TripProfile(ctx, *tripID)
	if err != nil {
		log.Fatalf("failed to load profile: %v", err)
	}
	if len(predictions) == 0 {
		log.Fatalf("trip %s has no stored profile; build one via POST /api/trips/%s/profile", *tripID, *tripID)
	}

	pts := make(plotter.XYs, len(predictions))
	failed := 0
	for i, p := range predictions {
		pts[i].X = p.DistanceStart
		pts[i].Y = p.Score
		if !p.OK {
			failed++
		}
	}

	pl := plot.New()
	pl.Title.Text = fmt.Sprintf("Roughness profile: %s", tr.Name)
	pl.X.Label.Text = "distance (mi)"
	pl.Y.Label.Text = "roughness (m/km)"
	pl.Add(plotter.NewGrid())

	line, err := plotter.NewLine(pts)
	if err != nil {
		log.Fatalf("failed to build line: %v", err)
	}
	line.Width = vg.Points(1)
	pl.Add(line)
	pl.Legend.Add("roughness", line)

	if err := pl.Save(8*vg.Inch, 4*vg.Inch, *out); err != nil {
		log.Fatalf("failed to save plot: %v", err)
	}

	log.Printf("wrote %s (%d segments, %d with sentinel scores)", *out, len(predictions), failed)
}
