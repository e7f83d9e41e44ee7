// Command pathgen dumps the dense resampled course for a waypoint file:
// a CSV of samples (with yaw and curvature) and optionally an overview PNG.
// Useful for inspecting course geometry without running a simulation.
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/banshee-data/pathtrack/internal/course"
	"github.com/banshee-data/pathtrack/internal/render"
)

var (
	waypointsFile = flag.String("waypoints", "data/waypoints.csv", "Waypoint CSV file")
	sampleStep    = flag.Float64("ds", 0.05, "Arc-length sampling interval (m)")
	outFile       = flag.String("out", "", "Output CSV for the dense path (stdout when empty)")
	pngFile       = flag.String("png", "", "Optional overview PNG of the course")
)

func main() {
	flag.Parse()

	waypoints, err := course.LoadWaypoints(*waypointsFile)
	if err != nil {
		log.Fatalf("failed to load waypoints: %v", err)
	}

	path, err := course.Generate(waypoints, *sampleStep)
	if err != nil {
		log.Fatalf("failed to generate course: %v", err)
	}
	log.Printf("generated %d samples over %.2f m from %d waypoints", path.Len(), path.Total(), len(waypoints))

	out := os.Stdout
	if *outFile != "" {
		f, err := os.Create(*outFile)
		if err != nil {
			log.Fatalf("failed to create output file: %v", err)
		}
		defer f.Close()
		out = f
	}

	w := csv.NewWriter(out)
	if err := w.Write([]string{"s", "x", "y", "yaw", "curvature"}); err != nil {
		log.Fatalf("failed to write header: %v", err)
	}
	for _, s := range path.Samples {
		record := []string{
			fmt.Sprintf("%.6f", s.S),
			fmt.Sprintf("%.6f", s.X),
			fmt.Sprintf("%.6f", s.Y),
			fmt.Sprintf("%.6f", s.Yaw),
			fmt.Sprintf("%.6f", s.Curvature),
		}
		if err := w.Write(record); err != nil {
			log.Fatalf("failed to write sample: %v", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		log.Fatalf("failed to flush output: %v", err)
	}

	if *pngFile != "" {
		if err := render.SaveCoursePlot(*pngFile, path); err != nil {
			log.Fatalf("failed to render course plot: %v", err)
		}
		log.Printf("wrote %s", *pngFile)
	}
}
