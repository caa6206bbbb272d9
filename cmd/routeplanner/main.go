// Command routeplanner reads an OpenStreetMap file, asks for start and end
// coordinates as percentages of the map, and prints the shortest road
// distance between them.
package main

import (
	"bufio"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"

	"github.com/paulmach/orb"

	"route-planner/internal/config"
	"route-planner/internal/planner"
	"route-planner/internal/roadnet"
	"route-planner/internal/route"
)

func main() {
	cfg, err := config.Load(".env")
	if err != nil {
		log.Fatal(err)
	}

	mapFile := flag.String("f", cfg.MapFile, "OpenStreetMap XML file")
	printGeoJSON := flag.Bool("geojson", false, "print the route as GeoJSON")
	flag.Parse()

	if flag.NFlag() == 0 {
		fmt.Println("To specify a map file use the following format: ")
		fmt.Println("Usage: [executable] [-f filename.osm]")
	}

	fmt.Printf("Reading OpenStreetMap data from the following file: %s\n", *mapFile)
	data, err := readFile(*mapFile)
	if err != nil {
		log.Fatalf("Failed to read: %v", err)
	}

	in := bufio.NewScanner(os.Stdin)
	in.Split(bufio.ScanWords)
	var coords [4]float64
	for i, name := range []string{"start_x", "start_y", "end_x", "end_y"} {
		coords[i], err = promptPercent(in, os.Stdout, name)
		if err != nil {
			log.Fatal(err)
		}
	}

	g, err := roadnet.BuildGraph(data)
	if err != nil {
		log.Fatalf("Failed to build road network: %v", err)
	}

	p := planner.New(g, route.WithMaxExpansions(cfg.MaxExpansions))
	plan, err := p.Plan(orb.Point{coords[0], coords[1]}, orb.Point{coords[2], coords[3]})
	if errors.Is(err, route.ErrNoPath) {
		fmt.Println("No route between the selected points.")
		os.Exit(1)
	}
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("Distance: %.2f meters. \n", plan.DistanceMeters)

	if *printGeoJSON {
		out, err := json.MarshalIndent(plan.FeatureCollection(cfg.SimplifyEpsilon), "", "  ")
		if err != nil {
			log.Fatal(err)
		}
		fmt.Println(string(out))
	}
}

// readFile returns the file contents, treating an empty file as unreadable.
func readFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%s is empty", path)
	}
	return data, nil
}

// promptPercent asks for name until a number in [0, 100] is entered.
func promptPercent(in *bufio.Scanner, out io.Writer, name string) (float64, error) {
	for {
		fmt.Fprintf(out, "Input %s value must be in range [0, 100]\n", name)
		if !in.Scan() {
			if err := in.Err(); err != nil {
				return 0, err
			}
			return 0, fmt.Errorf("no value for %s: %w", name, io.ErrUnexpectedEOF)
		}
		v, err := strconv.ParseFloat(in.Text(), 64)
		if err != nil {
			continue
		}
		if planner.CheckPercent(v) == nil {
			return v, nil
		}
	}
}
