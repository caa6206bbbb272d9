// Command routeserver loads a road network once and serves shortest-path
// queries over HTTP.
package main

import (
	"flag"
	"log"
	"net/http"
	"os"

	"route-planner/internal/config"
	"route-planner/internal/roadnet"
	"route-planner/internal/route"
	"route-planner/internal/server"
)

func main() {
	cfg, err := config.Load(".env")
	if err != nil {
		log.Fatal(err)
	}
	flag.StringVar(&cfg.MapFile, "f", cfg.MapFile, "OpenStreetMap XML file")
	flag.StringVar(&cfg.Addr, "addr", cfg.Addr, "listen address")
	flag.Parse()

	log.Println("========================================")
	log.Println("Road Route Planner Server")
	log.Println("========================================")
	log.Printf("Loading road network from %s...\n", cfg.MapFile)

	data, err := os.ReadFile(cfg.MapFile)
	if err != nil {
		log.Fatalf("Failed to read map file: %v", err)
	}
	g, err := roadnet.BuildGraph(data)
	if err != nil {
		log.Fatalf("Failed to build road network: %v", err)
	}

	srv := server.New(cfg.SimplifyEpsilon, route.WithMaxExpansions(cfg.MaxExpansions))
	srv.SetGraph(g)

	log.Printf("Server starting on %s\n", cfg.Addr)
	log.Println("")
	log.Println("Endpoints:")
	log.Println("  POST /route    - Compute route between two percentage coordinates")
	log.Println("  GET  /network  - Road network as GeoJSON")
	log.Println("  GET  /health   - Check server status")
	log.Println("  GET  /metrics  - Prometheus metrics")
	log.Println("========================================")

	if err := http.ListenAndServe(cfg.Addr, srv.Handler()); err != nil {
		log.Fatal(err)
	}
}
