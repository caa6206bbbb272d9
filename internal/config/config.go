// Package config loads runtime settings from a .env file and the process
// environment. Environment variables win over the file.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Environment keys.
const (
	KeyMapFile         = "ROUTE_MAP_FILE"
	KeyAddr            = "ROUTE_ADDR"
	KeyMaxExpansions   = "ROUTE_MAX_EXPANSIONS"
	KeySimplifyEpsilon = "ROUTE_SIMPLIFY_EPSILON"
)

// Config holds runtime settings.
type Config struct {
	MapFile string
	Addr    string

	// MaxExpansions caps nodes expanded per search; 0 is unbounded.
	MaxExpansions int

	// SimplifyEpsilon simplifies returned route geometry, in degrees; 0 disables it.
	SimplifyEpsilon float64
}

// Default returns the settings used when nothing is configured.
func Default() Config {
	return Config{
		MapFile: "map.osm",
		Addr:    ":8080",
	}
}

// Load reads envFile if it exists, overlays the environment and applies
// defaults. A missing file is not an error.
func Load(envFile string) (Config, error) {
	fileVars, _ := godotenv.Read(envFile)
	get := func(key string) string {
		if v := os.Getenv(key); v != "" {
			return v
		}
		return fileVars[key]
	}

	cfg := Default()
	if v := get(KeyMapFile); v != "" {
		cfg.MapFile = v
	}
	if v := get(KeyAddr); v != "" {
		cfg.Addr = v
	}
	if v := get(KeyMaxExpansions); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return Config{}, fmt.Errorf("config: %s=%q: want a non-negative integer", KeyMaxExpansions, v)
		}
		cfg.MaxExpansions = n
	}
	if v := get(KeySimplifyEpsilon); v != "" {
		eps, err := strconv.ParseFloat(v, 64)
		if err != nil || eps < 0 {
			return Config{}, fmt.Errorf("config: %s=%q: want a non-negative number", KeySimplifyEpsilon, v)
		}
		cfg.SimplifyEpsilon = eps
	}
	return cfg, nil
}
