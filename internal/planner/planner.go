// Package planner resolves percentage coordinates over a road network to
// their nearest road intersections and routes between them.
package planner

import (
	"errors"
	"fmt"

	"github.com/paulmach/orb"

	"route-planner/internal/roadnet"
	"route-planner/internal/route"
)

// ErrOutOfRange indicates a coordinate outside [0, 100].
var ErrOutOfRange = errors.New("planner: coordinate must be in range [0, 100]")

// CheckPercent validates one percentage coordinate.
func CheckPercent(v float64) error {
	if !(v >= 0 && v <= 100) {
		return fmt.Errorf("%w: got %v", ErrOutOfRange, v)
	}
	return nil
}

// Planner routes between percentage coordinates on one graph. It is safe
// for concurrent use.
type Planner struct {
	graph *roadnet.Graph
	opts  []route.Option
}

// New returns a planner over g. opts are passed to every search.
func New(g *roadnet.Graph, opts ...route.Option) *Planner {
	return &Planner{graph: g, opts: opts}
}

// Graph returns the planner's road network.
func (p *Planner) Graph() *roadnet.Graph {
	return p.graph
}

// Plan is a computed route.
type Plan struct {
	Start, Goal *roadnet.Node
	Path        *route.Path

	// DistanceMeters is Path.Distance converted to ground meters.
	DistanceMeters float64
}

// Plan routes from start to end, both given as percentages of the model
// space. Coordinates are not range-checked here; see CheckPercent.
func (p *Planner) Plan(start, end orb.Point) (*Plan, error) {
	from, err := p.graph.FindClosestRoadNode(start[0]*0.01, start[1]*0.01)
	if err != nil {
		return nil, fmt.Errorf("resolve start: %w", err)
	}
	to, err := p.graph.FindClosestRoadNode(end[0]*0.01, end[1]*0.01)
	if err != nil {
		return nil, fmt.Errorf("resolve end: %w", err)
	}

	path, err := route.Search(p.graph, from, to, p.opts...)
	if err != nil {
		return nil, err
	}

	return &Plan{
		Start:          from,
		Goal:           to,
		Path:           path,
		DistanceMeters: path.Distance * p.graph.MetersPerUnit(),
	}, nil
}
