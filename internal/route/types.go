package route

import (
	"errors"

	"route-planner/internal/roadnet"
)

// Sentinel errors returned by Search.
var (
	// ErrNoPath indicates that the goal is not reachable from the start.
	// It is an ordinary outcome; the graph stays usable.
	ErrNoPath = errors.New("route: no path between start and goal")

	// ErrUnknownNode indicates a start or goal that does not belong to the graph.
	ErrUnknownNode = errors.New("route: node does not belong to graph")

	// ErrExpansionLimit indicates that WithMaxExpansions stopped the search.
	ErrExpansionLimit = errors.New("route: node expansion limit reached")
)

// Path is the result of one search.
type Path struct {
	// Nodes runs from start to goal inclusive.
	Nodes []*roadnet.Node

	// Segments[i] joins Nodes[i] and Nodes[i+1].
	Segments []*roadnet.Segment

	// Distance is the sum of segment lengths in model units.
	Distance float64

	// Expanded counts nodes popped from the open set.
	Expanded int
}

// Options configures Search.
type Options struct {
	// MaxExpansions caps popped nodes; 0 means unbounded.
	MaxExpansions int
}

// Option is a functional option for Search.
type Option func(*Options)

// WithMaxExpansions stops the search with ErrExpansionLimit after n nodes
// have been expanded without reaching the goal. n <= 0 removes the cap.
func WithMaxExpansions(n int) Option {
	return func(o *Options) {
		if n < 0 {
			n = 0
		}
		o.MaxExpansions = n
	}
}
