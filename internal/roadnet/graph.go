// Package roadnet models a road network as a graph of intersections and
// road segments.
//
// A Graph is built once, either from OpenStreetMap XML with BuildGraph or
// programmatically with a Builder, and its topology never changes afterwards.
// Nodes carry no search state, so any number of searches may read the same
// Graph concurrently.
package roadnet

import (
	"fmt"
	"sort"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"

	"route-planner/internal/geoindex"
)

// NodeID identifies a node. For graphs built from map data it is the OSM
// node ID.
type NodeID int64

// Node is a graph vertex.
type Node struct {
	ID NodeID

	// Index is the node's position in Graph.Nodes. Nodes are ordered by ID,
	// so comparing indices is the same as comparing IDs.
	Index int

	// Point is the position in the normalised model space.
	Point orb.Point

	// LonLat is the source position. Programmatic graphs store Point here.
	LonLat orb.Point

	segments []*Segment
	arcs     []Arc
}

// Segments returns every segment touching n, including one-way segments
// that can only be entered from the other end.
func (n *Node) Segments() []*Segment {
	return n.segments
}

// Arcs returns the segments that can be traversed away from n.
func (n *Node) Arcs() []Arc {
	return n.arcs
}

// Segment is a straight piece of road between two nodes.
type Segment struct {
	From, To *Node

	// Length is the straight-line distance between the endpoints in model
	// space. Lengths declared by map data are never used.
	Length float64

	// OneWay segments may only be traversed From -> To.
	OneWay bool

	Road  RoadType
	WayID int64
}

// Other returns the endpoint of s opposite to n.
func (s *Segment) Other(n *Node) *Node {
	if s.From == n {
		return s.To
	}
	return s.From
}

// Arc is one traversable direction of a segment.
type Arc struct {
	To      *Node
	Segment *Segment
}

// Graph is an immutable road network.
type Graph struct {
	nodes    []*Node
	byID     map[NodeID]*Node
	segments []*Segment

	index     *geoindex.Index
	roadIndex *geoindex.Index

	bound         orb.Bound
	metersPerUnit float64
}

// Len returns the number of nodes.
func (g *Graph) Len() int {
	return len(g.nodes)
}

// Nodes returns all nodes ordered by ID. The slice must not be modified.
func (g *Graph) Nodes() []*Node {
	return g.nodes
}

// Node looks up a node by ID.
func (g *Graph) Node(id NodeID) (*Node, bool) {
	n, ok := g.byID[id]
	return n, ok
}

// Segments returns all segments in insertion order.
func (g *Graph) Segments() []*Segment {
	return g.segments
}

// Bound is the source-coordinate extent the graph was projected from.
func (g *Graph) Bound() orb.Bound {
	return g.bound
}

// MetersPerUnit converts model-space distances to ground meters.
func (g *Graph) MetersPerUnit() float64 {
	return g.metersPerUnit
}

// FindClosestNode returns the node nearest to (x, y) in model space. Ties
// go to the lowest node ID.
func (g *Graph) FindClosestNode(x, y float64) (*Node, error) {
	return g.closest(g.index, x, y)
}

// FindClosestRoadNode is FindClosestNode restricted to nodes that touch at
// least one segment.
func (g *Graph) FindClosestRoadNode(x, y float64) (*Node, error) {
	return g.closest(g.roadIndex, x, y)
}

func (g *Graph) closest(ix *geoindex.Index, x, y float64) (*Node, error) {
	if ix.Len() == 0 {
		return nil, ErrEmptyGraph
	}
	it, err := ix.Nearest(orb.Point{x, y})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEmptyGraph, err)
	}
	return g.byID[NodeID(it.ID)], nil
}

// Lines returns every segment as a two-point line in source coordinates.
func (g *Graph) Lines() []orb.LineString {
	lines := make([]orb.LineString, 0, len(g.segments))
	for _, s := range g.segments {
		lines = append(lines, orb.LineString{s.From.LonLat, s.To.LonLat})
	}
	return lines
}

// Builder assembles a Graph. The zero value is not usable; call NewBuilder.
type Builder struct {
	nodes         map[NodeID]*Node
	segments      []*Segment
	bound         orb.Bound
	metersPerUnit float64
}

// NewBuilder returns an empty builder.
func NewBuilder() *Builder {
	return &Builder{
		nodes:         make(map[NodeID]*Node),
		metersPerUnit: 1,
	}
}

// AddNode declares a node at model-space position p.
func (b *Builder) AddNode(id NodeID, p orb.Point) (*Node, error) {
	if _, ok := b.nodes[id]; ok {
		return nil, fmt.Errorf("%w: %d", ErrDuplicateNode, id)
	}
	n := &Node{ID: id, Point: p, LonLat: p}
	b.nodes[id] = n
	return n, nil
}

// AddSegment connects two declared nodes. The segment length is the
// distance between their positions.
func (b *Builder) AddSegment(from, to NodeID, oneWay bool) (*Segment, error) {
	a, ok := b.nodes[from]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownNode, from)
	}
	c, ok := b.nodes[to]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownNode, to)
	}
	if a == c {
		return nil, fmt.Errorf("%w: %d", ErrSelfLoop, from)
	}

	s := &Segment{
		From:   a,
		To:     c,
		Length: planar.Distance(a.Point, c.Point),
		OneWay: oneWay,
	}
	a.segments = append(a.segments, s)
	c.segments = append(c.segments, s)
	a.arcs = append(a.arcs, Arc{To: c, Segment: s})
	if !oneWay {
		c.arcs = append(c.arcs, Arc{To: a, Segment: s})
	}
	b.segments = append(b.segments, s)
	return s, nil
}

// SetBound records the source extent reported by Graph.Bound.
func (b *Builder) SetBound(bound orb.Bound) {
	b.bound = bound
}

// SetMetersPerUnit sets the model-to-meters factor. It defaults to 1.
func (b *Builder) SetMetersPerUnit(m float64) {
	b.metersPerUnit = m
}

// Build finalises the graph and its spatial indices. The builder must not
// be used afterwards.
func (b *Builder) Build() *Graph {
	g := &Graph{
		nodes:         make([]*Node, 0, len(b.nodes)),
		byID:          b.nodes,
		segments:      b.segments,
		bound:         b.bound,
		metersPerUnit: b.metersPerUnit,
	}
	for _, n := range b.nodes {
		g.nodes = append(g.nodes, n)
	}
	sort.Slice(g.nodes, func(i, j int) bool { return g.nodes[i].ID < g.nodes[j].ID })

	all := make([]geoindex.Item, 0, len(g.nodes))
	roads := make([]geoindex.Item, 0, len(g.nodes))
	for i, n := range g.nodes {
		n.Index = i
		it := geoindex.Item{ID: int64(n.ID), Pos: n.Point}
		all = append(all, it)
		if len(n.segments) > 0 {
			roads = append(roads, it)
		}
	}
	g.index = geoindex.Build(all)
	g.roadIndex = geoindex.Build(roads)

	b.nodes = nil
	b.segments = nil
	return g
}
