// Package route finds shortest paths over a road network with A*.
//
// The heuristic is the straight-line distance to the goal. Segment lengths
// are themselves straight-line distances, so the heuristic is admissible and
// consistent. Graphs built with lengths shorter than the distance between
// their endpoints violate this and may yield suboptimal paths.
//
// All search state lives in a table owned by one Search call, indexed by
// node position, so concurrent searches over one graph are safe.
package route

import (
	"container/heap"
	"fmt"
	"math"

	"github.com/paulmach/orb/planar"

	"route-planner/internal/roadnet"
)

type nodeState uint8

const (
	unseen nodeState = iota
	open
	closed
)

// label is the per-node search record
type label struct {
	g, h  float64
	prev  int // node index, -1 at start
	via   *roadnet.Segment
	state nodeState
	index int // position in the open set
}

// openSet implements heap.Interface over node indices ordered by f, then g,
// then node ID.
type openSet struct {
	nodes  []*roadnet.Node
	labels []label
	items  []int
}

func (s openSet) Len() int { return len(s.items) }

func (s openSet) Less(i, j int) bool {
	a, b := &s.labels[s.items[i]], &s.labels[s.items[j]]
	fa, fb := a.g+a.h, b.g+b.h
	if fa != fb {
		return fa < fb
	}
	if a.g != b.g {
		return a.g < b.g
	}
	return s.nodes[s.items[i]].ID < s.nodes[s.items[j]].ID
}

func (s openSet) Swap(i, j int) {
	s.items[i], s.items[j] = s.items[j], s.items[i]
	s.labels[s.items[i]].index = i
	s.labels[s.items[j]].index = j
}

func (s *openSet) Push(x interface{}) {
	n := x.(int)
	s.labels[n].index = len(s.items)
	s.items = append(s.items, n)
}

func (s *openSet) Pop() interface{} {
	old := s.items
	n := old[len(old)-1]
	s.labels[n].index = -1
	s.items = old[:len(old)-1]
	return n
}

// Search computes the shortest path from start to goal.
func Search(g *roadnet.Graph, start, goal *roadnet.Node, opts ...Option) (*Path, error) {
	var cfg Options
	for _, opt := range opts {
		opt(&cfg)
	}

	if err := checkMember(g, start); err != nil {
		return nil, err
	}
	if err := checkMember(g, goal); err != nil {
		return nil, err
	}

	nodes := g.Nodes()
	labels := make([]label, len(nodes))
	for i := range labels {
		labels[i] = label{g: math.Inf(1), prev: -1, index: -1}
	}
	set := &openSet{nodes: nodes, labels: labels}

	labels[start.Index] = label{
		h:     planar.Distance(start.Point, goal.Point),
		prev:  -1,
		state: open,
	}
	heap.Push(set, start.Index)

	expanded := 0
	for set.Len() > 0 {
		if cfg.MaxExpansions > 0 && expanded >= cfg.MaxExpansions {
			return nil, fmt.Errorf("%w: %d nodes", ErrExpansionLimit, expanded)
		}

		current := heap.Pop(set).(int)
		cur := &labels[current]
		cur.state = closed
		expanded++

		if current == goal.Index {
			path := reconstruct(nodes, labels, current)
			path.Expanded = expanded
			return path, nil
		}

		for _, arc := range nodes[current].Arcs() {
			next := arc.To.Index
			nl := &labels[next]
			if nl.state == closed {
				continue
			}

			tentative := cur.g + arc.Segment.Length
			if nl.state == open && tentative >= nl.g {
				continue
			}

			nl.g = tentative
			nl.prev = current
			nl.via = arc.Segment
			if nl.state == unseen {
				nl.h = planar.Distance(arc.To.Point, goal.Point)
				nl.state = open
				heap.Push(set, next)
			} else {
				heap.Fix(set, nl.index)
			}
		}
	}

	return nil, fmt.Errorf("%w: %d -> %d", ErrNoPath, start.ID, goal.ID)
}

func checkMember(g *roadnet.Graph, n *roadnet.Node) error {
	if n == nil {
		return fmt.Errorf("%w: nil node", ErrUnknownNode)
	}
	nodes := g.Nodes()
	if n.Index < 0 || n.Index >= len(nodes) || nodes[n.Index] != n {
		return fmt.Errorf("%w: %d", ErrUnknownNode, n.ID)
	}
	return nil
}

// reconstruct follows back-pointers from goal and reverses them
func reconstruct(nodes []*roadnet.Node, labels []label, goal int) *Path {
	path := &Path{Distance: labels[goal].g}
	for i := goal; i != -1; i = labels[i].prev {
		path.Nodes = append(path.Nodes, nodes[i])
		if labels[i].via != nil {
			path.Segments = append(path.Segments, labels[i].via)
		}
	}
	for i, j := 0, len(path.Nodes)-1; i < j; i, j = i+1, j-1 {
		path.Nodes[i], path.Nodes[j] = path.Nodes[j], path.Nodes[i]
	}
	for i, j := 0, len(path.Segments)-1; i < j; i, j = i+1, j-1 {
		path.Segments[i], path.Segments[j] = path.Segments[j], path.Segments[i]
	}
	return path
}
