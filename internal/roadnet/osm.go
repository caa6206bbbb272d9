package roadnet

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/osm"
)

// BuildGraph parses OpenStreetMap XML into a road network.
//
// Every declared node becomes a graph node. Ways whose highway tag names a
// routable road contribute one segment per consecutive node pair; one-way
// roads contribute segments traversable in the way's direction only. Any
// failure returns ErrMalformedInput and no graph.
func BuildGraph(data []byte) (*Graph, error) {
	startTime := time.Now()

	doc, err := decodeOSM(data)
	if err != nil {
		return nil, err
	}

	bound, err := sourceBound(doc)
	if err != nil {
		return nil, err
	}
	proj := newProjection(bound)

	b := NewBuilder()
	b.SetBound(bound)
	b.SetMetersPerUnit(proj.metersPerUnit())

	for _, n := range doc.Nodes {
		ll := orb.Point{n.Lon, n.Lat}
		node, err := b.AddNode(NodeID(n.ID), proj.apply(ll))
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformedInput, err)
		}
		node.LonLat = ll
	}

	skipped := 0
	for _, w := range doc.Ways {
		road := roadTypeOf(w.Tags.Find("highway"))
		if !road.Routable() {
			continue
		}
		dir := wayDirection(w.Tags)
		if dir == ambiguous {
			skipped++
			continue
		}

		ids := make([]NodeID, len(w.Nodes))
		for i, wn := range w.Nodes {
			if _, ok := b.nodes[NodeID(wn.ID)]; !ok {
				return nil, fmt.Errorf("%w: way %d references undeclared node %d",
					ErrMalformedInput, w.ID, wn.ID)
			}
			ids[i] = NodeID(wn.ID)
		}
		if dir == backward {
			reverse(ids)
		}

		for i := 1; i < len(ids); i++ {
			if ids[i-1] == ids[i] {
				continue
			}
			s, err := b.AddSegment(ids[i-1], ids[i], dir != bothWays)
			if err != nil {
				return nil, fmt.Errorf("%w: way %d: %w", ErrMalformedInput, w.ID, err)
			}
			s.Road = road
			s.WayID = int64(w.ID)
		}
	}

	g := b.Build()
	log.Printf("Road network built: %d nodes, %d segments (%d ambiguous ways skipped) in %s\n",
		g.Len(), len(g.Segments()), skipped, time.Since(startTime).Round(time.Millisecond))
	return g, nil
}

// decodeOSM requires an <osm> root element and decodes it.
func decodeOSM(data []byte) (*osm.OSM, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("%w: empty buffer", ErrMalformedInput)
	}

	dec := xml.NewDecoder(bytes.NewReader(data))
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: no root element", ErrMalformedInput)
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformedInput, err)
		}

		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		if start.Name.Local != "osm" {
			return nil, fmt.Errorf("%w: root element is <%s>, want <osm>", ErrMalformedInput, start.Name.Local)
		}

		doc := &osm.OSM{}
		if err := dec.DecodeElement(doc, &start); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformedInput, err)
		}
		return doc, nil
	}
}

// sourceBound uses the declared <bounds> or else the node extent.
func sourceBound(doc *osm.OSM) (orb.Bound, error) {
	if doc.Bounds != nil {
		bd := doc.Bounds
		if bd.MinLat > bd.MaxLat || bd.MinLon > bd.MaxLon {
			return orb.Bound{}, fmt.Errorf("%w: inverted bounds", ErrMalformedInput)
		}
		return orb.Bound{
			Min: orb.Point{bd.MinLon, bd.MinLat},
			Max: orb.Point{bd.MaxLon, bd.MaxLat},
		}, nil
	}

	if len(doc.Nodes) == 0 {
		return orb.Bound{}, nil
	}
	first := orb.Point{doc.Nodes[0].Lon, doc.Nodes[0].Lat}
	bound := orb.Bound{Min: first, Max: first}
	for _, n := range doc.Nodes[1:] {
		bound = bound.Extend(orb.Point{n.Lon, n.Lat})
	}
	return bound, nil
}

func reverse(ids []NodeID) {
	for i, j := 0, len(ids)-1; i < j; i, j = i+1, j-1 {
		ids[i], ids[j] = ids[j], ids[i]
	}
}
