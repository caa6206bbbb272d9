package roadnet_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
	"github.com/paulmach/orb/planar"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"route-planner/internal/roadnet"
)

type testNode struct {
	id       int64
	lat, lon float64
}

type testWay struct {
	id   int64
	refs []int64
	tags map[string]string
}

// osmXML renders a minimal OSM document with a fixed bounds element.
func osmXML(nodes []testNode, ways []testWay) []byte {
	var sb strings.Builder
	sb.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	sb.WriteString(`<osm version="0.6" generator="test">` + "\n")
	sb.WriteString(`  <bounds minlat="52.0000" minlon="4.0000" maxlat="52.0100" maxlon="4.0200"/>` + "\n")
	for _, n := range nodes {
		fmt.Fprintf(&sb, `  <node id="%d" lat="%.7f" lon="%.7f" version="1"/>`+"\n", n.id, n.lat, n.lon)
	}
	for _, w := range ways {
		fmt.Fprintf(&sb, `  <way id="%d" version="1">`+"\n", w.id)
		for _, r := range w.refs {
			fmt.Fprintf(&sb, `    <nd ref="%d"/>`+"\n", r)
		}
		for k, v := range w.tags {
			fmt.Fprintf(&sb, `    <tag k="%s" v="%s"/>`+"\n", k, v)
		}
		sb.WriteString("  </way>\n")
	}
	sb.WriteString("</osm>\n")
	return []byte(sb.String())
}

// squareNodes are the corners of a small square block plus one isolated node.
var squareNodes = []testNode{
	{1, 52.0020, 4.0020},
	{2, 52.0020, 4.0060},
	{3, 52.0060, 4.0060},
	{4, 52.0060, 4.0020},
	{5, 52.0090, 4.0190},
}

func residential(id int64, refs ...int64) testWay {
	return testWay{id: id, refs: refs, tags: map[string]string{"highway": "residential"}}
}

func TestBuildGraph_Square(t *testing.T) {
	g, err := roadnet.BuildGraph(osmXML(squareNodes, []testWay{residential(10, 1, 2, 3, 4, 1)}))
	require.NoError(t, err)

	assert.Equal(t, 5, g.Len())
	require.Len(t, g.Segments(), 4)
	for _, id := range []roadnet.NodeID{1, 2, 3, 4} {
		n, ok := g.Node(id)
		require.True(t, ok)
		assert.Len(t, n.Segments(), 2)
		assert.Len(t, n.Arcs(), 2)
	}
	isolated, ok := g.Node(5)
	require.True(t, ok)
	assert.Empty(t, isolated.Segments())

	for _, s := range g.Segments() {
		assert.Equal(t, roadnet.Residential, s.Road)
		assert.Equal(t, int64(10), s.WayID)
		assert.False(t, s.OneWay)
	}
}

func TestBuildGraph_EndpointsExistAndAdjacencyIsSymmetric(t *testing.T) {
	ways := []testWay{
		residential(10, 1, 2, 3),
		residential(11, 3, 4, 1),
		{id: 12, refs: []int64{2, 4}, tags: map[string]string{"highway": "primary", "oneway": "yes"}},
	}
	g, err := roadnet.BuildGraph(osmXML(squareNodes, ways))
	require.NoError(t, err)

	for _, s := range g.Segments() {
		from, ok := g.Node(s.From.ID)
		require.True(t, ok)
		assert.Same(t, from, s.From)
		to, ok := g.Node(s.To.ID)
		require.True(t, ok)
		assert.Same(t, to, s.To)
		assert.Equal(t, planar.Distance(s.From.Point, s.To.Point), s.Length)

		assert.True(t, hasArc(s.From, s.To))
		assert.Equal(t, !s.OneWay, hasArc(s.To, s.From))
	}
}

func TestBuildGraph_SharedNodesAreOneInstance(t *testing.T) {
	ways := []testWay{residential(10, 1, 2), residential(11, 2, 3), residential(12, 2, 4)}
	g, err := roadnet.BuildGraph(osmXML(squareNodes, ways))
	require.NoError(t, err)

	hub, ok := g.Node(2)
	require.True(t, ok)
	require.Len(t, hub.Segments(), 3)
	for _, s := range hub.Segments() {
		assert.True(t, s.From == hub || s.To == hub)
	}
}

func TestBuildGraph_OneWay(t *testing.T) {
	tests := []struct {
		name     string
		tags     map[string]string
		from, to roadnet.NodeID
		segments int
	}{
		{"yes", map[string]string{"highway": "tertiary", "oneway": "yes"}, 1, 2, 1},
		{"true", map[string]string{"highway": "tertiary", "oneway": "true"}, 1, 2, 1},
		{"reversed", map[string]string{"highway": "tertiary", "oneway": "-1"}, 2, 1, 1},
		{"roundabout", map[string]string{"highway": "secondary", "junction": "roundabout"}, 1, 2, 1},
		{"motorway", map[string]string{"highway": "motorway"}, 1, 2, 1},
		{"ambiguous", map[string]string{"highway": "tertiary", "oneway": "reversible"}, 0, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := roadnet.BuildGraph(osmXML(squareNodes, []testWay{{id: 10, refs: []int64{1, 2}, tags: tt.tags}}))
			require.NoError(t, err)
			require.Len(t, g.Segments(), tt.segments)
			if tt.segments == 0 {
				return
			}
			s := g.Segments()[0]
			assert.True(t, s.OneWay)
			assert.Equal(t, tt.from, s.From.ID)
			assert.Equal(t, tt.to, s.To.ID)
			assert.Len(t, s.From.Arcs(), 1)
			assert.Empty(t, s.To.Arcs())
			assert.Len(t, s.To.Segments(), 1)
		})
	}
}

func TestBuildGraph_NonRoadWaysIgnored(t *testing.T) {
	ways := []testWay{
		{id: 10, refs: []int64{1, 2, 3, 4, 1}, tags: map[string]string{"building": "yes"}},
		{id: 11, refs: []int64{1, 3}, tags: map[string]string{"highway": "footway"}},
		{id: 12, refs: []int64{2, 4}, tags: map[string]string{"highway": "construction"}},
		// non-road ways may reference nodes outside the extract
		{id: 13, refs: []int64{1, 999}, tags: map[string]string{"waterway": "river"}},
	}
	g, err := roadnet.BuildGraph(osmXML(squareNodes, ways))
	require.NoError(t, err)
	assert.Equal(t, 5, g.Len())
	assert.Empty(t, g.Segments())

	_, err = g.FindClosestRoadNode(0, 0)
	assert.ErrorIs(t, err, roadnet.ErrEmptyGraph)
}

func TestBuildGraph_RepeatedNodeInWay(t *testing.T) {
	g, err := roadnet.BuildGraph(osmXML(squareNodes, []testWay{residential(10, 1, 2, 2, 3)}))
	require.NoError(t, err)
	assert.Len(t, g.Segments(), 2)
}

func TestBuildGraph_Malformed(t *testing.T) {
	valid := string(osmXML(squareNodes, nil))
	tests := map[string][]byte{
		"empty":      {},
		"whitespace": []byte("  \n\t "),
		"not xml":    []byte("this is not map data"),
		"wrong root": []byte(`<gpx><trk/></gpx>`),
		"truncated":  []byte(valid[:len(valid)/2]),
		"dangling":   osmXML(squareNodes, []testWay{residential(10, 1, 2, 42)}),
		"duplicate":  osmXML(append([]testNode{{1, 52.001, 4.001}}, squareNodes...), nil),
		"bad bounds": []byte(`<osm><bounds minlat="53" minlon="4" maxlat="52" maxlon="5"/></osm>`),
	}
	for name, data := range tests {
		t.Run(name, func(t *testing.T) {
			g, err := roadnet.BuildGraph(data)
			require.ErrorIs(t, err, roadnet.ErrMalformedInput)
			assert.Nil(t, g)
		})
	}
}

func TestBuildGraph_EmptyDocument(t *testing.T) {
	g, err := roadnet.BuildGraph([]byte(`<osm version="0.6"></osm>`))
	require.NoError(t, err)
	assert.Equal(t, 0, g.Len())

	_, err = g.FindClosestNode(0.5, 0.5)
	assert.ErrorIs(t, err, roadnet.ErrEmptyGraph)
}

func TestBuildGraph_Projection(t *testing.T) {
	nodes := []testNode{
		{1, 52.0000, 4.0000},
		{2, 52.0100, 4.0200},
		{3, 52.0000, 4.0100},
	}
	g, err := roadnet.BuildGraph(osmXML(nodes, []testWay{residential(10, 1, 3)}))
	require.NoError(t, err)

	sw, _ := g.Node(1)
	assert.InDelta(t, 0, sw.Point.X(), 1e-9)
	assert.InDelta(t, 0, sw.Point.Y(), 1e-9)
	assert.Equal(t, orb.Point{4.0, 52.0}, sw.LonLat)

	// The bounds are wider than tall, so the top edge sits at y == 1.
	ne, _ := g.Node(2)
	assert.InDelta(t, 1, ne.Point.Y(), 1e-9)
	assert.Greater(t, ne.Point.X(), 1.0)

	s := g.Segments()[0]
	meters := s.Length * g.MetersPerUnit()
	want := geo.Distance(s.From.LonLat, s.To.LonLat)
	assert.InEpsilon(t, want, meters, 0.01)

	assert.Equal(t, orb.Point{4.0, 52.0}, g.Bound().Min)
	require.Len(t, g.Lines(), 1)
	assert.Equal(t, orb.LineString{{4.0, 52.0}, {4.01, 52.0}}, g.Lines()[0])
}

func TestBuildGraph_BoundsFromNodes(t *testing.T) {
	data := []byte(`<osm>
  <node id="1" lat="10.0" lon="20.0"/>
  <node id="2" lat="10.5" lon="21.0"/>
</osm>`)
	g, err := roadnet.BuildGraph(data)
	require.NoError(t, err)
	assert.Equal(t, orb.Bound{Min: orb.Point{20, 10}, Max: orb.Point{21, 10.5}}, g.Bound())
	assert.Greater(t, g.MetersPerUnit(), 0.0)
}

func TestFindClosestNode(t *testing.T) {
	g, err := roadnet.BuildGraph(osmXML(squareNodes, []testWay{residential(10, 1, 2, 3, 4, 1)}))
	require.NoError(t, err)

	for _, n := range g.Nodes() {
		got, err := g.FindClosestNode(n.Point.X(), n.Point.Y())
		require.NoError(t, err)
		assert.Same(t, n, got)
	}

	// The isolated node wins the unrestricted query but not the road query.
	isolated, _ := g.Node(5)
	got, err := g.FindClosestNode(isolated.Point.X(), isolated.Point.Y())
	require.NoError(t, err)
	assert.Same(t, isolated, got)

	road, err := g.FindClosestRoadNode(isolated.Point.X(), isolated.Point.Y())
	require.NoError(t, err)
	assert.NotEqual(t, roadnet.NodeID(5), road.ID)
	assert.NotEmpty(t, road.Segments())
}

func hasArc(from, to *roadnet.Node) bool {
	for _, a := range from.Arcs() {
		if a.To == to {
			return true
		}
	}
	return false
}
