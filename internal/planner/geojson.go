package planner

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/simplify"

	"route-planner/internal/roadnet"
)

// Line returns the route through the source coordinates of its nodes.
func (p *Plan) Line() orb.LineString {
	line := make(orb.LineString, len(p.Path.Nodes))
	for i, n := range p.Path.Nodes {
		line[i] = n.LonLat
	}
	return line
}

// FeatureCollection renders the route for map display: the route line plus
// start and goal points. A positive epsilon simplifies the line with
// Douglas-Peucker in source degrees.
func (p *Plan) FeatureCollection(epsilon float64) *geojson.FeatureCollection {
	line := p.Line()
	if epsilon > 0 && len(line) > 2 {
		line = simplify.DouglasPeucker(epsilon).LineString(line)
	}

	fc := geojson.NewFeatureCollection()

	f := geojson.NewFeature(line)
	f.Properties["kind"] = "route"
	f.Properties["distance"] = p.Path.Distance
	f.Properties["distanceMeters"] = p.DistanceMeters
	f.Properties["nodes"] = len(p.Path.Nodes)
	fc.Append(f)

	fc.Append(nodeFeature(p.Start, "start"))
	fc.Append(nodeFeature(p.Goal, "goal"))
	return fc
}

func nodeFeature(n *roadnet.Node, kind string) *geojson.Feature {
	f := geojson.NewFeature(n.LonLat)
	f.ID = int64(n.ID)
	f.Properties["kind"] = kind
	return f
}

// NetworkFeatureCollection renders every segment of g as a line feature.
func NetworkFeatureCollection(g *roadnet.Graph) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for i, line := range g.Lines() {
		s := g.Segments()[i]
		f := geojson.NewFeature(line)
		f.Properties["road"] = s.Road.String()
		f.Properties["oneway"] = s.OneWay
		if s.WayID != 0 {
			f.Properties["way"] = s.WayID
		}
		fc.Append(f)
	}
	return fc
}
