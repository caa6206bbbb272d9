package roadnet

import "github.com/paulmach/osm"

// RoadType classifies a way by its highway tag.
type RoadType int

const (
	RoadInvalid RoadType = iota
	Motorway
	Trunk
	Primary
	Secondary
	Tertiary
	Residential
	Service
	Unclassified
	Footway
)

var roadTypeNames = [...]string{
	RoadInvalid:  "invalid",
	Motorway:     "motorway",
	Trunk:        "trunk",
	Primary:      "primary",
	Secondary:    "secondary",
	Tertiary:     "tertiary",
	Residential:  "residential",
	Service:      "service",
	Unclassified: "unclassified",
	Footway:      "footway",
}

func (t RoadType) String() string {
	if t < 0 || int(t) >= len(roadTypeNames) {
		return roadTypeNames[RoadInvalid]
	}
	return roadTypeNames[t]
}

// Routable reports whether ways of this type take part in routing.
func (t RoadType) Routable() bool {
	return t != RoadInvalid && t != Footway
}

func roadTypeOf(highway string) RoadType {
	switch highway {
	case "motorway", "motorway_link":
		return Motorway
	case "trunk", "trunk_link":
		return Trunk
	case "primary", "primary_link":
		return Primary
	case "secondary", "secondary_link":
		return Secondary
	case "tertiary", "tertiary_link":
		return Tertiary
	case "residential", "living_street":
		return Residential
	case "service":
		return Service
	case "unclassified":
		return Unclassified
	case "footway", "bridleway", "steps", "path", "pedestrian":
		return Footway
	}
	return RoadInvalid
}

type direction int

const (
	bothWays direction = iota
	forward
	backward
	ambiguous
)

// wayDirection interprets the oneway tag and the tags that imply it.
// Values that cannot be interpreted yield ambiguous; such ways are dropped
// since their direction might be wrong.
func wayDirection(tags osm.Tags) direction {
	switch tags.Find("oneway") {
	case "yes", "true", "1":
		return forward
	case "-1", "reverse":
		return backward
	case "no", "false", "0":
		return bothWays
	case "":
	default:
		return ambiguous
	}

	if tags.Find("junction") == "roundabout" {
		return forward
	}
	switch tags.Find("highway") {
	case "motorway", "motorway_link":
		return forward
	}
	return bothWays
}
