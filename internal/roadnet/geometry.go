package roadnet

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/project"
)

const (
	equatorialRadius = 6378137.0
	polarRadius      = 6356752.3
	degToRad         = math.Pi / 180.0
)

// radiusByLatitude returns the geocentric earth radius in meters at lat degrees.
func radiusByLatitude(lat float64) float64 {
	l := lat * degToRad
	a, b := equatorialRadius, polarRadius
	num := math.Pow(a*a*math.Cos(l), 2) + math.Pow(b*b*math.Sin(l), 2)
	den := math.Pow(a*math.Cos(l), 2) + math.Pow(b*math.Sin(l), 2)
	return math.Sqrt(num / den)
}

// projection maps lon/lat into model space: Mercator meters at the local
// earth radius, shifted to the bound's south-west corner and divided by the
// shorter side of the projected bound.
type projection struct {
	origin   orb.Point
	ratio    float64
	scale    float64
	midLatCo float64
}

func newProjection(b orb.Bound) projection {
	midLat := (b.Min.Lat() + b.Max.Lat()) / 2
	p := projection{
		ratio:    radiusByLatitude(midLat) / equatorialRadius,
		midLatCo: math.Cos(midLat * degToRad),
	}

	lo := p.mercator(b.Min)
	hi := p.mercator(b.Max)
	dx, dy := hi[0]-lo[0], hi[1]-lo[1]

	p.origin = lo
	p.scale = math.Min(dx, dy)
	if p.scale <= 0 {
		p.scale = math.Max(dx, dy)
	}
	if p.scale <= 0 {
		p.scale = 1
	}
	return p
}

func (p projection) mercator(ll orb.Point) orb.Point {
	m := project.WGS84.ToMercator(ll)
	return orb.Point{m[0] * p.ratio, m[1] * p.ratio}
}

// apply projects a lon/lat point into model space
func (p projection) apply(ll orb.Point) orb.Point {
	m := p.mercator(ll)
	return orb.Point{
		(m[0] - p.origin[0]) / p.scale,
		(m[1] - p.origin[1]) / p.scale,
	}
}

// metersPerUnit undoes the scale and the Mercator stretch at mid latitude.
func (p projection) metersPerUnit() float64 {
	return p.scale * p.midLatCo
}
