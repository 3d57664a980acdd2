// Package geo provides the geodesic and planar primitives shared by the
// street graph, the access layer, and the isochrone index. Everything here
// is a thin, axis-safe wrapper around github.com/paulmach/orb, which stores
// points as (lon, lat) — the opposite order from the spec's (lat, lon)
// convention, so we never pass orb.Point across a package boundary.
package geo

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/convexhull"
	"github.com/paulmach/orb/encoding/wkt"
	"github.com/paulmach/orb/geo"
	"github.com/paulmach/orb/planar"
	"github.com/pkg/errors"
)

// Point is a (lat, lon) coordinate in decimal degrees, WGS-84.
type Point struct {
	Lat float64
	Lon float64
}

func (p Point) toOrb() orb.Point {
	return orb.Point{p.Lon, p.Lat}
}

func fromOrb(o orb.Point) Point {
	return Point{Lat: o[1], Lon: o[0]}
}

// MetersBetween returns the geodesic distance between two points in meters.
func MetersBetween(a, b Point) float64 {
	return geo.Distance(a.toOrb(), b.toOrb())
}

// WalkSeconds converts a geodesic distance into a walking duration, given a
// pedestrian speed in meters per second. Returns 0 when a == b.
func WalkSeconds(a, b Point, walkSpeedMPS float64) int32 {
	if walkSpeedMPS <= 0 {
		walkSpeedMPS = DefaultWalkSpeedMPS
	}
	meters := MetersBetween(a, b)
	return int32(meters / walkSpeedMPS)
}

// DefaultWalkSpeedMPS is the fallback pedestrian speed (~5 km/h).
const DefaultWalkSpeedMPS = 1.38

// BBox is an axis-aligned bounding box in (lat, lon).
type BBox struct {
	MinLat, MinLon, MaxLat, MaxLon float64
}

func (b BBox) Contains(p Point) bool {
	return p.Lat >= b.MinLat && p.Lat <= b.MaxLat && p.Lon >= b.MinLon && p.Lon <= b.MaxLon
}

// Polygon is a simple (non-holed) polygon ring in (lat, lon) points.
type Polygon struct {
	ring orb.Ring
}

// ParseWKT decodes a WKT POLYGON string into a Polygon.
func ParseWKT(s string) (Polygon, error) {
	g, err := wkt.Unmarshal(s)
	if err != nil {
		return Polygon{}, errors.Wrap(err, "geo: parsing polygon wkt")
	}
	poly, ok := g.(orb.Polygon)
	if !ok || len(poly) == 0 {
		return Polygon{}, errors.New("geo: wkt geometry is not a non-empty polygon")
	}
	return Polygon{ring: poly[0]}, nil
}

// Bound returns the polygon's bounding box.
func (p Polygon) Bound() BBox {
	b := p.ring.Bound()
	return BBox{MinLat: b.Min[1], MinLon: b.Min[0], MaxLat: b.Max[1], MaxLon: b.Max[0]}
}

// Contains reports whether a point lies inside the polygon.
func (p Polygon) Contains(pt Point) bool {
	return planar.RingContains(p.ring, pt.toOrb())
}

// Empty reports whether the polygon has no ring points.
func (p Polygon) Empty() bool {
	return len(p.ring) == 0
}

// Ring returns the polygon's points in ring order.
func (p Polygon) Ring() []Point {
	out := make([]Point, len(p.ring))
	for i, o := range p.ring {
		out[i] = fromOrb(o)
	}
	return out
}

// PolygonFromPoints builds a Polygon whose boundary is the convex hull of
// pts, used to materialize an isochrone's reachable-area output (spec §4.5
// "polygon-union output form").
func PolygonFromPoints(pts []Point) Polygon {
	mp := make(orb.MultiPoint, len(pts))
	for i, p := range pts {
		mp[i] = p.toOrb()
	}
	hull := convexhull.New(mp)
	ring, ok := hull.(orb.Ring)
	if !ok {
		if poly, ok2 := hull.(orb.Polygon); ok2 && len(poly) > 0 {
			ring = poly[0]
		}
	}
	return Polygon{ring: ring}
}
