package street

import (
	"github.com/tidwall/rtree"

	"github.com/go-transit/raptor-engine/geo"
)

// Index is an R-tree over street node coordinates, used for nearest-node
// snapping (spec §4.3 step 1) and for the isochrone index's cell-centroid
// lookups (spec §4.5). Grounded on github.com/tidwall/rtree, the same
// spatial index OneBusAway-maglev and azybler-map_router depend on for
// stop/node proximity queries.
type Index struct {
	tr *rtree.RTreeG[NodeID]
	g  *Graph
}

func newIndex(g *Graph) *Index {
	tr := &rtree.RTreeG[NodeID]{}
	for i := 0; i < g.NumNodes(); i++ {
		n := NodeID(i)
		pt := [2]float64{g.NodeLon[n], g.NodeLat[n]}
		tr.Insert(pt, pt, n)
	}
	return &Index{tr: tr, g: g}
}

// boxDist returns a lower-bound (for branch pruning) or exact (for a leaf
// item) squared planar distance from p to the given box, in the tree's
// native lon/lat degrees. Its order can differ slightly from geodesic
// order, so Nearest re-ranks the closest candidates by geodesic distance.
func boxDist(p [2]float64, min, max [2]float64) float64 {
	dx := 0.0
	if p[0] < min[0] {
		dx = min[0] - p[0]
	} else if p[0] > max[0] {
		dx = p[0] - max[0]
	}
	dy := 0.0
	if p[1] < min[1] {
		dy = min[1] - p[1]
	} else if p[1] > max[1] {
		dy = p[1] - max[1]
	}
	return dx*dx + dy*dy
}

// Nearest returns the closest street node to (lat, lon), ties broken by
// the smallest NodeID (spec §4.3 step 1), plus the geodesic distance in
// meters.
func (idx *Index) Nearest(lat, lon float64) (NodeID, float64, bool) {
	p := [2]float64{lon, lat}
	best := NodeID(-1)
	bestMeters := 0.0
	found := false
	visited := 0

	idx.tr.Nearby(
		func(min, max [2]float64, data NodeID, item bool) float64 {
			return boxDist(p, min, max)
		},
		func(min, max [2]float64, data NodeID, dist float64) bool {
			meters := geo.MetersBetween(
				geo.Point{Lat: lat, Lon: lon},
				idx.g.Point(data),
			)
			if !found || meters < bestMeters || (meters == bestMeters && data < best) {
				best = data
				bestMeters = meters
				found = true
			}
			// A handful of candidates is enough to resolve near-ties
			// between the planar bound and true geodesic distance;
			// stop after the closest 8 leaves.
			visited++
			return visited < 8
		},
	)
	return best, bestMeters, found
}
