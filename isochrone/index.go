// Package isochrone builds a reusable hex-cell index over a fixed
// catchment polygon and rasterizes a raptor.Result against it into a
// reachable-area map (spec §4.5 "calculate_isochrone").
package isochrone

import (
	"sort"

	"github.com/go-transit/raptor-engine/geo"
	"github.com/go-transit/raptor-engine/raptor"
	"github.com/go-transit/raptor-engine/street"
	"github.com/go-transit/raptor-engine/transitmodel"
)

// Index is a hex-cell tiling of a fixed polygon, with each cell pre-bound
// to its nearest in-polygon street node. Built once per polygon and reused
// across every isochrone call against that area (spec §4.5 "index built
// once per polygon").
type Index struct {
	Polygon    geo.Polygon
	Resolution float64

	grid     geo.HexGrid
	CellNode map[geo.CellID]street.NodeID
}

// BuildOptions configures isochrone index construction.
type BuildOptions struct {
	// ResolutionMeters is the hex cell edge length.
	ResolutionMeters float64
	// SnapToleranceS applies when the street node nearest a cell's
	// centroid lies outside the polygon: it bounds the walk (in seconds)
	// from that node to an in-polygon street node, and the cell is dropped
	// from the index when none is within it.
	SnapToleranceS int32
}

func (o *BuildOptions) fillDefaults() {
	if o.ResolutionMeters <= 0 {
		o.ResolutionMeters = 150
	}
	if o.SnapToleranceS <= 0 {
		o.SnapToleranceS = 180
	}
}

// BuildIndex enumerates the hex cells covering polygon and snaps each to
// the nearest street node that itself lies inside the polygon (spec §4.5
// steps 1: "enumerate hex cells, snap centroid to nearest in-polygon
// node"). Cells with no reachable in-polygon node within SnapToleranceS
// are dropped.
func BuildIndex(g *street.Graph, polygon geo.Polygon, opts BuildOptions) (*Index, error) {
	opts.fillDefaults()
	if polygon.Empty() {
		return &Index{Polygon: polygon, Resolution: opts.ResolutionMeters, CellNode: map[geo.CellID]street.NodeID{}}, nil
	}

	bound := polygon.Bound()
	origin := geo.Point{Lat: bound.MinLat, Lon: bound.MinLon}
	grid := geo.NewHexGrid(origin, opts.ResolutionMeters)
	cells := grid.CellsCovering(polygon)

	dk := street.NewDijkstra(g)
	cellNode := make(map[geo.CellID]street.NodeID, len(cells))

	for _, c := range cells {
		center := grid.CellCenter(c)
		node, _, ok := g.Index().Nearest(center.Lat, center.Lon)
		if !ok {
			continue
		}
		if polygon.Contains(g.Point(node)) {
			cellNode[c] = node
			continue
		}

		res := dk.SingleSource(node)
		best := street.Unreachable
		var bestNode street.NodeID
		found := false
		for n := 0; n < g.NumNodes(); n++ {
			d := res.Dist(street.NodeID(n))
			if d == street.Unreachable || d > opts.SnapToleranceS || d >= best {
				continue
			}
			if !polygon.Contains(g.Point(street.NodeID(n))) {
				continue
			}
			best = d
			bestNode = street.NodeID(n)
			found = true
		}
		res.Release()
		if found {
			cellNode[c] = bestNode
		}
	}

	return &Index{Polygon: polygon, Resolution: opts.ResolutionMeters, grid: grid, CellNode: cellNode}, nil
}

// arrivalAtNode returns the earliest time the sweep result reaches node via
// any stop's precomputed street-walking access, or raptor.Unreachable.
func arrivalAtNode(model *transitmodel.Model, res *raptor.Result, node street.NodeID) int32 {
	best := raptor.Unreachable
	for sid := range model.Stops {
		arr := res.ArrivalAt(transitmodel.StopID(sid))
		if arr == raptor.Unreachable {
			continue
		}
		list := model.StopNodeAccess[sid]
		j := sort.Search(len(list), func(i int) bool { return list[i].Node >= node })
		if j < len(list) && list[j].Node == node {
			if cand := arr + list[j].WalkS; cand < best {
				best = cand
			}
		}
	}
	return best
}

// Rasterize evaluates every indexed cell's earliest arrival from a sweep
// result and keeps those reachable by departAt+maxTravelTime, reporting
// elapsed travel time in seconds (spec §4.5 steps 2-4): arrival_at(v) =
// min(origin_walk_to_v, min over stops s of tau_star[s]+walk(s,v)). origin
// may be nil (no direct-walk term considered) when the caller has no
// TransitPoint to walk from, e.g. in stop-access-only tests.
func Rasterize(model *transitmodel.Model, index *Index, res *raptor.Result, origin *transitmodel.TransitPoint, departAt, maxTravelTime int32) map[geo.CellID]int32 {
	deadline := departAt + maxTravelTime

	var originRes *street.Result
	if origin != nil && model.Dijkstra() != nil {
		originRes = model.Dijkstra().SingleSource(origin.Node)
		defer originRes.Release()
	}

	reachable := make(map[geo.CellID]int32, len(index.CellNode))
	for cell, node := range index.CellNode {
		arr := arrivalAtNode(model, res, node)
		if originRes != nil {
			if d := originRes.Dist(node); d != street.Unreachable {
				if cand := departAt + d; cand < arr {
					arr = cand
				}
			}
		}
		if arr == raptor.Unreachable || arr > deadline {
			continue
		}
		reachable[cell] = arr - departAt
	}
	return reachable
}

// Union builds the convex-hull polygon covering every reachable cell's
// hexagon footprint (spec §4.5 "polygon-union output form"). An exact
// polygon union of hexagon footprints is unnecessary at isochrone
// resolution; the hull is a close, always-simple approximation.
func (idx *Index) Union(reachable map[geo.CellID]int32) geo.Polygon {
	var pts []geo.Point
	for cell := range reachable {
		corners := idx.grid.CellCorners(cell)
		pts = append(pts, corners[:]...)
	}
	if len(pts) == 0 {
		return geo.Polygon{}
	}
	return geo.PolygonFromPoints(pts)
}
