package query

import (
	"github.com/go-transit/raptor-engine/geo"
	"github.com/go-transit/raptor-engine/isochrone"
	"github.com/go-transit/raptor-engine/raptor"
	"github.com/go-transit/raptor-engine/transitmodel"
)

// CalculateIsochrone runs a single sweep from origin and rasterizes it
// against a pre-built isochrone.Index, returning both the per-cell travel
// times and their convex-hull union polygon (spec §6 "calculate_isochrone").
func CalculateIsochrone(model *transitmodel.Model, origin *transitmodel.TransitPoint, index *isochrone.Index, departAt, maxTravelTime int32, opts Options) (map[geo.CellID]int32, geo.Polygon) {
	opts.fillDefaults()
	pool := raptor.NewPool(len(model.Stops))
	st := pool.Get(opts.rounds())
	defer pool.Put(st)

	res := raptor.Sweep(model, st, origin.Access, departAt, opts.rounds(), nil)
	reachable := isochrone.Rasterize(model, index, res, origin, departAt, maxTravelTime)
	return reachable, index.Union(reachable)
}
