package query

import (
	"github.com/go-transit/raptor-engine/raptor"
	"github.com/go-transit/raptor-engine/transitmodel"
)

// RouteResult is the summary output of FindRoute (spec §6 "find_route").
type RouteResult struct {
	Reached   bool
	ArrivalS  int32
	Transfers int
}

// bestEgress picks the stop in a Result's reached set that minimizes
// arrival-at-stop plus egress walk to dest, used by both FindRoute and
// DetailedJourney (spec §4.4 "egress composition"). Ties break toward the
// lowest stop id, since dest.Access is already sorted by Stop.
func bestEgress(res *raptor.Result, dest *transitmodel.TransitPoint) (transitmodel.StopID, int32, bool) {
	best := raptor.Unreachable
	var bestStop transitmodel.StopID
	found := false
	for _, a := range dest.Access {
		arr := res.ArrivalAt(a.Stop)
		if arr == raptor.Unreachable {
			continue
		}
		cand := arr + a.WalkS
		if !found || cand < best {
			best = cand
			bestStop = a.Stop
			found = true
		}
	}
	return bestStop, best, found
}

// FindRoute computes the earliest arrival from origin to dest departing at
// departAt, with no leg-level detail (spec §6 "find_route").
func FindRoute(model *transitmodel.Model, origin, dest *transitmodel.TransitPoint, departAt int32, opts Options) RouteResult {
	opts.fillDefaults()
	pool := raptor.NewPool(len(model.Stops))
	st := pool.Get(opts.rounds())
	defer pool.Put(st)

	res := raptor.Sweep(model, st, origin.Access, departAt, opts.rounds(), dest.Access)
	stop, arrival, ok := bestEgress(res, dest)
	if !ok {
		return RouteResult{}
	}
	return RouteResult{Reached: true, ArrivalS: arrival, Transfers: res.Transfers(stop)}
}

// DetailedJourney computes the same earliest-arrival journey as FindRoute
// but returns the full leg-by-leg itinerary including the final egress walk
// (spec §6 "detailed_journey").
func DetailedJourney(model *transitmodel.Model, origin, dest *transitmodel.TransitPoint, departAt int32, opts Options) ([]raptor.Leg, bool) {
	opts.fillDefaults()
	pool := raptor.NewPool(len(model.Stops))
	st := pool.Get(opts.rounds())
	defer pool.Put(st)

	res := raptor.Sweep(model, st, origin.Access, departAt, opts.rounds(), dest.Access)
	stop, arrival, ok := bestEgress(res, dest)
	if !ok {
		return nil, false
	}

	legs := res.Reconstruct(stop)
	legs = append(legs, raptor.Leg{
		Kind:     raptor.LegWalk,
		FromStop: stop,
		DepartS:  res.ArrivalAt(stop),
		ArriveS:  arrival,
	})
	return legs, true
}

// OneToMany runs a single sweep from origin and evaluates egress against
// every destination without re-running the search (spec §4.4 "one-to-many
// reuse", §6 "one_to_many"). Unreached destinations report Reached=false.
func OneToMany(model *transitmodel.Model, origin *transitmodel.TransitPoint, dests []*transitmodel.TransitPoint, departAt int32, opts Options) []RouteResult {
	opts.fillDefaults()
	pool := raptor.NewPool(len(model.Stops))
	st := pool.Get(opts.rounds())
	defer pool.Put(st)

	res := raptor.Sweep(model, st, origin.Access, departAt, opts.rounds(), nil)

	out := make([]RouteResult, len(dests))
	for i, d := range dests {
		stop, arrival, ok := bestEgress(res, d)
		if !ok {
			continue
		}
		out[i] = RouteResult{Reached: true, ArrivalS: arrival, Transfers: res.Transfers(stop)}
	}
	return out
}
