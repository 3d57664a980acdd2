package query

import (
	"sort"

	"github.com/go-transit/raptor-engine/transitmodel"
)

// Departure is one candidate departure's resulting journey, as returned by
// TimeRange (spec §6 "time_range").
type Departure struct {
	DepartS   int32
	ArriveS   int32
	Transfers int
}

// TimeRange evaluates a window of possible departure times from origin to
// dest and returns the distinct (depart, arrive) outcomes, sorted by
// departure (spec §4.6). Candidate times are the union of a coarse scan
// grid (Options.TimeRangeGridStep) and every departure at origin's access
// stops that would let a rider just catch a scheduled trip — scanning only
// the grid would miss the instant a trip becomes catchable, and scanning
// only trip departures would miss windows with no service at all.
func TimeRange(model *transitmodel.Model, origin, dest *transitmodel.TransitPoint, windowStart, windowEnd int32, opts Options) []Departure {
	opts.fillDefaults()

	candidates := map[int32]bool{}
	for t := windowStart; t <= windowEnd; t += opts.TimeRangeGridStep {
		candidates[t] = true
	}
	for _, a := range origin.Access {
		for _, rm := range model.Stops[a.Stop].Routes {
			route := model.Routes[rm.Route]
			for _, tid := range route.Trips {
				trip := model.Trips[tid]
				dep := trip.DepartureS[rm.Pos] - a.WalkS
				if dep >= windowStart && dep <= windowEnd {
					candidates[dep] = true
				}
			}
		}
	}

	times := make([]int32, 0, len(candidates))
	for t := range candidates {
		times = append(times, t)
	}
	sort.Slice(times, func(i, j int) bool { return times[i] < times[j] })

	seen := map[[2]int32]bool{}
	var out []Departure
	for _, t := range times {
		rr := FindRoute(model, origin, dest, t, opts)
		if !rr.Reached {
			continue
		}
		key := [2]int32{t, rr.ArrivalS}
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, Departure{DepartS: t, ArriveS: rr.ArrivalS, Transfers: rr.Transfers})
	}
	return out
}
