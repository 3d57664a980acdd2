package raptor

import (
	"sort"

	"github.com/go-transit/raptor-engine/transitmodel"
)

// Sweep runs a round-based earliest-arrival search from access over model,
// for up to maxRounds rounds, departing at departAt seconds since the query
// date's midnight (spec §4.4 "RAPTOR round structure"). When dest is
// non-nil, arrivals at stops that cannot possibly improve the best known
// arrival at the destination are pruned (spec §4.4 "target pruning").
//
// Sweep uses state as scratch and does not retain it: state may be returned
// to its Pool as soon as Sweep returns. The round/marking/back-link
// structure here is grounded on the teacher's SimpleRaptorDepartAt, adapted
// from its per-trip map bookkeeping to array-indexed routes and stops (spec
// §9 "dense integer ids").
func Sweep(model *transitmodel.Model, state *State, access []transitmodel.StopAccess, departAt int32, maxRounds int, dest []transitmodel.StopAccess) *Result {
	n := len(model.Stops)
	state.reset(maxRounds)

	destWalk := make(map[transitmodel.StopID]int32, len(dest))
	for _, d := range dest {
		destWalk[d.Stop] = d.WalkS
	}
	bestDest := Unreachable
	updateBestDest := func(stop transitmodel.StopID, arrival int32) {
		if w, ok := destWalk[stop]; ok {
			if cand := arrival + w; cand < bestDest {
				bestDest = cand
			}
		}
	}

	round0 := state.tauRound(0)
	for _, a := range access {
		t := departAt + a.WalkS
		if t < round0[a.Stop] {
			round0[a.Stop] = t
		}
		if t < state.tauStar[a.Stop] {
			state.tauStar[a.Stop] = t
			state.backlink[a.Stop] = Backlink{Kind: InitialWalk, A: -1, B: -1}
			updateBestDest(a.Stop, t)
		}
		state.markGen[a.Stop] = 0
	}

	roundsRun := 0
	for k := 1; k <= maxRounds; k++ {
		prev := state.tauRound(k - 1)
		cur := state.tauRound(k)
		copy(cur, prev)

		// Build Q: route -> earliest marked stop position, scanning stop
		// ids in ascending order for determinism (spec §5 "Ordering
		// guarantees").
		q := map[transitmodel.RouteID]int{}
		var qRoutes []transitmodel.RouteID
		for s := 0; s < n; s++ {
			if state.markGen[s] != int32(k-1) {
				continue
			}
			for _, m := range model.Stops[s].Routes {
				if pos, ok := q[m.Route]; !ok || m.Pos < pos {
					if !ok {
						qRoutes = append(qRoutes, m.Route)
					}
					q[m.Route] = m.Pos
				}
			}
		}
		sort.Slice(qRoutes, func(i, j int) bool { return qRoutes[i] < qRoutes[j] })

		anyImproved := false
		var improvedRoundScan []transitmodel.StopID

		for _, rid := range qRoutes {
			route := model.Routes[rid]
			startPos := q[rid]

			boarded := -1 // index into route.Trips, or -1 if not yet boarded
			var boardStop transitmodel.StopID

			for i := startPos; i < len(route.Stops); i++ {
				stopID := route.Stops[i]

				if boarded >= 0 {
					trip := model.Trips[route.Trips[boarded]]
					arr := trip.ArrivalS[i]
					limit := state.tauStar[stopID]
					if bestDest < limit {
						limit = bestDest
					}
					if arr < limit {
						cur[stopID] = arr
						state.tauStar[stopID] = arr
						state.backlink[stopID] = Backlink{Kind: BoardTrip, A: int32(boardStop), B: int32(route.Trips[boarded])}
						state.markGen[stopID] = int32(k)
						updateBestDest(stopID, arr)
						anyImproved = true
						improvedRoundScan = append(improvedRoundScan, stopID)
					}
				}

				// Can we catch an earlier trip at stopID than the one
				// currently boarded (or board for the first time)? Only
				// worth a binary search if last round's arrival here was
				// early enough to matter.
				target := prev[stopID]
				if target == Unreachable {
					continue
				}
				canReboard := boarded < 0
				if !canReboard {
					canReboard = target <= model.Trips[route.Trips[boarded]].DepartureS[i]
				}
				if canReboard {
					if j, ok := findEarliestTrip(model, route, i, target); ok {
						if boarded < 0 || model.Trips[route.Trips[j]].DepartureS[i] < model.Trips[route.Trips[boarded]].DepartureS[i] {
							boarded = j
							boardStop = stopID
						}
					}
				}
			}
		}

		// Transfer phase: extend every stop improved by this round's route
		// scan via its walking transfers (spec §4.4 "transfer phase").
		for _, p := range improvedRoundScan {
			base := state.tauStar[p]
			for _, tr := range model.TransfersFrom(p) {
				cand := base + tr.WalkS
				limit := state.tauStar[tr.To]
				if bestDest < limit {
					limit = bestDest
				}
				if cand < limit {
					cur[tr.To] = cand
					state.tauStar[tr.To] = cand
					state.backlink[tr.To] = Backlink{Kind: Transfer, A: int32(p), B: tr.WalkS}
					state.markGen[tr.To] = int32(k)
					updateBestDest(tr.To, cand)
					anyImproved = true
				}
			}
		}

		roundsRun = k
		if !anyImproved {
			break
		}
	}

	tauStar := make([]int32, n)
	copy(tauStar, state.tauStar)
	backlink := make([]Backlink, n)
	copy(backlink, state.backlink)

	return &Result{
		model:    model,
		departAt: departAt,
		rounds:   roundsRun,
		tauStar:  tauStar,
		backlink: backlink,
	}
}

// findEarliestTrip binary-searches route's trips (sorted by departure at
// Stops[0], which — by the FIFO property enforced when routes are built,
// transitmodel.splitInto — also orders their departures at every other
// stop) for the earliest one departing position i at or after notBefore.
// Among trips with equal departures at pos, the one listed first in
// route.Trips is returned; splitInto keeps such trips in the same route, and
// routes built by transitmodel.BuildFromRaw list their trips in ascending
// TripID order, so ties break toward the lowest trip id.
func findEarliestTrip(model *transitmodel.Model, route transitmodel.Route, pos int, notBefore int32) (int, bool) {
	trips := route.Trips
	j := sort.Search(len(trips), func(i int) bool {
		return model.Trips[trips[i]].DepartureS[pos] >= notBefore
	})
	if j == len(trips) {
		return 0, false
	}
	return j, true
}
