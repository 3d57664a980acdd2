package raptor

import "github.com/go-transit/raptor-engine/transitmodel"

// Result is a sweep's frozen output: snapshot copies of tauStar and the
// back-link chain, safe to hold onto after its originating State has been
// returned to its Pool.
type Result struct {
	model    *transitmodel.Model
	departAt int32
	rounds   int

	tauStar  []int32
	backlink []Backlink
}

// Rounds reports how many rounds actually ran before no stop improved.
func (r *Result) Rounds() int { return r.rounds }

// ArrivalAt returns the earliest attained arrival at stop, or Unreachable.
func (r *Result) ArrivalAt(stop transitmodel.StopID) int32 { return r.tauStar[stop] }

// Transfers reports how many transit-to-transit transfers the journey to
// stop used (spec §6 "transfers_used"): the number of BoardTrip legs minus
// one, clamped to zero, since the first boarding is not itself a transfer.
func (r *Result) Transfers(stop transitmodel.StopID) int {
	if r.tauStar[stop] == Unreachable {
		return 0
	}
	boards := 0
	cur := stop
	for {
		bl := r.backlink[cur]
		switch bl.Kind {
		case BoardTrip:
			boards++
			cur = transitmodel.StopID(bl.A)
		case Transfer:
			cur = transitmodel.StopID(bl.A)
		case InitialWalk, backlinkNone:
			if boards == 0 {
				return 0
			}
			return boards - 1
		}
	}
}

// Reconstruct walks stop's back-link chain into an ordered list of legs
// from the origin to stop (spec §6 "detailed_journey"). Returns nil if stop
// was never reached.
func (r *Result) Reconstruct(stop transitmodel.StopID) []Leg {
	if r.tauStar[stop] == Unreachable {
		return nil
	}

	var legs []Leg
	cur := stop
	for {
		bl := r.backlink[cur]
		switch bl.Kind {
		case InitialWalk:
			legs = append(legs, Leg{
				Kind:    LegWalk,
				ToStop:  cur,
				DepartS: r.departAt,
				ArriveS: r.tauStar[cur],
			})
			reverseLegs(legs)
			return legs

		case BoardTrip:
			board := transitmodel.StopID(bl.A)
			trip := transitmodel.TripID(bl.B)
			route := r.model.Routes[r.model.Trips[trip].Route]
			posBoard := positionOf(route, board)
			posCur := positionOf(route, cur)
			legs = append(legs, Leg{
				Kind:     LegTransit,
				FromStop: board,
				ToStop:   cur,
				Trip:     trip,
				DepartS:  r.model.Trips[trip].DepartureS[posBoard],
				ArriveS:  r.model.Trips[trip].ArrivalS[posCur],
			})
			cur = board

		case Transfer:
			from := transitmodel.StopID(bl.A)
			legs = append(legs, Leg{
				Kind:     LegWalk,
				FromStop: from,
				ToStop:   cur,
				DepartS:  r.tauStar[from],
				ArriveS:  r.tauStar[cur],
			})
			cur = from

		default:
			// Unreached predecessor: shouldn't happen for a stop with a
			// finite tauStar, but terminate rather than loop forever.
			reverseLegs(legs)
			return legs
		}
	}
}

func positionOf(route transitmodel.Route, stop transitmodel.StopID) int {
	for i, s := range route.Stops {
		if s == stop {
			return i
		}
	}
	return -1
}

func reverseLegs(legs []Leg) {
	for i, j := 0, len(legs)-1; i < j; i, j = i+1, j-1 {
		legs[i], legs[j] = legs[j], legs[i]
	}
}
