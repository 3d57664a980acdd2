package raptor

import "github.com/go-transit/raptor-engine/transitmodel"

// BacklinkKind distinguishes the three ways a stop's best arrival can have
// been produced (spec §9 "Back-link encoding"). Implementers must keep
// these three cases distinct even when packed into one word; here they
// share a small fixed-size struct rather than an interface, so per-stop
// backlinks live in a flat slice with no per-entry allocation.
type BacklinkKind byte

const (
	backlinkNone BacklinkKind = iota
	// InitialWalk: stop was reached directly from the origin's access walk.
	InitialWalk
	// BoardTrip: stop was reached by riding trip B, boarded at stop A.
	BoardTrip
	// Transfer: stop was reached by walking from stop A for duration B.
	Transfer
)

// Backlink is the reconstruction record for one stop: how its current
// tauStar arrival was achieved. A is the board/from stop id for BoardTrip
// and Transfer; B is the trip id for BoardTrip. Both are -1 for
// InitialWalk and for an unreached stop.
type Backlink struct {
	Kind BacklinkKind
	A    int32
	B    int32
}

// LegKind distinguishes a walking leg from a transit leg in a
// reconstructed journey.
type LegKind byte

const (
	LegWalk LegKind = iota
	LegTransit
)

// Leg is one piece of a reconstructed journey (spec §6 "detailed_journey":
// "legs with per-leg mode ∈ {walk, transit}, trip id, from/to stop,
// start/end times").
type Leg struct {
	Kind             LegKind
	FromStop, ToStop transitmodel.StopID
	Trip             transitmodel.TripID // valid only when Kind == LegTransit
	DepartS, ArriveS int32
}
