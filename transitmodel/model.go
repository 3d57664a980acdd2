package transitmodel

import (
	"github.com/go-transit/raptor-engine/geo"
	"github.com/go-transit/raptor-engine/street"
)

// Date is a civil (timezone-free) calendar date, used only to select which
// GTFS services are active for the query (spec §6 "Query date").
type Date struct {
	Year, Month, Day int
}

// RouteMembership records that a stop is served by Route at stop-sequence
// position Pos within that route's stop list (spec §3 "Stop" row: "the set
// of routes serving it and, for each such route, its position").
type RouteMembership struct {
	Route RouteID
	Pos   int
}

// Stop is a transit stop snapped onto the street graph.
type Stop struct {
	Point   geo.Point
	Node    street.NodeID
	Routes  []RouteMembership
}

// Route is a maximal set of trips sharing an identical ordered stop
// sequence and admitting a total FIFO order (spec §4.1, GLOSSARY). Trips
// is kept sorted by departure at Stops[0].
type Route struct {
	Stops []StopID
	Trips []TripID
}

// Trip is a concrete timed instance of a Route: per-stop (arrival,
// departure) pairs aligned index-for-index with its Route's Stops slice.
type Trip struct {
	Route     RouteID
	ArrivalS  []int32
	DepartureS []int32
}

// Transfer is a walking edge between two distinct stops, generated where
// the walking time is within max_transfer_time (spec §4.1). The implicit
// zero-duration self-transfer is never materialized here.
type Transfer struct {
	From, To StopID
	WalkS    int32
}

// StopNodeAccess is one entry of a stop's precomputed walking reach into
// the street graph, bounded by the same cap used for transfer generation
// (spec §4.5 step 2, feeding isochrone rasterization).
type StopNodeAccess struct {
	Node  street.NodeID
	WalkS int32
}

// Model is the frozen, shared-immutable multimodal graph: street network,
// timetable, transfer graph, and per-stop street-walking access. Built
// once by BuildFromGTFS/BuildFromRaw and read concurrently thereafter by
// any number of query goroutines with no synchronization (spec §3, §5).
type Model struct {
	Street *street.Graph

	Stops     []Stop
	Routes    []Route
	Trips     []Trip
	Transfers []Transfer

	// transfersByStop[s] lists indices into Transfers whose From == s, in
	// the order they appear in Transfers (buildTransfers emits each stop's
	// transfers sorted by To; NewModel keeps the caller's order).
	transfersByStop [][]int32

	// StopNodeAccess[s] is Stop s's bounded walking reach into the street
	// graph, sorted by Node.
	StopNodeAccess [][]StopNodeAccess

	Date Date

	dijkstra *street.Dijkstra
}

// NewModel assembles a frozen Model directly from precomputed entities,
// bypassing GTFS ingestion (spec §3 "Ownership": a Model is immutable
// after construction regardless of how its entities were produced). This
// is the entry point for callers who already have routes/trips/transfers
// computed elsewhere (golden fixtures, other ingestion pipelines), and for
// exercising package raptor/query against small hand-built timetables
// without a real street graph — streetGraph may be nil when no caller
// needs street-level access (spec §8 scenarios A-F).
func NewModel(streetGraph *street.Graph, stops []Stop, routes []Route, trips []Trip, transfers []Transfer, stopNodeAccess [][]StopNodeAccess, date Date) *Model {
	m := &Model{
		Street:         streetGraph,
		Stops:          stops,
		Routes:         routes,
		Trips:          trips,
		Transfers:      transfers,
		StopNodeAccess: stopNodeAccess,
		Date:           date,
	}
	m.transfersByStop = indexTransfersByStop(len(stops), transfers)
	if streetGraph != nil {
		m.dijkstra = street.NewDijkstra(streetGraph)
	}
	return m
}

func indexTransfersByStop(numStops int, transfers []Transfer) [][]int32 {
	byStop := make([][]int32, numStops)
	for i, t := range transfers {
		byStop[t.From] = append(byStop[t.From], int32(i))
	}
	return byStop
}

// TransfersFrom returns the outgoing transfers of stop s.
func (m *Model) TransfersFrom(s StopID) []Transfer {
	idxs := m.transfersByStop[s]
	out := make([]Transfer, len(idxs))
	for i, idx := range idxs {
		out[i] = m.Transfers[idx]
	}
	return out
}

// Dijkstra returns the shared pedestrian Dijkstra over the model's street
// graph, for reuse by access precomputation and query orchestrators.
func (m *Model) Dijkstra() *street.Dijkstra { return m.dijkstra }
