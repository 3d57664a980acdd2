package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-transit/raptor-engine/raptor"
	"github.com/go-transit/raptor-engine/transitmodel"
)

// twoStopOneRoute builds scenario A/B's fixture: a single route S1->S2 with
// one trip departing S1 at 08:00:00 and arriving S2 at 08:10:00.
func twoStopOneRoute() *transitmodel.Model {
	stops := []transitmodel.Stop{
		{Routes: []transitmodel.RouteMembership{{Route: 0, Pos: 0}}},
		{Routes: []transitmodel.RouteMembership{{Route: 0, Pos: 1}}},
	}
	trips := []transitmodel.Trip{
		{Route: 0, ArrivalS: []int32{28800, 29400}, DepartureS: []int32{28800, 29400}},
	}
	routes := []transitmodel.Route{{Stops: []transitmodel.StopID{0, 1}, Trips: []transitmodel.TripID{0}}}
	return transitmodel.NewModel(nil, stops, routes, trips, nil, nil, transitmodel.Date{})
}

// threeStopTwoRoutes builds scenario C/D's fixture: S1(0) -route0-> S2a(1),
// a 60s transfer from S2a(1) to S2b(2), S2b(2) -route1-> S3(3).
func threeStopTwoRoutes() *transitmodel.Model {
	stops := []transitmodel.Stop{
		{Routes: []transitmodel.RouteMembership{{Route: 0, Pos: 0}}},
		{Routes: []transitmodel.RouteMembership{{Route: 0, Pos: 1}}},
		{Routes: []transitmodel.RouteMembership{{Route: 1, Pos: 0}}},
		{Routes: []transitmodel.RouteMembership{{Route: 1, Pos: 1}}},
	}
	trips := []transitmodel.Trip{
		{Route: 0, ArrivalS: []int32{28800, 8*3600 + 10*60}, DepartureS: []int32{28800, 8*3600 + 10*60}},
		{Route: 1, ArrivalS: []int32{8*3600 + 12*60, 8*3600 + 22*60}, DepartureS: []int32{8*3600 + 12*60, 8*3600 + 22*60}},
	}
	routes := []transitmodel.Route{
		{Stops: []transitmodel.StopID{0, 1}, Trips: []transitmodel.TripID{0}},
		{Stops: []transitmodel.StopID{2, 3}, Trips: []transitmodel.TripID{1}},
	}
	transfers := []transitmodel.Transfer{{From: 1, To: 2, WalkS: 60}}
	return transitmodel.NewModel(nil, stops, routes, trips, transfers, nil, transitmodel.Date{})
}

// Scenario A (spec §8): depart 07:55:00, K=0 -> arrive 08:10:00, 0 transfers.
func TestFindRouteScenarioA_WaitAndRide(t *testing.T) {
	model := twoStopOneRoute()
	origin := &transitmodel.TransitPoint{Access: []transitmodel.StopAccess{{Stop: 0, WalkS: 0}}}
	dest := &transitmodel.TransitPoint{Access: []transitmodel.StopAccess{{Stop: 1, WalkS: 0}}}

	res := FindRoute(model, origin, dest, int32(7*3600+55*60), Options{MaxTransfers: intPtr(0)})

	require.True(t, res.Reached)
	assert.Equal(t, int32(8*3600+10*60), res.ArrivalS)
	assert.Equal(t, 0, res.Transfers)
}

// Scenario B (spec §8): depart 08:05:00, K=0, the only trip already gone ->
// no solution.
func TestFindRouteScenarioB_MissedTrip(t *testing.T) {
	model := twoStopOneRoute()
	origin := &transitmodel.TransitPoint{Access: []transitmodel.StopAccess{{Stop: 0, WalkS: 0}}}
	dest := &transitmodel.TransitPoint{Access: []transitmodel.StopAccess{{Stop: 1, WalkS: 0}}}

	res := FindRoute(model, origin, dest, int32(8*3600+5*60), Options{MaxTransfers: intPtr(0)})

	assert.False(t, res.Reached)
}

// Scenario C (spec §8): depart 08:00:00, K=1 -> arrive 08:22:00, 1 transfer.
func TestFindRouteScenarioC_OneTransfer(t *testing.T) {
	model := threeStopTwoRoutes()
	origin := &transitmodel.TransitPoint{Access: []transitmodel.StopAccess{{Stop: 0, WalkS: 0}}}
	dest := &transitmodel.TransitPoint{Access: []transitmodel.StopAccess{{Stop: 3, WalkS: 0}}}

	res := FindRoute(model, origin, dest, int32(8*3600), Options{MaxTransfers: intPtr(1)})

	require.True(t, res.Reached)
	assert.Equal(t, int32(8*3600+22*60), res.ArrivalS)
	assert.Equal(t, 1, res.Transfers)
}

// Scenario D (spec §8): same journey as C but capped at zero transfers ->
// no solution. An explicit MaxTransfers: 0 must survive Options.fillDefaults
// unchanged rather than being silently promoted to the package default.
func TestFindRouteScenarioD_NoSolutionAtZeroTransfers(t *testing.T) {
	model := threeStopTwoRoutes()
	origin := &transitmodel.TransitPoint{Access: []transitmodel.StopAccess{{Stop: 0, WalkS: 0}}}
	dest := &transitmodel.TransitPoint{Access: []transitmodel.StopAccess{{Stop: 3, WalkS: 0}}}

	res := FindRoute(model, origin, dest, int32(8*3600), Options{MaxTransfers: intPtr(0)})

	assert.False(t, res.Reached, "zero transfers must not be promoted to the default of 4")
}

// An unset MaxTransfers (the Options zero value) still defaults to 4
// transfers (5 rounds),
// so scenario C's one-transfer journey remains reachable without the caller
// having to spell out a bound.
func TestFindRouteDefaultMaxTransfersStillReachesWithTransfers(t *testing.T) {
	model := threeStopTwoRoutes()
	origin := &transitmodel.TransitPoint{Access: []transitmodel.StopAccess{{Stop: 0, WalkS: 0}}}
	dest := &transitmodel.TransitPoint{Access: []transitmodel.StopAccess{{Stop: 3, WalkS: 0}}}

	res := FindRoute(model, origin, dest, int32(8*3600), Options{})

	require.True(t, res.Reached)
	assert.Equal(t, int32(8*3600+22*60), res.ArrivalS)
}

// DetailedJourney exercised through scenario C: the itinerary must end with
// the final egress walk leg, whose arrival matches FindRoute's.
func TestDetailedJourneyScenarioC(t *testing.T) {
	model := threeStopTwoRoutes()
	origin := &transitmodel.TransitPoint{Access: []transitmodel.StopAccess{{Stop: 0, WalkS: 0}}}
	dest := &transitmodel.TransitPoint{Access: []transitmodel.StopAccess{{Stop: 3, WalkS: 0}}}
	opts := Options{MaxTransfers: intPtr(1)}

	legs, ok := DetailedJourney(model, origin, dest, int32(8*3600), opts)
	require.True(t, ok)
	require.NotEmpty(t, legs)

	last := legs[len(legs)-1]
	assert.Equal(t, raptor.LegWalk, last.Kind)

	route := FindRoute(model, origin, dest, int32(8*3600), opts)
	assert.Equal(t, route.ArrivalS, last.ArriveS)
}

func TestDetailedJourneyUnreachableAtZeroTransfers(t *testing.T) {
	model := threeStopTwoRoutes()
	origin := &transitmodel.TransitPoint{Access: []transitmodel.StopAccess{{Stop: 0, WalkS: 0}}}
	dest := &transitmodel.TransitPoint{Access: []transitmodel.StopAccess{{Stop: 3, WalkS: 0}}}

	_, ok := DetailedJourney(model, origin, dest, int32(8*3600), Options{MaxTransfers: intPtr(0)})
	assert.False(t, ok)
}

// TimeRange exercised against scenario A's fixture: the 07:00-09:00 window
// covers departures early enough to catch the 08:00 trip and departures
// after it has gone.
func TestTimeRangeCoversWindowDepartures(t *testing.T) {
	model := twoStopOneRoute()
	origin := &transitmodel.TransitPoint{Access: []transitmodel.StopAccess{{Stop: 0, WalkS: 0}}}
	dest := &transitmodel.TransitPoint{Access: []transitmodel.StopAccess{{Stop: 1, WalkS: 0}}}

	departures := TimeRange(model, origin, dest, int32(7*3600), int32(9*3600), Options{MaxTransfers: intPtr(0)})

	require.NotEmpty(t, departures)
	found := false
	for _, d := range departures {
		if d.ArriveS == int32(8*3600+10*60) {
			found = true
			assert.Equal(t, 0, d.Transfers)
		}
	}
	assert.True(t, found, "the 08:00 trip's arrival must appear among candidate departures")
}
