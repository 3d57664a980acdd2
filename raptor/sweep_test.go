package raptor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

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

func runSweep(t *testing.T, model *transitmodel.Model, access []transitmodel.StopAccess, departAt int32, maxRounds int, dest []transitmodel.StopAccess) *Result {
	t.Helper()
	st := NewState(len(model.Stops), maxRounds)
	return Sweep(model, st, access, departAt, maxRounds, dest)
}

// Scenario A (spec §8): depart 07:55:00, K=0 -> arrive 08:10:00 (15 min:
// 5 min wait + 10 min ride), 0 transfers.
func TestSweepScenarioA_WaitAndRide(t *testing.T) {
	model := twoStopOneRoute()
	access := []transitmodel.StopAccess{{Stop: 0, WalkS: 0}}
	dest := []transitmodel.StopAccess{{Stop: 1, WalkS: 0}}

	res := runSweep(t, model, access, 7*3600+55*60, 1, dest)

	require.NotEqual(t, Unreachable, res.ArrivalAt(1))
	assert.Equal(t, int32(8*3600+10*60), res.ArrivalAt(1))
	assert.Equal(t, int32(900), res.ArrivalAt(1)-(7*3600+55*60))
	assert.Equal(t, 0, res.Transfers(1))
}

// Scenario B (spec §8): depart 08:05:00, K=0, only one trip already gone ->
// no solution.
func TestSweepScenarioB_MissedTrip(t *testing.T) {
	model := twoStopOneRoute()
	access := []transitmodel.StopAccess{{Stop: 0, WalkS: 0}}
	dest := []transitmodel.StopAccess{{Stop: 1, WalkS: 0}}

	res := runSweep(t, model, access, 8*3600+5*60, 1, dest)

	assert.Equal(t, Unreachable, res.ArrivalAt(1))
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

// Scenario C (spec §8): depart 08:00:00, K=1 -> arrive 08:22:00, 1 transfer.
func TestSweepScenarioC_OneTransfer(t *testing.T) {
	model := threeStopTwoRoutes()
	access := []transitmodel.StopAccess{{Stop: 0, WalkS: 0}}
	dest := []transitmodel.StopAccess{{Stop: 3, WalkS: 0}}

	res := runSweep(t, model, access, 8*3600, 2, dest)

	require.NotEqual(t, Unreachable, res.ArrivalAt(3))
	assert.Equal(t, int32(8*3600+22*60), res.ArrivalAt(3))
	assert.Equal(t, 1, res.Transfers(3))
}

// Scenario D (spec §8): same as C with K=0 -> no solution.
func TestSweepScenarioD_NoSolutionAtZeroTransfers(t *testing.T) {
	model := threeStopTwoRoutes()
	access := []transitmodel.StopAccess{{Stop: 0, WalkS: 0}}
	dest := []transitmodel.StopAccess{{Stop: 3, WalkS: 0}}

	res := runSweep(t, model, access, 8*3600, 1, dest)

	assert.Equal(t, Unreachable, res.ArrivalAt(3))
}

// Monotone arrivals (spec §8 property 1): tauStar can only improve (or stay
// put) as more rounds run.
func TestSweepMonotoneArrivals(t *testing.T) {
	model := threeStopTwoRoutes()
	access := []transitmodel.StopAccess{{Stop: 0, WalkS: 0}}

	resK0 := runSweep(t, model, access, 8*3600, 1, nil)
	resK1 := runSweep(t, model, access, 8*3600, 2, nil)

	for s := transitmodel.StopID(0); s < 4; s++ {
		assert.LessOrEqual(t, resK1.ArrivalAt(s), resK0.ArrivalAt(s))
	}
}

// Reconstruct produces a leg chain whose times are internally consistent:
// the first leg departs at the query's departAt and the last leg's arrival
// equals the overall tauStar.
func TestReconstructScenarioC(t *testing.T) {
	model := threeStopTwoRoutes()
	access := []transitmodel.StopAccess{{Stop: 0, WalkS: 0}}
	dest := []transitmodel.StopAccess{{Stop: 3, WalkS: 0}}
	departAt := int32(8 * 3600)

	res := runSweep(t, model, access, departAt, 2, dest)
	legs := res.Reconstruct(3)

	require.Len(t, legs, 4) // initial walk, ride 1, interchange walk, ride 2
	assert.Equal(t, LegWalk, legs[0].Kind)
	assert.Equal(t, departAt, legs[0].DepartS)
	assert.Equal(t, LegTransit, legs[1].Kind)
	assert.Equal(t, LegWalk, legs[2].Kind) // the 60s interchange transfer
	assert.Equal(t, LegTransit, legs[3].Kind)
	assert.Equal(t, res.ArrivalAt(3), legs[len(legs)-1].ArriveS)
	for i := 1; i < len(legs); i++ {
		assert.GreaterOrEqual(t, legs[i].DepartS, legs[i-1].ArriveS)
	}
}
