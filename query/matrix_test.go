package query

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-transit/raptor-engine/transitmodel"
)

// symmetricThreeStopModel builds scenario F's fixture (spec §8): three
// stops fully interconnected by direct single-trip routes in both
// directions, each taking the same 300s, so the network is time-symmetric.
func symmetricThreeStopModel() *transitmodel.Model {
	pairs := [][2]transitmodel.StopID{{0, 1}, {1, 0}, {0, 2}, {2, 0}, {1, 2}, {2, 1}}

	stops := make([]transitmodel.Stop, 3)
	var routes []transitmodel.Route
	var trips []transitmodel.Trip

	for _, pair := range pairs {
		rid := transitmodel.RouteID(len(routes))
		tid := transitmodel.TripID(len(trips))
		trips = append(trips, transitmodel.Trip{
			Route:      rid,
			ArrivalS:   []int32{0, 300},
			DepartureS: []int32{0, 300},
		})
		routes = append(routes, transitmodel.Route{Stops: []transitmodel.StopID{pair[0], pair[1]}, Trips: []transitmodel.TripID{tid}})
		stops[pair[0]].Routes = append(stops[pair[0]].Routes, transitmodel.RouteMembership{Route: rid, Pos: 0})
		stops[pair[1]].Routes = append(stops[pair[1]].Routes, transitmodel.RouteMembership{Route: rid, Pos: 1})
	}

	return transitmodel.NewModel(nil, stops, routes, trips, nil, nil, transitmodel.Date{})
}

func pointAt(stop transitmodel.StopID) *transitmodel.TransitPoint {
	return &transitmodel.TransitPoint{Access: []transitmodel.StopAccess{{Stop: stop, WalkS: 0}}}
}

// intPtr lets tests spell out an explicit MaxTransfers, including 0, which
// must be distinguishable from "unset" (spec §8 scenarios A/B/D).
func intPtr(n int) *int { return &n }

// Scenario F (spec §8): matrix over 3 fully interconnected points; diagonal
// is 0, off-diagonal symmetric under a bidirectionally-served timetable.
func TestTravelTimeMatrixScenarioF_Symmetric(t *testing.T) {
	model := symmetricThreeStopModel()
	points := []*transitmodel.TransitPoint{pointAt(0), pointAt(1), pointAt(2)}

	matrix, err := TravelTimeMatrix(context.Background(), model, points, points, 0, Options{MaxTransfers: intPtr(1)})
	require.NoError(t, err)

	for i := range points {
		require.True(t, matrix[i][i].Reached)
		assert.Equal(t, int32(0), matrix[i][i].ArrivalS)
	}
	for i := range points {
		for j := range points {
			if i == j {
				continue
			}
			require.True(t, matrix[i][j].Reached, "expected %d->%d reachable", i, j)
			assert.Equal(t, matrix[i][j].ArrivalS, matrix[j][i].ArrivalS, "expected symmetric travel time %d<->%d", i, j)
			assert.Equal(t, int32(300), matrix[i][j].ArrivalS)
		}
	}
}
