package transitmodel

import (
	"fmt"
	"sort"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/go-transit/raptor-engine/geo"
	"github.com/go-transit/raptor-engine/street"
)

// RawStop, RawStopTime, RawTrip and RawFrequency are the structural
// contract delivered by GTFS ingestion (an external collaborator, spec
// §1/§6): already-parsed stops and trips, already filtered to services
// active on the query date's calendar/calendar_dates, in GTFS's native
// stop-sequence order. BuildFromGTFS adapts a parsed
// github.com/patrickbr/gtfsparser feed into these; BuildFromRaw is the
// part doing actual model construction and is exercised directly by tests
// with small hand-built stop and trip fixtures.
type RawStop struct {
	ExternalID string
	Lat, Lon   float64
}

type RawStopTime struct {
	StopExternalID string
	ArrivalS       int32
	DepartureS     int32
	Sequence       int
}

type RawTrip struct {
	ExternalID  string
	GTFSRouteID string
	StopTimes   []RawStopTime // already sorted by Sequence
}

// RawFrequency expands a frequency-based trip template into explicit
// trips at HeadwaySecs intervals between StartS and EndS ([SUPPLEMENT],
// spec §9 Open Question on frequencies.txt). TripExternalID names the
// RawTrip whose StopTimes give the template's relative offsets (its first
// stop-time's DepartureS is treated as the template's zero point).
type RawFrequency struct {
	TripExternalID string
	StartS         int32
	EndS           int32
	HeadwaySecs    int32
}

// BuildOptions configures model construction. There is no external
// config-file loader here (spec §1: CLI/config surface is out of scope);
// callers set these fields directly.
type BuildOptions struct {
	MaxTransferTime   int32
	MaxWalkToStop     int32
	WalkSpeedMPS      float64
	ExpandFrequencies bool
	Logger            *zap.SugaredLogger
}

func (o *BuildOptions) fillDefaults() {
	if o.WalkSpeedMPS <= 0 {
		o.WalkSpeedMPS = geo.DefaultWalkSpeedMPS
	}
	if o.MaxTransferTime <= 0 {
		o.MaxTransferTime = 600
	}
	if o.MaxWalkToStop <= 0 {
		o.MaxWalkToStop = 900
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop().Sugar()
	}
}

// ErrFrequenciesUnsupported is returned when a feed carries
// frequencies.txt entries and BuildOptions.ExpandFrequencies is false.
var ErrFrequenciesUnsupported = errors.New("transitmodel: frequency-based trips present but expansion disabled")

// BuildFromRaw constructs a frozen Model from raw stops/trips/frequencies
// and a pre-built street graph (spec §4.1, §4.3). It groups stop-time
// sequences into RAPTOR routes, splits overtaking trips into new routes,
// generates transfers via bounded pedestrian Dijkstra, and precomputes
// per-stop street-walking access.
func BuildFromRaw(streetGraph *street.Graph, stops []RawStop, trips []RawTrip, freqs []RawFrequency, opts BuildOptions) (*Model, error) {
	opts.fillDefaults()

	if len(stops) == 0 {
		return nil, errors.New("transitmodel: empty stop set")
	}

	if len(freqs) > 0 {
		if !opts.ExpandFrequencies {
			return nil, ErrFrequenciesUnsupported
		}
		var err error
		trips, err = expandFrequencies(trips, freqs)
		if err != nil {
			return nil, err
		}
	}

	stopIDs := make(map[string]StopID, len(stops))
	modelStops := make([]Stop, len(stops))
	for i, rs := range stops {
		if _, dup := stopIDs[rs.ExternalID]; dup {
			return nil, errors.Errorf("transitmodel: duplicate stop id %q", rs.ExternalID)
		}
		stopIDs[rs.ExternalID] = StopID(i)
		pt := geo.Point{Lat: rs.Lat, Lon: rs.Lon}
		node, _, ok := streetGraph.Index().Nearest(rs.Lat, rs.Lon)
		if !ok {
			return nil, errors.Errorf("transitmodel: stop %q has no reachable street node", rs.ExternalID)
		}
		modelStops[i] = Stop{Point: pt, Node: node}
	}

	routes, routeTrips, err := groupIntoRoutes(stopIDs, trips, opts.Logger)
	if err != nil {
		return nil, err
	}

	for ri := range routes {
		sort.SliceStable(routes[ri].Trips, func(a, b int) bool {
			ta, tb := routeTrips[routes[ri].Trips[a]], routeTrips[routes[ri].Trips[b]]
			return ta.DepartureS[0] < tb.DepartureS[0]
		})
	}

	for sid, membership := range stopRouteMemberships(routes) {
		modelStops[sid].Routes = membership
	}

	m := &Model{
		Street: streetGraph,
		Stops:  modelStops,
		Routes: routes,
		Trips:  routeTrips,
	}
	m.dijkstra = street.NewDijkstra(streetGraph)

	if err := buildTransfers(m, opts); err != nil {
		return nil, err
	}
	buildStopNodeAccess(m, opts)

	opts.Logger.Infow("transit model built",
		"stops", len(m.Stops), "routes", len(m.Routes), "trips", len(m.Trips),
		"transfers", len(m.Transfers))

	return m, nil
}

// stopPatternKey groups stop-times by (gtfs route, ordered stop sequence)
// per spec §4.1's stricter route definition.
func stopPatternKey(gtfsRoute string, stops []StopID) string {
	key := gtfsRoute
	for _, s := range stops {
		key += fmt.Sprintf("|%d", s)
	}
	return key
}

type tripBuild struct {
	externalID string
	gtfsRoute  string
	stops      []StopID
	arrival    []int32
	departure  []int32
}

func groupIntoRoutes(stopIDs map[string]StopID, raw []RawTrip, log *zap.SugaredLogger) ([]Route, []Trip, error) {
	groups := map[string][]tripBuild{}
	var groupOrder []string

	for _, rt := range raw {
		if len(rt.StopTimes) < 2 {
			continue // a single-stop trip carries no route
		}
		stops := make([]StopID, len(rt.StopTimes))
		arr := make([]int32, len(rt.StopTimes))
		dep := make([]int32, len(rt.StopTimes))
		for i, st := range rt.StopTimes {
			sid, ok := stopIDs[st.StopExternalID]
			if !ok {
				return nil, nil, errors.Errorf("transitmodel: trip %q references unknown stop %q", rt.ExternalID, st.StopExternalID)
			}
			if st.ArrivalS > st.DepartureS {
				return nil, nil, errors.Errorf("transitmodel: trip %q stop %q has arrival after departure", rt.ExternalID, st.StopExternalID)
			}
			if i > 0 && st.ArrivalS < arr[i-1] {
				return nil, nil, errors.Errorf("transitmodel: trip %q is not monotone non-decreasing", rt.ExternalID)
			}
			stops[i] = sid
			arr[i] = st.ArrivalS
			dep[i] = st.DepartureS
		}
		tb := tripBuild{externalID: rt.ExternalID, gtfsRoute: rt.GTFSRouteID, stops: stops, arrival: arr, departure: dep}
		key := stopPatternKey(rt.GTFSRouteID, stops)
		if _, seen := groups[key]; !seen {
			groupOrder = append(groupOrder, key)
		}
		groups[key] = append(groups[key], tb)
	}

	var routes []Route
	var trips []Trip

	for _, key := range groupOrder {
		group := groups[key]
		sort.Slice(group, func(i, j int) bool { return group[i].departure[0] < group[j].departure[0] })

		splitInto(group, &routes, &trips, log)
	}

	return routes, trips, nil
}

// splitInto appends one or more RAPTOR routes built from a single
// (gtfs route, stop pattern) group, starting a new route whenever a trip
// would overtake the previously admitted one at some stop (spec §4.1,
// §9 "Route definition").
func splitInto(group []tripBuild, routes *[]Route, trips *[]Trip, log *zap.SugaredLogger) {
	var cur Route
	var curStops []StopID
	var lastArr, lastDep []int32

	flush := func() {
		if len(cur.Trips) > 0 {
			*routes = append(*routes, cur)
		}
		cur = Route{Stops: curStops}
	}

	for _, tb := range group {
		if curStops == nil {
			curStops = tb.stops
			cur.Stops = curStops
		} else if lastArr != nil {
			overtakes := false
			for i := range tb.arrival {
				if tb.departure[i] < lastDep[i] {
					overtakes = true
					break
				}
			}
			if overtakes {
				log.Debugw("splitting overtaking trip into new route", "trip", tb.externalID)
				flush()
				curStops = tb.stops
				cur.Stops = curStops
			}
		}

		tid := TripID(len(*trips))
		*trips = append(*trips, Trip{
			Route:      RouteID(len(*routes)),
			ArrivalS:   tb.arrival,
			DepartureS: tb.departure,
		})
		cur.Trips = append(cur.Trips, tid)
		lastArr, lastDep = tb.arrival, tb.departure
	}
	flush()
}

func stopRouteMemberships(routes []Route) map[StopID][]RouteMembership {
	out := map[StopID][]RouteMembership{}
	for ri, r := range routes {
		for pos, sid := range r.Stops {
			out[sid] = append(out[sid], RouteMembership{Route: RouteID(ri), Pos: pos})
		}
	}
	return out
}

func expandFrequencies(trips []RawTrip, freqs []RawFrequency) ([]RawTrip, error) {
	templates := make(map[string]RawTrip, len(trips))
	var passthrough []RawTrip
	templated := map[string]bool{}
	for _, f := range freqs {
		templated[f.TripExternalID] = true
	}
	for _, t := range trips {
		if templated[t.ExternalID] {
			templates[t.ExternalID] = t
		} else {
			passthrough = append(passthrough, t)
		}
	}

	out := passthrough
	for _, f := range freqs {
		tmpl, ok := templates[f.TripExternalID]
		if !ok || len(tmpl.StopTimes) == 0 {
			return nil, errors.Errorf("transitmodel: frequency references unknown trip %q", f.TripExternalID)
		}
		zero := tmpl.StopTimes[0].DepartureS
		instance := 0
		for start := f.StartS; start < f.EndS; start += f.HeadwaySecs {
			offset := start - zero
			st := make([]RawStopTime, len(tmpl.StopTimes))
			for i, s := range tmpl.StopTimes {
				st[i] = RawStopTime{
					StopExternalID: s.StopExternalID,
					ArrivalS:       s.ArrivalS + offset,
					DepartureS:     s.DepartureS + offset,
					Sequence:       s.Sequence,
				}
			}
			out = append(out, RawTrip{
				ExternalID:  fmt.Sprintf("%s#freq%d", tmpl.ExternalID, instance),
				GTFSRouteID: tmpl.GTFSRouteID,
				StopTimes:   st,
			})
			instance++
		}
	}
	return out, nil
}
