package transitmodel

import (
	"sort"

	"github.com/patrickbr/gtfsparser"
	"github.com/patrickbr/gtfsparser/gtfs"

	"github.com/go-transit/raptor-engine/street"
)

// BuildFromGTFS adapts one or more already-parsed GTFS feeds (parsing the
// on-disk feed directory is an external collaborator's job, spec §1/§6)
// into the Raw* structural contract and builds the frozen Model. This
// mirrors the teacher's own test, which builds SimpleRaptorInput fixtures
// directly from a parsed gtfsparser.Feed rather than from a CSV path.
func BuildFromGTFS(streetGraph *street.Graph, feeds []*gtfsparser.Feed, date Date, opts BuildOptions) (*Model, error) {
	stops, trips, freqs, err := adaptFeeds(feeds, date)
	if err != nil {
		return nil, err
	}
	m, err := BuildFromRaw(streetGraph, stops, trips, freqs, opts)
	if err != nil {
		return nil, err
	}
	m.Date = date
	return m, nil
}

// toGTFSDate converts Date to the gtfsparser package's own date type for
// calendar/calendar_dates evaluation.
func toGTFSDate(d Date) gtfs.Date {
	return gtfs.Date{Day: int8(d.Day), Month: int8(d.Month), Year: int16(d.Year)}
}

// adaptFeeds flattens parsed GTFS feeds into the Raw* contract, retaining
// only trips whose service is active on date. calendar_dates exceptions
// take precedence over calendar.txt per GTFS semantics: EXCEPTION_REMOVED
// always wins, EXCEPTION_ADDED adds a service even on an excluded weekday
// ([SUPPLEMENT], resolving spec §9's frequencies/ordering silence for the
// analogous calendar-precedence question).
func adaptFeeds(feeds []*gtfsparser.Feed, date Date) ([]RawStop, []RawTrip, []RawFrequency, error) {
	gd := toGTFSDate(date)

	var stops []RawStop
	seenStop := map[string]bool{}
	var trips []RawTrip
	var freqs []RawFrequency

	for _, feed := range feeds {
		for id, s := range feed.Stops {
			if seenStop[id] {
				continue
			}
			seenStop[id] = true
			stops = append(stops, RawStop{ExternalID: id, Lat: s.Lat, Lon: s.Lon})
		}

		for id, t := range feed.Trips {
			if t.Service == nil || !t.Service.IsActiveOn(gd) {
				continue
			}
			sts := make([]gtfs.StopTime, len(t.StopTimes))
			copy(sts, t.StopTimes)
			sort.Slice(sts, func(i, j int) bool { return sts[i].Sequence() < sts[j].Sequence() })

			rawSts := make([]RawStopTime, len(sts))
			for i, st := range sts {
				rawSts[i] = RawStopTime{
					StopExternalID: st.Stop().Id,
					ArrivalS:       int32(st.Arrival_time().SecondsSinceMidnight()),
					DepartureS:     int32(st.Departure_time().SecondsSinceMidnight()),
					Sequence:       st.Sequence(),
				}
			}
			routeID := ""
			if t.Route != nil {
				routeID = t.Route.Id
			}
			trips = append(trips, RawTrip{ExternalID: id, GTFSRouteID: routeID, StopTimes: rawSts})

			if t.Frequencies != nil {
				for _, f := range t.Frequencies {
					freqs = append(freqs, RawFrequency{
						TripExternalID: id,
						StartS:         int32(f.Start_time.SecondsSinceMidnight()),
						EndS:           int32(f.End_time.SecondsSinceMidnight()),
						HeadwaySecs:    int32(f.Headway_secs),
					})
				}
			}
		}
	}

	return stops, trips, freqs, nil
}
