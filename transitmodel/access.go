package transitmodel

import (
	"sort"

	"github.com/pkg/errors"

	"github.com/go-transit/raptor-engine/geo"
	"github.com/go-transit/raptor-engine/street"
)

// buildTransfers generates, for every stop, walking-time transfers to all
// other stops within MaxTransferTime via pedestrian Dijkstra rooted at the
// stop's snapped street node (spec §4.1 "Transfers"). The implicit
// zero-duration self-transfer is never materialized.
func buildTransfers(m *Model, opts BuildOptions) error {
	stopByNode := make(map[street.NodeID][]StopID, len(m.Stops))
	targets := make([]street.NodeID, 0, len(m.Stops))
	for sid, s := range m.Stops {
		if _, seen := stopByNode[s.Node]; !seen {
			targets = append(targets, s.Node)
		}
		stopByNode[s.Node] = append(stopByNode[s.Node], StopID(sid))
	}

	var flat []Transfer

	for sid, s := range m.Stops {
		durations := m.dijkstra.OneToMany(s.Node, targets, opts.MaxTransferTime)
		var toStops []StopID
		for node := range durations {
			for _, other := range stopByNode[node] {
				if other == StopID(sid) {
					continue
				}
				toStops = append(toStops, other)
			}
		}
		sort.Slice(toStops, func(a, b int) bool { return toStops[a] < toStops[b] })
		for _, to := range toStops {
			dNode := m.Stops[to].Node
			walkS, ok := durations[dNode]
			if !ok {
				continue
			}
			flat = append(flat, Transfer{From: StopID(sid), To: to, WalkS: walkS})
		}
	}

	m.Transfers = flat
	m.transfersByStop = indexTransfersByStop(len(m.Stops), flat)
	return nil
}

// buildStopNodeAccess precomputes each stop's bounded walking reach into
// the street graph (spec §4.5 step 2's walk_s_to_v), using the same
// walking cap as transfer generation.
func buildStopNodeAccess(m *Model, opts BuildOptions) {
	access := make([][]StopNodeAccess, len(m.Stops))
	for sid, s := range m.Stops {
		res := m.dijkstra.SingleSource(s.Node)
		var list []StopNodeAccess
		for n := 0; n < m.Street.NumNodes(); n++ {
			d := res.Dist(street.NodeID(n))
			if d != street.Unreachable && d <= opts.MaxTransferTime {
				list = append(list, StopNodeAccess{Node: street.NodeID(n), WalkS: d})
			}
		}
		res.Release()
		sort.Slice(list, func(i, j int) bool { return list[i].Node < list[j].Node })
		access[sid] = list
	}
	m.StopNodeAccess = access
}

// StopAccess is a (stop, walking duration) pair as found in a
// TransitPoint's access/egress list (spec §3 "TransitPoint", §4.3).
type StopAccess struct {
	Stop  StopID
	WalkS int32
}

// TransitPoint is a geographic query endpoint pre-bound to a Model, with
// its stop-access list materialized (spec §3 "TransitPoint",
// GLOSSARY). Holds a shared reference to the Model it was derived from;
// never mutates it.
type TransitPoint struct {
	Model  *Model
	Point  geo.Point
	Node   street.NodeID
	Access []StopAccess // sorted by Stop
}

// AccessOptions bounds the walking reach used when materializing a
// TransitPoint's access list.
type AccessOptions struct {
	MaxWalkToStop int32
	WalkSpeedMPS  float64
}

func (o *AccessOptions) fillDefaults() {
	if o.WalkSpeedMPS <= 0 {
		o.WalkSpeedMPS = geo.DefaultWalkSpeedMPS
	}
	if o.MaxWalkToStop <= 0 {
		o.MaxWalkToStop = 900
	}
}

// NewTransitPoint snaps (lat, lon) to the nearest street node and computes
// its access list (spec §4.3): snap walk + street walk + stop snap walk,
// truncated to the walking-time cap and sorted by stop id.
func NewTransitPoint(m *Model, lat, lon float64, opts AccessOptions) (*TransitPoint, error) {
	opts.fillDefaults()

	node, snapMeters, ok := m.Street.Index().Nearest(lat, lon)
	if !ok {
		return nil, errors.New("transitmodel: point has no nearby street node")
	}
	snapWalkS := int32(snapMeters / opts.WalkSpeedMPS)
	if snapWalkS > opts.MaxWalkToStop {
		return nil, errors.New("transitmodel: point outside graph reach")
	}

	res := m.dijkstra.SingleSource(node)
	defer res.Release()

	var list []StopAccess
	for sid, s := range m.Stops {
		d := res.Dist(s.Node)
		if d == street.Unreachable {
			continue
		}
		stopSnapS := geo.WalkSeconds(s.Point, m.Street.Point(s.Node), opts.WalkSpeedMPS)
		total := snapWalkS + d + stopSnapS
		if total > opts.MaxWalkToStop {
			continue
		}
		list = append(list, StopAccess{Stop: StopID(sid), WalkS: total})
	}
	if len(list) == 0 {
		return nil, errors.New("transitmodel: point outside graph reach")
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Stop < list[j].Stop })

	return &TransitPoint{
		Model:  m,
		Point:  geo.Point{Lat: lat, Lon: lon},
		Node:   node,
		Access: list,
	}, nil
}
