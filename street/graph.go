// Package street holds the walkable street graph: a dense CSR adjacency
// list over small-integer node ids, an R-tree for nearest-node snapping,
// and the Dijkstra forms (single-source, one-to-one, one-to-many, matrix)
// used for first/last-mile access and for transfer generation.
//
// The graph itself has no teacher precedent (LiamMartens-go-raptor never
// touches a street network); the CSR layout — parallel FirstOut/Head/Weight
// slices indexed by a dense NodeID — is grounded on the bidirectional CH
// router in the retrieved pack (azybler-map_router's graph.CHGraph, whose
// FwdFirstOut/FwdHead/FwdWeight triple is the same shape), adapted here to a
// single unweighted-in-direction walking graph rather than a contracted
// overlay.
package street

import (
	"math"

	"github.com/pkg/errors"

	"github.com/go-transit/raptor-engine/geo"
)

// NodeID indexes into Graph's per-node slices.
type NodeID int32

// Unreachable is the sentinel distance/duration for unreachable pairs.
const Unreachable int32 = math.MaxInt32

// RawNode and RawEdge are the structural contract an (external, out of
// scope) OSM PBF parser must deliver: stable external ids, coordinates,
// and positive walking durations derived from edge length and pedestrian
// speed.
type RawNode struct {
	ExternalID int64
	Lat, Lon   float64
}

type RawEdge struct {
	FromExternalID, ToExternalID int64
	WalkSeconds                  int32
}

// Graph is the frozen, shared-immutable walkable street network. Nodes are
// dense-indexed 0..NumNodes-1; FirstOut/Head/Weight form the standard CSR
// adjacency: outgoing edges of node u are Head[FirstOut[u]:FirstOut[u+1]]
// with parallel weights in Weight.
type Graph struct {
	NodeLat  []float64
	NodeLon  []float64
	FirstOut []int32 // len NumNodes+1
	Head     []int32
	Weight   []int32 // seconds, parallel to Head

	externalToNode map[int64]NodeID
	index          *Index
}

func (g *Graph) NumNodes() int { return len(g.NodeLat) }

func (g *Graph) Point(n NodeID) geo.Point {
	return geo.Point{Lat: g.NodeLat[n], Lon: g.NodeLon[n]}
}

// NodeByExternalID resolves an OSM-stable id back to a dense NodeID.
func (g *Graph) NodeByExternalID(id int64) (NodeID, bool) {
	n, ok := g.externalToNode[id]
	return n, ok
}

// Index returns the R-tree nearest-node index built alongside the graph.
func (g *Graph) Index() *Index { return g.index }

// BuildGraph compacts external OSM node/edge ids into a dense CSR graph
// and builds its nearest-node R-tree index. Edges with non-positive
// duration or dangling endpoints are configuration errors (spec §7).
func BuildGraph(nodes []RawNode, edges []RawEdge) (*Graph, error) {
	if len(nodes) == 0 {
		return nil, errors.New("street: empty node set")
	}

	externalToNode := make(map[int64]NodeID, len(nodes))
	lat := make([]float64, len(nodes))
	lon := make([]float64, len(nodes))
	for i, n := range nodes {
		if _, dup := externalToNode[n.ExternalID]; dup {
			return nil, errors.Errorf("street: duplicate node id %d", n.ExternalID)
		}
		externalToNode[n.ExternalID] = NodeID(i)
		lat[i] = n.Lat
		lon[i] = n.Lon
	}

	// Bucket edges by from-node first so CSR construction is a single
	// counting pass plus a single fill pass, no per-node append growth.
	outDegree := make([]int32, len(nodes)+1)
	resolved := make([]struct {
		from, to NodeID
		w        int32
	}, 0, len(edges))
	for _, e := range edges {
		if e.WalkSeconds <= 0 {
			return nil, errors.Errorf("street: non-positive walk duration on edge %d->%d", e.FromExternalID, e.ToExternalID)
		}
		from, ok := externalToNode[e.FromExternalID]
		if !ok {
			return nil, errors.Errorf("street: edge references unknown from-node %d", e.FromExternalID)
		}
		to, ok := externalToNode[e.ToExternalID]
		if !ok {
			return nil, errors.Errorf("street: edge references unknown to-node %d", e.ToExternalID)
		}
		outDegree[from]++
		resolved = append(resolved, struct {
			from, to NodeID
			w        int32
		}{from, to, e.WalkSeconds})
	}

	firstOut := make([]int32, len(nodes)+1)
	for i := 0; i < len(nodes); i++ {
		firstOut[i+1] = firstOut[i] + outDegree[i]
	}

	head := make([]int32, len(resolved))
	weight := make([]int32, len(resolved))
	cursor := append([]int32(nil), firstOut[:len(nodes)]...)
	for _, e := range resolved {
		pos := cursor[e.from]
		head[pos] = int32(e.to)
		weight[pos] = e.w
		cursor[e.from]++
	}

	g := &Graph{
		NodeLat:        lat,
		NodeLon:        lon,
		FirstOut:       firstOut,
		Head:           head,
		Weight:         weight,
		externalToNode: externalToNode,
	}
	g.index = newIndex(g)
	return g, nil
}
