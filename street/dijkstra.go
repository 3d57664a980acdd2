package street

import (
	"container/heap"
	"context"
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"
)

// heapItem is one entry in the binary heap used by Dijkstra below.
type heapItem struct {
	node NodeID
	dist int32
}

// nodeHeap is a standard container/heap binary min-heap, decrease-key
// implemented by push-and-skip-stale (spec §4.2): a node may appear more
// than once; stale entries are dropped on pop by comparing against dist[].
type nodeHeap []heapItem

func (h nodeHeap) Len() int            { return len(h) }
func (h nodeHeap) Less(i, j int) bool  { return h[i].dist < h[j].dist }
func (h nodeHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *nodeHeap) Push(x interface{}) { *h = append(*h, x.(heapItem)) }
func (h *nodeHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// Scratch is per-worker Dijkstra state: the settled-distance array, the
// predecessor array for path reconstruction, and the heap. Scratch may be
// pooled across queries on the same worker (spec §5 "Shared resources").
type Scratch struct {
	dist []int32
	pred []int32
	h    nodeHeap
}

// NewScratch allocates scratch sized for a graph with numNodes nodes.
func NewScratch(numNodes int) *Scratch {
	return &Scratch{
		dist: make([]int32, numNodes),
		pred: make([]int32, numNodes),
	}
}

func (s *Scratch) reset() {
	for i := range s.dist {
		s.dist[i] = Unreachable
		s.pred[i] = -1
	}
	s.h = s.h[:0]
}

// Dijkstra runs label-setting shortest paths over a Graph using pooled
// Scratch buffers. All forms below are non-negative-weight single-source
// searches; only the termination condition and the set of roots differ
// (spec §4.2).
type Dijkstra struct {
	g    *Graph
	pool sync.Pool
}

func NewDijkstra(g *Graph) *Dijkstra {
	d := &Dijkstra{g: g}
	d.pool.New = func() interface{} { return NewScratch(g.NumNodes()) }
	return d
}

func (d *Dijkstra) getScratch() *Scratch {
	s := d.pool.Get().(*Scratch)
	s.reset()
	return s
}

func (d *Dijkstra) putScratch(s *Scratch) { d.pool.Put(s) }

// Result is a completed single-source search: distances and predecessors,
// valid until the caller releases it via Release, after which the pooled
// scratch they live in may be reused by another search.
type Result struct {
	s *Scratch
	d *Dijkstra
}

// Dist returns the settled distance to n, or Unreachable.
func (r *Result) Dist(n NodeID) int32 { return r.s.dist[n] }

// Release returns the scratch to the pool. Callers must not use Result
// after calling Release.
func (r *Result) Release() { r.d.putScratch(r.s) }

// Path reconstructs the node sequence from the search's source to dst by
// walking predecessors (spec §4.2 "Path reconstruction"). Returns nil if
// dst was never settled.
func (r *Result) Path(dst NodeID) []NodeID {
	if r.s.dist[dst] == Unreachable {
		return nil
	}
	var rev []NodeID
	for n := dst; n != -1; n = NodeID(r.s.pred[n]) {
		rev = append(rev, n)
	}
	for i, j := 0, len(rev)-1; i < j; i, j = i+1, j-1 {
		rev[i], rev[j] = rev[j], rev[i]
	}
	return rev
}

// SingleSource computes distances from src to every reachable node.
func (d *Dijkstra) SingleSource(src NodeID) *Result {
	s := d.getScratch()
	s.dist[src] = 0
	heap.Push(&s.h, heapItem{node: src, dist: 0})
	d.run(s, nil, Unreachable)
	return &Result{s: s, d: d}
}

// OneToOne returns the shortest distance from src to dst, with early exit
// once dst is settled.
func (d *Dijkstra) OneToOne(src, dst NodeID) (int32, bool) {
	s := d.getScratch()
	defer d.putScratch(s)
	s.dist[src] = 0
	heap.Push(&s.h, heapItem{node: src, dist: 0})
	d.runEarlyExit(s, dst)
	if s.dist[dst] == Unreachable {
		return Unreachable, false
	}
	return s.dist[dst], true
}

// OneToMany returns the shortest distance from src to each node in
// targets, bounded by cutoff: the frontier is abandoned once every target
// is settled or the minimum unsettled frontier distance exceeds cutoff.
// Settled target distances play no part in stopping the search; targets
// beyond cutoff or unreachable are absent from the result.
func (d *Dijkstra) OneToMany(src NodeID, targets []NodeID, cutoff int32) map[NodeID]int32 {
	s := d.getScratch()
	defer d.putScratch(s)
	s.dist[src] = 0
	heap.Push(&s.h, heapItem{node: src, dist: 0})

	remaining := make(map[NodeID]bool, len(targets))
	for _, t := range targets {
		remaining[t] = true
	}

	for s.h.Len() > 0 && len(remaining) > 0 {
		top := heap.Pop(&s.h).(heapItem)
		if top.dist > s.dist[top.node] {
			continue // stale entry
		}
		if top.dist > cutoff {
			break
		}
		delete(remaining, top.node)
		d.relax(s, top.node, top.dist)
	}

	out := make(map[NodeID]int32, len(targets))
	for _, t := range targets {
		if s.dist[t] != Unreachable && s.dist[t] <= cutoff {
			out[t] = s.dist[t]
		}
	}
	return out
}

// Matrix computes a |srcs| x |dsts| travel-time matrix in seconds,
// dispatching rows across an errgroup-bounded worker pool (spec §4.2
// "matrix", §5 "batch boundary" parallelism).
func (d *Dijkstra) Matrix(ctx context.Context, srcs, dsts []NodeID, cutoff int32) ([][]int32, error) {
	rows := make([][]int32, len(srcs))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, src := range srcs {
		i, src := i, src
		g.Go(func() error {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			durations := d.OneToMany(src, dsts, cutoff)
			row := make([]int32, len(dsts))
			for j, dst := range dsts {
				if v, ok := durations[dst]; ok {
					row[j] = v
				} else {
					row[j] = Unreachable
				}
			}
			rows[i] = row
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return rows, nil
}

// run drains the heap fully (or until every node in targets is settled,
// when targets is non-nil), honoring cutoff.
func (d *Dijkstra) run(s *Scratch, targets map[NodeID]bool, cutoff int32) {
	for s.h.Len() > 0 {
		top := heap.Pop(&s.h).(heapItem)
		if top.dist > s.dist[top.node] {
			continue
		}
		if top.dist > cutoff {
			break
		}
		if targets != nil {
			delete(targets, top.node)
			if len(targets) == 0 {
				return
			}
		}
		d.relax(s, top.node, top.dist)
	}
}

func (d *Dijkstra) runEarlyExit(s *Scratch, dst NodeID) {
	for s.h.Len() > 0 {
		top := heap.Pop(&s.h).(heapItem)
		if top.dist > s.dist[top.node] {
			continue
		}
		if top.node == dst {
			return
		}
		d.relax(s, top.node, top.dist)
	}
}

func (d *Dijkstra) relax(s *Scratch, u NodeID, du int32) {
	start, end := d.g.FirstOut[u], d.g.FirstOut[u+1]
	for e := start; e < end; e++ {
		v := NodeID(d.g.Head[e])
		nd := du + d.g.Weight[e]
		if nd < s.dist[v] {
			s.dist[v] = nd
			s.pred[v] = int32(u)
			heap.Push(&s.h, heapItem{node: v, dist: nd})
		}
	}
}
