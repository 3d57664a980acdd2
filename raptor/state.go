package raptor

import "sync"

// Unreachable marks a stop never attained within the round bound, mirroring
// street.Unreachable so callers can compare RAPTOR and Dijkstra results with
// a single sentinel (spec §9 "infinity sentinel").
const Unreachable int32 = 1<<31 - 1

// State is a pooled scratch buffer for one Sweep. It is sized against a
// Model's stop count and reused across an unbounded number of queries by one
// worker (spec §5 "cache-friendly, per-worker reuse"; grounded on
// street.Scratch's identical sync.Pool pattern). Never shared between
// concurrently running sweeps.
type State struct {
	numStops int
	rounds   int // rounds actually allocated (capacity), not necessarily used

	// tau[k*numStops+s] is the earliest known arrival at stop s within at
	// most k rounds (spec §9 "tau[k][s]"), linearized for locality.
	tau []int32

	tauStar  []int32
	backlink []Backlink

	// markGen[s] == round means s was marked during that round's route
	// scan or transfer phase; compared against a running round counter
	// instead of cleared every round (spec §5 memory-layout guidance).
	markGen []int32
}

// NewState allocates a State sized for a model with numStops stops and up to
// maxRounds rounds of search.
func NewState(numStops, maxRounds int) *State {
	s := &State{numStops: numStops, rounds: maxRounds}
	s.tau = make([]int32, (maxRounds+1)*numStops)
	s.tauStar = make([]int32, numStops)
	s.backlink = make([]Backlink, numStops)
	s.markGen = make([]int32, numStops)
	return s
}

func (s *State) reset(maxRounds int) {
	need := (maxRounds + 1) * s.numStops
	if cap(s.tau) < need {
		s.tau = make([]int32, need)
	} else {
		s.tau = s.tau[:need]
	}
	for i := range s.tau {
		s.tau[i] = Unreachable
	}
	for i := range s.tauStar {
		s.tauStar[i] = Unreachable
		s.backlink[i] = Backlink{Kind: backlinkNone, A: -1, B: -1}
		s.markGen[i] = -1
	}
	s.rounds = maxRounds
}

func (s *State) tauRound(k int) []int32 {
	return s.tau[k*s.numStops : (k+1)*s.numStops]
}

// Pool hands out per-worker States so batch orchestrators (spec §5 "matrix,
// isochrone, one-to-many, time-range") avoid reallocating per query.
type Pool struct {
	numStops int
	pool     sync.Pool
}

// NewPool builds a State pool for a model with numStops stops.
func NewPool(numStops int) *Pool {
	p := &Pool{numStops: numStops}
	p.pool.New = func() any { return NewState(numStops, 1) }
	return p
}

// Get returns a State ready for a sweep of up to maxRounds rounds.
func (p *Pool) Get(maxRounds int) *State {
	st := p.pool.Get().(*State)
	st.reset(maxRounds)
	return st
}

// Put returns a State to the pool for reuse.
func (p *Pool) Put(s *State) { p.pool.Put(s) }
