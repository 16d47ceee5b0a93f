// Package tournament implements the Halloween contest match generator. It
// builds a per-voter "beats" graph from recorded votes and proposes only
// comparisons whose outcome cannot already be inferred, so a voter can rank
// a roster of submissions in far fewer than all-pairs matchups.
package tournament

import (
	"sort"

	"github.com/hibikineko/airona-cult/internal/model"
)

// History is one voter's accumulated pairwise choices, held in memory for
// the duration of match generation. It is rebuilt from vote records on every
// session start and never persisted.
type History struct {
	beats       map[int64]map[int64]bool // winner -> set of losers
	comparisons map[int64]int            // submission -> total votes involving it
	direct      map[pairKey]bool         // unordered pairs with a recorded vote
}

type pairKey struct {
	lo, hi int64
}

func keyFor(a, b int64) pairKey {
	if a > b {
		a, b = b, a
	}
	return pairKey{lo: a, hi: b}
}

// NewHistory builds a History from a voter's vote records.
func NewHistory(votes []model.VoteRecord) *History {
	h := &History{
		beats:       make(map[int64]map[int64]bool),
		comparisons: make(map[int64]int),
		direct:      make(map[pairKey]bool),
	}
	for _, v := range votes {
		h.Add(v.WinnerID, v.LoserID)
	}
	return h
}

// Add records one winner-beats-loser edge.
func (h *History) Add(winnerID, loserID int64) {
	if h.beats[winnerID] == nil {
		h.beats[winnerID] = make(map[int64]bool)
	}
	h.beats[winnerID][loserID] = true
	h.comparisons[winnerID]++
	h.comparisons[loserID]++
	h.direct[keyFor(winnerID, loserID)] = true
}

// HasDirect reports whether a vote was recorded between a and b, in either
// direction.
func (h *History) HasDirect(a, b int64) bool {
	return h.direct[keyFor(a, b)]
}

// CanInfer reports whether the relationship between a and b is already known:
// either a direct vote exists, or a transitive chain of at most depth
// intermediates connects them in either direction. The default depth of one
// matches the classic "a beat x, x beat b" shortcut; longer chains are a
// deliberate correctness-cost tradeoff controlled by the caller.
func (h *History) CanInfer(a, b int64, depth int) bool {
	if h.HasDirect(a, b) {
		return true
	}
	if depth < 1 {
		return false
	}
	return h.hasPath(a, b, depth+1) || h.hasPath(b, a, depth+1)
}

// hasPath reports whether a directed beats-path of at most maxEdges edges
// runs from src to dst. Breadth-first, tracking visited nodes so voter
// cycles cannot loop the search.
func (h *History) hasPath(src, dst int64, maxEdges int) bool {
	type node struct {
		id    int64
		edges int
	}
	visited := map[int64]bool{src: true}
	queue := []node{{id: src}}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if cur.edges >= maxEdges {
			continue
		}
		for next := range h.beats[cur.id] {
			if next == dst {
				return true
			}
			if !visited[next] {
				visited[next] = true
				queue = append(queue, node{id: next, edges: cur.edges + 1})
			}
		}
	}
	return false
}

// Comparisons returns how many recorded votes involve the submission.
func (h *History) Comparisons(id int64) int {
	return h.comparisons[id]
}

// Beaters returns the submissions recorded as beating id, in stable order.
func (h *History) Beaters(id int64) []int64 {
	var beaters []int64
	for winner, losers := range h.beats {
		if losers[id] {
			beaters = append(beaters, winner)
		}
	}
	sort.Slice(beaters, func(i, j int) bool { return beaters[i] < beaters[j] })
	return beaters
}

// Cycle is an inconsistent vote triple: A beat B, B beat C, C beat A.
type Cycle [3]int64

// DetectCycles finds 3-cycles in the beats graph. Cycles are reported, not
// repaired; inconsistent voter input is tolerated by the generator and only
// surfaced so admins can see it.
func (h *History) DetectCycles() []Cycle {
	var cycles []Cycle
	seen := make(map[pairKey]map[int64]bool)

	for a, aLosers := range h.beats {
		for b := range aLosers {
			for c := range h.beats[b] {
				if h.beats[c][a] {
					lo, mid, hi := sortTriple(a, b, c)
					k := keyFor(lo, hi)
					if seen[k] == nil {
						seen[k] = make(map[int64]bool)
					}
					if seen[k][mid] {
						continue
					}
					seen[k][mid] = true
					cycles = append(cycles, Cycle{a, b, c})
				}
			}
		}
	}

	sort.Slice(cycles, func(i, j int) bool {
		if cycles[i][0] != cycles[j][0] {
			return cycles[i][0] < cycles[j][0]
		}
		return cycles[i][1] < cycles[j][1]
	})
	return cycles
}

func sortTriple(a, b, c int64) (int64, int64, int64) {
	vals := []int64{a, b, c}
	sort.Slice(vals, func(i, j int) bool { return vals[i] < vals[j] })
	return vals[0], vals[1], vals[2]
}
