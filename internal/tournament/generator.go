package tournament

import (
	"sort"

	"github.com/google/uuid"

	"github.com/hibikineko/airona-cult/internal/model"
)

// Config bounds one generation call.
type Config struct {
	// MaxMatches caps the total matchups proposed per call.
	MaxMatches int
	// MinComparisons is the coverage floor every submission is pushed toward.
	MinComparisons int
	// TopN is how many of the most-compared submissions get cross-checked.
	TopN int
	// InferenceDepth is how many intermediates a transitive chain may use.
	InferenceDepth int
}

// DefaultConfig returns the tuning the site runs with.
func DefaultConfig() Config {
	return Config{
		MaxMatches:     30,
		MinComparisons: 3,
		TopN:           5,
		InferenceDepth: 1,
	}
}

// Match is one proposed comparison.
type Match struct {
	ID          string `json:"matchId"`
	SubmissionA int64  `json:"submissionA"`
	SubmissionB int64  `json:"submissionB"`
}

// Result is the output of one generation call. An empty Matches slice means
// the voter's session is complete; remaining ambiguity is accepted rather
// than resolved.
type Result struct {
	Matches  []Match `json:"matches"`
	Complete bool    `json:"complete"`
	Cycles   []Cycle `json:"cycles,omitempty"`
}

// generation tracks state across the three passes of a single call.
type generation struct {
	cfg      Config
	history  *History
	matches  []Match
	proposed map[pairKey]bool
	pending  map[int64]int // comparisons proposed this call, per submission
}

// Generate derives the next batch of matchups for a voter from the active
// roster and the voter's history. Passes run in priority order:
//
//  1. conflict resolution - two submissions that both beat a third, with no
//     known relation between them, are the most informative comparisons;
//  2. minimum coverage - submissions with too few comparisons are paired
//     against well-compared opponents;
//  3. top cross-check - the most-compared submissions are pairwise checked
//     to sharpen the top of the ranking.
//
// A pair whose relation can already be inferred is never proposed, and no
// call proposes more than cfg.MaxMatches matches.
func Generate(subs []model.TournamentSubmission, history *History, cfg Config) *Result {
	g := &generation{
		cfg:      cfg,
		history:  history,
		proposed: make(map[pairKey]bool),
		pending:  make(map[int64]int),
	}

	ids := activeIDs(subs)

	g.conflictPass(ids)
	g.coveragePass(ids)
	g.topPass(ids)

	return &Result{
		Matches:  g.matches,
		Complete: len(g.matches) == 0,
		Cycles:   history.DetectCycles(),
	}
}

func activeIDs(subs []model.TournamentSubmission) []int64 {
	ids := make([]int64, 0, len(subs))
	for _, s := range subs {
		if s.IsActive {
			ids = append(ids, s.ID)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func (g *generation) full() bool {
	return len(g.matches) >= g.cfg.MaxMatches
}

// propose adds the pair unless it is already queued, already inferable, or
// the cap is reached.
func (g *generation) propose(a, b int64) bool {
	if g.full() || a == b {
		return false
	}
	k := keyFor(a, b)
	if g.proposed[k] {
		return false
	}
	if g.history.CanInfer(a, b, g.cfg.InferenceDepth) {
		return false
	}

	g.proposed[k] = true
	g.pending[a]++
	g.pending[b]++
	g.matches = append(g.matches, Match{
		ID:          uuid.NewString(),
		SubmissionA: a,
		SubmissionB: b,
	})
	return true
}

// conflictPass targets the classic ambiguity: both x and y beat b, but
// nothing orders x against y.
func (g *generation) conflictPass(ids []int64) {
	for _, b := range ids {
		if g.full() {
			return
		}
		beaters := g.history.Beaters(b)
		for i := 0; i < len(beaters) && !g.full(); i++ {
			for j := i + 1; j < len(beaters) && !g.full(); j++ {
				g.propose(beaters[i], beaters[j])
			}
		}
	}
}

// coveragePass pairs under-compared submissions against opponents with the
// most existing comparisons, so each new vote anchors against established
// data. Matches proposed earlier in this call count toward the floor.
func (g *generation) coveragePass(ids []int64) {
	for _, s := range ids {
		if g.full() {
			return
		}
		have := g.history.Comparisons(s) + g.pending[s]
		if have >= g.cfg.MinComparisons {
			continue
		}

		opponents := make([]int64, 0, len(ids)-1)
		for _, o := range ids {
			if o != s {
				opponents = append(opponents, o)
			}
		}
		sort.Slice(opponents, func(i, j int) bool {
			ci, cj := g.history.Comparisons(opponents[i]), g.history.Comparisons(opponents[j])
			if ci != cj {
				return ci > cj
			}
			return opponents[i] < opponents[j]
		})

		for _, o := range opponents {
			if have >= g.cfg.MinComparisons || g.full() {
				break
			}
			if g.propose(s, o) {
				have++
			}
		}
	}
}

// topPass cross-checks the TopN most-compared submissions pairwise.
func (g *generation) topPass(ids []int64) {
	if g.full() {
		return
	}

	ranked := make([]int64, len(ids))
	copy(ranked, ids)
	sort.Slice(ranked, func(i, j int) bool {
		ci, cj := g.history.Comparisons(ranked[i]), g.history.Comparisons(ranked[j])
		if ci != cj {
			return ci > cj
		}
		return ranked[i] < ranked[j]
	})

	n := g.cfg.TopN
	if n > len(ranked) {
		n = len(ranked)
	}
	top := ranked[:n]

	for i := 0; i < len(top) && !g.full(); i++ {
		for j := i + 1; j < len(top) && !g.full(); j++ {
			g.propose(top[i], top[j])
		}
	}
}
