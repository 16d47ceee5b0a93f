package tournament

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/hibikineko/airona-cult/internal/model"
)

func roster(ids ...int64) []model.TournamentSubmission {
	subs := make([]model.TournamentSubmission, 0, len(ids))
	for _, id := range ids {
		subs = append(subs, model.TournamentSubmission{ID: id, IsActive: true})
	}
	return subs
}

func TestGenerateFreshVoter(t *testing.T) {
	result := Generate(roster(1, 2, 3, 4), NewHistory(nil), DefaultConfig())

	assert.False(t, result.Complete)
	assert.NotEmpty(t, result.Matches)
	assert.LessOrEqual(t, len(result.Matches), DefaultConfig().MaxMatches)

	// Every submission should be pushed toward the coverage floor.
	pending := map[int64]int{}
	for _, m := range result.Matches {
		assert.NotEqual(t, m.SubmissionA, m.SubmissionB)
		assert.NotEmpty(t, m.ID)
		pending[m.SubmissionA]++
		pending[m.SubmissionB]++
	}
	for _, id := range []int64{1, 2, 3, 4} {
		assert.GreaterOrEqual(t, pending[id], DefaultConfig().MinComparisons, "submission %d", id)
	}
}

func TestGenerateSkipsInactiveSubmissions(t *testing.T) {
	subs := roster(1, 2, 3)
	subs = append(subs, model.TournamentSubmission{ID: 4, IsActive: false})

	result := Generate(subs, NewHistory(nil), DefaultConfig())

	for _, m := range result.Matches {
		assert.NotEqual(t, int64(4), m.SubmissionA)
		assert.NotEqual(t, int64(4), m.SubmissionB)
	}
}

func TestGenerateConflictPass(t *testing.T) {
	// Both 2 and 3 beat 1, nothing orders 2 against 3: that pair must come
	// out of a generation call.
	h := historyOf([2]int64{2, 1}, [2]int64{3, 1})

	result := Generate(roster(1, 2, 3), h, DefaultConfig())

	found := false
	for _, m := range result.Matches {
		if keyFor(m.SubmissionA, m.SubmissionB) == keyFor(2, 3) {
			found = true
		}
	}
	assert.True(t, found, "conflict pair 2v3 was not proposed")
}

func TestGenerateNeverProposesKnownPairs(t *testing.T) {
	// 1 beat 2 directly and 1>3 via 2; neither pair may reappear.
	h := historyOf([2]int64{1, 2}, [2]int64{2, 3})

	result := Generate(roster(1, 2, 3), h, DefaultConfig())

	for _, m := range result.Matches {
		k := keyFor(m.SubmissionA, m.SubmissionB)
		assert.NotEqual(t, keyFor(1, 2), k)
		assert.NotEqual(t, keyFor(1, 3), k)
	}
}

func TestGenerateCompleteSession(t *testing.T) {
	// Full linear order over three submissions, everything inferable.
	h := historyOf(
		[2]int64{1, 2}, [2]int64{2, 3}, [2]int64{1, 3},
	)

	result := Generate(roster(1, 2, 3), h, DefaultConfig())

	assert.Empty(t, result.Matches)
	assert.True(t, result.Complete)
}

func TestGenerateRespectsCap(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxMatches = 5

	ids := make([]int64, 20)
	for i := range ids {
		ids[i] = int64(i + 1)
	}

	result := Generate(roster(ids...), NewHistory(nil), cfg)
	assert.Len(t, result.Matches, 5)
}

func TestGenerateReportsCycles(t *testing.T) {
	h := historyOf([2]int64{1, 2}, [2]int64{2, 3}, [2]int64{3, 1})

	result := Generate(roster(1, 2, 3), h, DefaultConfig())
	require.Len(t, result.Cycles, 1)
}

// TestGenerateNeverInferableProperty is the core guarantee: no generated
// match can be answered from the voter's existing history, no call exceeds
// the cap, and no pair is proposed twice.
func TestGenerateNeverInferableProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		numSubs := rapid.IntRange(2, 12).Draw(t, "numSubs")
		ids := make([]int64, numSubs)
		for i := range ids {
			ids[i] = int64(i + 1)
		}

		// Random vote history over the roster.
		numVotes := rapid.IntRange(0, 30).Draw(t, "numVotes")
		var votes []model.VoteRecord
		for i := 0; i < numVotes; i++ {
			w := ids[rapid.IntRange(0, numSubs-1).Draw(t, "winner")]
			l := ids[rapid.IntRange(0, numSubs-1).Draw(t, "loser")]
			if w == l {
				continue
			}
			votes = append(votes, model.VoteRecord{WinnerID: w, LoserID: l})
		}
		history := NewHistory(votes)

		cfg := DefaultConfig()
		cfg.InferenceDepth = rapid.IntRange(1, 3).Draw(t, "depth")

		result := Generate(roster(ids...), history, cfg)

		if len(result.Matches) > cfg.MaxMatches {
			t.Fatalf("proposed %d matches, cap is %d", len(result.Matches), cfg.MaxMatches)
		}

		seen := map[pairKey]bool{}
		for _, m := range result.Matches {
			if m.SubmissionA == m.SubmissionB {
				t.Fatalf("self match proposed: %+v", m)
			}
			k := keyFor(m.SubmissionA, m.SubmissionB)
			if seen[k] {
				t.Fatalf("pair %v proposed twice", k)
			}
			seen[k] = true
			if history.CanInfer(m.SubmissionA, m.SubmissionB, cfg.InferenceDepth) {
				t.Fatalf("proposed inferable pair %d vs %d", m.SubmissionA, m.SubmissionB)
			}
		}
	})
}
