package gacha

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/hibikineko/airona-cult/internal/model"
)

func TestPlanDismantle(t *testing.T) {
	tests := []struct {
		name        string
		item        DismantleItem
		wantSets    int
		wantCoins   int64
		wantNewQty  int
		wantUsed    int
	}{
		{
			// 7 copies: 1 kept, 6 spare, one full set of 5.
			name:       "elite with seven copies",
			item:       DismantleItem{CardID: 1, Rarity: model.RarityElite, Quantity: 7},
			wantSets:   1,
			wantCoins:  1,
			wantNewQty: 2,
			wantUsed:   5,
		},
		{
			name:       "elite with eleven copies makes two sets",
			item:       DismantleItem{CardID: 1, Rarity: model.RarityElite, Quantity: 11},
			wantSets:   2,
			wantCoins:  2,
			wantNewQty: 1,
			wantUsed:   10,
		},
		{
			name:       "super rare with four copies",
			item:       DismantleItem{CardID: 2, Rarity: model.RaritySuperRare, Quantity: 4},
			wantSets:   1,
			wantCoins:  1,
			wantNewQty: 1,
			wantUsed:   3,
		},
		{
			name:       "ultra rare duplicate pays per copy",
			item:       DismantleItem{CardID: 3, Rarity: model.RarityUltraRare, Quantity: 2},
			wantSets:   1,
			wantCoins:  1,
			wantNewQty: 1,
			wantUsed:   1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan, err := PlanDismantle([]DismantleItem{tt.item})
			require.NoError(t, err)
			require.Len(t, plan.Outcomes, 1)

			out := plan.Outcomes[0]
			assert.Equal(t, tt.wantSets, out.Sets)
			assert.Equal(t, tt.wantCoins, out.Coins)
			assert.Equal(t, tt.wantNewQty, out.NewQuantity)
			assert.Equal(t, tt.wantUsed, out.CopiesUsed)
			assert.Equal(t, tt.wantCoins, plan.TotalCoins)
		})
	}
}

func TestPlanDismantleRejections(t *testing.T) {
	t.Run("empty selection", func(t *testing.T) {
		_, err := PlanDismantle(nil)
		assert.ErrorIs(t, err, ErrNothingSelected)
	})

	t.Run("unknown rarity", func(t *testing.T) {
		_, err := PlanDismantle([]DismantleItem{{CardID: 1, Rarity: "mythic", Quantity: 10}})
		assert.ErrorIs(t, err, ErrUnknownRarity)
	})

	t.Run("not enough spare copies", func(t *testing.T) {
		// 5 copies of an elite: 4 spare, short of the 5 a set needs.
		_, err := PlanDismantle([]DismantleItem{{CardID: 9, Rarity: model.RarityElite, Quantity: 5}})

		var noSet *NoFullSetError
		require.ErrorAs(t, err, &noSet)
		assert.Equal(t, int64(9), noSet.CardID)
		assert.Equal(t, 5, noSet.Required)
	})

	t.Run("single copy is never dismantled", func(t *testing.T) {
		_, err := PlanDismantle([]DismantleItem{{CardID: 3, Rarity: model.RarityUltraRare, Quantity: 1}})

		var noSet *NoFullSetError
		assert.ErrorAs(t, err, &noSet)
	})

	t.Run("one bad card fails the whole request", func(t *testing.T) {
		items := []DismantleItem{
			{CardID: 1, Rarity: model.RarityUltraRare, Quantity: 3},
			{CardID: 2, Rarity: model.RarityElite, Quantity: 2},
		}
		_, err := PlanDismantle(items)

		var noSet *NoFullSetError
		require.True(t, errors.As(err, &noSet))
		assert.Equal(t, int64(2), noSet.CardID)
	})
}

// TestPlanDismantleKeepsOneCopyProperty checks that no plan ever consumes a
// card's last copy and payouts always match whole sets.
func TestPlanDismantleKeepsOneCopyProperty(t *testing.T) {
	rarities := []string{model.RarityElite, model.RaritySuperRare, model.RarityUltraRare}

	rapid.Check(t, func(t *rapid.T) {
		rarity := rarities[rapid.IntRange(0, 2).Draw(t, "rarity")]
		quantity := rapid.IntRange(1, 100).Draw(t, "quantity")

		plan, err := PlanDismantle([]DismantleItem{{CardID: 1, Rarity: rarity, Quantity: quantity}})
		if err != nil {
			var noSet *NoFullSetError
			if !errors.As(err, &noSet) {
				t.Fatalf("unexpected error: %v", err)
			}
			return
		}

		rule, _ := RuleForRarity(rarity)
		out := plan.Outcomes[0]

		if out.NewQuantity < 1 {
			t.Fatalf("plan consumed the last copy: %+v", out)
		}
		if out.CopiesUsed != out.Sets*rule.CopiesPerSet {
			t.Fatalf("copies used %d is not whole sets of %d", out.CopiesUsed, rule.CopiesPerSet)
		}
		if out.Coins != int64(out.Sets)*rule.CoinsPerSet {
			t.Fatalf("payout %d does not match %d sets", out.Coins, out.Sets)
		}
		if out.OldQuantity-out.CopiesUsed != out.NewQuantity {
			t.Fatalf("quantity arithmetic broken: %+v", out)
		}
	})
}
