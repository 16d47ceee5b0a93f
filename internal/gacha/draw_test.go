package gacha

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/hibikineko/airona-cult/internal/model"
)

// scriptedRand replays fixed values so tests can pin a draw outcome.
type scriptedRand struct {
	ints   []int
	floats []float64
}

func (r *scriptedRand) Intn(n int) int {
	v := r.ints[0] % n
	r.ints = r.ints[1:]
	return v
}

func (r *scriptedRand) Float64() float64 {
	v := r.floats[0]
	r.floats = r.floats[1:]
	return v
}

func baseParams() DrawParams {
	return DrawParams{
		Tiers:          defaultTiers(),
		GuaranteedTier: model.RarityUltraRare,
		Banner:         model.BannerStandard,
		PityThreshold:  20,
	}
}

func TestDecideMissIncrementsPity(t *testing.T) {
	p := baseParams()
	p.Pity = 5

	// Intn value 0 means roll 1, deep in the elite band.
	d, err := Decide(p, &scriptedRand{ints: []int{0}})
	require.NoError(t, err)

	assert.Equal(t, 1, d.Roll)
	assert.Equal(t, model.RarityElite, d.Tier.Name)
	assert.False(t, d.PityTriggered)
	assert.Equal(t, 6, d.NewPity)
}

func TestDecidePityForcesGuarantee(t *testing.T) {
	p := baseParams()
	p.Pity = 19 // one short of the threshold: this draw must be guaranteed

	d, err := Decide(p, &scriptedRand{ints: []int{0}})
	require.NoError(t, err)

	assert.Equal(t, model.RarityUltraRare, d.Tier.Name)
	assert.True(t, d.PityTriggered)
	assert.Equal(t, 0, d.NewPity)
}

func TestDecidePityNotForcedBelowThreshold(t *testing.T) {
	p := baseParams()
	p.Pity = 18

	d, err := Decide(p, &scriptedRand{ints: []int{0}})
	require.NoError(t, err)

	assert.Equal(t, model.RarityElite, d.Tier.Name)
	assert.False(t, d.PityTriggered)
	assert.Equal(t, 19, d.NewPity)
}

func TestDecideNaturalGuaranteeResetsPity(t *testing.T) {
	p := baseParams()
	p.Pity = 10

	// Intn value 999 means roll 1000, the top of the ultra band.
	d, err := Decide(p, &scriptedRand{ints: []int{999}})
	require.NoError(t, err)

	assert.Equal(t, model.RarityUltraRare, d.Tier.Name)
	assert.False(t, d.PityTriggered, "a natural hit is not a pity trigger")
	assert.Equal(t, 0, d.NewPity)
}

func TestDecideRateUp(t *testing.T) {
	tests := []struct {
		name      string
		banner    string
		hasRateUp bool
		subRoll   float64
		expected  bool
	}{
		{"limited banner under chance", model.BannerLimited, true, 0.5, true},
		{"limited banner over chance", model.BannerLimited, true, 0.9, false},
		{"limited banner without rate-ups", model.BannerLimited, false, 0.0, false},
		{"standard banner never rates up", model.BannerStandard, true, 0.0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := baseParams()
			p.Banner = tt.banner
			p.HasRateUp = tt.hasRateUp
			p.RateUpChance = 0.75

			d, err := Decide(p, &scriptedRand{ints: []int{999}, floats: []float64{tt.subRoll}})
			require.NoError(t, err)

			require.Equal(t, model.RarityUltraRare, d.Tier.Name)
			assert.Equal(t, tt.expected, d.RateUpApplied)
		})
	}
}

func TestDecideNoTiers(t *testing.T) {
	_, err := Decide(DrawParams{PityThreshold: 20}, &scriptedRand{ints: []int{0}})
	assert.ErrorIs(t, err, ErrNoTiers)
}

// TestDecidePityBoundProperty checks that the pity counter can never reach
// the threshold: at threshold-1 the draw is forced and the counter resets.
func TestDecidePityBoundProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		threshold := rapid.IntRange(2, 50).Draw(t, "threshold")
		pity := rapid.IntRange(0, threshold-1).Draw(t, "pity")
		roll := rapid.IntRange(0, RollMax-1).Draw(t, "roll")

		p := baseParams()
		p.PityThreshold = threshold
		p.Pity = pity

		d, err := Decide(p, &scriptedRand{ints: []int{roll}, floats: []float64{0.5}})
		if err != nil {
			t.Fatalf("Decide failed: %v", err)
		}

		if d.NewPity >= threshold {
			t.Fatalf("pity %d reached threshold %d", d.NewPity, threshold)
		}
		if pity == threshold-1 && d.Tier.Name != model.RarityUltraRare {
			t.Fatalf("draw at pity %d was not guaranteed, got %s", pity, d.Tier.Name)
		}
		if d.Tier.Name == model.RarityUltraRare && d.NewPity != 0 {
			t.Fatalf("guaranteed hit did not reset pity, got %d", d.NewPity)
		}
	})
}
