// Package gacha implements the fortune card draw rules: weighted rarity
// rolls, the pity guarantee, rate-up selection, streaks and dismantling.
// The package is pure logic; persistence lives in the service layer.
package gacha

import (
	"errors"
	"fmt"
	"sort"

	"github.com/hibikineko/airona-cult/internal/model"
)

// Roll range for tier selection. Tiers must tile this range exactly.
const (
	RollMin = 1
	RollMax = 1000
)

// Configuration errors.
var (
	ErrNoTiers = errors.New("no rarity tiers configured")
	ErrNoCards = errors.New("no cards configured for rarity")
)

// PickTier selects the tier whose band contains roll. Tiers are scanned in
// the order given (widest first, per the repository ordering). If no band
// contains the roll the widest band is returned as a defensive fallback;
// that only happens on malformed tier data.
func PickTier(tiers []model.RarityTier, roll int) (model.RarityTier, error) {
	if len(tiers) == 0 {
		return model.RarityTier{}, ErrNoTiers
	}

	for _, t := range tiers {
		if t.Contains(roll) {
			return t, nil
		}
	}

	widest := tiers[0]
	for _, t := range tiers[1:] {
		if t.Width() > widest.Width() {
			widest = t
		}
	}
	return widest, nil
}

// TierByName finds a tier by name.
func TierByName(tiers []model.RarityTier, name string) (model.RarityTier, bool) {
	for _, t := range tiers {
		if t.Name == name {
			return t, true
		}
	}
	return model.RarityTier{}, false
}

// ValidateTiers checks that the bands tile [RollMin, RollMax] with no gaps
// or overlaps. Band layout is admin-entered data, so the server validates it
// at startup rather than trusting the table.
func ValidateTiers(tiers []model.RarityTier) error {
	if len(tiers) == 0 {
		return ErrNoTiers
	}

	sorted := make([]model.RarityTier, len(tiers))
	copy(sorted, tiers)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].MinRoll < sorted[j].MinRoll })

	next := RollMin
	for _, t := range sorted {
		if t.MinRoll != next {
			return fmt.Errorf("tier %q starts at %d, expected %d", t.Name, t.MinRoll, next)
		}
		if t.MaxRoll < t.MinRoll {
			return fmt.Errorf("tier %q has inverted band [%d,%d]", t.Name, t.MinRoll, t.MaxRoll)
		}
		next = t.MaxRoll + 1
	}
	if next != RollMax+1 {
		return fmt.Errorf("tiers end at %d, expected %d", next-1, RollMax)
	}
	return nil
}

// PickCard selects uniformly among the given cards.
func PickCard(cards []model.Card, rng Rand) (model.Card, error) {
	if len(cards) == 0 {
		return model.Card{}, ErrNoCards
	}
	return cards[rng.Intn(len(cards))], nil
}
