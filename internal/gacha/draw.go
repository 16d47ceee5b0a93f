package gacha

import "github.com/hibikineko/airona-cult/internal/model"

// Decision is the outcome of one draw roll before any card is picked.
type Decision struct {
	Roll          int
	Tier          model.RarityTier
	PityTriggered bool
	RateUpApplied bool
	NewPity       int
}

// DrawParams carries the configuration a single decision needs.
type DrawParams struct {
	Tiers          []model.RarityTier
	GuaranteedTier string
	Banner         string
	Pity           int
	PityThreshold  int
	HasRateUp      bool
	RateUpChance   float64
}

// Decide rolls a tier and applies the pity and rate-up rules.
//
// The pity counter counts consecutive draws that missed the guaranteed tier.
// A counter of threshold-1 means the next draw (this one) is forced to the
// guaranteed tier regardless of the roll. Hitting the guaranteed tier, by
// luck or by force, resets the counter; any other outcome increments it.
//
// On the limited banner, a guaranteed-tier hit has a fixed chance of being
// redirected to the banner's rate-up cards when any are configured.
func Decide(p DrawParams, rng Rand) (Decision, error) {
	if len(p.Tiers) == 0 {
		return Decision{}, ErrNoTiers
	}

	d := Decision{Roll: rng.Intn(RollMax) + RollMin}

	tier, err := PickTier(p.Tiers, d.Roll)
	if err != nil {
		return Decision{}, err
	}

	if tier.Name != p.GuaranteedTier && p.Pity >= p.PityThreshold-1 {
		if forced, ok := TierByName(p.Tiers, p.GuaranteedTier); ok {
			tier = forced
			d.PityTriggered = true
		}
	}
	d.Tier = tier

	if tier.Name == p.GuaranteedTier {
		d.NewPity = 0
		if p.Banner == model.BannerLimited && p.HasRateUp {
			d.RateUpApplied = rng.Float64() < p.RateUpChance
		}
	} else {
		d.NewPity = p.Pity + 1
	}

	return d, nil
}
