package gacha

import (
	"errors"
	"fmt"

	"github.com/hibikineko/airona-cult/internal/model"
)

// DismantleRule defines how many copies form one payout set for a rarity and
// how many coins the set pays.
type DismantleRule struct {
	CopiesPerSet int
	CoinsPerSet  int64
}

// dismantleRules is the payout table. Rarer cards need fewer copies per coin.
var dismantleRules = map[string]DismantleRule{
	model.RarityUltraRare: {CopiesPerSet: 1, CoinsPerSet: 1},
	model.RaritySuperRare: {CopiesPerSet: 3, CoinsPerSet: 1},
	model.RarityElite:     {CopiesPerSet: 5, CoinsPerSet: 1},
}

// RuleForRarity returns the payout rule for a rarity.
func RuleForRarity(rarity string) (DismantleRule, bool) {
	r, ok := dismantleRules[rarity]
	return r, ok
}

// Dismantle errors.
var (
	ErrNothingSelected = errors.New("no cards selected for dismantling")
	ErrUnknownRarity   = errors.New("no dismantle rule for rarity")
)

// NoFullSetError rejects a dismantle request naming the card that could not
// form a complete set. The whole request fails; partial dismantles are not
// performed.
type NoFullSetError struct {
	CardID   int64
	Quantity int
	Required int
}

func (e *NoFullSetError) Error() string {
	return fmt.Sprintf("card %d has %d copies, needs %d spare for a full set", e.CardID, e.Quantity, e.Required)
}

// DismantleItem is one card the user selected, resolved to its current
// holdings.
type DismantleItem struct {
	CardID   int64
	Rarity   string
	Quantity int
}

// DismantleOutcome is the per-card result of a dismantle plan.
type DismantleOutcome struct {
	CardID      int64  `json:"cardId"`
	Rarity      string `json:"rarity"`
	Sets        int    `json:"sets"`
	CopiesUsed  int    `json:"copiesUsed"`
	Coins       int64  `json:"coins"`
	OldQuantity int    `json:"oldQuantity"`
	NewQuantity int    `json:"newQuantity"`
}

// DismantlePlan is the computed result of a dismantle request, before any
// write happens.
type DismantlePlan struct {
	TotalCoins int64              `json:"totalCoins"`
	Outcomes   []DismantleOutcome `json:"outcomes"`
}

// PlanDismantle computes the payout for a selection of cards.
//
// One copy of every card is always kept: only quantity-1 copies are available
// for dismantling, and only whole sets are consumed. If any selected card
// cannot form at least one full set, the entire request is rejected.
func PlanDismantle(items []DismantleItem) (*DismantlePlan, error) {
	if len(items) == 0 {
		return nil, ErrNothingSelected
	}

	plan := &DismantlePlan{}
	for _, item := range items {
		rule, ok := RuleForRarity(item.Rarity)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownRarity, item.Rarity)
		}

		available := item.Quantity - 1
		sets := 0
		if available > 0 {
			sets = available / rule.CopiesPerSet
		}
		if sets == 0 {
			return nil, &NoFullSetError{
				CardID:   item.CardID,
				Quantity: item.Quantity,
				Required: rule.CopiesPerSet,
			}
		}

		used := sets * rule.CopiesPerSet
		coins := int64(sets) * rule.CoinsPerSet
		plan.Outcomes = append(plan.Outcomes, DismantleOutcome{
			CardID:      item.CardID,
			Rarity:      item.Rarity,
			Sets:        sets,
			CopiesUsed:  used,
			Coins:       coins,
			OldQuantity: item.Quantity,
			NewQuantity: item.Quantity - used,
		})
		plan.TotalCoins += coins
	}

	return plan, nil
}
