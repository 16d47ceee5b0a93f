package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"

	"github.com/hibikineko/airona-cult/internal/config"
	"github.com/hibikineko/airona-cult/internal/gacha"
	"github.com/hibikineko/airona-cult/internal/model"
	"github.com/hibikineko/airona-cult/internal/pkg/db"
	"github.com/hibikineko/airona-cult/internal/pkg/lock"
	"github.com/hibikineko/airona-cult/internal/repository"
)

// Common errors for draw operations.
var (
	ErrAlreadyDrawn   = errors.New("daily draw already taken")
	ErrDrawInProgress = errors.New("another draw is already in progress")
	ErrInvalidBanner  = errors.New("unknown banner type")
)

// GachaService coordinates the fortune card draw, collection and dismantle
// flows. Every multi-step write runs inside one database transaction; the
// per-user lock on top only fails overlapping same-user requests fast.
type GachaService struct {
	pool       *db.Pool
	users      *repository.UserRepository
	cards      *repository.CardRepository
	collection *repository.CollectionRepository
	stats      *repository.StatsRepository
	pity       *repository.PityRepository
	ledger     LedgerEmitter
	cfg        *config.Config
	rng        gacha.Rand
	locks      *lock.UserLock
}

// NewGachaService creates a new GachaService instance.
func NewGachaService(
	pool *db.Pool,
	users *repository.UserRepository,
	cards *repository.CardRepository,
	collection *repository.CollectionRepository,
	stats *repository.StatsRepository,
	pity *repository.PityRepository,
	ledger LedgerEmitter,
	cfg *config.Config,
	rng gacha.Rand,
	locks *lock.UserLock,
) *GachaService {
	return &GachaService{
		pool:       pool,
		users:      users,
		cards:      cards,
		collection: collection,
		stats:      stats,
		pity:       pity,
		ledger:     ledger,
		cfg:        cfg,
		rng:        rng,
		locks:      locks,
	}
}

// DrawResult is the outcome of one draw returned to the caller.
type DrawResult struct {
	Card          model.Card       `json:"card"`
	IsNew         bool             `json:"isNew"`
	Rarity        model.RarityTier `json:"rarity"`
	PityTriggered bool             `json:"pityTriggered"`
	RateUpApplied bool             `json:"rateUpApplied"`
	Stats         *model.UserStats `json:"stats"`
	NewBalance    *int64           `json:"newBalance,omitempty"`
}

// Identity is the authenticated caller's profile, used to upsert the user
// row before any draw writes.
type Identity struct {
	DiscordID string
	Username  string
	AvatarURL string
}

// Draw performs one fortune card draw for the user on the given banner.
// Free draws are limited to one per UTC calendar day (owners bypass the
// gate); coin draws spend from the balance instead.
func (s *GachaService) Draw(ctx context.Context, id Identity, banner string, useCoin bool) (*DrawResult, error) {
	if banner != model.BannerStandard && banner != model.BannerLimited {
		return nil, ErrInvalidBanner
	}

	if !s.locks.TryLock(id.DiscordID) {
		return nil, ErrDrawInProgress
	}
	defer s.locks.Unlock(id.DiscordID)

	tiers, err := s.cards.ListRarityTiers(ctx)
	if err != nil {
		return nil, err
	}
	if len(tiers) == 0 {
		return nil, gacha.ErrNoTiers
	}

	rateUps, err := s.cards.ListRateUp(ctx, banner)
	if err != nil {
		return nil, err
	}

	today := gacha.Today(time.Now())
	result := &DrawResult{}

	err = repository.WithTx(ctx, s.pool.Pool, func(tx pgx.Tx) error {
		users := s.users.WithTx(tx)
		stats := s.stats.WithTx(tx)
		pity := s.pity.WithTx(tx)
		collection := s.collection.WithTx(tx)

		user, err := users.Upsert(ctx, id.DiscordID, id.Username, id.AvatarURL)
		if err != nil {
			return err
		}

		snapshot, err := stats.GetOrDefault(ctx, id.DiscordID)
		if err != nil {
			return err
		}

		if useCoin {
			user, err = users.SpendCoins(ctx, id.DiscordID, s.cfg.Gacha.CoinDrawCost)
			if err != nil {
				return err
			}
			balance := user.Coins
			result.NewBalance = &balance
		} else if snapshot.LastFreeDrawDate == today && !s.cfg.IsOwner(id.DiscordID) {
			return ErrAlreadyDrawn
		}

		pityCount, err := pity.Get(ctx, id.DiscordID, banner)
		if err != nil {
			return err
		}

		decision, err := gacha.Decide(gacha.DrawParams{
			Tiers:          tiers,
			GuaranteedTier: s.cfg.Gacha.GuaranteedTier,
			Banner:         banner,
			Pity:           pityCount,
			PityThreshold:  s.cfg.Gacha.PityThreshold,
			HasRateUp:      len(rateUps) > 0,
			RateUpChance:   s.cfg.Gacha.RateUpChance,
		}, s.rng)
		if err != nil {
			return err
		}

		pool, err := s.drawPool(ctx, decision, rateUps)
		if err != nil {
			return err
		}

		card, err := gacha.PickCard(pool, s.rng)
		if err != nil {
			return err
		}

		_, isNew, err := collection.Upsert(ctx, id.DiscordID, card.ID, !useCoin)
		if err != nil {
			return err
		}

		if err := pity.Set(ctx, id.DiscordID, banner, decision.NewPity); err != nil {
			return err
		}

		streak := gacha.CalculateStreak(snapshot.LastDrawDate, today, snapshot.DailyStreak)
		updated, err := stats.RecordDraw(ctx, id.DiscordID, isNew, !useCoin, streak, today)
		if err != nil {
			return err
		}

		result.Card = card
		result.IsNew = isNew
		result.Rarity = decision.Tier
		result.PityTriggered = decision.PityTriggered
		result.RateUpApplied = decision.RateUpApplied
		result.Stats = updated
		return nil
	})
	if err != nil {
		return nil, err
	}

	if useCoin {
		s.ledger.Emit(id.DiscordID, -s.cfg.Gacha.CoinDrawCost, model.TxTypeCoinDraw,
			fmt.Sprintf("Coin draw on %s banner", banner))
	}

	log.Info().
		Str("user_id", id.DiscordID).
		Str("banner", banner).
		Str("rarity", result.Rarity.Name).
		Int64("card_id", result.Card.ID).
		Bool("use_coin", useCoin).
		Bool("pity", result.PityTriggered).
		Msg("Fortune card drawn")

	return result, nil
}

// drawPool resolves the candidate cards for a decided draw. A rate-up hit
// restricts the pool to the banner's rate-up cards of the rolled rarity,
// falling back to the full rarity pool if the rate-up data is incomplete.
func (s *GachaService) drawPool(ctx context.Context, decision gacha.Decision, rateUps []model.Card) ([]model.Card, error) {
	if decision.RateUpApplied {
		var pool []model.Card
		for _, c := range rateUps {
			if c.Rarity == decision.Tier.Name {
				pool = append(pool, c)
			}
		}
		if len(pool) > 0 {
			return pool, nil
		}
	}
	return s.cards.ListActiveByRarity(ctx, decision.Tier.Name)
}

// GameState is the draw gating snapshot for the stats endpoint.
type GameState struct {
	CanDrawToday      bool   `json:"canDrawToday"`
	StreakExpired     bool   `json:"streakExpired"`
	NextDrawAvailable string `json:"nextDrawAvailable"`
	IsOwner           bool   `json:"isOwner"`
}

// StatsWithState bundles a user's stats with the derived game state.
type StatsWithState struct {
	Stats     *model.UserStats `json:"stats"`
	Coins     int64            `json:"coins"`
	GameState GameState        `json:"gameState"`
}

// GetStats returns the user's stats plus balance and the derived gating
// state. A user who has never drawn gets a zero snapshot, not an error.
func (s *GachaService) GetStats(ctx context.Context, userID string) (*StatsWithState, error) {
	snapshot, err := s.stats.GetOrDefault(ctx, userID)
	if err != nil {
		return nil, err
	}

	var coins int64
	switch user, err := s.users.GetByID(ctx, userID); {
	case err == nil:
		coins = user.Coins
	case !errors.Is(err, repository.ErrUserNotFound):
		return nil, err
	}

	now := time.Now().UTC()
	today := gacha.Today(now)
	isOwner := s.cfg.IsOwner(userID)
	nextMidnight := now.Truncate(24 * time.Hour).Add(24 * time.Hour)

	return &StatsWithState{
		Stats: snapshot,
		Coins: coins,
		GameState: GameState{
			CanDrawToday:      isOwner || snapshot.LastFreeDrawDate != today,
			StreakExpired:     gacha.StreakExpired(snapshot.LastDrawDate, today),
			NextDrawAvailable: nextMidnight.Format(time.RFC3339),
			IsOwner:           isOwner,
		},
	}, nil
}

// Collection returns one page of the user's card collection.
func (s *GachaService) Collection(ctx context.Context, userID string, page, pageSize int) ([]repository.CollectionEntry, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 24
	}
	return s.collection.ListByUser(ctx, userID, pageSize, (page-1)*pageSize)
}

// DismantleResult is the applied dismantle plan plus the credited balance.
type DismantleResult struct {
	CoinsEarned int64                    `json:"coinsEarned"`
	Updates     []gacha.DismantleOutcome `json:"updates"`
	NewBalance  int64                    `json:"newBalance"`
}

// Dismantle converts spare copies of the selected cards into coins. The
// whole selection is validated first and applied in one transaction; if any
// card cannot form a full set, nothing is dismantled.
func (s *GachaService) Dismantle(ctx context.Context, userID string, cardIDs []int64) (*DismantleResult, error) {
	if len(cardIDs) == 0 {
		return nil, gacha.ErrNothingSelected
	}

	s.locks.Lock(userID)
	defer s.locks.Unlock(userID)

	result := &DismantleResult{}

	err := repository.WithTx(ctx, s.pool.Pool, func(tx pgx.Tx) error {
		collection := s.collection.WithTx(tx)
		users := s.users.WithTx(tx)

		items := make([]gacha.DismantleItem, 0, len(cardIDs))
		for _, cardID := range cardIDs {
			entry, err := collection.Get(ctx, userID, cardID)
			if err != nil {
				return err
			}
			card, err := s.cards.GetByID(ctx, cardID)
			if err != nil {
				return err
			}
			items = append(items, gacha.DismantleItem{
				CardID:   cardID,
				Rarity:   card.Rarity,
				Quantity: entry.Quantity,
			})
		}

		plan, err := gacha.PlanDismantle(items)
		if err != nil {
			return err
		}

		for _, outcome := range plan.Outcomes {
			if _, err := collection.RemoveCopies(ctx, userID, outcome.CardID, outcome.CopiesUsed); err != nil {
				return err
			}
		}

		user, err := users.AdjustCoins(ctx, userID, plan.TotalCoins)
		if err != nil {
			return err
		}

		result.CoinsEarned = plan.TotalCoins
		result.Updates = plan.Outcomes
		result.NewBalance = user.Coins
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.ledger.Emit(userID, result.CoinsEarned, model.TxTypeDismantle,
		fmt.Sprintf("Dismantled %d cards", len(cardIDs)))

	return result, nil
}

