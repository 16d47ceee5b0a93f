// Package model defines the data models for the Airona Cult community site.
package model

import "time"

// User represents a Discord-authenticated account.
type User struct {
	DiscordID string    `db:"discord_id" json:"discordId"`
	Username  string    `db:"username" json:"username"`
	AvatarURL string    `db:"avatar_url" json:"avatarUrl"`
	Role      string    `db:"role" json:"role"`
	Coins     int64     `db:"coins" json:"coins"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// User roles. Admin status is additionally backed by the config role lists,
// so a stale database row can never grant privileges on its own.
const (
	RoleMember = "member"
	RoleAdmin  = "admin"
)

// RarityTier partitions the roll range [1,1000] into disjoint bands.
// Bands are seeded by migration and edited by admins; the draw engine
// validates coverage before trusting them.
type RarityTier struct {
	Name    string `db:"name" json:"name"`
	MinRoll int    `db:"min_roll" json:"minRoll"`
	MaxRoll int    `db:"max_roll" json:"maxRoll"`
	Color   string `db:"color" json:"color"`
}

// Width returns the number of rolls the band covers.
func (t RarityTier) Width() int {
	return t.MaxRoll - t.MinRoll + 1
}

// Contains reports whether a roll falls inside the band.
func (t RarityTier) Contains(roll int) bool {
	return roll >= t.MinRoll && roll <= t.MaxRoll
}

// Rarity names used by the fortune card pool.
const (
	RarityElite     = "elite"
	RaritySuperRare = "super_rare"
	RarityUltraRare = "ultra_rare"
)

// Banner types for the fortune card draw.
const (
	BannerStandard = "standard"
	BannerLimited  = "limited"
)

// Card is immutable reference data for a fortune card.
type Card struct {
	ID       int64  `db:"id" json:"id"`
	Name     string `db:"name" json:"name"`
	Rarity   string `db:"rarity" json:"rarity"`
	ImageURL string `db:"image_url" json:"imageUrl"`
	IsActive bool   `db:"is_active" json:"isActive"`
	IsRateUp bool   `db:"is_rate_up" json:"isRateUp"`
	Banner   string `db:"banner" json:"banner"`
}

// UserCard tracks how many copies of a card a user owns.
type UserCard struct {
	UserID      string    `db:"user_id" json:"userId"`
	CardID      int64     `db:"card_id" json:"cardId"`
	Quantity    int       `db:"quantity" json:"quantity"`
	ObtainedAt  time.Time `db:"obtained_at" json:"obtainedAt"`
	IsDailyDraw bool      `db:"is_daily_draw" json:"isDailyDraw"`
}

// UserStats aggregates a user's draw activity.
// LastDrawDate is a UTC calendar date string ("2006-01-02"); the daily gate
// and streak rules are defined on UTC days, not rolling 24h windows.
type UserStats struct {
	UserID           string    `db:"user_id" json:"userId"`
	TotalDraws       int       `db:"total_draws" json:"totalDraws"`
	CardsCollected   int       `db:"cards_collected" json:"cardsCollected"`
	DailyStreak      int       `db:"daily_streak" json:"dailyStreak"`
	LongestStreak    int       `db:"longest_streak" json:"longestStreak"`
	LastDrawDate     string    `db:"last_draw_date" json:"lastDrawDate"`
	LastFreeDrawDate string    `db:"last_free_draw_date" json:"lastFreeDrawDate"`
	UpdatedAt        time.Time `db:"updated_at" json:"updatedAt"`
}

// PityCounter is the per-user, per-banner draw counter.
// Invariant: 0 <= Count < the configured guarantee threshold.
type PityCounter struct {
	UserID string `db:"user_id" json:"userId"`
	Banner string `db:"banner" json:"banner"`
	Count  int    `db:"count" json:"count"`
}

// CoinTransaction is an append-only ledger entry. Writes are best-effort:
// a failed append never rolls back the balance change it describes.
type CoinTransaction struct {
	ID        int64     `db:"id" json:"id"`
	UserID    string    `db:"user_id" json:"userId"`
	Amount    int64     `db:"amount" json:"amount"`
	Type      string    `db:"type" json:"type"`
	Reason    string    `db:"reason" json:"reason"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// Coin transaction types for categorizing balance changes.
const (
	TxTypeCoinDraw    = "coin_draw"    // Coin-funded fortune draw
	TxTypeDismantle   = "dismantle"    // Dismantle payout
	TxTypeAdminGrant  = "admin_grant"  // Admin added coins
	TxTypeAdminDeduct = "admin_deduct" // Admin removed coins
)

// Member is a guild roster entry, created through the application flow.
type Member struct {
	DiscordID   string    `db:"discord_id" json:"discordId"`
	DisplayName string    `db:"display_name" json:"displayName"`
	Role        string    `db:"role" json:"role"`
	Message     string    `db:"message" json:"message"`
	IsApproved  bool      `db:"is_approved" json:"isApproved"`
	IsActive    bool      `db:"is_active" json:"isActive"`
	JoinedAt    time.Time `db:"joined_at" json:"joinedAt"`
}

// GalleryImage is a community gallery entry.
type GalleryImage struct {
	ID         string    `db:"id" json:"id"`
	Title      string    `db:"title" json:"title"`
	ImageURL   string    `db:"image_url" json:"imageUrl"`
	UploaderID string    `db:"uploader_id" json:"uploaderId"`
	CreatedAt  time.Time `db:"created_at" json:"createdAt"`
}

// TournamentSubmission is a Halloween contest entry. Placement counts are
// incremented by the results endpoint, not derived from votes.
type TournamentSubmission struct {
	ID          int64  `db:"id" json:"id"`
	AuthorName  string `db:"author_name" json:"authorName"`
	ImageURL    string `db:"image_url" json:"imageUrl"`
	IsActive    bool   `db:"is_active" json:"isActive"`
	FirstPlace  int    `db:"first_place" json:"firstPlace"`
	SecondPlace int    `db:"second_place" json:"secondPlace"`
	ThirdPlace  int    `db:"third_place" json:"thirdPlace"`
}

// VoteRecord is one pairwise choice by one voter. Records are immutable;
// admins may only bulk-delete a voter's records and let them revote.
type VoteRecord struct {
	ID        int64     `db:"id" json:"id"`
	VoterName string    `db:"voter_name" json:"voterName"`
	WinnerID  int64     `db:"winner_id" json:"winnerId"`
	LoserID   int64     `db:"loser_id" json:"loserId"`
	MatchID   string    `db:"match_id" json:"matchId"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}
