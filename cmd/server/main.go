// Package main is the entry point for the Airona Cult API server.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/hibikineko/airona-cult/internal/auth"
	"github.com/hibikineko/airona-cult/internal/config"
	"github.com/hibikineko/airona-cult/internal/gacha"
	"github.com/hibikineko/airona-cult/internal/handler"
	"github.com/hibikineko/airona-cult/internal/jobs"
	"github.com/hibikineko/airona-cult/internal/pkg/db"
	"github.com/hibikineko/airona-cult/internal/pkg/lock"
	"github.com/hibikineko/airona-cult/internal/repository"
	"github.com/hibikineko/airona-cult/internal/server"
	"github.com/hibikineko/airona-cult/internal/service"
)

func main() {
	// Configure zerolog
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	// Load configuration
	cfg, err := config.Load("config")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log.Info().Msg("Configuration loaded successfully")

	// Create context cancelled on shutdown signals
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize database connection pool
	dbPool, err := db.NewPool(ctx, &cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer dbPool.Close()

	// Run database migrations
	if err := runMigrations(ctx, dbPool); err != nil {
		log.Fatal().Err(err).Msg("Failed to run database migrations")
	}

	// Initialize Redis
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()

	// Initialize repositories
	userRepo := repository.NewUserRepository(dbPool.Pool)
	cardRepo := repository.NewCardRepository(dbPool.Pool)
	collectionRepo := repository.NewCollectionRepository(dbPool.Pool)
	statsRepo := repository.NewStatsRepository(dbPool.Pool)
	pityRepo := repository.NewPityRepository(dbPool.Pool)
	ledgerRepo := repository.NewLedgerRepository(dbPool.Pool)
	memberRepo := repository.NewMemberRepository(dbPool.Pool)
	galleryRepo := repository.NewGalleryRepository(dbPool.Pool)
	tournamentRepo := repository.NewTournamentRepository(dbPool.Pool)

	// Sanity-check the seeded rarity bands before taking traffic
	if tiers, err := cardRepo.ListRarityTiers(ctx); err != nil {
		log.Warn().Err(err).Msg("Could not load rarity tiers")
	} else if err := gacha.ValidateTiers(tiers); err != nil {
		log.Warn().Err(err).Msg("Rarity tiers do not tile the roll range")
	}

	// Initialize auth components
	discordClient := auth.NewDiscordClient(&cfg.Discord)
	sessions := auth.NewSessionManager(&cfg.Auth)
	states := auth.NewStateStore(rdb)

	// Initialize services
	userLock := lock.NewUserLock()
	ledgerEmitter := service.NewLedgerEmitter(ledgerRepo)

	gachaService := service.NewGachaService(
		dbPool,
		userRepo,
		cardRepo,
		collectionRepo,
		statsRepo,
		pityRepo,
		ledgerEmitter,
		cfg,
		gacha.NewRand(),
		userLock,
	)
	memberService := service.NewMemberService(memberRepo, discordClient)
	galleryService := service.NewGalleryService(galleryRepo)
	halloweenService := service.NewHalloweenService(tournamentRepo, &cfg.Tournament)
	adminService := service.NewAdminService(userRepo, ledgerEmitter, ledgerRepo, userLock)

	// Start scheduled jobs
	scheduler := jobs.NewScheduler(statsRepo)
	if err := scheduler.Start(); err != nil {
		log.Fatal().Err(err).Msg("Failed to start job scheduler")
	}
	defer scheduler.Stop()

	// Build the HTTP server with all handlers
	srv := server.New(cfg, rdb, sessions, dbPool,
		handler.NewAuthHandler(discordClient, sessions, states, cfg),
		handler.NewGachaHandler(gachaService, sessions),
		handler.NewMemberHandler(memberService, sessions, cfg),
		handler.NewGalleryHandler(galleryService, sessions, cfg),
		handler.NewHalloweenHandler(halloweenService, sessions, cfg),
		handler.NewAdminHandler(adminService, sessions, cfg),
	)

	if err := srv.Run(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server exited with error")
	}
	log.Info().Msg("Server stopped gracefully")
}

// runMigrations executes database migrations.
func runMigrations(ctx context.Context, pool *db.Pool) error {
	log.Info().Msg("Running database migrations...")

	// Migration 1: Create users table
	_, err := pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS users (
			discord_id VARCHAR(32) PRIMARY KEY,
			username VARCHAR(255) NOT NULL,
			avatar_url TEXT NOT NULL DEFAULT '',
			role VARCHAR(20) NOT NULL DEFAULT 'member',
			coins BIGINT NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
	`)
	if err != nil {
		return err
	}
	log.Info().Msg("Migration 1: users table created")

	// Migration 2: Create rarity_tiers table and seed the default bands
	_, err = pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS rarity_tiers (
			name VARCHAR(32) PRIMARY KEY,
			min_roll INT NOT NULL,
			max_roll INT NOT NULL,
			color VARCHAR(16) NOT NULL DEFAULT ''
		);
		INSERT INTO rarity_tiers (name, min_roll, max_roll, color) VALUES
			('elite', 1, 700, '#6aa84f'),
			('super_rare', 701, 950, '#674ea7'),
			('ultra_rare', 951, 1000, '#f1c232')
		ON CONFLICT (name) DO NOTHING;
	`)
	if err != nil {
		return err
	}
	log.Info().Msg("Migration 2: rarity_tiers table created and seeded")

	// Migration 3: Create cards table
	_, err = pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS cards (
			id BIGSERIAL PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			rarity VARCHAR(32) NOT NULL REFERENCES rarity_tiers(name),
			image_url TEXT NOT NULL DEFAULT '',
			is_active BOOLEAN NOT NULL DEFAULT TRUE,
			is_rate_up BOOLEAN NOT NULL DEFAULT FALSE,
			banner VARCHAR(32) NOT NULL DEFAULT 'standard'
		);
		CREATE INDEX IF NOT EXISTS idx_cards_rarity_active ON cards(rarity, is_active);
		CREATE INDEX IF NOT EXISTS idx_cards_rate_up ON cards(banner) WHERE is_rate_up;
	`)
	if err != nil {
		return err
	}
	log.Info().Msg("Migration 3: cards table created")

	// Migration 4: Create user_cards collection table
	_, err = pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS user_cards (
			user_id VARCHAR(32) NOT NULL REFERENCES users(discord_id) ON DELETE CASCADE,
			card_id BIGINT NOT NULL REFERENCES cards(id),
			quantity INT NOT NULL DEFAULT 1,
			obtained_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			is_daily_draw BOOLEAN NOT NULL DEFAULT TRUE,
			PRIMARY KEY (user_id, card_id)
		);
	`)
	if err != nil {
		return err
	}
	log.Info().Msg("Migration 4: user_cards table created")

	// Migration 5: Create user_stats table
	_, err = pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS user_stats (
			user_id VARCHAR(32) PRIMARY KEY REFERENCES users(discord_id) ON DELETE CASCADE,
			total_draws INT NOT NULL DEFAULT 0,
			cards_collected INT NOT NULL DEFAULT 0,
			daily_streak INT NOT NULL DEFAULT 0,
			longest_streak INT NOT NULL DEFAULT 0,
			last_draw_date VARCHAR(10),
			last_free_draw_date VARCHAR(10),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
	`)
	if err != nil {
		return err
	}
	log.Info().Msg("Migration 5: user_stats table created")

	// Migration 6: Create pity_counters table
	_, err = pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS pity_counters (
			user_id VARCHAR(32) NOT NULL REFERENCES users(discord_id) ON DELETE CASCADE,
			banner VARCHAR(32) NOT NULL,
			count INT NOT NULL DEFAULT 0,
			PRIMARY KEY (user_id, banner)
		);
	`)
	if err != nil {
		return err
	}
	log.Info().Msg("Migration 6: pity_counters table created")

	// Migration 7: Create coin_transactions ledger table
	_, err = pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS coin_transactions (
			id BIGSERIAL PRIMARY KEY,
			user_id VARCHAR(32) NOT NULL REFERENCES users(discord_id) ON DELETE CASCADE,
			amount BIGINT NOT NULL,
			type VARCHAR(50) NOT NULL,
			reason TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS idx_coin_tx_user_time ON coin_transactions(user_id, created_at DESC);
	`)
	if err != nil {
		return err
	}
	log.Info().Msg("Migration 7: coin_transactions table created")

	// Migration 8: Create members table
	_, err = pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS members (
			discord_id VARCHAR(32) PRIMARY KEY,
			display_name VARCHAR(255) NOT NULL,
			role VARCHAR(20) NOT NULL DEFAULT 'member',
			message TEXT NOT NULL DEFAULT '',
			is_approved BOOLEAN NOT NULL DEFAULT FALSE,
			is_active BOOLEAN NOT NULL DEFAULT TRUE,
			joined_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
	`)
	if err != nil {
		return err
	}
	log.Info().Msg("Migration 8: members table created")

	// Migration 9: Create gallery_images table
	_, err = pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS gallery_images (
			id UUID PRIMARY KEY,
			title VARCHAR(255) NOT NULL,
			image_url TEXT NOT NULL,
			uploader_id VARCHAR(32) NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS idx_gallery_created ON gallery_images(created_at DESC);
	`)
	if err != nil {
		return err
	}
	log.Info().Msg("Migration 9: gallery_images table created")

	// Migration 10: Create tournament tables
	_, err = pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS tournament_submissions (
			id BIGSERIAL PRIMARY KEY,
			author_name VARCHAR(255) NOT NULL,
			image_url TEXT NOT NULL DEFAULT '',
			is_active BOOLEAN NOT NULL DEFAULT TRUE,
			first_place INT NOT NULL DEFAULT 0,
			second_place INT NOT NULL DEFAULT 0,
			third_place INT NOT NULL DEFAULT 0
		);
		CREATE TABLE IF NOT EXISTS vote_records (
			id BIGSERIAL PRIMARY KEY,
			voter_name VARCHAR(255) NOT NULL,
			winner_id BIGINT NOT NULL REFERENCES tournament_submissions(id),
			loser_id BIGINT NOT NULL REFERENCES tournament_submissions(id),
			match_id VARCHAR(64) NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS idx_vote_records_voter ON vote_records(voter_name, created_at);
	`)
	if err != nil {
		return err
	}
	log.Info().Msg("Migration 10: tournament tables created")

	log.Info().Msg("All migrations completed successfully")
	return nil
}
