package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	// No config file in a temp dir: defaults plus env only.
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 20, cfg.Gacha.PityThreshold)
	assert.Equal(t, 0.75, cfg.Gacha.RateUpChance)
	assert.Equal(t, "ultra_rare", cfg.Gacha.GuaranteedTier)
	assert.Equal(t, 30, cfg.Tournament.MaxMatches)
	assert.Equal(t, 3, cfg.Tournament.MinComparisons)
	assert.Equal(t, 1, cfg.Tournament.InferenceDepth)
}

func TestRoleChecks(t *testing.T) {
	cfg := &Config{
		Roles: RolesConfig{
			AdminIDs: []string{"admin-1"},
			OwnerIDs: []string{"owner-1"},
		},
	}

	assert.True(t, cfg.IsAdmin("admin-1"))
	assert.False(t, cfg.IsOwner("admin-1"))

	// Owners hold admin capability implicitly.
	assert.True(t, cfg.IsOwner("owner-1"))
	assert.True(t, cfg.IsAdmin("owner-1"))

	assert.False(t, cfg.IsAdmin("stranger"))
	assert.False(t, cfg.IsOwner("stranger"))
}

func TestDSN(t *testing.T) {
	d := DatabaseConfig{
		Host:     "db.internal",
		Port:     5433,
		User:     "airona",
		Password: "pw",
		Name:     "cult",
	}
	assert.Equal(t, "postgres://airona:pw@db.internal:5433/cult?sslmode=disable", d.DSN())
}
