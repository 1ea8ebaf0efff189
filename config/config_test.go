package config

import (
	"testing"
	"time"

	"restaurant-pos-api/models"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestFromViperDefaults(t *testing.T) {
	v := viper.New()
	defaults(v)

	cfg, err := FromViper(v)
	require.NoError(t, err)
	assert.Equal(t, "5000", cfg.Port)
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, 720*time.Hour, cfg.JWTExpire)
	assert.Equal(t, time.Local, cfg.Location)
	assert.Empty(t, cfg.KafkaBrokers)
	assert.Equal(t, 20, cfg.LoginRatePerMin)
}

func TestFromViperOverrides(t *testing.T) {
	v := viper.New()
	defaults(v)
	v.Set("TIMEZONE", "UTC")
	v.Set("KAFKA_BROKERS", "k1:9092, k2:9092,,")
	v.Set("DB_DRIVER", "Postgres")
	v.Set("JWT_EXPIRE", "2h")

	cfg, err := FromViper(v)
	require.NoError(t, err)
	assert.Equal(t, time.UTC, cfg.Location)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "postgres", cfg.DBDriver)
	assert.Equal(t, 2*time.Hour, cfg.JWTExpire)

	v.Set("TIMEZONE", "Mars/Olympus")
	_, err = FromViper(v)
	assert.Error(t, err)
}

func TestOpenDatabaseRejectsUnknownDriver(t *testing.T) {
	_, err := OpenDatabase("oracle", "x")
	assert.Error(t, err)
}

func TestSeedAdminOnce(t *testing.T) {
	db, err := OpenDatabase("sqlite", ":memory:")
	require.NoError(t, err)
	cfg := Config{AdminName: "Root", AdminEmail: "Root@Example.com", AdminPassword: "changeme"}

	require.NoError(t, SeedAdmin(db, cfg, zap.NewNop()))
	require.NoError(t, SeedAdmin(db, cfg, zap.NewNop()))

	var admins []models.User
	require.NoError(t, db.Where("role = ?", models.RoleAdmin).Find(&admins).Error)
	require.Len(t, admins, 1)
	assert.True(t, admins[0].IsActive)
	assert.Equal(t, "root@example.com", admins[0].Email)

	require.NoError(t, SeedAdmin(db, Config{}, zap.NewNop()))
}
