//go:build integration
// +build integration

package repository

import (
	"context"
	"database/sql"
	"os"
	"strconv"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fact-registration/internal/config"
	"fact-registration/internal/database"
	"fact-registration/internal/domain"
)

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if i, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return i
	}
	return def
}

func getTestDB(t *testing.T) *sql.DB {
	cfg := &config.DatabaseConfig{
		Host:     getEnv("TEST_DB_HOST", "localhost"),
		Port:     getEnvInt("TEST_DB_PORT", 5432),
		User:     getEnv("TEST_DB_USER", "postgres"),
		Password: getEnv("TEST_DB_PASSWORD", "postgres"),
		Database: getEnv("TEST_DB_NAME", "fact"),
		SSLMode:  getEnv("TEST_DB_SSLMODE", "disable"),
	}
	db, err := database.NewPostgresDB(cfg)
	if err != nil {
		t.Skipf("Skipping integration test: cannot connect to database: %v", err)
		return nil
	}
	return db
}

func TestPostgresWorkshops_ReplaceLocationsRoundTrip(t *testing.T) {
	db := getTestDB(t)
	if db == nil {
		return
	}
	defer db.Close()

	ctx := context.Background()
	locations := NewPostgresLocationsRepository(db)
	workshops := NewPostgresWorkshopsRepository(db)
	suffix := uuid.NewString()[:8]

	locID, err := locations.CreateLocation(ctx, &domain.Location{
		Building: "IT " + suffix, RoomNum: "101", Capacity: 25, Session: 1,
	})
	require.NoError(t, err)
	defer db.Exec(`DELETE FROM locations WHERE location_id = $1`, locID)

	wID, err := workshops.CreateWorkshop(ctx, &domain.Workshop{Title: "IT workshop " + suffix, Session: 1})
	require.NoError(t, err)
	defer db.Exec(`DELETE FROM workshops WHERE workshop_id = $1`, wID)

	require.NoError(t, workshops.ReplaceLocations(ctx, []LocationAssignment{{WorkshopID: wID, LocationID: locID}}))

	d, err := workshops.GetWorkshopDemand(ctx, wID)
	require.NoError(t, err)
	assert.Equal(t, locID, d.LocationID.String)
	assert.Equal(t, 0, d.RegistrationCount)

	_, err = locations.CreateLocation(ctx, &domain.Location{
		Building: "IT " + suffix, RoomNum: "101", Capacity: 30, Session: 1,
	})
	assert.ErrorIs(t, err, ErrConflict)
}
