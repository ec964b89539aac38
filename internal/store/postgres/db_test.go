package postgres

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestPurpose: Validates translation of database settings into the pgx pool
// configuration, including the connection lifetime cap.
// Scope: Unit Test
// Expected: Pool sizes and MaxConnLifetime carry over; zero values leave the
// pgx defaults in place.
// Test Case ID: PGS-01
func TestPostgres_PoolConfig(t *testing.T) {
	pc, err := poolConfig(Config{
		Host:            "localhost",
		Port:            "5432",
		User:            "formtrust",
		Password:        "test-password",
		Database:        "formtrust",
		SSLMode:         "disable",
		MaxOpenConns:    25,
		MaxIdleConns:    5,
		ConnMaxLifetime: 5 * time.Minute,
	})
	require.NoError(t, err)

	assert.Equal(t, int32(25), pc.MaxConns)
	assert.Equal(t, int32(5), pc.MinConns)
	assert.Equal(t, 5*time.Minute, pc.MaxConnLifetime)
	assert.Equal(t, "localhost", pc.ConnConfig.Host)
	assert.Equal(t, "formtrust", pc.ConnConfig.Database)
}

// TestPurpose: Validates that unset tuning knobs do not override pgx pool
// defaults with zeroes.
// Scope: Unit Test
// Expected: Defaults survive when sizes and lifetime are zero.
// Test Case ID: PGS-02
func TestPostgres_PoolConfigDefaults(t *testing.T) {
	pc, err := poolConfig(Config{
		Host:     "localhost",
		Port:     "5432",
		User:     "formtrust",
		Password: "test-password",
		Database: "formtrust",
		SSLMode:  "disable",
	})
	require.NoError(t, err)

	assert.Positive(t, pc.MaxConns)
	assert.Positive(t, pc.MaxConnLifetime)
}
