//go:build unit || e2e

package dbtest

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"parking-lot-manager/internal/pkg/password"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// DefaultPassword is the plain password of every fixture user.
const DefaultPassword = "password123"

var (
	hashOnce    sync.Once
	defaultHash string
)

func passwordHash(t *testing.T) string {
	t.Helper()
	hashOnce.Do(func() {
		h, err := password.HashPasswordWithCost(DefaultPassword, bcrypt.MinCost)
		if err == nil {
			defaultHash = h
		}
	})
	require.NotEmpty(t, defaultHash, "fixture password hash")
	return defaultHash
}

// CreateTestUser inserts a user (with default preferences unless admin) and
// returns its id. An existing user of the same name is reused.
func CreateTestUser(t *testing.T, db DBLike, name string, isAdmin bool) int64 {
	t.Helper()
	ctx := context.Background()

	var id int64
	err := db.QueryRow(ctx, `
		INSERT INTO users (name, email, phone, password_hash, is_admin, created_at, updated_at)
		VALUES ($1, $2, '', $3, $4, now(), now())
		ON CONFLICT (name) DO UPDATE SET updated_at = EXCLUDED.updated_at
		RETURNING id`,
		name, name+"@example.com", passwordHash(t), isAdmin).Scan(&id)
	require.NoError(t, err)

	if !isAdmin {
		_, err = db.Exec(ctx, `
			INSERT INTO user_preferences (user_id, reminder_enabled, reminder_time, channel, updated_at)
			VALUES ($1, true, '09:00', 'email', now())
			ON CONFLICT (user_id) DO NOTHING`, id)
		require.NoError(t, err)
	}
	return id
}

// CreateTestLot inserts a lot with capacity available spots.
func CreateTestLot(t *testing.T, db DBLike, name, price string, capacity int) int64 {
	t.Helper()
	ctx := context.Background()

	var id int64
	err := db.QueryRow(ctx, `
		INSERT INTO lots (name, price, address, pin, capacity, created_at, updated_at)
		VALUES ($1, $2::numeric, '', '', $3, now(), now())
		RETURNING id`, name, price, capacity).Scan(&id)
	require.NoError(t, err)

	_, err = db.Exec(ctx, `
		INSERT INTO spots (lot_id, ordinal, status, updated_at)
		SELECT $1, g, 'available', now() FROM generate_series(1, $2::int) AS g`, id, capacity)
	require.NoError(t, err)
	return id
}

var (
	buildTruncateOnce sync.Once
	truncateSQL       atomic.Value // string
)

// ResetDB truncates every application table and restarts identities.
func ResetDB(pool *pgxpool.Pool) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	buildTruncateOnce.Do(func() {
		truncateSQL.Store(buildTruncateSQL(ctx, pool))
	})
	stmt, _ := truncateSQL.Load().(string)
	if stmt == "" {
		return fmt.Errorf("failed to build TRUNCATE SQL")
	}
	_, err := pool.Exec(ctx, stmt)
	return err
}

func buildTruncateSQL(ctx context.Context, pool *pgxpool.Pool) string {
	rows, err := pool.Query(ctx, `
	  SELECT 'public.' || quote_ident(tablename)
	  FROM pg_tables
	  WHERE schemaname = 'public'
	    AND tablename NOT IN ('atlas_schema_revisions')`)
	if err != nil {
		return ""
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return ""
		}
		tables = append(tables, t)
	}
	if rows.Err() != nil {
		return ""
	}
	if len(tables) == 0 {
		return "SELECT 1"
	}
	return "TRUNCATE " + strings.Join(tables, ", ") + " RESTART IDENTITY CASCADE;"
}
