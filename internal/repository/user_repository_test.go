package repository

import (
	"errors"
	"fmt"
	"testing"

	"pingup/backend/internal/models"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func TestIsDuplicateKey(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"gorm translated", gorm.ErrDuplicatedKey, true},
		{"wrapped gorm", fmt.Errorf("create: %w", gorm.ErrDuplicatedKey), true},
		{"postgres unique violation", &pgconn.PgError{Code: "23505", ConstraintName: "users_pkey"}, true},
		{"postgres other error", &pgconn.PgError{Code: "23503"}, false},
		{"unrelated", errors.New("connection refused"), false},
		{"nil", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsDuplicateKey(tt.err))
		})
	}
}

func dryRunDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN: "host=localhost user=pingup dbname=pingup sslmode=disable",
	}), &gorm.Config{DryRun: true, DisableAutomaticPing: true})
	require.NoError(t, err)
	return db
}

func TestInsertIfAbsentIgnoresConflictOnID(t *testing.T) {
	user := models.NewUserFromProfile("user_1", models.Profile{Email: "ada@example.com"})

	tx := insertIfAbsent(dryRunDB(t), user)

	require.NoError(t, tx.Error)
	sql := tx.Statement.SQL.String()
	assert.Contains(t, sql, `INSERT INTO "users"`)
	assert.Contains(t, sql, `ON CONFLICT ("id") DO NOTHING`)
	assert.Equal(t, "user_1", tx.Statement.Vars[0])
}
