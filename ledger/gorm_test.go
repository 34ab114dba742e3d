package ledger

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// sqlRecorder keeps every statement gorm builds.
type sqlRecorder struct {
	logger.Interface
	statements []string
}

func (r *sqlRecorder) LogMode(logger.LogLevel) logger.Interface { return r }

func (r *sqlRecorder) Trace(_ context.Context, _ time.Time, fc func() (string, int64), _ error) {
	sql, _ := fc()
	r.statements = append(r.statements, sql)
}

func (r *sqlRecorder) last(t *testing.T) string {
	t.Helper()
	require.NotEmpty(t, r.statements)
	return r.statements[len(r.statements)-1]
}

func dryRunPostgres(t *testing.T) (*gorm.DB, *sqlRecorder) {
	t.Helper()
	rec := &sqlRecorder{Interface: logger.Discard}
	conn, err := gorm.Open(postgres.Open("host=localhost user=ledger dbname=ledger sslmode=disable"), &gorm.Config{
		DryRun:               true,
		DisableAutomaticPing: true,
		Logger:               rec,
	})
	require.NoError(t, err)
	return conn, rec
}

func TestForUpdate_Postgres(t *testing.T) {
	ctx := context.Background()
	conn, rec := dryRunPostgres(t)
	payments := &gormPayments{tx: conn}
	users := &gormUsers{tx: conn}

	tests := []struct {
		name   string
		run    func() error
		locked bool
	}{
		{"payment locked", func() error { _, err := payments.Get(ctx, 1, true); return err }, true},
		{"payment plain", func() error { _, err := payments.Get(ctx, 1, false); return err }, false},
		{"user locked", func() error { _, err := users.Counters(ctx, 1, true); return err }, true},
		{"user plain", func() error { _, err := users.Counters(ctx, 1, false); return err }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, tt.run())
			sql := rec.last(t)
			assert.True(t, strings.HasPrefix(sql, "SELECT"), sql)
			assert.Equal(t, tt.locked, strings.Contains(sql, "FOR UPDATE"), sql)
		})
	}
}

func TestAdjust_ColumnArithmetic(t *testing.T) {
	conn, rec := dryRunPostgres(t)
	users := &gormUsers{tx: conn}

	// a dry run reports no affected rows
	err := users.Adjust(context.Background(), 7, Credits{SMS: 5})
	assert.ErrorIs(t, err, ErrNotFound)

	sql := rec.last(t)
	assert.Contains(t, sql, `"sms_credits"=sms_credits + 5`)
	assert.Contains(t, sql, `WHERE id = 7`)
}
