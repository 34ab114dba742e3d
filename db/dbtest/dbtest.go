// Package dbtest opens migrated in-memory sqlite databases for tests.
package dbtest

import (
	"fmt"
	"strings"
	"testing"

	"github.com/dwnGnL/adminConsole/db"
	"github.com/dwnGnL/adminConsole/models"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// New returns a fresh database named after the test. It is dropped when the
// test ends.
func New(t testing.TB) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_", "#", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)

	conn, err := db.Open("sqlite", dsn, 1, false)
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(conn))

	t.Cleanup(func() {
		if sqlDB, err := conn.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return conn
}

// SeedUser inserts a user with the given counters in grant order:
// contactLimit, emailLimit, smsCredits, whatsappCredits.
func SeedUser(t testing.TB, conn *gorm.DB, email string, counters ...int64) *models.User {
	t.Helper()

	c := make([]int64, 4)
	copy(c, counters)
	user := &models.User{
		FirstName:       "Test",
		LastName:        "User",
		Email:           email,
		ContactLimit:    c[0],
		EmailLimit:      c[1],
		SMSCredits:      c[2],
		WhatsappCredits: c[3],
	}
	require.NoError(t, conn.Create(user).Error)
	return user
}

func ReloadUser(t testing.TB, conn *gorm.DB, id int64) *models.User {
	t.Helper()

	var user models.User
	require.NoError(t, conn.First(&user, id).Error)
	return &user
}
