package utils

import (
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestHashPassword(t *testing.T) {
	salt, hash := HashPassword("secret-pass")
	assert.Len(t, salt, 5)
	assert.True(t, CheckPasswordHash("secret-pass", salt, hash))
	assert.False(t, CheckPasswordHash("secret-pasS", salt, hash))
	assert.False(t, CheckPasswordHash("secret-pass", salt+"x", hash))
}

func TestValidateUserStr(t *testing.T) {
	tests := []struct {
		name string
		val  string
		want bool
	}{
		{"ok", "admin", true},
		{"too short", "adm", false},
		{"too long", "administrator-account", false},
		{"space", "ad min", false},
		{"cyrillic", "админ", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidateUserStr(tt.val, 4, 20))
		})
	}
}

func TestGenerateTransactionID(t *testing.T) {
	now := time.UnixMilli(1700000000123)
	id := GenerateTransactionID(now)
	assert.Regexp(t, regexp.MustCompile(`^FREE-1700000000123\d{1,4}$`), id)
}

func TestGenerateInvoiceID(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 20; i++ {
		id := GenerateInvoiceID()
		assert.Regexp(t, regexp.MustCompile(`^BC[A-Za-z0-9]{8}$`), id)
		seen[id] = true
	}
	assert.Greater(t, len(seen), 1)
}
