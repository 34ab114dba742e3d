package utils

import (
	"crypto/rand"
	"crypto/sha512"
	"encoding/base64"
	"fmt"
	"math/big"
	"time"
	"unicode"

	"github.com/dwnGnL/adminConsole/pkg/pretty"
)

const invoiceAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

func HashPassword(password string) (string, string) {
	salt := generateSalt()
	return salt, hashWithSalt(password, salt)
}

func CheckPasswordHash(password, salt, hash string) bool {
	return hashWithSalt(password, salt) == hash
}

func hashWithSalt(password, salt string) string {
	var array []byte

	sha512h := sha512.New()

	array = append(array, []byte(password)...)
	array = append(array, []byte(salt)...)

	sha512h.Write(array)

	return base64.RawStdEncoding.EncodeToString(sha512h.Sum(nil))
}

func generateSalt() string {
	const SaltLength = 5
	data := make([]byte, SaltLength)
	if _, err := rand.Read(data); err != nil {
		pretty.LoglnFatal("generateSalt:", err)
	}

	return base64.RawStdEncoding.EncodeToString(data[:])[:5]
}

// ValidateUserStr checks the rune length of str and that it holds only
// printable ASCII without spaces.
func ValidateUserStr(str string, mn, mx int) bool {
	var r = []rune(str)

	if len(r) < mn || len(r) > mx {
		return false
	}

	for _, val := range r {
		if val > unicode.MaxASCII || !unicode.IsPrint(val) || unicode.IsSpace(val) {
			return false
		}
	}

	return true
}

// GenerateTransactionID returns FREE-<unix millis><0..9998>, the id used for
// payments entered by hand in the console.
func GenerateTransactionID(now time.Time) string {
	return fmt.Sprintf("FREE-%d%d", now.UnixMilli(), randInt(9999))
}

// GenerateInvoiceID returns "BC" followed by 8 alphanumerics.
func GenerateInvoiceID() string {
	id := []byte("BC")
	for i := 0; i < 8; i++ {
		id = append(id, invoiceAlphabet[randInt(len(invoiceAlphabet))])
	}
	return string(id)
}

func randInt(max int) int64 {
	n, err := rand.Int(rand.Reader, big.NewInt(int64(max)))
	if err != nil {
		return 0
	}
	return n.Int64()
}
