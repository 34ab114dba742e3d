package routes

import (
	"net/http"

	"github.com/dwnGnL/adminConsole/ledger"
	"github.com/dwnGnL/adminConsole/pkg/e"
)

func init() {
	e.Register(ledgerError)
}

// ledgerError maps the ledger's failures onto responses. Persistence
// failures are left to e and answered as internal errors.
func ledgerError(err error) (int, string, string, bool) {
	switch {
	case ledger.IsValidation(err):
		return http.StatusBadRequest, "VALIDATION", e.Clean(err, ledger.ErrValidation), true
	case ledger.IsNotFound(err):
		return http.StatusNotFound, "NOT_FOUND", "Not found", true
	}
	return 0, "", "", false
}
