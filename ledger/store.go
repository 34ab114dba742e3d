package ledger

import (
	"context"

	"github.com/dwnGnL/adminConsole/models"
)

// PaymentStore persists payment rows. Get with lock set takes a row lock that
// is held until the surrounding transaction ends.
type PaymentStore interface {
	Get(ctx context.Context, id int64, lock bool) (*models.Payment, error)
	Insert(ctx context.Context, p *models.Payment) error
	Save(ctx context.Context, p *models.Payment) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context) ([]models.Payment, error)
	ListByUser(ctx context.Context, userID int64) ([]models.Payment, error)
	// Sums returns the summed grants per owner, for one owner when userID > 0.
	Sums(ctx context.Context, userID int64) (map[int64]Credits, error)
}

// UserStore reads and adjusts the credit counters of users.
type UserStore interface {
	Counters(ctx context.Context, userID int64, lock bool) (Credits, error)
	Adjust(ctx context.Context, userID int64, delta Credits) error
	// AllCounters returns counters per user, for one user when userID > 0.
	AllCounters(ctx context.Context, userID int64) (map[int64]Credits, error)
}

// Transactor runs fn as one unit of work. Returning an error from fn rolls
// back every write made through the stores it was handed.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(payments PaymentStore, users UserStore) error) error
}
