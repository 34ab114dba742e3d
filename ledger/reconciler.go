// Package ledger keeps the users' credit counters equal to the sum of the
// credits granted by their payments. Every payment mutation and the matching
// counter adjustment run inside one transaction.
package ledger

import (
	"context"
	"sort"
	"time"

	"github.com/dwnGnL/adminConsole/models"
	"github.com/dwnGnL/adminConsole/pkg/utils"
	log "github.com/sirupsen/logrus"
)

// StatusSuccess is stored when a payment is created without a status.
const StatusSuccess = "success"

type Deleted struct {
	Success   bool  `json:"success"`
	DeletedID int64 `json:"deletedId"`
}

// Drift compares one user's counters with what their payments add up to.
// Orphaned marks payments whose owner row no longer exists.
type Drift struct {
	UserID   int64   `json:"userId"`
	Counters Credits `json:"counters"`
	Expected Credits `json:"expected"`
	Diff     Credits `json:"diff"`
	Orphaned bool    `json:"orphaned,omitempty"`
}

func (d Drift) InSync() bool {
	return d.Diff.IsZero()
}

type Reconciler struct {
	store Transactor
	now   func() time.Time
}

func NewReconciler(store Transactor) *Reconciler {
	return &Reconciler{store: store, now: time.Now}
}

func entry(method string) *log.Entry {
	return log.WithFields(log.Fields{"layer": "ledger", "method": method})
}

// Create inserts p and adds its grants to the owner's counters.
func (r *Reconciler) Create(ctx context.Context, p *models.Payment) (*models.Payment, error) {
	if p.UserID <= 0 {
		return nil, validationf("userId is required")
	}
	if CreditsOf(p).hasNegative() {
		return nil, validationf("credits must not be negative")
	}
	r.fillDefaults(p)
	p.ID = 0

	err := r.store.WithinTx(ctx, func(payments PaymentStore, users UserStore) error {
		if _, err := users.Counters(ctx, p.UserID, true); err != nil {
			if IsNotFound(err) {
				return validationf("user %d does not exist", p.UserID)
			}
			return err
		}
		if err := payments.Insert(ctx, p); err != nil {
			return err
		}
		return adjust(ctx, users, p.UserID, CreditsOf(p))
	})
	if err != nil {
		entry("Create").WithField("user_id", p.UserID).WithError(err).Warn("payment not created")
		return nil, err
	}
	entry("Create").WithFields(log.Fields{"payment_id": p.ID, "user_id": p.UserID}).Debug("payment created")
	return p, nil
}

// Update replaces payment id with p and applies the change in grants. When p
// names another owner the old grants leave the old owner and the new grants
// go to the new one. A zero UserID keeps the stored owner.
func (r *Reconciler) Update(ctx context.Context, id int64, p *models.Payment) (*models.Payment, error) {
	if CreditsOf(p).hasNegative() {
		return nil, validationf("credits must not be negative")
	}

	err := r.store.WithinTx(ctx, func(payments PaymentStore, users UserStore) error {
		old, err := payments.Get(ctx, id, true)
		if err != nil {
			return err
		}
		if p.UserID <= 0 {
			p.UserID = old.UserID
		}
		if p.UserID != old.UserID {
			if _, err := users.Counters(ctx, p.UserID, true); err != nil {
				if IsNotFound(err) {
					return validationf("user %d does not exist", p.UserID)
				}
				return err
			}
		}

		p.ID = old.ID
		p.CreatedAt = old.CreatedAt
		if err := payments.Save(ctx, p); err != nil {
			return err
		}

		before, after := CreditsOf(old), CreditsOf(p)
		if p.UserID == old.UserID {
			return releaseOwner(ctx, users, "Update", id, p.UserID, Delta(before, after))
		}
		return moveCredits(ctx, users, id, old.UserID, before, p.UserID, after)
	})
	if err != nil {
		entry("Update").WithField("payment_id", id).WithError(err).Warn("payment not updated")
		return nil, err
	}
	entry("Update").WithFields(log.Fields{"payment_id": id, "user_id": p.UserID}).Debug("payment updated")
	return p, nil
}

// moveCredits adjusts both owners in ascending id order so two transactions
// touching the same pair of users lock them in the same order.
func moveCredits(ctx context.Context, users UserStore, paymentID, from int64, taken Credits, to int64, given Credits) error {
	take := func() error { return releaseOwner(ctx, users, "Update", paymentID, from, taken.Neg()) }
	give := func() error { return adjust(ctx, users, to, given) }
	steps := []func() error{take, give}
	if to < from {
		steps[0], steps[1] = give, take
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return err
		}
	}
	return nil
}

// releaseOwner adjusts the payment's stored owner. A stored owner whose row
// is gone has no counters left to correct, so the change is logged and the
// payment write goes on.
func releaseOwner(ctx context.Context, users UserStore, method string, paymentID, userID int64, delta Credits) error {
	err := users.Adjust(ctx, userID, delta)
	if IsNotFound(err) {
		entry(method).WithFields(log.Fields{"payment_id": paymentID, "user_id": userID}).Warn("owner missing")
		return nil
	}
	return err
}

func adjust(ctx context.Context, users UserStore, userID int64, delta Credits) error {
	err := users.Adjust(ctx, userID, delta)
	if IsNotFound(err) {
		return validationf("user %d does not exist", userID)
	}
	return err
}

// Delete removes payment id and takes its grants back from the owner.
func (r *Reconciler) Delete(ctx context.Context, id int64) (Deleted, error) {
	err := r.store.WithinTx(ctx, func(payments PaymentStore, users UserStore) error {
		old, err := payments.Get(ctx, id, true)
		if err != nil {
			return err
		}
		if err := payments.Delete(ctx, id); err != nil {
			return err
		}
		return releaseOwner(ctx, users, "Delete", id, old.UserID, CreditsOf(old).Neg())
	})
	if err != nil {
		entry("Delete").WithField("payment_id", id).WithError(err).Warn("payment not deleted")
		return Deleted{}, err
	}
	entry("Delete").WithField("payment_id", id).Debug("payment deleted")
	return Deleted{Success: true, DeletedID: id}, nil
}

func (r *Reconciler) Get(ctx context.Context, id int64) (*models.Payment, error) {
	var p *models.Payment
	err := r.store.WithinTx(ctx, func(payments PaymentStore, _ UserStore) error {
		var err error
		p, err = payments.Get(ctx, id, false)
		return err
	})
	return p, err
}

// List returns every payment, newest id first.
func (r *Reconciler) List(ctx context.Context) ([]models.Payment, error) {
	var list []models.Payment
	err := r.store.WithinTx(ctx, func(payments PaymentStore, _ UserStore) error {
		var err error
		list, err = payments.List(ctx)
		return err
	})
	return list, err
}

func (r *Reconciler) ListByUser(ctx context.Context, userID int64) ([]models.Payment, error) {
	var list []models.Payment
	err := r.store.WithinTx(ctx, func(payments PaymentStore, _ UserStore) error {
		var err error
		list, err = payments.ListByUser(ctx, userID)
		return err
	})
	return list, err
}

// Audit recomputes the expected counters from the payments and reports one
// Drift per user, all users when userID is 0. A full audit also reports the
// owners of payments that have no user row, as orphaned drifts.
func (r *Reconciler) Audit(ctx context.Context, userID int64) ([]Drift, error) {
	var report []Drift
	err := r.store.WithinTx(ctx, func(payments PaymentStore, users UserStore) error {
		counters, err := users.AllCounters(ctx, userID)
		if err != nil {
			return err
		}
		if userID > 0 && len(counters) == 0 {
			return ErrNotFound
		}
		sums, err := payments.Sums(ctx, userID)
		if err != nil {
			return err
		}
		report = make([]Drift, 0, len(counters))
		for id, c := range counters {
			expected := sums[id]
			report = append(report, Drift{UserID: id, Counters: c, Expected: expected, Diff: c.Sub(expected)})
		}
		for id, expected := range sums {
			if _, ok := counters[id]; ok {
				continue
			}
			report = append(report, Drift{UserID: id, Expected: expected, Diff: Credits{}.Sub(expected), Orphaned: true})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sortDrifts(report)
	return report, nil
}

func sortDrifts(report []Drift) {
	sort.Slice(report, func(i, j int) bool { return report[i].UserID < report[j].UserID })
}

// fillDefaults completes what the console leaves to the backend on create.
func (r *Reconciler) fillDefaults(p *models.Payment) {
	if p.TransactionID == "" {
		p.TransactionID = utils.GenerateTransactionID(r.now())
	}
	if p.CustomInvoiceID == "" {
		p.CustomInvoiceID = utils.GenerateInvoiceID()
	}
	if p.NextPaymentDate == nil && p.PaymentDate != nil {
		next := p.PaymentDate.AddDate(0, 1, 0)
		p.NextPaymentDate = &next
	}
	if p.Status == "" {
		p.Status = StatusSuccess
	}
	if p.Currency == "" {
		p.Currency = "USD"
	}
}
