package ledger_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dwnGnL/adminConsole/db/dbtest"
	"github.com/dwnGnL/adminConsole/ledger"
	"github.com/dwnGnL/adminConsole/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func counters(t *testing.T, conn *gorm.DB, userID int64) ledger.Credits {
	t.Helper()
	return ledger.CountersOf(dbtest.ReloadUser(t, conn, userID))
}

func newPayment(userID int64, ev, es, sms, wa models.Units) *models.Payment {
	return &models.Payment{
		UserID:                   userID,
		Email:                    "u@example.com",
		Name:                     "Test User",
		PlanName:                 "Basic",
		PlanType:                 "Monthly",
		Provider:                 "Stripe",
		Amount:                   "49.99",
		EmailVerificationCredits: ev,
		EmailSendCredits:         es,
		SMSCredits:               sms,
		WhatsappCredits:          wa,
	}
}

func TestReconciler_NewUserHasZeroCounters(t *testing.T) {
	conn := dbtest.New(t)
	user := dbtest.SeedUser(t, conn, "zero@example.com")

	assert.True(t, counters(t, conn, user.ID).IsZero())

	report, err := ledger.NewReconciler(ledger.NewGormStore(conn)).Audit(context.Background(), user.ID)
	require.NoError(t, err)
	require.Len(t, report, 1)
	assert.True(t, report[0].InSync())
}

func TestReconciler_Create(t *testing.T) {
	ctx := context.Background()
	conn := dbtest.New(t)
	user := dbtest.SeedUser(t, conn, "c@example.com", 1, 2, 3, 4)
	r := ledger.NewReconciler(ledger.NewGormStore(conn))

	p, err := r.Create(ctx, newPayment(user.ID, 10, 20, 30, 40))
	require.NoError(t, err)
	assert.NotZero(t, p.ID)
	assert.Equal(t, ledger.Credits{EmailVerification: 11, EmailSend: 22, SMS: 33, WhatsApp: 44}, counters(t, conn, user.ID))

	stored, err := r.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, models.Units(30), stored.SMSCredits)
	assert.Equal(t, "49.99", string(stored.Amount))
}

func TestReconciler_CreateFillsDefaults(t *testing.T) {
	ctx := context.Background()
	conn := dbtest.New(t)
	user := dbtest.SeedUser(t, conn, "d@example.com")
	r := ledger.NewReconciler(ledger.NewGormStore(conn))

	paid := time.Date(2025, time.January, 31, 0, 0, 0, 0, time.UTC)
	in := newPayment(user.ID, 0, 0, 0, 0)
	in.PaymentDate = &paid

	p, err := r.Create(ctx, in)
	require.NoError(t, err)
	assert.Regexp(t, `^FREE-\d+$`, p.TransactionID)
	assert.Regexp(t, `^BC[A-Za-z0-9]{8}$`, p.CustomInvoiceID)
	assert.Equal(t, ledger.StatusSuccess, p.Status)
	assert.Equal(t, "USD", p.Currency)
	require.NotNil(t, p.NextPaymentDate)
	assert.Equal(t, paid.AddDate(0, 1, 0), *p.NextPaymentDate)
}

func TestReconciler_CreateMissingWhatsappIsZero(t *testing.T) {
	ctx := context.Background()
	conn := dbtest.New(t)
	user := dbtest.SeedUser(t, conn, "w@example.com", 0, 0, 0, 7)
	r := ledger.NewReconciler(ledger.NewGormStore(conn))

	_, err := r.Create(ctx, &models.Payment{UserID: user.ID, SMSCredits: 5})
	require.NoError(t, err)
	assert.Equal(t, ledger.Credits{SMS: 5, WhatsApp: 7}, counters(t, conn, user.ID))
}

func TestReconciler_CreateValidation(t *testing.T) {
	ctx := context.Background()
	conn := dbtest.New(t)
	user := dbtest.SeedUser(t, conn, "v@example.com")
	r := ledger.NewReconciler(ledger.NewGormStore(conn))

	tests := []struct {
		name    string
		payment *models.Payment
	}{
		{"missing user id", newPayment(0, 1, 1, 1, 1)},
		{"unknown user", newPayment(user.ID+100, 1, 1, 1, 1)},
		{"negative credits", newPayment(user.ID, 0, 0, -5, 0)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := r.Create(ctx, tt.payment)
			require.Error(t, err)
			assert.True(t, ledger.IsValidation(err))
		})
	}

	list, err := r.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.True(t, counters(t, conn, user.ID).IsZero())
}

func TestReconciler_CreateDeleteRoundTrip(t *testing.T) {
	ctx := context.Background()
	conn := dbtest.New(t)
	user := dbtest.SeedUser(t, conn, "rt@example.com", 5, 6, 7, 8)
	r := ledger.NewReconciler(ledger.NewGormStore(conn))
	before := counters(t, conn, user.ID)

	p, err := r.Create(ctx, newPayment(user.ID, 100, 200, 300, 400))
	require.NoError(t, err)

	deleted, err := r.Delete(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, ledger.Deleted{Success: true, DeletedID: p.ID}, deleted)
	assert.Equal(t, before, counters(t, conn, user.ID))

	_, err = r.Get(ctx, p.ID)
	assert.True(t, ledger.IsNotFound(err))
}

func TestReconciler_UpdateAppliesDelta(t *testing.T) {
	ctx := context.Background()
	conn := dbtest.New(t)
	user := dbtest.SeedUser(t, conn, "u@example.com", 1000, 1000, 1000, 1000)
	r := ledger.NewReconciler(ledger.NewGormStore(conn))

	p, err := r.Create(ctx, newPayment(user.ID, 10, 20, 30, 40))
	require.NoError(t, err)
	afterCreate := counters(t, conn, user.ID)

	updated, err := r.Update(ctx, p.ID, newPayment(user.ID, 15, 5, 30, 0))
	require.NoError(t, err)
	assert.Equal(t, p.ID, updated.ID)
	assert.Equal(t, afterCreate.Add(ledger.Credits{EmailVerification: 5, EmailSend: -15, WhatsApp: -40}), counters(t, conn, user.ID))
}

func TestReconciler_SMSScenario(t *testing.T) {
	ctx := context.Background()
	conn := dbtest.New(t)
	user := dbtest.SeedUser(t, conn, "sms@example.com")
	r := ledger.NewReconciler(ledger.NewGormStore(conn))

	p, err := r.Create(ctx, newPayment(user.ID, 0, 0, 50, 0))
	require.NoError(t, err)
	assert.Equal(t, int64(50), counters(t, conn, user.ID).SMS)

	_, err = r.Update(ctx, p.ID, newPayment(user.ID, 0, 0, 20, 0))
	require.NoError(t, err)
	assert.Equal(t, int64(20), counters(t, conn, user.ID).SMS)

	_, err = r.Delete(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), counters(t, conn, user.ID).SMS)
}

func TestReconciler_UpdateKeepsOwnerAndCreatedAt(t *testing.T) {
	ctx := context.Background()
	conn := dbtest.New(t)
	user := dbtest.SeedUser(t, conn, "k@example.com")
	r := ledger.NewReconciler(ledger.NewGormStore(conn))

	p, err := r.Create(ctx, newPayment(user.ID, 0, 0, 10, 0))
	require.NoError(t, err)
	created, err := r.Get(ctx, p.ID)
	require.NoError(t, err)

	repl := newPayment(0, 0, 0, 12, 0)
	repl.Status = "failed"
	updated, err := r.Update(ctx, p.ID, repl)
	require.NoError(t, err)
	assert.Equal(t, user.ID, updated.UserID)

	stored, err := r.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "failed", stored.Status)
	assert.True(t, created.CreatedAt.Equal(stored.CreatedAt))
	assert.Equal(t, int64(12), counters(t, conn, user.ID).SMS)
}

func TestReconciler_UpdateNotFound(t *testing.T) {
	ctx := context.Background()
	conn := dbtest.New(t)
	user := dbtest.SeedUser(t, conn, "nf@example.com", 1, 2, 3, 4)
	r := ledger.NewReconciler(ledger.NewGormStore(conn))

	_, err := r.Update(ctx, 9999, newPayment(user.ID, 10, 10, 10, 10))
	require.Error(t, err)
	assert.True(t, ledger.IsNotFound(err))
	assert.Equal(t, ledger.Credits{EmailVerification: 1, EmailSend: 2, SMS: 3, WhatsApp: 4}, counters(t, conn, user.ID))

	_, err = r.Delete(ctx, 9999)
	assert.True(t, ledger.IsNotFound(err))
	assert.Equal(t, ledger.Credits{EmailVerification: 1, EmailSend: 2, SMS: 3, WhatsApp: 4}, counters(t, conn, user.ID))
}

func TestReconciler_UpdateMovesCreditsToNewOwner(t *testing.T) {
	ctx := context.Background()
	conn := dbtest.New(t)
	alice := dbtest.SeedUser(t, conn, "alice@example.com")
	bob := dbtest.SeedUser(t, conn, "bob@example.com", 0, 0, 1, 0)
	r := ledger.NewReconciler(ledger.NewGormStore(conn))

	p, err := r.Create(ctx, newPayment(alice.ID, 1, 2, 3, 4))
	require.NoError(t, err)

	_, err = r.Update(ctx, p.ID, newPayment(bob.ID, 10, 20, 30, 40))
	require.NoError(t, err)

	assert.True(t, counters(t, conn, alice.ID).IsZero())
	assert.Equal(t, ledger.Credits{EmailVerification: 10, EmailSend: 20, SMS: 31, WhatsApp: 40}, counters(t, conn, bob.ID))

	report, err := r.Audit(ctx, 0)
	require.NoError(t, err)
	require.Len(t, report, 2)
	assert.False(t, report[1].InSync(), "bob had a seeded counter without a payment")
	assert.Equal(t, ledger.Credits{SMS: 1}, report[1].Diff)
	assert.True(t, report[0].InSync())
}

func TestReconciler_UpdateToUnknownOwnerRollsBack(t *testing.T) {
	ctx := context.Background()
	conn := dbtest.New(t)
	user := dbtest.SeedUser(t, conn, "o@example.com")
	r := ledger.NewReconciler(ledger.NewGormStore(conn))

	p, err := r.Create(ctx, newPayment(user.ID, 0, 0, 10, 0))
	require.NoError(t, err)

	_, err = r.Update(ctx, p.ID, newPayment(user.ID+50, 0, 0, 99, 0))
	assert.True(t, ledger.IsValidation(err))

	stored, err := r.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, user.ID, stored.UserID)
	assert.Equal(t, models.Units(10), stored.SMSCredits)
	assert.Equal(t, int64(10), counters(t, conn, user.ID).SMS)
}

func TestReconciler_ListNewestFirst(t *testing.T) {
	ctx := context.Background()
	conn := dbtest.New(t)
	a := dbtest.SeedUser(t, conn, "a@example.com")
	b := dbtest.SeedUser(t, conn, "b@example.com")
	r := ledger.NewReconciler(ledger.NewGormStore(conn))

	var ids []int64
	for _, owner := range []int64{a.ID, b.ID, a.ID, b.ID} {
		p, err := r.Create(ctx, newPayment(owner, 0, 0, 1, 0))
		require.NoError(t, err)
		ids = append(ids, p.ID)
	}
	_, err := r.Delete(ctx, ids[1])
	require.NoError(t, err)

	list, err := r.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	for i := 1; i < len(list); i++ {
		assert.Greater(t, list[i-1].ID, list[i].ID)
	}

	own, err := r.ListByUser(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, own, 2)
	assert.Equal(t, ids[2], own[0].ID)
	assert.Equal(t, ids[0], own[1].ID)
}

func TestReconciler_AuditUnknownUser(t *testing.T) {
	conn := dbtest.New(t)
	_, err := ledger.NewReconciler(ledger.NewGormStore(conn)).Audit(context.Background(), 42)
	assert.True(t, ledger.IsNotFound(err))
}

// failingAdjust runs on the real store but fails every counter adjustment.
type failingAdjust struct {
	inner *ledger.GormStore
}

type brokenUsers struct {
	ledger.UserStore
}

func (brokenUsers) Adjust(context.Context, int64, ledger.Credits) error {
	return errors.New("connection reset")
}

func (f failingAdjust) WithinTx(ctx context.Context, fn func(ledger.PaymentStore, ledger.UserStore) error) error {
	return f.inner.WithinTx(ctx, func(p ledger.PaymentStore, u ledger.UserStore) error {
		return fn(p, brokenUsers{u})
	})
}

func TestReconciler_FailedAdjustLeavesNoPartialWrite(t *testing.T) {
	ctx := context.Background()
	conn := dbtest.New(t)
	user := dbtest.SeedUser(t, conn, "f@example.com")
	good := ledger.NewReconciler(ledger.NewGormStore(conn))
	bad := ledger.NewReconciler(failingAdjust{inner: ledger.NewGormStore(conn)})

	_, err := bad.Create(ctx, newPayment(user.ID, 0, 0, 5, 0))
	require.Error(t, err)
	assert.True(t, ledger.IsPersistence(err))
	list, err := good.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)

	p, err := good.Create(ctx, newPayment(user.ID, 0, 0, 5, 0))
	require.NoError(t, err)

	_, err = bad.Update(ctx, p.ID, newPayment(user.ID, 0, 0, 50, 0))
	assert.True(t, ledger.IsPersistence(err))
	_, err = bad.Delete(ctx, p.ID)
	assert.True(t, ledger.IsPersistence(err))

	stored, err := good.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, models.Units(5), stored.SMSCredits)
	assert.Equal(t, int64(5), counters(t, conn, user.ID).SMS)
}

func TestReconciler_UpdateOrphanedPayment(t *testing.T) {
	ctx := context.Background()
	conn := dbtest.New(t)
	gone := dbtest.SeedUser(t, conn, "gone@example.com")
	next := dbtest.SeedUser(t, conn, "next@example.com")
	r := ledger.NewReconciler(ledger.NewGormStore(conn))

	p, err := r.Create(ctx, newPayment(gone.ID, 1, 2, 3, 4))
	require.NoError(t, err)
	require.NoError(t, conn.Delete(&models.User{}, gone.ID).Error)

	updated, err := r.Update(ctx, p.ID, newPayment(0, 5, 5, 5, 5))
	require.NoError(t, err)
	assert.Equal(t, gone.ID, updated.UserID)
	assert.Equal(t, models.Units(5), updated.SMSCredits)

	_, err = r.Update(ctx, p.ID, newPayment(next.ID, 0, 0, 7, 0))
	require.NoError(t, err)
	assert.Equal(t, ledger.Credits{SMS: 7}, counters(t, conn, next.ID))

	stored, err := r.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, next.ID, stored.UserID)
}

func TestReconciler_AuditReportsOrphanedPayments(t *testing.T) {
	ctx := context.Background()
	conn := dbtest.New(t)
	kept := dbtest.SeedUser(t, conn, "kept@example.com")
	gone := dbtest.SeedUser(t, conn, "gone@example.com")
	r := ledger.NewReconciler(ledger.NewGormStore(conn))

	_, err := r.Create(ctx, newPayment(kept.ID, 0, 0, 1, 0))
	require.NoError(t, err)
	_, err = r.Create(ctx, newPayment(gone.ID, 2, 0, 3, 0))
	require.NoError(t, err)
	require.NoError(t, conn.Delete(&models.User{}, gone.ID).Error)

	report, err := r.Audit(ctx, 0)
	require.NoError(t, err)
	require.Len(t, report, 2)

	assert.Equal(t, kept.ID, report[0].UserID)
	assert.True(t, report[0].InSync())
	assert.False(t, report[0].Orphaned)

	orphan := report[1]
	assert.Equal(t, gone.ID, orphan.UserID)
	assert.True(t, orphan.Orphaned)
	assert.False(t, orphan.InSync())
	assert.True(t, orphan.Counters.IsZero())
	assert.Equal(t, ledger.Credits{EmailVerification: 2, SMS: 3}, orphan.Expected)
	assert.Equal(t, ledger.Credits{EmailVerification: -2, SMS: -3}, orphan.Diff)

	_, err = r.Audit(ctx, gone.ID)
	assert.True(t, ledger.IsNotFound(err))
}
