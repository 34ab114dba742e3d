package ledger

import (
	"context"
	"errors"

	"github.com/dwnGnL/adminConsole/models"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const pgForeignKeyViolation = "23503"

// GormStore implements Transactor over a gorm connection.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) WithinTx(ctx context.Context, fn func(payments PaymentStore, users UserStore) error) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormPayments{tx: tx}, &gormUsers{tx: tx})
	})
	return persistence(err)
}

type gormPayments struct {
	tx *gorm.DB
}

func (p *gormPayments) Get(ctx context.Context, id int64, lock bool) (*models.Payment, error) {
	q := p.tx.WithContext(ctx)
	if lock {
		q = forUpdate(q)
	}
	var payment models.Payment
	if err := q.Where("id = ?", id).First(&payment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, persistence(err)
	}
	return &payment, nil
}

func (p *gormPayments) Insert(ctx context.Context, payment *models.Payment) error {
	err := p.tx.WithContext(ctx).Omit(clause.Associations).Create(payment).Error
	return classify(err, payment.UserID)
}

func (p *gormPayments) Save(ctx context.Context, payment *models.Payment) error {
	err := p.tx.WithContext(ctx).Omit(clause.Associations).Save(payment).Error
	return classify(err, payment.UserID)
}

func (p *gormPayments) Delete(ctx context.Context, id int64) error {
	res := p.tx.WithContext(ctx).Delete(&models.Payment{}, id)
	if res.Error != nil {
		return persistence(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *gormPayments) List(ctx context.Context) ([]models.Payment, error) {
	list := make([]models.Payment, 0)
	if err := p.tx.WithContext(ctx).Order("id desc").Find(&list).Error; err != nil {
		return nil, persistence(err)
	}
	return list, nil
}

func (p *gormPayments) ListByUser(ctx context.Context, userID int64) ([]models.Payment, error) {
	list := make([]models.Payment, 0)
	if err := p.tx.WithContext(ctx).Where("user_id = ?", userID).Order("id desc").Find(&list).Error; err != nil {
		return nil, persistence(err)
	}
	return list, nil
}

type creditRow struct {
	UserID            int64 `gorm:"column:user_id"`
	EmailVerification int64 `gorm:"column:email_verification"`
	EmailSend         int64 `gorm:"column:email_send"`
	SMS               int64 `gorm:"column:sms"`
	WhatsApp          int64 `gorm:"column:whatsapp"`
}

func (r creditRow) credits() Credits {
	return Credits{EmailVerification: r.EmailVerification, EmailSend: r.EmailSend, SMS: r.SMS, WhatsApp: r.WhatsApp}
}

func (p *gormPayments) Sums(ctx context.Context, userID int64) (map[int64]Credits, error) {
	var rows []creditRow
	q := p.tx.WithContext(ctx).Model(&models.Payment{}).
		Select(`user_id,
			CAST(COALESCE(SUM(email_verification_credits), 0) AS BIGINT) AS email_verification,
			CAST(COALESCE(SUM(email_send_credits), 0) AS BIGINT) AS email_send,
			CAST(COALESCE(SUM(sms_credits), 0) AS BIGINT) AS sms,
			CAST(COALESCE(SUM(whatsapp_credits), 0) AS BIGINT) AS whatsapp`).
		Group("user_id")
	if userID > 0 {
		q = q.Where("user_id = ?", userID)
	}
	if err := q.Scan(&rows).Error; err != nil {
		return nil, persistence(err)
	}
	sums := make(map[int64]Credits, len(rows))
	for _, r := range rows {
		sums[r.UserID] = r.credits()
	}
	return sums, nil
}

type gormUsers struct {
	tx *gorm.DB
}

func (u *gormUsers) Counters(ctx context.Context, userID int64, lock bool) (Credits, error) {
	q := u.tx.WithContext(ctx).Select("id", "contact_limit", "email_limit", "sms_credits", "whatsapp_credits")
	if lock {
		q = forUpdate(q)
	}
	var user models.User
	if err := q.Where("id = ?", userID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Credits{}, ErrNotFound
		}
		return Credits{}, persistence(err)
	}
	return CountersOf(&user), nil
}

// Adjust adds delta to the counters with column arithmetic, so the row value
// is never read back into Go and written over.
func (u *gormUsers) Adjust(ctx context.Context, userID int64, delta Credits) error {
	res := u.tx.WithContext(ctx).Model(&models.User{}).Where("id = ?", userID).Updates(map[string]interface{}{
		"contact_limit":    gorm.Expr("contact_limit + ?", delta.EmailVerification),
		"email_limit":      gorm.Expr("email_limit + ?", delta.EmailSend),
		"sms_credits":      gorm.Expr("sms_credits + ?", delta.SMS),
		"whatsapp_credits": gorm.Expr("whatsapp_credits + ?", delta.WhatsApp),
	})
	if res.Error != nil {
		return persistence(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (u *gormUsers) AllCounters(ctx context.Context, userID int64) (map[int64]Credits, error) {
	var users []models.User
	q := u.tx.WithContext(ctx).Select("id", "contact_limit", "email_limit", "sms_credits", "whatsapp_credits").Order("id")
	if userID > 0 {
		q = q.Where("id = ?", userID)
	}
	if err := q.Find(&users).Error; err != nil {
		return nil, persistence(err)
	}
	counters := make(map[int64]Credits, len(users))
	for i := range users {
		counters[users[i].ID] = CountersOf(&users[i])
	}
	return counters, nil
}

// forUpdate adds SELECT ... FOR UPDATE where the dialect has row locks.
// sqlite serializes writers on the whole database instead.
func forUpdate(q *gorm.DB) *gorm.DB {
	if q.Dialector.Name() == "sqlite" {
		return q
	}
	return q.Clauses(clause.Locking{Strength: "UPDATE"})
}

// classify turns a missing owner reported by the database into a validation
// error and everything else into a persistence failure.
func classify(err error, userID int64) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation {
		return validationf("user %d does not exist", userID)
	}
	return persistence(err)
}
