package routes

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dwnGnL/adminConsole/ledger"
	"github.com/dwnGnL/adminConsole/models"
	"github.com/dwnGnL/adminConsole/pkg/currency"
	"github.com/dwnGnL/adminConsole/pkg/e"
	"github.com/gin-gonic/gin"
)

var dateLayouts = []string{"2006-01-02", time.RFC3339, "2006-01-02T15:04"}

// paymentReq is the console's payment form. Every field is sent on both
// create and update, an update replaces the whole row.
type paymentReq struct {
	UserID                   int64          `json:"userId" validate:"gte=0"`
	Email                    string         `json:"email" validate:"omitempty,email"`
	Name                     string         `json:"name" validate:"max=200"`
	EmailVerificationCredits models.Units   `json:"emailVerificationCredits"`
	EmailSendCredits         models.Units   `json:"emailSendCredits"`
	SMSCredits               models.Units   `json:"smsCredits"`
	WhatsappCredits          models.Units   `json:"whatsappCredits"`
	TransactionID            string         `json:"transactionId" validate:"max=64"`
	CustomInvoiceID          string         `json:"customInvoiceId" validate:"max=32"`
	PlanName                 string         `json:"planName"`
	PlanType                 string         `json:"planType"`
	Provider                 string         `json:"provider"`
	Amount                   models.Decimal `json:"amount"`
	Currency                 string         `json:"currency" validate:"omitempty,len=3,alpha"`
	PlanPrice                models.Decimal `json:"planPrice"`
	Discount                 models.Decimal `json:"discount"`
	PaymentMethod            string         `json:"paymentMethod"`
	CardLast4                string         `json:"cardLast4" validate:"omitempty,len=4,numeric"`
	BillingAddress           string         `json:"billingAddress"`
	PaymentDate              string         `json:"paymentDate"`
	NextPaymentDate          string         `json:"nextPaymentDate"`
	Status                   string         `json:"status" validate:"max=20"`
	Notified                 bool           `json:"notified"`
}

func (r paymentReq) toModel() (*models.Payment, error) {
	paymentDate, err := parseDate("paymentDate", r.PaymentDate)
	if err != nil {
		return nil, err
	}
	nextPaymentDate, err := parseDate("nextPaymentDate", r.NextPaymentDate)
	if err != nil {
		return nil, err
	}
	return &models.Payment{
		UserID:                   r.UserID,
		Email:                    strings.TrimSpace(r.Email),
		Name:                     strings.TrimSpace(r.Name),
		EmailVerificationCredits: r.EmailVerificationCredits,
		EmailSendCredits:         r.EmailSendCredits,
		SMSCredits:               r.SMSCredits,
		WhatsappCredits:          r.WhatsappCredits,
		TransactionID:            r.TransactionID,
		CustomInvoiceID:          r.CustomInvoiceID,
		PlanName:                 r.PlanName,
		PlanType:                 r.PlanType,
		Provider:                 r.Provider,
		Amount:                   r.Amount,
		Currency:                 strings.ToUpper(r.Currency),
		PlanPrice:                r.PlanPrice,
		Discount:                 r.Discount,
		PaymentMethod:            r.PaymentMethod,
		CardLast4:                r.CardLast4,
		BillingAddress:           r.BillingAddress,
		PaymentDate:              paymentDate,
		NextPaymentDate:          nextPaymentDate,
		Status:                   strings.ToLower(strings.TrimSpace(r.Status)),
		Notified:                 r.Notified,
	}, nil
}

func parseDate(field, value string) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return &t, nil
		}
	}
	return nil, e.BadRequestf("%s: invalid date %q", field, value)
}

func bindPayment(c *gin.Context) (*models.Payment, bool) {
	var req paymentReq
	if err := c.ShouldBindJSON(&req); err != nil {
		e.With(e.BadRequest(err)).Write(c)
		return nil, false
	}
	if err := validate.Struct(req); err != nil {
		e.With(e.BadRequest(err)).Write(c)
		return nil, false
	}
	p, err := req.toModel()
	if err != nil {
		e.With(err).Write(c)
		return nil, false
	}
	return p, true
}

func paramID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		e.With(e.BadRequestf("invalid %s", name)).Write(c)
		return 0, false
	}
	return id, true
}

// notFoundMsg names the missing resource, other errors keep their own message.
func notFoundMsg(err error, msg string) string {
	if ledger.IsNotFound(err) || errors.Is(err, e.ErrNotFound) {
		return msg
	}
	return ""
}

///---------------------------------------------------------------------------------------------------------------------Payments

type paymentView struct {
	models.Payment
	DisplayAmount string `json:"displayAmount,omitempty"`
}

// ListPayments returns all payments, newest first. With ?currency=XXX every
// row also carries its amount converted for display.
func ListPayments(c *gin.Context) {
	list, err := Ledger.List(c.Request.Context())
	if err != nil {
		e.With(err).Write(c)
		return
	}

	to := strings.ToUpper(c.Query("currency"))
	if to == "" {
		c.JSON(http.StatusOK, list)
		return
	}

	views := make([]paymentView, 0, len(list))
	for _, p := range list {
		converted, err := converter.Convert(p.Amount.Float(), p.Currency, to)
		if err != nil {
			e.With(e.BadRequest(err)).Write(c)
			return
		}
		views = append(views, paymentView{Payment: p, DisplayAmount: currency.Format(converted, to)})
	}
	c.JSON(http.StatusOK, views)
}

func CreatePayment(c *gin.Context) {
	p, ok := bindPayment(c)
	if !ok {
		return
	}

	created, err := Ledger.Create(c.Request.Context(), p)
	if err != nil {
		e.With(err).Write(c)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func UpdatePayment(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	p, ok := bindPayment(c)
	if !ok {
		return
	}

	updated, err := Ledger.Update(c.Request.Context(), id, p)
	if err != nil {
		e.With(err).Msg(notFoundMsg(err, "Payment not found")).Write(c)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func DeletePayment(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	deleted, err := Ledger.Delete(c.Request.Context(), id)
	if err != nil {
		e.With(err).Msg(notFoundMsg(err, "Payment not found")).Write(c)
		return
	}
	c.JSON(http.StatusOK, deleted)
}
