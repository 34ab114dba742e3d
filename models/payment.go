package models

import "time"

// Payment is one billing transaction granting credits to its owner.
// Amount, PlanPrice and Discount are display values and never feed the
// credit counters.
type Payment struct {
	ID                       int64      `json:"id" gorm:"column:id;primaryKey;autoIncrement"`
	UserID                   int64      `json:"userId" gorm:"column:user_id;index;not null"`
	User                     *User      `json:"-" gorm:"foreignKey:UserID"`
	Email                    string     `json:"email" gorm:"column:email"`
	Name                     string     `json:"name" gorm:"column:name"`
	EmailVerificationCredits Units      `json:"emailVerificationCredits" gorm:"column:email_verification_credits;not null;default:0"`
	EmailSendCredits         Units      `json:"emailSendCredits" gorm:"column:email_send_credits;not null;default:0"`
	SMSCredits               Units      `json:"smsCredits" gorm:"column:sms_credits;not null;default:0"`
	WhatsappCredits          Units      `json:"whatsappCredits" gorm:"column:whatsapp_credits;not null;default:0"`
	TransactionID            string     `json:"transactionId" gorm:"column:transaction_id;type:varchar(64)"`
	CustomInvoiceID          string     `json:"customInvoiceId" gorm:"column:custom_invoice_id;type:varchar(32)"`
	PlanName                 string     `json:"planName" gorm:"column:plan_name"`
	PlanType                 string     `json:"planType" gorm:"column:plan_type"`
	Provider                 string     `json:"provider" gorm:"column:provider"`
	Amount                   Decimal    `json:"amount" gorm:"column:amount;type:numeric(15,2)"`
	Currency                 string     `json:"currency" gorm:"column:currency;type:varchar(3)"`
	PlanPrice                Decimal    `json:"planPrice" gorm:"column:plan_price;type:numeric(15,2)"`
	Discount                 Decimal    `json:"discount" gorm:"column:discount;type:numeric(15,2)"`
	PaymentMethod            string     `json:"paymentMethod" gorm:"column:payment_method"`
	CardLast4                string     `json:"cardLast4" gorm:"column:card_last4;type:varchar(4)"`
	BillingAddress           string     `json:"billingAddress" gorm:"column:billing_address"`
	PaymentDate              *time.Time `json:"paymentDate" gorm:"column:payment_date"`
	NextPaymentDate          *time.Time `json:"nextPaymentDate" gorm:"column:next_payment_date"`
	Status                   string     `json:"status" gorm:"column:status;type:varchar(20)"`
	Notified                 bool       `json:"notified" gorm:"column:notified"`
	CreatedAt                time.Time  `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt                time.Time  `json:"updatedAt" gorm:"autoUpdateTime"`
}

func (Payment) TableName() string {
	return "payments"
}
