package models

import "time"

///---------------------------------------------------------USERS---------------------------------------------------------------------------------

// User is an end user of the product. The four counters are kept equal to the
// sum of the matching grants over the user's payments.
type User struct {
	ID                 int64     `json:"id" gorm:"column:id;primaryKey;autoIncrement"`
	FirstName          string    `json:"firstName" gorm:"column:first_name;type:varchar(100)"`
	LastName           string    `json:"lastName" gorm:"column:last_name;type:varchar(100)"`
	Email              string    `json:"email" gorm:"column:email;type:varchar(255);index"`
	GoogleID           string    `json:"googleId" gorm:"column:google_id"`
	ProfileImgURL      string    `json:"profileImgUrl" gorm:"column:profile_img_url"`
	Plan               string    `json:"plan" gorm:"column:plan;type:varchar(50)"`
	HasPurchasedBefore bool      `json:"hasPurchasedBefore" gorm:"column:has_purchased_before"`
	ContactLimit       int64     `json:"contactLimit" gorm:"column:contact_limit;not null;default:0"`
	EmailLimit         int64     `json:"emailLimit" gorm:"column:email_limit;not null;default:0"`
	SMSCredits         int64     `json:"smsCredits" gorm:"column:sms_credits;not null;default:0"`
	WhatsappCredits    int64     `json:"whatsappCredits" gorm:"column:whatsapp_credits;not null;default:0"`
	IsVerified         bool      `json:"isVerified" gorm:"column:is_verified"`
	Is2FAEnabled       bool      `json:"is2FAEnabled" gorm:"column:is_2fa_enabled"`
	CreatedAt          time.Time `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt          time.Time `json:"updatedAt" gorm:"autoUpdateTime"`
}

func (User) TableName() string {
	return "users"
}

///---------------------------------------------------------ADMINS--------------------------------------------------------------------------------

type Admin struct {
	ID        int64          `json:"id" gorm:"column:id;primaryKey;autoIncrement"`
	IsAdmin   bool           `json:"is_admin" gorm:"column:is_admin"`
	FIO       string         `json:"fio" gorm:"column:fio;type:varchar(50)"`
	Login     string         `json:"login" gorm:"column:login;type:varchar(20);uniqueIndex" validate:"required"`
	Password  string         `json:"password" gorm:"column:password;type:varchar(200)" validate:"required"`
	Salt      string         `json:"-" gorm:"column:salt"`
	Sessions  []*TokenEntity `json:"-" gorm:"foreignKey:UserID"`
	CreatedAt *time.Time     `json:"-" gorm:"autoCreateTime"`
	UpdatedAt *time.Time     `json:"-" gorm:"autoUpdateTime"`
	LoginAt   *time.Time     `json:"-" gorm:"column:login_at"`
}

func (Admin) TableName() string {
	return "admins"
}

type TokenEntity struct {
	UserID       int64  `gorm:"column:user_id;index"`
	RefreshToken string `gorm:"column:refresh_token"`
	UserAgent    string `gorm:"column:user_agent"`
}

func (TokenEntity) TableName() string {
	return "tokens"
}

// Principal is the authenticated caller attached to a request.
type Principal struct {
	UserName string
	UserID   int64
	IsAdmin  bool
}
