package ledger

import "github.com/dwnGnL/adminConsole/models"

// Credits is one value per credit type. On a payment it is the grant, on a
// user it is the counter set (contactLimit, emailLimit, smsCredits, whatsappCredits).
type Credits struct {
	EmailVerification int64 `json:"emailVerificationCredits"`
	EmailSend         int64 `json:"emailSendCredits"`
	SMS               int64 `json:"smsCredits"`
	WhatsApp          int64 `json:"whatsappCredits"`
}

func CreditsOf(p *models.Payment) Credits {
	if p == nil {
		return Credits{}
	}
	return Credits{
		EmailVerification: int64(p.EmailVerificationCredits),
		EmailSend:         int64(p.EmailSendCredits),
		SMS:               int64(p.SMSCredits),
		WhatsApp:          int64(p.WhatsappCredits),
	}
}

// CountersOf reads the counters of u in grant order.
func CountersOf(u *models.User) Credits {
	return Credits{
		EmailVerification: u.ContactLimit,
		EmailSend:         u.EmailLimit,
		SMS:               u.SMSCredits,
		WhatsApp:          u.WhatsappCredits,
	}
}

func (c Credits) Add(o Credits) Credits {
	return Credits{
		EmailVerification: c.EmailVerification + o.EmailVerification,
		EmailSend:         c.EmailSend + o.EmailSend,
		SMS:               c.SMS + o.SMS,
		WhatsApp:          c.WhatsApp + o.WhatsApp,
	}
}

func (c Credits) Sub(o Credits) Credits {
	return c.Add(o.Neg())
}

func (c Credits) Neg() Credits {
	return Credits{
		EmailVerification: -c.EmailVerification,
		EmailSend:         -c.EmailSend,
		SMS:               -c.SMS,
		WhatsApp:          -c.WhatsApp,
	}
}

func (c Credits) IsZero() bool {
	return c == Credits{}
}

func (c Credits) hasNegative() bool {
	return c.EmailVerification < 0 || c.EmailSend < 0 || c.SMS < 0 || c.WhatsApp < 0
}

// Delta is what has to be applied to the counters when a grant changes from old to new.
func Delta(old, new Credits) Credits {
	return new.Sub(old)
}
