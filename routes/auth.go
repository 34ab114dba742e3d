package routes

import (
	"crypto/subtle"
	"net/http"
	"strings"
	"time"

	"github.com/dwnGnL/adminConsole/models"
	"github.com/dwnGnL/adminConsole/pkg/e"
	log "github.com/dwnGnL/adminConsole/pkg/logging"
	"github.com/dwnGnL/adminConsole/pkg/pretty"
	"github.com/dwnGnL/adminConsole/pkg/utils"
	"github.com/dwnGnL/adminConsole/routes/middleware"
	"github.com/gin-gonic/gin"
)

// ConsoleAuth is the single configured console account. Issue mints the
// token handed back on a successful login.
type ConsoleAuth struct {
	Email    string
	Password string
	Issue    func(email string) (string, error)
	Throttle *middleware.LoginThrottle
}

type consoleLoginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (a ConsoleAuth) check(email, password string) bool {
	if a.Email == "" || a.Password == "" {
		return false
	}
	emailOK := subtle.ConstantTimeCompare([]byte(strings.ToLower(a.Email)), []byte(strings.ToLower(email))) == 1
	passOK := subtle.ConstantTimeCompare([]byte(a.Password), []byte(password)) == 1
	return emailOK && passOK
}

// ConsoleLogin exchanges the console credentials for a bearer token.
func ConsoleLogin(c *gin.Context) {
	var req consoleLoginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		e.With(e.BadRequest(err)).Write(c)
		return
	}

	ip := log.ClientIP(c)
	if wait, ok := console.Throttle.Allowed(ip); !ok {
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"code": "TOO_MANY_REQUESTS", "message": middleware.WaitMessage(wait)})
		return
	}

	if !console.check(strings.TrimSpace(req.Email), req.Password) {
		console.Throttle.Fail(ip)
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"code": "UNAUTHORIZED", "message": "Invalid credentials"})
		return
	}
	console.Throttle.Reset(ip)

	if console.Issue == nil {
		e.With(e.Forbidden("console login is disabled")).Write(c)
		return
	}
	token, err := console.Issue(req.Email)
	if err != nil {
		e.With(err).Write(c)
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token})
}

///---------------------------------------------------------------------------------------------------------------------Admins

func authenticate(login string, password string, c *gin.Context) (string, bool) {
	var admin models.Admin

	login = strings.ToLower(strings.TrimSpace(login))
	if result := DB.Where("login = ?", login).Limit(1).Find(&admin); result.Error != nil || result.RowsAffected == 0 {
		return "", false
	}
	if !utils.CheckPasswordHash(password, admin.Salt, admin.Password) {
		return "", false
	}

	now := time.Now()
	if err := DB.Model(&admin).UpdateColumn("login_at", now).Error; err != nil {
		pretty.LoglnWarn("authenticate: update login_at:", err)
	}
	return login, true
}

func payload(login string) map[string]interface{} {
	var admin models.Admin

	if result := DB.Where("login = ?", login).Limit(1).Find(&admin); result.Error != nil || result.RowsAffected == 0 {
		return map[string]interface{}{
			"user_id":  0,
			"is_admin": false,
			"userName": login,
		}
	}

	return map[string]interface{}{
		"user_id":  admin.ID,
		"is_admin": admin.IsAdmin,
		"userName": admin.Login,
		"fio":      admin.FIO,
	}
}

// Authenticator and PayloadFunc for the admin accounts table.
var (
	Authenticator = authenticate
	Payload       = payload
)
