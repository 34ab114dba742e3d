package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/dwnGnL/adminConsole/models"
	"github.com/dwnGnL/adminConsole/pkg/e"
	"github.com/dwnGnL/adminConsole/pkg/logging"
	"github.com/dwnGnL/adminConsole/pkg/pretty"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// GinJWTMiddleware issues and verifies access and refresh tokens for admin
// accounts. Access tokens go in "Authorization: Bearer XXX", refresh tokens
// in "Refresh-Authorization: Bearer XXX".
type GinJWTMiddleware struct {
	// Realm name to display to the user. Required.
	Realm string

	// signing algorithm - possible values are HS256, HS384, HS512
	// Optional, default is HS256.
	SigningAlgorithm string

	// Secret access token key used for signing. Required.
	AccessKey []byte

	// Secret refresh token key used for signing. Required.
	RefreshKey []byte

	// Duration that a jwt token is valid. Optional, defaults to one hour.
	AccessTimeout time.Duration

	// Duration that a refresh jwt token is valid.
	RefreshTimeout time.Duration

	// Callback function that should perform the authentication of the user based on login and
	// password. Must return true on success, false on failure. Required.
	Authenticator func(login string, password string, c *gin.Context) (string, bool)

	// Callback function that will be called during login.
	// Using this function it is possible to add additional payload data to the webtoken.
	// Note that the payload is not encrypted.
	PayloadFunc func(login string) map[string]interface{}

	// User can define own Unauthorized func.
	Unauthorized func(*gin.Context, int, string)

	// TokenHeadName is a string in the header. Default value is "Bearer"
	TokenHeadName string

	// TimeFunc provides the current time. You can override it to use another time value. This is useful for testing or if your server uses a different time zone than your tokens.
	TimeFunc func() time.Time

	// Throttle limits failed logins per client IP. Optional.
	Throttle *LoginThrottle

	DB *gorm.DB
}

const (
	accessTokenType  = "access"
	refreshTokenType = "refresh"
)

// Login form structure.
type Login struct {
	Username string `form:"username" json:"username" binding:"required"`
	Password string `form:"password" json:"password" binding:"required"`
}

type token struct {
	AtToken  string
	AtExpire time.Time
	RtToken  string
	RtExpire time.Time
}

// MiddlewareInit initialize jwt configs.
func (mw *GinJWTMiddleware) MiddlewareInit() error {
	if mw.SigningAlgorithm == "" {
		mw.SigningAlgorithm = "HS256"
	}

	if mw.AccessTimeout == 0 {
		mw.AccessTimeout = time.Hour
	}

	if mw.RefreshTimeout == 0 {
		mw.RefreshTimeout = 24 * time.Hour
	}

	if mw.TimeFunc == nil {
		mw.TimeFunc = time.Now
	}

	mw.TokenHeadName = strings.TrimSpace(mw.TokenHeadName)
	if len(mw.TokenHeadName) == 0 {
		mw.TokenHeadName = "Bearer"
	}

	if mw.Unauthorized == nil {
		mw.Unauthorized = func(c *gin.Context, code int, message string) {
			c.JSON(code, gin.H{
				"code":    code,
				"message": message,
			})
		}
	}

	if mw.Realm == "" {
		return errors.New("realm is required")
	}

	if len(mw.AccessKey) == 0 {
		return errors.New("secret key is required")
	}

	if len(mw.RefreshKey) == 0 {
		mw.RefreshKey = mw.AccessKey
	}

	return nil
}

// Verify accepts a valid, unexpired access token and reads the principal
// from its claims.
func (mw *GinJWTMiddleware) Verify(_ context.Context, tokenStr string) (models.Principal, error) {
	claims, err := mw.parse(tokenStr, mw.AccessKey, accessTokenType)
	if err != nil {
		return models.Principal{}, err
	}

	principal := models.Principal{}
	if id, ok := claims["user_id"].(float64); ok {
		principal.UserID = int64(id)
	}
	if name, ok := claims["userName"].(string); ok {
		principal.UserName = name
	}
	if isAdmin, ok := claims["is_admin"].(bool); ok {
		principal.IsAdmin = isAdmin
	}
	return principal, nil
}

// parse checks signature, expiry and that the token is of kind typ.
func (mw *GinJWTMiddleware) parse(tokenStr string, key []byte, typ string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
		if jwt.GetSigningMethod(mw.SigningAlgorithm) != token.Method {
			return nil, errors.New("invalid signing algorithm")
		}

		return key, nil
	})
	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	if kind, _ := claims["typ"].(string); kind != typ {
		return nil, ErrInvalidToken
	}
	expire, ok := claims["t_exp"].(float64)
	if !ok || int64(expire) < mw.TimeFunc().Unix() {
		return nil, errors.New("token is expired")
	}
	return claims, nil
}

// LoginHandler can be used by clients to get a jwt token.
// Payload needs to be json in the form of {"username": "USERNAME", "password": "PASSWORD"}.
func (mw *GinJWTMiddleware) LoginHandler(c *gin.Context) {
	if err := mw.MiddlewareInit(); err != nil {
		mw.unauthorized(c, http.StatusInternalServerError, err.Error())
		return
	}

	var loginVals Login
	if err := c.ShouldBindJSON(&loginVals); err != nil {
		mw.unauthorized(c, http.StatusBadRequest, "Missing Username or Password")
		return
	}

	if mw.Authenticator == nil {
		mw.unauthorized(c, http.StatusInternalServerError, "Missing define authenticator func")
		return
	}

	ipAddress := logging.ClientIP(c)
	if wait, ok := mw.Throttle.Allowed(ipAddress); !ok {
		mw.unauthorized(c, http.StatusTooManyRequests, WaitMessage(wait))
		return
	}

	if _, ok := mw.Authenticator(loginVals.Username, loginVals.Password, c); !ok {
		mw.Throttle.Fail(ipAddress)
		mw.unauthorized(c, http.StatusUnauthorized, "Incorrect Username / Password")
		return
	}
	mw.Throttle.Reset(ipAddress)

	tokenEntity, err := mw.updateToken(loginVals.Username, c.Request.UserAgent())
	if err != nil {
		pretty.LoglnWarn("login: create token:", err)
		mw.unauthorized(c, http.StatusUnauthorized, "Create JWT Token failed")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"login":          loginVals.Username,
		"access_token":   tokenEntity.AtToken,
		"refresh_token":  tokenEntity.RtToken,
		"access_expire":  tokenEntity.AtExpire.Format(time.RFC3339),
		"refresh_expire": tokenEntity.RtExpire.Format(time.RFC3339),
	})
}

// AccessToken signs a stateless access token for login with the given
// claims. It is used for the console login that has no admin row.
func (mw *GinJWTMiddleware) AccessToken(login string, payload map[string]interface{}) (string, time.Time, error) {
	if err := mw.MiddlewareInit(); err != nil {
		return "", time.Time{}, err
	}
	atToken := jwt.New(jwt.GetSigningMethod(mw.SigningAlgorithm))
	atClaims := atToken.Claims.(jwt.MapClaims)
	for key, value := range payload {
		atClaims[key] = value
	}

	atExpire := mw.TimeFunc().Add(mw.AccessTimeout)
	atClaims["login"] = login
	atClaims["typ"] = accessTokenType
	atClaims["t_exp"] = atExpire.Unix()
	atClaims["orig_iat"] = mw.TimeFunc().Unix()

	signed, err := atToken.SignedString(mw.AccessKey)
	return signed, atExpire, err
}

func (mw *GinJWTMiddleware) deleteToken(userName string, userAgent string) error {
	var id int64
	if err := mw.DB.Model(&models.Admin{}).Where("login = ?", userName).Select("id").Scan(&id).Error; err != nil {
		return err
	}
	return mw.DB.Where("user_id = ? and user_agent = ?", id, userAgent).Delete(&models.TokenEntity{}).Error
}

func (mw *GinJWTMiddleware) updateToken(userName string, userAgent string) (token, error) {
	var payload map[string]interface{}
	if mw.PayloadFunc != nil {
		payload = mw.PayloadFunc(userName)
	}
	accessToken, atExpire, err := mw.AccessToken(userName, payload)
	if err != nil {
		return token{}, err
	}

	var id int64
	if err := mw.DB.Model(&models.Admin{}).Where("login = ?", userName).Select("id").Scan(&id).Error; err != nil {
		return token{}, err
	}

	rtToken := jwt.New(jwt.GetSigningMethod(mw.SigningAlgorithm))
	rtClaims := rtToken.Claims.(jwt.MapClaims)

	rtExpire := mw.TimeFunc().Add(mw.RefreshTimeout)
	rtClaims["t_exp"] = rtExpire.Unix()
	rtClaims["orig_iat"] = mw.TimeFunc().Unix()
	rtClaims["login"] = userName
	rtClaims["typ"] = refreshTokenType
	rtClaims["userID"] = id

	refreshToken, err := rtToken.SignedString(mw.RefreshKey)
	if err != nil {
		pretty.Logln("error: can't create jwt token ")
		return token{}, err
	}
	err = mw.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Admin{}).Where("id = ?", id).UpdateColumn("login_at", mw.TimeFunc()).Error; err != nil {
			return err
		}
		var count int64
		if err := tx.Model(models.TokenEntity{}).Where("user_id = ? and user_agent = ?", id, userAgent).Count(&count).Error; err != nil {
			return err
		}
		if count != 0 {
			return tx.Model(models.TokenEntity{}).Where("user_id = ? and user_agent = ?", id, userAgent).Update("refresh_token", refreshToken).Error
		}
		return tx.Create(&models.TokenEntity{UserID: id, RefreshToken: refreshToken, UserAgent: userAgent}).Error
	})
	if err != nil {
		return token{}, err
	}

	return token{
		AtToken:  accessToken,
		AtExpire: atExpire,
		RtToken:  refreshToken,
		RtExpire: rtExpire,
	}, nil
}

// RefreshToken swaps a stored refresh token for a new token pair.
func (mw *GinJWTMiddleware) RefreshToken(c *gin.Context) {
	if err := mw.MiddlewareInit(); err != nil {
		mw.unauthorized(c, http.StatusInternalServerError, err.Error())
		return
	}
	rtTokenReq, err := mw.jwtFromHeader(c, "Refresh-Authorization")
	if err != nil {
		mw.unauthorized(c, http.StatusUnauthorized, err.Error())
		return
	}

	claims, err := mw.parse(rtTokenReq, mw.RefreshKey, refreshTokenType)
	if err != nil {
		mw.unauthorized(c, http.StatusUnauthorized, err.Error())
		return
	}
	userID, _ := claims["userID"].(float64)

	var user models.Admin
	if err := mw.DB.Where("id = ?", int64(userID)).Preload("Sessions", "user_agent = ?", c.Request.UserAgent()).Find(&user).Error; err != nil {
		e.With(err).Write(c)
		return
	}
	var userRtToken string
	if len(user.Sessions) > 0 {
		userRtToken = user.Sessions[0].RefreshToken
	}
	if userRtToken == "" || rtTokenReq != userRtToken {
		pretty.Logln("error: tokens doesn't match")
		mw.unauthorized(c, http.StatusUnauthorized, "incorrect token")
		return
	}

	tokenEntity, err := mw.updateToken(user.Login, c.Request.UserAgent())
	if err != nil {
		mw.unauthorized(c, http.StatusUnauthorized, "Create JWT Token failed")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"login":          user.Login,
		"access_token":   tokenEntity.AtToken,
		"refresh_token":  tokenEntity.RtToken,
		"access_expire":  tokenEntity.AtExpire.Format(time.RFC3339),
		"refresh_expire": tokenEntity.RtExpire.Format(time.RFC3339),
	})
}

func (mw *GinJWTMiddleware) LogOut(c *gin.Context) {
	userAgent, exist := c.GetQuery("user_agent")
	if !exist {
		e.With(e.BadRequestf("user_agent is required")).Write(c)
		return
	}
	user := GetUserFromContext(c)

	if err := mw.deleteToken(user.UserName, userAgent); err != nil {
		e.With(err).Write(c)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success"})
}

func (mw *GinJWTMiddleware) jwtFromHeader(c *gin.Context, key string) (string, error) {
	authHeader := c.Request.Header.Get(key)

	if authHeader == "" {
		return "", errors.New("auth header empty")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if !(len(parts) == 2 && parts[0] == mw.TokenHeadName) {
		return "", errors.New("invalid auth header")
	}

	return parts[1], nil
}

func (mw *GinJWTMiddleware) unauthorized(c *gin.Context, code int, message string) {
	if mw.Realm == "" {
		mw.Realm = "gin jwt"
	}

	c.Header("WWW-Authenticate", "JWT realm="+mw.Realm)
	c.Abort()

	mw.Unauthorized(c, code, message)
}
