package routes

import (
	"net/http"

	"github.com/dwnGnL/adminConsole/ledger"
	"github.com/dwnGnL/adminConsole/pkg/currency"
	"github.com/dwnGnL/adminConsole/pkg/e"
	log "github.com/dwnGnL/adminConsole/pkg/logging"
	"github.com/dwnGnL/adminConsole/routes/middleware"
	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type Options struct {
	DB       *gorm.DB
	Verifier middleware.Verifier
	// JWT serves /login and /refresh when set.
	JWT      *middleware.GinJWTMiddleware
	Console  ConsoleAuth
	Currency *currency.Converter
	Logger   *logrus.Logger
	Sentry   bool
}

func Init(opts Options) *gin.Engine {
	DB = opts.DB
	Ledger = ledger.NewReconciler(ledger.NewGormStore(opts.DB))
	converter = opts.Currency
	if converter == nil {
		converter = currency.New(USD, nil)
	}
	console = opts.Console

	logger := opts.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	defaultRouter := gin.New()
	defaultRouter.Use(log.RequestID(), log.Logger(logger), gin.Recovery())
	if opts.Sentry {
		defaultRouter.Use(sentrygin.New(sentrygin.Options{Repanic: true}))
	}
	defaultRouter.Use(middleware.CORSMiddleware())

	if opts.JWT != nil {
		defaultRouter.POST("/login", opts.JWT.LoginHandler)
		defaultRouter.GET("/refresh", opts.JWT.RefreshToken)
	}
	defaultRouter.POST("/api/auth/login", ConsoleLogin)
	defaultRouter.GET("/health", Health)

	auth := middleware.RequireAuth(opts.Verifier)

	api := defaultRouter.Group("/api", auth)
	{
		payments := api.Group("/payments")
		payments.GET("", ListPayments)
		payments.POST("", CreatePayment)
		payments.PUT("/:id", UpdatePayment)
		payments.DELETE("/:id", DeletePayment)

		users := api.Group("/users")
		users.GET("", ListUsers)
		users.GET("/:id", GetUser)
		users.GET("/:id/audit", AuditUser)

		chat := api.Group("/admin/chat")
		chat.GET("/conversations", Conversations)
		chat.GET("/messages/:userId", Messages)
		chat.POST("/send", SendMessage)
		chat.POST("/start", StartConversation)
		chat.POST("/seen/:userId", MarkSeen)
	}

	private := defaultRouter.Group("", auth)
	{
		if opts.JWT != nil {
			private.DELETE("/logout", opts.JWT.LogOut)
		}
		private.POST("/admins", AccessForAdmin(CreateAdmin))
	}

	defaultRouter.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"code": "PAGE_NOT_FOUND", "message": "Page not found"})
	})
	return defaultRouter
}

func AccessForAdmin(f funcGin) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := middleware.GetUserFromContext(c)

		if user.IsAdmin {
			f(c)
			return
		}

		e.With(e.Forbidden("access denied")).Write(c)
	}
}
