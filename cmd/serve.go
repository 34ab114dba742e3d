package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dwnGnL/adminConsole/db"
	"github.com/dwnGnL/adminConsole/ledger"
	"github.com/dwnGnL/adminConsole/models"
	"github.com/dwnGnL/adminConsole/pkg/currency"
	"github.com/dwnGnL/adminConsole/pkg/pretty"
	"github.com/dwnGnL/adminConsole/pkg/setting"
	"github.com/dwnGnL/adminConsole/pkg/worker"
	"github.com/dwnGnL/adminConsole/routes"
	"github.com/dwnGnL/adminConsole/routes/middleware"
	"github.com/getsentry/sentry-go"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve()
	},
}

func serve() error {
	pretty.Logln("[MAIN] Work has started!")
	defer deferFunc()

	cfg := setting.Config
	useSentry := setupSentry(cfg.Sentry)

	db.Setup()
	conn := db.GetDB()

	jwtMW := &middleware.GinJWTMiddleware{
		Realm:          cfg.AppConf.Realm,
		AccessKey:      []byte(cfg.AppConf.AccessKey),
		RefreshKey:     []byte(cfg.AppConf.RefreshKey),
		AccessTimeout:  time.Duration(cfg.AppConf.AccessTknTimeout) * time.Second,
		RefreshTimeout: time.Duration(cfg.AppConf.RefreshTknTimeout) * time.Second,
		Authenticator:  routes.Authenticator,
		PayloadFunc:    routes.Payload,
		Throttle:       newThrottle(cfg.Cache),
		DB:             conn,
	}

	verifier, console, err := buildAuth(cfg, jwtMW)
	if err != nil {
		return err
	}

	opts := routes.Options{
		DB:       conn,
		Verifier: verifier,
		Console:  console,
		Currency: currency.New(cfg.Currency.Base, cfg.Currency.Rates),
		Logger:   logrus.StandardLogger(),
		Sentry:   useSentry,
	}
	if cfg.Auth.Mode != "static" {
		opts.JWT = jwtMW
	}
	routers := routes.Init(opts)

	endPoint := fmt.Sprintf(":%d", cfg.AppConf.Port)
	maxHeaderBytes := 1 << 20

	server := &http.Server{
		Addr:           endPoint,
		Handler:        routers,
		ReadTimeout:    time.Duration(30) * time.Second,
		WriteTimeout:   time.Duration(30) * time.Second,
		MaxHeaderBytes: maxHeaderBytes,
	}

	ctx, stop := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	startJobs(ctx, &wg, conn, time.Duration(cfg.AppConf.AuditInterval)*time.Second)

	pretty.Logf("start http -%s- server listening %s", cfg.AppConf.ServerName, endPoint)

	go func() {
		// service connections
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			pretty.LoglnFatal("listen:", err)
		}
	}()

	quit := make(chan os.Signal, 1)

	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	pretty.Logln("Shutdown Server ...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		pretty.LoglnError("Server Shutdown:", err)
	}

	stop()
	wg.Wait()
	if useSentry {
		sentry.Flush(2 * time.Second)
	}
	return nil
}

// buildAuth picks the bearer verifier for auth.mode and the console login
// that issues tokens it accepts.
func buildAuth(cfg models.Config, jwtMW *middleware.GinJWTMiddleware) (middleware.Verifier, routes.ConsoleAuth, error) {
	console := routes.ConsoleAuth{
		Email:    cfg.Auth.AdminEmail,
		Password: cfg.Auth.AdminPassword,
		Throttle: jwtMW.Throttle,
	}

	switch cfg.Auth.Mode {
	case "static":
		if cfg.Auth.StaticToken == "" {
			return nil, console, fmt.Errorf("auth.mode static needs auth.static_token or ADMIN_TOKEN")
		}
		token := cfg.Auth.StaticToken
		console.Issue = func(string) (string, error) { return token, nil }
		return middleware.StaticVerifier{Token: token}, console, nil
	case "", "jwt":
		if err := jwtMW.MiddlewareInit(); err != nil {
			return nil, console, err
		}
		console.Issue = func(email string) (string, error) {
			signed, _, err := jwtMW.AccessToken(email, map[string]interface{}{"userName": email, "is_admin": true})
			return signed, err
		}
		return jwtMW, console, nil
	}
	return nil, console, fmt.Errorf("unknown auth.mode %q", cfg.Auth.Mode)
}

func newThrottle(c models.CacheStruct) *middleware.LoginThrottle {
	return middleware.NewLoginThrottle(c.MaxFailures, time.Duration(c.WaitTime)*time.Second, time.Duration(c.CleaningTime)*time.Second)
}

func setupSentry(c models.SentryStruct) bool {
	if c.DSN == "" {
		return false
	}
	if err := sentry.Init(sentry.ClientOptions{Dsn: c.DSN, Environment: c.Environment}); err != nil {
		pretty.LoglnWarn("sentry init:", err)
		return false
	}
	return true
}

func startJobs(ctx context.Context, wg *sync.WaitGroup, conn *gorm.DB, every time.Duration) {
	if every <= 0 {
		return
	}
	reconciler := ledger.NewReconciler(ledger.NewGormStore(conn))
	wg.Add(1)
	go func() {
		defer wg.Done()
		worker.Start(ctx, "credit audit", auditJob(reconciler), every)
	}()
}

func auditJob(r *ledger.Reconciler) worker.Job {
	return func(ctx context.Context) {
		report, err := r.Audit(ctx, 0)
		if err != nil {
			logrus.WithField("component", "audit").WithError(err).Error("credit audit failed")
			return
		}
		for _, d := range report {
			if d.InSync() {
				continue
			}
			logrus.WithFields(logrus.Fields{"component": "audit", "user_id": d.UserID, "diff": d.Diff}).Warn("credit counters drift from payments")
		}
	}
}

func deferFunc() {
	pretty.Logln("[MAIN] Work has stopped!")
	db.CloseDB()
}
