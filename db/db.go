package db

import (
	"fmt"

	"github.com/dwnGnL/adminConsole/models"
	"github.com/dwnGnL/adminConsole/pkg/pretty"
	"github.com/dwnGnL/adminConsole/pkg/setting"
	"github.com/dwnGnL/adminConsole/pkg/utils"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var db *gorm.DB

// Setup initializes the database instance
func Setup() {
	var err error

	db, err = Open(setting.Config.DBDriver, setting.Config.DB, setting.Config.MaxConns, setting.Config.AppConf.Debug)
	if err != nil {
		pretty.LoglnFatal("db.Setup err:", err)
	}

	//AutoMigrate
	if err := AutoMigrate(db); err != nil {
		pretty.LoglnFatal("db.AutoMigrate err:", err)
	}
	createAdmin(setting.Config.Auth.AdminPassword)
	pretty.Logln("DB successfully connected! ")
}

// Open connects with the named driver, "postgres" or "sqlite".
func Open(driver, dsn string, maxConns int, debug bool) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case "", "postgres":
		dialector = postgres.Open(dsn)
	case "sqlite":
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported db driver %q", driver)
	}

	level := logger.Warn
	if debug {
		level = logger.Info
	}
	conn, err := gorm.Open(dialector, &gorm.Config{Logger: logger.Default.LogMode(level)})
	if err != nil {
		return nil, err
	}

	sqlDB, err := conn.DB()
	if err != nil {
		return nil, err
	}
	if maxConns > 0 {
		sqlDB.SetMaxOpenConns(maxConns)
	}
	return conn, nil
}

// CloseDB closes database connection (unnecessary)
func CloseDB() {
	if db == nil {
		return
	}
	sqlDB, err := db.DB()
	if err != nil {
		pretty.Logln("Error on closing the DB: ", err)
		return
	}
	sqlDB.Close()
}

func GetDB() *gorm.DB {
	return db
}

func AutoMigrate(conn *gorm.DB) error {
	for _, model := range []interface{}{
		(*models.User)(nil),
		(*models.Payment)(nil),
		(*models.Admin)(nil),
		(*models.TokenEntity)(nil),
		(*models.Conversation)(nil),
		(*models.Message)(nil),
	} {
		dbSilent := conn.Session(&gorm.Session{Logger: logger.Default.LogMode(logger.Silent)})
		if err := dbSilent.AutoMigrate(model); err != nil {
			return fmt.Errorf("create model %T: %w", model, err)
		}
	}
	return nil
}

// createAdmin seeds the "admin" account the first time a password is configured.
func createAdmin(password string) {
	if password == "" {
		pretty.LoglnWarn("admin password not configured, skipping admin seed")
		return
	}

	var count int64
	db.Model(models.Admin{}).Where("login = ?", "admin").Count(&count)
	if count > 0 {
		return
	}

	var admin models.Admin
	admin.Salt, admin.Password = utils.HashPassword(password)
	admin.IsAdmin = true
	admin.Login = "admin"

	if err := db.Create(&admin).Error; err != nil {
		pretty.LoglnWarn(err.Error())
	}
}
