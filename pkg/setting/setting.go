package setting

import (
	"encoding/json"
	"os"
	"strconv"

	"github.com/dwnGnL/adminConsole/models"
	"github.com/dwnGnL/adminConsole/pkg/pretty"
)

// Config is the process-wide configuration, filled by Setup.
var Config = Default()

// Default returns the settings used when the config file omits a value.
func Default() models.Config {
	return models.Config{
		AppConf: models.App{
			ServerName:        "adminConsole",
			Port:              5000,
			AccessTknTimeout:  3600,
			RefreshTknTimeout: 86400,
			Realm:             "admin console",
		},
		DBDriver: "postgres",
		MaxConns: 100,
		Auth:     models.AuthStruct{Mode: "jwt"},
		Cache: models.CacheStruct{
			MaxFailures:  5,
			WaitTime:     60,
			CleaningTime: 600,
		},
		Currency: models.CurrencyStruct{Base: "USD"},
	}
}

// Setup loads the JSON config at path into Config and applies environment
// overrides. A missing file is not fatal, the defaults and environment are used.
func Setup(path string) {
	cfg, err := Load(path)
	if err != nil {
		pretty.LoglnFatal("setting.Setup err:", err)
	}
	Config = cfg
}

func Load(path string) (models.Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := json.Unmarshal(data, &cfg); err != nil {
			return cfg, err
		}
	case os.IsNotExist(err):
		pretty.LoglnWarn("config file not found, using defaults:", path)
	default:
		return cfg, err
	}
	applyEnv(&cfg)
	return cfg, nil
}

func applyEnv(cfg *models.Config) {
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.DB = v
	}
	if v := os.Getenv("DB_DRIVER"); v != "" {
		cfg.DBDriver = v
	}
	if v := os.Getenv("PORT"); v != "" {
		if port, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.AppConf.Port = port
		}
	}
	if v := os.Getenv("ADMIN_EMAIL"); v != "" {
		cfg.Auth.AdminEmail = v
	}
	if v := os.Getenv("ADMIN_PASSWORD"); v != "" {
		cfg.Auth.AdminPassword = v
	}
	if v := os.Getenv("ADMIN_TOKEN"); v != "" {
		cfg.Auth.StaticToken = v
	}
	if v := os.Getenv("SENTRY_DSN"); v != "" {
		cfg.Sentry.DSN = v
	}
}
