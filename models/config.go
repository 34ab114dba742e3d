package models

type Config struct {
	AppConf  App            `json:"app"`
	DB       string         `json:"db"`
	DBDriver string         `json:"db_driver"`
	MaxConns int            `json:"db_max_open_conns"`
	Auth     AuthStruct     `json:"auth"`
	Cache    CacheStruct    `json:"cache"`
	Sentry   SentryStruct   `json:"sentry"`
	Currency CurrencyStruct `json:"currency"`
}

type App struct {
	ServerName        string `json:"serverName"`
	Port              int64  `json:"portRun"`
	AccessTknTimeout  int64  `json:"accessTknTimeout"`
	RefreshTknTimeout int64  `json:"refreshTknTimeout"`
	Realm             string `json:"realm"`
	Debug             bool   `json:"debug"`
	AccessKey         string `json:"access_key"`
	RefreshKey        string `json:"refresh_key"`
	// AuditInterval is in seconds, 0 disables the periodic credit audit.
	AuditInterval int64 `json:"audit_interval_seconds"`
}

// AuthStruct selects how bearer credentials are verified.
// Mode "jwt" accepts access tokens issued by /login, mode "static" compares
// against StaticToken.
type AuthStruct struct {
	Mode          string `json:"mode"`
	StaticToken   string `json:"static_token"`
	AdminEmail    string `json:"admin_email"`
	AdminPassword string `json:"admin_password"`
}

type CacheStruct struct {
	MaxFailures  int   `json:"max_failures"`
	WaitTime     int64 `json:"wait_time_seconds"`
	CleaningTime int64 `json:"cleaning_time_seconds"`
}

type SentryStruct struct {
	DSN         string `json:"dsn"`
	Environment string `json:"environment"`
}

type CurrencyStruct struct {
	Base  string             `json:"base"`
	Rates map[string]float64 `json:"rates"`
}
