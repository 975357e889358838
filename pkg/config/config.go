package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "PARTNERZ"

	AppEnvDev  = "dev"
	AppEnvProd = "production"

	EnvAppEnv     = "PARTNERZ_APP_ENV"
	EnvPort       = "PARTNERZ_APP_PORT"
	EnvDBDSN      = "PARTNERZ_DB_DSN"
	EnvDBHost     = "PARTNERZ_DB_HOST"
	EnvDBUser     = "PARTNERZ_DB_USER"
	EnvDBName     = "PARTNERZ_DB_NAME"
	EnvRedisURL   = "PARTNERZ_REDIS_URL"
	EnvJWTSecret  = "PARTNERZ_JWT_SECRET"
	EnvJWTIssuer  = "PARTNERZ_JWT_ISSUER"
	EnvJWTExpMins = "PARTNERZ_JWT_EXPIRATION_MINUTES"
	EnvRarities   = "PARTNERZ_ENGINE_RARITIES"
	EnvDrawPolicy = "PARTNERZ_ENGINE_DRAW_POLICY"
	EnvSnapStore  = "PARTNERZ_SNAPSHOT_STORE"

	SnapshotStoreNone  = "none"
	SnapshotStoreGorm  = "gorm"
	SnapshotStoreRedis = "redis"

	DrawPolicyUniform  = "uniform"
	DrawPolicyWeighted = "weighted"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Engine       EngineConfig
	Snapshot     SnapshotConfig
	FeatureFlags FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Engine.validate(); err != nil {
		return nil, err
	}
	if err := cfg.Snapshot.validate(); err != nil {
		return nil, err
	}
	if cfg.Snapshot.Store == SnapshotStoreRedis && !cfg.Redis.Enabled() {
		return nil, fmt.Errorf("%s=redis requires %s or PARTNERZ_REDIS_ADDR", EnvSnapStore, EnvRedisURL)
	}
	if cfg.Snapshot.Store == SnapshotStoreGorm {
		if err := cfg.DB.ensureDSN(); err != nil {
			return nil, err
		}
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"PARTNERZ_APP_ENV" required:"true"`
	Port         string `envconfig:"PARTNERZ_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"PARTNERZ_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"PARTNERZ_LOG_WARN_STACK" default:"false"`

	CORSOrigins     []string      `envconfig:"PARTNERZ_CORS_ORIGINS" default:"http://localhost:3000"`
	ShutdownTimeout time.Duration `envconfig:"PARTNERZ_SHUTDOWN_TIMEOUT" default:"15s"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"PARTNERZ_DB_DSN"`
	Driver string `envconfig:"PARTNERZ_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"PARTNERZ_DB_HOST"`
	LegacyPort     int    `envconfig:"PARTNERZ_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"PARTNERZ_DB_USER"`
	LegacyPassword string `envconfig:"PARTNERZ_DB_PASSWORD"`
	LegacyName     string `envconfig:"PARTNERZ_DB_NAME"`
	LegacySSLMode  string `envconfig:"PARTNERZ_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"PARTNERZ_DB_MAX_OPEN_CONNS" default:"10"`
	MaxIdleConns    int           `envconfig:"PARTNERZ_DB_MAX_IDLE_CONNS" default:"5"`
	ConnMaxLifetime time.Duration `envconfig:"PARTNERZ_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"PARTNERZ_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

// IsSQLite reports whether the snapshot database runs on the embedded sqlite driver.
func (db DBConfig) IsSQLite() bool {
	return strings.EqualFold(strings.TrimSpace(db.Driver), "sqlite")
}

type RedisConfig struct {
	URL          string        `envconfig:"PARTNERZ_REDIS_URL"`
	Address      string        `envconfig:"PARTNERZ_REDIS_ADDR"`
	Password     string        `envconfig:"PARTNERZ_REDIS_PASSWORD"`
	DB           int           `envconfig:"PARTNERZ_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"PARTNERZ_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"PARTNERZ_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"PARTNERZ_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"PARTNERZ_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"PARTNERZ_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// Enabled reports whether any redis endpoint was configured.
func (r RedisConfig) Enabled() bool {
	return r.URL != "" || r.Address != ""
}

type JWTConfig struct {
	Secret            string `envconfig:"PARTNERZ_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"PARTNERZ_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"PARTNERZ_JWT_EXPIRATION_MINUTES" default:"60"`
}

// TTL is the lifetime of minted access tokens.
func (j JWTConfig) TTL() time.Duration {
	return time.Duration(j.ExpirationMinutes) * time.Minute
}

// EngineConfig tunes the relationship engine.
type EngineConfig struct {
	Rarities   []string `envconfig:"PARTNERZ_ENGINE_RARITIES" default:"Common,Rare,Epic,Legendary"`
	DrawPolicy string   `envconfig:"PARTNERZ_ENGINE_DRAW_POLICY" default:"uniform"`
	RandomSeed uint64   `envconfig:"PARTNERZ_ENGINE_RANDOM_SEED" default:"0"`
	LedgerSize int      `envconfig:"PARTNERZ_ENGINE_LEDGER_SIZE" default:"10000"`
}

func (e EngineConfig) validate() error {
	if len(e.Rarities) == 0 {
		return fmt.Errorf("%s must name at least one rarity", EnvRarities)
	}
	switch strings.ToLower(e.DrawPolicy) {
	case DrawPolicyUniform, DrawPolicyWeighted:
		return nil
	}
	return fmt.Errorf("%s must be %q or %q, got %q", EnvDrawPolicy, DrawPolicyUniform, DrawPolicyWeighted, e.DrawPolicy)
}

type SnapshotConfig struct {
	Store         string        `envconfig:"PARTNERZ_SNAPSHOT_STORE" default:"none"`
	Interval      time.Duration `envconfig:"PARTNERZ_SNAPSHOT_INTERVAL" default:"5m"`
	RestoreOnBoot bool          `envconfig:"PARTNERZ_SNAPSHOT_RESTORE_ON_BOOT" default:"true"`
	RedisKey      string        `envconfig:"PARTNERZ_SNAPSHOT_REDIS_KEY" default:"latest"` // namespaced under pz:snapshot
}

// Enabled reports whether directory snapshots are persisted anywhere.
func (s SnapshotConfig) Enabled() bool {
	return s.Store != "" && s.Store != SnapshotStoreNone
}

func (s SnapshotConfig) validate() error {
	switch s.Store {
	case SnapshotStoreNone, SnapshotStoreGorm, SnapshotStoreRedis:
		return nil
	}
	return fmt.Errorf("%s must be one of none|gorm|redis, got %q", EnvSnapStore, s.Store)
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"PARTNERZ_AUTO_MIGRATE" default:"false"`
	Idempotency bool `envconfig:"PARTNERZ_FEATURE_IDEMPOTENCY" default:"true"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
