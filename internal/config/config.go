package config

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"umkmorder/internal/entity"

	"github.com/go-playground/validator/v10"
	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
	DriverDynamoDB = "dynamodb"
)

type (
	Config struct {
		App      App      `yaml:"app"      env-prefix:"APP_"`
		Logger   Logger   `yaml:"logger"   env-prefix:"LOGGER_"`
		Store    Store    `yaml:"store"    env-prefix:"STORE_"`
		Postgres Postgres `yaml:"postgres" env-prefix:"DB_"`
		Redis    Redis    `yaml:"redis"    env-prefix:"REDIS_"`
		Dynamo   Dynamo   `yaml:"dynamo"   env-prefix:"DYNAMO_"`
		HTTP     HTTP     `yaml:"http"     env-prefix:"HTTP_"`
		Cache    Cache    `yaml:"cache"    env-prefix:"CACHE_"`
		Kafka    Kafka    `yaml:"kafka"    env-prefix:"KAFKA_"`
		DLQ      DLQ      `yaml:"dlq"      env-prefix:"DLQ_"`
		Metrics  Metrics  `yaml:"metrics"  env-prefix:"METRICS_"`
		Order    Order    `yaml:"order"    env-prefix:"ORDER_"`
		Notify   Notify   `yaml:"notify"   env-prefix:"NOTIFY_"`
		Admin    Admin    `yaml:"admin"    env-prefix:"ADMIN_"`
		Env      string   `yaml:"env"      env:"ENV" env-default:"local" validate:"oneof=local dev staging prod"`
	}

	App struct {
		Name    string `yaml:"name"    env:"NAME"    validate:"required"`
		Version string `yaml:"version" env:"VERSION" validate:"required"`
	}

	Store struct {
		Driver string `yaml:"driver" env:"DRIVER" env-default:"memory"     validate:"oneof=memory postgres redis dynamodb"`
		Key    string `yaml:"key"    env:"KEY"    env-default:"umkmOrders" validate:"required,max=200"`
	}

	Postgres struct {
		Host           string        `yaml:"host"             env:"HOST"`
		Port           string        `yaml:"port"             env:"PORT"             env-default:"5432"    validate:"omitempty,numeric"`
		Name           string        `yaml:"name"             env:"NAME"`
		User           string        `yaml:"user"             env:"USER"`
		Password       string        `yaml:"password"         env:"PASSWORD"`
		SSLMode        string        `yaml:"ssl_mode"         env:"SSL_MODE"         env-default:"disable" validate:"oneof=disable allow prefer require verify-ca verify-full"`
		Migrate        bool          `yaml:"migrate"          env:"MIGRATE"          env-default:"true"`
		PoolMax        int32         `yaml:"pool_max"         env:"POOL_MAX"         env-default:"20"      validate:"min=1,max=100"`
		ConnAttempts   int           `yaml:"conn_attempts"    env:"CONN_ATTEMPTS"    env-default:"5"       validate:"min=1,max=10"`
		TxAttempts     int           `yaml:"tx_attempts"      env:"TX_ATTEMPTS"      env-default:"3"       validate:"min=1,max=10"`
		BaseRetryDelay time.Duration `yaml:"base_retry_delay" env:"BASE_RETRY_DELAY" env-default:"100ms"   validate:"gte=10ms,lte=10s"`
		MaxRetryDelay  time.Duration `yaml:"max_retry_delay"  env:"MAX_RETRY_DELAY"  env-default:"5s"      validate:"gte=100ms,lte=30s,gtefield=BaseRetryDelay"`
	}

	Redis struct {
		Addr        string        `yaml:"addr"         env:"ADDR"         env-default:"localhost:6379" validate:"hostname_port"`
		Password    string        `yaml:"password"     env:"PASSWORD"`
		DB          int           `yaml:"db"           env:"DB"           env-default:"0"              validate:"min=0,max=15"`
		DialTimeout time.Duration `yaml:"dial_timeout" env:"DIAL_TIMEOUT" env-default:"2s"             validate:"gte=100ms,lte=30s"`
		MaxRetries  int           `yaml:"max_retries"  env:"MAX_RETRIES"  env-default:"5"              validate:"min=1,max=20"`
	}

	Dynamo struct {
		Region   string `yaml:"region"   env:"REGION"   env-default:"ap-southeast-1"`
		Table    string `yaml:"table"    env:"TABLE"    env-default:"umkm_documents"`
		Endpoint string `yaml:"endpoint" env:"ENDPOINT" validate:"omitempty,url"`
	}

	HTTP struct {
		Host              string        `yaml:"host"                env:"HOST"                env-default:"0.0.0.0" validate:"required"`
		Port              string        `yaml:"port"                env:"PORT"                env-default:"8080"    validate:"required,numeric"`
		ReadTimeout       time.Duration `yaml:"read_timeout"        env:"READ_TIMEOUT"        env-default:"5s"      validate:"gte=10ms,lte=30s"`
		WriteTimeout      time.Duration `yaml:"write_timeout"       env:"WRITE_TIMEOUT"       env-default:"5s"      validate:"gte=10ms,lte=30s"`
		IdleTimeout       time.Duration `yaml:"idle_timeout"        env:"IDLE_TIMEOUT"        env-default:"60s"     validate:"gte=10ms,lte=120s"`
		ShutdownTimeout   time.Duration `yaml:"shutdown_timeout"    env:"SHUTDOWN_TIMEOUT"    env-default:"10s"     validate:"gte=10ms,lte=30s"`
		ReadHeaderTimeout time.Duration `yaml:"read_header_timeout" env:"READ_HEADER_TIMEOUT" env-default:"5s"      validate:"gte=10ms,lte=30s"`
		RequestTimeout    time.Duration `yaml:"request_timeout"     env:"REQUEST_TIMEOUT"     env-default:"2s"      validate:"gte=10ms,lte=30s"`
	}

	Cache struct {
		Capacity        int           `yaml:"capacity"         env:"CAPACITY"         env-default:"1000" validate:"min=1,max=1000000"`
		TTL             time.Duration `yaml:"ttl"              env:"TTL"              env-default:"5m"   validate:"gt=0s,lte=24h"`
		CleanupInterval time.Duration `yaml:"cleanup_interval" env:"CLEANUP_INTERVAL" env-default:"1m"   validate:"gt=0s,lte=24h"`
	}

	Kafka struct {
		Enabled bool     `yaml:"enabled"  env:"ENABLED"  env-default:"false"`
		GroupID string   `yaml:"group_id" env:"GROUP_ID" env-default:"umkm-order-service"`
		Brokers []string `yaml:"brokers"  env:"BROKERS"  env-separator:","               validate:"omitempty,dive,hostname_port"`
		Topic   string   `yaml:"topic"    env:"TOPIC"    env-default:"umkm-submissions"`
	}

	DLQ struct {
		GroupID       string        `yaml:"group_id"        env:"GROUP_ID"        env-default:"umkm-order-service-dlq"`
		Brokers       []string      `yaml:"brokers"         env:"BROKERS"         env-separator:","                     validate:"omitempty,dive,hostname_port"`
		Topic         string        `yaml:"topic"           env:"TOPIC"           env-default:"umkm-submissions-dlq"`
		BatchSize     int           `yaml:"batch_size"      env:"BATCH_SIZE"      env-default:"100"                     validate:"min=1,max=1000"`
		BatchTimeout  time.Duration `yaml:"batch_timeout"   env:"BATCH_TIMEOUT"   env-default:"1s"                      validate:"gte=1ms,lte=30s"`
		WriteTimeout  time.Duration `yaml:"write_timeout"   env:"WRITE_TIMEOUT"   env-default:"2s"                      validate:"gte=1ms,lte=30s"`
		ReadTimeout   time.Duration `yaml:"read_timeout"    env:"READ_TIMEOUT"    env-default:"2s"                      validate:"gte=1ms,lte=30s"`
		MaxRetryCount int           `yaml:"max_retry_count" env:"MAX_RETRY_COUNT" env-default:"5"                       validate:"min=1,max=20"`
		RetryDelay    time.Duration `yaml:"retry_delay"     env:"RETRY_DELAY"     env-default:"100ms"                   validate:"gte=10ms,lte=30s"`
	}

	Metrics struct {
		Host              string        `yaml:"host"                env:"HOST"                env-default:"0.0.0.0" validate:"required"`
		Port              string        `yaml:"port"                env:"PORT"                env-default:"9090"    validate:"required,numeric"`
		ReadTimeout       time.Duration `yaml:"read_timeout"        env:"READ_TIMEOUT"        env-default:"5s"      validate:"gte=10ms,lte=30s"`
		WriteTimeout      time.Duration `yaml:"write_timeout"       env:"WRITE_TIMEOUT"       env-default:"5s"      validate:"gte=10ms,lte=30s"`
		ReadHeaderTimeout time.Duration `yaml:"read_header_timeout" env:"READ_HEADER_TIMEOUT" env-default:"5s"      validate:"gte=10ms,lte=30s"`
	}

	Logger struct {
		Level      string `yaml:"level"       env:"LEVEL"       env-default:"info" validate:"oneof=debug info warn error"`
		Filename   string `yaml:"filename"    env:"FILENAME"    env-default:"./logs/order-service.log"`
		MaxSize    int    `yaml:"max_size"    env:"MAX_SIZE"    env-default:"100"  validate:"min=1,max=1000"`
		MaxBackups int    `yaml:"max_backups" env:"MAX_BACKUPS" env-default:"3"    validate:"min=1,max=20"`
		MaxAge     int    `yaml:"max_age"     env:"MAX_AGE"     env-default:"28"   validate:"min=1,max=365"`
	}

	Order struct {
		IDPrefix          string                      `yaml:"id_prefix"          env:"ID_PREFIX"          env-default:"SMB"          validate:"required,alphanum,max=8"`
		PaymentWindow     time.Duration               `yaml:"payment_window"     env:"PAYMENT_WINDOW"     env-default:"48h"          validate:"gte=1m,lte=720h"`
		CutoffDay         int                         `yaml:"cutoff_day"         env:"CUTOFF_DAY"         env-default:"14"           validate:"min=1,max=28"`
		WindowMonths      int                         `yaml:"window_months"      env:"WINDOW_MONTHS"      env-default:"12"           validate:"min=1,max=36"`
		Timezone          string                      `yaml:"timezone"           env:"TIMEZONE"           env-default:"Asia/Jakarta" validate:"required"`
		StrictTransitions bool                        `yaml:"strict_transitions" env:"STRICT_TRANSITIONS" env-default:"false"`
		SweepInterval     time.Duration               `yaml:"sweep_interval"     env:"SWEEP_INTERVAL"     env-default:"0s"           validate:"gte=0s,lte=24h"`
		Packages          []entity.EndorsementPackage `yaml:"packages"                                                               validate:"dive"`
	}

	Notify struct {
		FallbackPhone string            `yaml:"fallback_phone" env:"FALLBACK_PHONE" env-default:"6281234567890"`
		Templates     map[string]string `yaml:"templates"`
	}

	Admin struct {
		// Users maps a login to its bcrypt password hash.
		Users map[string]string `yaml:"users" env:"USERS" env-separator:","`
		Realm string            `yaml:"realm" env:"REALM" env-default:"umkm-admin"`
	}
)

func Load() (*Config, error) {
	path := fetchConfigPath()
	if path == "" {
		return nil, entity.ErrConfigPathNotSet
	}
	return LoadPath(path)
}

func LoadPath(configPath string) (*Config, error) {
	const op = "config.LoadPath"

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%s: load .env: %w", op, err)
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("%s: config file does not exist: %s", op, configPath)
	} else if err != nil {
		return nil, fmt.Errorf("%s: checking config file: %w", op, err)
	}

	var cfg Config
	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		return nil, fmt.Errorf("%s: read config: %w", op, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &cfg, nil
}

// Validate runs struct tag validation and the checks that depend on which
// store driver and transports are enabled.
func (c *Config) Validate() error {
	validate := validator.New()

	if err := validate.Struct(c); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			messages := make([]string, 0, len(validationErrs))
			for _, ve := range validationErrs {
				messages = append(messages,
					fmt.Sprintf("%s=%v must satisfy '%s'", ve.Namespace(), ve.Value(), ve.Tag()))
			}
			return fmt.Errorf("config validation: %s", strings.Join(messages, "; "))
		}
		return fmt.Errorf("config validation: %w", err)
	}

	var problems []string

	switch c.Store.Driver {
	case DriverPostgres:
		if c.Postgres.Host == "" || c.Postgres.Name == "" || c.Postgres.User == "" {
			problems = append(problems, "postgres driver requires DB_HOST, DB_NAME and DB_USER")
		}
	case DriverDynamoDB:
		if c.Dynamo.Region == "" || c.Dynamo.Table == "" {
			problems = append(problems, "dynamodb driver requires DYNAMO_REGION and DYNAMO_TABLE")
		}
	}

	if c.Kafka.Enabled {
		if len(c.Kafka.Brokers) == 0 || c.Kafka.Topic == "" || c.Kafka.GroupID == "" {
			problems = append(problems, "kafka intake requires KAFKA_BROKERS, KAFKA_TOPIC and KAFKA_GROUP_ID")
		}
		if len(c.DLQ.Brokers) == 0 || c.DLQ.Topic == "" || c.DLQ.GroupID == "" {
			problems = append(problems, "kafka intake requires DLQ_BROKERS, DLQ_TOPIC and DLQ_GROUP_ID")
		}
	}

	if _, err := time.LoadLocation(c.Order.Timezone); err != nil {
		problems = append(problems, fmt.Sprintf("unknown ORDER_TIMEZONE %q", c.Order.Timezone))
	}

	seen := make(map[string]struct{}, len(c.Order.Packages))
	for _, p := range c.Order.Packages {
		if _, dup := seen[p.Value]; dup {
			problems = append(problems, fmt.Sprintf("duplicate endorsement package %q", p.Value))
		}
		seen[p.Value] = struct{}{}
	}

	if len(problems) > 0 {
		return fmt.Errorf("config validation: %s", strings.Join(problems, "; "))
	}
	return nil
}

// Location returns the time zone used for order IDs and month windows.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Order.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func fetchConfigPath() string {
	var path string
	flag.StringVar(&path, "config", "", "Path to config file")
	flag.Parse()

	if path == "" {
		path = os.Getenv("CONFIG_PATH")
	}
	return path
}
