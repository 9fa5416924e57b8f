package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	// EncryptionKeyLength is the byte length of the AES-256 key in ENCRYPTION_KEY.
	EncryptionKeyLength = 32

	StoreBackendSQL   = "sql"
	StoreBackendMongo = "mongo"

	DriverMySQL  = "mysql"
	DriverSQLite = "sqlite"
)

type Config struct {
	Server ServerConfig `json:"server" mapstructure:"server"`

	// Database Configuration
	Database DatabaseConfig `json:"database" mapstructure:"database"`

	// MongoDB Configuration
	MongoDB MongoDBConfig `json:"mongodb" mapstructure:"mongodb"`

	// Store selects which backend holds messages
	Store StoreConfig `json:"store" mapstructure:"store"`

	// Shared secrets, never logged
	Security SecurityConfig `json:"-" mapstructure:"security"`

	// Notification Configuration
	Notification NotificationConfig `json:"notification" mapstructure:"notification"`

	// Email Configuration (optional)
	Email EmailConfig `json:"email" mapstructure:"email"`

	// Logging Configuration
	Logging LoggingConfig `json:"logging" mapstructure:"logging"`
}

// ServerConfig contains server-related configuration
type ServerConfig struct {
	Port         string `json:"port" mapstructure:"port"`
	Host         string `json:"host" mapstructure:"host"`
	ReadTimeout  int    `json:"read_timeout" mapstructure:"read_timeout"`
	WriteTimeout int    `json:"write_timeout" mapstructure:"write_timeout"`
	Environment  string `json:"environment" mapstructure:"environment"` // development, staging, production
}

// DatabaseConfig contains database connection configuration
type DatabaseConfig struct {
	Driver       string `json:"driver" mapstructure:"driver"` // mysql or sqlite
	Host         string `json:"host" mapstructure:"host"`
	Port         string `json:"port" mapstructure:"port"`
	Username     string `json:"username" mapstructure:"username"`
	Password     string `json:"password" mapstructure:"password"`
	DatabaseName string `json:"database_name" mapstructure:"database_name"`
	Path         string `json:"path" mapstructure:"path"` // sqlite file, ":memory:" allowed
	MaxOpenConns int    `json:"max_open_conns" mapstructure:"max_open_conns"`
	MaxIdleConns int    `json:"max_idle_conns" mapstructure:"max_idle_conns"`
}

type MongoDBConfig struct {
	Host     string `json:"host" mapstructure:"host"`
	Port     string `json:"port" mapstructure:"port"`
	Username string `json:"username" mapstructure:"username"`
	Password string `json:"password" mapstructure:"password"`
	Database string `json:"database" mapstructure:"database"`
}

type StoreConfig struct {
	Backend string `json:"backend" mapstructure:"backend"` // sql or mongo
}

// SecurityConfig holds the two secrets the service is provisioned with.
type SecurityConfig struct {
	AuthKey       string `mapstructure:"auth_key"`
	EncryptionKey string `mapstructure:"encryption_key"`
}

// NotificationConfig contains notification system configuration
type NotificationConfig struct {
	Workers           int  `json:"workers" mapstructure:"workers"`                         // Number of worker goroutines
	ChannelBufferSize int  `json:"channel_buffer_size" mapstructure:"channel_buffer_size"` // Channel buffer size
	Enabled           bool `json:"enabled" mapstructure:"enabled"`
}

// EmailConfig contains email service configuration (optional)
type EmailConfig struct {
	Provider  string `json:"provider" mapstructure:"provider"` // resend or log
	APIKey    string `json:"-" mapstructure:"api_key"`
	APIURL    string `json:"api_url" mapstructure:"api_url"`
	FromEmail string `json:"from_email" mapstructure:"from_email"`
	ToEmail   string `json:"to_email" mapstructure:"to_email"`
	Brand     string `json:"brand" mapstructure:"brand"`
	Enabled   bool   `json:"enabled" mapstructure:"enabled"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level      string `json:"level" mapstructure:"level"`             // debug, info, warn, error
	Format     string `json:"format" mapstructure:"format"`           // json, text
	OutputPath string `json:"output_path" mapstructure:"output_path"` // stdout, stderr, or file path
}

// LoadConfig loads .env (if present), applies the optional CONFIG_FILE overlay
// and then environment variables on top.
func LoadConfig() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	cfg := defaultConfig()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := applyFile(cfg, path); err != nil {
			log.Printf("Config file %s ignored: %v", path, err)
		}
	}

	applyEnv(cfg)
	return cfg
}

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:         "0.0.0.0",
			Port:         "8787",
			ReadTimeout:  15,
			WriteTimeout: 15,
			Environment:  "development",
		},
		Database: DatabaseConfig{
			Driver:       DriverSQLite,
			Host:         "localhost",
			Port:         "3306",
			Username:     "smsvault",
			Password:     "smsvault",
			DatabaseName: "smsvault",
			Path:         "smsvault.db",
			MaxOpenConns: 25,
			MaxIdleConns: 5,
		},
		MongoDB: MongoDBConfig{
			Host:     "localhost",
			Port:     "27017",
			Database: "smsvault",
		},
		Store: StoreConfig{
			Backend: StoreBackendSQL,
		},
		Notification: NotificationConfig{
			Workers:           2,
			ChannelBufferSize: 100,
			Enabled:           true,
		},
		Email: EmailConfig{
			Provider: "resend",
			APIURL:   "https://api.resend.com/emails",
			Brand:    "Lghnay",
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "text",
			OutputPath: "stdout",
		},
	}
}

func applyFile(cfg *Config, path string) error {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := v.Unmarshal(cfg); err != nil {
		return fmt.Errorf("decode config file: %w", err)
	}
	return nil
}

func applyEnv(cfg *Config) {
	cfg.Server.Host = getEnv("SERVER_HOST", cfg.Server.Host)
	cfg.Server.Port = getEnv("SERVER_PORT", cfg.Server.Port)
	cfg.Server.ReadTimeout = getEnvAsInt("SERVER_READ_TIMEOUT", cfg.Server.ReadTimeout)
	cfg.Server.WriteTimeout = getEnvAsInt("SERVER_WRITE_TIMEOUT", cfg.Server.WriteTimeout)
	cfg.Server.Environment = getEnv("ENVIRONMENT", cfg.Server.Environment)

	cfg.Database.Driver = getEnv("DB_DRIVER", cfg.Database.Driver)
	cfg.Database.Host = getEnv("MYSQL_HOST", cfg.Database.Host)
	cfg.Database.Port = getEnv("MYSQL_PORT", cfg.Database.Port)
	cfg.Database.Username = getEnv("MYSQL_USERNAME", cfg.Database.Username)
	cfg.Database.Password = getEnv("MYSQL_PASSWORD", cfg.Database.Password)
	cfg.Database.DatabaseName = getEnv("MYSQL_DATABASE", cfg.Database.DatabaseName)
	cfg.Database.Path = getEnv("SQLITE_PATH", cfg.Database.Path)
	cfg.Database.MaxOpenConns = getEnvAsInt("DB_MAX_OPEN_CONNS", cfg.Database.MaxOpenConns)
	cfg.Database.MaxIdleConns = getEnvAsInt("DB_MAX_IDLE_CONNS", cfg.Database.MaxIdleConns)

	cfg.MongoDB.Host = getEnv("MONGO_HOST", cfg.MongoDB.Host)
	cfg.MongoDB.Port = getEnv("MONGO_PORT", cfg.MongoDB.Port)
	cfg.MongoDB.Username = getEnv("MONGO_USERNAME", cfg.MongoDB.Username)
	cfg.MongoDB.Password = getEnv("MONGO_PASSWORD", cfg.MongoDB.Password)
	cfg.MongoDB.Database = getEnv("MONGO_DATABASE", cfg.MongoDB.Database)

	cfg.Store.Backend = getEnv("STORE_BACKEND", cfg.Store.Backend)

	cfg.Security.AuthKey = getEnv("AUTH_KEY", cfg.Security.AuthKey)
	cfg.Security.EncryptionKey = getEnv("ENCRYPTION_KEY", cfg.Security.EncryptionKey)

	cfg.Notification.Workers = getEnvAsInt("NOTIFICATION_WORKERS", cfg.Notification.Workers)
	cfg.Notification.ChannelBufferSize = getEnvAsInt("NOTIFICATION_BUFFER", cfg.Notification.ChannelBufferSize)
	cfg.Notification.Enabled = getEnvAsBool("NOTIFICATION_ENABLED", cfg.Notification.Enabled)

	cfg.Email.Provider = getEnv("EMAIL_PROVIDER", cfg.Email.Provider)
	cfg.Email.APIKey = getEnv("RESEND_API_KEY", cfg.Email.APIKey)
	cfg.Email.APIURL = getEnv("RESEND_API_URL", cfg.Email.APIURL)
	cfg.Email.FromEmail = getEnv("FROM_EMAIL", cfg.Email.FromEmail)
	cfg.Email.ToEmail = getEnv("TO_EMAIL", cfg.Email.ToEmail)
	cfg.Email.Brand = getEnv("EMAIL_BRAND", cfg.Email.Brand)
	cfg.Email.Enabled = getEnvAsBool("EMAIL_ENABLED", cfg.Email.Enabled)

	cfg.Logging.Level = getEnv("LOG_LEVEL", cfg.Logging.Level)
	cfg.Logging.Format = getEnv("LOG_FORMAT", cfg.Logging.Format)
	cfg.Logging.OutputPath = getEnv("LOG_OUTPUT", cfg.Logging.OutputPath)
}

// Validate checks the settings the service cannot run without.
func (cfg *Config) Validate() error {
	if cfg.Security.AuthKey == "" {
		return fmt.Errorf("AUTH_KEY is not set")
	}
	if n := len(cfg.Security.EncryptionKey); n != EncryptionKeyLength {
		return fmt.Errorf("ENCRYPTION_KEY must be %d bytes, got %d", EncryptionKeyLength, n)
	}

	switch cfg.Store.Backend {
	case StoreBackendSQL:
		if cfg.Database.Driver != DriverMySQL && cfg.Database.Driver != DriverSQLite {
			return fmt.Errorf("unsupported DB_DRIVER %q", cfg.Database.Driver)
		}
	case StoreBackendMongo:
	default:
		return fmt.Errorf("unsupported STORE_BACKEND %q", cfg.Store.Backend)
	}

	if cfg.Email.Enabled && (cfg.Email.FromEmail == "" || cfg.Email.ToEmail == "") {
		return fmt.Errorf("FROM_EMAIL and TO_EMAIL are required when email is enabled")
	}
	return nil
}

func (cfg *Config) DSN() string {
	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == "" {
		cfg.Database.Port = "3306"
	}

	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		cfg.Database.Username,
		cfg.Database.Password,
		cfg.Database.Host,
		cfg.Database.Port,
		cfg.Database.DatabaseName,
	)
}

func (cfg *Config) GetMongoURI() string {
	if cfg.MongoDB.Username != "" && cfg.MongoDB.Password != "" {
		return fmt.Sprintf("mongodb://%s:%s@%s:%s/%s?authSource=admin",
			cfg.MongoDB.Username,
			cfg.MongoDB.Password,
			cfg.MongoDB.Host,
			cfg.MongoDB.Port,
			cfg.MongoDB.Database,
		)
	}
	return fmt.Sprintf("mongodb://%s:%s/%s", cfg.MongoDB.Host, cfg.MongoDB.Port, cfg.MongoDB.Database)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return n
}

func getEnvAsBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	switch strings.ToLower(value) {
	case "1", "true", "yes":
		return true
	case "0", "false", "no":
		return false
	}
	return defaultValue
}
