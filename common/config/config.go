package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/arkivo/depositor/common/models"
)

// Config holds all service configuration
type Config struct {
	Service    ServiceConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	Repository RepositoryConfig
	Deposit    DepositConfig
}

// ServiceConfig holds service-specific settings
type ServiceConfig struct {
	Name        string
	Port        int
	Environment string
	LogLevel    string
	LogFormat   string
}

// DatabaseConfig holds Postgres connection settings for the inventory store
type DatabaseConfig struct {
	Host        string
	Port        int
	Database    string
	User        string
	Password    string
	MaxConns    int
	MinConns    int
	MaxIdleTime time.Duration
	MaxLifetime time.Duration
}

// RedisConfig holds settings for the remote-existence cache
type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	TTL      time.Duration
}

// RepositoryConfig holds remote repository node settings
type RepositoryConfig struct {
	BaseURL   string
	AuthToken string
	Timeout   time.Duration

	// Identifier scheme: "uuid" mints locally, anything else is requested
	// from the repository node
	IdentifierScheme string
}

// DepositConfig holds deposit pipeline settings
type DepositConfig struct {
	// Root of the local file tree referenced by inventory paths
	BasePath string

	// Alternate content location read during version updates
	UpdatePath string

	// Base URI prepended to identifiers to form dereferenceable URIs
	ResolveBase string

	Submitter    string
	RightsHolder string

	// Clear the replication policy on every descriptor. Workaround for
	// repository tiers that reject explicit policies; keep configurable.
	ClearReplication bool

	// Access rules attached to every descriptor, parsed from
	// "subject=perm+perm,subject=perm" form
	AccessRules []models.AccessRule

	// Optional RFC 6902 patch applied to every descriptor document
	DescriptorPatch string

	// Optional CEL expression gating which ready rows a bulk run processes
	Selector string
}

// Load loads configuration from environment variables
func Load(serviceName string) (*Config, error) {
	cfg := &Config{
		Service: ServiceConfig{
			Name:        serviceName,
			Port:        getEnvInt("PORT", 8080),
			Environment: getEnv("ENVIRONMENT", "development"),
			LogLevel:    getEnv("LOG_LEVEL", "info"),
			LogFormat:   getEnv("LOG_FORMAT", "text"),
		},
		Database: DatabaseConfig{
			Host:        getEnv("POSTGRES_HOST", "localhost"),
			Port:        getEnvInt("POSTGRES_PORT", 5432),
			Database:    getEnv("POSTGRES_DB", "depositor"),
			User:        getEnv("POSTGRES_USER", "depositor"),
			Password:    getEnv("POSTGRES_PASSWORD", "depositor"),
			MaxConns:    getEnvInt("POSTGRES_MAX_CONNS", 20),
			MinConns:    getEnvInt("POSTGRES_MIN_CONNS", 2),
			MaxIdleTime: getEnvDuration("POSTGRES_MAX_IDLE_TIME", 30*time.Minute),
			MaxLifetime: getEnvDuration("POSTGRES_MAX_LIFETIME", 1*time.Hour),
		},
		Redis: RedisConfig{
			Enabled:  getEnvBool("REDIS_ENABLED", false),
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnvInt("REDIS_PORT", 6379),
			Password: getEnv("REDIS_PASSWORD", ""),
			TTL:      getEnvDuration("REDIS_EXISTS_TTL", 24*time.Hour),
		},
		Repository: RepositoryConfig{
			BaseURL:          getEnv("REPOSITORY_URL", "http://localhost:9000"),
			AuthToken:        getEnv("REPOSITORY_TOKEN", ""),
			Timeout:          getEnvDuration("REPOSITORY_TIMEOUT", 60*time.Second),
			IdentifierScheme: getEnv("IDENTIFIER_SCHEME", "uuid"),
		},
		Deposit: DepositConfig{
			BasePath:         getEnv("DEPOSIT_BASE_PATH", "."),
			UpdatePath:       getEnv("DEPOSIT_UPDATE_PATH", ""),
			ResolveBase:      getEnv("RESOLVE_BASE", "http://localhost:9000/resolve/"),
			Submitter:        getEnv("DEPOSIT_SUBMITTER", ""),
			RightsHolder:     getEnv("DEPOSIT_RIGHTS_HOLDER", ""),
			ClearReplication: getEnvBool("CLEAR_REPLICATION", true),
			AccessRules:      parseAccessRules(getEnv("ACCESS_RULES", "public=read")),
			DescriptorPatch:  getEnv("DESCRIPTOR_PATCH", ""),
			Selector:         getEnv("DEPOSIT_SELECTOR", ""),
		},
	}

	return cfg, cfg.Validate()
}

// Validate checks if configuration is valid
func (c *Config) Validate() error {
	if c.Service.Port < 1 || c.Service.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Service.Port)
	}

	if c.Repository.BaseURL == "" {
		return fmt.Errorf("repository URL is required")
	}

	if c.Deposit.ResolveBase == "" {
		return fmt.Errorf("resolve base URI is required")
	}

	if c.Database.MaxConns < c.Database.MinConns {
		return fmt.Errorf("max_conns must be >= min_conns")
	}

	return nil
}

// DatabaseURL returns the PostgreSQL connection string
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Database,
	)
}

// RedisAddr returns the host:port address of the existence cache
func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Redis.Host, c.Redis.Port)
}

// parseAccessRules parses "subject=perm+perm,subject=perm" into rules.
// Malformed entries are skipped.
func parseAccessRules(raw string) []models.AccessRule {
	var rules []models.AccessRule
	for _, entry := range strings.Split(raw, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		parts := strings.SplitN(entry, "=", 2)
		if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
			continue
		}
		rules = append(rules, models.AccessRule{
			Subject:     parts[0],
			Permissions: strings.Split(parts[1], "+"),
		})
	}
	return rules
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
