package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

//go:embed config.yml
var embeddedConfig []byte

type PostgresConfig struct {
	Host               string        `mapstructure:"host"`
	Password           string        `mapstructure:"password"`
	Port               string        `mapstructure:"port"`
	Username           string        `mapstructure:"username"`
	DB                 string        `mapstructure:"db"`
	SSLMode            string        `mapstructure:"sslmode"`
	MaxConns           int32         `mapstructure:"maxConns"`
	MaxConnWaitingTime time.Duration `mapstructure:"maxConnWaitingTime"`
}

// JWTConfig is process level; nothing about signing is taken from requests.
type JWTConfig struct {
	SecretKey             string `mapstructure:"secretKey"`
	Algorithm             string `mapstructure:"algorithm"`
	AccessTokenTTLMinutes int    `mapstructure:"accessTokenTTLMinutes"`
}

// AccessTokenTTL returns the configured token lifetime.
func (j JWTConfig) AccessTokenTTL() time.Duration {
	return time.Duration(j.AccessTokenTTLMinutes) * time.Minute
}

type SecurityConfig struct {
	BcryptCost         int           `mapstructure:"bcryptCost"`
	LoginRateLimit     string        `mapstructure:"loginRateLimit"`
	LockoutMaxAttempts int           `mapstructure:"lockoutMaxAttempts"`
	LockoutWindow      time.Duration `mapstructure:"lockoutWindow"`
}

type ObservabilityConfig struct {
	MetricsPort string `mapstructure:"metricsPort"`
	ServiceName string `mapstructure:"serviceName"`
}

type Config struct {
	Mode   string `mapstructure:"mode"`
	Server struct {
		HTTPPort string        `mapstructure:"httpPort"`
		Timeout  time.Duration `mapstructure:"httpTimeout"`
	} `mapstructure:"server"`
	Repositories struct {
		Postgres PostgresConfig `mapstructure:"postgres"`
	} `mapstructure:"repositories"`
	JWT           JWTConfig           `mapstructure:"jwt"`
	Security      SecurityConfig      `mapstructure:"security"`
	Observability ObservabilityConfig `mapstructure:"observability"`
	CORS          struct {
		AllowedOrigins []string `mapstructure:"allowedOrigins"`
	} `mapstructure:"cors"`
}

// InitConfig loads config.yml from the usual locations, falling back to the
// embedded copy. Environment variables override file values, e.g.
// JWT_SECRETKEY or REPOSITORIES_POSTGRES_HOST.
func InitConfig() (Config, error) {
	var config Config
	v := viper.New()

	v.AddConfigPath(".")
	v.AddConfigPath("config")
	v.AddConfigPath("/app/config")

	v.SetConfigName("config")
	v.SetConfigType("yml")

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	err := v.ReadInConfig()
	if err != nil {
		fmt.Printf("Warning: Failed to find file-based config: %s. Falling back to embedded config.\n", err)
		if err = v.ReadConfig(bytes.NewReader(embeddedConfig)); err != nil {
			return Config{}, fmt.Errorf("failed to read embedded config: %w", err)
		}
	}

	if err = v.Unmarshal(&config); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err = config.Validate(); err != nil {
		return Config{}, err
	}
	fmt.Println("Successfully loaded app configs...")
	return config, nil
}

// Validate rejects configurations the server cannot start with.
func (c Config) Validate() error {
	if c.JWT.SecretKey == "" {
		return fmt.Errorf("jwt.secretKey must be set")
	}
	switch c.JWT.Algorithm {
	case "HS256", "HS384", "HS512":
	default:
		return fmt.Errorf("jwt.algorithm %q is not a supported HMAC algorithm", c.JWT.Algorithm)
	}
	if c.JWT.AccessTokenTTLMinutes <= 0 {
		return fmt.Errorf("jwt.accessTokenTTLMinutes must be positive, got %d", c.JWT.AccessTokenTTLMinutes)
	}
	return nil
}
