// Package config loads client configuration from the environment, with an
// optional .env file for local development.
package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config is everything the client needs to talk to the platform.
type Config interface {
	AppName() string
	Env() string
	APIBaseURL() string
	// JWTSecret is the shared HMAC secret agreed with the backend; token
	// verification happens entirely offline.
	JWTSecret() []byte
	RequestTimeout() time.Duration
	LivenessInterval() time.Duration
	CredentialsFile() string
}

type viperConfig struct {
	v *viper.Viper
}

var _ Config = (*viperConfig)(nil)

// New builds the configuration: typed defaults, then an optional
// .env.<env> file, then real environment variables (which always win).
func New() (Config, error) {
	v := viper.New()
	v.SetTypeByDefaultValue(true)

	v.SetDefault("appName", "EduHub")
	v.SetDefault("env", "dev")
	v.SetDefault("apiBaseURL", "http://localhost:5000/api")
	v.SetDefault("jwtSecret", "your_secret_key")
	v.SetDefault("requestTimeout", 10*time.Second)
	v.SetDefault("livenessInterval", 30*time.Second)
	v.SetDefault("credentialsFile", defaultCredentialsFile())

	env := strings.ToLower(os.Getenv("EDUHUB_ENV"))
	if env == "" {
		env = "dev"
	}
	v.Set("env", env)

	// Load .env.<env> if present; a missing file is fine.
	dotEnvPath := ".env." + env
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			return nil, err
		}
	}

	v.SetEnvPrefix("EDUHUB")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	return &viperConfig{v: v}, nil
}

func defaultCredentialsFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, "eduhub", "credentials.json")
}

func (c *viperConfig) AppName() string                 { return c.v.GetString("appName") }
func (c *viperConfig) Env() string                     { return c.v.GetString("env") }
func (c *viperConfig) APIBaseURL() string              { return c.v.GetString("apiBaseURL") }
func (c *viperConfig) JWTSecret() []byte               { return []byte(c.v.GetString("jwtSecret")) }
func (c *viperConfig) RequestTimeout() time.Duration   { return c.v.GetDuration("requestTimeout") }
func (c *viperConfig) LivenessInterval() time.Duration { return c.v.GetDuration("livenessInterval") }
func (c *viperConfig) CredentialsFile() string         { return c.v.GetString("credentialsFile") }
