package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/google/uuid"
	"github.com/spf13/viper"
)

// Config holds all application configuration in a structured way.
type Config struct {
	App        AppConfig
	Backend    BackendConfig
	Supervisor SupervisorConfig
	Bridge     BridgeConfig
	Dashboard  DashboardConfig
	Paths      PathsConfig
}

type AppConfig struct {
	Name      string
	Version   string
	Debug     bool
	LogFormat string
}

// BackendConfig describes how to start and reach the automation backend.
type BackendConfig struct {
	Command        string
	Args           []string
	Dir            string
	Host           string
	Port           int
	RequestTimeout time.Duration
}

func (b BackendConfig) Address() string {
	return fmt.Sprintf("http://%s:%d", b.Host, b.Port)
}

type SupervisorConfig struct {
	ReadyMarkers   []string
	LaunchTimeout  time.Duration
	HealthInterval time.Duration
	HealthAttempts int
	ShutdownGrace  time.Duration
	OutputBuffer   int
}

type BridgeConfig struct {
	Host string
	// Port 0 picks a free port; the chosen address is printed at startup.
	Port           int
	Token          string
	AllowedOrigins []string
	MaxUploadSize  int64
	RateLimit      int
}

func (b BridgeConfig) ListenAddress() string {
	return fmt.Sprintf("%s:%d", b.Host, b.Port)
}

type DashboardConfig struct {
	RefreshInterval time.Duration
	ActivityLimit   int
}

type PathsConfig struct {
	BaseDir  string
	HealthDB string
}

// Global provides access to the loaded configuration.
var Global *Config

const EnvPrefix = "SALESBOT"

// SetDefaults registers every key with its default so that env overrides work
// for keys that never appear in a config file.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "Sales Automation Bot")
	v.SetDefault("app.version", "v1.0.0")
	v.SetDefault("app.debug", false)
	v.SetDefault("app.log_format", "text")

	v.SetDefault("backend.command", "python")
	v.SetDefault("backend.args", []string{"api/app.py"})
	v.SetDefault("backend.dir", "")
	v.SetDefault("backend.host", "127.0.0.1")
	v.SetDefault("backend.port", 5000)
	v.SetDefault("backend.request_timeout", 10*time.Second)

	v.SetDefault("supervisor.ready_markers", []string{"FLASK_API_READY", "Running on"})
	v.SetDefault("supervisor.launch_timeout", 10*time.Second)
	v.SetDefault("supervisor.health_interval", time.Second)
	v.SetDefault("supervisor.health_attempts", 30)
	v.SetDefault("supervisor.shutdown_grace", 5*time.Second)
	v.SetDefault("supervisor.output_buffer", 200)

	v.SetDefault("bridge.host", "127.0.0.1")
	v.SetDefault("bridge.port", 0)
	v.SetDefault("bridge.token", "")
	v.SetDefault("bridge.allowed_origins", []string{"http://localhost:3000", "http://localhost:5173"})
	v.SetDefault("bridge.max_upload_size", int64(100<<20))
	v.SetDefault("bridge.rate_limit", 600)

	v.SetDefault("dashboard.refresh_interval", 30*time.Second)
	v.SetDefault("dashboard.activity_limit", 10)

	v.SetDefault("paths.base_dir", "storages")
	v.SetDefault("paths.health_db", "")
}

// NewViper returns a viper instance wired for SALESBOT_* env vars and an
// optional salesbot.{yaml,toml,json} in the working directory.
func NewViper() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	v.SetConfigName("salesbot")
	v.AddConfigPath(".")
	return v
}

// ReadConfigFile loads the optional config file. A missing file is not an error.
func ReadConfigFile(v *viper.Viper) error {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return err
	}
	return nil
}

// LoadConfig builds the typed configuration from v and validates it.
func LoadConfig(v *viper.Viper) (*Config, error) {
	baseDir := v.GetString("paths.base_dir")
	healthDB := v.GetString("paths.health_db")
	if healthDB == "" {
		healthDB = filepath.Join(baseDir, "health.db")
	}

	cfg := &Config{
		App: AppConfig{
			Name:      v.GetString("app.name"),
			Version:   v.GetString("app.version"),
			Debug:     v.GetBool("app.debug"),
			LogFormat: strings.ToLower(v.GetString("app.log_format")),
		},
		Backend: BackendConfig{
			Command:        v.GetString("backend.command"),
			Args:           getList(v, "backend.args"),
			Dir:            v.GetString("backend.dir"),
			Host:           v.GetString("backend.host"),
			Port:           v.GetInt("backend.port"),
			RequestTimeout: v.GetDuration("backend.request_timeout"),
		},
		Supervisor: SupervisorConfig{
			ReadyMarkers:   getList(v, "supervisor.ready_markers"),
			LaunchTimeout:  v.GetDuration("supervisor.launch_timeout"),
			HealthInterval: v.GetDuration("supervisor.health_interval"),
			HealthAttempts: v.GetInt("supervisor.health_attempts"),
			ShutdownGrace:  v.GetDuration("supervisor.shutdown_grace"),
			OutputBuffer:   v.GetInt("supervisor.output_buffer"),
		},
		Bridge: BridgeConfig{
			Host:           v.GetString("bridge.host"),
			Port:           v.GetInt("bridge.port"),
			Token:          v.GetString("bridge.token"),
			AllowedOrigins: getList(v, "bridge.allowed_origins"),
			MaxUploadSize:  v.GetInt64("bridge.max_upload_size"),
			RateLimit:      v.GetInt("bridge.rate_limit"),
		},
		Dashboard: DashboardConfig{
			RefreshInterval: v.GetDuration("dashboard.refresh_interval"),
			ActivityLimit:   v.GetInt("dashboard.activity_limit"),
		},
		Paths: PathsConfig{
			BaseDir:  baseDir,
			HealthDB: healthDB,
		},
	}

	if cfg.Bridge.Token == "" {
		cfg.Bridge.Token = uuid.NewString()
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	Global = cfg
	return cfg, nil
}

func (c *Config) Validate() error {
	return validation.Errors{
		"app.log_format": validation.Validate(c.App.LogFormat, validation.In("text", "json")),
		"backend": validation.ValidateStruct(&c.Backend,
			validation.Field(&c.Backend.Command, validation.Required),
			validation.Field(&c.Backend.Host, validation.Required, is.Host),
			validation.Field(&c.Backend.Port, validation.Required, validation.Min(1), validation.Max(65535)),
			validation.Field(&c.Backend.RequestTimeout, validation.Required),
		),
		"supervisor": validation.ValidateStruct(&c.Supervisor,
			validation.Field(&c.Supervisor.ReadyMarkers, validation.Required),
			validation.Field(&c.Supervisor.LaunchTimeout, validation.Required),
			validation.Field(&c.Supervisor.HealthInterval, validation.Required),
			validation.Field(&c.Supervisor.HealthAttempts, validation.Required, validation.Min(1)),
			validation.Field(&c.Supervisor.ShutdownGrace, validation.Required),
		),
		"bridge": validation.ValidateStruct(&c.Bridge,
			validation.Field(&c.Bridge.Host, validation.Required, validation.In("127.0.0.1", "localhost", "::1").Error("must be a loopback address")),
			validation.Field(&c.Bridge.Port, validation.Min(0), validation.Max(65535)),
			validation.Field(&c.Bridge.Token, validation.Required, validation.Length(16, 0)),
			validation.Field(&c.Bridge.MaxUploadSize, validation.Required, validation.Min(int64(1))),
		),
		"dashboard": validation.ValidateStruct(&c.Dashboard,
			validation.Field(&c.Dashboard.RefreshInterval, validation.Required),
			validation.Field(&c.Dashboard.ActivityLimit, validation.Required, validation.Min(1)),
		),
	}.Filter()
}
