// Package config loads the service configuration from a yaml file with
// environment variable overrides.
package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/pkg/errors"
)

const defaultPath = "."

type Config struct {
	Env struct {
		Env         string `json:"env" yaml:"env"`
		ServiceName string `json:"serviceName" yaml:"serviceName"`
		Debug       bool   `json:"debug" yaml:"debug"`
		Log         Log    `json:"log" yaml:"log"`
	} `json:"env" yaml:"env"`

	HTTP struct {
		Port     int `json:"port" yaml:"port"`
		Timeouts struct {
			ReadTimeout       time.Duration `json:"readTimeout" yaml:"readTimeout"`
			ReadHeaderTimeout time.Duration `json:"readHeaderTimeout" yaml:"readHeaderTimeout"`
			WriteTimeout      time.Duration `json:"writeTimeout" yaml:"writeTimeout"`
			IdleTimeout       time.Duration `json:"idleTimeout" yaml:"idleTimeout"`
		} `json:"timeouts" yaml:"timeouts"`
	} `json:"http" yaml:"http"`

	// Sede is the central loyalty registry this service verifies
	// identities against.
	Sede *SedeConfig `json:"sede" yaml:"sede"`

	// SMTP carries the transactional mail transport settings.
	SMTP *SMTPConfig `json:"smtp" yaml:"smtp"`

	// Client is the public-facing frontend used to build email links.
	Client *ClientConfig `json:"client" yaml:"client"`

	// Token configures confirmation token storage and retention.
	Token *TokenConfig `json:"token" yaml:"token"`

	// Cache configures the startup warm-up sync.
	Cache *CacheConfig `json:"cache" yaml:"cache"`

	// QRCode configures card QR rendering.
	QRCode *QRCodeConfig `json:"qrcode" yaml:"qrcode"`

	// DefaultStore overrides the sentinel branch code when set.
	DefaultStore string `json:"defaultStore" yaml:"defaultStore"`
}

type Log struct {
	Pretty bool   `json:"pretty" yaml:"pretty"`
	Level  string `json:"level" yaml:"level"`
}

// SedeConfig defines how to reach the central registry endpoint.
type SedeConfig struct {
	Endpoint   string        `json:"endpoint" yaml:"endpoint"`
	DBName     string        `json:"dbName" yaml:"dbName"`
	CalledFrom string        `json:"calledFrom" yaml:"calledFrom"`
	Timeout    time.Duration `json:"timeout" yaml:"timeout"`
}

// SMTPConfig defines the outbound mail server connection.
type SMTPConfig struct {
	Host       string `json:"host" yaml:"host"`
	Port       int    `json:"port" yaml:"port"`
	Sender     string `json:"sender" yaml:"sender"`
	SenderName string `json:"senderName" yaml:"senderName"`
	Password   string `json:"password" yaml:"password"`
}

// ClientConfig defines the client-facing host used in email links.
type ClientConfig struct {
	BaseURL string `json:"baseUrl" yaml:"baseUrl"`
}

// TokenConfig defines token storage backend and retention window.
type TokenConfig struct {
	// Backend selects "file" (one blob per token under Dir) or "memory".
	Backend   string        `json:"backend" yaml:"backend"`
	Dir       string        `json:"dir" yaml:"dir"`
	Retention time.Duration `json:"retention" yaml:"retention"`
}

// CacheConfig defines identity cache behaviour at startup.
type CacheConfig struct {
	WarmupEnabled bool `json:"warmupEnabled" yaml:"warmupEnabled"`
}

// QRCodeConfig defines QR code generation configuration.
type QRCodeConfig struct {
	Size                 int    `json:"size" yaml:"size"`
	ErrorCorrectionLevel string `json:"errorCorrectionLevel" yaml:"errorCorrectionLevel"`
}

// LoadWithEnv loads .yaml files through koanf, layering environment
// variables on top (SEDE_ENDPOINT overrides sede.endpoint and so on).
func LoadWithEnv[T any](currEnv string, configPath ...string) (*T, error) {
	cfg := new(T)
	koanfInstance := koanf.New(".")

	searchPaths := []string{defaultPath}
	if len(configPath) != 0 {
		pwd, err := os.Getwd()
		if err != nil {
			return nil, errors.Wrap(err, "os.Getwd")
		}
		for _, path := range configPath {
			searchPaths = append(searchPaths, filepath.Join(pwd, path))
		}
	}

	var configFile string
	var found bool
	for _, path := range searchPaths {
		candidate := filepath.Join(path, currEnv+".yaml")
		if _, err := os.Stat(candidate); err == nil {
			configFile = candidate
			found = true

			break
		}
	}

	if !found {
		return nil, errors.Errorf("config file %s.yaml not found in any search path", currEnv)
	}

	if err := koanfInstance.Load(file.Provider(configFile), yaml.Parser()); err != nil {
		return nil, errors.Wrapf(err, "read %s config failed", currEnv)
	}

	if err := koanfInstance.Load(env.Provider(".", env.Opt{
		TransformFunc: func(k, v string) (string, any) {
			return strings.ReplaceAll(strings.ToLower(k), "_", "."), v
		},
	}), nil); err != nil {
		return nil, errors.Wrap(err, "load env variables failed")
	}

	if err := koanfInstance.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           cfg,
			WeaklyTypedInput: true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
			),
			MatchName: func(mapKey, fieldName string) bool {
				return strings.EqualFold(mapKey, fieldName)
			},
		},
	}); err != nil {
		return nil, errors.Wrapf(err, "unmarshal %s config failed", currEnv)
	}

	return cfg, nil
}

// New loads the service configuration and applies defaults.
func New() (*Config, error) {
	cfg, err := LoadWithEnv[Config]("config", "config", "../config", "../../config")
	if err != nil {
		return nil, err
	}

	applyDefaults(cfg)

	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Sede == nil {
		cfg.Sede = &SedeConfig{}
	}
	if cfg.Sede.Timeout <= 0 {
		cfg.Sede.Timeout = 10 * time.Second
	}
	if cfg.Sede.CalledFrom == "" {
		cfg.Sede.CalledFrom = "APP FIDELITY"
	}

	if cfg.Token == nil {
		cfg.Token = &TokenConfig{}
	}
	if cfg.Token.Backend == "" {
		cfg.Token.Backend = "file"
	}
	if cfg.Token.Dir == "" {
		cfg.Token.Dir = "token"
	}
	if cfg.Token.Retention <= 0 {
		cfg.Token.Retention = 15 * time.Minute
	}

	if cfg.Cache == nil {
		cfg.Cache = &CacheConfig{WarmupEnabled: true}
	}

	if cfg.QRCode == nil {
		cfg.QRCode = &QRCodeConfig{Size: 256, ErrorCorrectionLevel: "Q"}
	}
}
