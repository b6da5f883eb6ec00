package offboard

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/viant/afs"
	"github.com/viant/offboard/service/messaging/memory"
	"github.com/viant/scy"
	"gopkg.in/yaml.v3"
)

const (
	StoreMemory   = "memory"
	StoreFS       = "fs"
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"

	LedgerNone   = "none"
	LedgerMemory = "memory"
	LedgerRedis  = "redis"
)

// Config is a serialisable representation of the service configuration. It
// can be populated from YAML or JSON; DefaultConfig supplies every value a
// document leaves out.
type Config struct {
	BaseURL string        `json:"baseURL" yaml:"baseURL"`
	Token   TokenConfig   `json:"token" yaml:"token"`
	Store   StoreConfig   `json:"store" yaml:"store"`
	Ledger  LedgerConfig  `json:"ledger" yaml:"ledger"`
	Notify  NotifyConfig  `json:"notify" yaml:"notify"`
	HTTP    HTTPConfig    `json:"http" yaml:"http"`
	Tracing TracingConfig `json:"tracing" yaml:"tracing"`
}

// TokenConfig holds the signing secret and token lifetimes. The secret is
// either inline or loaded from a scy secret URL.
type TokenConfig struct {
	Secret      string        `json:"secret,omitempty" yaml:"secret,omitempty"`
	SecretURL   string        `json:"secretURL,omitempty" yaml:"secretURL,omitempty"`
	SecretKey   string        `json:"secretKey,omitempty" yaml:"secretKey,omitempty"`
	ApprovalTTL time.Duration `json:"approvalTTL" yaml:"approvalTTL"`
	FormTTL     time.Duration `json:"formTTL" yaml:"formTTL"`
}

// StoreConfig selects the submission repository
type StoreConfig struct {
	Driver   string `json:"driver" yaml:"driver"`
	DSN      string `json:"dsn,omitempty" yaml:"dsn,omitempty"`
	BasePath string `json:"basePath,omitempty" yaml:"basePath,omitempty"`
}

// LedgerConfig selects the consumed form token ledger
type LedgerConfig struct {
	Driver   string `json:"driver" yaml:"driver"`
	Addr     string `json:"addr,omitempty" yaml:"addr,omitempty"`
	Password string `json:"password,omitempty" yaml:"password,omitempty"`
	DB       int    `json:"db,omitempty" yaml:"db,omitempty"`
}

// NotifyConfig controls notification delivery
type NotifyConfig struct {
	Workers      int               `json:"workers" yaml:"workers"`
	QueueBuffer  int               `json:"queueBuffer" yaml:"queueBuffer"`
	MaxRetries   int               `json:"maxRetries" yaml:"maxRetries"`
	RetryDelay   time.Duration     `json:"retryDelay" yaml:"retryDelay"`
	Directory    map[string]string `json:"directory,omitempty" yaml:"directory,omitempty"`
	DirectoryURL string            `json:"directoryURL,omitempty" yaml:"directoryURL,omitempty"`
}

// HTTPConfig controls the link endpoint; RPS <= 0 disables rate limiting
type HTTPConfig struct {
	Addr  string  `json:"addr" yaml:"addr"`
	RPS   float64 `json:"rps" yaml:"rps"`
	Burst int     `json:"burst" yaml:"burst"`
}

// TracingConfig enables OpenTelemetry tracing; empty OutputFile means stdout
type TracingConfig struct {
	Enabled        bool   `json:"enabled" yaml:"enabled"`
	ServiceName    string `json:"serviceName" yaml:"serviceName"`
	ServiceVersion string `json:"serviceVersion" yaml:"serviceVersion"`
	OutputFile     string `json:"outputFile,omitempty" yaml:"outputFile,omitempty"`
}

// DefaultConfig returns a Config populated with the package defaults. Callers
// still have to supply a secret.
func DefaultConfig() *Config {
	queue := memory.DefaultConfig()
	return &Config{
		BaseURL: "http://localhost:8080",
		Token: TokenConfig{
			ApprovalTTL: 24 * time.Hour,
			FormTTL:     72 * time.Hour,
		},
		Store:  StoreConfig{Driver: StoreMemory},
		Ledger: LedgerConfig{Driver: LedgerMemory},
		Notify: NotifyConfig{
			Workers:     4,
			QueueBuffer: queue.QueueBuffer,
			MaxRetries:  queue.MaxRetries,
			RetryDelay:  queue.RetryDelay,
		},
		HTTP:    HTTPConfig{Addr: ":8080", RPS: 10, Burst: 20},
		Tracing: TracingConfig{ServiceName: "offboard", ServiceVersion: "1.0.0"},
	}
}

// Validate returns aggregated error describing invalid settings or nil.
func (c *Config) Validate() error {
	if c == nil {
		return fmt.Errorf("config was nil")
	}
	var errs []error
	if c.BaseURL == "" {
		errs = append(errs, fmt.Errorf("baseURL was empty"))
	}
	if c.Token.Secret == "" && c.Token.SecretURL == "" {
		errs = append(errs, fmt.Errorf("token.secret or token.secretURL is required"))
	}
	if c.Token.ApprovalTTL < 0 || c.Token.FormTTL < 0 {
		errs = append(errs, fmt.Errorf("token TTLs must not be negative"))
	}
	switch c.Store.Driver {
	case StoreMemory:
	case StoreFS:
		if c.Store.BasePath == "" {
			errs = append(errs, fmt.Errorf("store.basePath is required for %v store", c.Store.Driver))
		}
	case StoreSQLite, StorePostgres:
		if c.Store.DSN == "" {
			errs = append(errs, fmt.Errorf("store.dsn is required for %v store", c.Store.Driver))
		}
	default:
		errs = append(errs, fmt.Errorf("unsupported store.driver: %q", c.Store.Driver))
	}
	switch c.Ledger.Driver {
	case "", LedgerNone, LedgerMemory:
	case LedgerRedis:
		if c.Ledger.Addr == "" {
			errs = append(errs, fmt.Errorf("ledger.addr is required for redis ledger"))
		}
	default:
		errs = append(errs, fmt.Errorf("unsupported ledger.driver: %q", c.Ledger.Driver))
	}
	if c.Notify.Workers <= 0 {
		errs = append(errs, fmt.Errorf("notify.workers must be > 0"))
	}
	if c.Notify.MaxRetries < 0 {
		errs = append(errs, fmt.Errorf("notify.maxRetries must not be negative"))
	}
	if c.HTTP.RPS > 0 && c.HTTP.Burst <= 0 {
		errs = append(errs, fmt.Errorf("http.burst must be > 0 when rate limiting"))
	}
	return errors.Join(errs...)
}

func (c *Config) queueConfig() memory.Config {
	ret := memory.DefaultConfig()
	if c.Notify.QueueBuffer > 0 {
		ret.QueueBuffer = c.Notify.QueueBuffer
	}
	if c.Notify.RetryDelay > 0 {
		ret.RetryDelay = c.Notify.RetryDelay
	}
	ret.MaxRetries = c.Notify.MaxRetries
	return ret
}

// LoadSecret returns the inline secret or loads it from SecretURL with scy
func (c *TokenConfig) LoadSecret(ctx context.Context) ([]byte, error) {
	if c.Secret != "" {
		return []byte(c.Secret), nil
	}
	if c.SecretURL == "" {
		return nil, fmt.Errorf("token secret was not configured")
	}
	secret, err := scy.New().Load(ctx, scy.NewResource(nil, c.SecretURL, c.SecretKey))
	if err != nil {
		return nil, fmt.Errorf("failed to load token secret from %s: %w", c.SecretURL, err)
	}
	return []byte(secret.String()), nil
}

// LoadConfig reads a YAML (or JSON) document from any afs URL on top of DefaultConfig
func LoadConfig(ctx context.Context, URL string) (*Config, error) {
	data, err := afs.New().DownloadWithURL(ctx, URL)
	if err != nil {
		return nil, fmt.Errorf("failed to load config %v: %w", URL, err)
	}
	ret := DefaultConfig()
	if err = yaml.Unmarshal(data, ret); err != nil {
		return nil, fmt.Errorf("failed to decode config %v: %w", URL, err)
	}
	if err = ret.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %v: %w", URL, err)
	}
	return ret, nil
}
