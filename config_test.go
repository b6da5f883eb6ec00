package offboard

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/afs"
	"github.com/viant/afs/file"
)

func TestConfig_Validate(t *testing.T) {
	var testCases = []struct {
		description string
		mutate      func(c *Config)
		expectErr   bool
	}{
		{description: "defaults with secret", mutate: func(c *Config) {}},
		{description: "missing secret", mutate: func(c *Config) { c.Token.Secret = "" }, expectErr: true},
		{description: "secret url", mutate: func(c *Config) { c.Token.Secret, c.Token.SecretURL = "", "mem://localhost/secret" }},
		{description: "fs without base path", mutate: func(c *Config) { c.Store.Driver = StoreFS }, expectErr: true},
		{description: "sqlite without dsn", mutate: func(c *Config) { c.Store.Driver = StoreSQLite }, expectErr: true},
		{description: "unknown store", mutate: func(c *Config) { c.Store.Driver = "mongo" }, expectErr: true},
		{description: "redis without addr", mutate: func(c *Config) { c.Ledger.Driver = LedgerRedis }, expectErr: true},
		{description: "no ledger", mutate: func(c *Config) { c.Ledger.Driver = LedgerNone }},
		{description: "zero workers", mutate: func(c *Config) { c.Notify.Workers = 0 }, expectErr: true},
		{description: "rate without burst", mutate: func(c *Config) { c.HTTP.Burst = 0 }, expectErr: true},
	}
	for _, testCase := range testCases {
		cfg := DefaultConfig()
		cfg.Token.Secret = "secret"
		testCase.mutate(cfg)
		err := cfg.Validate()
		if testCase.expectErr {
			assert.Error(t, err, testCase.description)
			continue
		}
		assert.NoError(t, err, testCase.description)
	}
	var nilConfig *Config
	assert.Error(t, nilConfig.Validate())
}

func TestLoadConfig(t *testing.T) {
	ctx := context.Background()
	fs := afs.New()
	URL := "mem://localhost/offboard/config.yaml"
	document := `baseURL: https://hr.example.com
token:
  secret: s3cr3t
  approvalTTL: 12h
store:
  driver: sqlite
  dsn: ":memory:"
notify:
  workers: 2
  retryDelay: 250ms
  directory:
    hr: hr@example.com
`
	require.NoError(t, fs.Upload(ctx, URL, file.DefaultFileOsMode, bytes.NewReader([]byte(document))))

	cfg, err := LoadConfig(ctx, URL)
	require.NoError(t, err)
	assert.Equal(t, "https://hr.example.com", cfg.BaseURL)
	assert.Equal(t, 12*time.Hour, cfg.Token.ApprovalTTL)
	assert.Equal(t, 72*time.Hour, cfg.Token.FormTTL)
	assert.Equal(t, StoreSQLite, cfg.Store.Driver)
	assert.Equal(t, 2, cfg.Notify.Workers)
	assert.Equal(t, 250*time.Millisecond, cfg.queueConfig().RetryDelay)
	assert.Equal(t, "hr@example.com", cfg.Notify.Directory["hr"])

	secret, err := cfg.Token.LoadSecret(ctx)
	require.NoError(t, err)
	assert.Equal(t, []byte("s3cr3t"), secret)

	srv, err := New(ctx, cfg)
	require.NoError(t, err)
	assert.NoError(t, srv.Shutdown(ctx))

	_, err = LoadConfig(ctx, "mem://localhost/offboard/missing.yaml")
	assert.Error(t, err)

	require.NoError(t, fs.Upload(ctx, URL, file.DefaultFileOsMode, bytes.NewReader([]byte("store:\n  driver: mongo\n"))))
	_, err = LoadConfig(ctx, URL)
	assert.Error(t, err)
}
