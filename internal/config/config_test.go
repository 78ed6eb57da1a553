package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"mentor-api/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:        "localhost",
			Port:        8080,
			Environment: "development",
			LogLevel:    "debug",
		},
		Database: DatabaseConfig{
			Host: "localhost",
			Port: 5432,
			Name: "mentor_api",
			User: "mentor_api_user",
		},
		JWT: JWTConfig{
			Secret:               "test-secret",
			AccessTokenDuration:  "30m",
			RefreshTokenDuration: "168h",
		},
		OAuth2: OAuth2Config{
			DefaultRedirectURL: "http://localhost:3000/oauth2/redirect",
			Providers: []OAuth2ProviderConfig{
				{
					Name:         "GOOGLE",
					ClientID:     "google-client-id",
					ClientSecret: "google-client-secret",
					AuthURL:      "https://accounts.google.com/o/oauth2/v2/auth",
					TokenURL:     "https://oauth2.googleapis.com/token",
					UserInfoURL:  "https://openidconnect.googleapis.com/v1/userinfo",
					RedirectURI:  "http://localhost:8080/login/oauth2/code/google",
					Scopes:       []string{"openid", "email"},
				},
			},
		},
	}
}

func TestConfigValidate_Valid(t *testing.T) {
	assert.NoError(t, validConfig().Validate())
}

func TestConfigValidate_Failures(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{name: "zero port", mutate: func(c *Config) { c.Server.Port = 0 }},
		{name: "port out of range", mutate: func(c *Config) { c.Server.Port = 70000 }},
		{name: "missing db host", mutate: func(c *Config) { c.Database.Host = "" }},
		{name: "missing db name", mutate: func(c *Config) { c.Database.Name = "" }},
		{name: "missing db user", mutate: func(c *Config) { c.Database.User = "" }},
		{name: "missing jwt secret", mutate: func(c *Config) { c.JWT.Secret = "" }},
		{name: "bad access duration", mutate: func(c *Config) { c.JWT.AccessTokenDuration = "thirty minutes" }},
		{name: "bad refresh duration", mutate: func(c *Config) { c.JWT.RefreshTokenDuration = "" }},
		{name: "unknown provider", mutate: func(c *Config) { c.OAuth2.Providers[0].Name = "MYSPACE" }},
		{name: "provider without client id", mutate: func(c *Config) { c.OAuth2.Providers[0].ClientID = "" }},
		{name: "provider without client secret", mutate: func(c *Config) { c.OAuth2.Providers[0].ClientSecret = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestConfigHeaderDefaults(t *testing.T) {
	cfg := validConfig()
	assert.Equal(t, "Authorization", cfg.AccessTokenHeader())
	assert.Equal(t, "Authorization-Refresh", cfg.RefreshTokenHeader())

	cfg.JWT.AccessTokenHeader = "X-Access-Token"
	cfg.JWT.RefreshTokenHeader = "X-Refresh-Token"
	assert.Equal(t, "X-Access-Token", cfg.AccessTokenHeader())
	assert.Equal(t, "X-Refresh-Token", cfg.RefreshTokenHeader())
}

func TestConfigProviderConfigs(t *testing.T) {
	cfg := validConfig()

	providers := cfg.ProviderConfigs()
	require.Len(t, providers, 1)

	google, ok := providers[models.SocialGoogle]
	require.True(t, ok)
	assert.Equal(t, "google-client-id", google.ClientID)
	assert.Equal(t, []string{"openid", "email"}, google.Scopes)
}

func TestGetDatabaseDSN(t *testing.T) {
	cfg := validConfig()
	cfg.Database.Password = "secret"
	cfg.Database.SSLMode = "disable"

	dsn := cfg.GetDatabaseDSN()
	assert.Contains(t, dsn, "host=localhost")
	assert.Contains(t, dsn, "dbname=mentor_api")
	assert.Contains(t, dsn, "sslmode=disable")
}

func TestParseDurationOr(t *testing.T) {
	assert.Equal(t, 30*time.Minute, ParseDurationOr("30m", time.Second))
	assert.Equal(t, time.Second, ParseDurationOr("", time.Second))
	assert.Equal(t, time.Second, ParseDurationOr("not-a-duration", time.Second))
}

func TestGenerateConfigFromTemplate(t *testing.T) {
	dir := t.TempDir()

	templatePath := filepath.Join(dir, "config.hcl.tmpl")
	template := `server {
  host = {{var "api_server_host" "localhost" false}}
  port = {{var "api_server_port" 8080 false}}
}

jwt {
  secret = {{var "jwt_secret" "" true}}
}
`
	require.NoError(t, os.WriteFile(templatePath, []byte(template), 0644))

	outputPath := filepath.Join(dir, "generated.hcl")

	t.Run("with provided vars", func(t *testing.T) {
		err := GenerateConfigFromTemplate(templatePath, outputPath, map[string]interface{}{
			"api_server_host": "0.0.0.0",
			"api_server_port": 9090,
			"jwt_secret":      "generated-secret",
		})
		require.NoError(t, err)

		content, err := os.ReadFile(outputPath)
		require.NoError(t, err)

		assert.Contains(t, string(content), `host = "0.0.0.0"`)
		assert.Contains(t, string(content), "port = 9090")
		assert.Contains(t, string(content), `secret = "generated-secret"`)
	})

	t.Run("required var missing", func(t *testing.T) {
		err := GenerateConfigFromTemplate(templatePath, outputPath, map[string]interface{}{})
		require.NoError(t, err)

		content, err := os.ReadFile(outputPath)
		require.NoError(t, err)

		// Дефолти підставлені, обов'язкове значення позначене
		assert.Contains(t, string(content), `host = "localhost"`)
		assert.Contains(t, string(content), "port = 8080")
		assert.Contains(t, string(content), `"REQUIRED_VALUE_NOT_SET"`)
	})
}

func TestLoadConfig_DecodesHCL(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "test.hcl")

	hcl := `server {
  host          = "localhost"
  port          = 8080
  environment   = "development"
  log_level     = "debug"
  log_format    = "text"
  read_timeout  = "30s"
  write_timeout = "30s"
  idle_timeout  = "120s"
}

database {
  driver   = "postgres"
  host     = "localhost"
  port     = 5432
  name     = "mentor_api"
  user     = "mentor_api_user"
  password = "secret"
  ssl_mode = "disable"

  max_open_connections    = 25
  max_idle_connections    = 5
  connection_max_lifetime = "5m"
}

jwt {
  secret                 = "test-secret"
  access_token_duration  = "30m"
  refresh_token_duration = "168h"
  access_token_header    = "Authorization"
  refresh_token_header   = "Authorization-Refresh"
}

oauth2 {
  default_redirect_url = "http://localhost:3000/oauth2/redirect"

  provider "GOOGLE" {
    client_id     = "google-client-id"
    client_secret = "google-client-secret"
    auth_url      = "https://accounts.google.com/o/oauth2/v2/auth"
    token_url     = "https://oauth2.googleapis.com/token"
    userinfo_url  = "https://openidconnect.googleapis.com/v1/userinfo"
    redirect_uri  = "http://localhost:8080/login/oauth2/code/google"
    scopes        = ["openid", "email"]
  }
}

security {
  cors {
    allowed_origins   = ["http://localhost:3000"]
    allowed_methods   = ["GET", "POST"]
    allowed_headers   = ["Content-Type", "Authorization"]
    allow_credentials = true
    max_age           = 3600
  }

  rate_limit {
    enabled             = false
    requests_per_minute = 100
    burst               = 10
  }
}

redis {
  enabled     = false
  host        = "localhost"
  port        = 6379
  password    = ""
  database    = 0
  max_retries = 3
  pool_size   = 10
}
`
	require.NoError(t, os.WriteFile(configPath, []byte(hcl), 0644))

	cfg, err := LoadConfig(configPath)
	require.NoError(t, err)

	assert.Equal(t, "localhost:8080", cfg.GetAddress())
	assert.True(t, cfg.IsDevelopment())
	assert.Equal(t, "test-secret", cfg.JWT.Secret)
	require.Len(t, cfg.OAuth2.Providers, 1)
	assert.Equal(t, "GOOGLE", cfg.OAuth2.Providers[0].Name)
	assert.False(t, cfg.Redis.Enabled)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig("/nonexistent/config.hcl")
	assert.Error(t, err)
}
