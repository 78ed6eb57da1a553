// API Server для Kubernetes - читає конфігурацію зі змінних середовища
package main

import (
	"log"
	"os"
	"strconv"
	"strings"

	"mentor-api/internal/config"
)

func main() {
	// Читаємо конфігурацію зі змінних середовища
	cfg := loadConfigFromEnv()

	// Запускаємо сервер
	if err := config.StartServer(cfg); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func loadConfigFromEnv() *config.Config {
	// Парсимо порт
	port, err := strconv.Atoi(getEnv("PORT", "8080"))
	if err != nil {
		port = 8080
	}

	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		dbPort = 5432
	}

	cfg := &config.Config{
		Server: config.ServerConfig{
			Host:         getEnv("HOST", "0.0.0.0"),
			Port:         port,
			Environment:  getEnv("MODE", "production"),
			LogLevel:     getEnv("LOG_LEVEL", "info"),
			LogFormat:    getEnv("LOG_FORMAT", "text"),
			ReadTimeout:  getEnv("READ_TIMEOUT", "30s"),
			WriteTimeout: getEnv("WRITE_TIMEOUT", "30s"),
			IdleTimeout:  getEnv("IDLE_TIMEOUT", "120s"),
		},

		Database: config.DatabaseConfig{
			Driver:                getEnv("DB_DRIVER", "postgres"),
			Host:                  getEnv("DB_HOST", "postgres-service"),
			Port:                  dbPort,
			Name:                  getEnv("DB_NAME", "mentor_api"),
			User:                  getEnv("DB_USER", "mentor_api_user"),
			Password:              getEnv("DB_PASSWORD", ""),
			SSLMode:               getEnv("DB_SSL_MODE", "disable"),
			MaxOpenConnections:    10,
			MaxIdleConnections:    5,
			ConnectionMaxLifetime: getEnv("DB_CONN_MAX_LIFETIME", "5m"),
		},

		JWT: config.JWTConfig{
			Secret:               getEnv("JWT_SECRET", "dev-jwt-secret-key"),
			AccessTokenDuration:  getEnv("JWT_ACCESS_DURATION", "30m"),
			RefreshTokenDuration: getEnv("JWT_REFRESH_DURATION", "168h"),
			AccessTokenHeader:    getEnv("JWT_ACCESS_HEADER", "Authorization"),
			RefreshTokenHeader:   getEnv("JWT_REFRESH_HEADER", "Authorization-Refresh"),
		},

		OAuth2: config.OAuth2Config{
			DefaultRedirectURL: getEnv("OAUTH2_REDIRECT_URL", "http://localhost:3000/oauth2/redirect"),
			Providers:          loadProvidersFromEnv(),
		},

		Security: config.SecurityConfig{
			CORS: config.CORSConfig{
				AllowedOrigins: []string{
					"http://localhost:3000", // Local development
					"http://127.0.0.1:3000", // Local development alternative
				},
				AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
				AllowedHeaders: []string{
					"Content-Type",
					"Authorization",
					"Authorization-Refresh",
					"X-Requested-With",
					"Accept",
					"Origin",
					"Access-Control-Request-Method",
					"Access-Control-Request-Headers",
				},
				AllowCredentials: true,
				MaxAge:           3600,
			},
			RateLimit: config.RateLimitConfig{
				Enabled:           false,
				RequestsPerMinute: 100,
				Burst:             10,
			},
		},

		Redis: config.RedisConfig{
			Enabled: false,
		},
	}

	return cfg
}

// loadProvidersFromEnv збирає налаштування OAuth2 провайдерів зі змінних
// середовища. Провайдер без client_id пропускається
func loadProvidersFromEnv() []config.OAuth2ProviderConfig {
	defaults := []config.OAuth2ProviderConfig{
		{
			Name:        "GOOGLE",
			AuthURL:     "https://accounts.google.com/o/oauth2/v2/auth",
			TokenURL:    "https://oauth2.googleapis.com/token",
			UserInfoURL: "https://openidconnect.googleapis.com/v1/userinfo",
			Scopes:      []string{"openid", "profile", "email"},
		},
		{
			Name:        "KAKAO",
			AuthURL:     "https://kauth.kakao.com/oauth/authorize",
			TokenURL:    "https://kauth.kakao.com/oauth/token",
			UserInfoURL: "https://kapi.kakao.com/v2/user/me",
			Scopes:      []string{"profile_nickname", "profile_image"},
		},
		{
			Name:        "NAVER",
			AuthURL:     "https://nid.naver.com/oauth2.0/authorize",
			TokenURL:    "https://nid.naver.com/oauth2.0/token",
			UserInfoURL: "https://openapi.naver.com/v1/nid/me",
			Scopes:      []string{"name", "email", "profile_image"},
		},
		{
			Name:        "GITHUB",
			AuthURL:     "https://github.com/login/oauth/authorize",
			TokenURL:    "https://github.com/login/oauth/access_token",
			UserInfoURL: "https://api.github.com/user",
			Scopes:      []string{"read:user", "user:email"},
		},
	}

	providers := make([]config.OAuth2ProviderConfig, 0, len(defaults))
	for _, provider := range defaults {
		prefix := strings.ToUpper(provider.Name)
		clientID := getEnv(prefix+"_CLIENT_ID", "")
		if clientID == "" {
			continue
		}

		provider.ClientID = clientID
		provider.ClientSecret = getEnv(prefix+"_CLIENT_SECRET", "")
		provider.RedirectURI = getEnv(prefix+"_REDIRECT_URI",
			getEnv("OAUTH2_CALLBACK_BASE", "http://localhost:8080")+"/login/oauth2/code/"+strings.ToLower(provider.Name))
		providers = append(providers, provider)
	}

	return providers
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
