package config

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"mentor-api/internal/handlers"
	"mentor-api/internal/middleware"
	"mentor-api/internal/models"
	"mentor-api/internal/services"
	"mentor-api/migrations"

	_ "mentor-api/docs"

	"github.com/gin-gonic/gin"
	"github.com/hashicorp/hcl/v2/hclsimple"
	"github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Config представляє повну конфігурацію додатку
type Config struct {
	Server   ServerConfig   `hcl:"server,block"`
	Database DatabaseConfig `hcl:"database,block"`
	JWT      JWTConfig      `hcl:"jwt,block"`
	OAuth2   OAuth2Config   `hcl:"oauth2,block"`
	Security SecurityConfig `hcl:"security,block"`
	Redis    RedisConfig    `hcl:"redis,block"`
}

// ServerConfig містить налаштування HTTP сервера
type ServerConfig struct {
	Host         string `hcl:"host"`
	Port         int    `hcl:"port"`
	Environment  string `hcl:"environment"`
	LogLevel     string `hcl:"log_level"`
	LogFormat    string `hcl:"log_format"`
	ReadTimeout  string `hcl:"read_timeout"`
	WriteTimeout string `hcl:"write_timeout"`
	IdleTimeout  string `hcl:"idle_timeout"`
}

// DatabaseConfig містить налаштування бази даних
type DatabaseConfig struct {
	Driver                string `hcl:"driver"`
	Host                  string `hcl:"host"`
	Port                  int    `hcl:"port"`
	Name                  string `hcl:"name"`
	User                  string `hcl:"user"`
	Password              string `hcl:"password"`
	SSLMode               string `hcl:"ssl_mode"`
	MaxOpenConnections    int    `hcl:"max_open_connections"`
	MaxIdleConnections    int    `hcl:"max_idle_connections"`
	ConnectionMaxLifetime string `hcl:"connection_max_lifetime"`
}

// JWTConfig містить налаштування токенів
type JWTConfig struct {
	Secret               string `hcl:"secret"`
	AccessTokenDuration  string `hcl:"access_token_duration"`
	RefreshTokenDuration string `hcl:"refresh_token_duration"`
	AccessTokenHeader    string `hcl:"access_token_header"`
	RefreshTokenHeader   string `hcl:"refresh_token_header"`
}

// OAuth2Config містить налаштування федеративного входу
type OAuth2Config struct {
	DefaultRedirectURL string                 `hcl:"default_redirect_url"`
	Providers          []OAuth2ProviderConfig `hcl:"provider,block"`
}

// OAuth2ProviderConfig містить налаштування окремого OAuth2 провайдера
type OAuth2ProviderConfig struct {
	Name         string   `hcl:"name,label"`
	ClientID     string   `hcl:"client_id"`
	ClientSecret string   `hcl:"client_secret"`
	AuthURL      string   `hcl:"auth_url"`
	TokenURL     string   `hcl:"token_url"`
	UserInfoURL  string   `hcl:"userinfo_url"`
	RedirectURI  string   `hcl:"redirect_uri"`
	Scopes       []string `hcl:"scopes"`
}

// SecurityConfig містить налаштування безпеки
type SecurityConfig struct {
	CORS      CORSConfig      `hcl:"cors,block"`
	RateLimit RateLimitConfig `hcl:"rate_limit,block"`
}

// CORSConfig містить налаштування CORS
type CORSConfig struct {
	AllowedOrigins   []string `hcl:"allowed_origins"`
	AllowedMethods   []string `hcl:"allowed_methods"`
	AllowedHeaders   []string `hcl:"allowed_headers"`
	AllowCredentials bool     `hcl:"allow_credentials"`
	MaxAge           int      `hcl:"max_age"`
}

// RateLimitConfig містить налаштування rate limiting
type RateLimitConfig struct {
	Enabled           bool `hcl:"enabled"`
	RequestsPerMinute int  `hcl:"requests_per_minute"`
	Burst             int  `hcl:"burst"`
}

// RedisConfig містить налаштування Redis
type RedisConfig struct {
	Enabled    bool   `hcl:"enabled"`
	Host       string `hcl:"host"`
	Port       int    `hcl:"port"`
	Password   string `hcl:"password"`
	Database   int    `hcl:"database"`
	MaxRetries int    `hcl:"max_retries"`
	PoolSize   int    `hcl:"pool_size"`
}

// LoadConfig завантажує конфігурацію з HCL файлу
func LoadConfig(configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file does not exist: %s", configPath)
	}

	var config Config
	err := hclsimple.DecodeFile(configPath, nil, &config)
	if err != nil {
		return nil, fmt.Errorf("failed to decode config file: %w", err)
	}

	// Валідація конфігурації
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

// Validate перевіряє валідність конфігурації
func (c *Config) Validate() error {
	// Перевірка обов'язкових полів сервера
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	// Перевірка бази даних
	if c.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}
	if c.Database.Name == "" {
		return fmt.Errorf("database name is required")
	}
	if c.Database.User == "" {
		return fmt.Errorf("database user is required")
	}

	// Перевірка JWT
	if c.JWT.Secret == "" {
		return fmt.Errorf("jwt secret is required")
	}
	if _, err := time.ParseDuration(c.JWT.AccessTokenDuration); err != nil {
		return fmt.Errorf("invalid jwt access token duration: %w", err)
	}
	if _, err := time.ParseDuration(c.JWT.RefreshTokenDuration); err != nil {
		return fmt.Errorf("invalid jwt refresh token duration: %w", err)
	}

	// Перевірка OAuth2 провайдерів
	for _, provider := range c.OAuth2.Providers {
		if _, ok := models.SocialTypeOf(provider.Name); !ok {
			return fmt.Errorf("unknown oauth2 provider: %s", provider.Name)
		}
		if provider.ClientID == "" {
			return fmt.Errorf("client_id is required for oauth2 provider %s", provider.Name)
		}
		if provider.ClientSecret == "" {
			return fmt.Errorf("client_secret is required for oauth2 provider %s", provider.Name)
		}
	}

	return nil
}

// GetAddress повертає адресу для прослуховування сервера
func (c *Config) GetAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// GetDatabaseDSN повертає DSN для підключення до бази даних
func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// IsDevelopment перевіряє чи додаток працює в режимі розробки
func (c *Config) IsDevelopment() bool {
	return c.Server.Environment == "development"
}

// IsProduction перевіряє чи додаток працює в продакшн режимі
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}

// AccessTokenHeader повертає ім'я заголовка access токена
func (c *Config) AccessTokenHeader() string {
	if c.JWT.AccessTokenHeader == "" {
		return "Authorization"
	}
	return c.JWT.AccessTokenHeader
}

// RefreshTokenHeader повертає ім'я заголовка refresh токена
func (c *Config) RefreshTokenHeader() string {
	if c.JWT.RefreshTokenHeader == "" {
		return "Authorization-Refresh"
	}
	return c.JWT.RefreshTokenHeader
}

// ProviderConfigs перетворює налаштування провайдерів у мапу для сервісів
func (c *Config) ProviderConfigs() map[models.SocialType]services.ProviderConfig {
	providers := make(map[models.SocialType]services.ProviderConfig, len(c.OAuth2.Providers))
	for _, provider := range c.OAuth2.Providers {
		socialType, ok := models.SocialTypeOf(provider.Name)
		if !ok {
			continue
		}
		providers[socialType] = services.ProviderConfig{
			ClientID:     provider.ClientID,
			ClientSecret: provider.ClientSecret,
			AuthURL:      provider.AuthURL,
			TokenURL:     provider.TokenURL,
			UserInfoURL:  provider.UserInfoURL,
			RedirectURI:  provider.RedirectURI,
			Scopes:       provider.Scopes,
		}
	}
	return providers
}

// GenerateConfigFromTemplate генерує HCL конфігурацію з шаблону використовуючи змінні
func GenerateConfigFromTemplate(templatePath, outputPath string, vars map[string]interface{}) error {
	return generateConfigWithVars(templatePath, outputPath, vars)
}

// StartServer запускає HTTP сервер з конфігурацією
func StartServer(cfg *Config) error {
	// Налаштування логування
	setupLogging(cfg)

	// Підключення до бази даних
	db, err := connectToDatabase(cfg)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	// Налаштування Gin режиму
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	// Створення Gin роутера
	r := gin.New()

	// Swagger UI route
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Додавання middleware
	r.Use(gin.Logger())
	r.Use(gin.Recovery())
	r.Use(corsMiddleware(cfg))

	// Реєстрація routes (передаємо db для використання в handlers)
	setupRoutes(r, cfg, db)

	// Створення HTTP сервера
	srv := &http.Server{
		Addr:         cfg.GetAddress(),
		Handler:      r,
		ReadTimeout:  ParseDurationOr(cfg.Server.ReadTimeout, 30*time.Second),
		WriteTimeout: ParseDurationOr(cfg.Server.WriteTimeout, 30*time.Second),
		IdleTimeout:  ParseDurationOr(cfg.Server.IdleTimeout, 120*time.Second),
	}

	// Канал для graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	// Запуск сервера в goroutine
	go func() {
		logrus.Infof("🚀 Starting Mentor API Server on %s", cfg.GetAddress())
		logrus.Infof("Environment: %s", cfg.Server.Environment)
		logrus.Infof("Log Level: %s", cfg.Server.LogLevel)

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Очікування сигналу для graceful shutdown
	<-quit
	logrus.Info("🛑 Shutting down server...")

	// Graceful shutdown з таймаутом
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logrus.Errorf("Server forced to shutdown: %v", err)
		return err
	}

	logrus.Info("✅ Server exited gracefully")
	return nil
}

// setupLogging налаштовує логування
func setupLogging(cfg *Config) {
	// Встановлення рівня логування
	level, err := logrus.ParseLevel(cfg.Server.LogLevel)
	if err != nil {
		logrus.Warnf("Invalid log level '%s', using info", cfg.Server.LogLevel)
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)

	// Встановлення формату логування
	if cfg.Server.LogFormat == "json" {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	}
}

// corsMiddleware налаштовує CORS middleware
func corsMiddleware(cfg *Config) gin.HandlerFunc {
	return gin.HandlerFunc(func(c *gin.Context) {
		// Встановлення CORS заголовків
		origin := c.Request.Header.Get("Origin")
		if isAllowedOrigin(origin, cfg.Security.CORS.AllowedOrigins) {
			c.Header("Access-Control-Allow-Origin", origin)
		}

		c.Header("Access-Control-Allow-Methods", joinStrings(cfg.Security.CORS.AllowedMethods, ", "))
		c.Header("Access-Control-Allow-Headers", joinStrings(cfg.Security.CORS.AllowedHeaders, ", "))

		if cfg.Security.CORS.AllowCredentials {
			c.Header("Access-Control-Allow-Credentials", "true")
		}

		if cfg.Security.CORS.MaxAge > 0 {
			c.Header("Access-Control-Max-Age", fmt.Sprintf("%d", cfg.Security.CORS.MaxAge))
		}

		// Handle preflight requests
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})
}

// setupRoutes налаштовує маршрути
func setupRoutes(r *gin.Engine, cfg *Config, db *gorm.DB) {
	// Ініціалізуємо сервіси
	memberService := services.NewMemberService(db)

	tokenService := services.NewTokenService(
		cfg.JWT.Secret,
		ParseDurationOr(cfg.JWT.AccessTokenDuration, 30*time.Minute),
		ParseDurationOr(cfg.JWT.RefreshTokenDuration, 7*24*time.Hour),
		cfg.AccessTokenHeader(),
		cfg.RefreshTokenHeader(),
	)

	authService := services.NewAuthService(memberService, tokenService)

	providerService := services.NewOAuthProviderService(cfg.ProviderConfigs())
	requestRepository := services.NewAuthorizationRequestRepository()

	// Ініціалізуємо handlers з усіма сервісами
	healthHandler := handlers.NewHealthHandler()
	authHandler := handlers.NewAuthHandler(authService, tokenService)
	memberHandler := handlers.NewMemberHandler(memberService)
	oauth2Handler := handlers.NewOAuth2Handler(
		authService,
		tokenService,
		providerService,
		requestRepository,
		cfg.OAuth2.DefaultRedirectURL,
	)

	// Фільтр автентифікації працює глобально; перелічені префікси
	// він пропускає без перевірки токенів
	r.Use(middleware.AuthenticationFilter(tokenService, memberService, []string{
		"/api/v1/auth",
		"/oauth2",
		"/login/oauth2",
		"/health",
		"/swagger",
	}))

	// Публічні endpoints
	r.GET("/", healthHandler.Root)
	r.GET("/health", healthHandler.Health)

	// Автентифікація
	auth := r.Group("/api/v1/auth")
	{
		auth.GET("/health-check", authHandler.HealthCheck)
		auth.POST("/signup", authHandler.Signup)
		auth.POST("/login", authHandler.Login)
	}

	// Ротація refresh токена: сам обмін виконує фільтр автентифікації,
	// handler відповідає 401 коли валідного refresh токена не було
	r.POST("/auth/reissue", authHandler.Reissue)

	// Федеративний вхід
	r.GET("/oauth2/authorize/:provider", oauth2Handler.Authorize)
	r.GET("/login/oauth2/code/:provider", oauth2Handler.Callback)

	// Захищені endpoints учасника
	member := r.Group("/api/v1/member")
	member.Use(middleware.RequireRole(models.RoleUser, models.RoleAdmin))
	{
		member.GET("/me", memberHandler.Me)
		member.DELETE("/me", memberHandler.DeleteMe)
	}

	// Адміністративні endpoints
	admin := r.Group("/api/v1/admin")
	admin.Use(middleware.RequireRole(models.RoleAdmin))
	{
		admin.GET("/members", memberHandler.List)
	}
}

// Helper functions
func isAllowedOrigin(origin string, allowedOrigins []string) bool {
	for _, allowed := range allowedOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}
	return false
}

func joinStrings(strs []string, sep string) string {
	if len(strs) == 0 {
		return ""
	}
	result := strs[0]
	for i := 1; i < len(strs); i++ {
		result += sep + strs[i]
	}
	return result
}

// connectToDatabase підключається до PostgreSQL бази даних через GORM
func connectToDatabase(cfg *Config) (*gorm.DB, error) {
	dsn := cfg.GetDatabaseDSN()
	logrus.Infof("🔌 Connecting to PostgreSQL database: %s@%s:%d/%s",
		cfg.Database.User, cfg.Database.Host, cfg.Database.Port, cfg.Database.Name)

	// Налаштування GORM конфігурації
	gormConfig := &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
	}

	// В debug режимі включаємо логування SQL запитів
	if cfg.IsDevelopment() {
		gormConfig.Logger = logger.Default.LogMode(logger.Info)
	}

	// Підключення до бази даних
	db, err := gorm.Open(postgres.Open(dsn), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Отримання sqlDB для налаштування connection pool
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	connectionMaxLifetime := ParseDurationOr(cfg.Database.ConnectionMaxLifetime, 5*time.Minute)

	// Налаштування connection pool
	sqlDB.SetMaxOpenConns(cfg.Database.MaxOpenConnections)
	sqlDB.SetMaxIdleConns(cfg.Database.MaxIdleConnections)
	sqlDB.SetConnMaxLifetime(connectionMaxLifetime)

	// Тест підключення
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logrus.Infof("📊 Database connection pool configured: MaxOpen=%d, MaxIdle=%d, MaxLifetime=%v",
		cfg.Database.MaxOpenConnections, cfg.Database.MaxIdleConnections, connectionMaxLifetime)

	// Автоматична міграція тільки для моделей, які мають GORM-структури
	logrus.Info("🛠️  Running AutoMigrate for Member...")
	if err := db.AutoMigrate(
		&services.Member{},
	); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	logrus.Info("✅ Database connection established and migrated")
	return db, nil
}

// RunMigrations виконує тільки міграції без запуску сервера
func RunMigrations(cfg *Config) error {
	dsn := cfg.GetDatabaseDSN()
	logrus.Infof("🔌 Connecting to PostgreSQL database for migrations: %s@%s:%d/%s",
		cfg.Database.User, cfg.Database.Host, cfg.Database.Port, cfg.Database.Name)

	// Налаштування GORM конфігурації
	gormConfig := &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
	}

	// В debug режимі включаємо логування SQL запитів
	if cfg.IsDevelopment() {
		gormConfig.Logger = logger.Default.LogMode(logger.Info)
	}

	// Підключення до бази даних
	db, err := gorm.Open(postgres.Open(dsn), gormConfig)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	// Отримання sqlDB для тестування підключення
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	// Тест підключення
	if err := sqlDB.Ping(); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	logrus.Info("🛠️  Running migrations...")

	// Перевіряємо чи існує таблиця members
	var exists bool
	err = db.Raw("SELECT EXISTS (SELECT FROM information_schema.tables WHERE table_schema = 'public' AND table_name = 'members')").Scan(&exists).Error
	if err != nil {
		return fmt.Errorf("failed to check if members table exists: %w", err)
	}

	if !exists {
		logrus.Info("Creating members table...")
		if err := migrations.CreateMembersTable(db); err != nil {
			return fmt.Errorf("failed to create members table: %w", err)
		}
		logrus.Info("✅ Members table created successfully")
	} else {
		logrus.Info("Members table already exists, skipping...")
	}

	// Унікальність соціальної ідентичності (social_type, social_id)
	if err := migrations.AddMembersSocialUniqueConstraint(db); err != nil {
		return fmt.Errorf("failed to add members social unique constraint: %w", err)
	}

	// Унікальність email лише для непорожніх значень
	if err := migrations.RelaxMembersEmailUnique(db); err != nil {
		return fmt.Errorf("failed to relax members email unique index: %w", err)
	}

	logrus.Info("✅ Database migrations completed successfully")

	// Закриваємо з'єднання
	sqlDB.Close()

	return nil
}
