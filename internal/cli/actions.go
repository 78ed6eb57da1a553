package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v2"

	"mentor-api/internal/build"
	"mentor-api/internal/config"
)

// configureAction генерує конфігурацію з шаблону
func configureAction(c *cli.Context) error {
	templatePath := c.String("template")
	outputPath := c.String("output")
	version := c.String("version")
	mode := c.String("mode")

	fmt.Printf("🔧 Configuring Mentor API Server\n")
	fmt.Printf("Template: %s\n", templatePath)
	fmt.Printf("Output: %s\n", outputPath)
	fmt.Printf("Version: %s\n", version)
	fmt.Printf("Mode: %s\n", mode)

	// Використовуємо шляхи як є, якщо вони абсолютні
	templatePathAbs := templatePath
	outputPathAbs := outputPath

	if !filepath.IsAbs(templatePath) {
		workDir, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("failed to get working directory: %w", err)
		}
		templatePathAbs = filepath.Join(workDir, templatePath)
	}

	if !filepath.IsAbs(outputPath) {
		workDir, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("failed to get working directory: %w", err)
		}
		outputPathAbs = filepath.Join(workDir, outputPath)
	}

	// Перевіряємо що шаблон існує
	if _, err := os.Stat(templatePathAbs); os.IsNotExist(err) {
		return fmt.Errorf("template file does not exist: %s", templatePathAbs)
	}

	// Генеруємо конфігурацію з дефолтними значеннями та змінними оточення
	vars := getConfigVars(mode, version)

	if err := config.GenerateConfigFromTemplate(templatePathAbs, outputPathAbs, vars); err != nil {
		return fmt.Errorf("failed to generate config: %w", err)
	}

	fmt.Printf("✅ Configuration generated successfully: %s\n", outputPathAbs)
	return nil
}

// serverAction запускає API сервер
func serverAction(c *cli.Context) error {
	configPath := c.String("config")

	fmt.Printf("🚀 Starting Mentor API Server\n")
	fmt.Printf("Config: %s\n", configPath)
	fmt.Printf("Version: %s\n", build.Version)

	// Перевіряємо що конфіг існує
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return fmt.Errorf("config file does not exist: %s. Run 'configure' command first", configPath)
	}

	// Завантажуємо конфігурацію
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Запускаємо сервер
	return config.StartServer(cfg)
}

// migrateAction виконує міграції бази даних без запуску сервера
func migrateAction(c *cli.Context) error {
	configPath := c.String("config")

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	return config.RunMigrations(cfg)
}

// versionAction показує інформацію про версію
func versionAction(c *cli.Context) error {
	info := build.Info()

	fmt.Printf("%s\n", build.Short())
	fmt.Printf("Build Number: %s\n", info["build_number"])
	fmt.Printf("Build Time: %s\n", info["build_time"])

	return nil
}

// getConfigVars повертає мапу змінних для конфігурації
func getConfigVars(mode, version string) map[string]interface{} {
	vars := map[string]interface{}{
		"build_version": version,
		"environment":   mode,
	}

	// Загальні змінні
	setVarFromEnv(vars, "api_server_host", "API_SERVER_HOST", "localhost")
	setVarFromEnv(vars, "api_server_port", "API_SERVER_PORT", 8080)
	setVarFromEnv(vars, "log_level", "LOG_LEVEL", getLogLevelForMode(mode))

	// База даних
	setVarFromEnv(vars, "db_host", "DB_HOST", "localhost")
	setVarFromEnv(vars, "db_port", "DB_PORT", 5432)
	setVarFromEnv(vars, "db_name", "DB_NAME", "mentor_api")
	setVarFromEnv(vars, "db_user", "DB_USER", "mentor_api_user")
	setVarFromEnv(vars, "db_password", "DB_PASSWORD", "mentor_secure_password_2026")

	// JWT
	setVarFromEnv(vars, "jwt_secret", "JWT_SECRET", "dev-jwt-secret-key-change-in-production")
	setVarFromEnv(vars, "jwt_access_duration", "JWT_ACCESS_DURATION", "30m")
	setVarFromEnv(vars, "jwt_refresh_duration", "JWT_REFRESH_DURATION", "168h")

	// OAuth2 провайдери
	setVarFromEnv(vars, "oauth2_redirect_url", "OAUTH2_REDIRECT_URL", "http://localhost:3000/oauth2/redirect")
	setVarFromEnv(vars, "google_client_id", "GOOGLE_CLIENT_ID", "your_google_client_id")
	setVarFromEnv(vars, "google_client_secret", "GOOGLE_CLIENT_SECRET", "your_google_client_secret")
	setVarFromEnv(vars, "kakao_client_id", "KAKAO_CLIENT_ID", "your_kakao_client_id")
	setVarFromEnv(vars, "kakao_client_secret", "KAKAO_CLIENT_SECRET", "your_kakao_client_secret")
	setVarFromEnv(vars, "naver_client_id", "NAVER_CLIENT_ID", "your_naver_client_id")
	setVarFromEnv(vars, "naver_client_secret", "NAVER_CLIENT_SECRET", "your_naver_client_secret")
	setVarFromEnv(vars, "github_client_id", "GITHUB_CLIENT_ID", "your_github_client_id")
	setVarFromEnv(vars, "github_client_secret", "GITHUB_CLIENT_SECRET", "your_github_client_secret")

	return vars
}

// setVarFromEnv встановлює змінну з оточення або дефолтне значення
func setVarFromEnv(vars map[string]interface{}, key, envKey string, defaultValue interface{}) {
	if envValue := os.Getenv(envKey); envValue != "" {
		vars[key] = envValue
	} else {
		vars[key] = defaultValue
	}
}

// getLogLevelForMode повертає рівень логування для режиму
func getLogLevelForMode(mode string) string {
	switch mode {
	case "production":
		return "warn"
	case "staging":
		return "info"
	default:
		return "debug"
	}
}
