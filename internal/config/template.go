package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"text/template"
)

// varTagRegex розпізнає {{var "name" default_value required}} теги в шаблоні
var varTagRegex = regexp.MustCompile(`\{\{var\s+"([^"]+)"\s+([^\s}]+)\s+(true|false)\s*\}\}`)

// generateConfigWithVars генерує конфігурацію з шаблону з використанням змінних
func generateConfigWithVars(templatePath, outputPath string, vars map[string]interface{}) error {
	// Читаємо шаблон
	content, err := os.ReadFile(templatePath)
	if err != nil {
		return fmt.Errorf("failed to read template: %w", err)
	}

	// Обробляємо {{var}} теги в шаблоні
	processedContent := substituteVarTags(string(content), vars)

	tmpl, err := template.New("config").Funcs(template.FuncMap{
		"duration": func(d string) string {
			return d
		},
	}).Parse(processedContent)
	if err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}

	// Генеруємо конфігурацію
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, nil); err != nil {
		return fmt.Errorf("failed to execute template: %w", err)
	}

	// Створюємо директорію якщо не існує
	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	// Записуємо результат
	if err := os.WriteFile(outputPath, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// substituteVarTags підставляє значення змінних замість var тегів
func substituteVarTags(content string, vars map[string]interface{}) string {
	return varTagRegex.ReplaceAllStringFunc(content, func(match string) string {
		matches := varTagRegex.FindStringSubmatch(match)
		if len(matches) != 4 {
			return match
		}

		varName := matches[1]
		defaultValue := matches[2]
		required := matches[3] == "true"

		// Перевіряємо чи є значення в змінних
		if value, exists := vars[varName]; exists {
			return formatHCLValue(value)
		}

		// Якщо обов'язково і немає значення
		if required && (defaultValue == "" || defaultValue == `""`) {
			return `"REQUIRED_VALUE_NOT_SET"`
		}

		return formatHCLValue(parseScalar(defaultValue))
	})
}

// formatHCLValue форматує значення для HCL
func formatHCLValue(value interface{}) string {
	switch v := value.(type) {
	case string:
		// Список через кому обробляємо як масив
		if strings.Contains(v, ",") {
			parts := strings.Split(v, ",")
			var quoted []string
			for _, part := range parts {
				quoted = append(quoted, fmt.Sprintf(`"%s"`, strings.TrimSpace(part)))
			}
			return strings.Join(quoted, ",\n      ")
		}
		return fmt.Sprintf(`"%s"`, v)
	case int, int32, int64:
		return fmt.Sprintf("%d", v)
	case float32, float64:
		return fmt.Sprintf("%f", v)
	case bool:
		return strconv.FormatBool(v)
	default:
		return fmt.Sprintf(`"%v"`, v)
	}
}

// parseScalar парсить дефолтне значення з шаблону в типізований скаляр
func parseScalar(raw string) interface{} {
	if strings.HasPrefix(raw, `"`) && strings.HasSuffix(raw, `"`) {
		return strings.Trim(raw, `"`)
	}

	if intVal, err := strconv.Atoi(raw); err == nil {
		return intVal
	}

	if floatVal, err := strconv.ParseFloat(raw, 64); err == nil {
		return floatVal
	}

	if boolVal, err := strconv.ParseBool(raw); err == nil {
		return boolVal
	}

	return raw
}
