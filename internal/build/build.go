package build

import "fmt"

// Service ім'я сервісу, під яким білд звітує про себе
const Service = "mentor-api"

// Значення заповнюються під час збірки:
//
//	go build -ldflags "-X mentor-api/internal/build.Version=..."
var (
	// Version семантична версія релізу
	Version = "dev"

	// BuildNumber порядковий номер збірки в CI
	BuildNumber = "local"

	// GitCommit хеш коміту, з якого зібрано бінарник
	GitCommit = "unknown"

	// BuildTime час збірки
	BuildTime = "unknown"
)

// Short повертає однорядковий ідентифікатор білда
func Short() string {
	return fmt.Sprintf("%s %s (%s)", Service, Version, GitCommit)
}

// Info повертає поля білда для version команди та логів старту
func Info() map[string]string {
	return map[string]string{
		"service":      Service,
		"version":      Version,
		"build_number": BuildNumber,
		"git_commit":   GitCommit,
		"build_time":   BuildTime,
	}
}
