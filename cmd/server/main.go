package main

import (
	"log"
	"os"

	"mentor-api/internal/build"
	"mentor-api/internal/cli"
)

func main() {
	app := cli.NewApp()
	app.Name = "Mentor API Server"
	app.Version = build.Version
	app.Usage = "Mentoring platform API server with configuration management"

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
