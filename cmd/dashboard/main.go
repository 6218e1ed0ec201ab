package main

import (
	"flag"
	"log"

	"github.com/learnhub/admin/internal/app"
	"github.com/learnhub/admin/internal/config"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "path to configuration file")
	envFile := flag.String("env", ".env", "optional dotenv file loaded before the configuration")
	flag.Parse()

	if err := config.LoadEnv(*envFile); err != nil {
		log.Fatal("failed to load env file: ", err)
	}
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal("failed to load config: ", err)
	}

	a, err := app.NewDashboard(cfg)
	if err != nil {
		log.Fatal("failed to create dashboard: ", err)
	}

	if err := a.Run(); err != nil {
		log.Fatal("server error: ", err)
	}
}
