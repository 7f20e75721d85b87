// Package config provides configuration management for the twmods service.
//
// It utilizes Viper for loading configuration from environment variables and
// an optional .env file (via godotenv).
//
// # Configuration Structure
//
// The Config struct is the central repository for all application settings,
// divided into subsections:
//   - Server: HTTP server settings (port, API key, upload ceiling)
//   - Database: metadata cache database connection (mysql or sqlite)
//   - Storage: S3/MinIO credentials and bucket for stored manifests
//   - Workshop: Steam Workshop API endpoint and timeout
//   - Log: logging level and format
//
// Default values are declared as struct tags and bound through reflection so
// that every key is registered for AutomaticEnv.
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Server.Port)
package config
