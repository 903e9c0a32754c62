// Package config loads environment-driven configuration structs.
//
// Every pulse package that needs settings exposes a Config struct tagged for
// github.com/caarlos0/env (for example redis.Config or fanout.Config). A
// process composes them into one struct and calls Load once:
//
//	type appConfig struct {
//		Env    string `env:"APP_ENV" envDefault:"development"`
//		Redis  redis.Config
//		Bus    bus.Config
//		Fanout fanout.Config
//	}
//
//	var cfg appConfig
//	config.MustLoad(&cfg)
//
// The first call loads a .env file from the working directory when present
// (github.com/joho/godotenv). Parsed values are cached per type, so repeated
// calls with the same type are cheap and return the same values.
package config
