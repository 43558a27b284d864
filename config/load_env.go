package config

import (
	"log/slog"

	"github.com/subosito/gotenv"
)

// EnvDir holds one dotenv file per environment, e.g. config/envs/.env.dev.
const EnvDir = "config/envs"

// LoadEnv loads config/envs/.env.<env> without overriding variables that
// are already set.
func LoadEnv(env string) {
	envFile := EnvDir + "/.env." + env
	if err := gotenv.Load(envFile); err != nil {
		slog.Debug("No .env file found, using OS environment", slog.String("file", envFile))
	}
}
