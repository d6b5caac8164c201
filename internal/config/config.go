package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port string
	Env  string

	// Optional static API key guarding the /api/v1 routes.
	// Empty disables authentication entirely.
	APIKey string

	GitHub GitHubConfig
}

type GitHubConfig struct {
	Token    string
	Owner    string
	Repo     string
	Branch   string
	FilePath string
	APIURL   string
	Timeout  time.Duration
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	timeout, err := time.ParseDuration(getEnv("HTTP_TIMEOUT", "20s"))
	if err != nil {
		timeout = 20 * time.Second
	}

	return &Config{
		Port: getEnv("PORT", "8080"),
		Env:  getEnv("ENV", "development"),

		APIKey: getEnv("API_KEY", ""),

		GitHub: GitHubConfig{
			Token:    getEnvOrPanic("GITHUB_TOKEN"),
			Owner:    getEnvOrPanic("GITHUB_OWNER"),
			Repo:     getEnvOrPanic("GITHUB_REPO"),
			Branch:   getEnv("GITHUB_BRANCH", "main"),
			FilePath: getEnv("GITHUB_FILE_PATH", "jobs.csv"),
			APIURL:   getEnv("GITHUB_API_URL", "https://api.github.com"),
			Timeout:  timeout,
		},
	}, nil
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvOrPanic(key string) string {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		panic("required environment variable not set: " + key)
	}
	return value
}
