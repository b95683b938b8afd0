package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Environment variables read at startup.
const (
	EnvSession = "STUDYDASH_SESSION"
	EnvAPIURL  = "STUDYDASH_API_URL"
)

// Env holds settings that come from the environment rather than the config file.
type Env struct {
	Session string
	APIURL  string
}

// LoadEnv reads an optional dotenv file, then the process environment.
// Variables already set in the process win over the file.
func LoadEnv(path string) (Env, error) {
	if path != "" {
		if err := godotenv.Load(path); err != nil && !os.IsNotExist(err) {
			return Env{}, fmt.Errorf("failed to load env file: %w", err)
		}
	}
	return Env{
		Session: strings.TrimSpace(os.Getenv(EnvSession)),
		APIURL:  strings.TrimSpace(os.Getenv(EnvAPIURL)),
	}, nil
}
