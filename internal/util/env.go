package util

import (
	"errors"
	"os"

	"github.com/joho/godotenv"
)

// LoadEnv loads a .env file if one exists. A missing file is not an
// error so deployments can rely on real environment variables only.
func LoadEnv() error {
	if err := godotenv.Load(); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	return nil
}

func Getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
