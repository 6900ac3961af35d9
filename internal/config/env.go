package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

var envFileNames = []string{".env", ".env.local"}

// loadEnvFile loads the first of .env and .env.local found in dir and returns its
// path, or "" when there is none. Variables already set in the process win.
func loadEnvFile(dir string) (string, error) {
	for _, name := range envFileNames {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return path, err
		}
		return path, godotenv.Load(path)
	}
	return "", nil
}
