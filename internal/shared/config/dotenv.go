package config

import (
	"errors"
	"io/fs"

	"github.com/joho/godotenv"

	"resume-insights/internal/shared/telemetry"
)

// loadEnvFiles loads KEY=VALUE files for local development. Variables already set in the
// environment win; missing files are skipped.
func loadEnvFiles(paths ...string) {
	for _, path := range paths {
		err := godotenv.Load(path)
		if err == nil || errors.Is(err, fs.ErrNotExist) {
			continue
		}
		telemetry.Warn("config.env_file_invalid", map[string]any{"path": path, "error": err.Error()})
	}
}
