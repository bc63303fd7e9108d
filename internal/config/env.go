package config

import (
	"os"

	"github.com/joho/godotenv"
)

const envPrefix = "SPENDKEEPER_"

// dotenvFiles are loaded before reading the environment. Variables already
// set in the process are not overridden.
var dotenvFiles = []string{".env"}

func parseEnv(cfg *Config) {
	for _, f := range dotenvFiles {
		// a missing .env is the normal case
		_ = godotenv.Load(f)
	}

	for name, dst := range map[string]*string{
		"DATA_DIR":         &cfg.DataDir,
		"LOG_FILE":         &cfg.LogFile,
		"LOG_LEVEL":        &cfg.LogLevel,
		"CURRENCY":         &cfg.Currency,
		"EXPORT_FORMAT":    &cfg.ExportFormat,
		"S3_BUCKET":        &cfg.S3Bucket,
		"S3_REGION":        &cfg.S3Region,
		"S3_BASE_ENDPOINT": &cfg.S3BaseEndpoint,
		"S3_ACCESS_KEY":    &cfg.S3AccessKey,
		"S3_SECRET_KEY":    &cfg.S3SecretKey,
	} {
		if v, ok := os.LookupEnv(envPrefix + name); ok {
			*dst = v
		}
	}
}
