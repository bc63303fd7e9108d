package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/spendkeeper/internal/flagx"
)

// JsonConfig mirrors Config for unmarshalling. Pointer fields tell an absent
// key apart from an empty value.
type JsonConfig struct {
	DataDir        *string `json:"data_dir"`
	LogFile        *string `json:"log_file"`
	LogLevel       *string `json:"log_level"`
	Currency       *string `json:"currency"`
	ExportFormat   *string `json:"export_format"`
	S3Bucket       *string `json:"s3_bucket"`
	S3Region       *string `json:"s3_region"`
	S3BaseEndpoint *string `json:"s3_base_endpoint"`
	S3AccessKey    *string `json:"s3_access_key"`
	S3SecretKey    *string `json:"s3_secret_key"`
}

// parseJson overlays cfg with the file named by -c/-config. It panics when
// the file cannot be read or decoded.
func parseJson(cfg *Config, args []string) {
	path := flagx.ConfigFileFlag(args)
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	overlay(&cfg.DataDir, jc.DataDir)
	overlay(&cfg.LogFile, jc.LogFile)
	overlay(&cfg.LogLevel, jc.LogLevel)
	overlay(&cfg.Currency, jc.Currency)
	overlay(&cfg.ExportFormat, jc.ExportFormat)
	overlay(&cfg.S3Bucket, jc.S3Bucket)
	overlay(&cfg.S3Region, jc.S3Region)
	overlay(&cfg.S3BaseEndpoint, jc.S3BaseEndpoint)
	overlay(&cfg.S3AccessKey, jc.S3AccessKey)
	overlay(&cfg.S3SecretKey, jc.S3SecretKey)
}

func overlay(dst, src *string) {
	if src != nil {
		*dst = *src
	}
}
