// Package config loads runtime configuration for spendkeeper.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Environment variables prefixed SPENDKEEPER_, optionally loaded from a
//     .env file in the working directory.
//  3. Optional JSON file selected with -c or -config.
//  4. Command-line flags, which override everything else.
//
// Supported flags
//
//	-d string   data directory
//	-l string   diagnostic log file
//	-v string   log level (debug, info, warn, error)
//	-m string   currency code used for display
//	-f string   default export format (xlsx, csv)
//	-b string   S3 bucket for backups (empty disables backups)
//	-g string   S3 region
//	-e string   S3 base endpoint
//
// # JSON schema
//
//	{
//	  "data_dir": "data",
//	  "log_file": "finance_tracker.log",
//	  "log_level": "info",
//	  "currency": "MAD",
//	  "export_format": "xlsx",
//	  "s3_bucket": "",
//	  "s3_region": "us-east-1",
//	  "s3_base_endpoint": "",
//	  "s3_access_key": "",
//	  "s3_secret_key": ""
//	}
//
// Fields absent from the JSON file keep their previous value.
package config
