package config

import "github.com/dmitrijs2005/spendkeeper/internal/common"

// Config holds runtime settings.
//
// S3 credentials are optional; without them the AWS default credential
// chain applies.
type Config struct {
	DataDir        string
	LogFile        string
	LogLevel       string
	Currency       string
	ExportFormat   string
	S3Bucket       string
	S3Region       string
	S3BaseEndpoint string
	S3AccessKey    string
	S3SecretKey    string
}

// Flags names every command-line flag the configuration layer consumes.
var Flags = []string{"-c", "-config", "--config", "-d", "-l", "-v", "-m", "-f", "-b", "-g", "-e"}

func (c *Config) LoadDefaults() {
	c.DataDir = "data"
	c.LogFile = "finance_tracker.log"
	c.LogLevel = "info"
	c.Currency = common.DefaultCurrency
	c.ExportFormat = "xlsx"
	c.S3Region = "us-east-1"
}

// LoadConfig builds a Config from defaults, the environment, an optional
// JSON file and args (usually os.Args[1:]), later sources winning.
func LoadConfig(args []string) *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseEnv(cfg)
	parseJson(cfg, args)
	parseFlags(cfg, args)
	return cfg
}
