package config

import (
	"flag"

	"github.com/dmitrijs2005/spendkeeper/internal/flagx"
)

// parseFlags overlays cfg with command-line flags. Only the flags listed in
// the package doc are looked at; everything else in args is left for the
// subcommand dispatcher. It panics on a malformed flag.
func parseFlags(cfg *Config, args []string) {
	args = flagx.FilterArgs(args, []string{"-d", "-l", "-v", "-m", "-f", "-b", "-g", "-e"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.DataDir, "d", cfg.DataDir, "data directory")
	fs.StringVar(&cfg.LogFile, "l", cfg.LogFile, "diagnostic log file")
	fs.StringVar(&cfg.LogLevel, "v", cfg.LogLevel, "log level")
	fs.StringVar(&cfg.Currency, "m", cfg.Currency, "display currency")
	fs.StringVar(&cfg.ExportFormat, "f", cfg.ExportFormat, "default export format")
	fs.StringVar(&cfg.S3Bucket, "b", cfg.S3Bucket, "S3 bucket for backups")
	fs.StringVar(&cfg.S3Region, "g", cfg.S3Region, "S3 region")
	fs.StringVar(&cfg.S3BaseEndpoint, "e", cfg.S3BaseEndpoint, "S3 base endpoint")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
