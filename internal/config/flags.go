package config

import (
	"github.com/spf13/pflag"
)

// BindFlags registers command line overrides for file locations and pacing.
// Defaults come from cfg, so flags only win when given explicitly.
func BindFlags(fs *pflag.FlagSet, cfg *Config) {
	fs.StringVarP(&cfg.Files.InputPath, "input", "i", cfg.Files.InputPath, "CSV file holding ticket ids")
	fs.IntVar(&cfg.Files.IDColumn, "id-column", cfg.Files.IDColumn, "zero-based column holding the ticket id")
	fs.StringVar(&cfg.Files.AllTicketsPath, "tickets-out", cfg.Files.AllTicketsPath, "output CSV for all fetched tickets")
	fs.StringVar(&cfg.Files.StatusCountsPath, "counts-out", cfg.Files.StatusCountsPath, "output CSV for status counts")
	fs.IntVar(&cfg.API.RequestDelayMS, "delay-ms", cfg.API.RequestDelayMS, "pause in milliseconds after each ticket request")
	fs.StringVar(&cfg.Logger.Level, "log-level", cfg.Logger.Level, "log level (debug, info, warn, error)")
}
