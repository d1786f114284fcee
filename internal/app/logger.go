package app

import (
	"os"

	"courier-dispatch/internal/config"
	"courier-dispatch/internal/logx"
)

// NewLogger returns the JSON logger of a binary, tagged with its role.
func NewLogger(cfg *config.Config, role Role) logx.Logger {
	return logx.NewJSON(os.Stdout, cfg.LogLevel).With(logx.String("service", string(role)))
}
