package logger

import (
	"strings"

	gormlogger "gorm.io/gorm/logger"
)

// GormLevel maps a config string to the gorm logger level. Unknown values are silent.
func GormLevel(level string) gormlogger.LogLevel {
	switch strings.ToLower(level) {
	case "info":
		return gormlogger.Info
	case "warn":
		return gormlogger.Warn
	case "error":
		return gormlogger.Error
	default:
		return gormlogger.Silent
	}
}
