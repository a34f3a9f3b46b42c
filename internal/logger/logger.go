package logger

import (
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger is the global logger instance. It is nil until Init succeeds.
var Logger *log.Logger

// Config holds logger configuration.
type Config struct {
	Debug   bool
	DataDir string
	// Stderr overrides the debug console writer; nil means os.Stderr.
	Stderr io.Writer
}

// FilePath returns the log file location for dataDir.
func FilePath(dataDir string) string {
	return filepath.Join(dataDir, "logs", "wht.log")
}

// Init initializes the global logger.
func Init(cfg Config) error {
	logFile := FilePath(cfg.DataDir)
	if err := os.MkdirAll(filepath.Dir(logFile), 0o755); err != nil {
		return err
	}

	fileWriter := &lumberjack.Logger{
		Filename:   logFile,
		MaxSize:    5, // megabytes
		MaxBackups: 3,
		MaxAge:     28, // days
		Compress:   true,
	}

	level := log.InfoLevel
	var writer io.Writer = fileWriter
	if cfg.Debug {
		level = log.DebugLevel
		console := cfg.Stderr
		if console == nil {
			console = os.Stderr
		}
		writer = io.MultiWriter(console, fileWriter)
	}

	Logger = log.NewWithOptions(writer, log.Options{
		ReportCaller:    cfg.Debug,
		ReportTimestamp: true,
		Level:           level,
		Prefix:          "wht",
	})
	return nil
}

// Debug logs a debug message.
func Debug(msg string, keyvals ...interface{}) {
	if Logger != nil {
		Logger.Debug(msg, keyvals...)
	}
}

// Info logs an info message.
func Info(msg string, keyvals ...interface{}) {
	if Logger != nil {
		Logger.Info(msg, keyvals...)
	}
}

// Warn logs a warning message.
func Warn(msg string, keyvals ...interface{}) {
	if Logger != nil {
		Logger.Warn(msg, keyvals...)
	}
}

// Error logs an error message.
func Error(msg string, keyvals ...interface{}) {
	if Logger != nil {
		Logger.Error(msg, keyvals...)
	}
}
