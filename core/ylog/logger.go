// Package ylog provides a slog.Logger instance for logging.
// ylog also provides a default slog.Logger, the default logger is build from environment.
//
// ylog allows to call log api directly, like:
//
//	ylog.Debug("header complete", "payload_size", 5)
//	ylog.Info("frame installed", "len", 9)
//	ylog.Warn("invalid header", "err", err)
//	ylog.Error("write failed", "err", err)
package ylog

import (
	"io"
	"log"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/caarlos0/env/v6"
	"gopkg.in/natefinch/lumberjack.v2"
)

var defaultLogger = Default()

// SetDefault set global logger.
func SetDefault(logger *slog.Logger) { defaultLogger = logger }

// Debug logs a message at debug level.
func Debug(msg string, keyvals ...interface{}) {
	defaultLogger.Debug(msg, keyvals...)
}

// Info logs a message at info level.
func Info(msg string, keyvals ...interface{}) {
	defaultLogger.Info(msg, keyvals...)
}

// Warn logs a message at warn level.
func Warn(msg string, keyvals ...interface{}) {
	defaultLogger.Warn(msg, keyvals...)
}

// Error logs a message at error level.
func Error(msg string, keyvals ...interface{}) {
	defaultLogger.Error(msg, keyvals...)
}

// Config is the config of slog, the config is from environment.
type Config struct {
	// Verbose indicates if logger log code line.
	Verbose bool `env:"SASL_LOG_VERBOSE" envDefault:"false"`

	// the log level, It's one of `debug`, `info`, `warn`, `error`
	Level string `env:"SASL_LOG_LEVEL" envDefault:"info"`

	// log output file path, It's stdout if not set.
	Output string `env:"SASL_LOG_OUTPUT"`

	// error log output file path, It's stderr if not set.
	ErrorOutput string `env:"SASL_LOG_ERROR_OUTPUT"`

	// text or json.
	Format string `env:"SASL_LOG_FORMAT" envDefault:"text"`

	// MaxSize is the size in megabytes a log file grows to before it is rotated.
	MaxSize int `env:"SASL_LOG_MAX_SIZE" envDefault:"100"`

	// DisableTime disable time key.
	DisableTime bool `env:"SASL_LOG_DISABLE_TIME" envDefault:"false"`
}

// DebugFrameSize is use for logging frame payloads,
// It means that only logs the first DebugFrameSize bytes if the data is large than DebugFrameSize bytes.
//
// DebugFrameSize is default to 16,
// if env `SASL_DEBUG_FRAME_SIZE` is setted and It's an int number, Set the env value to DebugFrameSize.
var DebugFrameSize = 16

func init() {
	if e := os.Getenv("SASL_DEBUG_FRAME_SIZE"); e != "" {
		if val, err := strconv.Atoi(e); err == nil {
			DebugFrameSize = val
		}
	}
}

// Default returns a slog.Logger according to enviroment.
func Default() *slog.Logger {
	var conf Config
	if err := env.Parse(&conf); err != nil {
		log.Fatalf("%+v\n", err)
	}
	return NewFromConfig(conf)
}

// NewFromConfig returns a slog.Logger according to conf.
func NewFromConfig(conf Config) *slog.Logger {
	return slog.New(NewHandlerFromConfig(conf))
}

// Preview returns at most DebugFrameSize bytes of b for logging.
func Preview(b []byte) []byte {
	if DebugFrameSize >= 0 && len(b) > DebugFrameSize {
		return b[:DebugFrameSize]
	}
	return b
}

func parseToWriter(conf Config, path string, defaultWriter io.Writer) io.Writer {
	switch path {
	case "":
		return defaultWriter
	case "stdout":
		return os.Stdout
	case "stderr":
		return os.Stderr
	}
	return &lumberjack.Logger{
		Filename: path,
		MaxSize:  conf.MaxSize,
	}
}

func parseToSlogLevel(stringLevel string) slog.Level {
	var level = slog.LevelDebug
	switch strings.ToLower(stringLevel) {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	return level
}
