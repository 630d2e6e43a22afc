package common

import (
	"fmt"
	"github.com/lni/dragonboat/v4/logger"
	"io"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// Names of the loggers used throughout dcodec
const (
	LoggerSerializer = "serializer"
	LoggerCodec      = "codec"
	LoggerProtocol   = "protocol"
	LoggerCLI        = "cli"
)

// codecLoggers are the loggers whose level InitLoggers sets
var codecLoggers = []string{LoggerSerializer, LoggerCodec, LoggerProtocol, LoggerCLI}

// --------------------------------------------------------------------------
// Custom Logger (implements dragonboats logger.ILogger)
// --------------------------------------------------------------------------

// levelTags are the short level names written in front of every line
var levelTags = map[logger.LogLevel]string{
	logger.CRITICAL: "CRIT",
	logger.ERROR:    "ERROR",
	logger.WARNING:  "WARN",
	logger.INFO:     "INFO",
	logger.DEBUG:    "DEBUG",
}

// codecLogger writes one line per message to the shared log output:
//
//	2006-01-02T15:04:05Z07:00 LEVEL [name] message
//
// The level can be changed concurrently with logging.
type codecLogger struct {
	name  string
	level atomic.Int32
}

func (l *codecLogger) SetLevel(level logger.LogLevel) {
	l.level.Store(int32(level))
}

func (l *codecLogger) Debugf(format string, args ...interface{}) {
	l.write(logger.DEBUG, format, args)
}

func (l *codecLogger) Infof(format string, args ...interface{}) {
	l.write(logger.INFO, format, args)
}

func (l *codecLogger) Warningf(format string, args ...interface{}) {
	l.write(logger.WARNING, format, args)
}

func (l *codecLogger) Errorf(format string, args ...interface{}) {
	l.write(logger.ERROR, format, args)
}

// Panicf logs at critical level and panics with the message
func (l *codecLogger) Panicf(format string, args ...interface{}) {
	l.write(logger.CRITICAL, format, args)
	panic(fmt.Sprintf(format, args...))
}

func (l *codecLogger) enabled(level logger.LogLevel) bool {
	return logger.LogLevel(l.level.Load()) >= level
}

func (l *codecLogger) write(level logger.LogLevel, format string, args []interface{}) {
	if !l.enabled(level) {
		return
	}
	line := fmt.Sprintf("%s %-5s [%s] %s\n",
		time.Now().Format(time.RFC3339), levelTags[level], l.name, fmt.Sprintf(format, args...))

	outputMu.Lock()
	defer outputMu.Unlock()
	_, _ = io.WriteString(output, line)
}

// --------------------------------------------------------------------------
// Logger Factory
// --------------------------------------------------------------------------

var (
	outputMu sync.Mutex
	output   io.Writer = os.Stderr

	factoryOnce sync.Once
)

// SetLogOutput redirects all codec loggers, including already created ones, to w.
// Logs go to stderr by default so that stdout stays free for encoded output.
func SetLogOutput(w io.Writer) {
	outputMu.Lock()
	defer outputMu.Unlock()
	output = w
}

// CreateLogger implements the dragonboat logger.Factory interface.
// New loggers start at warning level.
func CreateLogger(pkgName string) logger.ILogger {
	l := &codecLogger{name: pkgName}
	l.SetLevel(logger.WARNING)
	return l
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

// ParseLogLevel converts a string level to logger.LogLevel
func ParseLogLevel(level string) (logger.LogLevel, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return logger.DEBUG, nil
	case "info":
		return logger.INFO, nil
	case "warning", "warn":
		return logger.WARNING, nil
	case "error":
		return logger.ERROR, nil
	default:
		return 0, fmt.Errorf("invalid log level: %s. must be one of debug, info, warn, error", level)
	}
}

// --------------------------------------------------------------------------
// Logger initialization
// --------------------------------------------------------------------------

// InitLoggers installs the custom logger factory and sets the level of all dcodec loggers.
// dragonboat only accepts one factory per process, so the factory is installed on the
// first call; later calls only change the level.
func InitLoggers(level string) error {
	lvl, err := ParseLogLevel(level)
	if err != nil {
		return err
	}

	factoryOnce.Do(func() { logger.SetLoggerFactory(CreateLogger) })

	for _, name := range codecLoggers {
		logger.GetLogger(name).SetLevel(lvl)
	}
	return nil
}
