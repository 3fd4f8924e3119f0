package obs

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rifflock/lfshook"
	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// LogSettings controls console and file logging.
type LogSettings struct {
	Level      string
	FilePath   string
	MaxAgeDays int
}

// ParseLevel maps DEBUG/INFO/WARN/ERROR (case-insensitive) to a logrus level.
// Unknown values fall back to INFO.
func ParseLevel(s string) logrus.Level {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return logrus.DebugLevel
	case "INFO":
		return logrus.InfoLevel
	case "WARN", "WARNING":
		return logrus.WarnLevel
	case "ERROR":
		return logrus.ErrorLevel
	default:
		return logrus.InfoLevel
	}
}

// NewLogger builds the console logger and, when FilePath is set, attaches a
// rotating file hook that receives every level.
func NewLogger(s LogSettings, console io.Writer) (*logrus.Logger, error) {
	logger := logrus.New()
	logger.SetLevel(ParseLevel(s.Level))
	logger.SetFormatter(&logrus.TextFormatter{ForceColors: true, FullTimestamp: false})
	if console == nil {
		console = os.Stderr
	}
	logger.SetOutput(console)

	if s.FilePath == "" {
		return logger, nil
	}

	if err := os.MkdirAll(filepath.Dir(s.FilePath), 0o755); err != nil {
		return nil, fmt.Errorf("new logger: create log directory: %w", err)
	}

	rotating := &lumberjack.Logger{
		Filename:   s.FilePath,
		MaxSize:    100,
		MaxBackups: 30,
		MaxAge:     s.MaxAgeDays,
		Compress:   true,
	}

	fileFmt := &logrus.TextFormatter{DisableColors: true, FullTimestamp: true}
	logger.AddHook(lfshook.NewHook(lfshook.WriterMap{
		logrus.PanicLevel: rotating,
		logrus.FatalLevel: rotating,
		logrus.ErrorLevel: rotating,
		logrus.WarnLevel:  rotating,
		logrus.InfoLevel:  rotating,
		logrus.DebugLevel: rotating,
		logrus.TraceLevel: rotating,
	}, fileFmt))

	return logger, nil
}
