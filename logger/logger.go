package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"time"

	rotatelogs "github.com/lestrrat-go/file-rotatelogs"
	"github.com/rifflock/lfshook"
	"github.com/sirupsen/logrus"

	"github.com/mensylisir/tapsmith/common"
)

// Log is the global logger instance. It defaults to a console logger at Info
// level so packages can log before InitGlobalLogger runs.
var Log = newConsoleLogger(logrus.InfoLevel)

var fieldOrder = []string{
	common.LogFieldRun, common.LogFieldStep, common.LogFieldPhase,
}

// InitGlobalLogger configures the global Log. When outputPath is non-empty,
// log lines are written to a daily-rotated file under that directory (7-day
// retention) and the console stream is discarded; otherwise logs go to
// stdout with colors.
func InitGlobalLogger(outputPath string, verbose bool, defaultLevel logrus.Level) error {
	level := defaultLevel
	if verbose {
		level = logrus.DebugLevel
	}

	if outputPath == "" {
		Log = newConsoleLogger(level)
		return nil
	}

	if err := os.MkdirAll(outputPath, 0755); err != nil {
		return fmt.Errorf("failed to create log output directory %s: %w", outputPath, err)
	}
	logFilePath := filepath.Join(outputPath, common.AppName+".log")

	writer, err := rotatelogs.New(
		logFilePath+".%Y%m%d", // daily rotation
		rotatelogs.WithLinkName(logFilePath),
		rotatelogs.WithMaxAge(7*24*time.Hour),
		rotatelogs.WithRotationTime(24*time.Hour),
	)
	if err != nil {
		return fmt.Errorf("failed to initialize rotatelogs for %s: %w", logFilePath, err)
	}

	l := logrus.New()
	l.SetLevel(level)
	l.SetReportCaller(true)

	fileFormatter := &Formatter{
		TimestampFormat:        "2006-01-02 15:04:05.000 MST",
		NoColors:               true,
		DisplayLevelName:       ShowAll,
		FieldsDisplayWithOrder: fieldOrder,
		CustomCallerFormatter: func(frame *runtime.Frame) string {
			return fmt.Sprintf(" [%s:%d %s]", filepath.Base(frame.File), frame.Line, filepath.Base(frame.Function))
		},
	}
	l.SetFormatter(fileFormatter)

	writers := lfshook.WriterMap{}
	for _, lvl := range logrus.AllLevels {
		if l.IsLevelEnabled(lvl) {
			writers[lvl] = writer
		}
	}
	l.Hooks.Add(lfshook.NewHook(writers, fileFormatter))
	// File logging goes through the hook; drop the default stream so lines
	// are not duplicated.
	l.SetOutput(io.Discard)

	Log = l
	return nil
}

func newConsoleLogger(level logrus.Level) *logrus.Logger {
	l := logrus.New()
	l.SetLevel(level)
	l.SetFormatter(&Formatter{
		TimestampFormat:        "15:04:05",
		DisplayLevelName:       ShowAll,
		DisableCaller:          true,
		FieldsDisplayWithOrder: fieldOrder,
	})
	l.SetOutput(os.Stdout)
	return l
}
