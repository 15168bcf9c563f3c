package logger

import (
	"bytes"
	"fmt"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	resetColorCode        = 0
	defaultFieldSeparator = " | "
	defaultTimestamp      = time.RFC3339
)

// LevelNameDisplayMode defines how log level names are displayed.
type LevelNameDisplayMode int

const (
	// ShowAll shows all level names.
	ShowAll LevelNameDisplayMode = iota
	// ShowAboveWarn shows level names for WARN, ERROR, FATAL, PANIC.
	ShowAboveWarn
	// HideAll hides all level names.
	HideAll
)

// Formatter implements logrus.Formatter with a compact single-line layout:
// timestamp [LEVEL] [field:value | field:value] message (caller).
type Formatter struct {
	// TimestampFormat specifies the format of the timestamp. Default: time.RFC3339.
	TimestampFormat string
	// NoColors disables colorized level output.
	NoColors bool
	// DisplayLevelName configures which levels print their name.
	DisplayLevelName LevelNameDisplayMode
	// FieldsDisplayWithOrder lists field keys to display first, in order.
	// Remaining fields are appended alphabetically.
	FieldsDisplayWithOrder []string
	// FieldSeparator separates fields. Default: " | ".
	FieldSeparator string
	// DisableCaller disables caller information output.
	DisableCaller bool
	// CustomCallerFormatter allows a custom function to format caller information.
	CustomCallerFormatter func(*runtime.Frame) string
}

// Format formats the log entry.
func (f *Formatter) Format(entry *logrus.Entry) ([]byte, error) {
	b := &bytes.Buffer{}

	tsFormat := f.TimestampFormat
	if tsFormat == "" {
		tsFormat = defaultTimestamp
	}
	b.WriteString(entry.Time.Format(tsFormat))
	b.WriteString(" ")

	showLevel := false
	switch f.DisplayLevelName {
	case ShowAll:
		showLevel = true
	case ShowAboveWarn:
		showLevel = entry.Level <= logrus.WarnLevel
	case HideAll:
		showLevel = false
	}

	if showLevel {
		if !f.NoColors {
			fmt.Fprintf(b, "\x1b[%dm", colorByLevel(entry.Level))
		}
		name := strings.ToUpper(entry.Level.String())
		if len(name) > 4 {
			name = name[:4]
		}
		fmt.Fprintf(b, "[%s]", name)
		if !f.NoColors {
			fmt.Fprintf(b, "\x1b[%dm", resetColorCode)
		}
		b.WriteString(" ")
	}

	sep := f.FieldSeparator
	if sep == "" {
		sep = defaultFieldSeparator
	}
	if len(entry.Data) > 0 {
		b.WriteString("[")
		f.writeFields(b, entry, sep)
		b.WriteString("] ")
	}

	b.WriteString(entry.Message)

	if !f.DisableCaller && entry.HasCaller() {
		b.WriteString(" ")
		f.writeCaller(b, entry)
	}

	b.WriteByte('\n')
	return b.Bytes(), nil
}

func (f *Formatter) writeFields(b *bytes.Buffer, entry *logrus.Entry, sep string) {
	written := 0
	ordered := make(map[string]bool, len(f.FieldsDisplayWithOrder))
	for _, key := range f.FieldsDisplayWithOrder {
		value, ok := entry.Data[key]
		if !ok {
			continue
		}
		if written > 0 {
			b.WriteString(sep)
		}
		fmt.Fprintf(b, "%s:%v", key, value)
		ordered[key] = true
		written++
	}

	rest := make([]string, 0, len(entry.Data))
	for key := range entry.Data {
		if !ordered[key] {
			rest = append(rest, key)
		}
	}
	sort.Strings(rest)
	for _, key := range rest {
		if written > 0 {
			b.WriteString(sep)
		}
		fmt.Fprintf(b, "%s:%v", key, entry.Data[key])
		written++
	}
}

func (f *Formatter) writeCaller(b *bytes.Buffer, entry *logrus.Entry) {
	if f.CustomCallerFormatter != nil {
		fmt.Fprint(b, f.CustomCallerFormatter(entry.Caller))
		return
	}
	callerFunc := filepath.Base(entry.Caller.Function)
	if parts := strings.Split(callerFunc, "."); len(parts) > 1 {
		callerFunc = parts[len(parts)-1]
	}
	fmt.Fprintf(b, "(%s:%d %s)", filepath.Base(entry.Caller.File), entry.Caller.Line, callerFunc)
}

func colorByLevel(level logrus.Level) int {
	switch level {
	case logrus.TraceLevel, logrus.DebugLevel:
		return colorBlue
	case logrus.WarnLevel:
		return colorYellow
	case logrus.ErrorLevel, logrus.FatalLevel, logrus.PanicLevel:
		return colorRed
	default: // InfoLevel
		return colorGray
	}
}

const (
	colorRed    = 31
	colorYellow = 33
	colorBlue   = 36
	colorGray   = 37
)
