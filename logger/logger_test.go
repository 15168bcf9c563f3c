package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mensylisir/tapsmith/common"
)

func TestFormatterFieldOrder(t *testing.T) {
	f := &Formatter{
		NoColors:               true,
		DisableCaller:          true,
		DisplayLevelName:       ShowAll,
		FieldsDisplayWithOrder: []string{common.LogFieldRun, common.LogFieldStep},
		TimestampFormat:        "15:04:05",
	}

	l := logrus.New()
	l.SetFormatter(f)
	var buf bytes.Buffer
	l.SetOutput(&buf)

	l.WithFields(logrus.Fields{
		"zzz":               "last",
		common.LogFieldStep: "preflight",
		common.LogFieldRun:  "abc",
	}).Info("hello")

	line := buf.String()
	assert.Contains(t, line, "[INFO]")
	assert.Contains(t, line, "hello")

	runIdx := strings.Index(line, "Run:abc")
	stepIdx := strings.Index(line, "Step:preflight")
	extraIdx := strings.Index(line, "zzz:last")
	require.True(t, runIdx >= 0 && stepIdx >= 0 && extraIdx >= 0, "all fields rendered: %s", line)
	assert.Less(t, runIdx, stepIdx, "ordered fields come first")
	assert.Less(t, stepIdx, extraIdx, "unordered fields trail")
}

func TestFormatterHidesLevelBelowWarn(t *testing.T) {
	f := &Formatter{
		NoColors:         true,
		DisableCaller:    true,
		DisplayLevelName: ShowAboveWarn,
	}

	l := logrus.New()
	l.SetFormatter(f)
	var buf bytes.Buffer
	l.SetOutput(&buf)

	l.Info("quiet")
	assert.NotContains(t, buf.String(), "[INFO]")

	buf.Reset()
	l.Warn("loud")
	assert.Contains(t, buf.String(), "[WARN]")
}

func TestInitGlobalLoggerFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, InitGlobalLogger(dir, false, logrus.InfoLevel))
	t.Cleanup(func() { Log = newConsoleLogger(logrus.InfoLevel) })

	Log.WithField(common.LogFieldRun, "run-1").Info("file sink test")

	// rotatelogs writes to <name>.log.YYYYMMDD with a symlink at <name>.log.
	pattern := filepath.Join(dir, common.AppName+".log."+time.Now().Format("20060102"))
	data, err := os.ReadFile(pattern)
	require.NoError(t, err)
	assert.Contains(t, string(data), "file sink test")
	assert.Contains(t, string(data), "Run:run-1")
}

func TestInitGlobalLoggerConsoleVerbose(t *testing.T) {
	require.NoError(t, InitGlobalLogger("", true, logrus.InfoLevel))
	t.Cleanup(func() { Log = newConsoleLogger(logrus.InfoLevel) })

	assert.Equal(t, logrus.DebugLevel, Log.GetLevel())
}
