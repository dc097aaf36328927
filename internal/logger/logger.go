package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"
)

// Log is the process-wide logger. It is usable before Init.
var Log = newLogger()

// Formatter prints "[TIME] [LEVEL] [FILE:LINE] MSG".
type Formatter struct{}

// Format implements logrus.Formatter.
func (f *Formatter) Format(entry *logrus.Entry) ([]byte, error) {
	var fileLine string
	if entry.HasCaller() {
		fileLine = fmt.Sprintf("%s:%d", filepath.Base(entry.Caller.File), entry.Caller.Line)
	}

	level := strings.ToUpper(entry.Level.String())
	if len(level) > 4 {
		level = level[:4]
	}

	msg := fmt.Sprintf("[%s] [%s] [%s] %s", entry.Time.Format("2006-01-02 15:04:05"), level, fileLine, entry.Message)
	if len(entry.Data) > 0 {
		keys := make([]string, 0, len(entry.Data))
		for k := range entry.Data {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			msg += fmt.Sprintf(" %s=%v", k, entry.Data[k])
		}
	}
	return []byte(msg + "\n"), nil
}

func newLogger() *logrus.Logger {
	l := logrus.New()
	l.SetReportCaller(true)
	l.SetFormatter(&Formatter{})
	l.SetOutput(os.Stdout)
	return l
}

// Init configures level and output. Output goes to stdout and, when filePath
// is set, is appended to that file as well.
func Init(levelStr, filePath string) error {
	return setup(levelStr, filePath, os.Stdout)
}

// InitFileOnly is Init for processes that own the terminal: output goes
// only to filePath, or nowhere when it is empty.
func InitFileOnly(levelStr, filePath string) error {
	return setup(levelStr, filePath, nil)
}

func setup(levelStr, filePath string, console io.Writer) error {
	level, err := logrus.ParseLevel(levelStr)
	if err != nil {
		level = logrus.InfoLevel
	}
	Log.SetLevel(level)

	var writers []io.Writer
	if console != nil {
		writers = append(writers, console)
	}
	if filePath != "" {
		if dir := filepath.Dir(filePath); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("create log directory: %w", err)
			}
		}
		file, err := os.OpenFile(filePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o666)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		writers = append(writers, file)
	}
	if len(writers) == 0 {
		Log.SetOutput(io.Discard)
		return nil
	}
	Log.SetOutput(io.MultiWriter(writers...))
	return nil
}
