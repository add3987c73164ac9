package lblcount

// Reporting of the counts to the console and the count log.

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
)

// LogFileName is the name of the log file within the log directory.
const LogFileName = "count.log"

// Logger is an info logger that appends to a log file.
type Logger struct {
	*logrus.Entry
	file *os.File
}

// NewLogger opens, or creates, the count log in logDir for appending. Entries are tagged with
// logger=name.
//
// logDir must exist.
func NewLogger(name, logDir string) (*Logger, error) {
	path := filepath.Join(logDir, LogFileName)
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("cannot open log file %q: %w", path, err)
	}

	l := logrus.New()
	l.SetOutput(file)
	l.SetLevel(logrus.InfoLevel)
	l.SetFormatter(&logrus.TextFormatter{
		DisableColors:   true,
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339,
	})

	return &Logger{Entry: l.WithField("logger", name), file: file}, nil
}

// Close closes the log file.
func (l *Logger) Close() error {
	return l.file.Close()
}

// Report writes the counts to w, one line each, and logs the same lines at info level.
func Report(w io.Writer, log logrus.FieldLogger, c Counts) error {
	lines := []string{
		fmt.Sprintf("Found %d JSON files", c.Files),
		fmt.Sprintf("Found %d bbox", c.BBoxes),
	}

	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	for _, line := range lines {
		log.Info(line)
	}

	return nil
}
