// Package logging provides a small leveled logger that writes to stdout/stderr
// and, optionally, to daily rotated files.
package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/kozaktomas/facegate/internal/config"
	rotatelogs "github.com/lestrrat-go/file-rotatelogs"
)

// Logger provides leveled logging (info/warning/error).
// The underlying log.Logger values serialize their own writes.
type Logger struct {
	infoLog    *log.Logger
	warningLog *log.Logger
	errorLog   *log.Logger
	closers    []io.Closer
}

// New creates a Logger. When cfg.Dir is set the directory is created and
// info and error streams are additionally written to rotated files there.
func New(cfg config.LogConfig) (*Logger, error) {
	var infoOut, errOut io.Writer = os.Stdout, os.Stderr
	l := &Logger{}

	if cfg.Dir != "" {
		if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating log directory: %w", err)
		}
		infoFile, err := openRotated(cfg, "facegate")
		if err != nil {
			return nil, err
		}
		errFile, err := openRotated(cfg, "facegate-error")
		if err != nil {
			infoFile.Close()
			return nil, err
		}
		l.closers = append(l.closers, infoFile, errFile)
		infoOut = io.MultiWriter(os.Stdout, infoFile)
		errOut = io.MultiWriter(os.Stderr, infoFile, errFile)
	}

	l.setup(infoOut, errOut)
	return l, nil
}

// NewWriter creates a Logger writing every level to w. Used by tests and
// short-lived commands.
func NewWriter(w io.Writer) *Logger {
	l := &Logger{}
	l.setup(w, w)
	return l
}

// Discard returns a Logger that drops everything.
func Discard() *Logger {
	return NewWriter(io.Discard)
}

func openRotated(cfg config.LogConfig, name string) (*rotatelogs.RotateLogs, error) {
	rotation := time.Duration(cfg.RotateHours) * time.Hour
	if rotation <= 0 {
		rotation = 24 * time.Hour
	}
	maxAge := time.Duration(cfg.MaxAgeDays) * 24 * time.Hour
	if maxAge <= 0 {
		maxAge = 14 * 24 * time.Hour
	}

	w, err := rotatelogs.New(
		filepath.Join(cfg.Dir, name+".%Y%m%d.log"),
		rotatelogs.WithLinkName(filepath.Join(cfg.Dir, name+".log")),
		rotatelogs.WithRotationTime(rotation),
		rotatelogs.WithMaxAge(maxAge),
	)
	if err != nil {
		return nil, fmt.Errorf("opening rotated log %s: %w", name, err)
	}
	return w, nil
}

func (l *Logger) setup(infoOut, errOut io.Writer) {
	flags := log.Ldate | log.Ltime | log.Lmsgprefix
	l.infoLog = log.New(infoOut, "INFO    ", flags)
	l.warningLog = log.New(infoOut, "WARNING ", flags)
	l.errorLog = log.New(errOut, "ERROR   ", flags)
}

// Info writes a formatted info-level log entry.
func (l *Logger) Info(format string, v ...any) {
	l.infoLog.Printf(format, v...)
}

// Warning writes a formatted warning-level log entry.
func (l *Logger) Warning(format string, v ...any) {
	l.warningLog.Printf(format, v...)
}

// Error writes a formatted error-level log entry.
func (l *Logger) Error(format string, v ...any) {
	l.errorLog.Printf(format, v...)
}

// Std returns the info-level logger, for libraries that want a *log.Logger
// (the chi request logger).
func (l *Logger) Std() *log.Logger {
	return l.infoLog
}

// ErrorStd returns the error-level logger, for http.Server.ErrorLog.
func (l *Logger) ErrorStd() *log.Logger {
	return l.errorLog
}

// Close closes any rotated log files.
func (l *Logger) Close() error {
	var firstErr error
	for _, c := range l.closers {
		if err := c.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	l.closers = nil
	return firstErr
}
