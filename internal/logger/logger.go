package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
)

// Logger provides leveled logging functionality
type Logger struct {
	verbose bool
	prefix  string
	info    *log.Logger
	debug   *log.Logger
	error   *log.Logger
}

var defaultLogger *Logger

func init() {
	defaultLogger = New(false, os.Stderr)
}

// New creates a new logger instance
func New(verbose bool, output io.Writer) *Logger {
	flags := log.Ldate | log.Ltime
	return &Logger{
		verbose: verbose,
		info:    log.New(output, "[INFO]  ", flags),
		debug:   log.New(output, "[DEBUG] ", flags),
		error:   log.New(output, "[ERROR] ", flags),
	}
}

// SetDefault sets the default logger instance
func SetDefault(logger *Logger) {
	defaultLogger = logger
}

// Default returns the default logger instance
func Default() *Logger {
	return defaultLogger
}

// With returns a logger sharing l's outputs that prepends component to every message.
func (l *Logger) With(component string) *Logger {
	c := *l
	c.prefix = l.prefix + component + ": "
	return &c
}

// SetVerbose enables or disables verbose logging
func (l *Logger) SetVerbose(verbose bool) {
	l.verbose = verbose
}

// IsVerbose returns whether verbose logging is enabled
func (l *Logger) IsVerbose() bool {
	return l.verbose
}

// Info logs an informational message (always shown)
func (l *Logger) Info(format string, args ...any) {
	l.info.Printf(l.prefix+format, args...)
}

// Debug logs a debug message (only shown if verbose is enabled)
func (l *Logger) Debug(format string, args ...any) {
	if l.verbose {
		l.debug.Printf(l.prefix+format, args...)
	}
}

// Error logs an error message (always shown)
func (l *Logger) Error(format string, args ...any) {
	l.error.Printf(l.prefix+format, args...)
}

// Query logs an executed statement with its parameters (verbose only)
func (l *Logger) Query(sql string, params any, types any) {
	if !l.verbose {
		return
	}
	line := strings.Join(strings.Fields(sql), " ")
	if params == nil {
		l.debug.Printf("%sexecuting %q", l.prefix, line)
		return
	}
	if types == nil {
		l.debug.Printf("%sexecuting %q params=%v", l.prefix, line, params)
		return
	}
	l.debug.Printf("%sexecuting %q params=%v types=%v", l.prefix, line, params, types)
}

// Debugf is an alias for Debug
func (l *Logger) Debugf(format string, args ...any) {
	l.Debug(format, args...)
}

// Infof is an alias for Info
func (l *Logger) Infof(format string, args ...any) {
	l.Info(format, args...)
}

// Errorf is an alias for Error
func (l *Logger) Errorf(format string, args ...any) {
	l.Error(format, args...)
}

// Package-level functions that use the default logger

// SetVerbose enables or disables verbose logging on the default logger
func SetVerbose(verbose bool) {
	defaultLogger.SetVerbose(verbose)
}

// IsVerbose returns whether verbose logging is enabled on the default logger
func IsVerbose() bool {
	return defaultLogger.IsVerbose()
}

// Info logs an informational message using the default logger
func Info(format string, args ...any) {
	defaultLogger.Info(format, args...)
}

// Debug logs a debug message using the default logger (only shown if verbose is enabled)
func Debug(format string, args ...any) {
	defaultLogger.Debug(format, args...)
}

// Error logs an error message using the default logger
func Error(format string, args ...any) {
	defaultLogger.Error(format, args...)
}

// Query logs a statement using the default logger
func Query(sql string, params any, types any) {
	defaultLogger.Query(sql, params, types)
}

// Printf writes to stdout, bypassing log prefixes
func Printf(format string, args ...any) {
	fmt.Printf(format, args...)
}
