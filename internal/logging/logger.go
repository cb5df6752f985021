package logging

// Structured logging for plcsim

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"sync"
	"time"
)

// LogLevel represents the logging level
type LogLevel int

const (
	LogLevelSilent LogLevel = iota
	LogLevelError
	LogLevelInfo
	LogLevelVerbose
	LogLevelDebug
)

// Logger provides structured logging
type Logger struct {
	mu       sync.Mutex
	level    LogLevel
	format   string // "text" or "json"
	logEvery int    // console sampling: write every Nth message
	counter  int
	file     *os.File
	fileLog  *log.Logger
	stdout   *log.Logger
	stderr   *log.Logger
}

// NewLogger creates a new logger
func NewLogger(level LogLevel, logFile string) (*Logger, error) {
	return NewLoggerWithOptions(level, logFile, "text", 1)
}

// NewLoggerWithOptions creates a logger with format ("text" or "json") and
// console sampling (logEvery <= 1 disables sampling).
func NewLoggerWithOptions(level LogLevel, logFile string, format string, logEvery int) (*Logger, error) {
	if format == "" {
		format = "text"
	}
	if logEvery < 1 {
		logEvery = 1
	}

	l := &Logger{
		level:    level,
		format:   format,
		logEvery: logEvery,
		stdout:   log.New(os.Stdout, "", 0),
		stderr:   log.New(os.Stderr, "", 0),
	}

	if logFile != "" {
		file, err := os.Create(logFile)
		if err != nil {
			return nil, fmt.Errorf("create log file: %w", err)
		}
		l.file = file
		l.fileLog = log.New(file, "", log.LstdFlags)
	}

	return l, nil
}

// Close closes the logger and flushes all data
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file != nil {
		return l.file.Close()
	}
	return nil
}

// Error logs an error message
func (l *Logger) Error(format string, v ...interface{}) {
	if l.level >= LogLevelError {
		l.write(fmt.Sprintf(format, v...), true)
	}
}

// Info logs an info message
func (l *Logger) Info(format string, v ...interface{}) {
	if l.level >= LogLevelInfo {
		l.write(fmt.Sprintf(format, v...), false)
	}
}

// Verbose logs a verbose message
func (l *Logger) Verbose(format string, v ...interface{}) {
	if l.level >= LogLevelVerbose {
		l.write(fmt.Sprintf(format, v...), false)
	}
}

// Debug logs a debug message
func (l *Logger) Debug(format string, v ...interface{}) {
	if l.level >= LogLevelDebug {
		l.write(fmt.Sprintf(format, v...), false)
	}
}

// write writes a message to the appropriate outputs
func (l *Logger) write(msg string, isError bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.counter++

	var line string
	if l.format == "json" {
		encoded, err := json.Marshal(map[string]string{
			"time":    time.Now().Format(time.RFC3339),
			"level":   levelLabel(isError),
			"message": msg,
		})
		if err != nil {
			line = prefixLabel(isError) + msg
		} else {
			line = string(encoded)
		}
	} else {
		line = prefixLabel(isError) + msg
	}

	// The log file receives everything; sampling only thins console output.
	if l.fileLog != nil {
		l.fileLog.Println(line)
	} else if l.logEvery > 1 && l.counter%l.logEvery != 0 {
		return
	}

	if isError {
		l.stderr.Println(line)
	} else if l.level >= LogLevelVerbose {
		l.stdout.Println(line)
	}
}

// SetLevel sets the logging level
func (l *Logger) SetLevel(level LogLevel) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
}

// GetLevel returns the current logging level
func (l *Logger) GetLevel() LogLevel {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.level
}

// LogRequest logs one handled protocol request
func (l *Logger) LogRequest(transport, remote string, seqid uint64, reads, writes int, err error) {
	if err != nil {
		l.Info("FAILED %s request from %s (seqid: %d) - error: %v", transport, remote, seqid, err)
		return
	}
	l.Verbose("%s request from %s (seqid: %d, reads: %d, writes: %d)", transport, remote, seqid, reads, writes)
}

// LogStartup logs startup information
func (l *Logger) LogStartup(name, listenIP string, requestPort, notifyPort int, lockstepEndpoint, controllerAddr, configPath string) {
	l.Info("Starting %s", name)
	l.Verbose("  Request port: %s:%d", listenIP, requestPort)
	l.Verbose("  Notify port: %s:%d", listenIP, notifyPort)
	l.Verbose("  Lockstep endpoint: %s", lockstepEndpoint)
	l.Verbose("  Controller: %s", controllerAddr)
	l.Verbose("  Config: %s", configPath)
}

// LogHex logs hex data (for debug level)
func (l *Logger) LogHex(label string, data []byte) {
	if l.level >= LogLevelDebug {
		hexStr := fmt.Sprintf("%x", data)
		formatted := ""
		for i := 0; i < len(hexStr); i += 2 {
			if i > 0 {
				formatted += " "
			}
			if i+2 <= len(hexStr) {
				formatted += hexStr[i : i+2]
			} else {
				formatted += hexStr[i:]
			}
		}
		l.Debug("%s: %s", label, formatted)
	}
}

func levelLabel(isError bool) string {
	if isError {
		return "error"
	}
	return "info"
}

func prefixLabel(isError bool) string {
	if isError {
		return "ERROR: "
	}
	return "INFO: "
}
