package core

import (
	"fmt"
	"os"
	"path"
	"runtime"
	"strings"

	"github.com/jcelliott/lumber"
)

var log = lumber.NewConsoleLogger(lumber.DEBUG)

func init() {
	log.TimeFormat("2006-01-02 15:04:05.000")
	log.Prefix("CoinBot")
}

func SetLogLevel(lvl int) {
	log.Level(lvl)
}

// ParseLogLevel maps a config string such as "debug" or "WARN" to a lumber level.
// Unknown names fall back to INFO.
func ParseLogLevel(name string) int {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "TRACE":
		return lumber.TRACE
	case "DEBUG":
		return lumber.DEBUG
	case "WARN", "WARNING":
		return lumber.WARN
	case "ERROR":
		return lumber.ERROR
	case "FATAL":
		return lumber.FATAL
	default:
		return lumber.INFO
	}
}

func IsLogDebug() bool {
	return log.IsDebug()
}

func LogDebugF(format string, v ...any) {
	if log.IsDebug() {
		doLogF(log.Debug, format, v...)
	}
}

func LogInfoF(format string, v ...any) {
	if log.IsInfo() {
		doLogF(log.Info, format, v...)
	}
}

func LogWarnF(format string, v ...any) {
	if log.IsWarn() {
		doLogF(log.Warn, format, v...)
	}
}

func LogErrorF(format string, v ...any) {
	if log.IsError() {
		doLogF(log.Error, format, v...)
	}
}

func LogFatalF(format string, v ...any) {
	doLogF(log.Fatal, format, v...)
	os.Exit(2)
}

func LogDebug(v ...any) {
	if log.IsDebug() {
		doLog(log.Debug, v...)
	}
}

func LogInfo(v ...any) {
	if log.IsInfo() {
		doLog(log.Info, v...)
	}
}

func LogWarn(v ...any) {
	if log.IsWarn() {
		doLog(log.Warn, v...)
	}
}

func LogError(v ...any) {
	if log.IsError() {
		doLog(log.Error, v...)
	}
}

func LogFatal(v ...any) {
	doLog(log.Fatal, v...)
	os.Exit(2)
}

// LogEventF prefixes the message with the room and event it concerns, so one
// event's pipeline can be followed through the log.
func LogEventF(roomID, eventID, format string, v ...any) {
	if log.IsDebug() {
		doLogF(log.Debug, "[%s %s] %s", roomID, eventID, fmt.Sprintf(format, v...))
	}
}

func doLogF(logger func(format string, v ...any), format string, v ...any) {
	_, fn, line, _ := runtime.Caller(2)
	logger("%s:%d | %s", path.Base(fn), line, fmt.Sprintf(format, v...))
}

func doLog(logger func(format string, v ...any), v ...any) {
	_, fn, line, _ := runtime.Caller(2)
	logger("%s:%d | %s", path.Base(fn), line, strings.TrimSuffix(fmt.Sprintln(v...), "\n"))
}
