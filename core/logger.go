/* YaNFD - Yet another NDN Forwarding Daemon
 *
 * Copyright (C) 2020 Eric Newberry.
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package core

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/apex/log"
	"github.com/apex/log/handlers/text"
)

var shouldPrintTraceLogs = false
var logLevel = log.InfoLevel
var logFileObj *os.File

// InitializeLogger initializes the logger from the core section of the configuration.
func InitializeLogger(cfg *Config) error {
	var out io.Writer = os.Stdout
	if cfg.Core.LogFile != "" {
		f, err := os.OpenFile(cfg.Core.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("unable to open log file: %w", err)
		}
		logFileObj = f
		out = f
	}
	log.SetHandler(text.New(out))

	SetLogLevel(cfg.Core.LogLevel)
	return nil
}

// SetLogLevel changes the logging level. Unknown levels fall back to INFO.
func SetLogLevel(level string) {
	level = strings.ToUpper(level)
	shouldPrintTraceLogs = false

	var err error
	logLevel, err = log.ParseLevel(strings.ToLower(level))
	if err == nil {
		log.SetLevel(logLevel)
	} else if level == "TRACE" {
		// Apex has no TRACE level: print as DEBUG, gated by shouldPrintTraceLogs.
		logLevel = log.DebugLevel
		log.SetLevel(log.DebugLevel)
		shouldPrintTraceLogs = true
	} else {
		logLevel = log.InfoLevel
		log.SetLevel(log.InfoLevel)
	}
}

// ShutdownLogger shuts down the logger.
func ShutdownLogger() {
	if logFileObj != nil {
		log.SetHandler(text.New(os.Stdout))
		logFileObj.Close()
		logFileObj = nil
	}
}

func generateLogMessage(module any, components ...any) string {
	var message strings.Builder
	fmt.Fprintf(&message, "[%v] ", module)
	for _, component := range components {
		switch v := component.(type) {
		case string:
			message.WriteString(v)
		case int:
			message.WriteString(strconv.Itoa(v))
		case uint64:
			message.WriteString(strconv.FormatUint(v, 10))
		case bool:
			message.WriteString(strconv.FormatBool(v))
		case error:
			message.WriteString(v.Error())
		default:
			fmt.Fprint(&message, component)
		}
	}
	return message.String()
}

// LogFatal logs a message at the FATAL level and exits.
func LogFatal(module any, components ...any) {
	log.Fatal(generateLogMessage(module, components...))
}

// LogError logs a message at the ERROR level.
func LogError(module any, components ...any) {
	if logLevel <= log.ErrorLevel {
		log.Error(generateLogMessage(module, components...))
	}
}

// LogWarn logs a message at the WARN level.
func LogWarn(module any, components ...any) {
	if logLevel <= log.WarnLevel {
		log.Warn(generateLogMessage(module, components...))
	}
}

// LogInfo logs a message at the INFO level.
func LogInfo(module any, components ...any) {
	if logLevel <= log.InfoLevel {
		log.Info(generateLogMessage(module, components...))
	}
}

// LogDebug logs a message at the DEBUG level.
func LogDebug(module any, components ...any) {
	if logLevel <= log.DebugLevel {
		log.Debug(generateLogMessage(module, components...))
	}
}

// LogTrace logs a message at the TRACE level (really just additional DEBUG messages).
func LogTrace(module any, components ...any) {
	if shouldPrintTraceLogs {
		log.Debug(generateLogMessage(module, components...))
	}
}
