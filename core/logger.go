/* corefwd - an NDN forwarding core
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package core

import (
	"fmt"
	"os"

	"github.com/apex/log"
	"github.com/apex/log/handlers/text"
)

var shouldPrintTraceLogs = false
var logLevel log.Level

// InitializeLogger configures the apex/log handler and level from the
// core.log_level config key.
func InitializeLogger() {
	log.SetHandler(text.New(os.Stdout))

	logLevelString := GetConfigStringDefault("core.log_level", "INFO")

	var err error
	logLevel, err = log.ParseLevel(logLevelString)
	if err == nil {
		log.SetLevel(logLevel)
	} else if logLevelString == "TRACE" {
		// apex/log has no TRACE level; emulate it by logging at DEBUG
		// and gating separately.
		log.SetLevel(log.DebugLevel)
		shouldPrintTraceLogs = true
	} else {
		log.SetLevel(log.InfoLevel)
	}
}

// LogFatal logs a message at the FATAL level and exits.
func LogFatal(module any, message string) {
	if logLevel <= log.FatalLevel {
		log.Fatal(fmt.Sprintf("[%v] ", module) + message)
	}
}

// LogError logs a message at the ERROR level.
func LogError(module any, message string) {
	if logLevel <= log.ErrorLevel {
		log.Error(fmt.Sprintf("[%v] ", module) + message)
	}
}

// LogWarn logs a message at the WARN level.
func LogWarn(module any, message string) {
	if logLevel <= log.WarnLevel {
		log.Warn(fmt.Sprintf("[%v] ", module) + message)
	}
}

// LogInfo logs a message at the INFO level.
func LogInfo(module any, message string) {
	if logLevel <= log.InfoLevel {
		log.Info(fmt.Sprintf("[%v] ", module) + message)
	}
}

// LogDebug logs a message at the DEBUG level.
func LogDebug(module any, message string) {
	if logLevel <= log.DebugLevel {
		log.Debug(fmt.Sprintf("[%v] ", module) + message)
	}
}

// LogTrace logs a message at the TRACE pseudo-level.
func LogTrace(module any, message string) {
	if shouldPrintTraceLogs {
		log.Debug(fmt.Sprintf("[%v] ", module) + message)
	}
}
