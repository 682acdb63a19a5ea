/*
 * Copyright 2024-2025 Raamsri Kumar <raam@tinkershack.in>
 * Copyright 2024-2025 The StrataSTOR Authors and Contributors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     https://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package errors

import "net/http"

const (
	DomainConfig    Domain = "CONFIG"
	DomainServer    Domain = "SERVER"
	DomainCommand   Domain = "CMD"
	DomainLifecycle Domain = "LIFECYCLE"
	DomainMisc      Domain = "MISC"
	DomainLRS       Domain = "LRS"
)

// ErrorCode represents unique error identifiers
type ErrorCode int

// Domain represents the subsystem where the error originated
type Domain string

type LRSError struct {
	Code    ErrorCode `json:"code"`
	Domain  Domain    `json:"domain"`
	Message string    `json:"message"`
	Details string    `json:"details,omitempty"`

	HTTPStatus int `json:"-"`

	// Metadata carries additional context that doesn't fit the standard
	// fields but is useful for API responses, logging and debugging.
	Metadata map[string]string `json:"metadata,omitempty"`
}

// Error code ranges:
// 1000-1099: Configuration errors
// 1100-1199: Server errors
// 1300-1399: Command execution
// 1500-1599: Lifecycle management
// 1600-1699: Misc program errors
// 3000-3109: Local Resource Scheduler (see lrs.go)
const (
	// Configuration Errors (1000-1099)
	ConfigNotFound           = 1000 + iota // Config file not found
	ConfigInvalid                          // Invalid config format
	ConfigLoadFailed                       // Failed to load config
	ConfigWriteFailed                      // Failed to write config
	ConfigPermissionDenied                 // Permission denied accessing config
	ConfigDirectoryError                   // Config directory error
	ConfigValidationFailed                 // Config validation failed
	ConfigMarshalFailed                    // Config serialization failed
	ConfigUnmarshalFailed                  // Config deserialization failed
	ConfigHomeDirectoryError               // Error getting home directory
	ConfigReadError                        // Error reading config
	ConfigWriteError                       // Error writing config
	ConfigParseError                       // Error parsing config
)
const (
	// Server Errors (1100-1199)
	ServerStart             = 1100 + iota // Failed to start server
	ServerShutdown                        // Error during shutdown
	ServerBind                            // Failed to bind port
	ServerTimeout                         // Operation timeout
	ServerMiddleware                      // Middleware error
	ServerRouting                         // Routing error
	ServerRequestValidation               // Request validation failed
	ServerResponseError                   // Response generation error
	ServerContextCancelled                // Context cancelled
	ServerTLSError                        // TLS configuration error
	ServerInternalError
	ServerBadRequest // Bad request error
)

const (
	// Command Execution (1300-1399)
	CommandNotFound     = 1300 + iota // Command not found
	CommandExecution                  // Execution failed
	CommandTimeout                    // Command timed out
	CommandPermission                 // Permission denied
	CommandInvalidInput               // Invalid command input
	CommandOutputParse                // Output parsing failed
	CommandSignal                     // Signal handling failed
	CommandContext                    // Context handling error
	CommandPipe                       // Command pipe error
	CommandWorkDir                    // Working directory error
)

const (
	// Lifecycle Management (1500-1599)
	LifecyclePID      = 1500 + iota // PID file operation failed
	LifecycleShutdown               // Shutdown process error
	LifecycleSignal                 // Signal handling error
	LifecycleReload                 // Config reload failed
	LifecycleHook                   // Lifecycle hook error
	LifecycleState                  // State transition error
	LifecycleLock                   // Lock acquisition failed
	LifecycleCleanup                // Cleanup operation failed
	LifecycleDaemon                 // Daemon operation failed
	LifecycleResource                // Resource management error
)

const (
	// Misc Errors (1600-1699)
	Misc          = 1600 + iota // Miscellaneous program error
	FSError                     // Filesystem error
	NotFoundError               // Not found error
	LoggerError                 // Logger error
)

var errorDefinitions = map[ErrorCode]struct {
	message    string
	domain     Domain
	httpStatus int
}{
	ConfigNotFound: {
		"Config file not found",
		DomainConfig,
		http.StatusNotFound,
	},
	ConfigInvalid: {
		"Invalid config format",
		DomainConfig,
		http.StatusBadRequest,
	},
	ConfigLoadFailed: {
		"Failed to load config",
		DomainConfig,
		http.StatusInternalServerError,
	},
	ConfigWriteFailed: {
		"Failed to write config",
		DomainConfig,
		http.StatusInternalServerError,
	},
	ConfigPermissionDenied: {
		"Permission denied accessing config",
		DomainConfig,
		http.StatusForbidden,
	},
	ConfigDirectoryError: {
		"Config directory error",
		DomainConfig,
		http.StatusInternalServerError,
	},
	ConfigValidationFailed: {
		"Config validation failed",
		DomainConfig,
		http.StatusBadRequest,
	},
	ConfigMarshalFailed: {
		"Config serialization failed",
		DomainConfig,
		http.StatusInternalServerError,
	},
	ConfigUnmarshalFailed: {
		"Config deserialization failed",
		DomainConfig,
		http.StatusInternalServerError,
	},
	ConfigHomeDirectoryError: {
		"Error getting home directory",
		DomainConfig,
		http.StatusInternalServerError,
	},
	ConfigReadError: {
		"Error reading config",
		DomainConfig,
		http.StatusInternalServerError,
	},
	ConfigWriteError: {
		"Error writing config",
		DomainConfig,
		http.StatusInternalServerError,
	},
	ConfigParseError: {
		"Error parsing config",
		DomainConfig,
		http.StatusBadRequest,
	},
	ServerStart: {
		"Failed to start server",
		DomainServer,
		http.StatusInternalServerError,
	},
	ServerShutdown: {
		"Error during server shutdown",
		DomainServer,
		http.StatusInternalServerError,
	},
	ServerBind: {
		"Failed to bind port",
		DomainServer,
		http.StatusInternalServerError,
	},
	ServerTimeout: {
		"Operation timeout",
		DomainServer,
		http.StatusGatewayTimeout,
	},
	ServerMiddleware: {
		"Middleware error",
		DomainServer,
		http.StatusInternalServerError,
	},
	ServerRouting: {
		"Routing error",
		DomainServer,
		http.StatusNotFound,
	},
	ServerRequestValidation: {
		"Request validation failed",
		DomainServer,
		http.StatusBadRequest,
	},
	ServerResponseError: {
		"Response generation error",
		DomainServer,
		http.StatusInternalServerError,
	},
	ServerContextCancelled: {
		"Context cancelled",
		DomainServer,
		http.StatusRequestTimeout,
	},
	ServerTLSError: {
		"TLS configuration error",
		DomainServer,
		http.StatusInternalServerError,
	},
	ServerInternalError: {
		"Internal server error",
		DomainServer,
		http.StatusInternalServerError,
	},
	ServerBadRequest: {
		"Bad request",
		DomainServer,
		http.StatusBadRequest,
	},
	CommandNotFound: {
		"Command not found",
		DomainCommand,
		http.StatusNotFound,
	},
	CommandExecution: {
		"Command execution failed",
		DomainCommand,
		http.StatusInternalServerError,
	},
	CommandTimeout: {
		"Command timed out",
		DomainCommand,
		http.StatusGatewayTimeout,
	},
	CommandPermission: {
		"Permission denied",
		DomainCommand,
		http.StatusForbidden,
	},
	CommandInvalidInput: {
		"Invalid command input",
		DomainCommand,
		http.StatusBadRequest,
	},
	CommandOutputParse: {
		"Output parsing failed",
		DomainCommand,
		http.StatusInternalServerError,
	},
	CommandSignal: {
		"Signal handling failed",
		DomainCommand,
		http.StatusInternalServerError,
	},
	CommandContext: {
		"Context handling error",
		DomainCommand,
		http.StatusInternalServerError,
	},
	CommandPipe: {
		"Command pipe error",
		DomainCommand,
		http.StatusInternalServerError,
	},
	CommandWorkDir: {
		"Working directory error",
		DomainCommand,
		http.StatusInternalServerError,
	},
	LifecyclePID: {
		"PID file operation failed",
		DomainLifecycle,
		http.StatusInternalServerError,
	},
	LifecycleShutdown: {
		"Shutdown process error",
		DomainLifecycle,
		http.StatusInternalServerError,
	},
	LifecycleSignal: {
		"Signal handling error",
		DomainLifecycle,
		http.StatusInternalServerError,
	},
	LifecycleReload: {
		"Config reload failed",
		DomainLifecycle,
		http.StatusInternalServerError,
	},
	LifecycleHook: {
		"Lifecycle hook error",
		DomainLifecycle,
		http.StatusInternalServerError,
	},
	LifecycleState: {
		"State transition error",
		DomainLifecycle,
		http.StatusInternalServerError,
	},
	LifecycleLock: {
		"Lock acquisition failed",
		DomainLifecycle,
		http.StatusConflict,
	},
	LifecycleCleanup: {
		"Cleanup operation failed",
		DomainLifecycle,
		http.StatusInternalServerError,
	},
	LifecycleDaemon: {
		"Daemon operation failed",
		DomainLifecycle,
		http.StatusInternalServerError,
	},
	LifecycleResource: {
		"Resource management error",
		DomainLifecycle,
		http.StatusInternalServerError,
	},
	Misc: {
		"Miscellaneous program error",
		DomainMisc,
		http.StatusInternalServerError,
	},
	FSError: {
		"Filesystem error",
		DomainMisc,
		http.StatusInternalServerError,
	},
	NotFoundError: {
		"Not found",
		DomainMisc,
		http.StatusNotFound,
	},
	LoggerError: {
		"Logger error",
		DomainMisc,
		http.StatusInternalServerError,
	},
}
