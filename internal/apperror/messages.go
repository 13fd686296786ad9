package apperror

// messages maps error codes to human-readable messages
var messages = map[Code]string{
	// General validation
	CodeRequiredField:   "Required field is missing",
	CodeInvalidInput:    "Invalid input provided",
	CodeInvalidFormat:   "Invalid data format",
	CodeInvalidState:    "Invalid state for this operation",
	CodeNotFound:        "Resource not found",
	CodeValidationError: "Validation error",

	// Configuration
	CodeConfigurationError: "Configuration error",

	// External service errors
	CodeExternalServiceError: "External service error",
	CodeServiceTimeout:       "Service request timeout",
	CodeServiceUnavailable:   "Service temporarily unavailable",
	CodeRateLimitExceeded:    "Rate limit exceeded",

	// System errors
	CodeInternalError: "Internal server error",
	CodeUnknownError:  "An unknown error occurred",

	// Venue transport errors
	CodeTransportError:     "Venue transport connection failed",
	CodeUrlCannotBeBase:    "Venue base URL cannot take a path segment",
	CodeDecodeError:        "Failed to decode venue message",
	CodePairNotSupported:   "Currency pair not supported by venue",
	CodeSubscriptionFailed: "Venue subscription was not acknowledged",
	CodeWebSocketClosed:    "WebSocket connection closed",
	CodeWebSocketSendError: "Failed to send WebSocket message",

	// Merge engine / bus errors
	CodeInvalidOrderBook: "Invalid order book snapshot",
	CodeBusLagged:        "Subscriber lagged behind the fan-out bus",
	CodeBusClosed:        "Fan-out bus is closed",

	// RPC errors
	CodeSummaryStreamError: "Summary stream terminated with an error",

	// Circuit breaker errors
	CodeCircuitOpen:     "Circuit breaker is open",
	CodeCircuitHalfOpen: "Circuit breaker is half-open",
}
