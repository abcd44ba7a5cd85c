package usecase

import (
	"errors"
	"net/http"

	"adboard-sync/internal/core/domain"
	"adboard-sync/internal/core/port"
)

// classifyError maps a remote-call failure into the closed error taxonomy.
// Anything unrecognized is NETWORK: transient causes are more common than
// truly unknown permanent failures, so unknowns fail open to retryable.
func classifyError(err error) (domain.ErrorCode, string) {
	var pe *port.PlatformError
	if !errors.As(err, &pe) {
		return domain.CodeNetwork, err.Error()
	}

	switch pe.StatusCode {
	case http.StatusUnauthorized:
		return domain.CodeAuth, "authentication failed: " + pe.Message
	case http.StatusUnprocessableEntity:
		return domain.CodeValidation, "validation failed: " + pe.Message
	case http.StatusNotFound:
		return domain.CodeDependency, "required dependency not found: " + pe.Message
	case http.StatusConflict:
		return domain.CodeDuplicate, "entity already exists: " + pe.Message
	}
	if pe.StatusCode >= 500 {
		return domain.CodeNetwork, pe.Error()
	}

	switch pe.TransportCode {
	case port.TransportRefused, port.TransportTimeout, port.TransportReset:
		return domain.CodeNetwork, pe.Error()
	}

	return domain.CodeNetwork, pe.Error()
}

// failure builds a failed SyncResult from a classified error.
func failure(err error) port.SyncResult {
	code, msg := classifyError(err)
	return port.SyncResult{
		Success:   false,
		Error:     msg,
		Code:      code,
		Retryable: code.Retryable(),
	}
}

// dependencyFailure builds a DEPENDENCY failure with an explicit message,
// used when the engine refuses a remote call rather than the platform
// rejecting one.
func dependencyFailure(msg string) port.SyncResult {
	return port.SyncResult{
		Success: false,
		Error:   msg,
		Code:    domain.CodeDependency,
	}
}
