package svchttp

import (
	"errors"

	"github.com/etdte/svc-http/pkg/httpclient"
)

const notSettledMessage = "Service is not configured properly, check configuration."

// ConfigurationError is returned before any request is sent when the
// configuration is present but not settled.
type ConfigurationError struct {
	Message string
}

func (e *ConfigurationError) Error() string { return e.Message }

// ErrNotSettled is the error every verb returns for an unsettled configuration.
var ErrNotSettled = &ConfigurationError{Message: notSettledMessage}

// IsConfigurationError reports whether err carries a *ConfigurationError.
func IsConfigurationError(err error) bool {
	var cfgErr *ConfigurationError
	return errors.As(err, &cfgErr)
}

// RequestError is the error produced by the HTTP layer for failure statuses.
type RequestError = httpclient.RequestError

// IsRequestError reports whether err carries a *RequestError.
func IsRequestError(err error) bool { return httpclient.IsRequestError(err) }
