package svchttp

// Configuration supplies readiness, target URLs and the bearer token for a
// Service. Implementations are owned by the caller.
type Configuration interface {
	// Settled reports whether the configuration is complete enough to issue requests.
	Settled() bool
	// BaseURL returns the base URL, optionally joined with path.
	BaseURL(path string) string
	// URL returns the URL most requests target, optionally joined with path.
	URL(path string) string
	// Token returns the bearer token, or "" when none is available.
	Token() string
}

// TokenTyper may be implemented by a Configuration to choose the
// Authorization scheme. An empty value falls back to DefaultTokenType.
type TokenTyper interface {
	TokenType() string
}

// Logger defines the logging surface the service relies on.
type Logger interface {
	InfoObj(msg, key string, obj interface{})
	DebugObj(msg, key string, obj interface{})
	WarnObj(msg, key string, obj interface{})
	ErrorObj(msg, key string, obj interface{})
}

type noopLogger struct{}

func (noopLogger) InfoObj(string, string, interface{})  {}
func (noopLogger) DebugObj(string, string, interface{}) {}
func (noopLogger) WarnObj(string, string, interface{})  {}
func (noopLogger) ErrorObj(string, string, interface{}) {}

func ensureLogger(log Logger) Logger {
	if log == nil {
		return noopLogger{}
	}
	return log
}
