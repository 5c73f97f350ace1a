package profiles

import (
	"os"
	"strings"

	"github.com/etdte/svc-http/pkg/svchttp"
)

var (
	_ svchttp.Configuration = (*Configuration)(nil)
	_ svchttp.TokenTyper    = (*Configuration)(nil)
)

// TokenSource supplies tokens that are not declared in the profile itself.
type TokenSource interface {
	Token(id string) (string, bool, error)
}

// ConfigurationOption customizes a Configuration.
type ConfigurationOption func(*Configuration)

// WithLogger reports token source failures.
func WithLogger(log svchttp.Logger) ConfigurationOption {
	return func(c *Configuration) {
		c.log = log
	}
}

// Configuration adapts a Profile to the svchttp.Configuration contract.
type Configuration struct {
	profile Profile
	tokens  TokenSource
	log     svchttp.Logger
}

// NewConfiguration binds p to an optional token source.
func NewConfiguration(p Profile, tokens TokenSource, opts ...ConfigurationOption) *Configuration {
	c := &Configuration{profile: sanitizeProfile(p), tokens: tokens}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Settled reports whether both a base URL and a token are available.
func (c *Configuration) Settled() bool {
	return c.profile.BaseURL != "" && c.Token() != ""
}

// BaseURL returns the profile base URL joined with path.
func (c *Configuration) BaseURL(path string) string {
	return joinURL(c.profile.BaseURL, path)
}

// URL returns the base URL joined with the profile path, then with path.
func (c *Configuration) URL(path string) string {
	return joinURL(c.BaseURL(c.profile.Path), path)
}

// Token resolves the bearer token from the profile, then the environment
// variable named by token_env, then the token source.
func (c *Configuration) Token() string {
	if c.profile.Token != "" {
		return c.profile.Token
	}
	if c.profile.TokenEnv != "" {
		if tok := strings.TrimSpace(os.Getenv(c.profile.TokenEnv)); tok != "" {
			return tok
		}
	}
	if c.tokens == nil {
		return ""
	}
	tok, ok, err := c.tokens.Token(c.profile.ID)
	if err != nil {
		if c.log != nil {
			c.log.WarnObj("token lookup failed", "token_error", map[string]any{
				"profile_id": c.profile.ID,
				"error":      err.Error(),
			})
		}
		return ""
	}
	if !ok {
		return ""
	}
	return tok
}

// Resolve returns a copy whose token is fixed to the value resolved now, so
// Settled and Token agree for the lifetime of the copy.
func (c *Configuration) Resolve() *Configuration {
	out := *c
	out.profile.Token = c.Token()
	out.profile.TokenEnv = ""
	out.tokens = nil
	return &out
}

// TokenType returns the scheme declared by the profile, if any.
func (c *Configuration) TokenType() string { return c.profile.TokenType }

func joinURL(base, path string) string {
	path = strings.TrimSpace(path)
	if path == "" {
		return base
	}
	if base == "" {
		return path
	}
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(path, "/")
}
