package app

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sync"

	"github.com/etdte/svc-http/internal/config"
	"github.com/etdte/svc-http/internal/logger"
	"github.com/etdte/svc-http/internal/storage"
	"github.com/etdte/svc-http/pkg/httpclient"
	"github.com/etdte/svc-http/pkg/profiles"
	"github.com/etdte/svc-http/pkg/sinks"
	"github.com/etdte/svc-http/pkg/svchttp"
)

// Option customizes a Caller.
type Option func(*Caller)

// WithHTTPClient replaces the resty client shared by all profiles.
func WithHTTPClient(client httpclient.Client) Option {
	return func(c *Caller) {
		if client != nil {
			c.client = client
		}
	}
}

// Caller issues calls against configured profiles and forwards results to sinks.
type Caller struct {
	cfg      *config.Config
	profiles *profiles.Registry
	store    storage.Store
	fanout   *sinks.Fanout
	client   httpclient.Client
	log      logger.Logger

	mu             sync.Mutex
	configurations map[string]*profiles.Configuration
}

// profileService composes the service base with its profile configuration.
type profileService struct {
	*svchttp.Service
	configuration *profiles.Configuration
}

// NewCaller builds a caller runtime from config files.
func NewCaller(ctx context.Context, cfg *config.Config, log logger.Logger, opts ...Option) (*Caller, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	if ctx == nil {
		ctx = context.Background()
	}

	profileReg, err := profiles.LoadRegistry(cfg.ProfilesFile)
	if err != nil {
		return nil, fmt.Errorf("load profiles registry: %w", err)
	}
	profileIDs := make([]string, 0, len(profileReg.All()))
	for _, p := range profileReg.All() {
		profileIDs = append(profileIDs, p.ID)
	}
	log.InfoObj("profiles registry loaded", "profiles_meta", map[string]any{
		"count": len(profileIDs),
		"ids":   profileIDs,
	})

	store, err := storage.NewStore(cfg.StorageType, cfg.BBoltPath, storage.Options{
		TokenTTL:        cfg.TokenTTL,
		CleanupInterval: cfg.TokenCleanupInterval,
	})
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}
	log.InfoObj("storage initialized", "storage_config", map[string]any{
		"type":                     cfg.StorageType,
		"path":                     cfg.BBoltPath,
		"token_ttl_seconds":        int(cfg.TokenTTL.Seconds()),
		"cleanup_interval_seconds": int(cfg.TokenCleanupInterval.Seconds()),
	})

	fanout, err := buildFanout(ctx, cfg.SinksFile, log)
	if err != nil {
		store.Close()
		return nil, err
	}

	c := &Caller{
		cfg:            cfg,
		profiles:       profileReg,
		store:          store,
		fanout:         fanout,
		client:         httpclient.NewRestyClient(cfg.HTTPTimeout),
		log:            log,
		configurations: make(map[string]*profiles.Configuration),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func buildFanout(ctx context.Context, path string, log logger.Logger) (*sinks.Fanout, error) {
	if path == "" {
		return sinks.NewFanout(nil), nil
	}

	sinkReg, err := sinks.LoadRegistry(path)
	if err != nil {
		return nil, fmt.Errorf("load sinks registry: %w", err)
	}
	enabled := sinkReg.Enabled()
	built, err := sinks.BuildAll(ctx, sinks.DefaultRegistry(), enabled, log)
	if err != nil {
		return nil, fmt.Errorf("build sinks: %w", err)
	}

	summaries := make([]map[string]string, 0, len(enabled))
	for _, s := range enabled {
		summaries = append(summaries, map[string]string{"id": s.ID, "type": s.Type})
	}
	log.InfoObj("sinks registry loaded", "sinks_meta", map[string]any{
		"count": len(summaries),
		"sinks": summaries,
	})
	return sinks.NewFanout(built), nil
}

// Profiles returns the loaded profiles.
func (c *Caller) Profiles() []profiles.Profile { return c.profiles.All() }

// Call issues one request for profileID. A relative path is resolved
// against the profile URL. When publish is set the normalized result is
// forwarded to the configured sinks; delivery failures are logged.
func (c *Caller) Call(ctx context.Context, profileID string, method svchttp.Method, path string, attrs map[string]any, publish bool) (svchttp.Response, error) {
	svc, err := c.service(profileID)
	if err != nil {
		return nil, err
	}

	target := path
	if !isAbsoluteURL(path) {
		target = svc.configuration.URL(path)
	}

	resp, err := svc.Request(ctx, method, target, attrs)
	if err != nil {
		return nil, err
	}

	if publish && c.fanout.Size() > 0 {
		evt := sinks.NewEvent(profileID, method.String(), target, resp)
		delivered, err := c.fanout.Publish(ctx, evt)
		if err != nil {
			c.log.ErrorObj("result delivery failed", "delivery_error", map[string]any{
				"profile_id": profileID,
				"delivered":  delivered,
				"error":      err.Error(),
			})
		} else {
			c.log.InfoObj("result delivered", "delivery_meta", map[string]any{
				"profile_id": profileID,
				"delivered":  delivered,
			})
		}
	}
	return resp, nil
}

// SetToken caches token for profileID in the token store.
func (c *Caller) SetToken(profileID, token string) error {
	if _, ok := c.profiles.ByID(profileID); !ok {
		return fmt.Errorf("unknown profile %q", profileID)
	}
	if err := c.store.PutToken(profileID, token); err != nil {
		return fmt.Errorf("store token: %w", err)
	}
	return nil
}

// ForgetToken drops the cached token for profileID.
func (c *Caller) ForgetToken(profileID string) error {
	if _, ok := c.profiles.ByID(profileID); !ok {
		return fmt.Errorf("unknown profile %q", profileID)
	}
	if err := c.store.DeleteToken(profileID); err != nil {
		return fmt.Errorf("delete token: %w", err)
	}
	return nil
}

// Close releases the token store and sinks.
func (c *Caller) Close() error {
	if c == nil {
		return nil
	}
	var errs []error
	if err := c.fanout.Close(); err != nil {
		errs = append(errs, err)
	}
	if err := c.store.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close storage: %w", err))
	}
	return errors.Join(errs...)
}

// service builds the per-call service for profileID. The token is resolved
// once so the readiness check and the Authorization header see the same value.
func (c *Caller) service(profileID string) (*profileService, error) {
	configuration, err := c.configuration(profileID)
	if err != nil {
		return nil, err
	}

	resolved := configuration.Resolve()
	return &profileService{
		Service: svchttp.New(resolved,
			svchttp.WithClient(c.client),
			svchttp.WithLogger(c.log),
		),
		configuration: resolved,
	}, nil
}

func (c *Caller) configuration(profileID string) (*profiles.Configuration, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if configuration, ok := c.configurations[profileID]; ok {
		return configuration, nil
	}
	p, ok := c.profiles.ByID(profileID)
	if !ok {
		return nil, fmt.Errorf("unknown profile %q", profileID)
	}

	configuration := profiles.NewConfiguration(p, c.store, profiles.WithLogger(c.log))
	c.configurations[profileID] = configuration
	return configuration, nil
}

func isAbsoluteURL(path string) bool {
	u, err := url.Parse(path)
	return err == nil && u.IsAbs() && u.Host != ""
}
