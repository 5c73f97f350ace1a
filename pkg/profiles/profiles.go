// Package profiles loads service profiles from YAML/JSON files and exposes
// them as svchttp configurations.
package profiles

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"github.com/etdte/svc-http/internal/registryfile"
)

// Profile is a single service entry declared in a profiles file.
type Profile struct {
	ID        string `json:"id" yaml:"id"`
	BaseURL   string `json:"base_url" yaml:"base_url"`
	Path      string `json:"path" yaml:"path"`
	Token     string `json:"token" yaml:"token"`
	TokenEnv  string `json:"token_env" yaml:"token_env"`
	TokenType string `json:"token_type" yaml:"token_type"`
}

type configFile struct {
	Profiles []Profile `json:"profiles" yaml:"profiles"`
}

// Registry holds the profiles loaded from a file.
type Registry struct {
	mu       sync.RWMutex
	profiles []Profile
	idx      map[string]Profile
}

// LoadRegistry loads profiles from a YAML/JSON file.
func LoadRegistry(path string) (*Registry, error) {
	var parsed configFile
	if err := registryfile.Load(path, "profiles", &parsed); err != nil {
		return nil, err
	}
	return NewRegistry(parsed.Profiles)
}

// NewRegistry validates and indexes profiles.
func NewRegistry(profiles []Profile) (*Registry, error) {
	if len(profiles) == 0 {
		return nil, errors.New("profiles file contains no profiles entries")
	}

	reg := &Registry{
		profiles: make([]Profile, len(profiles)),
		idx:      make(map[string]Profile, len(profiles)),
	}
	for i := range profiles {
		p := sanitizeProfile(profiles[i])
		if err := validateProfile(p); err != nil {
			return nil, fmt.Errorf("profiles[%d]: %w", i, err)
		}
		if _, exists := reg.idx[p.ID]; exists {
			return nil, fmt.Errorf("duplicate profile id %q", p.ID)
		}
		reg.profiles[i] = p
		reg.idx[p.ID] = p
	}
	return reg, nil
}

func sanitizeProfile(p Profile) Profile {
	p.ID = strings.TrimSpace(p.ID)
	p.BaseURL = strings.TrimSpace(p.BaseURL)
	p.Path = strings.TrimSpace(p.Path)
	p.Token = strings.TrimSpace(p.Token)
	p.TokenEnv = strings.TrimSpace(p.TokenEnv)
	p.TokenType = strings.TrimSpace(p.TokenType)
	return p
}

func validateProfile(p Profile) error {
	if p.ID == "" {
		return errors.New("id is required")
	}
	if p.BaseURL == "" {
		return fmt.Errorf("base_url is required for profile %q", p.ID)
	}
	u, err := url.Parse(p.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("base_url %q is not an absolute URL for profile %q", p.BaseURL, p.ID)
	}
	return nil
}

// ByID returns the profile with the given id.
func (r *Registry) ByID(id string) (Profile, bool) {
	if r == nil {
		return Profile{}, false
	}

	id = strings.TrimSpace(id)
	if id == "" {
		return Profile{}, false
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.idx[id]
	return p, ok
}

// All returns all loaded profiles in file order.
func (r *Registry) All() []Profile {
	if r == nil {
		return nil
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Profile, len(r.profiles))
	copy(out, r.profiles)
	return out
}
