package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"strings"
)

// ErrServicesNotSet is returned when the service mapping variable is absent or blank.
var ErrServicesNotSet = errors.New("service mapping is not set")

// Services maps service names to upstream base URLs. It is immutable after
// construction and safe for concurrent use.
type Services struct {
	byName map[string]string
}

// NewServices returns a Services holding a copy of m.
func NewServices(m map[string]string) *Services {
	return &Services{byName: maps.Clone(m)}
}

// LoadServices parses raw as a JSON object of service name to base URL.
func LoadServices(raw string) (*Services, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, ErrServicesNotSet
	}

	var m map[string]string
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		return nil, fmt.Errorf("parse service mapping: %w", err)
	}
	if m == nil {
		// JSON null
		return nil, fmt.Errorf("parse service mapping: expected a JSON object")
	}

	return &Services{byName: m}, nil
}

// ServicesFromEnv loads the mapping from the environment variable key using
// lookup. A missing or malformed value yields an empty mapping and an error
// log; it never fails startup.
func ServicesFromEnv(lookup func(string) (string, bool), key string, logger *slog.Logger) *Services {
	raw, _ := lookup(key)

	s, err := LoadServices(raw)
	if err != nil {
		logger.Error("service mapping unavailable; all service routes will return 404",
			"env", key,
			"err", err,
		)
		return NewServices(nil)
	}

	logger.Info("service mapping loaded", "env", key, "services", s.Names())
	return s
}

// Lookup returns the base URL for name. Matching is exact and case-sensitive.
func (s *Services) Lookup(name string) (string, bool) {
	base, ok := s.byName[name]
	return base, ok
}

// Names returns the configured service names in sorted order.
func (s *Services) Names() []string {
	names := make([]string, 0, len(s.byName))
	for name := range s.byName {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Len returns the number of configured services.
func (s *Services) Len() int {
	return len(s.byName)
}
